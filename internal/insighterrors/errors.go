// Package insighterrors provides sentinel and custom error types for the application.
package insighterrors

// ErrProvider is the sentinel for embedding-provider failures (remote call
// failed, timed out, or returned a malformed vector).
var ErrProvider = &ProviderError{}

// ProviderError is returned when the embedding provider fails. The retrieval
// that triggered it fails as a whole; no partial results are fabricated.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

// NewProviderError creates a ProviderError wrapping the underlying cause.
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "embedding provider error"
	}

	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is implements the error interface for error comparison.
func (e *ProviderError) Is(target error) bool {
	_, ok := target.(*ProviderError)

	return ok
}

// ErrStore is the sentinel for feedback-store failures (query execution or
// row scanning failed).
var ErrStore = &StoreError{}

// StoreError is returned when a store query fails.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError creates a StoreError for the given operation.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	msg := "store error"
	if e.Op != "" {
		msg = e.Op + ": store error"
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements the error interface for error comparison.
func (e *StoreError) Is(target error) bool {
	_, ok := target.(*StoreError)

	return ok
}

// ErrNotFound is the sentinel for lookups of records that do not exist.
var ErrNotFound = &NotFoundError{}

// NotFoundError is returned when a requested record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for the given resource and ID.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}

	if e.ID == "" {
		return e.Resource + " not found"
	}

	return e.Resource + " not found: " + e.ID
}

// Is implements the error interface for error comparison.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}

// ErrValidation is the sentinel for caller-input validation failures.
var ErrValidation = &ValidationError{}

// ValidationError is returned when client input fails validation.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}
