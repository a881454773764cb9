// Package embeddings defines the provider-agnostic embedding client contract.
package embeddings

import "context"

// Client generates embedding vectors for text.
// Implemented by provider-specific clients (e.g. OpenAI, Google Gemini).
// Implementations must be safe for concurrent use: one client handle is
// shared process-wide across requests.
type Client interface {
	// CreateEmbedding returns the embedding vector for the given text. The
	// returned slice always has the client's configured dimension; a failed,
	// timed-out, or malformed provider response yields an error, never a
	// zero or partial vector.
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}
