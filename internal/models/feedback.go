// Package models defines the domain types shared by the repository, service,
// and API layers.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FeedbackRecord represents one persisted row of customer feedback. Rows with
// blank text are never persisted; Embedding always has the configured
// dimension (1536 for text-embedding-3-small).
type FeedbackRecord struct {
	ID        uuid.UUID  `json:"id"`
	Source    string     `json:"source"`
	Country   *string    `json:"country,omitempty"`
	Platform  *string    `json:"platform,omitempty"`
	Rating    *int       `json:"rating,omitempty"`
	UserType  *string    `json:"user_type,omitempty"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Embedding []float32  `json:"-"`
}

// EvidenceItem is one retrieved feedback record with its similarity score.
// Similarity is 1 - cosine distance between the stored embedding and the
// query embedding; for unit-length embeddings it falls in [0,1], higher is
// closer. Items are created fresh per retrieval and never mutated.
type EvidenceItem struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Platform   string    `json:"platform"`
	Country    string    `json:"country"`
	Rating     *int      `json:"rating,omitempty"`
	UserType   string    `json:"user_type"`
	Text       string    `json:"text"`
	Similarity float64   `json:"similarity"`
}

// SearchFilters holds the optional equality constraints a search may carry.
// The field set is closed: an unsupported filter cannot be expressed at all.
// A blank or whitespace-only value means "no constraint on this field", never
// "match the empty string".
type SearchFilters struct {
	Platform string `json:"platform,omitempty"`
	Country  string `json:"country,omitempty"`
	UserType string `json:"user_type,omitempty"` //nolint:tagliatelle // API contract
}

// Normalize returns a copy with each value trimmed, so blank and
// whitespace-only values collapse to the zero value.
func (f SearchFilters) Normalize() SearchFilters {
	return SearchFilters{
		Platform: strings.TrimSpace(f.Platform),
		Country:  strings.TrimSpace(f.Country),
		UserType: strings.TrimSpace(f.UserType),
	}
}

// IsZero reports whether no filter is active after normalization.
func (f SearchFilters) IsZero() bool {
	n := f.Normalize()

	return n.Platform == "" && n.Country == "" && n.UserType == ""
}
