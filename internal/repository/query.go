package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/pmlens/insights/internal/models"
)

// evidenceColumns is the fixed column contract of the similarity search
// statement. Scanning and mapping rely on exactly this order:
//
//	id, source, country, platform, rating, user_type, text, similarity
const evidenceColumns = "id, source, country, platform, rating, user_type, text"

// buildSearchQuery constructs the parameterized nearest-neighbor statement
// for the given query vector, limit, and filters. Pure construction, no I/O.
//
// Each active filter becomes one AND-conjoined equality predicate; blank or
// whitespace-only filter values are deliberately collapsed to "no constraint"
// and never compiled into a clause. Rows are ordered by ascending cosine
// distance with a secondary sort on id so equal-distance rows come back in a
// deterministic order. similarity is 1 - (embedding <=> query).
//
// topK must already be validated as positive by the caller.
func buildSearchQuery(queryEmbedding []float32, topK int, filters models.SearchFilters) (string, []any) {
	queryVec := pgvector.NewVector(queryEmbedding)
	args := []any{queryVec}

	var predicates []string

	addFilter := func(column, value string) {
		if value == "" {
			return
		}

		args = append(args, value)
		predicates = append(predicates, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	f := filters.Normalize()
	addFilter("platform", f.Platform)
	addFilter("country", f.Country)
	addFilter("user_type", f.UserType)

	var where string
	if len(predicates) > 0 {
		where = "WHERE " + strings.Join(predicates, " AND ") + "\n\t\t"
	}

	args = append(args, topK)

	sql := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $1) AS similarity
		FROM feedback
		%sORDER BY embedding <=> $1, id
		LIMIT $%d`, evidenceColumns, where, len(args))

	return sql, args
}

// newEvidenceItem maps one scanned row into an EvidenceItem, substituting
// explicit defaults for missing optional fields. A NULL similarity maps to
// 0.0 instead of failing; similarity drives ranking in the database, so a
// degraded display value never reorders results.
func newEvidenceItem(
	id uuid.UUID, source, country, platform *string, rating *int16, userType, text *string, similarity *float64,
) models.EvidenceItem {
	item := models.EvidenceItem{ID: id}

	if source != nil {
		item.Source = *source
	}

	if country != nil {
		item.Country = *country
	}

	if platform != nil {
		item.Platform = *platform
	}

	if rating != nil {
		r := int(*rating)
		item.Rating = &r
	}

	if userType != nil {
		item.UserType = *userType
	}

	if text != nil {
		item.Text = *text
	}

	if similarity != nil {
		item.Similarity = *similarity
	}

	return item
}
