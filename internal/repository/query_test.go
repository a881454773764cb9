package repository

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlens/insights/internal/models"
)

func TestBuildSearchQuery_NoFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters models.SearchFilters
	}{
		{name: "zero filters"},
		{name: "blank values", filters: models.SearchFilters{Platform: "", Country: "", UserType: ""}},
		{name: "whitespace-only values", filters: models.SearchFilters{Platform: "  ", Country: "\t", UserType: " \n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildSearchQuery([]float32{0.1, 0.2}, 5, tt.filters)

			assert.NotContains(t, sql, "WHERE")
			assert.Contains(t, sql, "ORDER BY embedding <=> $1, id")
			assert.Contains(t, sql, "LIMIT $2")
			require.Len(t, args, 2)
			assert.Equal(t, pgvector.NewVector([]float32{0.1, 0.2}), args[0])
			assert.Equal(t, 5, args[1])
		})
	}
}

func TestBuildSearchQuery_SingleFilter(t *testing.T) {
	sql, args := buildSearchQuery([]float32{0.5}, 3, models.SearchFilters{Platform: "Android"})

	assert.Contains(t, sql, "WHERE platform = $2")
	assert.NotContains(t, sql, "country")
	assert.NotContains(t, sql, "user_type =")
	assert.Contains(t, sql, "LIMIT $3")
	require.Len(t, args, 3)
	assert.Equal(t, "Android", args[1])
	assert.Equal(t, 3, args[2])
}

func TestBuildSearchQuery_AllFilters(t *testing.T) {
	sql, args := buildSearchQuery([]float32{0.5}, 10, models.SearchFilters{
		Platform: " iOS ",
		Country:  "DE",
		UserType: "free",
	})

	assert.Contains(t, sql, "WHERE platform = $2 AND country = $3 AND user_type = $4")
	assert.Contains(t, sql, "LIMIT $5")
	require.Len(t, args, 5)
	// Filter values are trimmed before binding.
	assert.Equal(t, "iOS", args[1])
	assert.Equal(t, "DE", args[2])
	assert.Equal(t, "free", args[3])
	assert.Equal(t, 10, args[4])
}

func TestBuildSearchQuery_PartialFilters(t *testing.T) {
	sql, args := buildSearchQuery([]float32{0.5}, 3, models.SearchFilters{Country: "BR", UserType: "pro"})

	assert.Contains(t, sql, "WHERE country = $2 AND user_type = $3")
	assert.NotContains(t, sql, "platform")
	require.Len(t, args, 4)
	assert.Equal(t, "BR", args[1])
	assert.Equal(t, "pro", args[2])
}

func TestBuildSearchQuery_ColumnContract(t *testing.T) {
	sql, _ := buildSearchQuery([]float32{0.5}, 1, models.SearchFilters{})

	// The scan code depends on exactly this projection order.
	idx := strings.Index(sql, "SELECT id, source, country, platform, rating, user_type, text, 1 - (embedding <=> $1) AS similarity")
	assert.GreaterOrEqual(t, idx, 0)
}

func TestNewEvidenceItem(t *testing.T) {
	id := uuid.MustParse("018e1234-5678-9abc-def0-111111111111")

	t.Run("all fields present round-trip exactly", func(t *testing.T) {
		source := "app_reviews"
		country := "US"
		platform := "Android"
		rating := int16(2)
		userType := "free"
		text := "payment failed at checkout"
		similarity := 0.91

		item := newEvidenceItem(id, &source, &country, &platform, &rating, &userType, &text, &similarity)

		assert.Equal(t, id, item.ID)
		assert.Equal(t, "app_reviews", item.Source)
		assert.Equal(t, "US", item.Country)
		assert.Equal(t, "Android", item.Platform)
		require.NotNil(t, item.Rating)
		assert.Equal(t, 2, *item.Rating)
		assert.Equal(t, "free", item.UserType)
		assert.Equal(t, "payment failed at checkout", item.Text)
		assert.InDelta(t, 0.91, item.Similarity, 1e-9)
	})

	t.Run("missing optional fields map to defaults, not a crash", func(t *testing.T) {
		item := newEvidenceItem(id, nil, nil, nil, nil, nil, nil, nil)

		assert.Equal(t, id, item.ID)
		assert.Empty(t, item.Source)
		assert.Empty(t, item.Country)
		assert.Empty(t, item.Platform)
		assert.Nil(t, item.Rating)
		assert.Empty(t, item.UserType)
		assert.Empty(t, item.Text)
		assert.Zero(t, item.Similarity)
	})

	t.Run("NULL similarity defaults to zero", func(t *testing.T) {
		text := "slow loading"

		item := newEvidenceItem(id, nil, nil, nil, nil, nil, &text, nil)

		assert.Equal(t, "slow loading", item.Text)
		assert.Zero(t, item.Similarity)
	})
}
