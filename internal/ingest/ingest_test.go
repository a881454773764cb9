package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmlens/insights/internal/embeddings"
	"github.com/pmlens/insights/internal/models"
)

const seedCSV = `source,country,platform,rating,user_type,created_at,text
app_reviews,US,Android,2,free,2024-11-02,"Payment failed twice at checkout"
app_reviews,DE,iOS,,pro,,"Love the new dashboard"
app_reviews,BR,Android,bad,,2024-11-03,"App crashes on startup"
app_reviews,,,,,,"   "
`

func TestParseCSV(t *testing.T) {
	rows, skipped, err := ParseCSV(strings.NewReader(seedCSV))

	require.NoError(t, err)
	assert.Equal(t, 1, skipped) // blank-text row dropped
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, "app_reviews", first.Source)
	require.NotNil(t, first.Country)
	assert.Equal(t, "US", *first.Country)
	require.NotNil(t, first.Platform)
	assert.Equal(t, "Android", *first.Platform)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 2, *first.Rating)
	require.NotNil(t, first.CreatedAt)
	assert.Equal(t, "2024-11-02", first.CreatedAt.Format("2006-01-02"))
	assert.Equal(t, "Payment failed twice at checkout", first.Text)

	// Optional cells map to nil, never empty strings.
	second := rows[1]
	assert.Nil(t, second.Rating)
	assert.Nil(t, second.CreatedAt)
	require.NotNil(t, second.UserType)
	assert.Equal(t, "pro", *second.UserType)

	// An unparseable rating degrades to nil instead of failing the file.
	third := rows[2]
	assert.Nil(t, third.Rating)
}

func TestParseCSV_MissingTextColumn(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader("source,country\napp_reviews,US\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "text")
}

type fakeInserter struct {
	inserted []*models.FeedbackRecord
	wiped    []string
}

func (f *fakeInserter) Insert(_ context.Context, rec *models.FeedbackRecord) (uuid.UUID, error) {
	f.inserted = append(f.inserted, rec)

	return uuid.New(), nil
}

func (f *fakeInserter) DeleteBySource(_ context.Context, source string) (int64, error) {
	f.wiped = append(f.wiped, source)

	return 2, nil
}

func TestIngester_Run(t *testing.T) {
	store := &fakeInserter{}
	ing := NewIngester(IngesterParams{
		Client: embeddings.NewMockClient(8),
		Store:  store,
	})

	stats, err := ing.Run(context.Background(), strings.NewReader(seedCSV), "app_reviews")

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Inserted)
	assert.Equal(t, 1, stats.SkippedEmpty)
	assert.Equal(t, int64(2), stats.Wiped)
	assert.Equal(t, []string{"app_reviews"}, store.wiped)
	require.Len(t, store.inserted, 3)

	for _, rec := range store.inserted {
		assert.NotEmpty(t, rec.Text)
		assert.Len(t, rec.Embedding, 8)
	}
}

func TestIngester_Run_NoWipe(t *testing.T) {
	store := &fakeInserter{}
	ing := NewIngester(IngesterParams{
		Client: embeddings.NewMockClient(8),
		Store:  store,
	})

	_, err := ing.Run(context.Background(), strings.NewReader(seedCSV), "")

	require.NoError(t, err)
	assert.Empty(t, store.wiped)
}
