// Package tests contains integration tests that exercise the full retrieval
// path against a real PostgreSQL instance with the pgvector extension.
//
// The tests start an isolated pgvector container via testcontainers, apply
// the embedded migrations, and drive the repository and service layers the
// same way the API does. Run with -short to skip them.
package tests

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pmlens/insights/db"
	"github.com/pmlens/insights/internal/embeddings"
	"github.com/pmlens/insights/internal/insighterrors"
	"github.com/pmlens/insights/internal/models"
	"github.com/pmlens/insights/internal/repository"
	"github.com/pmlens/insights/internal/service"
	"github.com/pmlens/insights/pkg/database"
)

const embeddingDimensions = 1536

// setupTestDB starts a pgvector-enabled PostgreSQL container, applies the
// embedded migrations, and returns a ready connection pool. Cleanup is
// registered on t.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("insights_test"),
		postgres.WithUsername("insights_test"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "get connection string")

	require.NoError(t, db.Migrate(connStr), "apply migrations")

	pool, err := database.NewPostgresPool(ctx, connStr)
	require.NoError(t, err, "create connection pool")

	t.Cleanup(pool.Close)

	return pool
}

// unitEmbedding builds a 1536-dimension unit vector whose cosine similarity
// with axisEmbedding() is exactly cosine.
func unitEmbedding(cosine float64) []float32 {
	v := make([]float32, embeddingDimensions)
	v[0] = float32(cosine)
	v[1] = float32(math.Sqrt(1 - cosine*cosine))

	return v
}

// axisEmbedding is the query vector the similarity assertions are anchored on.
func axisEmbedding() []float32 {
	return unitEmbedding(1.0)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func insertFeedback(
	t *testing.T, repo *repository.FeedbackRepository, text, platform, country string, cosine float64,
) uuid.UUID {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)

	id, err := repo.Insert(context.Background(), &models.FeedbackRecord{
		Source:    "app_reviews",
		Country:   strPtr(country),
		Platform:  strPtr(platform),
		Rating:    intPtr(3),
		UserType:  strPtr("free"),
		Text:      text,
		CreatedAt: &now,
		Embedding: unitEmbedding(cosine),
	})
	require.NoError(t, err)

	return id
}

func TestSearchNearestOrdering(t *testing.T) {
	pool := setupTestDB(t)
	repo := repository.NewFeedbackRepository(pool)
	ctx := context.Background()

	// Insert out of similarity order on purpose.
	mid := insertFeedback(t, repo, "Sync is unreliable on spotty networks", "android", "DE", 0.80)
	far := insertFeedback(t, repo, "Please add a dark theme", "ios", "US", 0.60)
	near := insertFeedback(t, repo, "Sync keeps failing after the update", "android", "US", 0.99)

	items, err := repo.SearchNearest(ctx, axisEmbedding(), 10, models.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, []uuid.UUID{near, mid, far}, []uuid.UUID{items[0].ID, items[1].ID, items[2].ID})

	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i].Similarity, items[i-1].Similarity,
			"similarity must be non-increasing")
	}

	assert.InDelta(t, 0.99, items[0].Similarity, 0.001)
	assert.InDelta(t, 0.80, items[1].Similarity, 0.001)
	assert.InDelta(t, 0.60, items[2].Similarity, 0.001)

	first := items[0]
	assert.Equal(t, "app_reviews", first.Source)
	assert.Equal(t, "android", first.Platform)
	assert.Equal(t, "US", first.Country)
	assert.Equal(t, "free", first.UserType)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 3, *first.Rating)
	assert.Equal(t, "Sync keeps failing after the update", first.Text)
}

func TestSearchNearestTopKLimit(t *testing.T) {
	pool := setupTestDB(t)
	repo := repository.NewFeedbackRepository(pool)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		insertFeedback(t, repo, "Checkout is confusing", "android", "US", 0.5+float64(i)*0.05)
	}

	items, err := repo.SearchNearest(ctx, axisEmbedding(), 2, models.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSearchNearestFilters(t *testing.T) {
	pool := setupTestDB(t)
	repo := repository.NewFeedbackRepository(pool)
	ctx := context.Background()

	androidID := insertFeedback(t, repo, "Widget crashes on launch", "android", "DE", 0.90)
	insertFeedback(t, repo, "Widget crashes on launch", "ios", "DE", 0.95)
	insertFeedback(t, repo, "Love the new widget", "android", "US", 0.85)

	items, err := repo.SearchNearest(ctx, axisEmbedding(), 10, models.SearchFilters{
		Platform: "android",
		Country:  "DE",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, androidID, items[0].ID)

	// A filter matching nothing yields zero rows, not an error.
	items, err = repo.SearchNearest(ctx, axisEmbedding(), 10, models.SearchFilters{Country: "FR"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchNearestTieBreakByID(t *testing.T) {
	pool := setupTestDB(t)
	repo := repository.NewFeedbackRepository(pool)
	ctx := context.Background()

	a := insertFeedback(t, repo, "Notifications arrive late", "android", "US", 0.75)
	b := insertFeedback(t, repo, "Notifications never arrive", "android", "US", 0.75)

	lo, hi := a, b
	if b.String() < a.String() {
		lo, hi = b, a
	}

	items, err := repo.SearchNearest(ctx, axisEmbedding(), 10, models.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, lo, items[0].ID)
	assert.Equal(t, hi, items[1].ID)
}

func TestFeedbackRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	repo := repository.NewFeedbackRepository(pool)
	ctx := context.Background()

	id := insertFeedback(t, repo, "Export to CSV would save me hours", "web", "UK", 0.70)

	rec, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "Export to CSV would save me hours", rec.Text)
	require.NotNil(t, rec.Platform)
	assert.Equal(t, "web", *rec.Platform)
	require.NotNil(t, rec.CreatedAt)

	deleted, err := repo.DeleteBySource(ctx, "app_reviews")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, insighterrors.ErrNotFound)
}

// TestSearchServiceEndToEnd drives the retrieval façade against the real
// store, with deterministic mock embeddings standing in for the provider.
func TestSearchServiceEndToEnd(t *testing.T) {
	pool := setupTestDB(t)
	repo := repository.NewFeedbackRepository(pool)
	ctx := context.Background()

	client := embeddings.NewMockClient(embeddingDimensions)

	texts := []string{
		"The sync feature loses my edits",
		"Sync conflicts every time I go offline",
		"Great app, five stars",
		"Billing page will not load",
	}
	for _, text := range texts {
		vec, err := client.CreateEmbedding(ctx, text)
		require.NoError(t, err)

		_, err = repo.Insert(ctx, &models.FeedbackRecord{
			Source:    "app_reviews",
			Text:      text,
			Embedding: vec,
		})
		require.NoError(t, err)
	}

	svc := service.NewSearchService(service.SearchServiceParams{
		EmbeddingClient: client,
		Store:           repo,
	})

	items, err := svc.Search(ctx, "Why do users complain about sync?", 3, models.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i].Similarity, items[i-1].Similarity)
	}

	// An identical question embeds identically, so the stored text itself
	// comes back as the top hit with similarity ~1.
	items, err = svc.Search(ctx, texts[0], 1, models.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, texts[0], items[0].Text)
	assert.InDelta(t, 1.0, items[0].Similarity, 0.001)

	// Empty question short-circuits without touching the store.
	items, err = svc.Search(ctx, "   ", 3, models.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, items)
}
