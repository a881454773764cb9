// Package service contains the retrieval façade and the report generators
// built on top of it.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pmlens/insights/internal/embeddings"
	"github.com/pmlens/insights/internal/insighterrors"
	"github.com/pmlens/insights/internal/models"
	"github.com/pmlens/insights/internal/observability"
)

const (
	defaultEmbedTimeout = 10 * time.Second
	defaultQueryTimeout = 5 * time.Second
)

// EvidenceStore provides the nearest-neighbor read operation needed for retrieval.
type EvidenceStore interface {
	SearchNearest(ctx context.Context, queryEmbedding []float32, topK int, filters models.SearchFilters) (
		[]models.EvidenceItem, error)
}

// SearchService is the retrieval façade: it embeds a question, runs the
// similarity query against the feedback store, and returns ranked evidence.
// It is the only retrieval interface the rest of the system touches.
//
// The service holds no per-call state; concurrent Search calls are
// independent as long as the injected client and store are safe for
// concurrent use.
type SearchService struct {
	embeddingClient embeddings.Client
	store           EvidenceStore
	embedTimeout    time.Duration
	queryTimeout    time.Duration
	metrics         observability.SearchMetrics
	logger          *slog.Logger
}

// SearchServiceParams configures SearchService. Metrics may be nil (disabled);
// zero timeouts fall back to the defaults.
type SearchServiceParams struct {
	EmbeddingClient embeddings.Client
	Store           EvidenceStore
	EmbedTimeout    time.Duration
	QueryTimeout    time.Duration
	Metrics         observability.SearchMetrics
	Logger          *slog.Logger
}

// NewSearchService creates a SearchService.
func NewSearchService(p SearchServiceParams) *SearchService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	embedTimeout := p.EmbedTimeout
	if embedTimeout <= 0 {
		embedTimeout = defaultEmbedTimeout
	}

	queryTimeout := p.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}

	return &SearchService{
		embeddingClient: p.EmbeddingClient,
		store:           p.Store,
		embedTimeout:    embedTimeout,
		queryTimeout:    queryTimeout,
		metrics:         p.Metrics,
		logger:          logger,
	}
}

// Search returns at most topK evidence items for the question, ordered by
// non-increasing similarity.
//
// A question that is empty after trimming short-circuits to an empty result
// without contacting the embedding provider or the store; that is deliberate
// UI behavior, not an error. Every non-empty question is re-embedded and
// re-queried: no caching across calls. The embedding call and the store query
// each run under their own timeout.
func (s *SearchService) Search(
	ctx context.Context, question string, topK int, filters models.SearchFilters,
) ([]models.EvidenceItem, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return []models.EvidenceItem{}, nil
	}

	if topK <= 0 {
		return nil, insighterrors.NewValidationError("topK", "topK must be a positive integer")
	}

	start := time.Now()

	embedCtx, cancelEmbed := context.WithTimeout(ctx, s.embedTimeout)
	defer cancelEmbed()

	embedding, err := s.embeddingClient.CreateEmbedding(embedCtx, question)
	if err != nil {
		s.logger.Error("search: create embedding failed", "error", err, "topK", topK)
		s.recordError(ctx, "provider")

		return nil, fmt.Errorf("create embedding: %w", err)
	}

	queryCtx, cancelQuery := context.WithTimeout(ctx, s.queryTimeout)
	defer cancelQuery()

	items, err := s.store.SearchNearest(queryCtx, embedding, topK, filters)
	if err != nil {
		s.logger.Error("search: nearest query failed", "error", err, "topK", topK)
		s.recordError(ctx, "store")

		return nil, fmt.Errorf("search nearest: %w", err)
	}

	if items == nil {
		items = []models.EvidenceItem{}
	}

	if s.metrics != nil {
		s.metrics.RecordSearch(ctx, len(items), time.Since(start))
	}

	s.logger.Debug("search: completed",
		"topK", topK,
		"results", len(items),
		"filtered", !filters.IsZero(),
	)

	return items, nil
}

func (s *SearchService) recordError(ctx context.Context, kind string) {
	if s.metrics != nil {
		s.metrics.RecordSearchError(ctx, kind)
	}
}
