// Package ingest implements the one-shot CSV seed job: parse feedback rows,
// embed each text, and insert into the feedback store.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pmlens/insights/internal/embeddings"
	"github.com/pmlens/insights/internal/models"
)

// FeedbackInserter is the write surface of the feedback repository used here.
type FeedbackInserter interface {
	Insert(ctx context.Context, rec *models.FeedbackRecord) (uuid.UUID, error)
	DeleteBySource(ctx context.Context, source string) (int64, error)
}

// Stats summarizes one ingestion run.
type Stats struct {
	Inserted     int
	SkippedEmpty int
	Wiped        int64
}

// Ingester runs the batch job. Embedding calls go through a rate limiter so a
// large seed file does not trip provider rate limits.
type Ingester struct {
	client  embeddings.Client
	store   FeedbackInserter
	limiter *rate.Limiter
	logger  *slog.Logger
}

// IngesterParams configures Ingester. A nil Limiter means no rate limiting.
type IngesterParams struct {
	Client  embeddings.Client
	Store   FeedbackInserter
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// NewIngester creates an Ingester.
func NewIngester(p IngesterParams) *Ingester {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Ingester{
		client:  p.Client,
		store:   p.Store,
		limiter: p.Limiter,
		logger:  logger,
	}
}

// Run parses the CSV, optionally wipes prior rows with the given source label
// for idempotent reseeding, then embeds and inserts each row sequentially.
// The first embedding or insert failure aborts the run; rows inserted so far
// stay (the job is re-runnable with wipeSource).
func (ing *Ingester) Run(ctx context.Context, csvData io.Reader, wipeSource string) (Stats, error) {
	stats := Stats{}

	rows, skipped, err := ParseCSV(csvData)
	if err != nil {
		return stats, fmt.Errorf("parse seed CSV: %w", err)
	}

	stats.SkippedEmpty = skipped

	if wipeSource != "" {
		wiped, err := ing.store.DeleteBySource(ctx, wipeSource)
		if err != nil {
			return stats, fmt.Errorf("wipe source %q: %w", wipeSource, err)
		}

		stats.Wiped = wiped
		ing.logger.Info("wiped existing rows", "source", wipeSource, "count", wiped)
	}

	for _, row := range rows {
		if ing.limiter != nil {
			if err := ing.limiter.Wait(ctx); err != nil {
				return stats, fmt.Errorf("rate limiter: %w", err)
			}
		}

		embedding, err := ing.client.CreateEmbedding(ctx, row.Text)
		if err != nil {
			return stats, fmt.Errorf("embed row %d: %w", stats.Inserted+1, err)
		}

		id, err := ing.store.Insert(ctx, row.Record(embedding))
		if err != nil {
			return stats, fmt.Errorf("insert row %d: %w", stats.Inserted+1, err)
		}

		stats.Inserted++
		ing.logger.Debug("inserted feedback row", "id", id, "source", row.Source)
	}

	ing.logger.Info("ingestion finished",
		"inserted", stats.Inserted,
		"skipped_empty", stats.SkippedEmpty,
	)

	return stats, nil
}
