// Command ingest seeds the feedback store from a CSV file.
//
// Usage:
//
//	go run ./cmd/ingest -file data/feedback_seed.csv -wipe
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pmlens/insights/db"
	"github.com/pmlens/insights/internal/config"
	"github.com/pmlens/insights/internal/embeddings"
	"github.com/pmlens/insights/internal/googleai"
	"github.com/pmlens/insights/internal/ingest"
	"github.com/pmlens/insights/internal/openai"
	"github.com/pmlens/insights/internal/repository"
	"github.com/pmlens/insights/pkg/database"
)

func main() {
	var (
		filePath  = flag.String("file", "data/feedback_seed.csv", "path to the seed CSV file")
		wipe      = flag.Bool("wipe", false, "delete existing rows with the same source before inserting")
		source    = flag.String("source", "app_reviews", "source label wiped when -wipe is set")
		embedRate = flag.Float64("embed-rate", 5, "max embedding calls per second")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	client, err := newEmbeddingClient(ctx, cfg)
	if err != nil {
		slog.Error("failed to create embedding client", "error", err)
		os.Exit(1)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		slog.Error("failed to open seed file", "file", *filePath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	ingester := ingest.NewIngester(ingest.IngesterParams{
		Client:  client,
		Store:   repository.NewFeedbackRepository(pool),
		Limiter: rate.NewLimiter(rate.Limit(*embedRate), 1),
	})

	wipeSource := ""
	if *wipe {
		wipeSource = *source
	}

	stats, err := ingester.Run(ctx, f, wipeSource)
	if err != nil {
		slog.Error("ingestion failed", "error", err, "inserted_before_failure", stats.Inserted)
		os.Exit(1)
	}

	slog.Info("done",
		"inserted", stats.Inserted,
		"skipped_empty", stats.SkippedEmpty,
		"wiped", stats.Wiped,
	)
}

func newEmbeddingClient(ctx context.Context, cfg *config.Config) (embeddings.Client, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderGoogle:
		return googleai.NewClient(ctx, cfg.GoogleAIAPIKey,
			googleai.WithModel(cfg.EmbeddingModel),
			googleai.WithDimensions(cfg.EmbeddingDimensions),
		)
	default:
		return openai.NewClient(cfg.OpenAIAPIKey,
			openai.WithModel(cfg.EmbeddingModel),
			openai.WithDimensions(cfg.EmbeddingDimensions),
		), nil
	}
}
