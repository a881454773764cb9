// Command api runs the feedback insights HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pmlens/insights/db"
	"github.com/pmlens/insights/internal/api/handlers"
	"github.com/pmlens/insights/internal/api/middleware"
	"github.com/pmlens/insights/internal/config"
	"github.com/pmlens/insights/internal/embeddings"
	"github.com/pmlens/insights/internal/googleai"
	"github.com/pmlens/insights/internal/observability"
	"github.com/pmlens/insights/internal/openai"
	"github.com/pmlens/insights/internal/repository"
	"github.com/pmlens/insights/internal/service"
	"github.com/pmlens/insights/pkg/database"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

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

	embeddingClient, err := newEmbeddingClient(ctx, cfg)
	if err != nil {
		slog.Error("failed to create embedding client", "error", err)
		os.Exit(1)
	}

	meterProvider, err := observability.NewMeterProvider(cfg.OtelMetricsExporter)
	if err != nil {
		slog.Error("failed to create meter provider", "error", err)
		os.Exit(1)
	}

	var searchMetrics observability.SearchMetrics

	if meterProvider != nil {
		metrics, err := observability.NewMetrics(meterProvider.Meter("insights"))
		if err != nil {
			slog.Error("failed to create metrics", "error", err)
			os.Exit(1)
		}

		searchMetrics = metrics
		slog.Info("metrics enabled", "exporter", cfg.OtelMetricsExporter)
	} else {
		slog.Warn("metrics not enabled (OTEL_METRICS_EXPORTER empty or unset)")
	}

	feedbackRepo := repository.NewFeedbackRepository(pool)
	searchService := service.NewSearchService(service.SearchServiceParams{
		EmbeddingClient: embeddingClient,
		Store:           feedbackRepo,
		EmbedTimeout:    cfg.EmbedTimeout,
		QueryTimeout:    cfg.QueryTimeout,
		Metrics:         searchMetrics,
	})

	searchHandler := handlers.NewSearchHandler(searchService)
	reportsHandler := handlers.NewReportsHandler(searchService)
	healthHandler := handlers.NewHealthHandler()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)

	router.Get("/health", healthHandler.Check)
	router.Route("/v1", func(r chi.Router) {
		r.Post("/search", searchHandler.Search)
		r.Post("/reports/analysis", reportsHandler.AgenticAnalysis)
		r.Post("/reports/weekly-brief", reportsHandler.WeeklyBrief)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(router, "insights-api"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port, "embedding_provider", cfg.EmbeddingProvider)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	if err := observability.ShutdownMeterProvider(shutdownCtx, meterProvider); err != nil {
		slog.Error("meter provider shutdown", "error", err)
	}

	slog.Info("server exited")
}

// newEmbeddingClient builds the provider selected by configuration.
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

// setupLogging configures slog with the specified log level and the
// request-scoped context handler.
func setupLogging(level string) {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(observability.NewContextHandler(handler)))
}
