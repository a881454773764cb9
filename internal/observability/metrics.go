package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SearchMetrics records retrieval outcomes. Implementations must be safe for
// concurrent use. A nil SearchMetrics means metrics are disabled.
type SearchMetrics interface {
	RecordSearch(ctx context.Context, results int, duration time.Duration)
	RecordSearchError(ctx context.Context, kind string)
}

// Metrics holds all instruments for the service.
type Metrics struct {
	searchTotal    metric.Int64Counter
	searchResults  metric.Int64Histogram
	searchDuration metric.Float64Histogram
	searchErrors   metric.Int64Counter
}

var _ SearchMetrics = (*Metrics)(nil)

// NewMetrics creates the instrument set on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	searchTotal, err := meter.Int64Counter("insights_searches_total",
		metric.WithDescription("Completed retrieval calls"))
	if err != nil {
		return nil, fmt.Errorf("create searches counter: %w", err)
	}

	searchResults, err := meter.Int64Histogram("insights_search_results",
		metric.WithDescription("Evidence items returned per retrieval"))
	if err != nil {
		return nil, fmt.Errorf("create results histogram: %w", err)
	}

	searchDuration, err := meter.Float64Histogram("insights_search_duration_seconds",
		metric.WithDescription("End-to-end retrieval duration (embed + query)"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	searchErrors, err := meter.Int64Counter("insights_search_errors_total",
		metric.WithDescription("Failed retrieval calls by error kind"))
	if err != nil {
		return nil, fmt.Errorf("create errors counter: %w", err)
	}

	return &Metrics{
		searchTotal:    searchTotal,
		searchResults:  searchResults,
		searchDuration: searchDuration,
		searchErrors:   searchErrors,
	}, nil
}

// RecordSearch records one successful retrieval.
func (m *Metrics) RecordSearch(ctx context.Context, results int, duration time.Duration) {
	m.searchTotal.Add(ctx, 1)
	m.searchResults.Record(ctx, int64(results))
	m.searchDuration.Record(ctx, duration.Seconds())
}

// RecordSearchError records one failed retrieval. kind is "provider" or "store".
func (m *Metrics) RecordSearchError(ctx context.Context, kind string) {
	m.searchErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
