package sqlite

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type storeMetrics struct {
	duration metric.Float64Histogram
}

func newStoreMetrics() storeMetrics {
	meter := otel.Meter("github.com/fr0stylo/guildwatch/internal/adapters/sqlite")
	duration, _ := meter.Float64Histogram("guildwatch.store.duration",
		metric.WithDescription("SQLite guild store operation latency"),
		metric.WithUnit("s"),
	)
	return storeMetrics{duration: duration}
}

// observe records the time since start for op.
func (m storeMetrics) observe(ctx context.Context, op string, start time.Time, err error) {
	if m.duration == nil {
		return
	}
	m.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("db.operation", op),
		attribute.Bool("error", err != nil),
	))
}
