package maintenance

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "maintplane/maintenance"

type serviceMetrics struct {
	cyclesCreated metric.Int64Counter
	assetsSkipped metric.Int64Counter
	assetsFailed  metric.Int64Counter
	decisions     metric.Int64Counter
}

func newServiceMetrics(logger *slog.Logger) *serviceMetrics {
	meter := otel.Meter(instrumentationName)
	fallback := noop.NewMeterProvider().Meter(instrumentationName)

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			logger.Warn("failed to register metric", "metric", name, "error", err)
			c, _ = fallback.Int64Counter(name)
		}
		return c
	}

	return &serviceMetrics{
		cyclesCreated: counter("maintplane.cycles.created", "Maintenance cycles created by batch runs"),
		assetsSkipped: counter("maintplane.assets.skipped", "Assets skipped by batch runs"),
		assetsFailed:  counter("maintplane.assets.failed", "Assets that failed during batch runs"),
		decisions:     counter("maintplane.decisions", "Approval decisions applied to workflows"),
	}
}

func (m *serviceMetrics) created(ctx context.Context, kind string) {
	m.cyclesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *serviceMetrics) skipped(ctx context.Context, reason string) {
	m.assetsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *serviceMetrics) failed(ctx context.Context) {
	m.assetsFailed.Add(ctx, 1)
}

func (m *serviceMetrics) decided(ctx context.Context, action Action, replayed bool) {
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(action)),
		attribute.Bool("replayed", replayed),
	))
}
