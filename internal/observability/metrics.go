// Package observability provides OpenTelemetry instrumentation for tracing and metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes the OpenTelemetry metrics provider with a Prometheus exporter.
// It returns the HTTP handler for the /metrics endpoint and a shutdown function.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// OpenCycleCounter reports how many assets currently hold an open cycle.
type OpenCycleCounter interface {
	CountOpenCycles(ctx context.Context) (int64, error)
}

// RegisterOpenCycleGauge exports the open-cycle count, read on every scrape.
func RegisterOpenCycleGauge(counter OpenCycleCounter) error {
	meter := otel.Meter("maintplane/observability")
	_, err := meter.Int64ObservableGauge(
		"maintplane_open_cycles",
		metric.WithDescription("Assets holding an open workflow or direct schedule"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			n, err := counter.CountOpenCycles(ctx)
			if err != nil {
				return err
			}
			o.Observe(n)
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to register open cycle gauge: %w", err)
	}
	return nil
}
