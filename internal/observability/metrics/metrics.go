package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	statusTransitions metric.Int64Counter
	transitionDenied  metric.Int64Counter
	reportQueries     metric.Int64Counter
	rollupDuration    metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	if strings.EqualFold(strings.TrimSpace(protocol), "http") {
		return otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	}
	return otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "console"
	}
	meter := provider.Meter(name)

	statusTransitions, err := meter.Int64Counter("console_status_transitions_total",
		metric.WithDescription("Successful lifecycle status transitions"))
	if err != nil {
		return nil, err
	}
	transitionDenied, err := meter.Int64Counter("console_status_transitions_denied_total",
		metric.WithDescription("Rejected lifecycle transition attempts"))
	if err != nil {
		return nil, err
	}
	reportQueries, err := meter.Int64Counter("console_report_queries_total",
		metric.WithDescription("Reporting facade queries served"))
	if err != nil {
		return nil, err
	}
	rollupDuration, err := meter.Float64Histogram("console_rollup_duration_seconds",
		metric.WithDescription("Financial rollup computation duration"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		statusTransitions: statusTransitions,
		transitionDenied:  transitionDenied,
		reportQueries:     reportQueries,
		rollupDuration:    rollupDuration,
	}, nil
}

func (m *Metrics) RecordTransition(ctx context.Context, entityKind, action string) {
	if m == nil {
		return
	}
	m.statusTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity_kind", entityKind),
		attribute.String("action", action),
	))
}

func (m *Metrics) RecordTransitionDenied(ctx context.Context, entityKind, reason string) {
	if m == nil {
		return
	}
	m.transitionDenied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity_kind", entityKind),
		attribute.String("reason", reason),
	))
}

func (m *Metrics) RecordReportQuery(ctx context.Context, report string) {
	if m == nil {
		return
	}
	m.reportQueries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("report", report),
	))
}

func (m *Metrics) RecordRollupDuration(ctx context.Context, report string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rollupDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("report", report),
	))
}
