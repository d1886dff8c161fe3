// Package telemetry provides OpenTelemetry instrumentation for the reporting
// path. Export is opt-in; when disabled every method is a no-op, and a
// telemetry fault is never allowed to affect reporting.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures telemetry export.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // gRPC endpoint, e.g. "localhost:4317"
	Insecure       bool
	Enabled        bool
}

// DefaultConfig returns harness defaults; telemetry stays off unless an
// endpoint is configured.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "ddn-test-harness",
		ServiceVersion: "1.0.0",
		Environment:    "test",
	}
}

// Provider owns the trace and metric providers plus the report-path
// instruments. It satisfies the reporter's Metrics interface.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	logger         *slog.Logger

	reportsStored  metric.Int64Counter
	reportsDropped metric.Int64Counter
	reportDuration metric.Float64Histogram
}

// New creates a telemetry provider. With cfg.Enabled false (or cfg nil) the
// provider is inert and all methods are safe no-ops.
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	p := &Provider{
		config: cfg,
		logger: slog.Default().With("component", "telemetry"),
	}

	if !cfg.Enabled {
		p.logger.InfoContext(ctx, "telemetry disabled")
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentName(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	if err := p.initTraces(ctx, res); err != nil {
		return nil, err
	}
	if err := p.initMetrics(ctx, res); err != nil {
		return nil, err
	}

	p.tracer = otel.Tracer("ddn-qa.testharness")
	p.logger.InfoContext(ctx, "telemetry initialized",
		"service", cfg.ServiceName, "endpoint", cfg.OTLPEndpoint)

	return p, nil
}

func (p *Provider) initTraces(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("telemetry: create trace exporter: %w", err)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(p.tracerProvider)
	return nil
}

func (p *Provider) initMetrics(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("telemetry: create metric exporter: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(p.meterProvider)

	meter := p.meterProvider.Meter("ddn-qa.testharness")

	p.reportsStored, err = meter.Int64Counter("reports_stored",
		metric.WithDescription("Failure/success records stored"))
	if err != nil {
		return fmt.Errorf("telemetry: create counter: %w", err)
	}
	p.reportsDropped, err = meter.Int64Counter("reports_dropped",
		metric.WithDescription("Reports dropped by the fault boundary"))
	if err != nil {
		return fmt.Errorf("telemetry: create counter: %w", err)
	}
	p.reportDuration, err = meter.Float64Histogram("report_duration_ms",
		metric.WithDescription("End-to-end report call duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return fmt.Errorf("telemetry: create histogram: %w", err)
	}

	return nil
}

// ReportStored counts one persisted record.
func (p *Provider) ReportStored(ctx context.Context) {
	if p.reportsStored != nil {
		p.reportsStored.Add(ctx, 1)
	}
}

// ReportDropped counts one swallowed report with its reason.
func (p *Provider) ReportDropped(ctx context.Context, reason string) {
	if p.reportsDropped != nil {
		p.reportsDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// ObserveReportDuration records one report call's latency.
func (p *Provider) ObserveReportDuration(ctx context.Context, d time.Duration) {
	if p.reportDuration != nil {
		p.reportDuration.Record(ctx, float64(d)/float64(time.Millisecond))
	}
}

// StartSpan opens a span when tracing is enabled; otherwise a no-op span.
func (p *Provider) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if p.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.tracer.Start(ctx, name)
}

// Shutdown flushes and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("telemetry: shutdown: %v", errs)
	}
	return nil
}
