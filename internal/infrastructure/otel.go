package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"amtkcli/internal/config"
)

const (
	ServiceVersion = "1.2.0"
	MeterName      = "amtkcli"
)

// Telemetry bundles the tracer and meter used by the pipeline. Providers are
// nil when the corresponding signal is disabled; Tracer and Meter are then
// no-op implementations so callers never branch.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *PipelineMetrics
	logger         *slog.Logger
}

// InitializeTelemetry sets up tracing (spans written to traceOut as JSON
// lines) and metrics (collected into a private Prometheus registry).
func InitializeTelemetry(cfg config.TelemetryConfig, traceOut io.Writer, logger *slog.Logger) (*Telemetry, error) {
	res, err := resource.New(context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
			semconv.DeploymentEnvironmentName(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		logger: logger,
	}

	if cfg.TracesEnabled {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(traceOut))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithResource(res),
		)
		t.Tracer = t.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(ServiceVersion))
	}

	if cfg.MetricsEnabled {
		t.Registry = prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(t.Registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		t.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		t.Meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(ServiceVersion))
	}

	t.Metrics, err = NewPipelineMetrics(t.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	logger.Debug("Telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.Bool("tracing_enabled", cfg.TracesEnabled),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled))

	return t, nil
}

// NewNoopTelemetry returns telemetry that records nothing, for callers and
// tests that run without exporters.
func NewNoopTelemetry(logger *slog.Logger) *Telemetry {
	t := &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		logger: logger,
	}
	// noop instruments never fail to register
	t.Metrics, _ = NewPipelineMetrics(t.Meter)
	return t
}

// WriteMetrics writes the collected metrics in Prometheus text format. It
// does nothing when metrics are disabled or path is empty.
func (t *Telemetry) WriteMetrics(path string) error {
	if t.Registry == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	t.logger.Debug("Metrics written", slog.String("path", path))
	return nil
}

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// PipelineMetrics are the instruments recorded by pipeline stages.
type PipelineMetrics struct {
	StageExecutions metric.Int64Counter
	StageDuration   metric.Float64Histogram
	StageErrors     metric.Int64Counter
	RowsProcessed   metric.Int64Counter
	SentinelValues  metric.Int64Counter
}

// NewPipelineMetrics registers the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	executions, err := meter.Int64Counter(
		"pipeline_stage_executions_total",
		metric.WithDescription("Total number of stage executions by status"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Stage execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter(
		"pipeline_stage_errors_total",
		metric.WithDescription("Total number of stage errors by error type"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"pipeline_rows_processed_total",
		metric.WithDescription("Rows read and written by each stage"),
	)
	if err != nil {
		return nil, err
	}

	sentinels, err := meter.Int64Counter(
		"pipeline_sentinel_values_total",
		metric.WithDescription("Placeholder tokens replaced with missing values, by column"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		StageExecutions: executions,
		StageDuration:   duration,
		StageErrors:     stageErrors,
		RowsProcessed:   rows,
		SentinelValues:  sentinels,
	}, nil
}

// RecordStage records one finished stage execution.
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage, status string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	)
	m.StageExecutions.Add(ctx, 1, attrs)
	m.StageDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordRows records rows read and written by a stage.
func (m *PipelineMetrics) RecordRows(ctx context.Context, stage string, in, out int) {
	m.RowsProcessed.Add(ctx, int64(in), metric.WithAttributes(
		attribute.String("stage", stage), attribute.String("direction", "in")))
	m.RowsProcessed.Add(ctx, int64(out), metric.WithAttributes(
		attribute.String("stage", stage), attribute.String("direction", "out")))
}

// RecordSentinels records replaced placeholder tokens for a column.
func (m *PipelineMetrics) RecordSentinels(ctx context.Context, column string, n int) {
	m.SentinelValues.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}

// RecordError records a stage failure.
func (m *PipelineMetrics) RecordError(ctx context.Context, stage, errType string) {
	m.StageErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("error_type", errType),
	))
}

// RecordSpanError marks span as failed with err.
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
