package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"amtkcli/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTelemetry_Disabled(t *testing.T) {
	tel, err := InitializeTelemetry(config.TelemetryConfig{ServiceName: "test"}, nil,
		NewLogger(io.Discard, config.LoggingConfig{}))
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider)
	assert.Nil(t, tel.MeterProvider)
	require.NotNil(t, tel.Metrics)

	// no-op instruments accept records
	tel.Metrics.RecordStage(context.Background(), "combine", "completed", time.Second)
	assert.NoError(t, tel.WriteMetrics(filepath.Join(t.TempDir(), "m.prom")))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestTelemetry_WriteMetrics(t *testing.T) {
	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName:    "test",
		MetricsEnabled: true,
	}, nil, NewLogger(io.Discard, config.LoggingConfig{}))
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	ctx := context.Background()
	tel.Metrics.RecordStage(ctx, "combine", "completed", 250*time.Millisecond)
	tel.Metrics.RecordRows(ctx, "combine", 10, 10)
	tel.Metrics.RecordSentinels(ctx, "Avg Min Late (Lt CS)", 3)
	tel.Metrics.RecordError(ctx, "clean", "SCHEMA_VIOLATION")

	path := filepath.Join(t.TempDir(), "pipeline.prom")
	require.NoError(t, tel.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "pipeline_stage_executions_total")
	assert.Contains(t, text, "pipeline_rows_processed_total")
	assert.Contains(t, text, "pipeline_sentinel_values_total")
	assert.Contains(t, text, `stage="combine"`)
}

func TestTelemetry_SpansWritten(t *testing.T) {
	var spans bytes.Buffer
	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName:   "test",
		TracesEnabled: true,
	}, &spans, NewLogger(io.Discard, config.LoggingConfig{}))
	require.NoError(t, err)

	_, span := tel.Tracer.Start(context.Background(), "stage.augment")
	RecordSpanError(span, errors.New("boom"))
	span.End()
	require.NoError(t, tel.Shutdown(context.Background()))

	assert.Contains(t, spans.String(), "stage.augment")
	assert.Contains(t, spans.String(), "boom")
}
