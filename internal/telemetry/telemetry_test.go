package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/logtest"

	"github.com/fyrsmithlabs/sitesmith/internal/config"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), config.TelemetryConfig{}, "test")
	require.NoError(t, err)

	h := tel.Health()
	assert.False(t, h.Enabled)
	assert.True(t, h.Healthy)
	assert.False(t, h.Degraded)

	assert.NotNil(t, tel.Tracer("x"))
	assert.NotNil(t, tel.Meter("x"))
	assert.Nil(t, tel.LoggerProvider())
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_EnabledProvidesLogBridge(t *testing.T) {
	tel, err := New(context.Background(), config.TelemetryConfig{
		Enabled: true, Endpoint: "localhost:4318", Protocol: "http/protobuf", Insecure: true,
		ServiceName: "sitesmith", SampleRate: 1,
	}, "test")
	require.NoError(t, err)

	assert.True(t, tel.Health().Enabled)
	assert.NotNil(t, tel.LoggerProvider())

	rec := logtest.NewRecorder()
	tel.SetLoggerProvider(rec)
	assert.Same(t, rec, tel.LoggerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = tel.Shutdown(ctx)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(context.Background(), config.TelemetryConfig{Enabled: true}, "test")
	assert.Error(t, err)

	_, err = New(context.Background(), config.TelemetryConfig{
		Enabled: true, Endpoint: "localhost:4317", SampleRate: 2,
	}, "test")
	assert.Error(t, err)
}

func TestNilTelemetry(t *testing.T) {
	var tel *Telemetry
	assert.NotNil(t, tel.Tracer("x"))
	assert.NotNil(t, tel.Meter("x"))
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.True(t, tel.Health().Degraded)
	assert.Nil(t, tel.LoggerProvider())
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased")
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "otel.example.com:4318", stripScheme("https://otel.example.com:4318"))
	assert.Equal(t, "localhost:4318", stripScheme("http://localhost:4318"))
	assert.Equal(t, "localhost:4317", stripScheme("localhost:4317"))
}

func TestTestTelemetry_RecordsSpans(t *testing.T) {
	tt := NewTestTelemetry()
	ctx := context.Background()

	_, span := tt.Tracer("pipeline").Start(ctx, "phase.page_planning")
	span.SetAttributes(attribute.Int("pages", 6), attribute.String("archetype", "saas"))
	span.End()

	tt.AssertSpanExists(t, "phase.page_planning")
	tt.AssertSpanAttribute(t, "phase.page_planning", "pages", int64(6))
	tt.AssertSpanAttribute(t, "phase.page_planning", "archetype", "saas")
	assert.Equal(t, []string{"phase.page_planning"}, tt.SpanNames())
	assert.Nil(t, tt.SpanByName("missing"))
}

func TestTestTelemetry_CollectsMetrics(t *testing.T) {
	tt := NewTestTelemetry()
	ctx := context.Background()

	counter, err := tt.Meter("pipeline").Int64Counter("sitesmith.generations")
	require.NoError(t, err)
	counter.Add(ctx, 2)

	rm, err := tt.Collect(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, rm.ScopeMetrics)
	assert.Equal(t, "sitesmith.generations", rm.ScopeMetrics[0].Metrics[0].Name)
}
