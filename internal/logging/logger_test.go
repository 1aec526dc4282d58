package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/logtest"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
		err  bool
	}{
		{"trace", TraceLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			if tt.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Output = OutputConfig{}
	assert.Error(t, cfg.Validate())
}

func TestFromSettings(t *testing.T) {
	cfg, err := FromSettings("debug", "console")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level)
	assert.Equal(t, "console", cfg.Format)

	_, err = FromSettings("nope", "")
	assert.Error(t, err)

	_, err = FromSettings("", "yaml")
	assert.Error(t, err)
}

func TestLogger_WritesContextFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Caller = false
	logger, err := NewWriterLogger(cfg, &buf, nil)
	require.NoError(t, err)

	ctx := WithGeneration(context.Background(), "gen-1")
	ctx = WithProject(ctx, "acme-plumbing")
	ctx = WithPhase(ctx, 7)
	logger.Info(ctx, "phase complete", zap.Int("pages", 6))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "phase complete", line["msg"])
	assert.Equal(t, "gen-1", line["generation.id"])
	assert.Equal(t, "acme-plumbing", line["project.slug"])
	assert.EqualValues(t, 7, line["phase"])
	assert.EqualValues(t, 6, line["pages"])
	assert.Equal(t, "sitesmith", line["service"])
}

func TestLogger_OTELBridge(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Output.OTEL = true
	rec := logtest.NewRecorder()
	logger, err := NewWriterLogger(cfg, &buf, rec)
	require.NoError(t, err)

	logger.Info(WithGeneration(context.Background(), "gen-1"), "site assembled", zap.Int("pages", 6))
	logger.Debug(context.Background(), "filtered")

	var records []logtest.Record
	for scope, rs := range rec.Result() {
		if scope.Name == "github.com/fyrsmithlabs/sitesmith" {
			records = append(records, rs...)
		}
	}
	require.Len(t, records, 1)
	assert.Equal(t, "site assembled", records[0].Body.AsString())
	assert.Equal(t, log.SeverityInfo, records[0].Severity)

	attrs := map[string]log.Value{}
	for _, kv := range records[0].Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.EqualValues(t, 6, attrs["pages"].AsInt64())

	require.Len(t, decodeLines(t, &buf), 1, "stdout core still receives the entry")
}

func TestLogger_OTELOnlyWithoutProviderFails(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output = OutputConfig{OTEL: true}
	_, err := NewWriterLogger(cfg, &bytes.Buffer{}, nil)
	assert.Error(t, err)
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Level = zapcore.WarnLevel
	logger, err := NewWriterLogger(cfg, &buf, nil)
	require.NoError(t, err)

	ctx := context.Background()
	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "hidden too")
	logger.Warn(ctx, "shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
	assert.False(t, logger.Enabled(zapcore.InfoLevel))
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Caller = false
	logger, err := NewWriterLogger(cfg, &buf, nil)
	require.NoError(t, err)

	ctx := context.Background()
	logger.With(zap.String("github_token", "ghp_abcdefghijklmnopqrstuvwxyz")).Info(ctx, "deploying")
	logger.Info(ctx, "calling model",
		zap.String("api_key", "sk-live-1234567890"),
		zap.String("header", "Bearer abc.def.ghi"),
		zap.Error(errors.New("auth failed for sk-proj-abcdefghijkl")),
	)

	out := buf.String()
	assert.NotContains(t, out, "ghp_abcdefghijklmnopqrstuvwxyz")
	assert.NotContains(t, out, "sk-live-1234567890")
	assert.NotContains(t, out, "abc.def.ghi")
	assert.NotContains(t, out, "sk-proj-abcdefghijkl")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, redacted, lines[0]["github_token"])
	assert.Equal(t, redacted, lines[1]["api_key"])
	assert.Contains(t, lines[1]["error"], redacted)
}

func TestLogger_RedactionDisabled(t *testing.T) {
	var buf bytes.Buffer
	cfg := NewDefaultConfig()
	cfg.Redaction.Enabled = false
	logger, err := NewWriterLogger(cfg, &buf, nil)
	require.NoError(t, err)

	logger.Info(context.Background(), "raw", zap.String("token", "visible"))
	assert.Contains(t, buf.String(), "visible")
}

func TestLogger_TraceCorrelation(t *testing.T) {
	tl := NewTestLogger()
	tp := trace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	tl.Info(ctx, "inside span")
	span.End()

	tl.AssertTraceCorrelation(t, "inside span")
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	ctx := WithGeneration(context.Background(), "g-42")

	tl.Warn(ctx, "quality below threshold", zap.Int("iteration", 2), zap.Bool("meets", false))
	tl.AssertLogged(t, zapcore.WarnLevel, "below threshold")
	tl.AssertNotLogged(t, zapcore.ErrorLevel, "below threshold")
	tl.AssertField(t, "quality below threshold", "generation.id", "g-42")
	tl.AssertField(t, "quality below threshold", "iteration", 2)
	tl.AssertField(t, "quality below threshold", "meets", false)

	assert.Len(t, tl.All(), 1)
	tl.Reset()
	assert.Empty(t, tl.All())
}

func TestNewNopAndFromZap(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().Info(context.Background(), "discarded")
		FromZap(nil).Error(context.Background(), "discarded")
	})
	assert.NotNil(t, FromZap(zap.NewNop()).Underlying())
}

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
	assert.Equal(t, "", GenerationIDFromContext(context.Background()))
	assert.Equal(t, 0, PhaseFromContext(context.Background()))
}
