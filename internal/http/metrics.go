package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sitesmith/internal/events"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
)

const httpInstrumentationName = "github.com/fyrsmithlabs/sitesmith/internal/http"

// HTTPMetrics records request and SSE stream metrics. Instruments that
// fail to register stay nil and are skipped.
type HTTPMetrics struct {
	meter  metric.Meter
	logger *logging.Logger

	requests      metric.Int64Counter
	duration      metric.Float64Histogram
	responseSize  metric.Int64Histogram
	inFlight      metric.Int64UpDownCounter
	openStreams   metric.Int64UpDownCounter
	streamedTotal metric.Int64Counter
}

// NewHTTPMetrics registers the instruments on the global meter provider.
func NewHTTPMetrics(logger *logging.Logger) *HTTPMetrics {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &HTTPMetrics{
		meter:  otel.Meter(httpInstrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *HTTPMetrics) init() {
	var err error
	warn := func(name string) {
		if err != nil {
			m.logger.Warn(context.Background(), "failed to create instrument",
				zap.String("instrument", name), zap.Error(err))
		}
	}

	m.requests, err = m.meter.Int64Counter("sitesmith.http.requests_total",
		metric.WithDescription("HTTP requests by method, route and status."),
		metric.WithUnit("{request}"))
	warn("requests_total")

	m.duration, err = m.meter.Float64Histogram("sitesmith.http.request_duration_seconds",
		metric.WithDescription("HTTP request duration. Generate requests last for the whole run."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.025, 0.1, 0.5, 1, 5, 15, 60, 180, 600))
	warn("request_duration_seconds")

	m.responseSize, err = m.meter.Int64Histogram("sitesmith.http.response_size_bytes",
		metric.WithDescription("HTTP response body size."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(100, 1000, 10000, 100000, 1000000))
	warn("response_size_bytes")

	m.inFlight, err = m.meter.Int64UpDownCounter("sitesmith.http.active_requests",
		metric.WithDescription("Requests currently being served."),
		metric.WithUnit("{request}"))
	warn("active_requests")

	m.openStreams, err = m.meter.Int64UpDownCounter("sitesmith.http.open_streams",
		metric.WithDescription("Progress event streams currently open."),
		metric.WithUnit("{stream}"))
	warn("open_streams")

	m.streamedTotal, err = m.meter.Int64Counter("sitesmith.http.events_streamed_total",
		metric.WithDescription("Progress events written to clients, by event type."),
		metric.WithUnit("{event}"))
	warn("events_streamed_total")
}

// MetricsMiddleware records one data point per request, labeled with the
// route pattern rather than the raw path.
func (m *HTTPMetrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			start := time.Now()
			if m.inFlight != nil {
				m.inFlight.Add(ctx, 1)
				defer m.inFlight.Add(ctx, -1)
			}

			err := next(c)

			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("endpoint", normalizePath(c.Path())),
				attribute.Int("status", c.Response().Status),
			)
			if m.requests != nil {
				m.requests.Add(ctx, 1, attrs)
			}
			if m.duration != nil {
				m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			}
			if m.responseSize != nil {
				m.responseSize.Record(ctx, c.Response().Size, attrs)
			}
			return err
		}
	}
}

// streamOpened tracks an SSE stream; call the returned func when it ends.
func (m *HTTPMetrics) streamOpened(ctx context.Context) func() {
	if m == nil || m.openStreams == nil {
		return func() {}
	}
	m.openStreams.Add(ctx, 1)
	return func() { m.openStreams.Add(ctx, -1) }
}

func (m *HTTPMetrics) eventStreamed(ctx context.Context, t events.Type) {
	if m == nil || m.streamedTotal == nil {
		return
	}
	m.streamedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(t))))
}

// normalizePath maps an empty route (404s) to "/".
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}
