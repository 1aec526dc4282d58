package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/sitesmith/internal/events"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
	"github.com/fyrsmithlabs/sitesmith/internal/pipeline"
	"github.com/fyrsmithlabs/sitesmith/internal/store"
)

type fakeRunner struct {
	run func(ctx context.Context, req pipeline.Request, sink events.Sink) (*pipeline.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, req pipeline.Request, sink events.Sink) (*pipeline.Result, error) {
	return f.run(ctx, req, sink)
}

func (f *fakeRunner) Describe(version string, providers []string) pipeline.Status {
	return pipeline.Status{Version: version, Phases: pipeline.TotalPhases, Providers: providers}
}

type fakeSubscriber struct {
	events []events.Event
	err    error
}

func (f fakeSubscriber) Subscribe(context.Context, string) (<-chan events.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan events.Event, len(f.events))
	for _, e := range f.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func legalIntake() GenerateRequest {
	return GenerateRequest{Intake: intake.IntakeForm{
		BusinessName: "Hartley & Cole Law",
		Industry:     "Legal Services",
		Services:     []string{"Estate Planning", "Family Law"},
		Location:     intake.LocationForm{City: "Denver", Region: "CO"},
		Email:        "office@hartleycole.example",
	}}
}

func postGenerate(t *testing.T, ctx context.Context, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewReader(raw)).WithContext(ctx)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func parseSSE(t *testing.T, body string) []events.Event {
	t.Helper()
	var out []events.Event
	for _, block := range strings.Split(body, "\n\n") {
		var data string
		for _, line := range strings.Split(block, "\n") {
			if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		}
		if data == "" {
			continue
		}
		var e events.Event
		require.NoError(t, json.Unmarshal([]byte(data), &e), data)
		out = append(out, e)
	}
	return out
}

func newTestServer(t *testing.T, runner Runner, opts ...Option) *Server {
	t.Helper()
	server, err := NewServer(runner, logging.NewNop(), &Config{Host: "localhost", Port: 9191, Version: "test"}, opts...)
	require.NoError(t, err)
	return server
}

func TestNewServer(t *testing.T) {
	runner := pipeline.New(pipeline.Options{})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(runner, logging.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 9191, server.config.Port)
		assert.Equal(t, 30*time.Second, server.config.Heartbeat)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(runner, nil, nil)
		assert.ErrorContains(t, err, "logger is required")
	})

	t.Run("returns error when runner is nil", func(t *testing.T) {
		_, err := NewServer(nil, logging.NewNop(), nil)
		assert.ErrorContains(t, err, "runner cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, pipeline.New(pipeline.Options{}))
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestHandleStatus(t *testing.T) {
	server := newTestServer(t, pipeline.New(pipeline.Options{}), WithProviders([]string{"local"}))
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status pipeline.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "test", status.Version)
	assert.Equal(t, 30, status.Phases)
	assert.Equal(t, len(pipeline.Engines), status.Engines)
	assert.Equal(t, []string{"local"}, status.Providers)
	assert.NotEmpty(t, status.Features)
}

func TestHandleGenerate_StreamsRun(t *testing.T) {
	server := newTestServer(t, pipeline.New(pipeline.Options{OutputDir: t.TempDir()}))
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, postGenerate(t, context.Background(), legalIntake()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: generation-id\n")

	evs := parseSSE(t, rec.Body.String())
	require.NotEmpty(t, evs)
	assert.Equal(t, events.TypeGenerationID, evs[0].Type)
	assert.NotEmpty(t, evs[0].GenerationID)

	last := evs[len(evs)-1]
	require.Equal(t, events.TypeComplete, last.Type)
	assert.Equal(t, "hartley-and-cole-law", last.Complete.ProjectSlug)
	require.NotNil(t, last.Complete.QAReport)

	phase := 0
	for _, e := range evs[1 : len(evs)-1] {
		require.Equal(t, events.TypeProgress, e.Type)
		assert.GreaterOrEqual(t, e.Progress.Phase, phase)
		phase = e.Progress.Phase
	}
	assert.Equal(t, pipeline.TotalPhases, phase)
}

func TestHandleGenerate_InvalidRequests(t *testing.T) {
	server := newTestServer(t, &fakeRunner{run: func(context.Context, pipeline.Request, events.Sink) (*pipeline.Result, error) {
		t.Fatal("runner must not be called")
		return nil, nil
	}})

	t.Run("missing required fields", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, postGenerate(t, context.Background(), GenerateRequest{}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "businessName")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader("{"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGenerate_AbortedRun(t *testing.T) {
	server := newTestServer(t, &fakeRunner{run: func(ctx context.Context, req pipeline.Request, sink events.Sink) (*pipeline.Result, error) {
		err := errors.New("phase 2 (Archetype Classification): model unavailable")
		_ = sink.Emit(ctx, events.GenerationStarted("gen-1"))
		_ = sink.Emit(ctx, events.Failed("gen-1", err))
		return nil, err
	}})
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, postGenerate(t, context.Background(), legalIntake()))

	evs := parseSSE(t, rec.Body.String())
	require.Len(t, evs, 2)
	assert.Equal(t, events.TypeError, evs[1].Type)
	assert.Contains(t, evs[1].Error, "model unavailable")
}

func TestHandleGenerate_PassesDeployRequest(t *testing.T) {
	var got pipeline.Request
	server := newTestServer(t, &fakeRunner{run: func(ctx context.Context, req pipeline.Request, sink events.Sink) (*pipeline.Result, error) {
		got = req
		return &pipeline.Result{}, nil
	}})
	body := legalIntake()
	body.Deploy = &DeployRequest{Provider: "github", APIKey: "secret", SiteName: "hartley"}
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, postGenerate(t, context.Background(), body))

	require.NotNil(t, got.Config)
	assert.Equal(t, "hartley-and-cole-law", got.Config.Slug)
	require.NotNil(t, got.Deploy)
	assert.Equal(t, "github", got.Deploy.Provider)
	assert.Equal(t, "secret", got.Deploy.APIKey)
}

func TestHandleGenerate_DisconnectCancelsRun(t *testing.T) {
	started := make(chan struct{})
	stopped := make(chan error, 1)
	server := newTestServer(t, &fakeRunner{run: func(ctx context.Context, req pipeline.Request, sink events.Sink) (*pipeline.Result, error) {
		_ = sink.Emit(ctx, events.GenerationStarted("gen-1"))
		close(started)
		<-ctx.Done()
		stopped <- ctx.Err()
		return nil, ctx.Err()
	}})

	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	served := make(chan struct{})
	go func() {
		defer close(served)
		server.echo.ServeHTTP(rec, postGenerate(t, ctx, legalIntake()))
	}()

	<-started
	cancel()

	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("run was not cancelled")
	}
	select {
	case <-served:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not return")
	}
}

func TestHandleGenerate_Heartbeat(t *testing.T) {
	release := make(chan struct{})
	server, err := NewServer(&fakeRunner{run: func(ctx context.Context, req pipeline.Request, sink events.Sink) (*pipeline.Result, error) {
		<-release
		res := &pipeline.Result{GenerationID: "gen-1", Success: true}
		_ = sink.Emit(ctx, res.CompleteEvent())
		return res, nil
	}}, logging.NewNop(), &Config{Heartbeat: 10 * time.Millisecond})
	require.NoError(t, err)

	go func() {
		time.Sleep(60 * time.Millisecond)
		close(release)
	}()
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, postGenerate(t, context.Background(), legalIntake()))

	assert.Contains(t, rec.Body.String(), ": heartbeat\n\n")
	evs := parseSSE(t, rec.Body.String())
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeComplete, evs[0].Type)
}

func TestGenerations(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &store.Record{
		ID:          "gen-1",
		ProjectSlug: "hartley-and-cole-law",
		Status:      store.StatusCompleted,
		Success:     true,
		StartedAt:   time.Now(),
	}))
	server := newTestServer(t, pipeline.New(pipeline.Options{}), WithHistory(repo))

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations/gen-1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var r store.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
		assert.Equal(t, "hartley-and-cole-law", r.ProjectSlug)
		assert.True(t, r.Success)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations?limit=5", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp GenerationsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Generations, 1)
		assert.Equal(t, "gen-1", resp.Generations[0].ID)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations?limit=x", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("history disabled", func(t *testing.T) {
		plain := newTestServer(t, pipeline.New(pipeline.Options{}))
		rec := httptest.NewRecorder()
		plain.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations/gen-1", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGenerationEvents(t *testing.T) {
	progress := events.Event{Type: events.TypeProgress, GenerationID: "gen-1", Progress: &events.Progress{Phase: 3, PhaseName: "Page Planning", Progress: 10}}
	done := (&pipeline.Result{GenerationID: "gen-1", Success: true}).CompleteEvent()

	t.Run("relays until terminal", func(t *testing.T) {
		server := newTestServer(t, pipeline.New(pipeline.Options{}), WithRelay(nil, fakeSubscriber{events: []events.Event{progress, done}}))
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations/gen-1/events", nil))

		evs := parseSSE(t, rec.Body.String())
		require.Len(t, evs, 2)
		assert.Equal(t, events.TypeProgress, evs[0].Type)
		assert.Equal(t, events.TypeComplete, evs[1].Type)
	})

	t.Run("subscribe failure", func(t *testing.T) {
		server := newTestServer(t, pipeline.New(pipeline.Options{}), WithRelay(nil, fakeSubscriber{err: errors.New("bus down")}))
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations/gen-1/events", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("relay disabled", func(t *testing.T) {
		server := newTestServer(t, pipeline.New(pipeline.Options{}))
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generations/gen-1/events", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func startNATS(t *testing.T) *nats.Conn {
	t.Helper()
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	}
	ns, err := natsserver.NewServer(opts)
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return nc
}

func TestHandleGenerate_PublishesToNATS(t *testing.T) {
	nc := startNATS(t)
	sub, err := nc.SubscribeSync("generations.>")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	pub := events.NewNATSPublisher(nc, "generations")
	server := newTestServer(t, pipeline.New(pipeline.Options{OutputDir: t.TempDir()}), WithRelay(pub, pub))
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, postGenerate(t, context.Background(), legalIntake()))
	require.NoError(t, nc.Flush())

	var subjects []string
	for {
		msg, err := sub.NextMsg(2 * time.Second)
		require.NoError(t, err)
		subjects = append(subjects, msg.Subject)
		if strings.HasSuffix(msg.Subject, ".complete") {
			break
		}
	}
	assert.True(t, strings.HasSuffix(subjects[0], ".generation-id"))
	assert.Greater(t, len(subjects), pipeline.TotalPhases)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, pipeline.New(pipeline.Options{}))
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sitesmith_qa_composite_score")
}

func TestServerLifecycle(t *testing.T) {
	server, err := NewServer(pipeline.New(pipeline.Options{}), logging.NewNop(), &Config{Host: "localhost", Port: 0})
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(ctx))

	select {
	case err := <-errChan:
		assert.True(t, err == nil || errors.Is(err, http.ErrServerClosed))
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestMiddleware_RecoversFromPanic(t *testing.T) {
	server := newTestServer(t, pipeline.New(pipeline.Options{}))
	server.echo.GET("/panic", func(c echo.Context) error {
		panic("test panic")
	})

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		server.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
