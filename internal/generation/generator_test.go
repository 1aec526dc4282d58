package generation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockText struct {
	mock.Mock
}

func (m *mockText) Generate(ctx context.Context, prompt string, vars map[string]string) (json.RawMessage, error) {
	args := m.Called(ctx, prompt, vars)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

type mockImages struct {
	mock.Mock
}

func (m *mockImages) Generate(ctx context.Context, prompt, size, quality string) (*Image, error) {
	args := m.Called(ctx, prompt, size, quality)
	img, _ := args.Get(0).(*Image)
	return img, args.Error(1)
}

func fastOptions() Options {
	return Options{RateLimit: 1000, Burst: 10, MaxRetries: 2, Backoff: time.Millisecond}
}

type headline struct {
	Headline string `json:"headline"`
}

func TestNew_SelectsVariant(t *testing.T) {
	assert.Equal(t, ModeDeterministic, New(nil, nil, Options{}).Mode())
	assert.Equal(t, ModeCollaborator, New(&mockText{}, nil, Options{}).Mode())
}

func TestDeterministic(t *testing.T) {
	gen := New(nil, &mockImages{}, Options{})
	var out headline
	err := gen.Text(context.Background(), Request{Task: TaskCopy}, &out)
	assert.ErrorIs(t, err, ErrNoCollaborator)

	_, err = gen.Image(context.Background(), "fp", "a plumber", "1024x1024", "standard")
	assert.ErrorIs(t, err, ErrNoCollaborator)
}

func TestCollaboratorBacked_TextMemoized(t *testing.T) {
	text := &mockText{}
	text.On("Generate", mock.Anything, "Write a headline for {{name}}", map[string]string{"name": "Acme"}).
		Return(json.RawMessage(`{"headline":"Acme fixes it"}`), nil).Once()

	cache := NewCache()
	opts := fastOptions()
	opts.Cache = cache
	gen := New(text, nil, opts)

	req := Request{Fingerprint: "fp1", Task: TaskCopy, Prompt: "Write a headline for {{name}}", Vars: map[string]string{"name": "Acme"}}
	for i := 0; i < 3; i++ {
		var out headline
		require.NoError(t, gen.Text(context.Background(), req, &out))
		assert.Equal(t, "Acme fixes it", out.Headline)
	}

	text.AssertNumberOfCalls(t, "Generate", 1)
	assert.Equal(t, 1, cache.Len())
	hits, misses := cache.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
}

func TestCollaboratorBacked_RetriesTransientErrors(t *testing.T) {
	text := &mockText{}
	text.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("503 upstream")).Once()
	text.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"headline":"ok"}`), nil).Once()

	gen := New(text, nil, fastOptions())
	var out headline
	require.NoError(t, gen.Text(context.Background(), Request{Task: TaskCopy, Prompt: "p"}, &out))
	assert.Equal(t, "ok", out.Headline)
	text.AssertNumberOfCalls(t, "Generate", 2)
}

func TestCollaboratorBacked_RetryExhausted(t *testing.T) {
	text := &mockText{}
	text.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	gen := New(text, nil, fastOptions())
	var out headline
	err := gen.Text(context.Background(), Request{Task: TaskCopy, Prompt: "p"}, &out)
	assert.ErrorIs(t, err, ErrRetryExhausted)
	text.AssertNumberOfCalls(t, "Generate", 3)
}

func TestCollaboratorBacked_InvalidOutputNotRetried(t *testing.T) {
	text := &mockText{}
	text.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(json.RawMessage(`["not","an","object"]`), nil)

	cache := NewCache()
	opts := fastOptions()
	opts.Cache = cache
	gen := New(text, nil, opts)

	var out headline
	err := gen.Text(context.Background(), Request{Task: TaskCopy, Prompt: "p"}, &out)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	text.AssertNumberOfCalls(t, "Generate", 1)
	assert.Equal(t, 0, cache.Len())
}

func TestCollaboratorBacked_ContextCancelled(t *testing.T) {
	text := &mockText{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := New(text, nil, fastOptions())
	var out headline
	err := gen.Text(ctx, Request{Task: TaskCopy, Prompt: "p"}, &out)
	assert.ErrorIs(t, err, context.Canceled)
	text.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollaboratorBacked_Images(t *testing.T) {
	images := &mockImages{}
	images.On("Generate", mock.Anything, "hero shot", "1792x1024", "hd").
		Return(&Image{URL: "https://img.example/1.png"}, nil).Once()

	gen := New(&mockText{}, images, fastOptions())
	for i := 0; i < 2; i++ {
		img, err := gen.Image(context.Background(), "fp", "hero shot", "1792x1024", "hd")
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/1.png", img.URL)
	}
	images.AssertNumberOfCalls(t, "Generate", 1)

	_, err := New(&mockText{}, nil, fastOptions()).Image(context.Background(), "fp", "x", "", "")
	assert.ErrorIs(t, err, ErrNoCollaborator)
}
