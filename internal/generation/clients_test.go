package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, part := range m.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				f.prompts = append(f.prompts, tc.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChainText_Generate(t *testing.T) {
	model := &fakeModel{reply: "```json\n{\"archetype\":\"legal\",\"confidence\":0.9}\n```"}
	client := NewLangChainTextFromModel(model)

	raw, err := client.Generate(context.Background(), "Classify {{business}}", map[string]string{"business": "Hartley Law"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"archetype":"legal","confidence":0.9}`, string(raw))

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Classify Hartley Law")
	assert.Contains(t, model.prompts[0], "single JSON value")
}

func TestLangChainText_Errors(t *testing.T) {
	client := NewLangChainTextFromModel(&fakeModel{err: errors.New("boom")})
	_, err := client.Generate(context.Background(), "p", nil)
	assert.ErrorContains(t, err, "boom")

	client = NewLangChainTextFromModel(&fakeModel{reply: "I cannot help with that."})
	_, err = client.Generate(context.Background(), "p", nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)

	_, err = NewLangChainText("", "gpt-4o-mini", "")
	assert.Error(t, err)
}

func TestRenderPrompt(t *testing.T) {
	assert.Equal(t, "Hi Ada, {{unknown}}", RenderPrompt("Hi {{name}}, {{unknown}}", map[string]string{"name": "Ada"}))
	assert.Equal(t, "plain", RenderPrompt("plain", nil))
}

func TestHTTPImages_Generate(t *testing.T) {
	var got imageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"url":"https://img.example/a.png","revised_prompt":"a tidy office"}]}`))
	}))
	defer srv.Close()

	client, err := NewHTTPImages(srv.URL+"/v1/", "dall-e-3", "sk-test", time.Second)
	require.NoError(t, err)

	img, err := client.Generate(context.Background(), "an office", "1024x1024", "standard")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/a.png", img.URL)
	assert.Equal(t, "a tidy office", img.RevisedPrompt)
	assert.Equal(t, imageRequest{Model: "dall-e-3", Prompt: "an office", N: 1, Size: "1024x1024", Quality: "standard"}, got)
}

func TestHTTPImages_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"content policy"}}`))
	}))
	defer srv.Close()

	client, err := NewHTTPImages(srv.URL, "", "sk-test", time.Second)
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), "x", "", "")
	assert.ErrorContains(t, err, "content policy")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer empty.Close()
	client, err = NewHTTPImages(empty.URL, "", "sk-test", time.Second)
	require.NoError(t, err)
	_, err = client.Generate(context.Background(), "x", "", "")
	assert.ErrorIs(t, err, ErrInvalidOutput)

	_, err = NewHTTPImages(empty.URL, "", "", time.Second)
	assert.Error(t, err)
}
