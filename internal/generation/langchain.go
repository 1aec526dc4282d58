package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const jsonInstruction = "\n\nRespond with a single JSON value and no other text."

// LangChainText is a TextCollaborator backed by any OpenAI-compatible chat
// completion endpoint.
type LangChainText struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

// NewLangChainText creates the client. endpoint is the API base URL, e.g.
// https://api.openai.com/v1.
func NewLangChainText(endpoint, model, apiKey string) (*LangChainText, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required for text collaborator")
	}
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if endpoint != "" {
		opts = append(opts, openai.WithBaseURL(endpoint))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	return &LangChainText{model: llm, temperature: 0.7, maxTokens: 2048}, nil
}

// NewLangChainTextFromModel wraps an existing langchaingo model.
func NewLangChainTextFromModel(m llms.Model) *LangChainText {
	return &LangChainText{model: m, temperature: 0.7, maxTokens: 2048}
}

// Generate implements TextCollaborator.
func (c *LangChainText) Generate(ctx context.Context, prompt string, vars map[string]string) (json.RawMessage, error) {
	reply, err := llms.GenerateFromSinglePrompt(ctx, c.model,
		RenderPrompt(prompt, vars)+jsonInstruction,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("text completion: %w", err)
	}
	return ExtractJSON(reply)
}

// RenderPrompt substitutes {{name}} placeholders with vars[name]. Unknown
// placeholders are left in place.
func RenderPrompt(prompt string, vars map[string]string) string {
	if len(vars) == 0 {
		return prompt
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(prompt)
}
