package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPImages is an ImageCollaborator for OpenAI-compatible
// /images/generations endpoints.
type HTTPImages struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewHTTPImages creates the client.
func NewHTTPImages(endpoint, model, apiKey string, timeout time.Duration) (*HTTPImages, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required for image collaborator")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPImages{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type imageRequest struct {
	Model   string `json:"model,omitempty"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
}

type imageResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate implements ImageCollaborator.
func (c *HTTPImages) Generate(ctx context.Context, prompt, size, quality string) (*Image, error) {
	body, err := json.Marshal(imageRequest{
		Model:   c.model,
		Prompt:  prompt,
		N:       1,
		Size:    size,
		Quality: quality,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read image response: %w", err)
	}

	var parsed imageResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("image API error (%d)", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("image API error (%d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("image API error (%d)", resp.StatusCode)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return nil, fmt.Errorf("%w: empty image response", ErrInvalidOutput)
	}
	return &Image{URL: parsed.Data[0].URL, RevisedPrompt: parsed.Data[0].RevisedPrompt}, nil
}
