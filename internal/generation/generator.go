package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/sitesmith/internal/logging"
)

// Task names the kind of structured output requested.
type Task string

const (
	TaskArchetype Task = "archetype"
	TaskVariant   Task = "layout-variant"
	TaskCopy      Task = "copy"
	TaskSEO       Task = "seo"
	TaskImage     Task = "image"
)

// Mode identifies the generator variant.
type Mode string

const (
	ModeCollaborator  Mode = "collaborator"
	ModeDeterministic Mode = "deterministic"
)

// TextCollaborator produces structured JSON for a prompt.
type TextCollaborator interface {
	Generate(ctx context.Context, prompt string, vars map[string]string) (json.RawMessage, error)
}

// ImageCollaborator produces one image for a prompt.
type ImageCollaborator interface {
	Generate(ctx context.Context, prompt, size, quality string) (*Image, error)
}

// Image is a generated image reference.
type Image struct {
	URL           string `json:"url"`
	RevisedPrompt string `json:"revisedPrompt,omitempty"`
}

// Request is one text generation call. Fingerprint scopes memoization to a
// single project configuration.
type Request struct {
	Fingerprint string
	Task        Task
	Prompt      string
	Vars        map[string]string
}

// Generator is the ContentGenerator capability.
type Generator interface {
	// Text decodes the collaborator's JSON reply into out.
	Text(ctx context.Context, req Request, out any) error
	// Image generates an image for prompt.
	Image(ctx context.Context, fingerprint, prompt, size, quality string) (*Image, error)
	Mode() Mode
}

// Options configures a collaborator-backed generator.
type Options struct {
	RateLimit  float64
	Burst      int
	MaxRetries int
	Backoff    time.Duration
	Cache      *Cache
	Logger     *logging.Logger
}

func (o *Options) applyDefaults() {
	if o.RateLimit <= 0 {
		o.RateLimit = 2
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	if o.Cache == nil {
		o.Cache = NewCache()
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
}

// New selects the generator variant. A nil text collaborator yields the
// deterministic generator; images may be nil independently.
func New(text TextCollaborator, images ImageCollaborator, opts Options) Generator {
	if text == nil {
		return Deterministic{}
	}
	opts.applyDefaults()
	return &CollaboratorBacked{
		text:    text,
		images:  images,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		opts:    opts,
	}
}

// CollaboratorBacked calls external collaborators through a shared rate
// limiter and memoizes replies by request key.
type CollaboratorBacked struct {
	text    TextCollaborator
	images  ImageCollaborator
	limiter *rate.Limiter
	opts    Options
}

func (g *CollaboratorBacked) Mode() Mode { return ModeCollaborator }

// Text implements Generator.
func (g *CollaboratorBacked) Text(ctx context.Context, req Request, out any) error {
	key := CacheKey(req.Fingerprint, string(req.Task), req.Prompt, req.Vars)
	if cached, ok := g.opts.Cache.Get(key); ok {
		return decode(cached, out)
	}

	var raw json.RawMessage
	err := g.withRetry(ctx, string(req.Task), func(ctx context.Context) error {
		var err error
		raw, err = g.text.Generate(ctx, req.Prompt, req.Vars)
		if err != nil {
			return err
		}
		return decode(raw, out)
	})
	if err != nil {
		return err
	}
	g.opts.Cache.Put(key, raw)
	return nil
}

// Image implements Generator.
func (g *CollaboratorBacked) Image(ctx context.Context, fingerprint, prompt, size, quality string) (*Image, error) {
	if g.images == nil {
		return nil, ErrNoCollaborator
	}
	key := CacheKey(fingerprint, string(TaskImage), prompt, map[string]string{"size": size, "quality": quality})
	if cached, ok := g.opts.Cache.Get(key); ok {
		var img Image
		if err := decode(cached, &img); err == nil {
			return &img, nil
		}
	}

	var img *Image
	err := g.withRetry(ctx, string(TaskImage), func(ctx context.Context) error {
		var err error
		img, err = g.images.Generate(ctx, prompt, size, quality)
		return err
	})
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(img); err == nil {
		g.opts.Cache.Put(key, data)
	}
	return img, nil
}

func (g *CollaboratorBacked) withRetry(ctx context.Context, task string, call func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= g.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := g.opts.Backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := call(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		g.opts.Logger.Debug(ctx, "collaborator call failed",
			zap.String("task", task),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
}

func decode(raw []byte, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return nil
}

// Deterministic is the generator used when no collaborator is configured.
type Deterministic struct{}

func (Deterministic) Mode() Mode { return ModeDeterministic }

func (Deterministic) Text(context.Context, Request, any) error { return ErrNoCollaborator }

func (Deterministic) Image(context.Context, string, string, string, string) (*Image, error) {
	return nil, ErrNoCollaborator
}
