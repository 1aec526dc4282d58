// Package deploy publishes an assembled output directory to a target.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrUnknownProvider is returned for a provider with no adapter.
	ErrUnknownProvider = errors.New("unknown deployment provider")

	// ErrSecretsDetected is returned when the output contains secrets.
	ErrSecretsDetected = errors.New("secrets detected in output")
)

// Request selects a provider. APIKey overrides the provider's configured
// credential when set.
type Request struct {
	Provider string `json:"provider"`
	APIKey   string `json:"-"`
	SiteName string `json:"siteName,omitempty"`
}

// Summary describes what was published.
type Summary struct {
	Provider   string    `json:"provider"`
	DeployedAt time.Time `json:"deployedAt"`
	Files      int       `json:"files"`
	Size       int64     `json:"size"`
	Pages      []string  `json:"pages"`
}

// Result is the outcome of a deployment.
type Result struct {
	Success bool    `json:"success"`
	URL     string  `json:"url,omitempty"`
	Message string  `json:"message"`
	Summary Summary `json:"summary"`
}

// Adapter publishes a directory.
type Adapter interface {
	Name() string
	Deploy(ctx context.Context, dir string, req Request) (*Result, error)
}

// Registry maps provider names to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates a registry holding adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an adapter.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Names lists the registered providers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Deploy publishes dir with the adapter named by req.Provider.
func (r *Registry) Deploy(ctx context.Context, dir string, req Request) (*Result, error) {
	r.mu.RLock()
	a, ok := r.adapters[req.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, req.Provider)
	}
	return a.Deploy(ctx, dir, req)
}

type file struct {
	rel  string
	path string
	size int64
}

type tree struct {
	files []file
	size  int64
	pages []string
}

func walkTree(dir string) (*tree, error) {
	t := &tree{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		t.files = append(t.files, file{rel: rel, path: path, size: info.Size()})
		t.size += info.Size()
		if strings.HasSuffix(rel, ".html") {
			t.pages = append(t.pages, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading output: %w", err)
	}
	if len(t.files) == 0 {
		return nil, fmt.Errorf("output %s is empty", dir)
	}
	return t, nil
}

func (t *tree) summary(provider string, at time.Time) Summary {
	return Summary{
		Provider:   provider,
		DeployedAt: at,
		Files:      len(t.files),
		Size:       t.size,
		Pages:      append([]string(nil), t.pages...),
	}
}

func siteName(dir string, req Request) string {
	if req.SiteName != "" {
		return req.SiteName
	}
	return filepath.Base(dir)
}
