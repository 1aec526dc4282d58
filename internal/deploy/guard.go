package deploy

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
)

var scannable = map[string]bool{
	".html": true, ".css": true, ".js": true, ".json": true,
	".xml": true, ".txt": true, ".svg": true,
}

// Finding is one detected secret. The secret itself is never kept.
type Finding struct {
	File   string `json:"file"`
	RuleID string `json:"ruleId"`
	Line   int    `json:"line"`
}

// Guard scans the output for secrets before handing it to the wrapped
// adapter.
type Guard struct {
	next Adapter

	once     sync.Once
	mu       sync.Mutex
	detector *detect.Detector
	initErr  error
}

// NewGuard wraps next.
func NewGuard(next Adapter) *Guard {
	return &Guard{next: next}
}

func (g *Guard) Name() string { return g.next.Name() }

// Scan returns every finding in dir.
func (g *Guard) Scan(ctx context.Context, dir string) ([]Finding, error) {
	g.once.Do(func() {
		g.detector, g.initErr = detect.NewDetectorDefaultConfig()
	})
	if g.initErr != nil {
		return nil, fmt.Errorf("loading secret rules: %w", g.initErr)
	}

	t, err := walkTree(dir)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	var findings []Finding
	for _, f := range t.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !scannable[strings.ToLower(path.Ext(f.rel))] {
			continue
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, err
		}
		for _, lf := range g.detector.DetectString(string(data)) {
			findings = append(findings, Finding{File: f.rel, RuleID: lf.RuleID, Line: lf.StartLine})
		}
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
	return findings, nil
}

func (g *Guard) Deploy(ctx context.Context, dir string, req Request) (*Result, error) {
	findings, err := g.Scan(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(findings) > 0 {
		files := make([]string, 0, len(findings))
		for _, f := range findings {
			files = append(files, fmt.Sprintf("%s:%d (%s)", f.File, f.Line, f.RuleID))
		}
		return nil, fmt.Errorf("%w: %s", ErrSecretsDetected, strings.Join(files, ", "))
	}
	return g.next.Deploy(ctx, dir, req)
}
