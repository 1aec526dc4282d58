package layout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/sitesmith/internal/archetype"
	"github.com/fyrsmithlabs/sitesmith/internal/generation"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
	"github.com/fyrsmithlabs/sitesmith/internal/planner"
)

const variantPrompt = `Choose a layout variant for the {{page}} page of a {{archetype}} website.
Sections in natural order: {{sections}}.
Return {"name": string, "style": "modern"|"classic"|"minimal"|"bold"|"playful",
"complexity": "simple"|"moderate"|"rich", "sectionOrder": [every section exactly once]}`

// Variant is the chosen section ordering and style for one page.
type Variant struct {
	Name         string   `json:"name"`
	Style        string   `json:"style"`
	Complexity   string   `json:"complexity"`
	SectionOrder []string `json:"sectionOrder"`
	Source       string   `json:"source"`
}

// Section is one generated section of a page layout.
type Section struct {
	ID         string                    `json:"id"`
	Type       string                    `json:"type"`
	Variant    string                    `json:"variant"`
	Order      int                       `json:"order"`
	Responsive map[Breakpoint]Responsive `json:"responsive"`
}

// GeneratedLayout is the layout of one page.
type GeneratedLayout struct {
	PageID    string    `json:"pageId"`
	Blueprint string    `json:"blueprint"`
	Variant   Variant   `json:"variant"`
	Sections  []Section `json:"sections"`
}

// Selector picks blueprints and variants.
type Selector struct {
	registry    *Registry
	gen         generation.Generator
	concurrency int
	logger      *logging.Logger
}

// NewSelector creates a selector. concurrency bounds parallel variant calls.
func NewSelector(registry *Registry, gen generation.Generator, concurrency int, logger *logging.Logger) *Selector {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if gen == nil {
		gen = generation.Deterministic{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{registry: registry, gen: gen, concurrency: concurrency, logger: logger}
}

// Select lays out every page. The result is keyed by page id. onPage, when
// non-nil, is called once per finished page and may be called concurrently.
func (s *Selector) Select(ctx context.Context, fingerprint string, pages []planner.PlannedPage,
	profile *archetype.Profile, onPage func(pageID string)) (map[string]*GeneratedLayout, error) {
	if profile == nil {
		return nil, errors.New("layout: profile is required")
	}
	bp := s.registry.ForArchetype(profile.Archetype)

	var mu sync.Mutex
	out := make(map[string]*GeneratedLayout, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range pages {
		page := pages[i]
		g.Go(func() error {
			l, err := s.layoutPage(gctx, fingerprint, bp, page, profile.Archetype)
			if err != nil {
				return err
			}
			mu.Lock()
			out[page.ID] = l
			mu.Unlock()
			if onPage != nil {
				onPage(page.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Selector) layoutPage(ctx context.Context, fingerprint string, bp *Blueprint,
	page planner.PlannedPage, a archetype.Archetype) (*GeneratedLayout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(page.Sections) == 0 {
		return nil, fmt.Errorf("layout: page %q has no sections", page.ID)
	}

	variant := s.chooseVariant(ctx, fingerprint, bp, page, a)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &GeneratedLayout{
		PageID:    page.ID,
		Blueprint: bp.Name,
		Variant:   variant,
		Sections:  Project(bp, page.ID, variant),
	}, nil
}

func (s *Selector) chooseVariant(ctx context.Context, fingerprint string, bp *Blueprint, page planner.PlannedPage, a archetype.Archetype) Variant {
	var v Variant
	err := s.gen.Text(ctx, generation.Request{
		Fingerprint: fingerprint,
		Task:        generation.TaskVariant,
		Prompt:      variantPrompt,
		Vars: map[string]string{
			"page":      page.Title,
			"archetype": string(a),
			"sections":  fmt.Sprint(page.Sections),
		},
	}, &v)
	if err == nil && isPermutation(v.SectionOrder, page.Sections) {
		v.Source = "collaborator"
		if v.Style == "" {
			v.Style = "modern"
		}
		if v.Complexity == "" {
			v.Complexity = "moderate"
		}
		if v.Name == "" {
			v.Name = page.ID + "-custom"
		}
		return v
	}
	if err != nil && !errors.Is(err, generation.ErrNoCollaborator) && ctx.Err() == nil {
		s.logger.Debug(ctx, "variant collaborator failed, using natural order",
			zap.String("page", page.ID), zap.Error(err))
	}
	return FallbackVariant(bp, page)
}

// FallbackVariant keeps the blueprint's natural section order for page.
func FallbackVariant(bp *Blueprint, page planner.PlannedPage) Variant {
	return Variant{
		Name:         page.ID + "-natural",
		Style:        "modern",
		Complexity:   "moderate",
		SectionOrder: bp.Order(page),
		Source:       "fallback",
	}
}

// Project derives the generated sections from the blueprint rules. Nothing
// is computed beyond copying each rule and filling in positional order.
func Project(bp *Blueprint, pageID string, v Variant) []Section {
	sections := make([]Section, 0, len(v.SectionOrder))
	for i, typ := range v.SectionOrder {
		rule := bp.Rule(typ)
		responsive := make(map[Breakpoint]Responsive, len(Breakpoints))
		for _, b := range Breakpoints {
			r, ok := rule.Responsive[b]
			if !ok {
				r = Responsive{Visible: true, Layout: "stack"}
			}
			if r.Order == 0 {
				r.Order = i + 1
			}
			responsive[b] = r
		}
		sections = append(sections, Section{
			ID:         fmt.Sprintf("%s-%s", pageID, typ),
			Type:       typ,
			Variant:    pickVariant(rule.Variants, v.Style),
			Order:      i + 1,
			Responsive: responsive,
		})
	}
	return sections
}

var styleIndex = map[string]int{"modern": 0, "classic": 1, "minimal": 1, "bold": 2, "playful": 2}

func pickVariant(variants []string, style string) string {
	if len(variants) == 0 {
		return "standard"
	}
	return variants[styleIndex[style]%len(variants)]
}

func isPermutation(order, sections []string) bool {
	if len(order) != len(sections) {
		return false
	}
	want := make(map[string]int, len(sections))
	for _, s := range sections {
		want[s]++
	}
	for _, s := range order {
		want[s]--
		if want[s] < 0 {
			return false
		}
	}
	return true
}
