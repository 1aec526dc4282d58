// Package layout selects a structural blueprint and section-ordering variant
// for every planned page and projects the blueprint's responsive rules onto
// the generated sections.
package layout

import (
	"github.com/fyrsmithlabs/sitesmith/internal/archetype"
	"github.com/fyrsmithlabs/sitesmith/internal/planner"
)

// Breakpoint names a responsive breakpoint.
type Breakpoint string

const (
	Mobile  Breakpoint = "mobile"
	Tablet  Breakpoint = "tablet"
	Desktop Breakpoint = "desktop"
)

// Breakpoints lists all breakpoints, narrowest first.
var Breakpoints = []Breakpoint{Mobile, Tablet, Desktop}

// Responsive is the per-breakpoint rule for one section.
type Responsive struct {
	Visible bool   `json:"visible"`
	Order   int    `json:"order"`
	Layout  string `json:"layout"`
}

// SectionRule is a blueprint's declaration for one section type. A zero
// Order in Responsive means "use the section's position".
type SectionRule struct {
	Variants   []string                  `json:"variants"`
	Responsive map[Breakpoint]Responsive `json:"responsive"`
}

// Blueprint is an archetype-keyed structural template: the section order of
// each page type and the rules of each section type.
type Blueprint struct {
	Name     string                        `json:"name"`
	Pages    map[planner.PageType][]string `json:"pages"`
	Sections map[string]SectionRule        `json:"sections"`
}

// Order arranges page's sections in the order the blueprint lists for its
// type. Sections the blueprint does not list follow in planned order. The
// result is always a permutation of page.Sections.
func (b *Blueprint) Order(page planner.PlannedPage) []string {
	left := make(map[string]int, len(page.Sections))
	for _, s := range page.Sections {
		left[s]++
	}
	out := make([]string, 0, len(page.Sections))
	take := func(s string) {
		if left[s] > 0 {
			left[s]--
			out = append(out, s)
		}
	}
	for _, s := range b.Pages[page.Type] {
		take(s)
	}
	for _, s := range page.Sections {
		take(s)
	}
	return out
}

// Rule returns the rule for a section type, falling back to a single-column
// rule visible everywhere.
func (b *Blueprint) Rule(sectionType string) SectionRule {
	if r, ok := b.Sections[sectionType]; ok {
		return r
	}
	return SectionRule{Variants: []string{"standard"}, Responsive: uniform("stack", "stack", "stack")}
}

func uniform(mobile, tablet, desktop string) map[Breakpoint]Responsive {
	return map[Breakpoint]Responsive{
		Mobile:  {Visible: true, Layout: mobile},
		Tablet:  {Visible: true, Layout: tablet},
		Desktop: {Visible: true, Layout: desktop},
	}
}

func hiddenOnMobile(tablet, desktop string) map[Breakpoint]Responsive {
	r := uniform("stack", tablet, desktop)
	r[Mobile] = Responsive{Visible: false, Layout: "stack"}
	return r
}

func defaultBlueprint() *Blueprint {
	return &Blueprint{
		Name: "default",
		Pages: map[planner.PageType][]string{
			planner.TypeHome:          {"hero", "services-overview", "about-preview", "testimonials", "cta"},
			planner.TypeAbout:         {"hero", "story", "values", "team", "cta"},
			planner.TypeServices:      {"hero", "services-list", "process", "cta"},
			planner.TypeServiceDetail: {"hero", "service-detail", "benefits", "cta"},
			planner.TypeContact:       {"hero", "contact-form", "contact-details"},
			planner.TypePortfolio:     {"hero", "gallery", "cta"},
			planner.TypeBlog:          {"hero", "post-list"},
			planner.TypePricing:       {"hero", "pricing-table", "cta"},
			planner.TypeFAQ:           {"hero", "faq-list", "cta"},
			planner.TypePrivacy:       {"legal-content"},
			planner.TypeTerms:         {"legal-content"},
		},
		Sections: map[string]SectionRule{
			"hero":              {[]string{"split", "centered", "full-bleed"}, uniform("stack", "split", "split")},
			"services-overview": {[]string{"card-grid", "icon-list"}, uniform("stack", "grid-2", "grid-3")},
			"about-preview":     {[]string{"image-left", "image-right"}, uniform("stack", "split", "split")},
			"testimonials":      {[]string{"carousel", "quote-grid"}, uniform("stack", "grid-2", "grid-3")},
			"cta":               {[]string{"banner", "boxed"}, uniform("stack", "stack", "split")},
			"story":             {[]string{"timeline", "narrative"}, uniform("stack", "stack", "split")},
			"values":            {[]string{"icon-grid", "list"}, uniform("stack", "grid-2", "grid-3")},
			"team":              {[]string{"portrait-grid", "list"}, hiddenOnMobile("grid-2", "grid-4")},
			"services-list":     {[]string{"detailed-cards", "accordion"}, uniform("stack", "grid-2", "grid-2")},
			"process":           {[]string{"steps", "timeline"}, hiddenOnMobile("grid-2", "grid-4")},
			"service-detail":    {[]string{"long-form", "split"}, uniform("stack", "stack", "split")},
			"benefits":          {[]string{"icon-grid", "checklist"}, uniform("stack", "grid-2", "grid-3")},
			"contact-form":      {[]string{"form-left", "form-only"}, uniform("stack", "split", "split")},
			"contact-details":   {[]string{"cards", "inline"}, uniform("stack", "grid-2", "grid-3")},
			"gallery":           {[]string{"masonry", "grid"}, uniform("stack", "grid-2", "grid-3")},
			"post-list":         {[]string{"cards", "list"}, uniform("stack", "grid-2", "grid-3")},
			"pricing-table":     {[]string{"tiers", "comparison"}, uniform("stack", "grid-3", "grid-3")},
			"faq-list":          {[]string{"accordion", "two-column"}, uniform("stack", "stack", "grid-2")},
			"legal-content":     {[]string{"prose"}, uniform("stack", "stack", "stack")},
		},
	}
}

// derive copies base and overrides the named section rules and page orders.
func derive(base *Blueprint, name string, overrides map[string]SectionRule, pages map[planner.PageType][]string) *Blueprint {
	bp := &Blueprint{
		Name:     name,
		Pages:    make(map[planner.PageType][]string, len(base.Pages)),
		Sections: make(map[string]SectionRule, len(base.Sections)),
	}
	for k, v := range base.Pages {
		bp.Pages[k] = v
	}
	for k, v := range pages {
		bp.Pages[k] = v
	}
	for k, v := range base.Sections {
		bp.Sections[k] = v
	}
	for k, v := range overrides {
		bp.Sections[k] = v
	}
	return bp
}

// Registry holds blueprints and the archetype lookup table.
type Registry struct {
	blueprints  map[string]*Blueprint
	byArchetype map[archetype.Archetype]string
	fallback    string
}

// DefaultRegistry returns the built-in registry. Most archetypes share the
// default blueprint; adding a specific one only needs a new table entry.
func DefaultRegistry() *Registry {
	base := defaultBlueprint()
	saas := derive(base, "product", map[string]SectionRule{
		"hero":          {[]string{"product-shot", "centered"}, uniform("stack", "split", "split")},
		"pricing-table": {[]string{"tiers", "toggle"}, uniform("stack", "grid-3", "grid-3")},
	}, map[planner.PageType][]string{
		planner.TypeHome: {"hero", "services-overview", "testimonials", "about-preview", "cta"},
	})
	showcase := derive(base, "showcase", map[string]SectionRule{
		"hero":    {[]string{"full-bleed", "centered"}, uniform("stack", "stack", "stack")},
		"gallery": {[]string{"masonry", "lightbox"}, uniform("grid-2", "grid-3", "grid-4")},
	}, map[planner.PageType][]string{
		planner.TypeHome:  {"hero", "testimonials", "about-preview", "services-overview", "cta"},
		planner.TypeAbout: {"hero", "team", "story", "values", "cta"},
	})

	r := &Registry{
		blueprints: map[string]*Blueprint{
			base.Name:     base,
			saas.Name:     saas,
			showcase.Name: showcase,
		},
		byArchetype: map[archetype.Archetype]string{
			archetype.SaaS:       saas.Name,
			archetype.Portfolio:  showcase.Name,
			archetype.RealEstate: showcase.Name,
		},
		fallback: base.Name,
	}
	for _, a := range archetype.All {
		if _, ok := r.byArchetype[a]; !ok {
			r.byArchetype[a] = base.Name
		}
	}
	return r
}

// ForArchetype returns the blueprint for a.
func (r *Registry) ForArchetype(a archetype.Archetype) *Blueprint {
	if name, ok := r.byArchetype[a]; ok {
		if bp, ok := r.blueprints[name]; ok {
			return bp
		}
	}
	return r.blueprints[r.fallback]
}
