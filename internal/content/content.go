// Package content synthesizes per-section copy, imagery and per-page SEO
// metadata against the chosen layouts. Each sub-generator can be invoked on
// its own, which the pipeline relies on for targeted regeneration.
package content

import (
	"github.com/fyrsmithlabs/sitesmith/internal/archetype"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/layout"
	"github.com/fyrsmithlabs/sitesmith/internal/planner"
)

// CTA is a call-to-action.
type CTA struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Copy is the text of one section.
type Copy struct {
	Headline    string   `json:"headline"`
	Subheadline string   `json:"subheadline,omitempty"`
	Description string   `json:"description,omitempty"`
	Bullets     []string `json:"bullets,omitempty"`
	CTA         *CTA     `json:"cta,omitempty"`
}

// ImageAsset is one image placed in a section. Generated images carry a
// URL; placeholders carry a LocalPath under the images directory.
type ImageAsset struct {
	ID        string `json:"id"`
	SectionID string `json:"sectionId"`
	Prompt    string `json:"prompt"`
	URL       string `json:"url,omitempty"`
	LocalPath string `json:"localPath,omitempty"`
	Alt       string `json:"alt"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Source    string `json:"source"`
}

// Src is the value to use in an img src attribute.
func (a ImageAsset) Src() string {
	if a.URL != "" {
		return a.URL
	}
	return a.LocalPath
}

// SEOMeta is the full search and social descriptor of a page.
type SEOMeta struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Keywords       []string          `json:"keywords,omitempty"`
	Canonical      string            `json:"canonical"`
	OpenGraph      map[string]string `json:"openGraph"`
	Twitter        map[string]string `json:"twitter"`
	StructuredData map[string]any    `json:"structuredData"`
}

// SectionContent is the synthesized content of one section.
type SectionContent struct {
	SectionID string       `json:"sectionId"`
	Type      string       `json:"type"`
	Copy      Copy         `json:"copy"`
	Images    []ImageAsset `json:"images,omitempty"`
}

// PageContent is the synthesized content of one page.
type PageContent struct {
	PageID   string           `json:"pageId"`
	Sections []SectionContent `json:"sections"`
	SEO      SEOMeta          `json:"seo"`
}

// Content is the SynthesizedContent of a whole site, keyed by page id.
type Content struct {
	Pages map[string]*PageContent `json:"pages"`
}

// Input is what every sub-generator reads. Attempt is 1 for the first pass
// and grows on each targeted regeneration.
type Input struct {
	Config  *intake.ProjectConfig
	Profile *archetype.Profile
	Pages   []planner.PlannedPage
	Layouts map[string]*layout.GeneratedLayout
	BaseURL string
	Attempt int
}

// CopySet is page id -> section id -> copy.
type CopySet map[string]map[string]Copy

// ImageSet is section id -> images.
type ImageSet map[string][]ImageAsset

// SEOSet is page id -> metadata.
type SEOSet map[string]SEOMeta

// Compose merges the sub-generator outputs into Content, following each
// page's layout section order.
func Compose(in Input, copies CopySet, images ImageSet, seo SEOSet) *Content {
	c := &Content{Pages: make(map[string]*PageContent, len(in.Pages))}
	for _, p := range in.Pages {
		l := in.Layouts[p.ID]
		pc := &PageContent{PageID: p.ID, SEO: seo[p.ID]}
		if l != nil {
			for _, s := range l.Sections {
				pc.Sections = append(pc.Sections, SectionContent{
					SectionID: s.ID,
					Type:      s.Type,
					Copy:      copies[p.ID][s.ID],
					Images:    images[s.ID],
				})
			}
		}
		c.Pages[p.ID] = pc
	}
	return c
}

// Merge overlays regenerated copy and SEO for the given pages.
func (c *Content) Merge(copies CopySet, seo SEOSet) {
	for pageID, sections := range copies {
		pc, ok := c.Pages[pageID]
		if !ok {
			continue
		}
		for i := range pc.Sections {
			if cp, ok := sections[pc.Sections[i].SectionID]; ok {
				pc.Sections[i].Copy = cp
			}
		}
	}
	for pageID, meta := range seo {
		if pc, ok := c.Pages[pageID]; ok {
			pc.SEO = meta
		}
	}
}

// ImageCount returns the number of images across the site.
func (c *Content) ImageCount() int {
	n := 0
	for _, p := range c.Pages {
		for _, s := range p.Sections {
			n += len(s.Images)
		}
	}
	return n
}
