package assembler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sitesmith/internal/archetype"
	"github.com/fyrsmithlabs/sitesmith/internal/content"
	"github.com/fyrsmithlabs/sitesmith/internal/design"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/layout"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
	"github.com/fyrsmithlabs/sitesmith/internal/planner"
)

const (
	StylesFile  = "styles.css"
	ScriptFile  = "script.js"
	ImagesDir   = "images"
	SitemapFile = "sitemap.xml"
	RobotsFile  = "robots.txt"
)

// Site is everything the assembler renders.
type Site struct {
	Config  *intake.ProjectConfig
	Profile *archetype.Profile
	Pages   []planner.PlannedPage
	Tokens  *design.Tokens
	Layouts map[string]*layout.GeneratedLayout
	Content *content.Content
	BaseURL string
}

// Output describes an assembled tree.
type Output struct {
	Dir   string            `json:"dir"`
	Files []string          `json:"files"`
	Pages map[string]string `json:"pages"`
	Size  int64             `json:"size"`
}

// Assembler writes sites under a root directory, one subdirectory per
// project slug.
type Assembler struct {
	root   string
	logger *logging.Logger
	now    func() time.Time
}

// New creates an assembler rooted at root.
func New(root string, logger *logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{root: root, logger: logger, now: time.Now}
}

// Dir returns the output directory for a project slug.
func (a *Assembler) Dir(slug string) string {
	return filepath.Join(a.root, slug)
}

func (s Site) validate() error {
	switch {
	case s.Config == nil:
		return errors.New("assembler: missing config")
	case s.Tokens == nil:
		return errors.New("assembler: missing design tokens")
	case s.Content == nil:
		return errors.New("assembler: missing content")
	case len(s.Pages) == 0:
		return errors.New("assembler: no pages")
	}
	return nil
}

// Assemble renders the site. Re-assembling the same project overwrites the
// previous tree so every iteration inspects a fresh output.
func (a *Assembler) Assemble(ctx context.Context, site Site) (*Output, error) {
	if err := site.validate(); err != nil {
		return nil, err
	}
	dir := a.Dir(site.Config.Slug)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clearing output: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, ImagesDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}

	out := &Output{Dir: dir, Pages: make(map[string]string, len(site.Pages))}
	write := func(name string, data []byte) error {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		out.Files = append(out.Files, name)
		out.Size += int64(len(data))
		return nil
	}

	nav := sortedByOrder(planner.ByMenu(site.Pages, planner.MenuNav))
	footer := sortedByOrder(planner.ByMenu(site.Pages, planner.MenuFooter))

	for _, page := range sortedByOrder(site.Pages) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		html, err := renderPage(site, page, nav, footer, a.now().Year())
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", page.ID, err)
		}
		name := page.FileName()
		if err := write(name, html); err != nil {
			return nil, err
		}
		out.Pages[page.ID] = name
	}

	if err := write(StylesFile, []byte(stylesheet(site.Tokens))); err != nil {
		return nil, err
	}
	if err := write(ScriptFile, []byte(script)); err != nil {
		return nil, err
	}
	for _, pc := range site.Content.Pages {
		for _, sec := range pc.Sections {
			for _, img := range sec.Images {
				if img.LocalPath == "" {
					continue
				}
				if err := write(img.LocalPath, placeholderSVG(img, site.Tokens)); err != nil {
					return nil, err
				}
			}
		}
	}
	sm, err := sitemap(site, a.now())
	if err != nil {
		return nil, err
	}
	if err := write(SitemapFile, sm); err != nil {
		return nil, err
	}
	if err := write(RobotsFile, robots(site.BaseURL)); err != nil {
		return nil, err
	}

	sort.Strings(out.Files)
	a.logger.Info(ctx, "site assembled",
		zap.String("dir", dir),
		zap.Int("files", len(out.Files)),
		zap.Int64("bytes", out.Size))
	return out, nil
}

func sortedByOrder(pages []planner.PlannedPage) []planner.PlannedPage {
	out := append([]planner.PlannedPage(nil), pages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

type navItem struct {
	Href    string
	Label   string
	Current bool
}

type pageView struct {
	Lang        string
	Title       string
	Business    string
	Description string
	Keywords    string
	Canonical   string
	OpenGraph   []metaTag
	Twitter     []metaTag
	JSONLD      template.JS
	Nav         []navItem
	Footer      []navItem
	Home        string
	Sections    []sectionView
	Year        int
	Email       string
	Phone       string
}

type metaTag struct {
	Name    string
	Content string
}

type sectionView struct {
	ID       string
	Type     string
	Variant  string
	Layouts  string
	Heading  string
	First    bool
	Copy     content.Copy
	Images   []content.ImageAsset
	Children []navItem
}

func renderPage(site Site, page planner.PlannedPage, nav, footer []planner.PlannedPage, year int) ([]byte, error) {
	pc := site.Content.Pages[page.ID]
	if pc == nil {
		return nil, errors.New("no content for page")
	}
	seo := pc.SEO
	if seo.Title == "" {
		seo.Title = page.SEO.Title
	}
	if seo.Description == "" {
		seo.Description = page.SEO.Description
	}

	view := pageView{
		Lang:        "en",
		Title:       seo.Title,
		Business:    site.Config.BusinessName,
		Description: seo.Description,
		Keywords:    strings.Join(seo.Keywords, ", "),
		Canonical:   seo.Canonical,
		Nav:         navItems(nav, page.ID),
		Footer:      navItems(footer, page.ID),
		Home:        planner.IndexFile,
		Year:        year,
		Email:       site.Config.Contact.Email,
		Phone:       site.Config.Contact.Phone,
	}
	view.OpenGraph = metaTags(seo.OpenGraph)
	view.Twitter = metaTags(seo.Twitter)
	if len(seo.StructuredData) > 0 {
		raw, err := json.Marshal(seo.StructuredData)
		if err != nil {
			return nil, fmt.Errorf("structured data: %w", err)
		}
		view.JSONLD = template.JS(raw)
	}

	var variants map[string]layout.Section
	if l := site.Layouts[page.ID]; l != nil {
		variants = make(map[string]layout.Section, len(l.Sections))
		for _, s := range l.Sections {
			variants[s.ID] = s
		}
	}
	children := childItems(site.Pages, page)
	for i, sc := range pc.Sections {
		sv := sectionView{
			ID:     sc.SectionID,
			Type:   sc.Type,
			First:  i == 0,
			Copy:   sc.Copy,
			Images: sc.Images,
		}
		if ls, ok := variants[sc.SectionID]; ok {
			sv.Variant = ls.Variant
			sv.Layouts = responsiveClasses(ls)
		}
		if sc.Type == "services-list" {
			sv.Children = children
		}
		view.Sections = append(view.Sections, sv)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func navItems(pages []planner.PlannedPage, current string) []navItem {
	items := make([]navItem, 0, len(pages))
	for _, p := range pages {
		items = append(items, navItem{Href: p.Href(), Label: p.Title, Current: p.ID == current})
	}
	return items
}

func childItems(pages []planner.PlannedPage, page planner.PlannedPage) []navItem {
	var items []navItem
	for _, id := range page.Children {
		if p := planner.Find(pages, id); p != nil {
			items = append(items, navItem{Href: p.Href(), Label: p.Title})
		}
	}
	return items
}

// responsiveClasses flattens per-breakpoint rules into utility classes the
// shared stylesheet understands.
func responsiveClasses(s layout.Section) string {
	var cls []string
	for _, bp := range layout.Breakpoints {
		r, ok := s.Responsive[bp]
		if !ok {
			continue
		}
		if !r.Visible {
			cls = append(cls, fmt.Sprintf("hide-%s", bp))
			continue
		}
		cls = append(cls, fmt.Sprintf("%s-%s", bp, r.Layout))
	}
	return strings.Join(cls, " ")
}

func metaTags(m map[string]string) []metaTag {
	tags := make([]metaTag, 0, len(m))
	for k, v := range m {
		tags = append(tags, metaTag{Name: k, Content: v})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}
