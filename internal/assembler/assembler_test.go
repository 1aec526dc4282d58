package assembler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/sitesmith/internal/archetype"
	"github.com/fyrsmithlabs/sitesmith/internal/content"
	"github.com/fyrsmithlabs/sitesmith/internal/design"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/layout"
	"github.com/fyrsmithlabs/sitesmith/internal/planner"
)

func buildSite(t *testing.T) Site {
	t.Helper()
	ctx := context.Background()
	cfg, err := intake.Normalize(intake.IntakeForm{
		BusinessName: "Hartley & Cole Law",
		Industry:     "Legal Services",
		Services:     []string{"Estate Planning", "Family Law"},
		Location:     intake.LocationForm{City: "Denver", Region: "CO"},
		Email:        "office@hartleycole.example",
		Phone:        "+1 303 555 0100",
	})
	require.NoError(t, err)
	profile := archetype.ClassifyByRules(cfg)
	pages, err := planner.Plan(cfg, profile)
	require.NoError(t, err)
	tokens, err := design.Generate(cfg, profile)
	require.NoError(t, err)
	layouts, err := layout.NewSelector(nil, nil, 2, nil).Select(ctx, cfg.Fingerprint(), pages, profile, nil)
	require.NoError(t, err)

	in := content.Input{Config: cfg, Profile: profile, Pages: pages, Layouts: layouts, BaseURL: "https://hartleycole.example", Attempt: 1}
	s := content.NewSynthesizer(nil, 2, nil)
	copies, err := s.Copy(ctx, in, nil, nil)
	require.NoError(t, err)
	images, err := s.Images(ctx, in, nil)
	require.NoError(t, err)
	seo, err := s.SEO(ctx, in, nil)
	require.NoError(t, err)

	return Site{
		Config: cfg, Profile: profile, Pages: pages, Tokens: tokens, Layouts: layouts,
		Content: content.Compose(in, copies, images, seo), BaseURL: in.BaseURL,
	}
}

func openDoc(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestAssemble_WritesTree(t *testing.T) {
	site := buildSite(t)
	a := New(t.TempDir(), nil)
	a.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	out, err := a.Assemble(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, a.Dir("hartley-and-cole-law"), out.Dir)

	for _, name := range []string{"index.html", "about.html", "services.html", "contact.html",
		"privacy.html", "terms.html", StylesFile, ScriptFile, SitemapFile, RobotsFile, "images/home-hero.svg"} {
		assert.FileExists(t, filepath.Join(out.Dir, name))
		assert.Contains(t, out.Files, name)
	}
	assert.Equal(t, "index.html", out.Pages["home"])
	assert.Equal(t, "contact.html", out.Pages["contact"])
	assert.Positive(t, out.Size)

	css, err := os.ReadFile(filepath.Join(out.Dir, StylesFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(css), ":root {"))

	sm, err := os.ReadFile(filepath.Join(out.Dir, SitemapFile))
	require.NoError(t, err)
	assert.Contains(t, string(sm), "<loc>https://hartleycole.example/</loc>")
	assert.Contains(t, string(sm), "<loc>https://hartleycole.example/terms.html</loc>")
	assert.Contains(t, string(sm), "<lastmod>2026-03-01</lastmod>")

	robots, err := os.ReadFile(filepath.Join(out.Dir, RobotsFile))
	require.NoError(t, err)
	assert.Contains(t, string(robots), "Sitemap: https://hartleycole.example/sitemap.xml")
}

func TestAssemble_NavigationMarkup(t *testing.T) {
	site := buildSite(t)
	out, err := New(t.TempDir(), nil).Assemble(context.Background(), site)
	require.NoError(t, err)

	doc := openDoc(t, filepath.Join(out.Dir, "index.html"))
	var nav []string
	doc.Find("nav.site-nav a").Each(func(_ int, s *goquery.Selection) {
		nav = append(nav, s.AttrOr("href", ""))
	})
	assert.Equal(t, []string{"index.html", "about.html", "services.html", "contact.html"}, nav)
	assert.Equal(t, "page", doc.Find(`nav.site-nav a[href="index.html"]`).AttrOr("aria-current", ""))

	var footer []string
	doc.Find(`footer nav a`).Each(func(_ int, s *goquery.Selection) {
		footer = append(footer, s.AttrOr("href", ""))
	})
	assert.Equal(t, []string{"privacy.html", "terms.html"}, footer)

	assert.Equal(t, 1, doc.Find("h1").Length())
	assert.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
	assert.NotEmpty(t, doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	assert.Equal(t, "https://hartleycole.example/", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	assert.Contains(t, doc.Find(`script[type="application/ld+json"]`).Text(), `"@type":"LegalService"`)
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		assert.NotEmpty(t, s.AttrOr("alt", ""))
	})

	contact := openDoc(t, filepath.Join(out.Dir, "contact.html"))
	assert.Equal(t, 3, contact.Find("form.contact-form label").Length())
}

func TestAssemble_ReplacesPreviousTree(t *testing.T) {
	site := buildSite(t)
	a := New(t.TempDir(), nil)
	out, err := a.Assemble(context.Background(), site)
	require.NoError(t, err)

	stale := filepath.Join(out.Dir, "stale.html")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	_, err = a.Assemble(context.Background(), site)
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestAssemble_Errors(t *testing.T) {
	a := New(t.TempDir(), nil)
	_, err := a.Assemble(context.Background(), Site{})
	assert.Error(t, err)

	site := buildSite(t)
	delete(site.Content.Pages, "about")
	_, err = a.Assemble(context.Background(), site)
	assert.ErrorContains(t, err, "rendering about")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Assemble(ctx, buildSite(t))
	assert.ErrorIs(t, err, context.Canceled)
}
