package qa

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/sitesmith/internal/planner"
)

func TestIntegrityScoreAndStatus(t *testing.T) {
	tests := []struct {
		working, total, missing int
		score                   int
		status                  Status
	}{
		{8, 10, 0, 8, StatusWarning},
		{10, 10, 0, 10, StatusPass},
		{5, 10, 0, 5, StatusFail},
		{9, 10, 0, 9, StatusWarning},
		{0, 0, 1, 0, StatusFail},
		{0, 0, 0, 10, StatusPass},
	}
	for _, tt := range tests {
		score := IntegrityScore(tt.working, tt.total, tt.missing)
		assert.Equal(t, tt.score, score, "%d/%d", tt.working, tt.total)
		assert.Equal(t, tt.status, IntegrityStatus(score))
	}
}

func TestIsInternal(t *testing.T) {
	for _, href := range []string{"https://x.example", "http://x", "//cdn.example/a", "mailto:a@b", "tel:+1", "#top", "javascript:void(0)", "JavaScript:alert(1)", ""} {
		assert.False(t, isInternal(href), href)
	}
	for _, href := range []string{"about.html", "./contact.html", "/", "blog/"} {
		assert.True(t, isInternal(href), href)
	}
}

func TestResolveTarget(t *testing.T) {
	assert.Equal(t, "about.html", resolveTarget("about.html"))
	assert.Equal(t, "about.html", resolveTarget("./about.html?x=1#team"))
	assert.Equal(t, "index.html", resolveTarget("/"))
	assert.Equal(t, "blog/index.html", resolveTarget("blog/"))
	assert.Equal(t, "about.html", resolveTarget("/about.html"))
}

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func navPage(links ...string) string {
	html := `<html lang="en"><head><title>t</title></head><body><header><nav>`
	for i := 0; i+1 < len(links); i += 2 {
		html += `<a href="` + links[i] + `">` + links[i+1] + `</a>`
	}
	return html + `</nav></header><main><h1>x</h1></main><a href="ghost.html">outside nav</a></body></html>`
}

func plan(ids ...string) []planner.PlannedPage {
	pages := make([]planner.PlannedPage, len(ids))
	for i, id := range ids {
		typ := planner.TypeAbout
		if id == "home" {
			typ = planner.TypeHome
		}
		pages[i] = planner.PlannedPage{ID: id, Slug: id, Title: id, Type: typ, Order: i + 1}
	}
	return pages
}

func TestNavigation_FirstBrokenLinkIsCritical(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"index.html": navPage("about.html", "About", "missing-1.html", "One", "https://x.example", "Ext", "mailto:a@b.example", "Mail"),
		"about.html": navPage("index.html", "Home", "missing-2.html", "Two", "#team", "Team", "missing-3.html", "Three"),
	})
	g := NewGate(nil, FixedMetrics{}, Options{})

	report, err := g.Assess(context.Background(), Input{Dir: dir, Pages: plan("home", "about"), Iteration: 1})
	require.NoError(t, err)

	nav := report.Navigation
	assert.Equal(t, 5, nav.TotalLinks)
	assert.Equal(t, 2, nav.WorkingLinks)
	assert.Equal(t, 3, nav.BrokenLinks)
	assert.Equal(t, 4, nav.Score)
	assert.Equal(t, StatusFail, nav.Status)

	require.Len(t, nav.Broken, 3)
	assert.Equal(t, BrokenLink{Page: "home", Text: "One", Href: "missing-1.html",
		Reason: "target missing-1.html does not exist", Severity: SeverityCritical}, nav.Broken[0])
	assert.Equal(t, SeverityHigh, nav.Broken[1].Severity)
	assert.Equal(t, "Two", nav.Broken[1].Text)
	assert.Equal(t, SeverityHigh, nav.Broken[2].Severity)
	assert.Equal(t, "missing-3.html", nav.Broken[2].Href)

	var linkIssues []Issue
	for _, is := range report.Issues {
		if is.Href != "" {
			linkIssues = append(linkIssues, is)
		}
	}
	require.Len(t, linkIssues, 3)
	assert.Equal(t, SeverityCritical, linkIssues[0].Severity)
	assert.False(t, report.MeetsThresholds)
}

func TestNavigation_MissingPage(t *testing.T) {
	dir := writeSite(t, map[string]string{
		"index.html": navPage("index.html", "Home"),
	})
	pages := plan("home", "about")
	pages[1].InternalLinks = []planner.Link{{TargetID: "home", Anchor: "Home", Kind: planner.LinkNav}}

	report, err := NewGate(nil, FixedMetrics{}, Options{}).Assess(context.Background(), Input{Dir: dir, Pages: pages})
	require.NoError(t, err)

	nav := report.Navigation
	assert.Equal(t, []string{"about"}, nav.MissingPages)
	assert.Equal(t, 2, nav.TotalLinks)
	assert.Equal(t, 1, nav.WorkingLinks)
	assert.Equal(t, 5, nav.Score)

	var missing *Issue
	for i := range report.Issues {
		if report.Issues[i].Message == "page file missing" {
			missing = &report.Issues[i]
		}
	}
	require.NotNil(t, missing)
	assert.Equal(t, SeverityCritical, missing.Severity)
	assert.Equal(t, "about", missing.Page)
}

func TestNavigation_MissingPageWithoutPlannedLinks(t *testing.T) {
	body := navPage("index.html", "Home", "contact.html", "Contact")
	dir := writeSite(t, map[string]string{
		"index.html":   body,
		"contact.html": body,
	})
	// Detail pages plan no links of their own.
	pages := plan("home", "contact", "service-drain-repair")

	report, err := NewGate(nil, FixedMetrics{}, Options{}).Assess(context.Background(), Input{Dir: dir, Pages: pages})
	require.NoError(t, err)

	nav := report.Navigation
	assert.Equal(t, []string{"service-drain-repair"}, nav.MissingPages)
	assert.Equal(t, 6, nav.TotalLinks)
	assert.Equal(t, 4, nav.WorkingLinks)
	assert.Equal(t, 2, nav.BrokenLinks, "the shared navigation counts as broken")
	assert.Equal(t, StatusFail, nav.Status)
	assert.False(t, report.MeetsThresholds)
}

func TestNavigation_MissingPageNeverPasses(t *testing.T) {
	files := map[string]string{"index.html": navPage("index.html", "Home")}
	ids := []string{"home"}
	for i := range 20 {
		id := fmt.Sprintf("page-%d", i)
		files[id+".html"] = navPage("index.html", "Home")
		ids = append(ids, id)
	}
	ids = append(ids, "gone")

	report, err := NewGate(nil, FixedMetrics{}, Options{}).Assess(context.Background(), Input{Dir: writeSite(t, files), Pages: plan(ids...)})
	require.NoError(t, err)

	nav := report.Navigation
	assert.Equal(t, 21, nav.WorkingLinks)
	assert.Equal(t, 22, nav.TotalLinks)
	assert.Equal(t, 9, nav.Score, "rounds to 10 but a missing file caps it")
	assert.Equal(t, StatusWarning, nav.Status)
	assert.False(t, report.MeetsThresholds)
}

func TestBuildIssues_NavigationSummaryBelowThresholdOnly(t *testing.T) {
	summary := func(issues []Issue) int {
		n := 0
		for _, is := range issues {
			if is.Category == CategoryNavigation && strings.HasPrefix(is.Message, "navigation integrity") {
				n++
			}
		}
		return n
	}

	cats := categories(10, 10, 10, 10, 9)
	nav := Navigation{Score: 9, Status: StatusWarning, TotalLinks: 10, WorkingLinks: 9, BrokenLinks: 1,
		Broken: []BrokenLink{{Page: "home", Href: "x.html", Severity: SeverityCritical}}}
	issues := buildIssues(cats, make([]assessment, len(cats)), nav)
	assert.Zero(t, summary(issues))
	require.Len(t, issues, 1, "the broken link is still listed")
	assert.Equal(t, "x.html", issues[0].Href)

	cats = categories(10, 10, 10, 10, 5)
	nav.Score, nav.Status, nav.WorkingLinks, nav.BrokenLinks = 5, StatusFail, 5, 5
	issues = buildIssues(cats, make([]assessment, len(cats)), nav)
	assert.Equal(t, 1, summary(issues))
}
