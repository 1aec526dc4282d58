package qa

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fyrsmithlabs/sitesmith/internal/planner"
)

// Input is what the gate assesses. Dir is the assembled output tree;
// BaseURL, when set, is where its pages are served from instead.
type Input struct {
	Dir       string
	BaseURL   string
	Pages     []planner.PlannedPage
	Iteration int
}

// Snapshot is the loaded state of every page, shared read-only by the
// assessments.
type Snapshot struct {
	Dir   string
	Files map[string]bool
	Pages []*PageSnapshot
}

// PageSnapshot is one loaded page. Missing pages have no document.
type PageSnapshot struct {
	Page       planner.PlannedPage
	File       string
	Missing    bool
	Doc        *goquery.Document
	NavHTML    string
	Title      string
	LoadTime   time.Duration
	MissingAlt int
}

// Images with no alt attribute or an empty one.
const missingAltSelector = `img:not([alt]), img[alt=""]`

// AvgLoadTime averages the load time of the pages that exist.
func (s *Snapshot) AvgLoadTime() time.Duration {
	var total time.Duration
	n := 0
	for _, p := range s.Pages {
		if !p.Missing {
			total += p.LoadTime
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

// Present returns the pages that loaded.
func (s *Snapshot) Present() []*PageSnapshot {
	out := make([]*PageSnapshot, 0, len(s.Pages))
	for _, p := range s.Pages {
		if !p.Missing {
			out = append(out, p)
		}
	}
	return out
}

func listFiles(dir string) (map[string]bool, error) {
	files := map[string]bool{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing output: %w", err)
	}
	return files, nil
}

// snapshot opens every planned page in order. The browser and each page
// are released on every path.
func (g *Gate) snapshot(ctx context.Context, in Input) (_ *Snapshot, err error) {
	files, err := listFiles(in.Dir)
	if err != nil {
		return nil, err
	}

	browser, err := g.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing browser: %w", cerr)
		}
	}()

	pages := append([]planner.PlannedPage(nil), in.Pages...)
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Order < pages[j].Order })

	snap := &Snapshot{Dir: in.Dir, Files: files}
	for _, p := range pages {
		ps, err := g.openPage(ctx, browser, in, files, p)
		if err != nil {
			return nil, err
		}
		snap.Pages = append(snap.Pages, ps)
	}
	return snap, nil
}

func (g *Gate) openPage(ctx context.Context, browser Browser, in Input, files map[string]bool, p planner.PlannedPage) (*PageSnapshot, error) {
	ps := &PageSnapshot{Page: p, File: p.FileName()}
	if in.BaseURL == "" && !files[ps.File] {
		ps.Missing = true
		return ps, nil
	}

	page, err := browser.Open(ctx, pageURL(in, ps.File), g.timeout)
	if errors.Is(err, ErrPageNotFound) {
		ps.Missing = true
		return ps, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", ps.File, err)
	}
	defer page.Close()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML()))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ps.File, err)
	}
	ps.Doc = doc
	if ps.NavHTML, err = page.NavigationHTML(); err != nil {
		return nil, fmt.Errorf("reading navigation of %s: %w", ps.File, err)
	}
	if v, err := page.Evaluate(ctx, ProbeTitle); err == nil {
		ps.Title, _ = v.(string)
	}
	if v, err := page.Evaluate(ctx, ProbeLoadTime); err == nil {
		if ms, ok := v.(float64); ok {
			ps.LoadTime = time.Duration(ms * float64(time.Millisecond))
		}
	}
	ps.MissingAlt = doc.Find(missingAltSelector).Length()
	if v, err := page.Evaluate(ctx, ProbeCount+missingAltSelector); err == nil {
		if n, ok := v.(int); ok {
			ps.MissingAlt = n
		}
	}
	return ps, nil
}

func pageURL(in Input, name string) string {
	if in.BaseURL != "" {
		u, err := url.Parse(strings.TrimRight(in.BaseURL, "/") + "/")
		if err == nil {
			return u.JoinPath(name).String()
		}
	}
	return filepath.Join(in.Dir, name)
}
