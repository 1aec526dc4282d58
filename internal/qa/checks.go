package qa

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// checkSet tallies pass/fail checks and remembers which pages failed.
type checkSet struct {
	passed, total int
	findings      []string
	pages         []string
	seen          map[string]bool
}

func (c *checkSet) check(ok bool, page, finding string) {
	c.total++
	if ok {
		c.passed++
		return
	}
	if page != "" {
		finding = page + ": " + finding
		if c.seen == nil {
			c.seen = map[string]bool{}
		}
		if !c.seen[page] {
			c.seen[page] = true
			c.pages = append(c.pages, page)
		}
	}
	c.findings = append(c.findings, finding)
}

// percent is the 0-100 share of passed checks.
func (c *checkSet) percent() float64 {
	if c.total == 0 {
		return 100
	}
	return float64(c.passed) / float64(c.total) * 100
}

type assessment struct {
	category Category
	pages    []string
}

const (
	pageBudget  = 100 << 10
	totalBudget = 2 << 20
	imageBudget = 1536 << 10
)

// assessPerformance scores a sample on 0-100, then re-normalizes to 0-10.
func assessPerformance(s PerfSample) assessment {
	score := 100.0
	var findings []string
	if s.LargestPageBytes > pageBudget {
		over := float64(s.LargestPageBytes-pageBudget) / float64(pageBudget)
		score -= 10 * (1 + over)
		findings = append(findings, fmt.Sprintf("largest page is %d KB", s.LargestPageBytes>>10))
	}
	if s.TotalBytes > totalBudget {
		score -= 20
		findings = append(findings, fmt.Sprintf("site weighs %d KB", s.TotalBytes>>10))
	}
	if s.ImageBytes > imageBudget {
		score -= 15
		findings = append(findings, fmt.Sprintf("images weigh %d KB", s.ImageBytes>>10))
	}
	switch {
	case s.AvgLoadTime > 3*time.Second:
		score -= 30
		findings = append(findings, "average load time above 3s")
	case s.AvgLoadTime > time.Second:
		score -= 15
		findings = append(findings, "average load time above 1s")
	}
	return assessment{category: newCategory(CategoryPerformance, score/10, WeightPerformance, ThresholdPerformance, findings)}
}

func assessAccessibility(snap *Snapshot) assessment {
	var c checkSet
	for _, ps := range snap.Present() {
		id, doc := ps.Page.ID, ps.Doc
		c.check(doc.Find("html").AttrOr("lang", "") != "", id, "missing html lang")
		c.check(doc.Find("h1").Length() == 1, id, "expected exactly one h1")
		c.check(doc.Find("main").Length() > 0, id, "missing main landmark")
		c.check(doc.Find("nav").Length() > 0, id, "missing nav landmark")

		c.check(ps.MissingAlt == 0, id, fmt.Sprintf("%d images without alt text", ps.MissingAlt))

		unlabelled := 0
		doc.Find("input, textarea, select").Each(func(_ int, s *goquery.Selection) {
			if t := s.AttrOr("type", ""); t == "hidden" || t == "submit" {
				return
			}
			fid := s.AttrOr("id", "")
			if s.AttrOr("aria-label", "") != "" || (fid != "" && doc.Find(`label[for="`+fid+`"]`).Length() > 0) {
				return
			}
			unlabelled++
		})
		c.check(unlabelled == 0, id, fmt.Sprintf("%d form controls without labels", unlabelled))

		emptyLinks := 0
		doc.Find("a").Each(func(_ int, s *goquery.Selection) {
			if strings.TrimSpace(s.Text()) == "" && s.AttrOr("aria-label", "") == "" {
				emptyLinks++
			}
		})
		c.check(emptyLinks == 0, id, fmt.Sprintf("%d links without text", emptyLinks))
	}
	return assessment{
		category: newCategory(CategoryAccessibility, c.percent()/10, WeightAccessibility, ThresholdAccessibility, c.findings),
		pages:    c.pages,
	}
}

func assessSEO(snap *Snapshot) assessment {
	var c checkSet
	titles := map[string]string{}
	for _, ps := range snap.Present() {
		id, doc := ps.Page.ID, ps.Doc
		title := ps.Title
		n := utf8.RuneCountInString(title)
		c.check(n > 0 && n <= 60, id, fmt.Sprintf("title length %d outside 1-60", n))
		if other, dup := titles[title]; dup && title != "" {
			c.check(false, id, "title duplicates "+other)
		} else {
			titles[title] = id
		}

		desc := doc.Find(`meta[name="description"]`).AttrOr("content", "")
		dn := utf8.RuneCountInString(desc)
		c.check(dn >= 50 && dn <= 160, id, fmt.Sprintf("meta description length %d outside 50-160", dn))
		c.check(doc.Find(`link[rel="canonical"]`).AttrOr("href", "") != "", id, "missing canonical link")
		c.check(doc.Find(`meta[property="og:title"]`).Length() > 0, id, "missing og:title")
		c.check(doc.Find(`script[type="application/ld+json"]`).Length() > 0, id, "missing structured data")
		c.check(doc.Find(`meta[name="viewport"]`).Length() > 0, id, "missing viewport meta")
	}
	c.check(snap.Files["sitemap.xml"], "", "missing sitemap.xml")
	c.check(snap.Files["robots.txt"], "", "missing robots.txt")
	return assessment{
		category: newCategory(CategorySEO, c.percent()/10, WeightSEO, ThresholdSEO, c.findings),
		pages:    c.pages,
	}
}

// assessVisual scores design heuristics natively on 0-10.
func assessVisual(snap *Snapshot) assessment {
	var c checkSet
	var navSignature string
	for i, ps := range snap.Present() {
		id, doc := ps.Page.ID, ps.Doc
		c.check(doc.Find(`link[rel="stylesheet"]`).Length() > 0, id, "no stylesheet linked")
		sections := doc.Find("main section").Length()
		c.check(sections >= 1 && sections <= 10, id, fmt.Sprintf("%d sections on page", sections))
		c.check(headingOrder(doc), id, "heading levels skip")
		c.check(doc.Find("[style]").Length() == 0, id, "inline styles bypass design tokens")

		var hrefs []string
		doc.Find("header nav a").Each(func(_ int, s *goquery.Selection) {
			hrefs = append(hrefs, s.AttrOr("href", ""))
		})
		sig := strings.Join(hrefs, "|")
		if i == 0 {
			navSignature = sig
		} else {
			c.check(sig == navSignature, id, "header navigation differs from other pages")
		}
	}
	c.check(snap.Files["styles.css"], "", "missing shared stylesheet")
	return assessment{
		category: newCategory(CategoryVisual, c.percent()/10, WeightVisual, ThresholdVisual, c.findings),
		pages:    c.pages,
	}
}

// headingOrder reports whether headings never skip a level going down.
func headingOrder(doc *goquery.Document) bool {
	last := 0
	ok := true
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := int(goquery.NodeName(s)[1] - '0')
		if last > 0 && level > last+1 {
			ok = false
		}
		last = level
	})
	return ok
}
