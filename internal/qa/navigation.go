package qa

import (
	"math"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IntegrityScore is round(working/total*10) when there are links, 0 when
// there are none but pages are missing, and 10 otherwise.
func IntegrityScore(working, total, missingPages int) int {
	switch {
	case total > 0:
		return int(math.Round(float64(working) / float64(total) * 10))
	case missingPages > 0:
		return 0
	default:
		return 10
	}
}

// IntegrityStatus maps an integrity score to its status.
func IntegrityStatus(score int) Status {
	switch {
	case score < 8:
		return StatusFail
	case score < 10:
		return StatusWarning
	default:
		return StatusPass
	}
}

// isInternal reports whether href points at a file of the site.
func isInternal(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	switch {
	case h == "", strings.HasPrefix(h, "#"):
		return false
	case strings.HasPrefix(h, "http://"), strings.HasPrefix(h, "https://"), strings.HasPrefix(h, "//"):
		return false
	case strings.HasPrefix(h, "mailto:"), strings.HasPrefix(h, "tel:"), strings.HasPrefix(h, "javascript:"):
		return false
	}
	return true
}

// resolveTarget maps an internal href to a path in the output set.
func resolveTarget(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	p := href
	if err == nil {
		p = u.Path
	}
	dir := strings.HasSuffix(p, "/") || p == ""
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if dir || p == "" {
		p = path.Join(p, "index.html")
	}
	return p
}

// navLinkCount counts the internal links of a navigation fragment.
func navLinkCount(navHTML string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(navHTML))
	if err != nil {
		return 0
	}
	n := 0
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, _ := a.Attr("href"); isInternal(href) {
			n++
		}
	})
	return n
}

// expectedLinks is how many links a missing page counts as broken: the
// larger of its planned links and the navigation every rendered page
// carries, and never less than one.
func expectedLinks(ps *PageSnapshot, sharedNav int) int {
	return max(len(ps.Page.InternalLinks), sharedNav, 1)
}

// assessNavigation checks every internal link of every page's navigation
// markup against the output set. The first broken link of the run is
// critical; later ones are high. A missing page file counts all of its
// expected links as broken and keeps the score below 10.
func assessNavigation(snap *Snapshot) Navigation {
	nav := Navigation{}
	firstBroken := true

	sharedNav := 0
	for _, ps := range snap.Pages {
		if !ps.Missing {
			sharedNav = navLinkCount(ps.NavHTML)
			break
		}
	}

	for _, ps := range snap.Pages {
		if ps.Missing {
			nav.MissingPages = append(nav.MissingPages, ps.Page.ID)
			n := expectedLinks(ps, sharedNav)
			nav.TotalLinks += n
			nav.BrokenLinks += n
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(ps.NavHTML))
		if err != nil {
			continue
		}
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if !isInternal(href) {
				return
			}
			nav.TotalLinks++
			target := resolveTarget(href)
			if snap.Files[target] {
				nav.WorkingLinks++
				return
			}
			nav.BrokenLinks++
			sev := SeverityHigh
			if firstBroken {
				sev = SeverityCritical
				firstBroken = false
			}
			nav.Broken = append(nav.Broken, BrokenLink{
				Page:     ps.Page.ID,
				Text:     strings.TrimSpace(a.Text()),
				Href:     href,
				Reason:   "target " + target + " does not exist",
				Severity: sev,
			})
		})
	}

	nav.Score = IntegrityScore(nav.WorkingLinks, nav.TotalLinks, len(nav.MissingPages))
	if len(nav.MissingPages) > 0 && nav.Score == 10 {
		nav.Score = 9
	}
	nav.Status = IntegrityStatus(nav.Score)
	return nav
}
