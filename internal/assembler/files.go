package assembler

import (
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/fyrsmithlabs/sitesmith/internal/content"
	"github.com/fyrsmithlabs/sitesmith/internal/design"
)

func stylesheet(t *design.Tokens) string {
	return t.CSSVariables() + "\n" + baseCSS
}

func placeholderSVG(img content.ImageAsset, t *design.Tokens) []byte {
	bg := t.Colors.Primary[100]
	fg := t.Colors.Primary[700]
	if bg == "" {
		bg, fg = "#e5e7eb", "#374151"
	}
	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img" aria-label="%s">
<rect width="100%%" height="100%%" fill="%s"/>
<text x="50%%" y="50%%" fill="%s" font-family="sans-serif" font-size="32" text-anchor="middle" dominant-baseline="middle">%s</text>
</svg>
`, img.Width, img.Height, img.Width, img.Height, html.EscapeString(img.Alt), bg, fg, html.EscapeString(img.Alt)))
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod"`
	Priority string `xml:"priority"`
}

func sitemap(site Site, now time.Time) ([]byte, error) {
	base := strings.TrimRight(site.BaseURL, "/")
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range sortedByOrder(site.Pages) {
		loc := base + "/"
		priority := "1.0"
		if !p.IsHome() {
			loc += p.FileName()
			priority = "0.8"
			if !p.Required {
				priority = "0.5"
			}
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: loc, LastMod: now.UTC().Format("2006-01-02"), Priority: priority})
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sitemap: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func robots(baseURL string) []byte {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n")
	if baseURL != "" {
		b.WriteString("\nSitemap: " + strings.TrimRight(baseURL, "/") + "/" + SitemapFile + "\n")
	}
	return []byte(b.String())
}
