package content

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/fyrsmithlabs/sitesmith/internal/planner"
)

const (
	maxTitleLen = 60
	minDescLen  = 70
	maxDescLen  = 160
)

// FallbackCopy is the rule-based copy for a section type.
func FallbackCopy(in Input, page planner.PlannedPage, sectionType string) Copy {
	cfg := in.Config
	name := cfg.BusinessName
	where := ""
	if loc := cfg.Location.Display(); loc != "" {
		where = " in " + loc
	}
	industry := cfg.Industry
	if industry == "" {
		industry = "business"
	}

	cp := Copy{CTA: fallbackCTA(in, sectionType)}
	switch sectionType {
	case "hero":
		cp.Headline = name
		if page.Type != planner.TypeHome {
			cp.Headline = page.Title
		}
		cp.Subheadline = cfg.Tagline
		if cp.Subheadline == "" {
			cp.Subheadline = "Trusted " + industry + where
		}
		cp.Description = firstNonEmpty(cfg.Description, name+" delivers "+in.Profile.ContentStrategy.Focus+" for "+strings.Join(cfg.Audiences, ", ")+".")
	case "services-overview", "services-list":
		cp.Headline = "Our Services"
		cp.Description = "What " + name + " can do for you."
		cp.Bullets = append([]string(nil), cfg.Services...)
	case "about-preview", "story":
		cp.Headline = "About " + name
		cp.Description = firstNonEmpty(cfg.Description, name+" is a "+industry+where+".")
	case "testimonials":
		cp.Headline = "What Our Clients Say"
		cp.Bullets = []string{
			"\"Professional, responsive and easy to work with.\"",
			"\"" + name + " exceeded our expectations.\"",
		}
	case "cta":
		cp.Headline = "Ready to get started?"
		cp.Description = "Contact " + name + " today."
	case "values":
		cp.Headline = "Our Values"
		cp.Bullets = []string{"Integrity", "Quality", "Care for every client"}
	case "team":
		cp.Headline = "Meet the Team"
		cp.Description = "The people behind " + name + "."
	case "process":
		cp.Headline = "How It Works"
		cp.Bullets = []string{"Get in touch", "Plan together", "We deliver"}
	case "service-detail":
		cp.Headline = page.Title
		cp.Description = page.Title + " by " + name + where + "."
	case "benefits":
		cp.Headline = "Why Choose " + name
		cp.Bullets = []string{"Experienced team", "Clear pricing", "Reliable results"}
	case "contact-form":
		cp.Headline = "Send Us a Message"
		cp.Description = "We usually reply within one business day."
	case "contact-details":
		cp.Headline = "Contact Details"
		for _, v := range []string{cfg.Contact.Email, cfg.Contact.Phone, cfg.Location.Display()} {
			if v != "" {
				cp.Bullets = append(cp.Bullets, v)
			}
		}
	case "gallery":
		cp.Headline = "Our Work"
	case "post-list":
		cp.Headline = "Latest Articles"
	case "pricing-table":
		cp.Headline = "Plans & Pricing"
		cp.Bullets = []string{"Starter", "Professional", "Enterprise"}
	case "faq-list":
		cp.Headline = "Frequently Asked Questions"
		cp.Bullets = []string{"How do I get started?", "What areas do you serve?", "How much does it cost?"}
	default:
		cp.Headline = page.Title
		cp.Description = page.Title + " for " + name + "."
	}
	return cp
}

func fallbackCTA(in Input, sectionType string) *CTA {
	switch sectionType {
	case "hero", "cta", "service-detail", "benefits":
	default:
		return nil
	}
	contact := planner.Find(in.Pages, "contact")
	if contact == nil {
		return nil
	}
	label := in.Profile.ContentStrategy.PrimaryCTA
	if label == "" {
		label = "Contact Us"
	}
	return &CTA{Label: label, Href: contact.Href()}
}

// BuildSEO completes page metadata. Empty title, description or keywords
// fall back to the planner's descriptor; lengths are clamped to the ranges
// search engines display.
func BuildSEO(in Input, page planner.PlannedPage, title, desc string, keywords []string) SEOMeta {
	title = clamp(firstNonEmpty(title, page.SEO.Title), maxTitleLen)
	desc = firstNonEmpty(desc, page.SEO.Description)
	for _, extra := range []string{
		in.Config.BusinessName + " - " + in.Profile.ContentStrategy.Focus + ".",
		"Serving " + strings.Join(in.Config.Audiences, ", ") + ".",
		"Contact us today to learn more about what we offer.",
	} {
		if utf8.RuneCountInString(desc) >= minDescLen {
			break
		}
		desc = strings.TrimSpace(desc + " " + extra)
	}
	desc = clamp(desc, maxDescLen)
	if len(keywords) == 0 {
		keywords = page.SEO.Keywords
	}

	canonical := canonicalURL(in.BaseURL, page)
	og := map[string]string{
		"og:title":       title,
		"og:description": desc,
		"og:type":        "website",
		"og:url":         canonical,
		"og:site_name":   in.Config.BusinessName,
	}
	tw := map[string]string{
		"twitter:card":        "summary_large_image",
		"twitter:title":       title,
		"twitter:description": desc,
	}

	return SEOMeta{
		Title:          title,
		Description:    desc,
		Keywords:       append([]string(nil), keywords...),
		Canonical:      canonical,
		OpenGraph:      og,
		Twitter:        tw,
		StructuredData: structuredData(in, page, canonical),
	}
}

func structuredData(in Input, page planner.PlannedPage, canonical string) map[string]any {
	schemaType := in.Profile.SEOStrategy.SchemaType
	if schemaType == "" {
		schemaType = "Organization"
	}
	cfg := in.Config
	org := map[string]any{
		"@context": "https://schema.org",
		"@type":    schemaType,
		"name":     cfg.BusinessName,
		"url":      canonical,
	}
	if cfg.Contact.Email != "" {
		org["email"] = cfg.Contact.Email
	}
	if cfg.Contact.Phone != "" {
		org["telephone"] = cfg.Contact.Phone
	}
	if cfg.Location.City != "" {
		org["address"] = map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   cfg.Location.Address,
			"addressLocality": cfg.Location.City,
			"addressRegion":   cfg.Location.Region,
			"addressCountry":  cfg.Location.Country,
		}
	}
	if page.IsHome() {
		return org
	}
	return map[string]any{
		"@context":  "https://schema.org",
		"@type":     "WebPage",
		"name":      page.Title,
		"url":       canonical,
		"publisher": org,
	}
}

func canonicalURL(base string, page planner.PlannedPage) string {
	if base == "" {
		base = "https://example.com"
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return page.Href()
	}
	if page.IsHome() {
		return u.String()
	}
	return u.JoinPath(page.Href()).String()
}

func clamp(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	cut := string(r[:max-1])
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.-|") + "…"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
