package planner

import (
	"strings"

	"github.com/fyrsmithlabs/sitesmith/internal/intake"
)

func sectionsFor(t PageType, cfg *intake.ProjectConfig) []string {
	switch t {
	case TypeHome:
		s := []string{"hero"}
		if cfg.HasServices() {
			s = append(s, "services-overview")
		}
		return append(s, "about-preview", "testimonials", "cta")
	case TypeAbout:
		return []string{"hero", "story", "values", "team", "cta"}
	case TypeServices:
		return []string{"hero", "services-list", "process", "cta"}
	case TypeServiceDetail:
		return []string{"hero", "service-detail", "benefits", "cta"}
	case TypeContact:
		return []string{"hero", "contact-form", "contact-details"}
	case TypePortfolio:
		return []string{"hero", "gallery", "cta"}
	case TypeBlog:
		return []string{"hero", "post-list"}
	case TypePricing:
		return []string{"hero", "pricing-table", "cta"}
	case TypeFAQ:
		return []string{"hero", "faq-list", "cta"}
	default:
		return []string{"legal-content"}
	}
}

func (b *builder) seoFor(p PlannedPage) SEO {
	name := b.cfg.BusinessName
	loc := b.cfg.Location.Display()

	title := p.Title + " | " + name
	if p.Type == TypeHome {
		title = name
		if b.cfg.Tagline != "" {
			title += " | " + b.cfg.Tagline
		}
	}

	var desc string
	switch p.Type {
	case TypeHome:
		desc = name + " " + describe(b.cfg)
	case TypeAbout:
		desc = "Learn about " + name + ", our story, values and team."
	case TypeServices:
		desc = name + " offers " + strings.Join(b.cfg.Services, ", ") + "."
	case TypeServiceDetail:
		desc = p.Title + " from " + name + "."
	case TypeContact:
		desc = "Get in touch with " + name + "."
	case TypePrivacy, TypeTerms:
		desc = p.Title + " for " + name + "."
	default:
		desc = p.Title + " from " + name + "."
	}
	if loc != "" && p.Type != TypePrivacy && p.Type != TypeTerms {
		desc = strings.TrimSuffix(desc, ".") + " in " + loc + "."
	}

	return SEO{
		Title:       title,
		Description: desc,
		Keywords:    append([]string(nil), b.profile.SEOStrategy.PrimaryKeywords...),
	}
}

func describe(cfg *intake.ProjectConfig) string {
	if cfg.Description != "" {
		return "- " + cfg.Description
	}
	return "- " + cfg.Industry
}
