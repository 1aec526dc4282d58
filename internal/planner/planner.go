package planner

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/sitesmith/internal/archetype"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
)

const (
	// MinPages and MaxPages bound every plan.
	MinPages = 5
	MaxPages = 12

	maxServiceDetails = 4
)

var (
	portfolioArchetypes = archetype.NewSet(archetype.Portfolio, archetype.RealEstate)
	blogArchetypes      = archetype.NewSet(archetype.Blog, archetype.SaaS, archetype.Corporate, archetype.Education, archetype.Nonprofit)
	pricingArchetypes   = archetype.NewSet(archetype.SaaS, archetype.ECommerce)
	faqArchetypes       = archetype.NewSet(archetype.ServiceBusiness, archetype.Healthcare, archetype.ECommerce,
		archetype.SaaS, archetype.Education, archetype.Restaurant, archetype.RealEstate)
	legalArchetypes = archetype.NewSet(archetype.Legal, archetype.Healthcare, archetype.ECommerce,
		archetype.SaaS, archetype.Corporate, archetype.Education)
	serviceDetailArchetypes = archetype.NewSet(archetype.ServiceBusiness)
)

// Plan returns between MinPages and MaxPages pages ordered by Order. It is
// deterministic for a given config and profile.
func Plan(cfg *intake.ProjectConfig, profile *archetype.Profile) ([]PlannedPage, error) {
	if cfg == nil || profile == nil {
		return nil, errors.New("plan: config and profile are required")
	}
	a := profile.Archetype
	b := &builder{cfg: cfg, profile: profile, seen: map[string]bool{}}

	b.add(newPage(TypeHome, "home", "Home", true, MenuNav))
	b.add(newPage(TypeAbout, "about", "About", true, MenuNav))
	if cfg.HasServices() {
		b.add(newPage(TypeServices, "services", "Services", true, MenuNav))
	}
	b.add(newPage(TypeContact, "contact", "Contact", true, MenuNav))

	if portfolioArchetypes.Has(a) {
		b.add(newPage(TypePortfolio, "portfolio", "Portfolio", false, MenuFooter))
	}
	if blogArchetypes.Has(a) {
		b.add(newPage(TypeBlog, "blog", "Blog", false, MenuFooter))
	}
	if pricingArchetypes.Has(a) {
		b.add(newPage(TypePricing, "pricing", "Pricing", false, MenuFooter))
	}
	if faqArchetypes.Has(a) {
		b.add(newPage(TypeFAQ, "faq", "FAQ", false, MenuFooter))
	}

	legal := []PlannedPage{
		newPage(TypePrivacy, "privacy", "Privacy Policy", false, MenuFooter),
		newPage(TypeTerms, "terms", "Terms of Service", false, MenuFooter),
	}
	for _, p := range legal {
		if legalArchetypes.Has(a) || len(b.pages) < MinPages {
			b.add(p)
		}
	}

	if serviceDetailArchetypes.Has(a) && cfg.HasServices() {
		b.addServiceDetails()
	}

	if len(b.pages) < MinPages {
		return nil, fmt.Errorf("plan: only %d pages planned, need %d", len(b.pages), MinPages)
	}

	b.link()
	return b.pages, nil
}

type builder struct {
	cfg     *intake.ProjectConfig
	profile *archetype.Profile
	pages   []PlannedPage
	seen    map[string]bool
}

func newPage(t PageType, id, title string, required bool, menu Menu) PlannedPage {
	return PlannedPage{
		ID:       id,
		Slug:     id,
		Title:    title,
		Type:     t,
		Required: required,
		Menu:     menu,
	}
}

// add appends p unless its id is taken or the plan is full.
func (b *builder) add(p PlannedPage) bool {
	if b.seen[p.ID] || len(b.pages) >= MaxPages {
		return false
	}
	b.seen[p.ID] = true
	p.Order = len(b.pages) + 1
	p.Sections = sectionsFor(p.Type, b.cfg)
	p.SEO = b.seoFor(p)
	p.InternalLinks = []Link{}
	b.pages = append(b.pages, p)
	return true
}

func (b *builder) addServiceDetails() {
	parent := Find(b.pages, "services")
	if parent == nil {
		return
	}
	var children []string
	for i, svc := range b.cfg.Services {
		if i == maxServiceDetails {
			break
		}
		slug := intake.Slugify(svc)
		if slug == "" {
			continue
		}
		p := newPage(TypeServiceDetail, "service-"+slug, svc, false, MenuNone)
		p.Parent = "services"
		if b.add(p) {
			children = append(children, p.ID)
		}
	}
	// add may have grown the slice; look the parent up again.
	Find(b.pages, "services").Children = children
}

// link builds the default internal-link graph.
func (b *builder) link() {
	home := Find(b.pages, "home")
	for _, p := range b.pages {
		if p.Required && p.ID != home.ID {
			home.InternalLinks = append(home.InternalLinks, Link{TargetID: p.ID, Anchor: p.Title, Kind: LinkNav})
		}
	}

	services := Find(b.pages, "services")
	if services != nil && Find(b.pages, "contact") != nil {
		anchor := b.profile.ContentStrategy.PrimaryCTA
		if anchor == "" {
			anchor = "Contact Us"
		}
		services.InternalLinks = append(services.InternalLinks, Link{TargetID: "contact", Anchor: anchor, Kind: LinkCTA})
	}
	if services != nil {
		for _, id := range services.Children {
			child := Find(b.pages, id)
			services.InternalLinks = append(services.InternalLinks, Link{TargetID: id, Anchor: child.Title, Kind: LinkChild})
		}
	}
}
