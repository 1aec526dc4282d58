// Package planner produces the ordered page plan and internal-link graph for
// a project.
package planner

// PageType identifies the kind of page.
type PageType string

const (
	TypeHome          PageType = "home"
	TypeAbout         PageType = "about"
	TypeServices      PageType = "services"
	TypeServiceDetail PageType = "service-detail"
	TypeContact       PageType = "contact"
	TypePortfolio     PageType = "portfolio"
	TypeBlog          PageType = "blog"
	TypePricing       PageType = "pricing"
	TypeFAQ           PageType = "faq"
	TypePrivacy       PageType = "privacy"
	TypeTerms         PageType = "terms"
)

// Menu is where a page is listed.
type Menu string

const (
	MenuNav    Menu = "nav"
	MenuFooter Menu = "footer"
	MenuNone   Menu = "none"
)

// LinkKind classifies an internal link.
type LinkKind string

const (
	LinkNav   LinkKind = "nav"
	LinkCTA   LinkKind = "cta"
	LinkChild LinkKind = "child"
)

// IndexFile is the output name of the home page.
const IndexFile = "index.html"

// PlannedPage is one page of the plan. It is read-only once Plan returns.
type PlannedPage struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Type          PageType `json:"type"`
	Order         int      `json:"order"`
	Required      bool     `json:"required"`
	Menu          Menu     `json:"menu"`
	Sections      []string `json:"sections"`
	SEO           SEO      `json:"seo"`
	InternalLinks []Link   `json:"internalLinks"`
	Parent        string   `json:"parent,omitempty"`
	Children      []string `json:"children,omitempty"`
}

// SEO is the planner's search descriptor for a page.
type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Link is a planned internal link.
type Link struct {
	TargetID string   `json:"targetId"`
	Anchor   string   `json:"anchor"`
	Kind     LinkKind `json:"kind"`
}

// IsHome reports whether the page is the site root.
func (p *PlannedPage) IsHome() bool {
	return p.Type == TypeHome
}

// FileName is the page's output file name: the index file for the home page,
// {slug}.html otherwise.
func (p *PlannedPage) FileName() string {
	if p.IsHome() {
		return IndexFile
	}
	return p.Slug + ".html"
}

// Href is the relative link used by other pages to reach this one.
func (p *PlannedPage) Href() string {
	return p.FileName()
}

// Find returns the page with id, or nil.
func Find(pages []PlannedPage, id string) *PlannedPage {
	for i := range pages {
		if pages[i].ID == id {
			return &pages[i]
		}
	}
	return nil
}

// ByMenu returns the pages listed in menu, in plan order.
func ByMenu(pages []PlannedPage, menu Menu) []PlannedPage {
	out := make([]PlannedPage, 0, len(pages))
	for _, p := range pages {
		if p.Menu == menu {
			out = append(out, p)
		}
	}
	return out
}
