// Package archetype classifies a project into one of a fixed set of website
// archetypes and derives its content, SEO and image strategy.
package archetype

import "fmt"

// Archetype is a website category driving blueprint and strategy selection.
type Archetype string

const (
	ServiceBusiness Archetype = "service-business"
	ECommerce       Archetype = "e-commerce"
	Portfolio       Archetype = "portfolio"
	SaaS            Archetype = "saas"
	Blog            Archetype = "blog"
	Restaurant      Archetype = "restaurant"
	Healthcare      Archetype = "healthcare"
	Legal           Archetype = "legal"
	RealEstate      Archetype = "real-estate"
	Education       Archetype = "education"
	Nonprofit       Archetype = "nonprofit"
	Corporate       Archetype = "corporate"
)

// All lists every archetype in declaration order.
var All = []Archetype{
	ServiceBusiness, ECommerce, Portfolio, SaaS, Blog, Restaurant,
	Healthcare, Legal, RealEstate, Education, Nonprofit, Corporate,
}

// Valid reports whether a is a known archetype.
func (a Archetype) Valid() bool {
	for _, known := range All {
		if a == known {
			return true
		}
	}
	return false
}

// Parse converts s into an Archetype.
func Parse(s string) (Archetype, error) {
	a := Archetype(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown archetype %q", s)
	}
	return a, nil
}

// Set is a membership set of archetypes.
type Set map[Archetype]struct{}

// NewSet builds a Set.
func NewSet(as ...Archetype) Set {
	s := make(Set, len(as))
	for _, a := range as {
		s[a] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(a Archetype) bool {
	_, ok := s[a]
	return ok
}

// Source records how a profile was produced.
type Source string

const (
	SourceCollaborator Source = "collaborator"
	SourceRules        Source = "rules"
)

// Profile is the classification result.
type Profile struct {
	Archetype       Archetype       `json:"archetype"`
	Confidence      float64         `json:"confidence"`
	ContentStrategy ContentStrategy `json:"contentStrategy"`
	SEOStrategy     SEOStrategy     `json:"seoStrategy"`
	ImageStrategy   ImageStrategy   `json:"imageStrategy"`
	Source          Source          `json:"source"`
}

// ContentStrategy describes what the copy should emphasise.
type ContentStrategy struct {
	Focus       string   `json:"focus"`
	Tone        string   `json:"tone"`
	KeyMessages []string `json:"keyMessages,omitempty"`
	PrimaryCTA  string   `json:"primaryCta"`
}

// SEOStrategy describes search positioning.
type SEOStrategy struct {
	PrimaryKeywords []string `json:"primaryKeywords"`
	LocalSEO        bool     `json:"localSeo"`
	SchemaType      string   `json:"schemaType"`
}

// ImageStrategy describes the imagery direction.
type ImageStrategy struct {
	Style    string   `json:"style"`
	Subjects []string `json:"subjects,omitempty"`
}
