package archetype

import (
	"strings"
	"unicode"

	"github.com/fyrsmithlabs/sitesmith/internal/intake"
)

type rule struct {
	archetype  Archetype
	keywords   []string
	focus      string
	cta        string
	schemaType string
	localSEO   bool
	imageStyle string
}

// rules is evaluated in order; on equal keyword hits the earlier rule wins.
var rules = []rule{
	{Legal, []string{"law", "legal", "attorney", "attorneys", "lawyer", "lawyers", "notary", "paralegal", "litigation", "estate planning"},
		"expertise and trust", "Schedule a Consultation", "LegalService", true, "professional portraits"},
	{Healthcare, []string{"clinic", "medical", "dental", "dentist", "doctor", "health", "healthcare", "therapy", "physio", "chiropractic", "veterinary", "wellness"},
		"care and credentials", "Book an Appointment", "MedicalBusiness", true, "calm clinical"},
	{Restaurant, []string{"restaurant", "cafe", "coffee", "bakery", "bistro", "bar", "catering", "food", "pizzeria", "diner", "kitchen"},
		"menu and atmosphere", "Reserve a Table", "Restaurant", true, "food photography"},
	{RealEstate, []string{"real estate", "realtor", "realty", "property", "properties", "homes", "brokerage", "mortgage"},
		"listings and local knowledge", "View Listings", "RealEstateAgent", true, "architectural"},
	{ECommerce, []string{"shop", "store", "ecommerce", "e-commerce", "retail", "boutique", "products", "online store"},
		"products and offers", "Shop Now", "Store", false, "product shots"},
	{SaaS, []string{"saas", "software", "platform", "app", "cloud", "api", "startup", "subscription"},
		"product value and features", "Start Free Trial", "SoftwareApplication", false, "product ui"},
	{Education, []string{"school", "academy", "tutoring", "tutor", "courses", "training", "education", "university", "learning"},
		"programs and outcomes", "Enroll Today", "EducationalOrganization", true, "students learning"},
	{Nonprofit, []string{"nonprofit", "non-profit", "charity", "foundation", "volunteer", "donate", "ngo", "community"},
		"mission and impact", "Donate Now", "NGO", false, "community documentary"},
	{Portfolio, []string{"portfolio", "photographer", "photography", "designer", "artist", "illustrator", "freelance", "studio"},
		"body of work", "View My Work", "Person", false, "showcase"},
	{Blog, []string{"blog", "magazine", "journal", "news", "writer", "publication", "podcast"},
		"articles and voice", "Subscribe", "Blog", false, "editorial"},
	{Corporate, []string{"consulting", "corporate", "enterprise", "holdings", "group", "firm", "solutions", "agency"},
		"credibility and scale", "Contact Us", "Corporation", false, "corporate"},
	{ServiceBusiness, []string{"plumbing", "plumber", "electrician", "cleaning", "landscaping", "hvac", "roofing", "repair", "contractor", "salon", "services", "service"},
		"services and reliability", "Get a Free Quote", "LocalBusiness", true, "team at work"},
}

func ruleFor(a Archetype) rule {
	for _, r := range rules {
		if r.archetype == a {
			return r
		}
	}
	return rules[len(rules)-1]
}

// ClassifyByRules is the deterministic fallback classifier.
func ClassifyByRules(cfg *intake.ProjectConfig) *Profile {
	text := searchText(cfg)

	best, bestHits := -1, 0
	for i, r := range rules {
		hits := 0
		for _, kw := range r.keywords {
			if strings.Contains(text, " "+kw+" ") {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}

	var a Archetype
	confidence := 0.4
	switch {
	case best >= 0:
		a = rules[best].archetype
		confidence = min(0.95, 0.5+0.15*float64(bestHits))
	case cfg.HasServices():
		a = ServiceBusiness
	default:
		a = Corporate
	}
	return profileFor(a, confidence, cfg, SourceRules)
}

func profileFor(a Archetype, confidence float64, cfg *intake.ProjectConfig, src Source) *Profile {
	r := ruleFor(a)
	return &Profile{
		Archetype:  a,
		Confidence: confidence,
		ContentStrategy: ContentStrategy{
			Focus:       r.focus,
			Tone:        cfg.Tone,
			KeyMessages: keyMessages(cfg),
			PrimaryCTA:  r.cta,
		},
		SEOStrategy: SEOStrategy{
			PrimaryKeywords: keywords(cfg),
			LocalSEO:        r.localSEO && cfg.Location.City != "",
			SchemaType:      r.schemaType,
		},
		ImageStrategy: ImageStrategy{
			Style:    r.imageStyle,
			Subjects: firstN(cfg.Services, 3),
		},
		Source: src,
	}
}

// searchText lowercases the descriptive fields and pads word boundaries
// with single spaces so phrase lookups can use " kw ".
func searchText(cfg *intake.ProjectConfig) string {
	parts := append([]string{cfg.Industry, cfg.Description, cfg.BusinessName}, cfg.Services...)
	raw := strings.ToLower(strings.Join(parts, " "))
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	return " " + strings.Join(fields, " ") + " "
}

func keyMessages(cfg *intake.ProjectConfig) []string {
	msgs := make([]string, 0, 3)
	if cfg.Tagline != "" {
		msgs = append(msgs, cfg.Tagline)
	}
	if loc := cfg.Location.Display(); loc != "" {
		msgs = append(msgs, "Serving "+loc)
	}
	if cfg.HasServices() {
		msgs = append(msgs, "Specialists in "+strings.Join(firstN(cfg.Services, 3), ", "))
	}
	return msgs
}

func keywords(cfg *intake.ProjectConfig) []string {
	kws := make([]string, 0, 5)
	base := cfg.Industry
	if base == "" {
		base = strings.ToLower(cfg.BusinessName)
	}
	kws = append(kws, base)
	if cfg.Location.City != "" {
		kws = append(kws, base+" "+strings.ToLower(cfg.Location.City))
	}
	for _, s := range firstN(cfg.Services, 3) {
		kws = append(kws, strings.ToLower(s))
	}
	return kws
}

func firstN(in []string, n int) []string {
	if len(in) <= n {
		return append([]string(nil), in...)
	}
	return append([]string(nil), in[:n]...)
}
