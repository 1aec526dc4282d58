package qa

import (
	"math"
	"time"
)

// Category names.
const (
	CategoryPerformance   = "performance"
	CategoryAccessibility = "accessibility"
	CategorySEO           = "seo"
	CategoryVisual        = "visual"
	CategoryNavigation    = "navigation"
)

// Category weights. They sum to 1.0.
const (
	WeightPerformance   = 0.15
	WeightAccessibility = 0.15
	WeightSEO           = 0.15
	WeightVisual        = 0.25
	WeightNavigation    = 0.30
)

// Per-category pass thresholds on the 0-10 scale.
const (
	ThresholdPerformance   = 7.0
	ThresholdAccessibility = 8.0
	ThresholdSEO           = 8.0
	ThresholdVisual        = 7.0
	ThresholdNavigation    = 8.0
)

// MinComposite is the composite score a report needs to meet thresholds.
const MinComposite = 8.0

// Severity ranks an issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Status is the navigation-integrity tri-state.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

// Verdict is the human label for a composite score.
type Verdict string

const (
	VerdictPoor       Verdict = "Poor"
	VerdictOK         Verdict = "OK"
	VerdictGood       Verdict = "Good"
	VerdictExcellent  Verdict = "Excellent"
	VerdictWorldClass Verdict = "World-Class"
)

// VerdictFor maps a composite score to its verdict.
func VerdictFor(composite float64) Verdict {
	switch {
	case composite >= 9.5:
		return VerdictWorldClass
	case composite >= 8.5:
		return VerdictExcellent
	case composite >= 7.5:
		return VerdictGood
	case composite >= 6.0:
		return VerdictOK
	default:
		return VerdictPoor
	}
}

// Category is one weighted assessment result.
type Category struct {
	Name      string   `json:"name"`
	Score     float64  `json:"score"`
	Weight    float64  `json:"weight"`
	Threshold float64  `json:"threshold"`
	Passed    bool     `json:"passed"`
	Findings  []string `json:"findings,omitempty"`
}

// Issue is one problem found in the output. Pages lists every page the
// issue applies to; Page, Href and LinkText are set for broken links.
type Issue struct {
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Page     string   `json:"page,omitempty"`
	Pages    []string `json:"pages,omitempty"`
	Href     string   `json:"href,omitempty"`
	LinkText string   `json:"linkText,omitempty"`
}

// Recommendation is a follow-up derived from an issue.
type Recommendation struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// BrokenLink is an internal navigation link whose target is missing.
type BrokenLink struct {
	Page     string   `json:"page"`
	Text     string   `json:"text"`
	Href     string   `json:"href"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// Navigation holds the navigation-integrity metrics.
type Navigation struct {
	Score        int          `json:"score"`
	Status       Status       `json:"status"`
	TotalLinks   int          `json:"totalLinks"`
	WorkingLinks int          `json:"workingLinks"`
	BrokenLinks  int          `json:"brokenLinks"`
	MissingPages []string     `json:"missingPages,omitempty"`
	Broken       []BrokenLink `json:"broken,omitempty"`
}

// Report is the result of one assessment. A new report is built on every
// iteration.
type Report struct {
	Composite       float64          `json:"overallScore"`
	Verdict         Verdict          `json:"verdict"`
	Categories      []Category       `json:"categories"`
	Navigation      Navigation       `json:"navigation"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	Iteration       int              `json:"iteration"`
	MeetsThresholds bool             `json:"meetsThresholds"`
	AssessedAt      time.Time        `json:"assessedAt"`
}

// Category returns the named category, or nil.
func (r *Report) Category(name string) *Category {
	for i := range r.Categories {
		if r.Categories[i].Name == name {
			return &r.Categories[i]
		}
	}
	return nil
}

// FailingPages returns the ids of pages referenced by any issue, in first
// mention order.
func (r *Report) FailingPages() []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, is := range r.Issues {
		add(is.Page)
		for _, p := range is.Pages {
			add(p)
		}
	}
	return out
}

// Composite is the weighted mean of the category scores, clamped to [0,10]
// and rounded to two decimals.
func Composite(cats []Category) float64 {
	var sum, weights float64
	for _, c := range cats {
		sum += c.Score * c.Weight
		weights += c.Weight
	}
	if weights == 0 {
		return 0
	}
	v := math.Max(0, math.Min(10, sum/weights))
	return math.Round(v*100) / 100
}

// MeetsThresholds reports whether every category passed, the composite is
// at least MinComposite and navigation status is exactly StatusPass.
func MeetsThresholds(cats []Category, composite float64, nav Status) bool {
	if nav != StatusPass || composite < MinComposite {
		return false
	}
	for _, c := range cats {
		if !c.Passed {
			return false
		}
	}
	return true
}

func newCategory(name string, score, weight, threshold float64, findings []string) Category {
	score = math.Max(0, math.Min(10, score))
	return Category{
		Name:      name,
		Score:     math.Round(score*100) / 100,
		Weight:    weight,
		Threshold: threshold,
		Passed:    score >= threshold,
		Findings:  findings,
	}
}
