package pipeline

// TotalPhases is the number of numbered phases reported on the progress
// stream.
const TotalPhases = 30

// Phase numbers of the phases that perform work.
const (
	PhaseConfig     = 1
	PhaseClassify   = 2
	PhasePlan       = 3
	PhaseTokens     = 5
	PhaseLayouts    = 9
	PhaseImages     = 12
	PhaseCopy       = 14
	PhaseSEO        = 16
	PhaseCompose    = 19
	PhaseAssemble   = 20
	PhaseAssess     = 24
	PhaseRefine     = 25
	PhaseNavigation = 26
	PhaseReport     = 27
	PhaseDeploy     = 28
	PhaseHistory    = 29
	PhaseComplete   = 30
)

// Phase is one numbered step. A phase with a non-zero CoveredBy does no
// work of its own; its output is produced by that earlier phase.
type Phase struct {
	Number    int    `json:"number"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	CoveredBy int    `json:"coveredBy,omitempty"`
}

// Phases is the fixed phase table, indexed by Number-1.
var Phases = [TotalPhases]Phase{
	{1, "config-normalization", "Config Normalization", 0},
	{2, "archetype-classification", "Archetype Classification", 0},
	{3, "page-planning", "Page Planning", 0},
	{4, "internal-linking", "Internal Linking", PhasePlan},
	{5, "design-tokens", "Design Tokens", 0},
	{6, "color-palette", "Color Palette", PhaseTokens},
	{7, "typography", "Typography", PhaseTokens},
	{8, "spacing-components", "Spacing and Components", PhaseTokens},
	{9, "blueprint-selection", "Blueprint Selection", 0},
	{10, "layout-variants", "Layout Variants", PhaseLayouts},
	{11, "responsive-rules", "Responsive Rules", PhaseLayouts},
	{12, "image-generation", "Image Generation", 0},
	{13, "image-placement", "Image Placement", PhaseImages},
	{14, "copywriting", "Copywriting", 0},
	{15, "calls-to-action", "Calls to Action", PhaseCopy},
	{16, "seo-metadata", "SEO Metadata", 0},
	{17, "structured-data", "Structured Data", PhaseSEO},
	{18, "social-metadata", "Social Metadata", PhaseSEO},
	{19, "content-composition", "Content Composition", 0},
	{20, "site-assembly", "Site Assembly", 0},
	{21, "stylesheet", "Stylesheet", PhaseAssemble},
	{22, "scripts-assets", "Scripts and Assets", PhaseAssemble},
	{23, "sitemap-robots", "Sitemap and Robots", PhaseAssemble},
	{24, "quality-assessment", "Quality Assessment", 0},
	{25, "iterative-refinement", "Iterative Refinement", 0},
	{26, "navigation-integrity", "Navigation Integrity", 0},
	{27, "final-report", "Final Report", 0},
	{28, "deployment", "Deployment", 0},
	{29, "generation-history", "Generation History", 0},
	{30, "complete", "Complete", 0},
}

// PhaseName returns the name of phase n, or "" when n is out of range.
func PhaseName(n int) string {
	if n < 1 || n > TotalPhases {
		return ""
	}
	return Phases[n-1].Name
}

// percent maps a position inside phase n (frac in [0,1]) onto 0..100.
func percent(n int, frac float64) int {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	p := int((float64(n-1) + frac) * 100 / TotalPhases)
	if p > 100 {
		return 100
	}
	return p
}
