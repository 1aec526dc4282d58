package pipeline

// Engines are the generation engines a run composes.
var Engines = []string{
	"archetype-classifier",
	"page-planner",
	"design-tokens",
	"layout-selector",
	"image-synthesizer",
	"copy-synthesizer",
	"seo-synthesizer",
	"site-assembler",
	"quality-gate",
}

// Features are the capabilities every build offers.
var Features = []string{
	"progress-streaming",
	"archetype-classification",
	"responsive-layouts",
	"seo-metadata",
	"structured-data",
	"quality-gate",
	"navigation-integrity",
	"iterative-refinement",
	"generation-history",
}

// Status is the static capability descriptor.
type Status struct {
	Version   string   `json:"version"`
	Engines   int      `json:"engines"`
	Phases    int      `json:"phases"`
	Mode      string   `json:"mode"`
	Features  []string `json:"features"`
	Providers []string `json:"deployProviders,omitempty"`
}

// Describe builds the descriptor for a running service.
func (o *Orchestrator) Describe(version string, providers []string) Status {
	features := append([]string(nil), Features...)
	if len(providers) > 0 {
		features = append(features, "deployment")
	}
	return Status{
		Version:   version,
		Engines:   len(Engines),
		Phases:    TotalPhases,
		Mode:      string(o.opts.Generator.Mode()),
		Features:  features,
		Providers: providers,
	}
}
