// Package design generates the design token set for a project: typography,
// color scales with WCAG contrast metadata, spacing, shadows, component
// styles and theme tokens.
package design

// ShadeKeys are the keys of every color scale, lightest first.
var ShadeKeys = []int{50, 100, 200, 300, 400, 500, 600, 700, 800, 900, 950}

// Tokens is the complete, immutable token set.
type Tokens struct {
	Typography Typography                `json:"typography"`
	Colors     Colors                    `json:"colors"`
	Spacing    map[string]string         `json:"spacing"`
	Shadows    map[string]string         `json:"shadows"`
	Components map[string]ComponentStyle `json:"components"`
	Theme      Theme                     `json:"theme"`
}

// Typography holds font families and the modular type scale.
type Typography struct {
	HeadingFont string            `json:"headingFont"`
	BodyFont    string            `json:"bodyFont"`
	BaseSize    float64           `json:"baseSize"`
	Ratio       float64           `json:"ratio"`
	Sizes       map[string]string `json:"sizes"`
	Weights     map[string]int    `json:"weights"`
	LineHeights map[string]string `json:"lineHeights"`
}

// Scale maps a shade key (50..950) to a #rrggbb color.
type Scale map[int]string

// Colors holds the palette scales, the semantic subset and contrast checks.
type Colors struct {
	Primary   Scale           `json:"primary"`
	Secondary Scale           `json:"secondary"`
	Accent    Scale           `json:"accent"`
	Neutral   Scale           `json:"neutral"`
	Semantic  Semantic        `json:"semantic"`
	Contrast  []ContrastCheck `json:"contrast"`
}

// Semantic is the role-named subset used directly by components.
type Semantic struct {
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	TextMuted  string `json:"textMuted"`
	Primary    string `json:"primary"`
	OnPrimary  string `json:"onPrimary"`
	Accent     string `json:"accent"`
	Border     string `json:"border"`
	Success    string `json:"success"`
	Warning    string `json:"warning"`
	Error      string `json:"error"`
}

// ContrastCheck is the WCAG 2.x contrast of one foreground/background pair.
type ContrastCheck struct {
	Name       string  `json:"name"`
	Foreground string  `json:"foreground"`
	Background string  `json:"background"`
	Ratio      float64 `json:"ratio"`
	AA         bool    `json:"aa"`
	AAA        bool    `json:"aaa"`
}

// ComponentStyle is the token bundle for one UI component.
type ComponentStyle struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Border     string `json:"border"`
	Radius     string `json:"radius"`
	Padding    string `json:"padding"`
	Shadow     string `json:"shadow"`
}

// Theme holds radius, transition and z-index tokens.
type Theme struct {
	Radius      map[string]string `json:"radius"`
	Transitions map[string]string `json:"transitions"`
	ZIndex      map[string]int    `json:"zIndex"`
}
