package design

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fyrsmithlabs/sitesmith/internal/archetype"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
)

var defaultPrimary = map[archetype.Archetype]string{
	archetype.ServiceBusiness: "#2563eb",
	archetype.ECommerce:       "#db2777",
	archetype.Portfolio:       "#111827",
	archetype.SaaS:            "#4f46e5",
	archetype.Blog:            "#0f766e",
	archetype.Restaurant:      "#b45309",
	archetype.Healthcare:      "#0891b2",
	archetype.Legal:           "#1e3a8a",
	archetype.RealEstate:      "#15803d",
	archetype.Education:       "#7c3aed",
	archetype.Nonprofit:       "#ea580c",
	archetype.Corporate:       "#1f2937",
}

type fontPair struct{ heading, body string }

var stylePairs = map[string]fontPair{
	"modern":  {"Inter", "Inter"},
	"classic": {"Playfair Display", "Source Serif Pro"},
	"minimal": {"Helvetica Neue", "Helvetica Neue"},
	"playful": {"Poppins", "Nunito"},
	"bold":    {"Montserrat", "Open Sans"},
}

var styleRadius = map[string]float64{
	"modern":  8,
	"classic": 2,
	"minimal": 4,
	"playful": 16,
	"bold":    6,
}

// Generate builds the token set. Brand colors from the config win over the
// archetype defaults; missing secondary and accent colors are derived from
// the primary hue.
func Generate(cfg *intake.ProjectConfig, profile *archetype.Profile) (*Tokens, error) {
	if cfg == nil || profile == nil {
		return nil, errors.New("design: config and profile are required")
	}

	primary, err := pickColor(cfg.Brand.PrimaryColor, defaultPrimary[profile.Archetype], "#2563eb")
	if err != nil {
		return nil, fmt.Errorf("design: primary color: %w", err)
	}
	secondary := rotateHue(primary, 35)
	if cfg.Brand.SecondaryColor != "" {
		if c, err := colorful.Hex(cfg.Brand.SecondaryColor); err == nil {
			secondary = c
		}
	}
	accent := rotateHue(primary, 160)
	if cfg.Brand.AccentColor != "" {
		if c, err := colorful.Hex(cfg.Brand.AccentColor); err == nil {
			accent = c
		}
	}

	colors := Colors{
		Primary:   BuildScale(primary),
		Secondary: BuildScale(secondary),
		Accent:    BuildScale(accent),
		Neutral:   BuildScale(desaturate(primary, 0.08)),
	}
	colors.Semantic = Semantic{
		Background: "#ffffff",
		Surface:    colors.Neutral[50],
		Text:       colors.Neutral[900],
		TextMuted:  colors.Neutral[600],
		Primary:    colors.Primary[600],
		OnPrimary:  readableOn(colors.Primary[600]),
		Accent:     colors.Accent[500],
		Border:     colors.Neutral[200],
		Success:    "#15803d",
		Warning:    "#b45309",
		Error:      "#b91c1c",
	}
	colors.Contrast = []ContrastCheck{
		contrastCheck("text-on-background", colors.Semantic.Text, colors.Semantic.Background),
		contrastCheck("muted-on-background", colors.Semantic.TextMuted, colors.Semantic.Background),
		contrastCheck("text-on-surface", colors.Semantic.Text, colors.Semantic.Surface),
		contrastCheck("on-primary", colors.Semantic.OnPrimary, colors.Semantic.Primary),
	}

	style := cfg.Brand.Style
	if _, ok := stylePairs[style]; !ok {
		style = "modern"
	}

	return &Tokens{
		Typography: typography(cfg, style),
		Colors:     colors,
		Spacing:    spacing(),
		Shadows:    shadows(colors.Neutral[900]),
		Components: components(colors, styleRadius[style]),
		Theme:      theme(styleRadius[style]),
	}, nil
}

func pickColor(candidates ...string) (colorful.Color, error) {
	var lastErr error
	for _, c := range candidates {
		if c == "" {
			continue
		}
		col, err := colorful.Hex(c)
		if err == nil {
			return col, nil
		}
		lastErr = err
	}
	return colorful.Color{}, lastErr
}

func typography(cfg *intake.ProjectConfig, style string) Typography {
	pair := stylePairs[style]
	if cfg.Brand.HeadingFont != "" {
		pair.heading = cfg.Brand.HeadingFont
	}
	if cfg.Brand.BodyFont != "" {
		pair.body = cfg.Brand.BodyFont
	}

	const base, ratio = 16.0, 1.25
	steps := []struct {
		name string
		exp  int
	}{
		{"xs", -2}, {"sm", -1}, {"base", 0}, {"lg", 1}, {"xl", 2},
		{"2xl", 3}, {"3xl", 4}, {"4xl", 5}, {"5xl", 6},
	}
	sizes := make(map[string]string, len(steps))
	for _, s := range steps {
		px := base * math.Pow(ratio, float64(s.exp))
		sizes[s.name] = fmt.Sprintf("%.3frem", px/16)
	}

	return Typography{
		HeadingFont: pair.heading,
		BodyFont:    pair.body,
		BaseSize:    base,
		Ratio:       ratio,
		Sizes:       sizes,
		Weights:     map[string]int{"regular": 400, "medium": 500, "semibold": 600, "bold": 700},
		LineHeights: map[string]string{"tight": "1.2", "normal": "1.5", "relaxed": "1.75"},
	}
}

func spacing() map[string]string {
	out := map[string]string{"0": "0"}
	for _, n := range []int{1, 2, 3, 4, 6, 8, 12, 16, 24} {
		out[fmt.Sprint(n)] = fmt.Sprintf("%grem", float64(n)*0.25)
	}
	return out
}

func shadows(ink string) map[string]string {
	c, err := colorful.Hex(ink)
	if err != nil {
		c = colorful.Color{}
	}
	r, g, b := c.RGB255()
	rgba := func(a float64) string { return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", r, g, b, a) }
	return map[string]string{
		"sm": "0 1px 2px " + rgba(0.06),
		"md": "0 4px 6px -1px " + rgba(0.10),
		"lg": "0 10px 15px -3px " + rgba(0.12),
		"xl": "0 20px 25px -5px " + rgba(0.14),
	}
}

func components(c Colors, radius float64) map[string]ComponentStyle {
	r := fmt.Sprintf("%gpx", radius)
	return map[string]ComponentStyle{
		"button": {
			Background: c.Semantic.Primary,
			Foreground: c.Semantic.OnPrimary,
			Border:     c.Semantic.Primary,
			Radius:     r,
			Padding:    "0.75rem 1.5rem",
			Shadow:     "sm",
		},
		"card": {
			Background: c.Semantic.Background,
			Foreground: c.Semantic.Text,
			Border:     c.Semantic.Border,
			Radius:     fmt.Sprintf("%gpx", radius*1.5),
			Padding:    "1.5rem",
			Shadow:     "md",
		},
		"input": {
			Background: c.Semantic.Background,
			Foreground: c.Semantic.Text,
			Border:     c.Neutral[300],
			Radius:     r,
			Padding:    "0.625rem 0.875rem",
		},
		"nav": {
			Background: c.Semantic.Background,
			Foreground: c.Semantic.Text,
			Border:     c.Semantic.Border,
			Padding:    "1rem 1.5rem",
			Shadow:     "sm",
		},
	}
}

func theme(radius float64) Theme {
	return Theme{
		Radius: map[string]string{
			"sm":   fmt.Sprintf("%gpx", radius/2),
			"md":   fmt.Sprintf("%gpx", radius),
			"lg":   fmt.Sprintf("%gpx", radius*2),
			"full": "9999px",
		},
		Transitions: map[string]string{
			"fast": "150ms ease-in-out",
			"base": "250ms ease-in-out",
			"slow": "400ms ease-in-out",
		},
		ZIndex: map[string]int{"base": 0, "dropdown": 1000, "sticky": 1100, "overlay": 1300, "modal": 1400},
	}
}
