package design

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// shadeLightness is the target CIE L (0..1) per shade key.
var shadeLightness = map[int]float64{
	50: 0.97, 100: 0.94, 200: 0.87, 300: 0.77, 400: 0.65, 500: 0.54,
	600: 0.46, 700: 0.38, 800: 0.30, 900: 0.23, 950: 0.15,
}

// BuildScale derives an eleven-shade scale from base, keeping its hue and
// tapering chroma toward the light and dark ends.
func BuildScale(base colorful.Color) Scale {
	h, c, _ := base.Hcl()
	scale := make(Scale, len(ShadeKeys))
	for _, key := range ShadeKeys {
		l := shadeLightness[key]
		taper := 1 - math.Abs(l-0.5)*1.8
		scale[key] = colorful.Hcl(h, c*math.Max(taper, 0.08), l).Clamped().Hex()
	}
	return scale
}

// rotateHue returns base with its HCL hue shifted by deg.
func rotateHue(base colorful.Color, deg float64) colorful.Color {
	h, c, l := base.Hcl()
	return colorful.Hcl(math.Mod(h+deg+360, 360), c, l).Clamped()
}

// desaturate returns base with chroma scaled by f.
func desaturate(base colorful.Color, f float64) colorful.Color {
	h, c, l := base.Hcl()
	return colorful.Hcl(h, c*f, l).Clamped()
}

// RelativeLuminance is the WCAG relative luminance of a #rrggbb color.
func RelativeLuminance(hex string) (float64, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, err
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b, nil
}

// ContrastRatio is the WCAG contrast ratio between two colors, 1..21.
func ContrastRatio(a, b string) (float64, error) {
	la, err := RelativeLuminance(a)
	if err != nil {
		return 0, err
	}
	lb, err := RelativeLuminance(b)
	if err != nil {
		return 0, err
	}
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05), nil
}

func contrastCheck(name, fg, bg string) ContrastCheck {
	ratio, err := ContrastRatio(fg, bg)
	if err != nil {
		return ContrastCheck{Name: name, Foreground: fg, Background: bg}
	}
	ratio = math.Round(ratio*100) / 100
	return ContrastCheck{
		Name:       name,
		Foreground: fg,
		Background: bg,
		Ratio:      ratio,
		AA:         ratio >= 4.5,
		AAA:        ratio >= 7,
	}
}

// readableOn picks white or near-black, whichever contrasts more with bg.
func readableOn(bg string) string {
	const light, dark = "#ffffff", "#111827"
	l, _ := ContrastRatio(light, bg)
	d, _ := ContrastRatio(dark, bg)
	if l >= d {
		return light
	}
	return dark
}
