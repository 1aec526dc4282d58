package design

import (
	"fmt"
	"sort"
	"strings"
)

// CSSVariables renders the tokens as a :root block of custom properties.
// Output is sorted so identical tokens always render identically.
func (t *Tokens) CSSVariables() string {
	vars := map[string]string{
		"font-heading": fmt.Sprintf("%q, system-ui, sans-serif", t.Typography.HeadingFont),
		"font-body":    fmt.Sprintf("%q, system-ui, sans-serif", t.Typography.BodyFont),
	}
	for k, v := range t.Typography.Sizes {
		vars["text-"+k] = v
	}
	for k, v := range t.Typography.LineHeights {
		vars["leading-"+k] = v
	}
	for name, scale := range map[string]Scale{
		"primary":   t.Colors.Primary,
		"secondary": t.Colors.Secondary,
		"accent":    t.Colors.Accent,
		"neutral":   t.Colors.Neutral,
	} {
		for key, hex := range scale {
			vars[fmt.Sprintf("color-%s-%d", name, key)] = hex
		}
	}
	s := t.Colors.Semantic
	for k, v := range map[string]string{
		"background": s.Background, "surface": s.Surface, "text": s.Text,
		"text-muted": s.TextMuted, "primary": s.Primary, "on-primary": s.OnPrimary,
		"accent": s.Accent, "border": s.Border, "success": s.Success,
		"warning": s.Warning, "error": s.Error,
	} {
		vars["color-"+k] = v
	}
	for k, v := range t.Spacing {
		vars["space-"+k] = v
	}
	for k, v := range t.Shadows {
		vars["shadow-"+k] = v
	}
	for k, v := range t.Theme.Radius {
		vars["radius-"+k] = v
	}
	for k, v := range t.Theme.Transitions {
		vars["transition-"+k] = v
	}
	for k, v := range t.Theme.ZIndex {
		vars["z-"+k] = fmt.Sprint(v)
	}

	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  --%s: %s;\n", n, vars[n])
	}
	b.WriteString("}\n")
	return b.String()
}
