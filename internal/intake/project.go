package intake

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// ProjectConfig is the canonical, immutable project description. Slices are
// never mutated after Normalize returns.
type ProjectConfig struct {
	BusinessName  string   `json:"businessName"`
	Slug          string   `json:"slug"`
	Tagline       string   `json:"tagline,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	Description   string   `json:"description,omitempty"`
	Services      []string `json:"services"`
	Location      Location `json:"location"`
	Contact       Contact  `json:"contact"`
	Tone          string   `json:"tone"`
	Brand         Brand    `json:"brand"`
	Audiences     []string `json:"targetAudiences"`
	Goals         []string `json:"goals,omitempty"`
	CompetitorURL string   `json:"competitorUrl,omitempty"`
}

// Location is the normalized business location.
type Location struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

// Display renders "City, Region" or whichever part is present.
func (l Location) Display() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{l.City, l.Region} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Contact holds the public contact channels.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Brand holds normalized brand preferences. Colors are lowercase #rrggbb or
// empty when the form gave nothing usable.
type Brand struct {
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	AccentColor    string `json:"accentColor,omitempty"`
	Style          string `json:"style"`
	HeadingFont    string `json:"headingFont,omitempty"`
	BodyFont       string `json:"bodyFont,omitempty"`
}

// HasServices reports whether at least one service was supplied.
func (p *ProjectConfig) HasServices() bool {
	return len(p.Services) > 0
}

// Fingerprint returns a stable hex sha256 of the canonical config. It keys
// memoized collaborator results so runs for different projects never share
// cache entries.
func (p *ProjectConfig) Fingerprint() string {
	// Marshal of a struct with only strings and string slices cannot fail.
	data, _ := json.Marshal(p)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
