// Package intake loads and normalizes business intake forms into the
// canonical ProjectConfig consumed by every pipeline stage.
package intake

// IntakeForm is the raw, caller-supplied intake payload. Field names are
// shared by the JSON, YAML and TOML encodings.
type IntakeForm struct {
	BusinessName  string       `json:"businessName" yaml:"businessName" toml:"businessName"`
	Tagline       string       `json:"tagline,omitempty" yaml:"tagline" toml:"tagline"`
	Industry      string       `json:"industry,omitempty" yaml:"industry" toml:"industry"`
	Description   string       `json:"description,omitempty" yaml:"description" toml:"description"`
	Services      []string     `json:"services,omitempty" yaml:"services" toml:"services"`
	Location      LocationForm `json:"location,omitempty" yaml:"location" toml:"location"`
	Email         string       `json:"email,omitempty" yaml:"email" toml:"email"`
	Phone         string       `json:"phone,omitempty" yaml:"phone" toml:"phone"`
	Tone          string       `json:"tone,omitempty" yaml:"tone" toml:"tone"`
	Brand         BrandForm    `json:"brand,omitempty" yaml:"brand" toml:"brand"`
	Audiences     []string     `json:"targetAudiences,omitempty" yaml:"targetAudiences" toml:"targetAudiences"`
	Goals         []string     `json:"goals,omitempty" yaml:"goals" toml:"goals"`
	CompetitorURL string       `json:"competitorUrl,omitempty" yaml:"competitorUrl" toml:"competitorUrl"`
}

// LocationForm is the raw location block.
type LocationForm struct {
	Address string `json:"address,omitempty" yaml:"address" toml:"address"`
	City    string `json:"city,omitempty" yaml:"city" toml:"city"`
	Region  string `json:"region,omitempty" yaml:"region" toml:"region"`
	Country string `json:"country,omitempty" yaml:"country" toml:"country"`
}

// BrandForm is the raw brand-preference block.
type BrandForm struct {
	PrimaryColor   string `json:"primaryColor,omitempty" yaml:"primaryColor" toml:"primaryColor"`
	SecondaryColor string `json:"secondaryColor,omitempty" yaml:"secondaryColor" toml:"secondaryColor"`
	AccentColor    string `json:"accentColor,omitempty" yaml:"accentColor" toml:"accentColor"`
	Style          string `json:"style,omitempty" yaml:"style" toml:"style"`
	HeadingFont    string `json:"headingFont,omitempty" yaml:"headingFont" toml:"headingFont"`
	BodyFont       string `json:"bodyFont,omitempty" yaml:"bodyFont" toml:"bodyFont"`
}
