package intake

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrMissingField is returned when a required intake field is absent.
var ErrMissingField = errors.New("missing required intake field")

// ErrInvalidField is returned when a present field cannot be used.
var ErrInvalidField = errors.New("invalid intake field")

const (
	defaultTone  = "professional"
	defaultStyle = "modern"
	maxServices  = 12
)

var knownTones = map[string]bool{
	"professional":  true,
	"friendly":      true,
	"playful":       true,
	"authoritative": true,
	"luxurious":     true,
	"warm":          true,
	"technical":     true,
}

// Normalize converts a raw form into a ProjectConfig. It performs no I/O.
func Normalize(form IntakeForm) (*ProjectConfig, error) {
	name := collapseSpace(form.BusinessName)
	if name == "" {
		return nil, fmt.Errorf("%w: businessName", ErrMissingField)
	}
	industry := collapseSpace(form.Industry)
	description := collapseSpace(form.Description)
	if industry == "" && description == "" {
		return nil, fmt.Errorf("%w: industry or description", ErrMissingField)
	}

	email := strings.TrimSpace(form.Email)
	phone := strings.TrimSpace(form.Phone)
	if email == "" && phone == "" {
		return nil, fmt.Errorf("%w: email or phone", ErrMissingField)
	}
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return nil, fmt.Errorf("%w: email %q", ErrInvalidField, email)
		}
		email = strings.ToLower(addr.Address)
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: businessName %q has no usable characters", ErrInvalidField, name)
	}

	tone := strings.ToLower(strings.TrimSpace(form.Tone))
	if !knownTones[tone] {
		tone = defaultTone
	}

	style := strings.ToLower(strings.TrimSpace(form.Brand.Style))
	if style == "" {
		style = defaultStyle
	}

	audiences := dedupe(form.Audiences, 0)
	if len(audiences) == 0 {
		audiences = defaultAudiences(form.Location)
	}

	return &ProjectConfig{
		BusinessName:  name,
		Slug:          slug,
		Tagline:       collapseSpace(form.Tagline),
		Industry:      strings.ToLower(industry),
		Description:   description,
		Services:      dedupe(form.Services, maxServices),
		Location:      normalizeLocation(form.Location),
		Contact:       Contact{Email: email, Phone: phone},
		Tone:          tone,
		Brand:         normalizeBrand(form.Brand, style),
		Audiences:     audiences,
		Goals:         dedupe(form.Goals, 0),
		CompetitorURL: strings.TrimSpace(form.CompetitorURL),
	}, nil
}

// Slugify lowercases s and joins its alphanumeric runs with single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '&':
			pendingDash = true
			if b.Len() > 0 {
				b.WriteString("-and")
			}
		default:
			pendingDash = true
		}
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedupe trims entries and drops empties and case-insensitive duplicates,
// keeping first-seen order. limit <= 0 means unlimited.
func dedupe(in []string, limit int) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = collapseSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func defaultAudiences(loc LocationForm) []string {
	if city := collapseSpace(loc.City); city != "" {
		return []string{"local customers in " + city}
	}
	return []string{"prospective customers"}
}

func normalizeLocation(l LocationForm) Location {
	return Location{
		Address: collapseSpace(l.Address),
		City:    collapseSpace(l.City),
		Region:  collapseSpace(l.Region),
		Country: collapseSpace(l.Country),
	}
}

func normalizeBrand(b BrandForm, style string) Brand {
	return Brand{
		PrimaryColor:   normalizeColor(b.PrimaryColor),
		SecondaryColor: normalizeColor(b.SecondaryColor),
		AccentColor:    normalizeColor(b.AccentColor),
		Style:          style,
		HeadingFont:    collapseSpace(b.HeadingFont),
		BodyFont:       collapseSpace(b.BodyFont),
	}
}

// normalizeColor returns a lowercase #rrggbb, or "" for unparseable input.
func normalizeColor(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) == 4 {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return ""
	}
	return c.Hex()
}
