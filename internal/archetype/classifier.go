package archetype

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sitesmith/internal/generation"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
)

const classifyPrompt = `Classify the website for this business into exactly one archetype from:
service-business, e-commerce, portfolio, saas, blog, restaurant, healthcare, legal, real-estate, education, nonprofit, corporate.

Business: {{name}}
Industry: {{industry}}
Description: {{description}}
Services: {{services}}

Return {"archetype": string, "confidence": number between 0 and 1,
"contentStrategy": {"focus": string, "keyMessages": [string], "primaryCta": string},
"seoStrategy": {"primaryKeywords": [string]},
"imageStrategy": {"style": string, "subjects": [string]}}`

// Classifier maps a project to an archetype profile.
type Classifier struct {
	gen    generation.Generator
	logger *logging.Logger
}

// NewClassifier creates a classifier. A nil generator uses rules only.
func NewClassifier(gen generation.Generator, logger *logging.Logger) *Classifier {
	if gen == nil {
		gen = generation.Deterministic{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Classifier{gen: gen, logger: logger}
}

type collaboratorReply struct {
	Archetype       string  `json:"archetype"`
	Confidence      float64 `json:"confidence"`
	ContentStrategy struct {
		Focus       string   `json:"focus"`
		KeyMessages []string `json:"keyMessages"`
		PrimaryCTA  string   `json:"primaryCta"`
	} `json:"contentStrategy"`
	SEOStrategy struct {
		PrimaryKeywords []string `json:"primaryKeywords"`
	} `json:"seoStrategy"`
	ImageStrategy struct {
		Style    string   `json:"style"`
		Subjects []string `json:"subjects"`
	} `json:"imageStrategy"`
}

// Classify returns the profile for cfg. Collaborator failures fall back to
// the rule table; only a cancelled context is returned as an error.
func (c *Classifier) Classify(ctx context.Context, cfg *intake.ProjectConfig) (*Profile, error) {
	if cfg == nil {
		return nil, errors.New("classify: nil project config")
	}

	var reply collaboratorReply
	err := c.gen.Text(ctx, generation.Request{
		Fingerprint: cfg.Fingerprint(),
		Task:        generation.TaskArchetype,
		Prompt:      classifyPrompt,
		Vars: map[string]string{
			"name":        cfg.BusinessName,
			"industry":    cfg.Industry,
			"description": cfg.Description,
			"services":    strings.Join(cfg.Services, ", "),
		},
	}, &reply)
	if err == nil {
		if p, ok := fromReply(reply, cfg); ok {
			return p, nil
		}
		err = errors.New("collaborator returned unknown archetype " + reply.Archetype)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if !errors.Is(err, generation.ErrNoCollaborator) {
		c.logger.Warn(ctx, "archetype collaborator failed, using rules", zap.Error(err))
	}
	return ClassifyByRules(cfg), nil
}

func fromReply(r collaboratorReply, cfg *intake.ProjectConfig) (*Profile, bool) {
	a, err := Parse(strings.ToLower(strings.TrimSpace(r.Archetype)))
	if err != nil {
		return nil, false
	}
	confidence := r.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.7
	}

	p := profileFor(a, confidence, cfg, SourceCollaborator)
	if r.ContentStrategy.Focus != "" {
		p.ContentStrategy.Focus = r.ContentStrategy.Focus
	}
	if len(r.ContentStrategy.KeyMessages) > 0 {
		p.ContentStrategy.KeyMessages = r.ContentStrategy.KeyMessages
	}
	if r.ContentStrategy.PrimaryCTA != "" {
		p.ContentStrategy.PrimaryCTA = r.ContentStrategy.PrimaryCTA
	}
	if len(r.SEOStrategy.PrimaryKeywords) > 0 {
		p.SEOStrategy.PrimaryKeywords = r.SEOStrategy.PrimaryKeywords
	}
	if r.ImageStrategy.Style != "" {
		p.ImageStrategy.Style = r.ImageStrategy.Style
	}
	if len(r.ImageStrategy.Subjects) > 0 {
		p.ImageStrategy.Subjects = r.ImageStrategy.Subjects
	}
	return p, true
}
