package archetype

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/sitesmith/internal/generation"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
)

func project(t *testing.T, form intake.IntakeForm) *intake.ProjectConfig {
	t.Helper()
	if form.Email == "" {
		form.Email = "hello@example.com"
	}
	cfg, err := intake.Normalize(form)
	require.NoError(t, err)
	return cfg
}

func TestParse(t *testing.T) {
	a, err := Parse("real-estate")
	require.NoError(t, err)
	assert.Equal(t, RealEstate, a)

	_, err = Parse("space-agency")
	assert.Error(t, err)
	assert.Len(t, All, 12)
}

func TestClassifyByRules(t *testing.T) {
	tests := []struct {
		name string
		form intake.IntakeForm
		want Archetype
	}{
		{"legal", intake.IntakeForm{BusinessName: "Hartley Cole", Industry: "Legal Services", Services: []string{"Estate Planning", "Family Law"}}, Legal},
		{"restaurant", intake.IntakeForm{BusinessName: "Bean There", Industry: "coffee shop", Description: "Neighbourhood cafe and bakery"}, Restaurant},
		{"saas", intake.IntakeForm{BusinessName: "Ledgerly", Description: "Cloud accounting software platform for startups"}, SaaS},
		{"plumber", intake.IntakeForm{BusinessName: "Acme", Industry: "plumbing", Services: []string{"Drain repair"}}, ServiceBusiness},
		{"lawn is not law", intake.IntakeForm{BusinessName: "Green Yard", Industry: "lawn care", Services: []string{"Mowing"}}, ServiceBusiness},
		{"no signal", intake.IntakeForm{BusinessName: "Zeta", Industry: "misc"}, Corporate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ClassifyByRules(project(t, tt.form))
			assert.Equal(t, tt.want, p.Archetype)
			assert.Equal(t, SourceRules, p.Source)
			assert.GreaterOrEqual(t, p.Confidence, 0.4)
			assert.LessOrEqual(t, p.Confidence, 0.95)
		})
	}
}

func TestClassifyByRules_Strategy(t *testing.T) {
	cfg := project(t, intake.IntakeForm{
		BusinessName: "Hartley Cole",
		Industry:     "Legal Services",
		Services:     []string{"Estate Planning", "Family Law"},
		Location:     intake.LocationForm{City: "Denver"},
	})
	p := ClassifyByRules(cfg)
	assert.Equal(t, "LegalService", p.SEOStrategy.SchemaType)
	assert.True(t, p.SEOStrategy.LocalSEO)
	assert.Contains(t, p.SEOStrategy.PrimaryKeywords, "legal services denver")
	assert.Equal(t, "Schedule a Consultation", p.ContentStrategy.PrimaryCTA)
	assert.Equal(t, []string{"Estate Planning", "Family Law"}, p.ImageStrategy.Subjects)
}

func TestClassifier_UsesCollaborator(t *testing.T) {
	stub := &generation.Stub{Replies: map[generation.Task]json.RawMessage{
		generation.TaskArchetype: json.RawMessage(`{"archetype":"Portfolio","confidence":0.88,"imageStrategy":{"style":"moody"}}`),
	}}
	c := NewClassifier(stub, logging.NewNop())

	p, err := c.Classify(context.Background(), project(t, intake.IntakeForm{BusinessName: "Ana", Industry: "legal"}))
	require.NoError(t, err)
	assert.Equal(t, Portfolio, p.Archetype)
	assert.Equal(t, 0.88, p.Confidence)
	assert.Equal(t, "moody", p.ImageStrategy.Style)
	assert.Equal(t, SourceCollaborator, p.Source)
}

func TestClassifier_FallsBack(t *testing.T) {
	cfg := project(t, intake.IntakeForm{BusinessName: "Hartley Cole", Industry: "legal services"})
	tests := []struct {
		name string
		gen  generation.Generator
	}{
		{"deterministic", generation.Deterministic{}},
		{"collaborator error", &generation.Stub{Errors: map[generation.Task]error{generation.TaskArchetype: errors.New("down")}}},
		{"unknown archetype", &generation.Stub{Replies: map[generation.Task]json.RawMessage{generation.TaskArchetype: json.RawMessage(`{"archetype":"spaceport"}`)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := logging.NewTestLogger()
			p, err := NewClassifier(tt.gen, tl.Logger).Classify(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, Legal, p.Archetype)
			assert.Equal(t, SourceRules, p.Source)
		})
	}
}

func TestClassifier_Errors(t *testing.T) {
	c := NewClassifier(nil, nil)
	_, err := c.Classify(context.Background(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Classify(ctx, project(t, intake.IntakeForm{BusinessName: "X", Industry: "legal"}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSet(t *testing.T) {
	s := NewSet(Blog, SaaS)
	assert.True(t, s.Has(Blog))
	assert.False(t, s.Has(Legal))
}
