package qa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/sitesmith/internal/logging"
)

// DefaultNavigationTimeout bounds every page open.
const DefaultNavigationTimeout = 30 * time.Second

// Options configures a Gate.
type Options struct {
	NavigationTimeout time.Duration
	Logger            *logging.Logger
}

// Gate runs the quality assessment.
type Gate struct {
	launcher Launcher
	metrics  MetricsProvider
	timeout  time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

// NewGate creates a gate. A nil launcher reads pages from disk and a nil
// metrics provider measures the output tree.
func NewGate(launcher Launcher, metrics MetricsProvider, opts Options) *Gate {
	if launcher == nil {
		launcher = StaticLauncher{}
	}
	if metrics == nil {
		metrics = FileMetrics{}
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Gate{
		launcher: launcher,
		metrics:  metrics,
		timeout:  opts.NavigationTimeout,
		logger:   opts.Logger,
		now:      time.Now,
	}
}

// Assess loads the output and builds a fresh report for in.Iteration.
func (g *Gate) Assess(ctx context.Context, in Input) (*Report, error) {
	if in.Dir == "" {
		return nil, errors.New("qa: output dir is required")
	}
	if len(in.Pages) == 0 {
		return nil, errors.New("qa: no pages to assess")
	}

	snap, err := g.snapshot(ctx, in)
	if err != nil {
		return nil, err
	}

	var (
		perf, a11y, seo, visual assessment
		nav                     Navigation
	)
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		sample, err := g.metrics.Sample(ectx, snap)
		if err != nil {
			return fmt.Errorf("sampling metrics: %w", err)
		}
		perf = assessPerformance(sample)
		return nil
	})
	eg.Go(func() error { a11y = assessAccessibility(snap); return nil })
	eg.Go(func() error { seo = assessSEO(snap); return nil })
	eg.Go(func() error { visual = assessVisual(snap); return nil })
	eg.Go(func() error { nav = assessNavigation(snap); return nil })
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	navCat := newCategory(CategoryNavigation, float64(nav.Score), WeightNavigation, ThresholdNavigation, nil)
	for _, b := range nav.Broken {
		navCat.Findings = append(navCat.Findings, fmt.Sprintf("%s: %q -> %s", b.Page, b.Text, b.Href))
	}

	cats := []Category{perf.category, a11y.category, seo.category, visual.category, navCat}
	composite := Composite(cats)
	report := &Report{
		Composite:       composite,
		Verdict:         VerdictFor(composite),
		Categories:      cats,
		Navigation:      nav,
		Iteration:       in.Iteration,
		MeetsThresholds: MeetsThresholds(cats, composite, nav.Status),
		AssessedAt:      g.now(),
	}
	report.Issues = buildIssues(cats, []assessment{perf, a11y, seo, visual}, nav)
	report.Recommendations = Recommend(report.Issues)

	g.logger.Info(ctx, "quality assessed",
		zap.Int("iteration", in.Iteration),
		zap.Float64("composite", composite),
		zap.String("verdict", string(report.Verdict)),
		zap.String("navigation", string(nav.Status)),
		zap.Bool("meets_thresholds", report.MeetsThresholds))
	return report, nil
}

func buildIssues(cats []Category, assessed []assessment, nav Navigation) []Issue {
	var issues []Issue
	navPassed := true
	for i, c := range cats {
		if c.Name == CategoryNavigation {
			navPassed = c.Passed
			continue
		}
		if c.Passed {
			continue
		}
		sev := SeverityMedium
		if c.Score < c.Threshold-2 {
			sev = SeverityHigh
		}
		issues = append(issues, Issue{
			Category: c.Name,
			Severity: sev,
			Message:  fmt.Sprintf("%s score %.1f below %.1f", c.Name, c.Score, c.Threshold),
			Pages:    assessed[i].pages,
		})
	}

	for _, id := range nav.MissingPages {
		issues = append(issues, Issue{
			Category: CategoryNavigation,
			Severity: SeverityCritical,
			Message:  "page file missing",
			Page:     id,
		})
	}
	// Summary only below threshold; broken links are always listed.
	if !navPassed || nav.Status == StatusFail {
		issues = append(issues, Issue{
			Category: CategoryNavigation,
			Severity: SeverityCritical,
			Message: fmt.Sprintf("navigation integrity %d/10 (%s): %d of %d links broken",
				nav.Score, nav.Status, nav.BrokenLinks, nav.TotalLinks),
		})
	}
	for _, b := range nav.Broken {
		issues = append(issues, Issue{
			Category: CategoryNavigation,
			Severity: b.Severity,
			Message:  b.Reason,
			Page:     b.Page,
			Href:     b.Href,
			LinkText: b.Text,
		})
	}
	return issues
}

// Recommend maps issues one to one onto recommendations.
func Recommend(issues []Issue) []Recommendation {
	recs := make([]Recommendation, 0, len(issues))
	for _, is := range issues {
		priority := "medium"
		if is.Severity == SeverityCritical || is.Severity == SeverityHigh {
			priority = "high"
		}
		recs = append(recs, Recommendation{Priority: priority, Category: is.Category, Action: action(is)})
	}
	return recs
}

func action(is Issue) string {
	switch {
	case is.Href != "":
		return fmt.Sprintf("Fix link %q on %s: %s", is.LinkText, is.Page, is.Message)
	case is.Category == CategoryNavigation && is.Page != "":
		return "Regenerate missing page " + is.Page
	case is.Category == CategoryNavigation:
		return "Repair the navigation graph so every internal link resolves"
	case is.Category == CategoryPerformance:
		return "Reduce page and image weight"
	case is.Category == CategoryAccessibility:
		return "Fix accessibility findings: alt text, labels and landmarks"
	case is.Category == CategorySEO:
		return "Regenerate titles and meta descriptions within length limits"
	default:
		return "Review " + is.Category + " findings"
	}
}
