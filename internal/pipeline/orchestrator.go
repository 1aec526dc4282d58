package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sitesmith/internal/archetype"
	"github.com/fyrsmithlabs/sitesmith/internal/assembler"
	"github.com/fyrsmithlabs/sitesmith/internal/content"
	"github.com/fyrsmithlabs/sitesmith/internal/deploy"
	"github.com/fyrsmithlabs/sitesmith/internal/design"
	"github.com/fyrsmithlabs/sitesmith/internal/events"
	"github.com/fyrsmithlabs/sitesmith/internal/generation"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/layout"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
	"github.com/fyrsmithlabs/sitesmith/internal/metrics"
	"github.com/fyrsmithlabs/sitesmith/internal/planner"
	"github.com/fyrsmithlabs/sitesmith/internal/qa"
	"github.com/fyrsmithlabs/sitesmith/internal/store"
)

const instrumentationName = "github.com/fyrsmithlabs/sitesmith/internal/pipeline"

const (
	// DefaultMaxIterations caps the quality assessments of one run.
	DefaultMaxIterations = 5
	// DefaultConcurrency bounds per-item fan-out inside a phase.
	DefaultConcurrency = 3
	// DefaultBaseURL is used for canonical URLs when none is configured.
	DefaultBaseURL = "https://example.com"
)

// Classifier resolves the archetype of a project.
type Classifier interface {
	Classify(ctx context.Context, cfg *intake.ProjectConfig) (*archetype.Profile, error)
}

// LayoutSelector chooses a layout for every planned page.
type LayoutSelector interface {
	Select(ctx context.Context, fingerprint string, pages []planner.PlannedPage,
		profile *archetype.Profile, onPage func(pageID string)) (map[string]*layout.GeneratedLayout, error)
}

// ContentSynthesizer produces imagery, copy and SEO metadata.
type ContentSynthesizer interface {
	Images(ctx context.Context, in content.Input, onItem func(sectionID string)) (content.ImageSet, error)
	Copy(ctx context.Context, in content.Input, pageIDs []string, onItem func(pageID string)) (content.CopySet, error)
	SEO(ctx context.Context, in content.Input, pageIDs []string) (content.SEOSet, error)
}

// SiteAssembler writes a site to disk.
type SiteAssembler interface {
	Assemble(ctx context.Context, site assembler.Site) (*assembler.Output, error)
}

// QualityGate assesses an assembled site.
type QualityGate interface {
	Assess(ctx context.Context, in qa.Input) (*qa.Report, error)
}

// Deployer publishes an output directory.
type Deployer interface {
	Deploy(ctx context.Context, dir string, req deploy.Request) (*deploy.Result, error)
}

// Options configures an Orchestrator. Nil stages are built on Generator.
type Options struct {
	Generator  generation.Generator
	Classifier Classifier
	Layouts    LayoutSelector
	Content    ContentSynthesizer
	Assembler  SiteAssembler
	Gate       QualityGate
	// Deployer is required only for runs that request a deployment.
	Deployer Deployer
	// Store records run history when set.
	Store  store.Repository
	Logger *logging.Logger
	Tracer trace.Tracer

	OutputDir     string
	BaseURL       string
	Concurrency   int
	MaxIterations int
}

// Orchestrator runs generations. It holds no per-run state and is safe
// for concurrent use.
type Orchestrator struct {
	opts Options
}

// New creates an orchestrator, filling unset options with defaults.
func New(opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Generator == nil {
		opts.Generator = generation.Deterministic{}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Classifier == nil {
		opts.Classifier = archetype.NewClassifier(opts.Generator, opts.Logger)
	}
	if opts.Layouts == nil {
		opts.Layouts = layout.NewSelector(nil, opts.Generator, opts.Concurrency, opts.Logger)
	}
	if opts.Content == nil {
		opts.Content = content.NewSynthesizer(opts.Generator, opts.Concurrency, opts.Logger)
	}
	if opts.Assembler == nil {
		opts.Assembler = assembler.New(opts.OutputDir, opts.Logger)
	}
	if opts.Gate == nil {
		opts.Gate = qa.NewGate(nil, nil, qa.Options{Logger: opts.Logger})
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(instrumentationName)
	}
	return &Orchestrator{opts: opts}
}

// Request is one generation. ID is generated when empty; Deploy is
// optional.
type Request struct {
	ID     string
	Config *intake.ProjectConfig
	Deploy *deploy.Request
}

// Result is the outcome of a run that did not abort. Success means Errors
// is empty; the QA verdict is carried separately in QAReport.
type Result struct {
	GenerationID string                             `json:"generationId"`
	ProjectSlug  string                             `json:"projectSlug"`
	Profile      *archetype.Profile                 `json:"profile,omitempty"`
	Pages        []planner.PlannedPage              `json:"pages"`
	Tokens       *design.Tokens                     `json:"tokens,omitempty"`
	Layouts      map[string]*layout.GeneratedLayout `json:"layouts,omitempty"`
	Content      *content.Content                   `json:"content,omitempty"`
	Output       *assembler.Output                  `json:"output,omitempty"`
	QAReport     *qa.Report                         `json:"qaReport,omitempty"`
	Deployment   *deploy.Result                     `json:"deployment,omitempty"`
	Iterations   int                                `json:"iterations"`
	Success      bool                               `json:"success"`
	Errors       []string                           `json:"errors,omitempty"`
	Duration     time.Duration                      `json:"duration"`
}

// CompleteEvent is the terminal event for r.
func (r *Result) CompleteEvent() events.Event {
	return events.Event{
		Type:         events.TypeComplete,
		GenerationID: r.GenerationID,
		Complete: &events.Complete{
			Success:     r.Success,
			ProjectSlug: r.ProjectSlug,
			Duration:    r.Duration.Milliseconds(),
			QAReport:    r.QAReport,
			Deployment:  r.Deployment,
			Errors:      r.Errors,
		},
	}
}

// Run executes every phase for req, streaming events to sink (which may be
// nil). The stream starts with a generation-id event and ends with either a
// complete event or, when a phase aborts, an error event; in the latter
// case the returned error is a *PhaseError and the partial result is still
// returned. Cancelling ctx aborts the run at the next suspension point.
func (o *Orchestrator) Run(ctx context.Context, req Request, sink events.Sink) (*Result, error) {
	if req.Config == nil {
		return nil, ErrConfigRequired
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	start := time.Now()

	ctx = logging.WithGeneration(ctx, id)
	ctx = logging.WithProject(ctx, req.Config.Slug)
	ctx, span := o.opts.Tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("generation.id", id),
		attribute.String("project.slug", req.Config.Slug),
	))
	defer span.End()

	r := &run{
		o:   o,
		req: req,
		cfg: req.Config,
		em:  newEmitter(sink, id, o.opts.Logger),
		res: &Result{GenerationID: id, ProjectSlug: req.Config.Slug},
	}
	r.em.emit(ctx, events.GenerationStarted(id))
	o.opts.Logger.Info(ctx, "generation started", zap.String("business", req.Config.BusinessName))
	r.historyStart(ctx, start)

	err := r.execute(ctx)
	r.res.Duration = time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordGeneration(metrics.OutcomeAborted)
		r.historyFinish(ctx, err)
		o.opts.Logger.Error(ctx, "generation aborted", zap.Error(err))
		r.em.emit(ctx, events.Failed(id, err))
		return r.res, err
	}

	outcome := metrics.OutcomeSuccess
	if !r.res.Success {
		outcome = metrics.OutcomeWithErrors
	}
	metrics.RecordGeneration(outcome)
	span.SetAttributes(
		attribute.Bool("success", r.res.Success),
		attribute.Int("qa.iterations", r.res.Iterations),
	)
	o.opts.Logger.Info(ctx, "generation completed",
		zap.Bool("success", r.res.Success),
		zap.Int("errors", len(r.res.Errors)),
		zap.Int("iterations", r.res.Iterations),
		zap.Duration("duration", r.res.Duration))
	r.em.emit(ctx, r.res.CompleteEvent())
	return r.res, nil
}

// run is the state of one generation.
type run struct {
	o   *Orchestrator
	req Request
	cfg *intake.ProjectConfig
	em  *emitter
	res *Result
	rec *store.Record

	in     content.Input
	copies content.CopySet
	images content.ImageSet
	seo    content.SEOSet
}

func (r *run) execute(ctx context.Context) error {
	work := map[int]func(context.Context) error{
		PhaseConfig:     r.normalize,
		PhaseClassify:   r.classify,
		PhasePlan:       r.plan,
		PhaseTokens:     r.tokens,
		PhaseLayouts:    r.layouts,
		PhaseImages:     r.imagery,
		PhaseCopy:       r.copywriting,
		PhaseSEO:        r.metadata,
		PhaseCompose:    r.compose,
		PhaseAssemble:   r.assemble,
		PhaseAssess:     r.assessInitial,
		PhaseRefine:     r.refine,
		PhaseNavigation: r.navigation,
		PhaseReport:     r.report,
		PhaseDeploy:     r.deploy,
		PhaseHistory:    r.history,
		PhaseComplete:   r.complete,
	}
	for _, ph := range Phases {
		if err := ctx.Err(); err != nil {
			return phaseError(ph.Number, err)
		}
		if ph.CoveredBy != 0 {
			r.em.progress(ctx, ph.Number, 1, ph.Key,
				fmt.Sprintf("%s completed during %s", ph.Name, PhaseName(ph.CoveredBy)))
			continue
		}
		if err := r.step(ctx, ph, work[ph.Number]); err != nil {
			return phaseError(ph.Number, err)
		}
	}
	return nil
}

func (r *run) step(ctx context.Context, ph Phase, fn func(context.Context) error) error {
	ctx = logging.WithPhase(ctx, ph.Number)
	ctx, span := r.o.opts.Tracer.Start(ctx, "pipeline."+ph.Key, trace.WithAttributes(
		attribute.Int("phase.number", ph.Number),
		attribute.String("phase.name", ph.Name),
	))
	defer span.End()

	r.historyPhase(ctx, ph)
	start := time.Now()
	err := fn(ctx)
	metrics.ObservePhase(ph.Key, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// fail records a recoverable error.
func (r *run) fail(ctx context.Context, msg string) {
	r.res.Errors = append(r.res.Errors, msg)
	r.o.opts.Logger.Warn(ctx, "generation error recorded", zap.String("error", msg))
}

// tick returns an onItem callback reporting per-item progress in phase n.
func (r *run) tick(ctx context.Context, n, total int, what string) func(string) {
	var done atomic.Int32
	return func(id string) {
		k := int(done.Add(1))
		frac := 1.0
		if total > 0 {
			frac = float64(k) / float64(total)
		}
		r.em.progress(ctx, n, frac, what+":"+id, fmt.Sprintf("%s %s (%d/%d)", what, id, k, total))
	}
}

func (r *run) normalize(ctx context.Context) error {
	r.em.progress(ctx, PhaseConfig, 1, "config",
		fmt.Sprintf("Loaded %s with %d services", r.cfg.BusinessName, len(r.cfg.Services)))
	return nil
}

func (r *run) classify(ctx context.Context) error {
	profile, err := r.o.opts.Classifier.Classify(ctx, r.cfg)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	r.res.Profile = profile
	r.em.progress(ctx, PhaseClassify, 1, "classify",
		fmt.Sprintf("Classified as %s (%s, confidence %.2f)", profile.Archetype, profile.Source, profile.Confidence))
	return nil
}

func (r *run) plan(ctx context.Context) error {
	pages, err := planner.Plan(r.cfg, r.res.Profile)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	r.res.Pages = pages
	r.em.progress(ctx, PhasePlan, 1, "plan", fmt.Sprintf("Planned %d pages", len(pages)))
	return nil
}

func (r *run) tokens(ctx context.Context) error {
	tokens, err := design.Generate(r.cfg, r.res.Profile)
	if err != nil {
		return fmt.Errorf("design tokens: %w", err)
	}
	r.res.Tokens = tokens
	r.em.progress(ctx, PhaseTokens, 1, "tokens",
		fmt.Sprintf("Generated design tokens (primary %s)", tokens.Colors.Primary[500]))
	return nil
}

func (r *run) layouts(ctx context.Context) error {
	onPage := r.tick(ctx, PhaseLayouts, len(r.res.Pages), "layout")
	layouts, err := r.o.opts.Layouts.Select(ctx, r.cfg.Fingerprint(), r.res.Pages, r.res.Profile, onPage)
	if err != nil {
		return fmt.Errorf("select layouts: %w", err)
	}
	r.res.Layouts = layouts
	r.in = content.Input{
		Config:  r.cfg,
		Profile: r.res.Profile,
		Pages:   r.res.Pages,
		Layouts: layouts,
		BaseURL: r.o.opts.BaseURL,
		Attempt: 1,
	}
	r.em.progress(ctx, PhaseLayouts, 1, "layouts", fmt.Sprintf("Selected layouts for %d pages", len(layouts)))
	return nil
}

func (r *run) imagery(ctx context.Context) error {
	onItem := r.tick(ctx, PhaseImages, content.ImageSlots(r.in), "image")
	images, err := r.o.opts.Content.Images(ctx, r.in, onItem)
	if err != nil {
		return fmt.Errorf("images: %w", err)
	}
	r.images = images
	r.em.progress(ctx, PhaseImages, 1, "images", fmt.Sprintf("Prepared images for %d sections", len(images)))
	return nil
}

func (r *run) copywriting(ctx context.Context) error {
	onPage := r.tick(ctx, PhaseCopy, len(r.res.Pages), "copy")
	copies, err := r.o.opts.Content.Copy(ctx, r.in, nil, onPage)
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	r.copies = copies
	r.em.progress(ctx, PhaseCopy, 1, "copy", fmt.Sprintf("Wrote copy for %d pages", len(copies)))
	return nil
}

func (r *run) metadata(ctx context.Context) error {
	seo, err := r.o.opts.Content.SEO(ctx, r.in, nil)
	if err != nil {
		return fmt.Errorf("seo: %w", err)
	}
	r.seo = seo
	r.em.progress(ctx, PhaseSEO, 1, "seo", fmt.Sprintf("Built metadata for %d pages", len(seo)))
	return nil
}

func (r *run) compose(ctx context.Context) error {
	r.res.Content = content.Compose(r.in, r.copies, r.images, r.seo)
	r.em.progress(ctx, PhaseCompose, 1, "compose",
		fmt.Sprintf("Composed %d pages with %d images", len(r.res.Content.Pages), r.res.Content.ImageCount()))
	return nil
}

func (r *run) site() assembler.Site {
	return assembler.Site{
		Config:  r.cfg,
		Profile: r.res.Profile,
		Pages:   r.res.Pages,
		Tokens:  r.res.Tokens,
		Layouts: r.res.Layouts,
		Content: r.res.Content,
		BaseURL: r.o.opts.BaseURL,
	}
}

func (r *run) assemble(ctx context.Context) error {
	out, err := r.o.opts.Assembler.Assemble(ctx, r.site())
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	r.res.Output = out
	r.em.progress(ctx, PhaseAssemble, 1, "assemble", fmt.Sprintf("Wrote %d files to %s", len(out.Files), out.Dir))
	return nil
}

func (r *run) assess(ctx context.Context, iteration int) (*qa.Report, error) {
	report, err := r.o.opts.Gate.Assess(ctx, qa.Input{
		Dir:       r.res.Output.Dir,
		Pages:     r.res.Pages,
		Iteration: iteration,
	})
	if err != nil {
		return nil, err
	}
	r.res.QAReport = report
	metrics.RecordAssessment(report.Composite, report.Navigation.BrokenLinks)
	r.o.opts.Logger.Info(ctx, "site assessed",
		zap.Int("iteration", iteration),
		zap.Float64("composite", report.Composite),
		zap.String("verdict", string(report.Verdict)),
		zap.String("navigation", string(report.Navigation.Status)),
		zap.Bool("meets_thresholds", report.MeetsThresholds))
	return report, nil
}

func (r *run) assessInitial(ctx context.Context) error {
	r.res.Iterations = 1
	report, err := r.assess(ctx, 1)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.fail(ctx, fmt.Sprintf("quality assessment failed: %v", err))
		r.em.progress(ctx, PhaseAssess, 1, "assess", "Quality assessment failed")
		return nil
	}
	r.em.progress(ctx, PhaseAssess, 1, "assess",
		fmt.Sprintf("Composite %.1f (%s)", report.Composite, report.Verdict))
	return nil
}

// refine re-assesses until the thresholds are met or the iteration cap is
// reached. Each iteration regenerates copy and SEO for the pages the last
// report flagged (every page when none is named) and re-assembles first.
func (r *run) refine(ctx context.Context) error {
	report := r.res.QAReport
	if report == nil {
		r.em.progress(ctx, PhaseRefine, 1, "refine", "Skipped: no assessment available")
		return nil
	}
	limit := r.o.opts.MaxIterations
	for !report.MeetsThresholds && r.res.Iterations < limit {
		if err := ctx.Err(); err != nil {
			return err
		}
		it := r.res.Iterations + 1
		pages := report.FailingPages()
		if len(pages) == 0 {
			pages = r.pageIDs()
		}
		r.em.progress(ctx, PhaseRefine, float64(it-2)/float64(limit-1), fmt.Sprintf("iteration %d", it),
			fmt.Sprintf("Iteration %d of %d: composite %.1f, regenerating %d pages", it, limit, report.Composite, len(pages)))

		if err := r.regenerate(ctx, pages, it); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.fail(ctx, fmt.Sprintf("iteration %d: regeneration failed: %v", it, err))
			break
		}
		r.res.Iterations = it
		next, err := r.assess(ctx, it)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.fail(ctx, fmt.Sprintf("iteration %d: quality assessment failed: %v", it, err))
			break
		}
		report = next
	}

	msg := fmt.Sprintf("Thresholds met after %d assessments", r.res.Iterations)
	if !report.MeetsThresholds {
		msg = fmt.Sprintf("Thresholds not met after %d assessments", r.res.Iterations)
	}
	r.em.progress(ctx, PhaseRefine, 1, "refine", msg)
	return nil
}

func (r *run) pageIDs() []string {
	ids := make([]string, len(r.res.Pages))
	for i, p := range r.res.Pages {
		ids[i] = p.ID
	}
	return ids
}

func (r *run) regenerate(ctx context.Context, pageIDs []string, attempt int) error {
	in := r.in
	in.Attempt = attempt
	copies, err := r.o.opts.Content.Copy(ctx, in, pageIDs, nil)
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	seo, err := r.o.opts.Content.SEO(ctx, in, pageIDs)
	if err != nil {
		return fmt.Errorf("seo: %w", err)
	}
	r.res.Content.Merge(copies, seo)

	out, err := r.o.opts.Assembler.Assemble(ctx, r.site())
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	r.res.Output = out
	return nil
}

// navigation escalates a failed integrity check into a critical error.
func (r *run) navigation(ctx context.Context) error {
	report := r.res.QAReport
	if report == nil {
		r.em.progress(ctx, PhaseNavigation, 1, "navigation", "Navigation integrity not assessed")
		return nil
	}
	nav := report.Navigation
	if nav.Status == qa.StatusFail {
		r.fail(ctx, fmt.Sprintf("critical: navigation integrity failed: %d of %d internal links broken, %d pages missing (score %d/10)",
			nav.BrokenLinks, nav.TotalLinks, len(nav.MissingPages), nav.Score))
	}
	r.em.progress(ctx, PhaseNavigation, 1, "navigation",
		fmt.Sprintf("Navigation %s: %d of %d links working", nav.Status, nav.WorkingLinks, nav.TotalLinks))
	return nil
}

func (r *run) report(ctx context.Context) error {
	metrics.RecordIterations(r.res.Iterations)
	report := r.res.QAReport
	if report == nil {
		r.em.progress(ctx, PhaseReport, 1, "report", "No quality report")
		return nil
	}
	r.em.progress(ctx, PhaseReport, 1, "report",
		fmt.Sprintf("%s: composite %.1f, %d issues, %d recommendations",
			report.Verdict, report.Composite, len(report.Issues), len(report.Recommendations)))
	return nil
}

func (r *run) deploy(ctx context.Context) error {
	if r.req.Deploy == nil {
		r.em.progress(ctx, PhaseDeploy, 1, "deploy", "Deployment not requested")
		return nil
	}
	if r.o.opts.Deployer == nil {
		r.fail(ctx, "deployment failed: no deployer configured")
		return nil
	}

	res, err := r.o.opts.Deployer.Deploy(ctx, r.res.Output.Dir, *r.req.Deploy)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.fail(ctx, fmt.Sprintf("deployment failed: %v", err))
	case !res.Success:
		r.res.Deployment = res
		r.fail(ctx, fmt.Sprintf("deployment failed: %s", res.Message))
	default:
		r.res.Deployment = res
		r.em.progress(ctx, PhaseDeploy, 1, "deploy",
			fmt.Sprintf("Published %d files via %s", res.Summary.Files, res.Summary.Provider))
	}
	return nil
}

func (r *run) history(ctx context.Context) error {
	r.res.Success = len(r.res.Errors) == 0
	if r.rec == nil {
		r.em.progress(ctx, PhaseHistory, 1, "history", "History not recorded")
		return nil
	}
	r.historyFinish(ctx, nil)
	r.em.progress(ctx, PhaseHistory, 1, "history", "Recorded generation "+r.res.GenerationID)
	return nil
}

func (r *run) complete(ctx context.Context) error {
	msg := "Generation complete"
	if n := len(r.res.Errors); n > 0 {
		msg = fmt.Sprintf("Generation complete with %d errors", n)
	}
	r.em.progress(ctx, PhaseComplete, 1, "complete", msg)
	return nil
}

func (r *run) historyStart(ctx context.Context, start time.Time) {
	if r.o.opts.Store == nil {
		return
	}
	rec := &store.Record{
		ID:          r.res.GenerationID,
		ProjectSlug: r.res.ProjectSlug,
		Status:      store.StatusRunning,
		StartedAt:   start,
	}
	if err := r.o.opts.Store.Create(ctx, rec); err != nil {
		r.o.opts.Logger.Warn(ctx, "failed to record generation", zap.Error(err))
		return
	}
	r.rec = rec
}

func (r *run) historyPhase(ctx context.Context, ph Phase) {
	if r.rec == nil {
		return
	}
	r.rec.Phase, r.rec.PhaseName = ph.Number, ph.Name
	r.save(ctx)
}

func (r *run) historyFinish(ctx context.Context, runErr error) {
	if r.rec == nil {
		return
	}
	rec := r.rec
	rec.FinishedAt = time.Now()
	rec.Iterations = r.res.Iterations
	rec.Errors = append([]string(nil), r.res.Errors...)
	if r.res.Output != nil {
		rec.OutputDir = r.res.Output.Dir
	}
	if rep := r.res.QAReport; rep != nil {
		rec.Composite = rep.Composite
		rec.Verdict = string(rep.Verdict)
		rec.MeetsThresholds = rep.MeetsThresholds
	}
	if d := r.res.Deployment; d != nil {
		rec.DeploymentURL = d.URL
	}
	if runErr != nil {
		rec.Status = store.StatusFailed
		rec.Errors = append(rec.Errors, runErr.Error())
	} else {
		rec.Status = store.StatusCompleted
		rec.Success = r.res.Success
	}
	r.save(context.WithoutCancel(ctx))
}

func (r *run) save(ctx context.Context) {
	if err := r.o.opts.Store.Update(ctx, r.rec); err != nil {
		r.o.opts.Logger.Warn(ctx, "failed to update generation record", zap.Error(err))
	}
}
