package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/sitesmith/internal/generation"
	"github.com/fyrsmithlabs/sitesmith/internal/layout"
	"github.com/fyrsmithlabs/sitesmith/internal/logging"
	"github.com/fyrsmithlabs/sitesmith/internal/planner"
)

const copyPrompt = `Write website copy for the {{page}} page of {{business}}, a {{industry}} business.
Tone: {{tone}}. Focus: {{focus}}. Attempt: {{attempt}}.
Sections: {{sections}}.
Return {"sections": {"<section type>": {"headline": string, "subheadline": string,
"description": string, "bullets": [string]}}}`

const seoPrompt = `Write SEO metadata for the {{page}} page of {{business}} ({{industry}}, {{location}}).
Keywords to target: {{keywords}}. Attempt: {{attempt}}.
Return {"title": string (max 60 chars), "description": string (120-160 chars), "keywords": [string]}`

// imageSections are the section types that carry an image.
var imageSections = map[string]struct{ w, h int }{
	"hero":           {1600, 900},
	"about-preview":  {800, 600},
	"story":          {800, 600},
	"service-detail": {1200, 800},
	"gallery":        {800, 800},
}

// Synthesizer runs the copy, image and SEO sub-generators.
type Synthesizer struct {
	gen         generation.Generator
	concurrency int
	logger      *logging.Logger
}

// NewSynthesizer creates a synthesizer. concurrency bounds the number of
// in-flight collaborator calls per sub-generator.
func NewSynthesizer(gen generation.Generator, concurrency int, logger *logging.Logger) *Synthesizer {
	if gen == nil {
		gen = generation.Deterministic{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synthesizer{gen: gen, concurrency: concurrency, logger: logger}
}

func validate(in Input) error {
	if in.Config == nil || in.Profile == nil {
		return errors.New("content: config and profile are required")
	}
	for _, p := range in.Pages {
		if in.Layouts[p.ID] == nil {
			return fmt.Errorf("content: no layout for page %q", p.ID)
		}
	}
	return nil
}

// selectPages returns the pages named in ids, or all pages when ids is empty.
func selectPages(pages []planner.PlannedPage, ids []string) []planner.PlannedPage {
	if len(ids) == 0 {
		return pages
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]planner.PlannedPage, 0, len(ids))
	for _, p := range pages {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// ImageSlots returns how many images Images will produce for in.
func ImageSlots(in Input) int {
	n := 0
	for _, p := range in.Pages {
		l := in.Layouts[p.ID]
		if l == nil {
			continue
		}
		for _, sec := range l.Sections {
			if carriesImage(sec.Type) {
				n++
			}
		}
	}
	return n
}

func carriesImage(sectionType string) bool {
	_, ok := imageSections[sectionType]
	return ok
}

// Images plans and generates every section image. A failed or missing
// collaborator yields an SVG placeholder path; only cancellation is an error.
func (s *Synthesizer) Images(ctx context.Context, in Input, onItem func(sectionID string)) (ImageSet, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	type job struct {
		page    planner.PlannedPage
		section layout.Section
	}
	var jobs []job
	for _, p := range in.Pages {
		for _, sec := range in.Layouts[p.ID].Sections {
			if carriesImage(sec.Type) {
				jobs = append(jobs, job{p, sec})
			}
		}
	}

	var mu sync.Mutex
	out := make(ImageSet, len(jobs))
	fingerprint := in.Config.Fingerprint()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, j := range jobs {
		g.Go(func() error {
			asset := s.image(gctx, fingerprint, in, j.page, j.section)
			if err := gctx.Err(); err != nil {
				return err
			}
			mu.Lock()
			out[j.section.ID] = []ImageAsset{asset}
			mu.Unlock()
			if onItem != nil {
				onItem(j.section.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Synthesizer) image(ctx context.Context, fingerprint string, in Input, page planner.PlannedPage, sec layout.Section) ImageAsset {
	dims := imageSections[sec.Type]
	prompt := imagePrompt(in, page, sec)
	asset := ImageAsset{
		ID:        sec.ID + "-1",
		SectionID: sec.ID,
		Prompt:    prompt,
		Alt:       altText(in, page, sec),
		Width:     dims.w,
		Height:    dims.h,
	}

	img, err := s.gen.Image(ctx, fingerprint, prompt, imageSize(dims.w, dims.h), "standard")
	if err == nil && img != nil && img.URL != "" {
		asset.URL = img.URL
		asset.Source = "collaborator"
		return asset
	}
	if err != nil && !errors.Is(err, generation.ErrNoCollaborator) && ctx.Err() == nil {
		s.logger.Debug(ctx, "image collaborator failed, using placeholder",
			zap.String("section", sec.ID), zap.Error(err))
	}
	asset.LocalPath = "images/" + sec.ID + ".svg"
	asset.Source = "placeholder"
	return asset
}

func imageSize(w, h int) string {
	switch {
	case w > h:
		return "1792x1024"
	case h > w:
		return "1024x1792"
	default:
		return "1024x1024"
	}
}

func imagePrompt(in Input, page planner.PlannedPage, sec layout.Section) string {
	subject := in.Config.Industry
	if len(in.Profile.ImageStrategy.Subjects) > 0 {
		subject = strings.Join(in.Profile.ImageStrategy.Subjects, ", ")
	}
	return fmt.Sprintf("%s style photo for the %s section of the %s page of %s: %s",
		in.Profile.ImageStrategy.Style, sec.Type, page.Title, in.Config.BusinessName, subject)
}

func altText(in Input, page planner.PlannedPage, sec layout.Section) string {
	if sec.Type == "hero" {
		return in.Config.BusinessName + " " + strings.ToLower(page.Title)
	}
	return fmt.Sprintf("%s - %s", in.Config.BusinessName, strings.ReplaceAll(sec.Type, "-", " "))
}

type copyReply struct {
	Sections map[string]Copy `json:"sections"`
}

// Copy writes every section of the selected pages (all pages when pageIDs
// is empty). Sections the collaborator omits get rule-based copy.
func (s *Synthesizer) Copy(ctx context.Context, in Input, pageIDs []string, onItem func(pageID string)) (CopySet, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	pages := selectPages(in.Pages, pageIDs)

	var mu sync.Mutex
	out := make(CopySet, len(pages))
	fingerprint := in.Config.Fingerprint()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, p := range pages {
		g.Go(func() error {
			sections := s.pageCopy(gctx, fingerprint, in, p)
			if err := gctx.Err(); err != nil {
				return err
			}
			mu.Lock()
			out[p.ID] = sections
			mu.Unlock()
			if onItem != nil {
				onItem(p.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Synthesizer) pageCopy(ctx context.Context, fingerprint string, in Input, page planner.PlannedPage) map[string]Copy {
	l := in.Layouts[page.ID]
	types := make([]string, len(l.Sections))
	for i, sec := range l.Sections {
		types[i] = sec.Type
	}

	var reply copyReply
	err := s.gen.Text(ctx, generation.Request{
		Fingerprint: fingerprint,
		Task:        generation.TaskCopy,
		Prompt:      copyPrompt,
		Vars: map[string]string{
			"page":     page.Title,
			"business": in.Config.BusinessName,
			"industry": in.Config.Industry,
			"tone":     in.Config.Tone,
			"focus":    in.Profile.ContentStrategy.Focus,
			"sections": strings.Join(types, ", "),
			"attempt":  fmt.Sprint(in.Attempt),
		},
	}, &reply)
	if err != nil && !errors.Is(err, generation.ErrNoCollaborator) && ctx.Err() == nil {
		s.logger.Debug(ctx, "copy collaborator failed, using rules", zap.String("page", page.ID), zap.Error(err))
	}

	out := make(map[string]Copy, len(l.Sections))
	for _, sec := range l.Sections {
		cp, ok := reply.Sections[sec.Type]
		if err != nil || !ok || cp.Headline == "" {
			cp = FallbackCopy(in, page, sec.Type)
		} else {
			cp.CTA = fallbackCTA(in, sec.Type)
		}
		out[sec.ID] = cp
	}
	return out
}

type seoReply struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// SEO builds metadata for the selected pages (all pages when pageIDs is
// empty).
func (s *Synthesizer) SEO(ctx context.Context, in Input, pageIDs []string) (SEOSet, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	pages := selectPages(in.Pages, pageIDs)

	var mu sync.Mutex
	out := make(SEOSet, len(pages))
	fingerprint := in.Config.Fingerprint()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, p := range pages {
		g.Go(func() error {
			var reply seoReply
			err := s.gen.Text(gctx, generation.Request{
				Fingerprint: fingerprint,
				Task:        generation.TaskSEO,
				Prompt:      seoPrompt,
				Vars: map[string]string{
					"page":     p.Title,
					"business": in.Config.BusinessName,
					"industry": in.Config.Industry,
					"location": in.Config.Location.Display(),
					"keywords": strings.Join(p.SEO.Keywords, ", "),
					"attempt":  fmt.Sprint(in.Attempt),
				},
			}, &reply)
			if cerr := gctx.Err(); cerr != nil {
				return cerr
			}
			if err != nil && !errors.Is(err, generation.ErrNoCollaborator) {
				s.logger.Debug(gctx, "seo collaborator failed, using rules", zap.String("page", p.ID), zap.Error(err))
			}

			meta := BuildSEO(in, p, reply.Title, reply.Description, reply.Keywords)
			mu.Lock()
			out[p.ID] = meta
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
