package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/sitesmith/internal/events"
	"github.com/fyrsmithlabs/sitesmith/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// progressView renders the event stream as one line per event and a boxed
// summary at the end. It is an events.Sink.
type progressView struct {
	mu sync.Mutex
	w  io.Writer
}

func newProgressView(w io.Writer) *progressView {
	return &progressView{w: w}
}

func (v *progressView) Emit(_ context.Context, e events.Event) error {
	var line string
	switch e.Type {
	case events.TypeGenerationID:
		line = titleStyle.Render("sitesmith") + " " + dimStyle.Render("generation "+e.GenerationID)
	case events.TypeProgress:
		line = renderProgress(e.Progress)
	case events.TypeComplete:
		line = renderSummary(e.Complete)
	case events.TypeError:
		line = errorStyle.Render("✗ generation aborted: " + e.Error)
	default:
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	_, err := fmt.Fprintln(v.w, line)
	return err
}

func renderProgress(p *events.Progress) string {
	if p == nil {
		return ""
	}
	pct := dimStyle.Render(fmt.Sprintf("[%3d%%]", p.Progress))
	phase := phaseStyle.Render(fmt.Sprintf("%02d/%02d %s", p.Phase, pipeline.TotalPhases, p.PhaseName))
	return pct + " " + phase + " " + p.Message
}

func renderSummary(c *events.Complete) string {
	if c == nil {
		return ""
	}
	status := okStyle.Render("✓ site generated")
	if !c.Success {
		status = warnStyle.Render("! finished with errors")
	}

	lines := []string{
		status,
		fmt.Sprintf("project     %s", c.ProjectSlug),
		fmt.Sprintf("duration    %s", (time.Duration(c.Duration) * time.Millisecond).Round(time.Millisecond)),
	}
	if r := c.QAReport; r != nil {
		lines = append(lines,
			fmt.Sprintf("quality     %.1f/10 (%s)", r.Composite, r.Verdict),
			fmt.Sprintf("navigation  %d/%d links working", r.Navigation.WorkingLinks, r.Navigation.TotalLinks),
		)
	}
	if d := c.Deployment; d != nil {
		target := d.URL
		if target == "" {
			target = d.Message
		}
		lines = append(lines, fmt.Sprintf("deployed    %s via %s", target, d.Summary.Provider))
	}
	for _, msg := range c.Errors {
		lines = append(lines, errorStyle.Render("- "+msg))
	}
	return summaryStyle.Render(strings.Join(lines, "\n"))
}
