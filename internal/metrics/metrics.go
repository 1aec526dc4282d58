// Package metrics exposes Prometheus metrics for generation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PhaseDuration tracks how long each executed phase takes.
	// Labels: phase (phase name)
	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitesmith",
			Subsystem: "pipeline",
			Name:      "phase_duration_seconds",
			Help:      "Duration of executed pipeline phases in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	// GenerationsTotal counts finished runs.
	// Labels: outcome (success, completed_with_errors, aborted)
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitesmith",
			Subsystem: "pipeline",
			Name:      "generations_total",
			Help:      "Total number of generation runs by outcome",
		},
		[]string{"outcome"},
	)

	// QAComposite is the composite score of the most recent assessment.
	QAComposite = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sitesmith",
			Subsystem: "qa",
			Name:      "composite_score",
			Help:      "Composite quality score (0-10) of the last assessment",
		},
	)

	// QAIterations records how many assessments each run needed.
	QAIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sitesmith",
			Subsystem: "qa",
			Name:      "iterations",
			Help:      "Quality assessments performed per generation run",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
	)

	// BrokenLinksTotal counts broken navigation links found by the gate.
	BrokenLinksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sitesmith",
			Subsystem: "qa",
			Name:      "broken_links_total",
			Help:      "Total number of broken internal navigation links detected",
		},
	)
)

// Outcome labels for GenerationsTotal.
const (
	OutcomeSuccess    = "success"
	OutcomeWithErrors = "completed_with_errors"
	OutcomeAborted    = "aborted"
)

// ObservePhase records the duration of one phase.
func ObservePhase(phase string, d time.Duration) {
	PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordGeneration records the outcome of a finished run.
func RecordGeneration(outcome string) {
	GenerationsTotal.WithLabelValues(outcome).Inc()
}

// RecordAssessment updates the gate metrics after one assessment.
func RecordAssessment(composite float64, brokenLinks int) {
	QAComposite.Set(composite)
	if brokenLinks > 0 {
		BrokenLinksTotal.Add(float64(brokenLinks))
	}
}

// RecordIterations records the number of assessments a run performed.
func RecordIterations(n int) {
	QAIterations.Observe(float64(n))
}
