// Package qa is the quality gate. It opens every assembled page through a
// browser port, runs five category assessments concurrently (performance,
// accessibility, SEO, visual design and navigation integrity), and folds
// them into a weighted composite with a pass/fail decision.
//
// Navigation integrity is enforced on its own: a report only meets its
// thresholds when the navigation status is exactly StatusPass, whatever the
// other categories score.
package qa
