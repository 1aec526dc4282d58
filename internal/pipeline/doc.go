// Package pipeline runs a generation from a normalized project config to an
// assembled, assessed and optionally published site.
//
// A run walks the 30 numbered phases in Phases. Phases that collapse into an
// earlier operation still report progress under their own number so the
// stream always covers 1..30 in order. Classification, planning, token,
// layout, content and assembly failures abort the run with a *PhaseError.
// Quality-gate and deployment failures are recorded in Result.Errors and the
// run completes.
package pipeline
