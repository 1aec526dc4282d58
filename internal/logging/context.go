package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type generationCtxKey struct{}
type projectCtxKey struct{}
type phaseCtxKey struct{}

// WithGeneration stores the generation id in the context.
func WithGeneration(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, generationCtxKey{}, id)
}

// GenerationIDFromContext returns the generation id, or "".
func GenerationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(generationCtxKey{}).(string)
	return id
}

// WithProject stores the project slug in the context.
func WithProject(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, projectCtxKey{}, slug)
}

// ProjectFromContext returns the project slug, or "".
func ProjectFromContext(ctx context.Context) string {
	slug, _ := ctx.Value(projectCtxKey{}).(string)
	return slug
}

// WithPhase stores the current pipeline phase number in the context.
func WithPhase(ctx context.Context, phase int) context.Context {
	return context.WithValue(ctx, phaseCtxKey{}, phase)
}

// PhaseFromContext returns the phase number, or 0.
func PhaseFromContext(ctx context.Context) int {
	p, _ := ctx.Value(phaseCtxKey{}).(int)
	return p
}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 6)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GenerationIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("generation.id", id))
	}
	if slug := ProjectFromContext(ctx); slug != "" {
		fields = append(fields, zap.String("project.slug", slug))
	}
	if phase := PhaseFromContext(ctx); phase > 0 {
		fields = append(fields, zap.Int("phase", phase))
	}
	return fields
}
