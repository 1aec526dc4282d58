// Package logging provides structured, context-aware logging for sitesmith.
//
// Logger wraps zap and pulls correlation fields out of the context on every
// call: the active OpenTelemetry span, the generation id and the project slug.
//
//	ctx = logging.WithGeneration(ctx, genID)
//	ctx = logging.WithProject(ctx, cfg.Slug)
//	logger.Info(ctx, "phase complete", zap.Int("phase", 7))
//
// Fields whose key looks like a credential (api_key, token, ...) are redacted
// by the encoder before they are written.
package logging
