package logging

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// RedactingEncoder rewrites sensitive fields before handing them to the
// wrapped encoder. Keys matching a configured field name are replaced
// wholesale; string values matching a pattern have the match replaced.
type RedactingEncoder struct {
	zapcore.Encoder
	fields   []string
	patterns []*regexp.Regexp
	enabled  bool
}

// NewRedactingEncoder wraps enc. Patterns are compiled up front.
func NewRedactingEncoder(enc zapcore.Encoder, cfg RedactionConfig) (*RedactingEncoder, error) {
	r := &RedactingEncoder{Encoder: enc, enabled: cfg.Enabled}
	for _, f := range cfg.Fields {
		r.fields = append(r.fields, strings.ToLower(f))
	}
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile redaction pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Clone implements zapcore.Encoder.
func (r *RedactingEncoder) Clone() zapcore.Encoder {
	return &RedactingEncoder{
		Encoder:  r.Encoder.Clone(),
		fields:   r.fields,
		patterns: r.patterns,
		enabled:  r.enabled,
	}
}

// AddString redacts fields attached through Logger.With.
func (r *RedactingEncoder) AddString(key, value string) {
	if r.enabled {
		value = r.redactValue(key, value)
	}
	r.Encoder.AddString(key, value)
}

// EncodeEntry implements zapcore.Encoder.
func (r *RedactingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	if !r.enabled {
		return r.Encoder.EncodeEntry(ent, fields)
	}
	ent.Message = r.scrub(ent.Message)
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = r.redactField(f)
	}
	return r.Encoder.EncodeEntry(ent, out)
}

func (r *RedactingEncoder) redactField(f zapcore.Field) zapcore.Field {
	if r.isSensitiveKey(f.Key) {
		return zapcore.Field{Key: f.Key, Type: zapcore.StringType, String: redacted}
	}
	switch f.Type {
	case zapcore.StringType:
		f.String = r.scrub(f.String)
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok {
			if msg := r.scrub(err.Error()); msg != err.Error() {
				return zapcore.Field{Key: f.Key, Type: zapcore.StringType, String: msg}
			}
		}
	case zapcore.StringerType:
		if s, ok := f.Interface.(fmt.Stringer); ok {
			if v := r.scrub(s.String()); v != s.String() {
				return zapcore.Field{Key: f.Key, Type: zapcore.StringType, String: v}
			}
		}
	}
	return f
}

func (r *RedactingEncoder) redactValue(key, value string) string {
	if r.isSensitiveKey(key) {
		return redacted
	}
	return r.scrub(value)
}

func (r *RedactingEncoder) scrub(s string) string {
	for _, re := range r.patterns {
		s = re.ReplaceAllString(s, redacted)
	}
	return s
}

func (r *RedactingEncoder) isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, f := range r.fields {
		if strings.Contains(k, f) {
			return true
		}
	}
	return false
}
