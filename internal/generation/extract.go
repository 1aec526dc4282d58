package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the first JSON object or array out of a model reply.
// Markdown fences and surrounding prose are ignored.
func ExtractJSON(reply string) (json.RawMessage, error) {
	body := stripFences(reply)
	block := balancedBlock(body)
	if block == "" {
		return nil, fmt.Errorf("%w: no JSON value in reply", ErrInvalidOutput)
	}
	if !json.Valid([]byte(block)) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidOutput)
	}
	return json.RawMessage(block), nil
}

func stripFences(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// balancedBlock returns the first balanced {...} or [...] span, honouring
// string literals and escapes.
func balancedBlock(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
	}
	open := s[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
