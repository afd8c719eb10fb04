package util

import (
	"fmt"
	"strings"

	"github.com/edgetalker/smart-agents/core"
)

// Interpolate replaces {key} placeholders with values from vars. Doubled
// braces ({{ and }}) render as literal braces. A placeholder whose key is
// absent from vars fails with *core.TemplateError; an unbalanced brace fails
// with a plain error.
// This lives in internal to avoid committing to public API stability prematurely.
func Interpolate(text string, vars map[string]string) (string, error) {
	if !strings.ContainsAny(text, "{}") { // fast path: no template markers
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				b.WriteByte('{')
				i++

				continue
			}

			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed placeholder at offset %d", i)
			}

			key := text[i+1 : i+1+end]

			val, ok := vars[key]
			if !ok {
				return "", &core.TemplateError{Key: key}
			}

			b.WriteString(val)
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				b.WriteByte('}')
				i++

				continue
			}

			return "", fmt.Errorf("single '}' encountered at offset %d", i)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// Placeholders lists the distinct placeholder keys in text in order of first
// appearance, skipping escaped braces.
func Placeholders(text string) []string {
	var keys []string

	seen := map[string]bool{}

	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}

		if i+1 < len(text) && text[i+1] == '{' {
			i++
			continue
		}

		end := strings.IndexByte(text[i+1:], '}')
		if end < 0 {
			break
		}

		key := text[i+1 : i+1+end]
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}

		i += end + 1
	}

	return keys
}
