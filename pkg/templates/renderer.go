package templates

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/germanamz/docpipe/pkg/document"
)

// Renderer is a loaded template bound to placeholder substitution.
type Renderer struct {
	name string
	text string
}

// Name returns the template name the renderer was loaded from.
func (r *Renderer) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Substitute replaces every placeholder with the matching document field.
func (r *Renderer) Substitute(doc document.Document) (string, error) {
	if r == nil {
		return "", ErrNilTemplate
	}

	var b strings.Builder
	b.Grow(len(r.text))

	err := scan(r.text, func(lit string) {
		b.WriteString(lit)
	}, func(name string) error {
		v, ok := doc[name]
		if !ok {
			return fmt.Errorf("%w %q in template %q", ErrMissingField, name, r.name)
		}
		b.WriteString(format(v))
		return nil
	})
	if err != nil {
		return "", err
	}

	return b.String(), nil
}

// Placeholders returns the distinct field names the template references, in
// order of first use. Scanning stops at the first invalid placeholder.
func (r *Renderer) Placeholders() []string {
	if r == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string

	_ = scan(r.text, func(string) {}, func(name string) error {
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			out = append(out, name)
		}
		return nil
	})

	return out
}

// InputSchema describes, as JSON Schema, the documents the template can be
// rendered against: an object carrying every placeholder.
func (r *Renderer) InputSchema() map[string]any {
	fields := r.Placeholders()

	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f] = map[string]any{
			"description": "Value substituted for $" + f + ".",
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(fields) > 0 {
		schema["required"] = fields
	}

	return schema
}

// scan walks text, passing literal runs to lit and placeholder names to field.
func scan(text string, lit func(string), field func(string) error) error {
	for {
		i := strings.IndexByte(text, '$')
		if i < 0 {
			lit(text)
			return nil
		}

		lit(text[:i])
		rest := text[i+1:]

		switch {
		case strings.HasPrefix(rest, "$"):
			lit("$")
			text = rest[1:]

		case strings.HasPrefix(rest, "{"):
			end := strings.IndexByte(rest, '}')
			if end < 0 || !isIdent(rest[1:end]) {
				return fmt.Errorf("%w at offset %d", ErrInvalidPlaceholder, i)
			}
			if err := field(rest[1:end]); err != nil {
				return err
			}
			text = rest[end+1:]

		default:
			n := identLen(rest)
			if n == 0 {
				return fmt.Errorf("%w at offset %d", ErrInvalidPlaceholder, i)
			}
			if err := field(rest[:n]); err != nil {
				return err
			}
			text = rest[n:]
		}
	}
}

func identLen(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		digit := c >= '0' && c <= '9'
		if letter || (digit && i > 0) {
			continue
		}
		return i
	}
	return len(s)
}

func isIdent(s string) bool {
	return s != "" && identLen(s) == len(s)
}

// format renders a document value for inclusion in a prompt.
func format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = format(e)
		}
		return strings.Join(parts, ", ")
	case map[string]any, document.Document:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
