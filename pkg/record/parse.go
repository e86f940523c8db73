package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ErrEmpty is returned for blank completion text.
var ErrEmpty = errors.New("empty completion")

// SyntaxError describes text that is not a record literal.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// ParseList reads raw as the inside of a list literal, as returned by a
// completion that was prompted with an open bracket.
func ParseList(raw string) ([]string, error) {
	text := prepare(raw)
	if text == "" {
		return nil, ErrEmpty
	}
	if text[0] != '[' {
		text = "[" + text
	}

	p := &parser{s: text}
	v, err := p.list(']')
	if err != nil {
		return nil, err
	}

	out, _ := Record{"list": v}.Strings("list")
	return out, nil
}

func parseRecord(raw string) (Record, error) {
	text := prepare(raw)
	if text == "" {
		return nil, ErrEmpty
	}
	if text[0] != '{' {
		text = "{" + text
	}

	p := &parser{s: text}
	m, err := p.object()
	if err != nil {
		return nil, err
	}

	return Record(m), nil
}

func prepare(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "\n", " "))
}

// parser reads JSON and Python literal syntax. Closing brackets missing at
// the end of input are tolerated, as is any text after the outermost one.
type parser struct {
	s   string
	pos int
}

func (p *parser) fail(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) peek() byte { return p.s[p.pos] }

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

// object reads a mapping; p.pos is at the opening brace.
func (p *parser) object() (map[string]any, error) {
	p.pos++
	out := make(map[string]any)

	for {
		p.skipSpace()
		if p.eof() {
			return out, nil
		}
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}

		key, err := p.key()
		if err != nil {
			return nil, err
		}

		p.skipSpace()
		if p.eof() || p.peek() != ':' {
			return nil, p.fail("expected ':' after key %q", key)
		}
		p.pos++

		val, err := p.value()
		if err != nil {
			return nil, err
		}
		out[key] = val

		p.skipSpace()
		switch {
		case p.eof():
			return out, nil
		case p.peek() == ',':
			p.pos++
		case p.peek() == '}':
			p.pos++
			return out, nil
		default:
			return nil, p.fail("expected ',' or '}' after value of %q", key)
		}
	}
}

func (p *parser) key() (string, error) {
	if c := p.peek(); c == '"' || c == '\'' {
		return p.str()
	}

	start := p.pos
	for !p.eof() && !strings.ContainsRune(":,{}[]()\"'", rune(p.peek())) {
		p.pos++
	}

	key := strings.TrimSpace(p.s[start:p.pos])
	if key == "" {
		return "", p.fail("missing key")
	}
	return key, nil
}

// list reads a sequence closed by end; p.pos is at the opening bracket.
func (p *parser) list(end byte) ([]any, error) {
	p.pos++
	out := []any{}

	for {
		p.skipSpace()
		if p.eof() {
			return out, nil
		}
		if p.peek() == end {
			p.pos++
			return out, nil
		}

		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		p.skipSpace()
		switch {
		case p.eof():
			return out, nil
		case p.peek() == ',':
			p.pos++
		case p.peek() == end:
			p.pos++
			return out, nil
		default:
			return nil, p.fail("expected ',' or %q in list", end)
		}
	}
}

func (p *parser) value() (any, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.fail("unexpected end of input")
	}

	switch p.peek() {
	case '{':
		return p.object()
	case '[':
		return p.list(']')
	case '(':
		return p.list(')')
	case '"', '\'':
		return p.str()
	}

	return p.scalar()
}

// scalar reads an unquoted value up to the next delimiter or quote.
func (p *parser) scalar() (any, error) {
	start := p.pos
	for !p.eof() && !strings.ContainsRune(",}]){[\"'", rune(p.peek())) {
		p.pos++
	}

	word := strings.TrimSpace(p.s[start:p.pos])
	switch word {
	case "":
		return nil, p.fail("missing value")
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	case "None", "null":
		return nil, nil
	}

	if strings.ContainsRune("+-.0123456789", rune(word[0])) {
		if f, err := strconv.ParseFloat(word, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f, nil
		}
	}

	return word, nil
}

// str reads a quoted string; p.pos is at the opening quote.
func (p *parser) str() (string, error) {
	quote := p.peek()
	start := p.pos
	p.pos++

	var b strings.Builder
	for {
		if p.eof() {
			p.pos = start
			return "", p.fail("unterminated string")
		}

		c := p.peek()
		p.pos++

		switch c {
		case quote:
			return b.String(), nil
		case '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
		}
	}
}

func (p *parser) escape(b *strings.Builder) error {
	if p.eof() {
		return p.fail("unterminated escape")
	}

	c := p.peek()
	p.pos++

	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case '\\', '\'', '"', '/':
		b.WriteByte(c)
	case 'x':
		r, err := p.hex(2)
		if err != nil {
			return err
		}
		b.WriteRune(r)
	case 'u':
		r, err := p.hex(4)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && strings.HasPrefix(p.s[p.pos:], `\u`) {
			p.pos += 2
			r2, err := p.hex(4)
			if err != nil {
				return err
			}
			r = utf16.DecodeRune(r, r2)
		}
		b.WriteRune(r)
	default:
		// Unknown escapes are kept verbatim.
		b.WriteByte('\\')
		b.WriteByte(c)
	}

	return nil
}

func (p *parser) hex(n int) (rune, error) {
	if p.pos+n > len(p.s) {
		return 0, p.fail("short escape")
	}

	v, err := strconv.ParseUint(p.s[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return 0, p.fail("bad escape %q", p.s[p.pos:p.pos+n])
	}
	p.pos += n

	return rune(v), nil
}
