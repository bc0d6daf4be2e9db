// Package partialjson parses JSON documents that may be cut off mid-way.
//
// Containers that were opened but not closed are returned with whatever members
// were complete. Scalars that were still being written when the input ended
// (strings without a closing quote, numbers at the very end, half literals) are
// treated as absent, as are keys whose value never started.
package partialjson

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("partialjson: %s at offset %d", e.Msg, e.Offset)
}

// Parse decodes the first object or array in s. Text before it is skipped so
// that chatty preambles do not block decoding.
//
// Objects decode to map[string]any, arrays to []any and numbers to json.Number.
// complete reports whether the value was closed before the input ended.
// A nil value with a nil error means nothing usable has arrived yet.
func Parse(s string) (v any, complete bool, err error) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return nil, false, nil
	}
	p := &parser{s: s, pos: start}
	v, present, err := p.value()
	if err == errTruncated {
		if !present {
			return nil, false, nil
		}
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

// errTruncated signals that the input ended inside a value.
var errTruncated = fmt.Errorf("partialjson: truncated")

type parser struct {
	s   string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) fail(msg string) error {
	return &SyntaxError{Offset: p.pos, Msg: msg}
}

// value returns the decoded value, whether it is present, and errTruncated
// when the input ended before the value was closed.
func (p *parser) value() (any, bool, error) {
	p.skipSpace()
	if p.eof() {
		return nil, false, errTruncated
	}
	switch c := p.s[p.pos]; {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"':
		s, err := p.str()
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	case c == 't':
		return p.literal("true", true)
	case c == 'f':
		return p.literal("false", false)
	case c == 'n':
		return p.literal("null", nil)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return nil, false, p.fail(fmt.Sprintf("unexpected character %q", c))
	}
}

func (p *parser) object() (any, bool, error) {
	obj := make(map[string]any)
	p.pos++ // '{'
	for {
		p.skipSpace()
		if p.eof() {
			return obj, true, errTruncated
		}
		switch p.s[p.pos] {
		case '}':
			p.pos++
			return obj, true, nil
		case ',':
			p.pos++
			continue
		case '"':
		default:
			return obj, true, p.fail("expected object key")
		}

		key, err := p.str()
		if err != nil {
			return obj, true, err
		}
		p.skipSpace()
		if p.eof() {
			return obj, true, errTruncated
		}
		if p.s[p.pos] != ':' {
			return obj, true, p.fail("expected ':'")
		}
		p.pos++

		v, present, err := p.value()
		if present {
			obj[key] = v
		}
		if err != nil {
			return obj, true, err
		}
	}
}

func (p *parser) array() (any, bool, error) {
	arr := make([]any, 0)
	p.pos++ // '['
	for {
		p.skipSpace()
		if p.eof() {
			return arr, true, errTruncated
		}
		switch p.s[p.pos] {
		case ']':
			p.pos++
			return arr, true, nil
		case ',':
			p.pos++
			continue
		}

		v, present, err := p.value()
		if present {
			arr = append(arr, v)
		}
		if err != nil {
			return arr, true, err
		}
	}
}

func (p *parser) str() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for {
		if p.eof() {
			return "", errTruncated
		}
		c := p.s[p.pos]
		switch {
		case c == '"':
			p.pos++
			return b.String(), nil
		case c == '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		case c < utf8.RuneSelf:
			b.WriteByte(c)
			p.pos++
		default:
			r, size := utf8.DecodeRuneInString(p.s[p.pos:])
			if r == utf8.RuneError && size == 1 && !utf8.FullRuneInString(p.s[p.pos:]) {
				// multi-byte rune split across chunks
				return "", errTruncated
			}
			b.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *parser) escape(b *strings.Builder) error {
	if p.pos+1 >= len(p.s) {
		return errTruncated
	}
	c := p.s[p.pos+1]
	p.pos += 2
	switch c {
	case '"', '\\', '/':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		r, err := p.hex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			if p.pos+1 >= len(p.s) {
				return errTruncated
			}
			if p.s[p.pos] == '\\' && p.s[p.pos+1] == 'u' {
				p.pos += 2
				r2, err := p.hex4()
				if err != nil {
					return err
				}
				r = utf16.DecodeRune(r, r2)
			} else {
				r = utf8.RuneError
			}
		}
		b.WriteRune(r)
	default:
		return p.fail(fmt.Sprintf("invalid escape %q", c))
	}
	return nil
}

func (p *parser) hex4() (rune, error) {
	if p.pos+4 > len(p.s) {
		return 0, errTruncated
	}
	n, err := strconv.ParseUint(p.s[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.fail("invalid unicode escape")
	}
	p.pos += 4
	return rune(n), nil
}

func (p *parser) literal(word string, v any) (any, bool, error) {
	rest := p.s[p.pos:]
	if strings.HasPrefix(rest, word) {
		p.pos += len(word)
		return v, true, nil
	}
	if strings.HasPrefix(word, rest) {
		p.pos = len(p.s)
		return nil, false, errTruncated
	}
	return nil, false, p.fail("invalid literal")
}

func (p *parser) number() (any, bool, error) {
	start := p.pos
	for p.pos < len(p.s) && strings.IndexByte("+-0123456789.eE", p.s[p.pos]) >= 0 {
		p.pos++
	}
	if p.eof() {
		// the number may still be growing
		return nil, false, errTruncated
	}
	text := p.s[start:p.pos]
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return nil, false, &SyntaxError{Offset: start, Msg: "invalid number " + strconv.Quote(text)}
	}
	return json.Number(text), true, nil
}
