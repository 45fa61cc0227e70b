package builtin

import (
	"strconv"
	"strings"

	"github.com/hemlock-lang/hemlock/internal/hemlock/diagnostics"
	"github.com/hemlock-lang/hemlock/internal/hemlock/value"
)

// jsonParser is a small recursive-descent parser for the canonical JSON
// grammar serialize()/deserialize() use (spec.md §6). It deliberately does
// not reuse encoding/json: deserialize must yield Hemlock Values (with the
// i32-vs-i64 integer-literal split spec.md §4.4 specifies) rather than Go
// interface{} values, so a purpose-built parser avoids an intermediate
// decode-then-convert pass.
type jsonParser struct {
	src string
	pos int
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *jsonParser) parseValue() (value.Value, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewString(s), nil
	case c == 't':
		return p.parseLiteral("true", value.Bool(true))
	case c == 'f':
		return p.parseLiteral("false", value.Bool(false))
	case c == 'n':
		return p.parseLiteral("null", value.Null())
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "unexpected character in JSON at offset %d", p.pos)
	}
}

func (p *jsonParser) parseLiteral(lit string, v value.Value) (value.Value, error) {
	if !strings.HasPrefix(p.src[p.pos:], lit) {
		return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "invalid JSON literal at offset %d", p.pos)
	}
	p.pos += len(lit)
	return v, nil
}

func (p *jsonParser) parseString() (string, error) {
	if p.peek() != '"' {
		return "", diagnostics.New(diagnostics.CategoryCoercion, "expected string at offset %d", p.pos)
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				break
			}
			switch p.src[p.pos] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			default:
				b.WriteByte(p.src[p.pos])
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", diagnostics.New(diagnostics.CategoryCoercion, "unterminated JSON string")
}

func (p *jsonParser) parseNumber() (value.Value, error) {
	start := p.pos
	isFloat := false
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.peek() == '.' {
		isFloat = true
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	if p.peek() == 'e' || p.peek() == 'E' {
		isFloat = true
		p.pos++
		if p.peek() == '+' || p.peek() == '-' {
			p.pos++
		}
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	text := p.src[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "invalid JSON number %q", text)
		}
		return value.F64(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "invalid JSON number %q", text)
	}
	if n >= -(1<<31) && n <= (1<<31)-1 {
		return value.I32(int32(n)), nil
	}
	return value.I64(n), nil
}

func (p *jsonParser) parseArray() (value.Value, error) {
	p.pos++ // '['
	var elems []value.Value
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return value.NewArray(elems), nil
	}
	for {
		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if p.peek() == ']' {
			p.pos++
			break
		}
		return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "expected ',' or ']' at offset %d", p.pos)
	}
	return value.NewArray(elems), nil
}

func (p *jsonParser) parseObject() (value.Value, error) {
	p.pos++ // '{'
	obj := value.NewObject()
	oo := value.AsObject(obj)
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipSpace()
		name, err := p.parseString()
		if err != nil {
			return value.Value{}, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "expected ':' at offset %d", p.pos)
		}
		p.pos++
		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		oo.Set(name, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if p.peek() == '}' {
			p.pos++
			break
		}
		return value.Value{}, diagnostics.New(diagnostics.CategoryCoercion, "expected ',' or '}' at offset %d", p.pos)
	}
	return obj, nil
}
