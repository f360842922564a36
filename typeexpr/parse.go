package typeexpr

import (
	"strings"
	"unicode"

	"github.com/teranos/clutz/errors"
)

// Parse reads a Closure type expression such as `?Array<string>`,
// `function(new:Foo, number=): void` or `{a: string, b}`.
//
// Bare names are non-null; nullability is explicit (`?T`). A trailing `=`
// yields Optional. Use ParseParam for parameter types that may be variadic.
func Parse(text string) (*TypeExpr, error) {
	p := &parser{src: []rune(text)}
	t, err := p.parseTop()
	if err != nil {
		return nil, errors.Wrapf(err, "parse type %q", text)
	}
	p.skipSpace()
	if !p.eof() {
		return nil, errors.Newf("parse type %q: unexpected %q at offset %d", text, string(p.peek()), p.pos)
	}
	return t, nil
}

// ParseParam reads a parameter type: `T`, `T=` (optional) or `...T` (variadic).
// A bare `...` is a variadic of unknown element type.
func ParseParam(text string) (Param, error) {
	trimmed := strings.TrimSpace(text)
	var param Param
	if strings.HasPrefix(trimmed, "...") {
		param.Variadic = true
		trimmed = strings.TrimSpace(trimmed[3:])
		if trimmed == "" || trimmed == "=" {
			param.Type = Unknown()
			return param, nil
		}
	}
	t, err := Parse(trimmed)
	if err != nil {
		return Param{}, err
	}
	if t.Kind == KindOptional {
		param.Optional = !param.Variadic
		t = t.Inner
	}
	param.Type = t
	return param, nil
}

// MustParse is Parse for literals in tests and tables; it panics on error.
func MustParse(text string) *TypeExpr {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

// accept consumes s (after whitespace) if present.
func (p *parser) accept(s string) bool {
	p.skipSpace()
	r := []rune(s)
	if p.pos+len(r) > len(p.src) {
		return false
	}
	for i, c := range r {
		if p.src[p.pos+i] != c {
			return false
		}
	}
	p.pos += len(r)
	return true
}

func (p *parser) expect(s string) error {
	if !p.accept(s) {
		if p.eof() {
			return errors.Newf("expected %q at end of input", s)
		}
		return errors.Newf("expected %q at offset %d, found %q", s, p.pos, string(p.peek()))
	}
	return nil
}

// parseTop is a union with an optional trailing `=`.
func (p *parser) parseTop() (*TypeExpr, error) {
	t, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.accept("=") {
		return Optional(t), nil
	}
	return t, nil
}

func (p *parser) parseUnion() (*TypeExpr, error) {
	first, err := p.parsePrefixed()
	if err != nil {
		return nil, err
	}
	members := []*TypeExpr{first}
	for p.accept("|") {
		next, err := p.parsePrefixed()
		if err != nil {
			return nil, err
		}
		members = append(members, next)
	}
	if len(members) == 1 {
		return first, nil
	}
	return Union(members...), nil
}

// startsType reports whether the next rune can begin a type.
func (p *parser) startsType() bool {
	p.skipSpace()
	if p.eof() {
		return false
	}
	c := p.peek()
	return c == '(' || c == '{' || c == '*' || c == '?' || c == '!' || isNameStart(c)
}

func (p *parser) parsePrefixed() (*TypeExpr, error) {
	switch {
	case p.accept("?"):
		if !p.startsType() {
			return Unknown(), nil
		}
		inner, err := p.parsePrefixed()
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	case p.accept("!"):
		inner, err := p.parsePrefixed()
		if err != nil {
			return nil, err
		}
		if inner.Kind == KindNullable {
			return inner.Inner, nil
		}
		return inner, nil
	}
	return p.parseBasic()
}

func (p *parser) parseBasic() (*TypeExpr, error) {
	p.skipSpace()
	if p.eof() {
		return nil, errors.New("unexpected end of type")
	}
	switch c := p.peek(); {
	case c == '*':
		p.pos++
		return Any(), nil
	case c == '(':
		p.pos++
		t, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return t, nil
	case c == '{':
		p.pos++
		return p.parseRecord()
	case isNameStart(c):
		name := p.readName()
		if name == "function" && p.accept("(") {
			return p.parseFunction()
		}
		return p.parseNamed(name)
	default:
		return nil, errors.Newf("unexpected %q at offset %d", string(c), p.pos)
	}
}

func (p *parser) parseNamed(name string) (*TypeExpr, error) {
	var base *TypeExpr
	if IsPrimitiveName(name) {
		base = Primitive(name)
	} else {
		base = Named(name)
	}

	if !p.accept("<") {
		return base, nil
	}
	var args []*TypeExpr
	for {
		arg, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.accept(">") {
			break
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
	return Generic(base, args...), nil
}

// readName reads a dotted identifier; a `.<` type-argument opener ends the
// name and is consumed as far as the dot.
func (p *parser) readName() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == '.' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '<' {
				name := string(p.src[start:p.pos])
				p.pos++
				return name
			}
			p.pos++
			continue
		}
		if !isNamePart(c) {
			break
		}
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) parseRecord() (*TypeExpr, error) {
	var fields []Field
	if p.accept("}") {
		return Record(), nil
	}
	for {
		p.skipSpace()
		name, err := p.readFieldName()
		if err != nil {
			return nil, err
		}
		field := Field{Name: name}
		if p.accept(":") {
			t, err := p.parseTop()
			if err != nil {
				return nil, err
			}
			if t.Kind == KindOptional {
				t = Union(t.Inner, Primitive(Undefined))
			}
			field.Type = t
		}
		fields = append(fields, field)
		if p.accept("}") {
			break
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
	return Record(fields...), nil
}

func (p *parser) readFieldName() (string, error) {
	if p.eof() {
		return "", errors.New("expected record field name")
	}
	if q := p.peek(); q == '\'' || q == '"' {
		p.pos++
		start := p.pos
		for !p.eof() && p.peek() != q {
			p.pos++
		}
		if p.eof() {
			return "", errors.New("unterminated quoted field name")
		}
		name := string(p.src[start:p.pos])
		p.pos++
		return name, nil
	}
	start := p.pos
	for !p.eof() && (isNamePart(p.peek())) {
		p.pos++
	}
	if start == p.pos {
		return "", errors.Newf("expected record field name at offset %d", p.pos)
	}
	return string(p.src[start:p.pos]), nil
}

// parseFunction reads `function(` ... `)` with an optional `: R`.
// A `this:` binding is read and dropped.
func (p *parser) parseFunction() (*TypeExpr, error) {
	var params []Param
	var instance *TypeExpr
	ctor := false

	if !p.accept(")") {
		for {
			switch {
			case p.accept("new:"):
				t, err := p.parseUnion()
				if err != nil {
					return nil, err
				}
				ctor = true
				instance = t
			case p.accept("this:"):
				if _, err := p.parseUnion(); err != nil {
					return nil, err
				}
			default:
				param, err := p.parseParamType()
				if err != nil {
					return nil, err
				}
				params = append(params, param)
			}
			if p.accept(")") {
				break
			}
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}

	var ret *TypeExpr
	if p.accept(":") {
		t, err := p.parsePrefixed()
		if err != nil {
			return nil, err
		}
		ret = t
	}
	if ctor {
		return Constructor(params, instance), nil
	}
	return Function(params, ret), nil
}

func (p *parser) parseParamType() (Param, error) {
	var param Param
	if p.accept("...") {
		param.Variadic = true
		if !p.startsType() {
			param.Type = Unknown()
			return param, nil
		}
	}
	t, err := p.parseTop()
	if err != nil {
		return Param{}, err
	}
	if t.Kind == KindOptional {
		param.Optional = !param.Variadic
		t = t.Inner
	}
	param.Type = t
	return param, nil
}

func isNameStart(c rune) bool {
	return c == '_' || c == '$' || unicode.IsLetter(c)
}

func isNamePart(c rune) bool {
	return isNameStart(c) || unicode.IsDigit(c)
}
