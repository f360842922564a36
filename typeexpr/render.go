package typeexpr

import (
	"fmt"
	"strings"
)

// Render prints a target-form expression as TypeScript.
func Render(t *TypeExpr) string {
	var b strings.Builder
	render(&b, t)
	return b.String()
}

// RenderParams prints a parameter list without the surrounding parentheses.
// Unnamed parameters are named a, b, c, ... by position.
func RenderParams(params []Param) string {
	var b strings.Builder
	renderParams(&b, params)
	return b.String()
}

func render(b *strings.Builder, t *TypeExpr) {
	if t == nil {
		b.WriteString("any")
		return
	}
	switch t.Kind {
	case KindUnknown, KindAny:
		b.WriteString("any")
	case KindPrimitive, KindLiteral, KindTypeParam, KindEnumRef, KindNamed:
		b.WriteString(t.Name)
	case KindNullable:
		renderMember(b, t.Inner)
		b.WriteString(" | null")
	case KindOptional:
		renderMember(b, t.Inner)
		b.WriteString(" | undefined")
	case KindUnion:
		for i, m := range t.Members {
			if i > 0 {
				b.WriteString(" | ")
			}
			renderMember(b, m)
		}
	case KindRecord:
		b.WriteByte('{')
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(PropertyName(f.Name))
			if f.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			render(b, f.Type)
		}
		b.WriteByte('}')
	case KindGeneric:
		render(b, t.Base)
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, a)
		}
		b.WriteByte('>')
	case KindFunction:
		if t.Ctor {
			b.WriteString("new ")
		}
		b.WriteByte('(')
		renderParams(b, t.Params)
		b.WriteString(") => ")
		render(b, t.Return)
	case KindArrayLike:
		renderArrayElem(b, t.Inner)
		b.WriteString("[]")
	case KindIndexSignature:
		b.WriteString("{[")
		if t.CoercedFrom != "" {
			fmt.Fprintf(b, "/* warning: coerced from %s */ ", t.CoercedFrom)
		}
		b.WriteString("key: ")
		render(b, t.IndexKey)
		b.WriteString("]: ")
		render(b, t.Value)
		b.WriteByte('}')
	default:
		b.WriteString("any")
	}
}

// renderMember prints a union member; function types need parentheses.
func renderMember(b *strings.Builder, t *TypeExpr) {
	if t != nil && t.Kind == KindFunction {
		b.WriteByte('(')
		render(b, t)
		b.WriteByte(')')
		return
	}
	render(b, t)
}

func renderArrayElem(b *strings.Builder, t *TypeExpr) {
	if t != nil {
		switch t.Kind {
		case KindFunction, KindUnion, KindNullable, KindOptional:
			b.WriteByte('(')
			render(b, t)
			b.WriteByte(')')
			return
		}
	}
	render(b, t)
}

func renderParams(b *strings.Builder, params []Param) {
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		name := p.Name
		if name == "" {
			name = positionalName(i)
		}
		if p.Variadic {
			b.WriteString("...")
			b.WriteString(name)
			b.WriteString(": ")
			renderArrayElem(b, p.Type)
			b.WriteString("[]")
			continue
		}
		b.WriteString(name)
		if p.Optional {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		render(b, p.Type)
	}
}

// positionalName returns a, b, ..., z, p26, p27, ...
func positionalName(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return fmt.Sprintf("p%d", i)
}

// PropertyName quotes a property name that is not a valid identifier or number.
func PropertyName(name string) string {
	if IsIdentifier(name) || isNumeric(name) {
		return name
	}
	return QuoteString(name)
}

// IsIdentifier reports whether name is a valid TypeScript identifier.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		if i == 0 && !isNameStart(c) {
			return false
		}
		if !isNamePart(c) {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// QuoteString renders s as a single-quoted TypeScript string literal.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, c := range s {
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
