// Package typeexpr models Closure and TypeScript type expressions.
//
// One tagged structure serves both sides: the parser produces source
// expressions from Closure JSDoc type text, Translator rewrites them into
// target form, and Render prints target form as TypeScript.
//
// Constructors keep the algebra canonical. Build values with them rather
// than with struct literals:
//   - unions are flat, de-duplicated, and never hold a single member
//   - Nullable(Nullable(x)) == Nullable(x)
//   - Optional(Optional(x)) == Optional(x)
package typeexpr

import (
	"strings"
)

// Kind tags a TypeExpr variant.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAny
	KindPrimitive
	KindNamed
	KindTypeParam
	KindLiteral
	KindNullable
	KindOptional
	KindUnion
	KindRecord
	KindGeneric
	KindFunction
	KindArrayLike
	KindIndexSignature
	KindEnumRef
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindAny:            "any",
	KindPrimitive:      "primitive",
	KindNamed:          "named",
	KindTypeParam:      "type-param",
	KindLiteral:        "literal",
	KindNullable:       "nullable",
	KindOptional:       "optional",
	KindUnion:          "union",
	KindRecord:         "record",
	KindGeneric:        "generic",
	KindFunction:       "function",
	KindArrayLike:      "array",
	KindIndexSignature: "index-signature",
	KindEnumRef:        "enum-ref",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Field is one record property.
type Field struct {
	Name     string
	Type     *TypeExpr
	Optional bool
}

// Param is one function parameter. A variadic param's Type is the element type.
type Param struct {
	Name     string
	Type     *TypeExpr
	Optional bool
	Variadic bool
}

// TypeExpr is a node of the type algebra. Which fields are meaningful depends on Kind.
type TypeExpr struct {
	Kind Kind

	// Primitive, Named, TypeParam and EnumRef name; Literal source text.
	Name string
	// Named: already in target form (qualified, mapped), left alone by Translator.
	Resolved bool

	// Nullable, Optional and ArrayLike operand.
	Inner *TypeExpr

	Members []*TypeExpr // Union
	Fields  []Field     // Record

	Base *TypeExpr   // Generic
	Args []*TypeExpr // Generic

	Params []Param    // Function
	Return *TypeExpr  // Function; the instance type when Ctor
	Ctor   bool       // Function

	IndexKey    *TypeExpr // IndexSignature
	Value       *TypeExpr // IndexSignature
	CoercedFrom string    // IndexSignature: original key text when the key was coerced to string
}

// Primitive type names shared by Closure and TypeScript.
const (
	String    = "string"
	Number    = "number"
	Boolean   = "boolean"
	Null      = "null"
	Undefined = "undefined"
	Void      = "void"
	Symbol    = "symbol"
)

var primitiveNames = map[string]bool{
	String: true, Number: true, Boolean: true, Null: true,
	Undefined: true, Void: true, Symbol: true,
}

// IsPrimitiveName reports whether name is a primitive type keyword.
func IsPrimitiveName(name string) bool {
	return primitiveNames[name]
}

// Any returns the top type `*`.
func Any() *TypeExpr { return &TypeExpr{Kind: KindAny} }

// Unknown returns the unknown type `?`. It renders as any.
func Unknown() *TypeExpr { return &TypeExpr{Kind: KindUnknown} }

// Primitive returns a primitive type.
func Primitive(name string) *TypeExpr { return &TypeExpr{Kind: KindPrimitive, Name: name} }

// Named returns an unresolved source reference.
func Named(name string) *TypeExpr { return &TypeExpr{Kind: KindNamed, Name: name} }

// ResolvedNamed returns a reference already in target form.
func ResolvedNamed(name string) *TypeExpr {
	return &TypeExpr{Kind: KindNamed, Name: name, Resolved: true}
}

// TypeParam returns a reference to a template type parameter.
func TypeParam(name string) *TypeExpr { return &TypeExpr{Kind: KindTypeParam, Name: name} }

// Literal returns a literal type; text is printed verbatim ('a', 1, true).
func Literal(text string) *TypeExpr { return &TypeExpr{Kind: KindLiteral, Name: text} }

// EnumRef returns a reference to an enum symbol by qualified name.
func EnumRef(name string) *TypeExpr { return &TypeExpr{Kind: KindEnumRef, Name: name} }

// Array returns elem[].
func Array(elem *TypeExpr) *TypeExpr {
	if elem == nil {
		elem = Any()
	}
	return &TypeExpr{Kind: KindArrayLike, Inner: elem}
}

// IndexSignature returns {[key: K]: V}.
func IndexSignature(key, value *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindIndexSignature, IndexKey: key, Value: value}
}

// Record returns an inline object type.
func Record(fields ...Field) *TypeExpr {
	return &TypeExpr{Kind: KindRecord, Fields: fields}
}

// Generic returns base<args...>.
func Generic(base *TypeExpr, args ...*TypeExpr) *TypeExpr {
	if len(args) == 0 {
		return base
	}
	return &TypeExpr{Kind: KindGeneric, Base: base, Args: args}
}

// Function returns a function type.
func Function(params []Param, ret *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindFunction, Params: params, Return: ret}
}

// Constructor returns a construct signature type producing instance.
func Constructor(params []Param, instance *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindFunction, Params: params, Return: instance, Ctor: true}
}

// Nullable wraps inner; nested nullables collapse.
func Nullable(inner *TypeExpr) *TypeExpr {
	if inner == nil {
		return Unknown()
	}
	switch inner.Kind {
	case KindNullable, KindAny, KindUnknown:
		return inner
	case KindPrimitive:
		if inner.Name == Null {
			return inner
		}
	}
	return &TypeExpr{Kind: KindNullable, Inner: inner}
}

// Optional wraps inner; nested optionals collapse.
func Optional(inner *TypeExpr) *TypeExpr {
	if inner == nil {
		return Unknown()
	}
	if inner.Kind == KindOptional {
		return inner
	}
	return &TypeExpr{Kind: KindOptional, Inner: inner}
}

// Union builds a flattened, de-duplicated union. A union with one distinct
// member is that member; any absorbs every other member.
func Union(members ...*TypeExpr) *TypeExpr {
	var flat []*TypeExpr
	seen := make(map[string]bool)

	var add func(m *TypeExpr)
	add = func(m *TypeExpr) {
		if m == nil {
			return
		}
		if m.Kind == KindUnion {
			for _, inner := range m.Members {
				add(inner)
			}
			return
		}
		k := m.Key()
		if seen[k] {
			return
		}
		seen[k] = true
		flat = append(flat, m)
	}
	for _, m := range members {
		add(m)
	}

	for _, m := range flat {
		if m.Kind == KindAny || m.Kind == KindUnknown {
			return m
		}
	}

	switch len(flat) {
	case 0:
		return Unknown()
	case 1:
		return flat[0]
	}
	return &TypeExpr{Kind: KindUnion, Members: flat}
}

// Without returns t with every union member matching drop removed.
func Without(t *TypeExpr, drop func(*TypeExpr) bool) *TypeExpr {
	if t == nil || t.Kind != KindUnion {
		return t
	}
	var kept []*TypeExpr
	for _, m := range t.Members {
		if !drop(m) {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(t.Members) {
		return t
	}
	return Union(kept...)
}

// IsPrimitive reports whether t is the primitive called name.
func (t *TypeExpr) IsPrimitive(name string) bool {
	return t != nil && t.Kind == KindPrimitive && t.Name == name
}

// Includes reports whether t is, or is a union containing, a member matching pred.
func (t *TypeExpr) Includes(pred func(*TypeExpr) bool) bool {
	if t == nil {
		return false
	}
	if t.Kind == KindUnion {
		for _, m := range t.Members {
			if pred(m) {
				return true
			}
		}
		return false
	}
	return pred(t)
}

// IsUnknown reports whether t carries no type information.
func (t *TypeExpr) IsUnknown() bool {
	return t == nil || t.Kind == KindUnknown
}

// Equal compares two expressions structurally.
func Equal(a, b *TypeExpr) bool {
	return a.Key() == b.Key()
}

// Key returns a canonical string for t; structurally equal expressions share a key.
func (t *TypeExpr) Key() string {
	var b strings.Builder
	t.writeKey(&b)
	return b.String()
}

func (t *TypeExpr) writeKey(b *strings.Builder) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case KindUnknown:
		b.WriteString("?")
	case KindAny:
		b.WriteString("*")
	case KindPrimitive, KindTypeParam, KindLiteral, KindEnumRef:
		b.WriteString(t.Kind.String())
		b.WriteByte(':')
		b.WriteString(t.Name)
	case KindNamed:
		if t.Resolved {
			b.WriteString("resolved:")
		} else {
			b.WriteString("named:")
		}
		b.WriteString(t.Name)
	case KindNullable:
		b.WriteString("nullable(")
		t.Inner.writeKey(b)
		b.WriteByte(')')
	case KindOptional:
		b.WriteString("optional(")
		t.Inner.writeKey(b)
		b.WriteByte(')')
	case KindArrayLike:
		b.WriteString("array(")
		t.Inner.writeKey(b)
		b.WriteByte(')')
	case KindUnion:
		b.WriteString("union(")
		for i, m := range t.Members {
			if i > 0 {
				b.WriteByte(',')
			}
			m.writeKey(b)
		}
		b.WriteByte(')')
	case KindRecord:
		b.WriteString("record{")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Name)
			if f.Optional {
				b.WriteByte('?')
			}
			b.WriteByte(':')
			f.Type.writeKey(b)
		}
		b.WriteByte('}')
	case KindGeneric:
		t.Base.writeKey(b)
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			a.writeKey(b)
		}
		b.WriteByte('>')
	case KindFunction:
		if t.Ctor {
			b.WriteString("new")
		}
		b.WriteString("fn(")
		for i, p := range t.Params {
			if i > 0 {
				b.WriteByte(',')
			}
			if p.Variadic {
				b.WriteString("...")
			}
			p.Type.writeKey(b)
			if p.Optional {
				b.WriteByte('=')
			}
		}
		b.WriteString("):")
		t.Return.writeKey(b)
	case KindIndexSignature:
		b.WriteString("index[")
		t.IndexKey.writeKey(b)
		if t.CoercedFrom != "" {
			b.WriteString("~")
			b.WriteString(t.CoercedFrom)
		}
		b.WriteString("]:")
		t.Value.writeKey(b)
	}
}

// Walk calls fn for t and every nested expression, depth first.
func Walk(t *TypeExpr, fn func(*TypeExpr)) {
	if t == nil {
		return
	}
	fn(t)
	Walk(t.Inner, fn)
	for _, m := range t.Members {
		Walk(m, fn)
	}
	for _, f := range t.Fields {
		Walk(f.Type, fn)
	}
	Walk(t.Base, fn)
	for _, a := range t.Args {
		Walk(a, fn)
	}
	for _, p := range t.Params {
		Walk(p.Type, fn)
	}
	Walk(t.Return, fn)
	Walk(t.IndexKey, fn)
	Walk(t.Value, fn)
}
