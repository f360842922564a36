// Package enums decides how a Closure enum is represented in TypeScript.
//
// Enums whose values are all known numeric or string literals, with member
// names that are valid identifiers, become native `enum` declarations.
// Everything else becomes a branded type alias plus a value holder:
//
//	type X = (string | number) & {clutzEnumBrand: never};
//	let X: {A: X, B: X};
//
// When some (or all, for non-identifier member names) string or numeric
// values are known, their literals join the alias and type their holders.
package enums

import (
	"strconv"
	"strings"

	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/symbols"
	"github.com/teranos/clutz/typeexpr"
)

// Brand is intersected with the element type of every branded enum.
const Brand = "{clutzEnumBrand: never}"

// Style of the emitted declaration.
type Style uint8

const (
	// Native is a TypeScript `enum`.
	Native Style = iota
	// Branded is a `type` alias plus a `let` value holder.
	Branded
)

// ValueKind classifies an enum's values.
type ValueKind uint8

const (
	Numeric ValueKind = iota
	StringValued
	Mixed
	ObjectValued
	PartialLiteral
)

var valueKindNames = map[ValueKind]string{
	Numeric:        "numeric",
	StringValued:   "string",
	Mixed:          "mixed",
	ObjectValued:   "object-valued",
	PartialLiteral: "partial-literal",
}

func (k ValueKind) String() string {
	return valueKindNames[k]
}

// Member of a translated enum. For Native enums Value is the initializer;
// for Branded enums it is the holder's type.
type Member struct {
	Name  string
	Value string
}

// Result is the translated enum.
type Result struct {
	Style Style
	Kind  ValueKind
	// Type is the alias right-hand side for Branded enums.
	Type    string
	Members []Member
}

type literal struct {
	kind  ValueKind
	text  string
	known bool
}

// Translate classifies decl and builds its representation. name is the
// enum's emitted (unqualified) name, used as the holder type for members
// without a literal. Unknown values are reported as AmbiguousEnumLiteral.
func Translate(name string, decl *symbols.EnumDecl, tr *typeexpr.Translator, sink diag.Sink) Result {
	if sink == nil {
		sink = diag.Discard
	}
	if decl == nil {
		decl = &symbols.EnumDecl{}
	}

	declared := tr.Translate(decl.Type)
	if decl.Type == nil {
		declared = typeexpr.Primitive(typeexpr.Number)
	}
	elemKind, primitive := primitiveKind(declared)

	lits := make([]literal, len(decl.Members))
	allKnown, anyKnown, identifiers := true, false, true
	for i, m := range decl.Members {
		lit := parseLiteral(m)
		if lit.known && primitive && lit.kind != elemKind {
			lit.known = false
		}
		if lit.known {
			anyKnown = true
		} else {
			allKnown = false
			if primitive {
				sink.Report(diag.New(diag.AmbiguousEnumLiteral, name+"."+m.Name,
					"enum member %s has no %s literal value", m.Name, typeexpr.Render(declared)))
			}
		}
		if !typeexpr.IsIdentifier(m.Name) {
			identifiers = false
		}
		lits[i] = lit
	}

	base := "(" + typeexpr.Render(declared) + ") & " + Brand

	if !primitive {
		kind := Mixed
		if declared.Kind != typeexpr.KindUnion && !declared.IsPrimitive(typeexpr.Boolean) {
			kind = ObjectValued
		}
		return branded(name, kind, base, decl, nil)
	}

	if elemKind == StringValued || elemKind == Numeric {
		if allKnown && identifiers {
			res := Result{Style: Native, Kind: elemKind}
			for i, m := range decl.Members {
				res.Members = append(res.Members, Member{Name: m.Name, Value: lits[i].text})
			}
			return res
		}
		if anyKnown {
			return branded(name, PartialLiteral, base, decl, lits)
		}
	}
	return branded(name, Mixed, base, decl, nil)
}

// branded builds the alias form; lits, when set, supplies literal holders.
func branded(name string, kind ValueKind, base string, decl *symbols.EnumDecl, lits []literal) Result {
	res := Result{Style: Branded, Kind: kind, Type: base}
	seen := make(map[string]bool)
	for i, m := range decl.Members {
		holder := name
		if lits != nil && lits[i].known {
			holder = lits[i].text
			if !seen[holder] {
				seen[holder] = true
				res.Type += " | " + holder
			}
		}
		res.Members = append(res.Members, Member{Name: m.Name, Value: holder})
	}
	return res
}

// primitiveKind reports which literal kind a declared element type admits.
func primitiveKind(t *typeexpr.TypeExpr) (ValueKind, bool) {
	switch {
	case t.IsPrimitive(typeexpr.Number):
		return Numeric, true
	case t.IsPrimitive(typeexpr.String):
		return StringValued, true
	}
	return Mixed, false
}

func parseLiteral(m symbols.EnumMember) literal {
	if !m.Known {
		return literal{}
	}
	v := strings.TrimSpace(m.Value)
	if v == "" {
		return literal{}
	}
	if q := v[0]; (q == '\'' || q == '"') && len(v) >= 2 && v[len(v)-1] == q {
		s, ok := unquote(v[1 : len(v)-1])
		if !ok {
			return literal{}
		}
		return literal{kind: StringValued, text: typeexpr.QuoteString(s), known: true}
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return literal{kind: Numeric, text: v, known: true}
	}
	return literal{kind: Mixed, text: v}
}

// unquote decodes the body of a JavaScript string literal.
func unquote(body string) (string, bool) {
	var b strings.Builder
	escaped := false
	for _, c := range body {
		if escaped {
			switch c {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteRune(c)
			}
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(c)
	}
	return b.String(), !escaped
}
