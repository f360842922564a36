// Package symbols holds the resolved symbol graph the emitter reads.
//
// Symbols live in an arena and refer to each other by ID. A Builder collects
// declarations in any order; Build resolves heritage references in a second
// pass, propagates signatures to untyped overrides, and returns an immutable
// Graph that is safe to share between emission workers.
package symbols

import (
	"strings"

	"github.com/teranos/clutz/typeexpr"
)

// ID addresses a symbol in the graph arena. The zero ID names no symbol.
type ID int32

// NoID is the zero ID.
const NoID ID = 0

// Kind of a declared symbol.
type Kind uint8

const (
	KindClass Kind = iota + 1
	KindInterface
	KindRecord
	KindEnum
	KindFunction
	KindVariable
	KindTypedef
	KindNamespace
)

var kindNames = map[Kind]string{
	KindClass:     "class",
	KindInterface: "interface",
	KindRecord:    "record",
	KindEnum:      "enum",
	KindFunction:  "function",
	KindVariable:  "variable",
	KindTypedef:   "typedef",
	KindNamespace: "namespace",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps an oracle kind name to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	switch name {
	case "constructor":
		return KindClass, true
	case "const", "let", "var", "property":
		return KindVariable, true
	case "module":
		return KindNamespace, true
	}
	return 0, false
}

// IsType reports whether symbols of kind k name a type.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindInterface, KindRecord, KindEnum, KindTypedef:
		return true
	}
	return false
}

// IsInterfaceLike reports interfaces and records.
func (k Kind) IsInterfaceLike() bool {
	return k == KindInterface || k == KindRecord
}

// Visibility of a symbol or member.
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Private
)

// ParseVisibility maps an oracle visibility name; unknown names are public.
func ParseVisibility(name string) Visibility {
	switch name {
	case "private":
		return Private
	case "protected":
		return Protected
	}
	return Public
}

// Location in the original source.
type Location struct {
	File string
	Line int
}

// TypeParam is a template parameter with an optional default.
type TypeParam struct {
	Name    string
	Default *typeexpr.TypeExpr
}

// TypeParamNames returns the names of params.
func TypeParamNames(params []TypeParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// Ref is a weak reference to another symbol, resolved by Build.
type Ref struct {
	Name   string
	Args   []*typeexpr.TypeExpr
	Target ID
}

// Resolved reports whether Build found the referenced symbol.
func (r Ref) Resolved() bool { return r.Target != NoID }

// Signature of a function, method or constructor. Types are source form;
// a nil Return means no declared return type.
type Signature struct {
	TypeParams []TypeParam
	Params     []typeexpr.Param
	Return     *typeexpr.TypeExpr
}

// Untyped reports a signature carrying no type information at all.
func (s *Signature) Untyped() bool {
	if s == nil {
		return true
	}
	if s.Return != nil {
		return false
	}
	for _, p := range s.Params {
		if p.Type != nil {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the parameter list and a shallow copy of the rest.
func (s *Signature) Clone() *Signature {
	if s == nil {
		return nil
	}
	c := *s
	c.Params = append([]typeexpr.Param(nil), s.Params...)
	c.TypeParams = append([]TypeParam(nil), s.TypeParams...)
	return &c
}

// MemberKind distinguishes class and interface members.
type MemberKind uint8

const (
	Method MemberKind = iota
	Field
	// Index is an index signature; Key and Type hold the key and value types.
	Index
)

// Member of a class or interface.
type Member struct {
	Name       string
	Kind       MemberKind
	Type       *typeexpr.TypeExpr // Field, Index value
	Key        *typeexpr.TypeExpr // Index
	Signature  *Signature         // Method
	Static     bool
	Override   bool
	Optional   bool
	Visibility Visibility
	Doc        string
	Line       int

	// Inherited is set when Build copied the signature from a base member.
	Inherited bool
	// InferredOverride is set on an untyped override with no visible base.
	InferredOverride bool
}

// ClassDecl describes classes, interfaces and records.
type ClassDecl struct {
	TypeParams []TypeParam
	Super      *Ref
	Implements []Ref
	Extends    []Ref
	Ctor       *Signature
	Members    []Member
}

// EnumMember is one enum entry. Value is the literal source text
// (1, 'a', {x: 1}) when Known.
type EnumMember struct {
	Name  string
	Value string
	Known bool
}

// EnumDecl describes an enum and its declared element type.
type EnumDecl struct {
	Type    *typeexpr.TypeExpr
	Members []EnumMember
}

// VariableDecl describes a variable or constant.
type VariableDecl struct {
	Type  *typeexpr.TypeExpr
	Const bool
}

// TypedefDecl describes a type alias.
type TypedefDecl struct {
	TypeParams []TypeParam
	Type       *typeexpr.TypeExpr
}

// Symbol is one declaration in the graph.
type Symbol struct {
	ID         ID
	Name       string
	Kind       Kind
	Visibility Visibility
	Location   Location
	Doc        string
	Unit       string

	Class    *ClassDecl
	Enum     *EnumDecl
	Function *Signature
	Variable *VariableDecl
	Typedef  *TypedefDecl
}

// Namespace returns the dotted parent of the symbol's name ("" at top level).
func (s *Symbol) Namespace() string {
	return Parent(s.Name)
}

// BaseName returns the last segment of the symbol's name.
func (s *Symbol) BaseName() string {
	return BaseName(s.Name)
}

// TypeParams returns the symbol's template parameters, whatever its kind.
func (s *Symbol) TypeParams() []TypeParam {
	switch {
	case s.Class != nil:
		return s.Class.TypeParams
	case s.Typedef != nil:
		return s.Typedef.TypeParams
	case s.Function != nil:
		return s.Function.TypeParams
	}
	return nil
}

// Parent returns the dotted parent of name.
func Parent(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// BaseName returns the last dotted segment of name.
func BaseName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
