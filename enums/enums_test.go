package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/symbols"
	"github.com/teranos/clutz/typeexpr"
)

var scope = typeexpr.ScopeFunc(func(name string) (typeexpr.Decl, bool) {
	if name == "X" {
		return typeexpr.Decl{Target: "ಠ_ಠ.clutz.X"}, true
	}
	return typeexpr.Decl{}, false
})

func known(name, value string) symbols.EnumMember {
	return symbols.EnumMember{Name: name, Value: value, Known: true}
}

func unknown(name string) symbols.EnumMember {
	return symbols.EnumMember{Name: name}
}

func enumDecl(typ string, members ...symbols.EnumMember) *symbols.EnumDecl {
	d := &symbols.EnumDecl{Members: members}
	if typ != "" {
		d.Type = typeexpr.MustParse(typ)
	}
	return d
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name        string
		decl        *symbols.EnumDecl
		wantStyle   Style
		wantKind    ValueKind
		wantType    string
		wantMembers []Member
		wantDiags   int
	}{
		{
			name:        "SomeEnum",
			decl:        enumDecl("number", known("A", "1"), known("B", "2")),
			wantStyle:   Native,
			wantKind:    Numeric,
			wantMembers: []Member{{"A", "1"}, {"B", "2"}},
		},
		{
			name:        "DefaultsToNumber",
			decl:        enumDecl("", known("FAKE", "0"), known("PROD", "4")),
			wantStyle:   Native,
			wantKind:    Numeric,
			wantMembers: []Member{{"FAKE", "0"}, {"PROD", "4"}},
		},
		{
			name:        "StringEnum",
			decl:        enumDecl("string", known("A", "'1'"), known("B", `"2"`)),
			wantStyle:   Native,
			wantKind:    StringValued,
			wantMembers: []Member{{"A", "'1'"}, {"B", "'2'"}},
		},
		{
			name:        "EscapedEnum",
			decl:        enumDecl("string", known("A", `'\\'`)),
			wantStyle:   Native,
			wantKind:    StringValued,
			wantMembers: []Member{{"A", `'\\'`}},
		},
		{
			name:        "MixedEnum",
			decl:        enumDecl("string|number|boolean", known("A", "'a'"), known("B", "1"), known("C", "true")),
			wantStyle:   Branded,
			wantKind:    Mixed,
			wantType:    "(string | number | boolean) & {clutzEnumBrand: never}",
			wantMembers: []Member{{"A", "MixedEnum"}, {"B", "MixedEnum"}, {"C", "MixedEnum"}},
		},
		{
			name:        "ObjectValuedEnum",
			decl:        enumDecl("X", known("A", "new X()"), unknown("B")),
			wantStyle:   Branded,
			wantKind:    ObjectValued,
			wantType:    "(ಠ_ಠ.clutz.X) & {clutzEnumBrand: never}",
			wantMembers: []Member{{"A", "ObjectValuedEnum"}, {"B", "ObjectValuedEnum"}},
		},
		{
			name:        "PartialLiteralStringEnum",
			decl:        enumDecl("string", known("A", "'1'"), unknown("B"), known("C", "'2'"), unknown("D")),
			wantStyle:   Branded,
			wantKind:    PartialLiteral,
			wantType:    "(string) & {clutzEnumBrand: never} | '1' | '2'",
			wantMembers: []Member{{"A", "'1'"}, {"B", "PartialLiteralStringEnum"}, {"C", "'2'"}, {"D", "PartialLiteralStringEnum"}},
			wantDiags:   2,
		},
		{
			name:        "StringVariableEnum",
			decl:        enumDecl("string", unknown("A"), unknown("B")),
			wantStyle:   Branded,
			wantKind:    Mixed,
			wantType:    "(string) & {clutzEnumBrand: never}",
			wantMembers: []Member{{"A", "StringVariableEnum"}, {"B", "StringVariableEnum"}},
			wantDiags:   2,
		},
		{
			name:        "NumberAsKey",
			decl:        enumDecl("string", known("1", "'a'"), known("2", "'b'")),
			wantStyle:   Branded,
			wantKind:    PartialLiteral,
			wantType:    "(string) & {clutzEnumBrand: never} | 'a' | 'b'",
			wantMembers: []Member{{"1", "'a'"}, {"2", "'b'"}},
		},
		{
			name:        "WrongLiteralKind",
			decl:        enumDecl("number", known("A", "1"), known("B", "'x'")),
			wantStyle:   Branded,
			wantKind:    PartialLiteral,
			wantType:    "(number) & {clutzEnumBrand: never} | 1",
			wantMembers: []Member{{"A", "1"}, {"B", "WrongLiteralKind"}},
			wantDiags:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := diag.NewCollector()
			tr := typeexpr.NewTranslator(scope, c)

			got := Translate(tt.name, tt.decl, tr, c)
			assert.Equal(t, tt.wantStyle, got.Style)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantMembers, got.Members)
			assert.Equal(t, tt.wantDiags, c.Count(diag.AmbiguousEnumLiteral))
		})
	}
}

func TestAmbiguousDiagnosticNamesMember(t *testing.T) {
	c := diag.NewCollector()
	Translate("E", enumDecl("number", unknown("Z")), typeexpr.NewTranslator(nil, nil), c)

	all := c.All()
	require.Len(t, all, 1)
	assert.Equal(t, "E.Z", all[0].Symbol)
	assert.Equal(t, diag.Warning, all[0].Severity)
}

func TestNilDecl(t *testing.T) {
	got := Translate("Empty", nil, typeexpr.NewTranslator(nil, nil), nil)
	assert.Equal(t, Native, got.Style)
	assert.Empty(t, got.Members)
}

func TestUnquote(t *testing.T) {
	s, ok := unquote(`a\'b\\c\n`)
	require.True(t, ok)
	assert.Equal(t, "a'b\\c\n", s)

	_, ok = unquote(`dangling\`)
	assert.False(t, ok)
}
