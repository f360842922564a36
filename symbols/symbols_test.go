package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/typeexpr"
)

func param(name, typ string) typeexpr.Param {
	p := typeexpr.Param{Name: name}
	if typ != "" {
		p.Type = typeexpr.MustParse(typ)
	}
	return p
}

func method(name string, override bool, ret string, params ...typeexpr.Param) Member {
	sig := &Signature{Params: params}
	if ret != "" {
		sig.Return = typeexpr.MustParse(ret)
	}
	return Member{Name: name, Kind: Method, Override: override, Signature: sig}
}

func class(name, unit string, decl *ClassDecl) *Symbol {
	return &Symbol{Name: name, Kind: KindClass, Unit: unit, Class: decl}
}

func mustBuild(t *testing.T, units []*ModuleDecl, syms ...*Symbol) *Graph {
	t.Helper()
	b := NewBuilder()
	for _, u := range units {
		require.NoError(t, b.AddUnit(u))
	}
	for _, s := range syms {
		_, err := b.AddSymbol(s)
		require.NoError(t, err)
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func sigString(sig *Signature) string {
	return typeexpr.RenderParams(sig.Params) + " => " + typeexpr.Render(sig.Return)
}

func TestOverridePropagation(t *testing.T) {
	units := []*ModuleDecl{{Name: "override", Style: StyleModule}}

	// Derived classes are added before their bases: refs resolve lazily.
	extendsBase := class("module$contents$override_ExtendsBase", "override", &ClassDecl{
		Super:   &Ref{Name: "Base"},
		Members: []Member{method("method", true, "", param("x", ""))},
	})
	extendsInvisible := class("module$contents$override_ExtendsInvisible", "override", &ClassDecl{
		Super: &Ref{Name: "Invisible"},
		Members: []Member{
			method("inferredOverride", true, "", param("x", "")),
			method("overrideWithType", true, "number", param("x", "number")),
			method("nonOverride", false, "", param("x", "number")),
		},
	})
	base := class("module$contents$override_Base", "override", &ClassDecl{
		Members: []Member{method("method", false, "void", param("x", "number"))},
	})

	g := mustBuild(t, units, extendsBase, extendsInvisible, base)

	require.True(t, extendsBase.Class.Super.Resolved())
	assert.Equal(t, base.ID, extendsBase.Class.Super.Target)
	assert.False(t, extendsInvisible.Class.Super.Resolved())

	m := extendsBase.Class.Members[0]
	assert.True(t, m.Inherited)
	assert.Equal(t, "x: number => void", sigString(m.Signature))

	inferred := extendsInvisible.Class.Members[0]
	assert.True(t, inferred.InferredOverride)
	assert.Equal(t, "x?: any => void", sigString(inferred.Signature))

	typed := extendsInvisible.Class.Members[1]
	assert.False(t, typed.Inherited)
	assert.Equal(t, "x: number => number", sigString(typed.Signature))

	assert.False(t, extendsInvisible.Class.Members[2].InferredOverride)
	assert.NotNil(t, g)
}

func TestOverrideThroughGenericBase(t *testing.T) {
	units := []*ModuleDecl{{Name: "g"}}
	base := class("g.Base", "g", &ClassDecl{
		TypeParams: []TypeParam{{Name: "T"}},
		Members:    []Member{method("set", false, "void", param("t", "T"))},
	})
	mid := class("g.Mid", "g", &ClassDecl{
		TypeParams: []TypeParam{{Name: "U"}},
		Super:      &Ref{Name: "g.Base", Args: []*typeexpr.TypeExpr{typeexpr.MustParse("Array<U>")}},
	})
	leaf := class("g.Leaf", "g", &ClassDecl{
		Super:   &Ref{Name: "g.Mid", Args: []*typeexpr.TypeExpr{typeexpr.MustParse("string")}},
		Members: []Member{method("set", true, "", param("t", ""))},
	})

	mustBuild(t, units, leaf, mid, base)

	sig := leaf.Class.Members[0].Signature
	tr := typeexpr.NewTranslator(nil, nil)
	assert.Equal(t, "string[]", typeexpr.Render(tr.Translate(sig.Params[0].Type)))
}

func TestOverrideFromInterface(t *testing.T) {
	units := []*ModuleDecl{{Name: "i"}}
	iface := &Symbol{Name: "i.Shape", Kind: KindInterface, Unit: "i", Class: &ClassDecl{
		Members: []Member{method("area", false, "number", param("scale", "number"))},
	}}
	impl := class("i.Square", "i", &ClassDecl{
		Implements: []Ref{{Name: "i.Shape"}},
		Members:    []Member{method("area", true, "", param("s", ""))},
	})

	mustBuild(t, units, impl, iface)
	assert.True(t, impl.Class.Members[0].Inherited)
	assert.Equal(t, "scale: number => number", sigString(impl.Class.Members[0].Signature))
}

func TestIndexSignatures(t *testing.T) {
	units := []*ModuleDecl{{Name: "index_signature"}}
	str := []*typeexpr.TypeExpr{typeexpr.MustParse("string")}

	arrayLike := class("index_signature.ImplementsIArrayLike", "index_signature", &ClassDecl{
		Implements: []Ref{{Name: "IArrayLike", Args: str}},
	})
	object := class("index_signature.ImplementsIObject", "index_signature", &ClassDecl{
		Implements: []Ref{{Name: "IObject", Args: []*typeexpr.TypeExpr{typeexpr.MustParse("string"), typeexpr.MustParse("number")}}},
	})
	iface := &Symbol{Name: "index_signature.InterfaceExtendingIArrayLike", Kind: KindInterface, Unit: "index_signature", Class: &ClassDecl{
		Extends: []Ref{{Name: "IArrayLike", Args: str}},
	}}
	should := class("index_signature.ShouldContainIndexSignature", "index_signature", &ClassDecl{
		Implements: []Ref{{Name: "index_signature.InterfaceExtendingIArrayLike"}},
	})
	shouldNot := class("index_signature.ShouldNotContainIndexSignature", "index_signature", &ClassDecl{
		Super: &Ref{Name: "index_signature.ImplementsIArrayLike"},
	})

	g := mustBuild(t, units, arrayLike, object, iface, should, shouldNot)

	sigs := g.IndexSignatures(arrayLike.ID)
	require.Len(t, sigs, 1)
	assert.True(t, sigs[0].Length)
	assert.Equal(t, "number", typeexpr.Render(sigs[0].Key))
	assert.Equal(t, "string", typeexpr.Render(sigs[0].Value))

	objSigs := g.IndexSignatures(object.ID)
	require.Len(t, objSigs, 1)
	assert.False(t, objSigs[0].Length)
	assert.Equal(t, "number", typeexpr.Render(objSigs[0].Value))

	require.Len(t, g.IndexSignatures(should.ID), 1)
	assert.Empty(t, g.IndexSignatures(shouldNot.ID))
	assert.Empty(t, g.IndexSignatures(iface.ID))
}

func TestResolveNameThroughRequires(t *testing.T) {
	units := []*ModuleDecl{
		{Name: "default.base.exporter", Style: StyleModule, Default: "module$exports$default$base$exporter"},
		{Name: "named.base.exporter", Style: StyleModule, Exports: []Export{{Name: "Original", Symbol: "module$contents$named$base$exporter_Original"}}},
		{Name: "legacy.ns"},
		{Name: "user", Style: StyleModule, Requires: []Require{
			{Local: "Default", Module: "default.base.exporter"},
			{Local: "named", Module: "named.base.exporter"},
			{Local: "legacy", Module: "legacy.ns"},
			{Local: "Gone", Module: "missing.module"},
		}},
	}
	g := mustBuild(t, units,
		class("module$exports$default$base$exporter", "default.base.exporter", &ClassDecl{}),
		class("module$contents$named$base$exporter_Original", "named.base.exporter", &ClassDecl{}),
		class("legacy.ns.Thing", "legacy.ns", &ClassDecl{}),
		class("module$contents$user_Local", "user", &ClassDecl{}),
	)
	user, ok := g.Unit("user")
	require.True(t, ok)

	tests := []struct {
		name string
		want string
	}{
		{"Default", "module$exports$default$base$exporter"},
		{"named.Original", "module$contents$named$base$exporter_Original"},
		{"legacy.Thing", "legacy.ns.Thing"},
		{"Local", "module$contents$user_Local"},
		{"legacy.ns.Thing", "legacy.ns.Thing"},
	}
	for _, tt := range tests {
		s, ok := g.ResolveName(user, tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.want, s.Name)
	}

	_, ok = g.ResolveName(user, "Gone")
	assert.False(t, ok)
	assert.Equal(t, []string{"missing.module"}, user.Missing)
	assert.True(t, user.IsMissing("missing.module"))
	assert.Len(t, user.Symbols, 1)
}

func TestResolveNameThroughDestructuredRequires(t *testing.T) {
	units := []*ModuleDecl{
		{Name: "named.base.exporter", Style: StyleModule, Exports: []Export{
			{Name: "Base", Symbol: "module$contents$named$base$exporter_Base"},
			{Name: "OriginalName", Symbol: "module$contents$named$base$exporter_OriginalName"},
		}},
		{Name: "legacy.ns"},
		{Name: "user", Style: StyleModule, Requires: []Require{
			{Local: "Base", Module: "named.base.exporter", Export: "Base"},
			{Local: "Renamed", Module: "named.base.exporter", Export: "OriginalName"},
			{Local: "Thing", Module: "legacy.ns", Export: "Thing"},
			{Local: "Gone", Module: "missing.module", Export: "Gone"},
		}},
	}
	g := mustBuild(t, units,
		class("module$contents$named$base$exporter_Base", "named.base.exporter", &ClassDecl{}),
		class("module$contents$named$base$exporter_OriginalName", "named.base.exporter", &ClassDecl{}),
		class("legacy.ns.Thing", "legacy.ns", &ClassDecl{}),
	)
	user, ok := g.Unit("user")
	require.True(t, ok)

	tests := []struct {
		name string
		want string
	}{
		{"Base", "module$contents$named$base$exporter_Base"},
		{"Renamed", "module$contents$named$base$exporter_OriginalName"},
		{"Thing", "legacy.ns.Thing"},
	}
	for _, tt := range tests {
		s, ok := g.ResolveName(user, tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.want, s.Name)
	}

	_, ok = g.ResolveName(user, "OriginalName")
	assert.False(t, ok)
	_, ok = g.ResolveName(user, "Gone")
	assert.False(t, ok)
	assert.True(t, user.IsMissing("missing.module"))
}

func TestBuilderErrors(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddUnit(&ModuleDecl{Name: "a"}))
	assert.True(t, errors.Is(b.AddUnit(&ModuleDecl{Name: "a"}), errors.ErrInvalidOracle))

	_, err := b.AddSymbol(&Symbol{Name: "a.X", Unit: "a", Kind: KindVariable})
	require.NoError(t, err)
	_, err = b.AddSymbol(&Symbol{Name: "a.X", Unit: "a", Kind: KindVariable})
	assert.True(t, errors.Is(err, errors.ErrInvalidOracle))

	_, err = b.AddSymbol(&Symbol{Name: "b.Y", Unit: "b", Kind: KindVariable})
	require.NoError(t, err)
	_, err = b.Build()
	assert.True(t, errors.Is(err, errors.ErrInvalidOracle))

	_, err = b.Build()
	assert.Error(t, err)
}

func TestGraphQueries(t *testing.T) {
	g := mustBuild(t, []*ModuleDecl{{Name: "a.b"}},
		&Symbol{Name: "a.b.z", Unit: "a.b", Kind: KindFunction, Function: &Signature{}},
		&Symbol{Name: "a.b.C", Unit: "a.b", Kind: KindClass, Class: &ClassDecl{}},
		&Symbol{Name: "a.b.C.T", Unit: "a.b", Kind: KindTypedef, Typedef: &TypedefDecl{}},
	)

	children := g.Children("a.b")
	require.Len(t, children, 2)
	assert.Equal(t, "a.b.C", children[0].Name)
	assert.Equal(t, "a.b.z", children[1].Name)
	assert.True(t, g.HasDescendants("a.b"))
	assert.False(t, g.HasDescendants("a.b.z"))
	assert.Nil(t, g.Symbol(NoID))
	assert.Nil(t, g.Symbol(99))
	assert.Equal(t, "C", children[0].BaseName())
	assert.Equal(t, "a.b", children[0].Namespace())
}

func TestModuleNames(t *testing.T) {
	assert.Equal(t, "module$exports$a$b", ModuleExportsName("a.b"))
	assert.Equal(t, "module$contents$override_Base", ModuleContentsName("override", "Base"))

	m := &ModuleDecl{Name: "override", Path: "src/testdata/override"}
	assert.Equal(t, []string{"goog:override", "src/testdata/override"}, m.Aliases())
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("constructor")
	require.True(t, ok)
	assert.Equal(t, KindClass, k)
	k, ok = ParseKind("typedef")
	require.True(t, ok)
	assert.Equal(t, KindTypedef, k)
	_, ok = ParseKind("bogus")
	assert.False(t, ok)
	assert.True(t, KindEnum.IsType())
	assert.False(t, KindFunction.IsType())
}
