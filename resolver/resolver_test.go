package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/symbols"
	"github.com/teranos/clutz/typeexpr"
)

func buildGraph(t *testing.T, units []*symbols.ModuleDecl, syms ...*symbols.Symbol) *symbols.Graph {
	t.Helper()
	b := symbols.NewBuilder()
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

func TestResolveProvideForms(t *testing.T) {
	g := buildGraph(t,
		[]*symbols.ModuleDecl{
			{Name: "a.b.C", Style: symbols.StyleProvide, File: "c.js"},
			{Name: "a.ns", Style: symbols.StyleProvide, File: "ns.js"},
			{Name: "a.v", Style: symbols.StyleProvide, File: "v.js"},
		},
		&symbols.Symbol{Name: "a.b.C", Kind: symbols.KindClass, Unit: "a.b.C", Class: &symbols.ClassDecl{}},
		&symbols.Symbol{Name: "a.ns.f", Kind: symbols.KindFunction, Unit: "a.ns", Function: &symbols.Signature{}},
		&symbols.Symbol{Name: "a.v", Kind: symbols.KindVariable, Unit: "a.v", Variable: &symbols.VariableDecl{}},
	)
	sink := diag.NewCollector()
	r := New(g, "", sink)

	units, err := r.ResolveAll(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 3)

	assert.Equal(t, Resolved, units[0].State)
	assert.Equal(t, ExportDefault, units[0].Form)
	assert.Equal(t, "ಠ_ಠ.clutz.a.b.C", units[0].Target)

	assert.Equal(t, Resolved, units[1].State)
	assert.Equal(t, ExportAssign, units[1].Form)
	assert.Nil(t, units[1].Self)
	assert.Equal(t, "ಠ_ಠ.clutz.a.ns", units[1].Target)

	assert.Equal(t, ExportAssign, units[2].Form)
	assert.Equal(t, 0, sink.Len())
}

func TestEmptyProvideDegrades(t *testing.T) {
	g := buildGraph(t,
		[]*symbols.ModuleDecl{
			{Name: "empty", Style: symbols.StyleProvide, File: "empty.js"},
			{Name: "ok", Style: symbols.StyleProvide},
		},
		&symbols.Symbol{Name: "ok", Kind: symbols.KindFunction, Unit: "ok", Function: &symbols.Signature{}},
	)
	sink := diag.NewCollector()
	r := New(g, "", sink)

	units, err := r.ResolveAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Degraded, units[0].State)
	assert.True(t, errors.IsFatalGraphError(units[0].Err))
	assert.Equal(t, Resolved, units[1].State)

	all := sink.All()
	require.Len(t, all, 1)
	assert.Equal(t, diag.FatalGraphError, all[0].Code)
	assert.Equal(t, diag.Error, all[0].Severity)
	assert.Equal(t, "empty", all[0].Unit)
	assert.Equal(t, "empty.js", all[0].File)
}

func TestMemberlessNamespaceDegrades(t *testing.T) {
	g := buildGraph(t,
		[]*symbols.ModuleDecl{
			{Name: "ns", Style: symbols.StyleProvide},
			{Name: "full", Style: symbols.StyleProvide},
		},
		&symbols.Symbol{Name: "ns", Kind: symbols.KindNamespace, Unit: "ns"},
		&symbols.Symbol{Name: "full", Kind: symbols.KindNamespace, Unit: "full"},
		&symbols.Symbol{Name: "full.x", Kind: symbols.KindVariable, Unit: "full", Variable: &symbols.VariableDecl{Type: typeexpr.MustParse("number")}},
	)
	sink := diag.NewCollector()
	units, err := New(g, "", sink).ResolveAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Degraded, units[0].State)
	assert.True(t, errors.IsFatalGraphError(units[0].Err))
	assert.Equal(t, Resolved, units[1].State)
	assert.Equal(t, 1, sink.Count(diag.FatalGraphError))
}

func TestResolveModuleExports(t *testing.T) {
	g := buildGraph(t,
		[]*symbols.ModuleDecl{{
			Name:  "foo.bar",
			Style: symbols.StyleModule,
			Exports: []symbols.Export{
				{Name: "Widget", Symbol: "module$contents$foo$bar_Widget"},
				{Name: "gone", Symbol: "module$contents$foo$bar_gone"},
			},
		}},
		&symbols.Symbol{Name: "module$contents$foo$bar_Widget", Kind: symbols.KindClass, Unit: "foo.bar", Class: &symbols.ClassDecl{}},
	)
	sink := diag.NewCollector()
	r := New(g, "", sink)

	u, err := r.Resolve("foo.bar")
	require.NoError(t, err)
	assert.Equal(t, Resolved, u.State)
	require.Len(t, u.Exports, 1)
	assert.Equal(t, "Widget", u.Exports[0].Name)
	assert.Equal(t, ExportAssign, u.Form)
	assert.Equal(t, "ಠ_ಠ.clutz.module$exports$foo$bar", u.Target)
	assert.Equal(t, 1, sink.Count(diag.UnresolvableReference))
}

func TestResolveModuleDefault(t *testing.T) {
	g := buildGraph(t,
		[]*symbols.ModuleDecl{{Name: "m", Style: symbols.StyleModule, Default: "module$contents$m_E"}},
		&symbols.Symbol{Name: "module$contents$m_E", Kind: symbols.KindEnum, Unit: "m", Enum: &symbols.EnumDecl{}},
	)
	r := New(g, "ns", nil)
	u, err := r.Resolve("m")
	require.NoError(t, err)
	assert.Equal(t, ExportDefault, u.Form)
	assert.Equal(t, "ns.module$contents$m_E", u.Target)
}

func TestModuleWithoutExportsDegrades(t *testing.T) {
	g := buildGraph(t, []*symbols.ModuleDecl{{Name: "m", Style: symbols.StyleModule}})
	r := New(g, "", nil)
	u, err := r.Resolve("m")
	require.NoError(t, err)
	assert.Equal(t, Degraded, u.State)
	assert.Equal(t, Degraded, r.State("m"))
}

func TestResolveUnknownUnit(t *testing.T) {
	r := New(buildGraph(t, nil), "", nil)
	_, err := r.Resolve("nope")
	assert.True(t, errors.IsNotFoundError(err))
	assert.Equal(t, Unresolved, r.State("nope"))
}

func TestRequireCycle(t *testing.T) {
	g := buildGraph(t,
		[]*symbols.ModuleDecl{
			{Name: "a", Style: symbols.StyleProvide, Requires: []symbols.Require{{Local: "b", Module: "b"}}},
			{Name: "b", Style: symbols.StyleProvide, Requires: []symbols.Require{{Local: "a", Module: "a"}}},
		},
		&symbols.Symbol{Name: "a", Kind: symbols.KindClass, Unit: "a", Class: &symbols.ClassDecl{}},
		&symbols.Symbol{Name: "b", Kind: symbols.KindClass, Unit: "b", Class: &symbols.ClassDecl{}},
	)
	r := New(g, "", nil)
	units, err := r.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Resolved, units[0].State)
	assert.Equal(t, Resolved, units[1].State)
}

func TestResolveAllCancelled(t *testing.T) {
	g := buildGraph(t, []*symbols.ModuleDecl{{Name: "m", Style: symbols.StyleModule}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(g, "", nil).ResolveAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScopeLookupType(t *testing.T) {
	g := buildGraph(t,
		[]*symbols.ModuleDecl{
			{Name: "lib", Style: symbols.StyleModule, Exports: []symbols.Export{{Name: "Box", Symbol: "module$contents$lib_Box"}}},
			{
				Name:  "app",
				Style: symbols.StyleModule,
				Requires: []symbols.Require{
					{Local: "lib", Module: "lib"},
					{Local: "gone", Module: "not.here"},
				},
				Default: "module$contents$app_helper",
			},
		},
		&symbols.Symbol{
			Name: "module$contents$lib_Box", Kind: symbols.KindClass, Unit: "lib",
			Class: &symbols.ClassDecl{TypeParams: []symbols.TypeParam{{Name: "T"}}},
		},
		&symbols.Symbol{Name: "module$contents$app_helper", Kind: symbols.KindFunction, Unit: "app", Function: &symbols.Signature{}},
	)
	sink := diag.NewCollector()
	r := New(g, "", sink)
	_, err := r.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sink.Count(diag.MissingImport))

	scope := r.ScopeFor("app")
	decl, ok := scope.LookupType("lib.Box")
	require.True(t, ok)
	assert.Equal(t, "ಠ_ಠ.clutz.module$contents$lib_Box", decl.Target)
	assert.Equal(t, 1, decl.Arity)

	_, ok = scope.LookupType("helper")
	assert.False(t, ok, "functions are not types")
	assert.Contains(t, scope.Explain("helper"), "not a type")

	_, ok = scope.LookupType("gone.Thing")
	assert.False(t, ok)
	assert.Equal(t, `module "not.here" is not in the input`, scope.Explain("gone.Thing"))

	tr := typeexpr.NewTranslator(scope, sink)
	got := tr.Translate(typeexpr.MustParse("lib.Box"))
	assert.Equal(t, "ಠ_ಠ.clutz.module$contents$lib_Box<any>", typeexpr.Render(got))
}

func TestScopeHidesDegradedUnits(t *testing.T) {
	g := buildGraph(t,
		[]*symbols.ModuleDecl{
			{Name: "broken", Style: symbols.StyleModule},
			{Name: "user", Style: symbols.StyleProvide, Requires: []symbols.Require{{Local: "broken", Module: "broken"}}},
		},
		&symbols.Symbol{Name: "module$contents$broken_X", Kind: symbols.KindClass, Unit: "broken", Class: &symbols.ClassDecl{}},
		&symbols.Symbol{Name: "user", Kind: symbols.KindClass, Unit: "user", Class: &symbols.ClassDecl{}},
	)
	r := New(g, "", nil)
	units, err := r.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Degraded, units[0].State)
	assert.Equal(t, Resolved, units[1].State)

	scope := r.ScopeFor("user")
	_, ok := scope.LookupType("module$contents$broken_X")
	assert.False(t, ok)
	assert.Equal(t, `module "broken" could not be declared`, scope.Explain("broken.X"))
}
