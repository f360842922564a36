package symbols

import (
	"sort"

	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/typeexpr"
)

// Builder collects units and symbols in any order. Heritage references may
// name symbols added later; they are resolved by Build.
type Builder struct {
	symbols    []*Symbol
	byName     map[string]ID
	units      []*ModuleDecl
	unitByName map[string]*ModuleDecl
	built      bool
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		byName:     make(map[string]ID),
		unitByName: make(map[string]*ModuleDecl),
	}
}

// AddUnit registers a translation unit. Unit names must be unique.
func (b *Builder) AddUnit(m *ModuleDecl) error {
	if b.built {
		return errors.AssertionFailedf("builder already built")
	}
	if m.Name == "" {
		return errors.NewInvalidOracleError("unit without a namespace (file %q)", m.File)
	}
	if _, dup := b.unitByName[m.Name]; dup {
		return errors.NewInvalidOracleError("duplicate unit %q", m.Name)
	}
	b.units = append(b.units, m)
	b.unitByName[m.Name] = m
	return nil
}

// AddSymbol registers s and assigns its ID. Qualified names must be unique.
func (b *Builder) AddSymbol(s *Symbol) (ID, error) {
	if b.built {
		return NoID, errors.AssertionFailedf("builder already built")
	}
	if s.Name == "" {
		return NoID, errors.NewInvalidOracleError("symbol without a name in unit %q", s.Unit)
	}
	if _, dup := b.byName[s.Name]; dup {
		return NoID, errors.NewInvalidOracleError("duplicate symbol %q", s.Name)
	}
	b.symbols = append(b.symbols, s)
	s.ID = ID(len(b.symbols))
	b.byName[s.Name] = s.ID
	return s.ID, nil
}

// Build resolves references and returns the immutable graph. The builder
// must not be used afterwards.
func (b *Builder) Build() (*Graph, error) {
	if b.built {
		return nil, errors.AssertionFailedf("builder already built")
	}
	b.built = true

	g := &Graph{
		symbols:    b.symbols,
		byName:     b.byName,
		units:      b.units,
		unitByName: b.unitByName,
		children:   make(map[string][]ID),
	}

	for _, s := range g.symbols {
		if s.Unit != "" {
			if _, ok := g.unitByName[s.Unit]; !ok {
				return nil, errors.NewInvalidOracleError("symbol %q names unknown unit %q", s.Name, s.Unit)
			}
		}
		parent := s.Namespace()
		g.children[parent] = append(g.children[parent], s.ID)
	}
	for parent, ids := range g.children {
		sort.Slice(ids, func(i, j int) bool {
			return g.Symbol(ids[i]).Name < g.Symbol(ids[j]).Name
		})
		g.children[parent] = ids
	}

	for _, m := range g.units {
		m.Symbols = nil
		m.Missing = nil
		for _, req := range m.Requires {
			if _, ok := g.unitByName[req.Module]; !ok && !contains(m.Missing, req.Module) {
				m.Missing = append(m.Missing, req.Module)
			}
		}
	}
	for _, s := range g.symbols {
		if m, ok := g.unitByName[s.Unit]; ok {
			m.Symbols = append(m.Symbols, s.ID)
		}
	}

	g.resolveRefs()
	g.propagateOverrides()
	return g, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (g *Graph) resolveRefs() {
	for _, s := range g.symbols {
		if s.Class == nil {
			continue
		}
		unit := g.unitByName[s.Unit]
		resolve := func(r *Ref) {
			if target, ok := g.ResolveName(unit, r.Name); ok && target.ID != s.ID {
				r.Target = target.ID
			}
		}
		if s.Class.Super != nil {
			resolve(s.Class.Super)
		}
		for i := range s.Class.Implements {
			resolve(&s.Class.Implements[i])
		}
		for i := range s.Class.Extends {
			resolve(&s.Class.Extends[i])
		}
	}
}

// propagateOverrides gives every untyped override its base signature, or
// the inferred (x?: any): void form when no base declares the member.
// Bases are processed before derived classes; cycles are cut on revisit.
func (g *Graph) propagateOverrides() {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[ID]int)

	var visit func(s *Symbol)
	visit = func(s *Symbol) {
		if s == nil || s.Class == nil || state[s.ID] != unvisited {
			return
		}
		state[s.ID] = visiting
		for _, r := range g.directBases(s) {
			visit(g.Symbol(r.Target))
		}

		for i := range s.Class.Members {
			m := &s.Class.Members[i]
			if m.Kind != Method || !m.Override || !m.Signature.Untyped() {
				continue
			}
			if sig, ok := g.findBaseSignature(s, m.Name, m.Static, map[ID]bool{s.ID: true}); ok {
				m.Signature = sig
				m.Inherited = true
				continue
			}
			m.Signature = inferredSignature(m.Signature)
			m.InferredOverride = true
		}
		state[s.ID] = done
	}

	for _, s := range g.symbols {
		visit(s)
	}
}

// directBases returns resolved heritage refs: superclass first, then interfaces.
func (g *Graph) directBases(s *Symbol) []Ref {
	var out []Ref
	if s.Class.Super != nil && s.Class.Super.Resolved() {
		out = append(out, *s.Class.Super)
	}
	for _, r := range s.Class.Implements {
		if r.Resolved() {
			out = append(out, r)
		}
	}
	for _, r := range s.Class.Extends {
		if r.Resolved() {
			out = append(out, r)
		}
	}
	return out
}

// findBaseSignature searches the superclass chain, then interfaces, for a
// typed method called name. The result is expressed in s's type parameters.
func (g *Graph) findBaseSignature(s *Symbol, name string, static bool, visited map[ID]bool) (*Signature, bool) {
	bases := g.directBases(s)
	for _, r := range bases {
		base := g.Symbol(r.Target)
		if base == nil || base.Class == nil || visited[base.ID] {
			continue
		}
		if static && (s.Class.Super == nil || r.Target != s.Class.Super.Target) {
			continue
		}
		visited[base.ID] = true

		bindings := typeexpr.Bind(TypeParamNames(base.Class.TypeParams), r.Args)
		if sig, ok := ownSignature(base, name, static); ok {
			return substituteSignature(sig, bindings), true
		}
		if sig, ok := g.findBaseSignature(base, name, static, visited); ok {
			return substituteSignature(sig, bindings), true
		}
	}
	return nil, false
}

func ownSignature(s *Symbol, name string, static bool) (*Signature, bool) {
	for _, m := range s.Class.Members {
		if m.Name != name || m.Static != static || m.Kind != Method {
			continue
		}
		if m.InferredOverride || m.Signature.Untyped() {
			return nil, false
		}
		return m.Signature, true
	}
	return nil, false
}

func substituteSignature(sig *Signature, bindings map[string]*typeexpr.TypeExpr) *Signature {
	out := sig.Clone()
	if len(bindings) == 0 {
		return out
	}
	out.Params = typeexpr.SubstituteParams(out.Params, bindings)
	out.Return = typeexpr.Substitute(out.Return, bindings)
	return out
}

// inferredSignature keeps the override's parameter names, makes each one an
// optional any, and returns void.
func inferredSignature(sig *Signature) *Signature {
	out := &Signature{Return: typeexpr.Primitive(typeexpr.Void)}
	if sig == nil {
		return out
	}
	out.TypeParams = sig.TypeParams
	for _, p := range sig.Params {
		out.Params = append(out.Params, typeexpr.Param{
			Name:     p.Name,
			Type:     typeexpr.Any(),
			Optional: !p.Variadic,
			Variadic: p.Variadic,
		})
	}
	return out
}
