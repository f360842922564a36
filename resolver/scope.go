package resolver

import (
	"fmt"
	"strings"

	"github.com/teranos/clutz/symbols"
	"github.com/teranos/clutz/typeexpr"
)

// Scope resolves type names as written inside one unit.
type Scope struct {
	resolver *Resolver
	unit     *symbols.ModuleDecl
}

var (
	_ typeexpr.Scope     = (*Scope)(nil)
	_ typeexpr.Explainer = (*Scope)(nil)
)

// ScopeFor returns the scope of the named unit, or a global-only scope when
// the unit is unknown.
func (r *Resolver) ScopeFor(unit string) *Scope {
	m, _ := r.graph.Unit(unit)
	return &Scope{resolver: r, unit: m}
}

// Lookup resolves name to a symbol visible from the unit. Symbols declared
// by a Degraded unit are not visible.
func (s *Scope) Lookup(name string) (*symbols.Symbol, bool) {
	sym, ok := s.resolver.graph.ResolveName(s.unit, name)
	if !ok {
		return nil, false
	}
	if s.unit == nil || sym.Unit != s.unit.Name {
		if s.resolver.State(sym.Unit) == Degraded {
			return nil, false
		}
	}
	return sym, true
}

// LookupType implements typeexpr.Scope.
func (s *Scope) LookupType(name string) (typeexpr.Decl, bool) {
	sym, ok := s.Lookup(name)
	if !ok || !sym.Kind.IsType() {
		return typeexpr.Decl{}, false
	}
	return typeexpr.Decl{
		Target: s.resolver.Qualify(sym),
		Arity:  len(sym.TypeParams()),
		Enum:   sym.Kind == symbols.KindEnum,
	}, true
}

// Explain implements typeexpr.Explainer.
func (s *Scope) Explain(name string) string {
	if s.unit == nil {
		return ""
	}
	head := name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		head = name[:i]
	}
	req, ok := s.unit.RequireFor(head)
	if !ok {
		if sym, found := s.resolver.graph.ResolveName(s.unit, name); found && !sym.Kind.IsType() {
			return fmt.Sprintf("%s is a %s, not a type", sym.Name, sym.Kind)
		}
		return ""
	}
	if s.unit.IsMissing(req.Module) {
		return fmt.Sprintf("module %q is not in the input", req.Module)
	}
	if s.resolver.State(req.Module) == Degraded {
		return fmt.Sprintf("module %q could not be declared", req.Module)
	}
	return ""
}
