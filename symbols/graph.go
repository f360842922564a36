package symbols

import (
	"strings"

	"github.com/teranos/clutz/typeexpr"
)

// Graph is the resolved, read-only symbol graph.
type Graph struct {
	symbols    []*Symbol
	byName     map[string]ID
	units      []*ModuleDecl
	unitByName map[string]*ModuleDecl
	children   map[string][]ID
}

// Symbol returns the symbol for id, or nil.
func (g *Graph) Symbol(id ID) *Symbol {
	if id <= 0 || int(id) > len(g.symbols) {
		return nil
	}
	return g.symbols[id-1]
}

// Lookup finds a symbol by qualified name.
func (g *Graph) Lookup(name string) (*Symbol, bool) {
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.Symbol(id), true
}

// Symbols returns every symbol in insertion order.
func (g *Graph) Symbols() []*Symbol {
	return g.symbols
}

// Units returns every unit in insertion order.
func (g *Graph) Units() []*ModuleDecl {
	return g.units
}

// Unit finds a unit by namespace.
func (g *Graph) Unit(name string) (*ModuleDecl, bool) {
	m, ok := g.unitByName[name]
	return m, ok
}

// UnitOf returns the unit that declares s.
func (g *Graph) UnitOf(s *Symbol) (*ModuleDecl, bool) {
	return g.Unit(s.Unit)
}

// Children returns the direct children of namespace, sorted by name.
func (g *Graph) Children(namespace string) []*Symbol {
	ids := g.children[namespace]
	out := make([]*Symbol, len(ids))
	for i, id := range ids {
		out[i] = g.Symbol(id)
	}
	return out
}

// HasDescendants reports whether any symbol lives under namespace.
func (g *Graph) HasDescendants(namespace string) bool {
	prefix := namespace + "."
	for name := range g.byName {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Resolve returns the target of a resolved ref, or nil.
func (g *Graph) Resolve(r *Ref) *Symbol {
	if r == nil {
		return nil
	}
	return g.Symbol(r.Target)
}

// ResolveName resolves name as written inside unit: a qualified name, a
// goog.module local declaration, or a path through a goog.require binding.
// unit may be nil for global lookup only.
func (g *Graph) ResolveName(unit *ModuleDecl, name string) (*Symbol, bool) {
	if s, ok := g.Lookup(name); ok {
		return s, true
	}
	if unit == nil {
		return nil, false
	}

	head, rest := name, ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		head, rest = name[:i], name[i+1:]
	}

	if unit.Style == StyleModule {
		if s, ok := g.Lookup(join(ModuleContentsName(unit.Name, head), rest)); ok {
			return s, true
		}
		if e, ok := unit.ExportNamed(head); ok {
			if s, ok := g.Lookup(join(e.Symbol, rest)); ok {
				return s, true
			}
		}
	}

	req, ok := unit.RequireFor(head)
	if !ok {
		return nil, false
	}
	target, ok := g.Unit(req.Module)
	if !ok {
		return nil, false
	}
	return g.resolveInUnit(target, join(req.Export, rest))
}

// resolveInUnit resolves path relative to what unit exports.
func (g *Graph) resolveInUnit(unit *ModuleDecl, path string) (*Symbol, bool) {
	if path == "" {
		if unit.Default != "" {
			return g.Lookup(unit.Default)
		}
		if unit.Style == StyleProvide {
			return g.Lookup(unit.Name)
		}
		return nil, false
	}

	if unit.Style == StyleModule {
		head, rest := path, ""
		if i := strings.IndexByte(path, '.'); i >= 0 {
			head, rest = path[:i], path[i+1:]
		}
		if e, ok := unit.ExportNamed(head); ok {
			return g.Lookup(join(e.Symbol, rest))
		}
		if unit.Default != "" {
			return g.Lookup(unit.Default + "." + path)
		}
		return nil, false
	}
	return g.Lookup(unit.Name + "." + path)
}

func join(name, rest string) string {
	if rest == "" {
		return name
	}
	if name == "" {
		return rest
	}
	return name + "." + rest
}

// IndexSignature is an index signature a class must declare.
type IndexSignature struct {
	Key   *typeexpr.TypeExpr
	Value *typeexpr.TypeExpr
	// Length marks IArrayLike, which also requires `length: number`.
	Length bool
}

// IndexSignatures returns the index signatures class id must restate: those
// of index-bearing contracts it implements directly or through interfaces
// they extend. Signatures inherited from a superclass are not restated.
func (g *Graph) IndexSignatures(id ID) []IndexSignature {
	s := g.Symbol(id)
	if s == nil || s.Class == nil || s.Kind != KindClass {
		return nil
	}

	var out []IndexSignature
	seen := make(map[string]bool)
	visited := make(map[ID]bool)

	add := func(sig IndexSignature) {
		k := sig.Key.Key()
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, sig)
	}

	var walk func(refs []Ref, bindings map[string]*typeexpr.TypeExpr)
	walk = func(refs []Ref, bindings map[string]*typeexpr.TypeExpr) {
		for _, r := range refs {
			args := make([]*typeexpr.TypeExpr, len(r.Args))
			for i, a := range r.Args {
				args[i] = typeexpr.Substitute(a, bindings)
			}

			switch r.Name {
			case typeexpr.ArrayLikeContract:
				add(IndexSignature{Key: typeexpr.Primitive(typeexpr.Number), Value: argOrAny(args, 0), Length: true})
				continue
			case typeexpr.ObjectContract:
				switch len(args) {
				case 0, 1:
					add(IndexSignature{Key: typeexpr.Primitive(typeexpr.String), Value: argOrAny(args, 0)})
				default:
					add(IndexSignature{Key: args[0], Value: args[1]})
				}
				continue
			}

			target := g.Symbol(r.Target)
			if target == nil || target.Class == nil || !target.Kind.IsInterfaceLike() || visited[target.ID] {
				continue
			}
			visited[target.ID] = true
			walk(target.Class.Extends, typeexpr.Bind(TypeParamNames(target.Class.TypeParams), args))
		}
	}
	walk(s.Class.Implements, nil)
	return out
}

func argOrAny(args []*typeexpr.TypeExpr, i int) *typeexpr.TypeExpr {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return typeexpr.Any()
}
