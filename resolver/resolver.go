// Package resolver decides, per translation unit, how the unit declares
// itself and what its references may point at.
//
// Each unit moves Unresolved -> Resolving -> Resolved or Degraded. A unit is
// Degraded only when its own declaration cannot be built: a provide whose
// namespace has no symbol and no children, or a goog.module with no
// resolvable export. Degraded units are skipped; every other unit proceeds,
// with references into degraded or missing modules falling back to any.
package resolver

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/logger"
	"github.com/teranos/clutz/symbols"
)

// DefaultInternalNamespace is the namespace every declaration is emitted under.
const DefaultInternalNamespace = "ಠ_ಠ.clutz"

// State of a unit's resolution.
type State uint8

const (
	Unresolved State = iota
	Resolving
	Resolved
	Degraded
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	case Degraded:
		return "degraded"
	}
	return "invalid"
}

// ExportForm is how an alias shim re-exports the unit.
type ExportForm uint8

const (
	// ExportAssign is `export = X;`, used for namespaces and variables.
	ExportAssign ExportForm = iota
	// ExportDefault is `export default X;`, used for classes, interfaces,
	// enums, functions and typedefs.
	ExportDefault
)

// Export is a resolved goog.module export.
type Export struct {
	Name   string
	Symbol *symbols.Symbol
}

// Unit is a resolved translation unit.
type Unit struct {
	Decl  *symbols.ModuleDecl
	State State
	// Err explains a Degraded state.
	Err error

	// Target is the internal name the alias shims import.
	Target string
	Form   ExportForm
	// Self is the provided symbol for provide units, if it exists.
	Self *symbols.Symbol
	// Exports are a module's resolvable named exports, in declaration order.
	Exports []Export
	// Default is a module's resolvable default export.
	Default *symbols.Symbol

	Scope *Scope
}

// Name returns the unit's Closure namespace.
func (u *Unit) Name() string { return u.Decl.Name }

// Resolver runs the per-unit state machine over a graph.
type Resolver struct {
	graph     *symbols.Graph
	namespace string
	sink      diag.Sink
	log       *zap.SugaredLogger

	mu    sync.Mutex
	units map[string]*Unit
}

// New creates a resolver. internalNamespace defaults to DefaultInternalNamespace.
func New(g *symbols.Graph, internalNamespace string, sink diag.Sink) *Resolver {
	if internalNamespace == "" {
		internalNamespace = DefaultInternalNamespace
	}
	if sink == nil {
		sink = diag.Discard
	}
	return &Resolver{
		graph:     g,
		namespace: internalNamespace,
		sink:      sink,
		log:       logger.ComponentLogger("resolver"),
		units:     make(map[string]*Unit),
	}
}

// InternalNamespace returns the namespace declarations are emitted under.
func (r *Resolver) InternalNamespace() string { return r.namespace }

// Graph returns the graph being resolved.
func (r *Resolver) Graph() *symbols.Graph { return r.graph }

// Qualify returns the emitted name of a symbol.
func (r *Resolver) Qualify(s *symbols.Symbol) string {
	return r.namespace + "." + s.Name
}

// ResolveAll resolves every unit in graph order.
func (r *Resolver) ResolveAll(ctx context.Context) ([]*Unit, error) {
	var out []*Unit
	for _, m := range r.graph.Units() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "resolve units")
		}
		u, err := r.Resolve(m.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// Resolve resolves the unit called name. Requesting a unit that is still
// Resolving (a require cycle) returns it in its current state.
func (r *Resolver) Resolve(name string) (*Unit, error) {
	m, ok := r.graph.Unit(name)
	if !ok {
		return nil, errors.NewNotFoundError("unit %q", name)
	}

	r.mu.Lock()
	if u, ok := r.units[name]; ok {
		r.mu.Unlock()
		return u, nil
	}
	u := &Unit{Decl: m, State: Resolving}
	r.units[name] = u
	r.mu.Unlock()

	r.log.Debugw("resolving unit", logger.FieldUnit, name, logger.FieldState, Resolving.String())
	r.resolve(u)
	r.log.Debugw("unit resolved", logger.FieldUnit, name, logger.FieldState, u.State.String())
	return u, nil
}

// State returns the current state of a unit; unknown units are Unresolved.
func (r *Resolver) State(name string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.units[name]; ok {
		return u.State
	}
	return Unresolved
}

func (r *Resolver) resolve(u *Unit) {
	m := u.Decl
	sink := diag.Scoped{Sink: r.sink, Unit: m.Name, File: m.File}

	for _, req := range m.Requires {
		if m.IsMissing(req.Module) {
			sink.Report(diag.New(diag.MissingImport, "",
				"required module %s is not in the input; references through %s degrade to any", req.Module, req.Local))
			continue
		}
		if _, err := r.Resolve(req.Module); err != nil {
			sink.Report(diag.New(diag.MissingImport, "", "required module %s: %v", req.Module, err))
		}
	}

	u.Scope = &Scope{resolver: r, unit: m}

	var err error
	switch m.Style {
	case symbols.StyleProvide:
		err = r.resolveProvide(u)
	case symbols.StyleModule:
		err = r.resolveModule(u, sink)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		u.State = Degraded
		u.Err = err
		d := diag.New(diag.FatalGraphError, "", "%v", err)
		d.Unit, d.File = m.Name, m.File
		r.sink.Report(d)
		return
	}
	u.State = Resolved
}

func (r *Resolver) resolveProvide(u *Unit) error {
	m := u.Decl
	if self, ok := r.graph.Lookup(m.Name); ok {
		// A namespace object is only declared through its members.
		if self.Kind == symbols.KindNamespace && !r.graph.HasDescendants(m.Name) {
			return errors.NewFatalGraphError("provided namespace %s has no members", m.Name)
		}
		u.Self = self
		u.Target = r.Qualify(self)
		if defaultStyle(self.Kind) {
			u.Form = ExportDefault
		}
		return nil
	}
	if r.graph.HasDescendants(m.Name) {
		u.Target = r.namespace + "." + m.Name
		u.Form = ExportAssign
		return nil
	}
	return errors.NewFatalGraphError("provided namespace %s has no symbol and no members", m.Name)
}

func (r *Resolver) resolveModule(u *Unit, sink diag.Sink) error {
	m := u.Decl

	if m.Default != "" {
		if s, ok := r.graph.Lookup(m.Default); ok {
			u.Default = s
		} else {
			sink.Report(diag.New(diag.UnresolvableReference, m.Default, "default export of %s has no declaration", m.Name))
		}
	}
	for _, e := range m.Exports {
		s, ok := r.graph.Lookup(e.Symbol)
		if !ok {
			sink.Report(diag.New(diag.UnresolvableReference, e.Symbol, "export %s of %s has no declaration", e.Name, m.Name))
			continue
		}
		u.Exports = append(u.Exports, Export{Name: e.Name, Symbol: s})
	}

	switch {
	case u.Default != nil:
		u.Target = r.Qualify(u.Default)
		if defaultStyle(u.Default.Kind) {
			u.Form = ExportDefault
		}
	case len(u.Exports) > 0:
		u.Target = r.namespace + "." + symbols.ModuleExportsName(m.Name)
		u.Form = ExportAssign
	default:
		return errors.NewFatalGraphError("module %s has no resolvable exports", m.Name)
	}
	return nil
}

// defaultStyle reports kinds re-exported with `export default`.
func defaultStyle(k symbols.Kind) bool {
	switch k {
	case symbols.KindClass, symbols.KindInterface, symbols.KindRecord,
		symbols.KindEnum, symbols.KindFunction, symbols.KindTypedef:
		return true
	}
	return false
}
