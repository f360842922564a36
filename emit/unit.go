package emit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/guard"
	"github.com/teranos/clutz/logger"
	"github.com/teranos/clutz/resolver"
	"github.com/teranos/clutz/symbols"
	"github.com/teranos/clutz/typeexpr"
)

const (
	indent       = "  "
	memberIndent = "    "
)

// unitWriter renders one resolved unit. It is used by a single worker.
type unitWriter struct {
	emitter  *Emitter
	resolver *resolver.Resolver
	guards   *guard.Registry
	unit     *resolver.Unit
	sink     diag.Sink

	ctx context.Context
	tr  *typeexpr.Translator
}

// block is one `declare namespace` group.
type block struct {
	namespace string
	body      strings.Builder
}

func (w *unitWriter) graph() *symbols.Graph { return w.emitter.graph }

func (w *unitWriter) namespace() string { return w.emitter.opts.InternalNamespace }

func (w *unitWriter) render(ctx context.Context) (string, error) {
	w.ctx = ctx
	opts := []typeexpr.Option{typeexpr.WithCache(w.emitter.cache, w.unit.Name())}
	if w.emitter.opts.PartialInput {
		opts = append(opts, typeexpr.WithForwardDeclarations(w.namespace()+"."))
	}
	w.tr = typeexpr.NewTranslator(w.unit.Scope, w.sink, opts...)

	var blocks []*block
	byNamespace := make(map[string]*block)
	for _, s := range w.ordered() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		ns := w.namespace()
		if parent := s.Namespace(); parent != "" {
			ns += "." + parent
		}
		blk, ok := byNamespace[ns]
		if !ok {
			blk = &block{namespace: ns}
			byNamespace[ns] = blk
			blocks = append(blocks, blk)
		}
		w.writeSymbol(&blk.body, s)
	}

	var b strings.Builder
	if w.emitter.opts.GeneratedHeader && w.unit.Decl.File != "" {
		fmt.Fprintf(&b, "// Generated from %s\n", w.unit.Decl.File)
	}
	for _, blk := range blocks {
		fmt.Fprintf(&b, "declare namespace %s {\n", blk.namespace)
		b.WriteString(blk.body.String())
		b.WriteString("}\n")
	}
	w.writeModuleExports(&b)
	w.writeRequireOverload(&b)
	w.writeShims(&b)

	w.emitter.log.Debugw("unit emitted",
		logger.FieldUnit, w.unit.Name(),
		logger.FieldSymbols, len(w.unit.Decl.Symbols),
		logger.FieldCount, len(blocks))
	return b.String(), nil
}

func (w *unitWriter) writeSymbol(b *strings.Builder, s *symbols.Symbol) {
	switch s.Kind {
	case symbols.KindEnum:
		w.writeEnum(b, s)
	case symbols.KindClass, symbols.KindInterface, symbols.KindRecord:
		w.writeClass(b, s)
	case symbols.KindFunction:
		w.writeFunction(b, s)
	case symbols.KindVariable:
		w.writeVariable(b, s)
	case symbols.KindTypedef:
		w.writeTypedef(b, s)
	}
}

// ordered returns the unit's declarations in emission order: enums, then
// classes and interfaces with same-unit bases first, then functions,
// variables and typedefs.
func (w *unitWriter) ordered() []*symbols.Symbol {
	var enums, types, funcs, vars, typedefs []*symbols.Symbol
	for _, id := range w.unit.Decl.Symbols {
		s := w.graph().Symbol(id)
		if s == nil || w.emitter.skipped(s) {
			continue
		}
		switch s.Kind {
		case symbols.KindEnum:
			enums = append(enums, s)
		case symbols.KindClass, symbols.KindInterface, symbols.KindRecord:
			types = append(types, s)
		case symbols.KindFunction:
			funcs = append(funcs, s)
		case symbols.KindVariable:
			vars = append(vars, s)
		case symbols.KindTypedef:
			typedefs = append(typedefs, s)
		}
	}

	out := make([]*symbols.Symbol, 0, len(w.unit.Decl.Symbols))
	out = append(out, byName(enums)...)
	out = append(out, topoSort(types)...)
	out = append(out, byName(funcs)...)
	out = append(out, byName(vars)...)
	out = append(out, byName(typedefs)...)
	return out
}

func byName(list []*symbols.Symbol) []*symbols.Symbol {
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// topoSort orders types so that bases declared in the same list come first.
// Ties are broken by name; a cycle is broken by emitting its smallest name.
func topoSort(types []*symbols.Symbol) []*symbols.Symbol {
	in := make(map[symbols.ID]*symbols.Symbol, len(types))
	for _, s := range types {
		in[s.ID] = s
	}

	dependents := make(map[symbols.ID][]symbols.ID)
	indegree := make(map[symbols.ID]int)
	for _, s := range types {
		for _, base := range heritageTargets(s) {
			if _, ok := in[base]; !ok || base == s.ID {
				continue
			}
			dependents[base] = append(dependents[base], s.ID)
			indegree[s.ID]++
		}
	}

	emitted := make(map[symbols.ID]bool, len(types))
	var ready []*symbols.Symbol
	for _, s := range types {
		if indegree[s.ID] == 0 {
			ready = append(ready, s)
		}
	}

	out := make([]*symbols.Symbol, 0, len(types))
	for len(out) < len(types) {
		if len(ready) == 0 {
			var pick *symbols.Symbol
			for _, s := range types {
				if !emitted[s.ID] && (pick == nil || s.Name < pick.Name) {
					pick = s
				}
			}
			ready = append(ready, pick)
		}
		byName(ready)
		next := ready[0]
		ready = ready[1:]
		if emitted[next.ID] {
			continue
		}
		emitted[next.ID] = true
		out = append(out, next)
		for _, d := range dependents[next.ID] {
			indegree[d]--
			if indegree[d] == 0 && !emitted[d] {
				ready = append(ready, in[d])
			}
		}
	}
	return out
}

func heritageTargets(s *symbols.Symbol) []symbols.ID {
	if s.Class == nil {
		return nil
	}
	var out []symbols.ID
	if s.Class.Super != nil && s.Class.Super.Resolved() {
		out = append(out, s.Class.Super.Target)
	}
	for _, refs := range [][]symbols.Ref{s.Class.Implements, s.Class.Extends} {
		for _, r := range refs {
			if r.Resolved() {
				out = append(out, r.Target)
			}
		}
	}
	return out
}
