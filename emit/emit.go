// Package emit renders a resolved symbol graph as TypeScript declaration text.
//
// Each translation unit becomes one self-contained piece of .d.ts text: the
// canonical declarations grouped into `declare namespace` blocks, followed by
// the alias shims that make the unit importable as 'goog:<namespace>' and
// under its file path. Units are emitted in parallel; results keep the
// graph's unit order.
package emit

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/guard"
	"github.com/teranos/clutz/logger"
	"github.com/teranos/clutz/resolver"
	"github.com/teranos/clutz/symbols"
	"github.com/teranos/clutz/typeexpr"
)

// DefaultWorkers bounds parallel unit emission when Options.Workers is unset.
const DefaultWorkers = 4

// Options configure an Emitter.
type Options struct {
	// InternalNamespace prefixes every declaration. Defaults to ಠ_ಠ.clutz.
	InternalNamespace string
	// PartialInput keeps unresolvable names as forward declarations.
	PartialInput bool
	// Workers bounds parallel unit emission.
	Workers int
	// TypeCacheSize bounds the shared translated-type cache.
	TypeCacheSize int
	// GeneratedHeader prefixes each unit with `// Generated from <file>`.
	GeneratedHeader bool
	// SkipEmit drops symbols whose qualified name matches.
	SkipEmit *regexp.Regexp
	// EntryPoints restricts emission to the named units. Empty means all.
	EntryPoints []string
}

// Unit is the emitted text of one translation unit.
type Unit struct {
	Name  string
	File  string
	State resolver.State
	// Text is empty for Degraded units.
	Text string
}

// Result of a run.
type Result struct {
	Units       []Unit
	Diagnostics []diag.Diagnostic
	// Skipped names the Degraded units.
	Skipped []string
}

// Text concatenates the emitted units in order.
func (r *Result) Text() string {
	var b strings.Builder
	for _, u := range r.Units {
		b.WriteString(u.Text)
	}
	return b.String()
}

// Emitter renders a graph.
type Emitter struct {
	graph *symbols.Graph
	opts  Options
	diags *diag.Collector
	cache *typeexpr.Cache
	log   *zap.SugaredLogger
}

// New creates an emitter over g.
func New(g *symbols.Graph, opts Options) (*Emitter, error) {
	if g == nil {
		return nil, errors.New("emit: nil graph")
	}
	if opts.InternalNamespace == "" {
		opts.InternalNamespace = resolver.DefaultInternalNamespace
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.TypeCacheSize <= 0 {
		opts.TypeCacheSize = typeexpr.DefaultCacheSize
	}
	cache, err := typeexpr.NewCache(opts.TypeCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create type cache")
	}
	return &Emitter{
		graph: g,
		opts:  opts,
		diags: diag.NewCollector(),
		cache: cache,
		log:   logger.ComponentLogger("emit"),
	}, nil
}

// Diagnostics returns the collector shared by every stage of the run.
func (e *Emitter) Diagnostics() *diag.Collector { return e.diags }

// Emit resolves every unit and renders the selected ones.
func (e *Emitter) Emit(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := logger.ChildLogger(e.log, logger.FieldRunID, logger.RunIDFromContext(ctx))

	res := resolver.New(e.graph, e.opts.InternalNamespace, e.diags)
	units, err := res.ResolveAll(ctx)
	if err != nil {
		return nil, err
	}
	units = e.selectUnits(units)

	guards := guard.NewRegistry(e.diags)
	guards.Assign(e.classNames(units))

	out := make([]Unit, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Unit{Name: u.Name(), File: u.Decl.File, State: u.State}
			if u.State == resolver.Degraded {
				return nil
			}
			w := &unitWriter{
				emitter:  e,
				resolver: res,
				guards:   guards,
				unit:     u,
				sink:     diag.Scoped{Sink: e.diags, Unit: u.Name(), File: u.Decl.File},
			}
			text, err := w.render(gctx)
			if err != nil {
				return errors.Wrapf(err, "emit unit %s", u.Name())
			}
			out[i].Text = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Units: out, Diagnostics: e.diags.All()}
	for _, u := range out {
		if u.State == resolver.Degraded {
			result.Skipped = append(result.Skipped, u.Name)
		}
	}

	hits, misses := e.cache.Stats()
	log.Infow("emission complete",
		logger.FieldUnits, len(out),
		logger.FieldSkipped, len(result.Skipped),
		logger.FieldDiagnostics, len(result.Diagnostics),
		"cache_hits", hits,
		"cache_misses", misses,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return result, nil
}

func (e *Emitter) selectUnits(units []*resolver.Unit) []*resolver.Unit {
	if len(e.opts.EntryPoints) == 0 {
		return units
	}
	want := make(map[string]bool, len(e.opts.EntryPoints))
	for _, name := range e.opts.EntryPoints {
		want[name] = true
	}
	var out []*resolver.Unit
	for _, u := range units {
		if want[u.Name()] {
			out = append(out, u)
		}
	}
	return out
}

// classNames lists every class that will be emitted, for guard assignment.
func (e *Emitter) classNames(units []*resolver.Unit) []string {
	var names []string
	for _, u := range units {
		if u.State == resolver.Degraded {
			continue
		}
		for _, id := range u.Decl.Symbols {
			s := e.graph.Symbol(id)
			if s != nil && s.Kind == symbols.KindClass && !e.skipped(s) {
				names = append(names, s.Name)
			}
		}
	}
	return names
}

func (e *Emitter) skipped(s *symbols.Symbol) bool {
	return e.opts.SkipEmit != nil && e.opts.SkipEmit.MatchString(s.Name)
}
