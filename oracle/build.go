package oracle

import (
	"strings"

	"github.com/teranos/clutz/diag"
	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/symbols"
	"github.com/teranos/clutz/typeexpr"
)

// Build converts a dump into a resolved graph. Type text that does not parse
// is reported as MalformedType and treated as unknown; structural problems
// (duplicate names, unknown kinds) fail the build.
func Build(d *Dump, sink diag.Sink) (*symbols.Graph, error) {
	if d == nil {
		return nil, errors.Wrap(errors.ErrInvalidOracle, "nil dump")
	}
	if sink == nil {
		sink = diag.Discard
	}

	b := symbols.NewBuilder()
	for i := range d.Units {
		u := &d.Units[i]
		m, err := moduleDecl(u)
		if err != nil {
			return nil, err
		}
		if err := b.AddUnit(m); err != nil {
			return nil, err
		}

		c := &converter{sink: diag.Scoped{Sink: sink, Unit: u.Namespace, File: u.File}}
		for j := range u.Symbols {
			s, err := c.symbol(&u.Symbols[j], u)
			if err != nil {
				return nil, err
			}
			if _, err := b.AddSymbol(s); err != nil {
				return nil, err
			}
		}
	}
	return b.Build()
}

func moduleDecl(u *Unit) (*symbols.ModuleDecl, error) {
	m := &symbols.ModuleDecl{
		Name:    u.Namespace,
		Path:    u.Path,
		File:    u.File,
		Default: u.Default,
	}
	switch u.Kind {
	case "", "provide":
		m.Style = symbols.StyleProvide
	case "module":
		m.Style = symbols.StyleModule
	default:
		return nil, errors.NewInvalidOracleError("unit %q has unknown kind %q", u.Namespace, u.Kind)
	}
	for _, r := range u.Requires {
		local := r.Local
		if local == "" {
			local = r.Export
		}
		if local == "" {
			local = r.Module
		}
		m.Requires = append(m.Requires, symbols.Require{Local: local, Module: r.Module, Export: r.Export})
	}
	for _, e := range u.Exports {
		m.Exports = append(m.Exports, symbols.Export{Name: e.Name, Symbol: e.Symbol})
	}
	return m, nil
}

// converter turns dump records into symbols, reporting bad type text.
type converter struct {
	sink    diag.Sink
	current string
}

func (c *converter) symbol(in *Symbol, u *Unit) (*symbols.Symbol, error) {
	kind, ok := symbols.ParseKind(in.Kind)
	if !ok {
		return nil, errors.NewInvalidOracleError("symbol %q has unknown kind %q", in.Name, in.Kind)
	}
	c.current = in.Name

	s := &symbols.Symbol{
		Name:       in.Name,
		Kind:       kind,
		Visibility: symbols.ParseVisibility(in.Visibility),
		Location:   symbols.Location{File: u.File, Line: in.Line},
		Doc:        in.Doc,
		Unit:       u.Namespace,
	}

	switch kind {
	case symbols.KindClass, symbols.KindInterface, symbols.KindRecord:
		decl, err := c.class(in, kind)
		if err != nil {
			return nil, err
		}
		s.Class = decl
	case symbols.KindEnum:
		s.Enum = c.enum(in.Enum)
	case symbols.KindFunction:
		s.Function = c.signature(in.Template, in.Params, in.Returns)
	case symbols.KindVariable:
		s.Variable = &symbols.VariableDecl{Type: c.typ(in.Type), Const: in.Const}
	case symbols.KindTypedef:
		s.Typedef = &symbols.TypedefDecl{TypeParams: c.templates(in.Template), Type: c.typ(in.Type)}
	}
	return s, nil
}

func (c *converter) class(in *Symbol, kind symbols.Kind) (*symbols.ClassDecl, error) {
	decl := &symbols.ClassDecl{TypeParams: c.templates(in.Template)}

	extends := in.Extends
	if kind == symbols.KindClass && len(extends) > 0 {
		if ref, ok := c.ref(extends[0]); ok {
			decl.Super = &ref
		}
		extends = extends[1:]
	}
	for _, text := range extends {
		if ref, ok := c.ref(text); ok {
			decl.Extends = append(decl.Extends, ref)
		}
	}
	for _, text := range in.Implements {
		if ref, ok := c.ref(text); ok {
			decl.Implements = append(decl.Implements, ref)
		}
	}
	if in.Ctor != nil {
		decl.Ctor = &symbols.Signature{Params: c.params(in.Ctor.Params)}
	}

	for _, m := range in.Members {
		member := symbols.Member{
			Name:       m.Name,
			Static:     m.Static,
			Override:   m.Override,
			Optional:   m.Optional,
			Visibility: symbols.ParseVisibility(m.Visibility),
			Doc:        m.Doc,
			Line:       m.Line,
		}
		switch m.Kind {
		case "field", "property":
			member.Kind = symbols.Field
			member.Type = c.typ(m.Type)
		case "index":
			member.Kind = symbols.Index
			key := m.Key
			if key == "" {
				key = "string"
			}
			member.Key = c.typ(key)
			member.Type = c.typ(m.Type)
		case "method", "":
			member.Kind = symbols.Method
			member.Signature = c.signature(m.Template, m.Params, m.Returns)
		default:
			return nil, errors.NewInvalidOracleError("member %s.%s has unknown kind %q", in.Name, m.Name, m.Kind)
		}
		decl.Members = append(decl.Members, member)
	}
	return decl, nil
}

// ref parses a heritage expression such as `Foo` or `ns.Bar<string, T>`.
func (c *converter) ref(text string) (symbols.Ref, bool) {
	t := c.typ(text)
	switch {
	case t == nil:
		return symbols.Ref{}, false
	case t.Kind == typeexpr.KindNamed:
		return symbols.Ref{Name: t.Name}, true
	case t.Kind == typeexpr.KindGeneric && t.Base != nil && t.Base.Kind == typeexpr.KindNamed:
		return symbols.Ref{Name: t.Base.Name, Args: t.Args}, true
	}
	c.sink.Report(diag.New(diag.MalformedType, c.current, "heritage clause %q is not a named type", text))
	return symbols.Ref{}, false
}

func (c *converter) enum(in *Enum) *symbols.EnumDecl {
	decl := &symbols.EnumDecl{}
	if in == nil {
		return decl
	}
	decl.Type = c.typ(in.Type)
	for _, m := range in.Members {
		member := symbols.EnumMember{Name: m.Name}
		if m.Value != nil {
			member.Value = *m.Value
			member.Known = true
		}
		decl.Members = append(decl.Members, member)
	}
	return decl
}

func (c *converter) signature(templates []Template, params []Param, returns string) *symbols.Signature {
	return &symbols.Signature{
		TypeParams: c.templates(templates),
		Params:     c.params(params),
		Return:     c.typ(returns),
	}
}

func (c *converter) templates(in []Template) []symbols.TypeParam {
	var out []symbols.TypeParam
	for _, t := range in {
		out = append(out, symbols.TypeParam{Name: t.Name, Default: c.typ(t.Default)})
	}
	return out
}

func (c *converter) params(in []Param) []typeexpr.Param {
	out := make([]typeexpr.Param, 0, len(in))
	for _, p := range in {
		out = append(out, c.param(p))
	}
	return out
}

// param parses parameter type text. An empty type is an untyped parameter;
// a bare `=` is an untyped optional one.
func (c *converter) param(p Param) typeexpr.Param {
	text := strings.TrimSpace(p.Type)
	switch text {
	case "":
		return typeexpr.Param{Name: p.Name}
	case "=":
		return typeexpr.Param{Name: p.Name, Optional: true}
	}
	out, err := typeexpr.ParseParam(text)
	if err != nil {
		c.sink.Report(diag.New(diag.MalformedType, c.current, "parameter %s: %v", p.Name, err))
		return typeexpr.Param{Name: p.Name, Type: typeexpr.Unknown()}
	}
	out.Name = p.Name
	return out
}

// typ parses type text; empty text is nil (no declared type).
func (c *converter) typ(text string) *typeexpr.TypeExpr {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	t, err := typeexpr.Parse(text)
	if err != nil {
		c.sink.Report(diag.New(diag.MalformedType, c.current, "%v", err))
		return typeexpr.Unknown()
	}
	return t
}
