package typeexpr

import (
	"sort"
	"strings"

	"github.com/teranos/clutz/diag"
)

// Decl is what a Scope knows about a named type.
type Decl struct {
	// Target is the fully qualified TypeScript name.
	Target string
	// Arity is the declared type-parameter count; negative means unknown,
	// in which case use-site arguments are kept as written.
	Arity int
	// Enum marks enum declarations, referenced through EnumRef.
	Enum bool
}

// Scope resolves source-level type names.
type Scope interface {
	LookupType(name string) (Decl, bool)
}

// Explainer is implemented by scopes that can say why a name did not resolve,
// e.g. because it goes through a require of a module missing from the input.
type Explainer interface {
	Explain(name string) string
}

// ScopeFunc adapts a function to Scope.
type ScopeFunc func(name string) (Decl, bool)

// LookupType calls f.
func (f ScopeFunc) LookupType(name string) (Decl, bool) { return f(name) }

type position uint8

const (
	posDefault position = iota
	// posNonNull drops nullability: parameter defaults and generic bounds.
	posNonNull
)

// Translator rewrites source type expressions into target form.
//
// Translate is total: nil input yields Unknown, unresolvable names degrade to
// Unknown (or a forward-declared name when forward declarations are enabled)
// and are reported to the sink. Target-form input translates to itself.
type Translator struct {
	scope         Scope
	sink          diag.Sink
	symbol        string
	typeParams    map[string]bool
	forwardPrefix string
	forward       bool
	cache         *Cache
	scopeKey      string
}

// Option configures a Translator.
type Option func(*Translator)

// WithForwardDeclarations keeps unresolvable names as references under
// prefix instead of degrading them to any. Used for partial input.
func WithForwardDeclarations(prefix string) Option {
	return func(t *Translator) {
		t.forward = true
		t.forwardPrefix = prefix
	}
}

// WithCache shares translated results across translators. scopeKey must
// identify the scope: the same name may resolve differently per unit.
func WithCache(c *Cache, scopeKey string) Option {
	return func(t *Translator) {
		t.cache = c
		t.scopeKey = scopeKey
	}
}

// NewTranslator creates a translator over scope reporting to sink.
func NewTranslator(scope Scope, sink diag.Sink, opts ...Option) *Translator {
	if sink == nil {
		sink = diag.Discard
	}
	if scope == nil {
		scope = ScopeFunc(func(string) (Decl, bool) { return Decl{}, false })
	}
	t := &Translator{scope: scope, sink: sink, typeParams: map[string]bool{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ForSymbol returns a translator reporting against symbol, with typeParams
// added to the template names in scope.
func (t *Translator) ForSymbol(symbol string, typeParams ...string) *Translator {
	c := *t
	c.symbol = symbol
	c.typeParams = make(map[string]bool, len(t.typeParams)+len(typeParams))
	for name := range t.typeParams {
		c.typeParams[name] = true
	}
	for _, name := range typeParams {
		c.typeParams[name] = true
	}
	return &c
}

// WithTypeParams returns a translator with additional template names in scope.
func (t *Translator) WithTypeParams(typeParams ...string) *Translator {
	return t.ForSymbol(t.symbol, typeParams...)
}

// Translate rewrites x into target form.
func (t *Translator) Translate(x *TypeExpr) *TypeExpr {
	return t.cached(x, posDefault)
}

// TranslateNonNull rewrites x for a position where nullability is dropped:
// parameter defaults and generic bounds.
func (t *Translator) TranslateNonNull(x *TypeExpr) *TypeExpr {
	return t.cached(x, posNonNull)
}

// TranslateParam rewrites a declaration parameter. Optional params stay
// optional whatever their nullability; an untyped param becomes any.
func (t *Translator) TranslateParam(p Param) Param {
	out := Param{Name: p.Name, Optional: p.Optional, Variadic: p.Variadic}
	inner := p.Type
	if inner != nil && inner.Kind == KindOptional {
		inner = inner.Inner
		out.Optional = !out.Variadic
	}
	if inner == nil {
		out.Type = Any()
		return out
	}
	out.Type = t.Translate(inner)
	if out.Type.Kind == KindUnknown {
		out.Type = Any()
	}
	return out
}

func (t *Translator) cacheKey(x *TypeExpr, pos position) string {
	params := make([]string, 0, len(t.typeParams))
	for name := range t.typeParams {
		params = append(params, name)
	}
	sort.Strings(params)
	var b strings.Builder
	b.WriteString(t.scopeKey)
	b.WriteByte('|')
	b.WriteString(strings.Join(params, ","))
	b.WriteByte('|')
	b.WriteByte('0' + byte(pos))
	b.WriteByte('|')
	b.WriteString(x.Key())
	return b.String()
}

func (t *Translator) cached(x *TypeExpr, pos position) *TypeExpr {
	if t.cache == nil || x == nil {
		return t.translate(x, pos)
	}

	key := t.cacheKey(x, pos)
	if entry, ok := t.cache.get(key); ok {
		for _, d := range entry.diags {
			t.report(d)
		}
		return entry.result
	}

	rec := &recorder{}
	inner := *t
	inner.sink = rec
	inner.symbol = ""
	result := inner.translate(x, pos)
	t.cache.add(key, cacheEntry{result: result, diags: rec.items})
	for _, d := range rec.items {
		t.report(d)
	}
	return result
}

func (t *Translator) report(d diag.Diagnostic) {
	if d.Symbol == "" {
		d.Symbol = t.symbol
	}
	t.sink.Report(d)
}

func (t *Translator) translate(x *TypeExpr, pos position) *TypeExpr {
	if x == nil {
		return Unknown()
	}

	switch x.Kind {
	case KindAny, KindUnknown, KindPrimitive, KindLiteral, KindTypeParam, KindEnumRef:
		return x

	case KindNullable:
		inner := t.translate(x.Inner, posDefault)
		if pos == posNonNull {
			return inner
		}
		return Union(inner, Primitive(Null))

	case KindOptional:
		inner := t.translate(x.Inner, posDefault)
		if pos == posNonNull {
			return inner
		}
		return Union(inner, Primitive(Undefined))

	case KindUnion:
		members := make([]*TypeExpr, 0, len(x.Members))
		for _, m := range x.Members {
			members = append(members, t.translate(m, posDefault))
		}
		u := Union(members...)
		if pos == posNonNull {
			u = Without(u, func(m *TypeExpr) bool { return m.IsPrimitive(Null) })
		}
		return u

	case KindRecord:
		return t.translateRecord(x)

	case KindNamed:
		if x.Resolved {
			return x
		}
		return t.resolveNamed(x.Name, nil)

	case KindGeneric:
		if x.Base == nil {
			return Unknown()
		}
		if x.Base.Kind == KindNamed && !x.Base.Resolved {
			return t.resolveNamed(x.Base.Name, x.Args)
		}
		if x.Base.Kind != KindNamed {
			return t.translate(x.Base, pos)
		}
		args := make([]*TypeExpr, len(x.Args))
		for i, a := range x.Args {
			args[i] = t.translate(a, posDefault)
		}
		return Generic(x.Base, args...)

	case KindFunction:
		return t.translateFunction(x)

	case KindArrayLike:
		return Array(t.translate(x.Inner, posDefault))

	case KindIndexSignature:
		return t.indexSignature(x.IndexKey, x.Value, x.CoercedFrom)
	}

	t.report(diag.New(diag.MalformedType, "", "unrepresentable type kind %s", x.Kind))
	return Unknown()
}

func (t *Translator) translateRecord(x *TypeExpr) *TypeExpr {
	fields := make([]Field, len(x.Fields))
	for i, f := range x.Fields {
		out := Field{Name: f.Name, Optional: f.Optional}
		if f.Type == nil {
			out.Type = Any()
		} else {
			ft := t.translate(f.Type, posDefault)
			if ft.Kind == KindUnion && ft.Includes(isUndefined) {
				out.Optional = true
				ft = Without(ft, isUndefined)
			}
			out.Type = ft
		}
		fields[i] = out
	}
	return Record(fields...)
}

func isUndefined(m *TypeExpr) bool { return m.IsPrimitive(Undefined) }

// translateFunction rewrites a function type. A parameter whose type is
// unknown is marked optional; this matches long-standing output for
// callbacks even though the parameter is not really optional. It only
// applies while every later parameter is optional too, since a required
// parameter cannot follow an optional one.
func (t *Translator) translateFunction(x *TypeExpr) *TypeExpr {
	params := make([]Param, len(x.Params))
	for i, p := range x.Params {
		out := Param{Name: p.Name, Optional: p.Optional, Variadic: p.Variadic}
		pt := p.Type
		if pt != nil && pt.Kind == KindOptional {
			pt = pt.Inner
			out.Optional = !out.Variadic
		}
		out.Type = t.translate(pt, posDefault)
		params[i] = out
	}
	tailOptional := true
	for i := len(params) - 1; i >= 0; i-- {
		p := &params[i]
		if p.Type.Kind == KindUnknown && !p.Variadic && tailOptional {
			p.Optional = true
		}
		tailOptional = tailOptional && (p.Optional || p.Variadic)
	}

	ret := Any()
	if x.Return != nil {
		ret = t.translate(x.Return, posDefault)
	}
	if x.Ctor {
		return Constructor(params, ret)
	}
	return Function(params, ret)
}

// resolveNamed maps a source name (with optional type arguments) to target form.
func (t *Translator) resolveNamed(name string, rawArgs []*TypeExpr) *TypeExpr {
	args := make([]*TypeExpr, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = t.translate(a, posDefault)
	}

	if t.typeParams[name] {
		return TypeParam(name)
	}

	if decl, ok := t.scope.LookupType(name); ok {
		if decl.Enum {
			return EnumRef(decl.Target)
		}
		return Generic(ResolvedNamed(decl.Target), fitArity(args, decl.Arity)...)
	}

	switch name {
	case arrayName:
		if len(args) == 0 {
			return Array(Any())
		}
		return Array(args[0])
	case objectName, iObjectName:
		switch len(args) {
		case 0:
			if name == objectName {
				return ResolvedNamed(TypeMapping[objectName].Target)
			}
			return t.indexSignature(Primitive(String), Any(), "")
		case 1:
			return t.indexSignature(Primitive(String), args[0], "")
		default:
			return t.indexSignature(args[0], args[1], "")
		}
	case functionName:
		return AnyFunction()
	}

	if g, ok := TypeMapping[name]; ok {
		return Generic(ResolvedNamed(g.Target), fitArity(args, g.Arity)...)
	}

	msg := "unresolvable type reference " + name
	if ex, ok := t.scope.(Explainer); ok {
		if why := ex.Explain(name); why != "" {
			msg += ": " + why
		}
	}
	t.report(diag.New(diag.UnresolvableReference, "", "%s", msg))
	if t.forward {
		return Generic(ResolvedNamed(t.forwardPrefix+name), args...)
	}
	return Unknown()
}

// indexSignature builds {[key: K]: V}, coercing keys TypeScript does not
// accept to string.
func (t *Translator) indexSignature(key, value *TypeExpr, coercedFrom string) *TypeExpr {
	k := t.translate(key, posNonNull)
	v := t.translate(value, posDefault)
	if v.Kind == KindUnknown {
		v = Any()
	}
	if k.IsPrimitive(String) || k.IsPrimitive(Number) {
		return &TypeExpr{Kind: KindIndexSignature, IndexKey: k, Value: v, CoercedFrom: coercedFrom}
	}
	from := Render(k)
	t.report(diag.New(diag.CoercedIndexKey, "", "index key %s coerced to string", from))
	return &TypeExpr{Kind: KindIndexSignature, IndexKey: Primitive(String), Value: v, CoercedFrom: from}
}

// fitArity pads args with any up to arity, or truncates extras.
func fitArity(args []*TypeExpr, arity int) []*TypeExpr {
	if arity < 0 {
		return args
	}
	if len(args) > arity {
		return args[:arity]
	}
	out := make([]*TypeExpr, arity)
	copy(out, args)
	for i := len(args); i < arity; i++ {
		out[i] = Any()
	}
	return out
}

// AnyFunction is the translation of bare Function: (...a: any[]) => any.
func AnyFunction() *TypeExpr {
	return Function([]Param{{Name: "a", Type: Any(), Variadic: true}}, Any())
}

type recorder struct {
	items []diag.Diagnostic
}

func (r *recorder) Report(d diag.Diagnostic) {
	r.items = append(r.items, d)
}
