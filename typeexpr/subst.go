package typeexpr

// Substitute replaces type parameters named in bindings. Used when an
// inherited member or index signature is seen through a parameterised base,
// e.g. IArrayLike<T> implemented as IArrayLike<string>.
func Substitute(t *TypeExpr, bindings map[string]*TypeExpr) *TypeExpr {
	if t == nil || len(bindings) == 0 {
		return t
	}
	switch t.Kind {
	case KindTypeParam:
		if b, ok := bindings[t.Name]; ok {
			return b
		}
		return t
	case KindNamed:
		if !t.Resolved {
			if b, ok := bindings[t.Name]; ok {
				return b
			}
		}
		return t
	case KindNullable:
		return Nullable(Substitute(t.Inner, bindings))
	case KindOptional:
		return Optional(Substitute(t.Inner, bindings))
	case KindArrayLike:
		return Array(Substitute(t.Inner, bindings))
	case KindUnion:
		members := make([]*TypeExpr, len(t.Members))
		for i, m := range t.Members {
			members[i] = Substitute(m, bindings)
		}
		return Union(members...)
	case KindRecord:
		fields := make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: Substitute(f.Type, bindings), Optional: f.Optional}
		}
		return Record(fields...)
	case KindGeneric:
		args := make([]*TypeExpr, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(a, bindings)
		}
		return Generic(t.Base, args...)
	case KindFunction:
		params := SubstituteParams(t.Params, bindings)
		ret := Substitute(t.Return, bindings)
		if t.Ctor {
			return Constructor(params, ret)
		}
		return Function(params, ret)
	case KindIndexSignature:
		return &TypeExpr{
			Kind:        KindIndexSignature,
			IndexKey:    Substitute(t.IndexKey, bindings),
			Value:       Substitute(t.Value, bindings),
			CoercedFrom: t.CoercedFrom,
		}
	}
	return t
}

// SubstituteParams applies Substitute to every parameter type.
func SubstituteParams(params []Param, bindings map[string]*TypeExpr) []Param {
	out := make([]Param, len(params))
	for i, p := range params {
		p.Type = Substitute(p.Type, bindings)
		out[i] = p
	}
	return out
}

// Bind zips template names with arguments; missing arguments bind to any.
func Bind(names []string, args []*TypeExpr) map[string]*TypeExpr {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]*TypeExpr, len(names))
	for i, name := range names {
		if i < len(args) && args[i] != nil {
			out[name] = args[i]
		} else {
			out[name] = Any()
		}
	}
	return out
}
