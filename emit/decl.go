package emit

import (
	"fmt"
	"strings"

	"github.com/teranos/clutz/enums"
	"github.com/teranos/clutz/guard"
	"github.com/teranos/clutz/jsdoc"
	"github.com/teranos/clutz/logger"
	"github.com/teranos/clutz/symbols"
	"github.com/teranos/clutz/typeexpr"
)

func (w *unitWriter) writeEnum(b *strings.Builder, s *symbols.Symbol) {
	name := s.BaseName()
	res := enums.Translate(name, s.Enum, w.tr.ForSymbol(s.Name), w.sink)

	w.doc(b, s.Doc, nil, indent)
	if res.Style == enums.Native {
		fmt.Fprintf(b, "%senum %s {\n", indent, name)
		for _, m := range res.Members {
			fmt.Fprintf(b, "%s%s = %s,\n", memberIndent, m.Name, m.Value)
		}
		fmt.Fprintf(b, "%s}\n", indent)
		return
	}

	fmt.Fprintf(b, "%stype %s = %s;\n", indent, name, res.Type)
	fmt.Fprintf(b, "%slet %s: {\n", indent, name)
	for _, m := range res.Members {
		fmt.Fprintf(b, "%s%s: %s,\n", memberIndent, typeexpr.PropertyName(m.Name), m.Value)
	}
	fmt.Fprintf(b, "%s};\n", indent)
}

func (w *unitWriter) writeClass(b *strings.Builder, s *symbols.Symbol) {
	c := s.Class
	if c == nil {
		c = &symbols.ClassDecl{}
	}
	isClass := s.Kind == symbols.KindClass
	tr := w.tr.ForSymbol(s.Name, symbols.TypeParamNames(c.TypeParams)...)

	var ctorParams []typeexpr.Param
	if isClass && c.Ctor != nil {
		ctorParams = w.params(tr, c.Ctor.Params)
	}
	w.doc(b, s.Doc, ctorParams, indent)

	keyword := "interface"
	if isClass {
		keyword = "class"
	}
	fmt.Fprintf(b, "%s%s %s%s", indent, keyword, s.BaseName(), w.typeParams(tr, c.TypeParams))

	if isClass {
		if c.Super != nil {
			if h := w.heritage(tr, *c.Super); h != "" {
				b.WriteString(" extends " + h)
			}
		}
		if impls := w.heritageList(tr, c.Implements); len(impls) > 0 {
			b.WriteString(" implements " + strings.Join(impls, ", "))
		}
	} else {
		refs := append(append([]symbols.Ref(nil), c.Extends...), c.Implements...)
		if ext := w.heritageList(tr, refs); len(ext) > 0 {
			b.WriteString(" extends " + strings.Join(ext, ", "))
		}
	}
	b.WriteString(" {\n")

	if isClass {
		fmt.Fprintf(b, "%s%s\n", memberIndent, w.guards.Member(s.Name))
		w.writeIndexSignatures(b, tr, s)
		if c.Ctor != nil {
			fmt.Fprintf(b, "%sconstructor(%s);\n", memberIndent, typeexpr.RenderParams(ctorParams))
		}
	}
	for _, m := range c.Members {
		w.writeMember(b, tr, c, m, isClass)
	}
	fmt.Fprintf(b, "%s}\n", indent)
}

// heritage renders one extends/implements entry, or "" when the base does
// not resolve to a nameable type. IObject is never restated: its index
// signature is.
func (w *unitWriter) heritage(tr *typeexpr.Translator, ref symbols.Ref) string {
	if ref.Name == typeexpr.ObjectContract {
		return ""
	}
	t := tr.TranslateNonNull(typeexpr.Generic(typeexpr.Named(ref.Name), ref.Args...))
	switch t.Kind {
	case typeexpr.KindNamed, typeexpr.KindGeneric:
		return typeexpr.Render(t)
	}
	return ""
}

func (w *unitWriter) heritageList(tr *typeexpr.Translator, refs []symbols.Ref) []string {
	var out []string
	for _, r := range refs {
		if h := w.heritage(tr, r); h != "" {
			out = append(out, h)
		}
	}
	return out
}

func (w *unitWriter) writeIndexSignatures(b *strings.Builder, tr *typeexpr.Translator, s *symbols.Symbol) {
	for _, sig := range w.graph().IndexSignatures(s.ID) {
		if !writeIndex(b, tr, sig.Key, sig.Value) {
			continue
		}
		if sig.Length {
			fmt.Fprintf(b, "%slength: number;\n", memberIndent)
		}
	}
}

// writeIndex renders `[key: K]: V;`, reporting false when the key could not
// be coerced to string or number.
func writeIndex(b *strings.Builder, tr *typeexpr.Translator, key, value *typeexpr.TypeExpr) bool {
	t := tr.Translate(typeexpr.IndexSignature(key, value))
	if t.Kind != typeexpr.KindIndexSignature {
		return false
	}
	b.WriteString(memberIndent + "[")
	if t.CoercedFrom != "" {
		fmt.Fprintf(b, "/* warning: coerced from %s */ ", t.CoercedFrom)
	}
	fmt.Fprintf(b, "key: %s]: %s;\n", typeexpr.Render(t.IndexKey), typeexpr.Render(t.Value))
	return true
}

func (w *unitWriter) writeMember(b *strings.Builder, tr *typeexpr.Translator, owner *symbols.ClassDecl, m symbols.Member, isClass bool) {
	if guard.IsGuard(m.Name) {
		return
	}
	if m.Kind == symbols.Index {
		w.doc(b, m.Doc, nil, memberIndent)
		writeIndex(b, tr, m.Key, m.Type)
		return
	}
	name := typeexpr.PropertyName(m.Name)

	var modifiers string
	if isClass {
		switch m.Visibility {
		case symbols.Private:
			if m.Static {
				name = "static " + name
			}
			fmt.Fprintf(b, "%sprivate %s: any;\n", memberIndent, name)
			return
		case symbols.Protected:
			modifiers = "protected "
		}
		if m.Static {
			modifiers += "static "
		}
	}
	opt := ""
	if m.Optional {
		opt = "?"
	}

	// Statics cannot see the class's type parameters.
	var erase map[string]*typeexpr.TypeExpr
	if m.Static && len(owner.TypeParams) > 0 {
		erase = typeexpr.Bind(symbols.TypeParamNames(owner.TypeParams), nil)
	}

	switch m.Kind {
	case symbols.Field:
		t := tr.Translate(typeexpr.Substitute(m.Type, erase))
		w.doc(b, m.Doc, nil, memberIndent)
		fmt.Fprintf(b, "%s%s%s%s: %s;\n", memberIndent, modifiers, name, opt, typeexpr.Render(t))

	case symbols.Method:
		sig := m.Signature
		if sig == nil {
			sig = &symbols.Signature{}
		}
		mtr := tr.WithTypeParams(symbols.TypeParamNames(sig.TypeParams)...)
		params := w.params(mtr, typeexpr.SubstituteParams(sig.Params, erase))
		ret := w.returnType(mtr, typeexpr.Substitute(sig.Return, erase))
		w.doc(b, m.Doc, params, memberIndent)
		fmt.Fprintf(b, "%s%s%s%s%s(%s): %s;\n", memberIndent, modifiers, name, opt,
			w.typeParams(mtr, sig.TypeParams), typeexpr.RenderParams(params), ret)
	}
}

func (w *unitWriter) writeFunction(b *strings.Builder, s *symbols.Symbol) {
	sig := s.Function
	if sig == nil {
		sig = &symbols.Signature{}
	}
	tr := w.tr.ForSymbol(s.Name, symbols.TypeParamNames(sig.TypeParams)...)
	params := w.params(tr, sig.Params)
	w.doc(b, s.Doc, params, indent)
	fmt.Fprintf(b, "%sfunction %s%s(%s): %s;\n", indent, s.BaseName(),
		w.typeParams(tr, sig.TypeParams), typeexpr.RenderParams(params), w.returnType(tr, sig.Return))
}

func (w *unitWriter) writeVariable(b *strings.Builder, s *symbols.Symbol) {
	keyword, t := "let", typeexpr.Any()
	if v := s.Variable; v != nil {
		if v.Const {
			keyword = "const"
		}
		if v.Type != nil {
			t = w.tr.ForSymbol(s.Name).Translate(v.Type)
		}
	}
	w.doc(b, s.Doc, nil, indent)
	fmt.Fprintf(b, "%s%s %s: %s;\n", indent, keyword, s.BaseName(), typeexpr.Render(t))
}

func (w *unitWriter) writeTypedef(b *strings.Builder, s *symbols.Symbol) {
	td := s.Typedef
	if td == nil {
		td = &symbols.TypedefDecl{}
	}
	tr := w.tr.ForSymbol(s.Name, symbols.TypeParamNames(td.TypeParams)...)
	t := typeexpr.Any()
	if td.Type != nil {
		t = tr.Translate(td.Type)
	}
	w.doc(b, s.Doc, nil, indent)
	fmt.Fprintf(b, "%stype %s%s = %s;\n", indent, s.BaseName(), w.typeParams(tr, td.TypeParams), typeexpr.Render(t))
}

// typeParams renders `<T, U = any>`; defaults are a non-null position.
func (w *unitWriter) typeParams(tr *typeexpr.Translator, params []symbols.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name
		if p.Default != nil {
			parts[i] += " = " + typeexpr.Render(tr.TranslateNonNull(p.Default))
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (w *unitWriter) params(tr *typeexpr.Translator, params []typeexpr.Param) []typeexpr.Param {
	out := make([]typeexpr.Param, len(params))
	for i, p := range params {
		out[i] = tr.TranslateParam(p)
	}
	return out
}

// returnType renders a declared return; no declared return is any.
func (w *unitWriter) returnType(tr *typeexpr.Translator, ret *typeexpr.TypeExpr) string {
	if ret == nil {
		return "any"
	}
	return typeexpr.Render(tr.Translate(ret))
}

// doc writes the comments attached to a declaration, if any.
func (w *unitWriter) doc(b *strings.Builder, raw string, params []typeexpr.Param, at string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	blocks, err := jsdoc.Doc(w.ctx, raw, names)
	if err != nil {
		w.emitter.log.Debugw("dropping unparseable doc comment",
			logger.FieldUnit, w.unit.Name(),
			logger.FieldError, err)
		return
	}
	b.WriteString(jsdoc.Format(blocks, at))
}
