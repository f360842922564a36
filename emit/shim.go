package emit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/teranos/clutz/guard"
	"github.com/teranos/clutz/resolver"
	"github.com/teranos/clutz/symbols"
	"github.com/teranos/clutz/typeexpr"
)

// writeModuleExports declares a goog.module's exports object as a namespace
// re-exporting its local declarations.
func (w *unitWriter) writeModuleExports(b *strings.Builder) {
	u := w.unit
	if u.Decl.Style != symbols.StyleModule || len(u.Exports) == 0 {
		return
	}
	fmt.Fprintf(b, "declare namespace %s.%s {\n", w.namespace(), symbols.ModuleExportsName(u.Name()))
	for _, e := range u.Exports {
		fmt.Fprintf(b, "%sexport import %s = %s;\n", indent, e.Name, w.resolver.Qualify(e.Symbol))
	}
	b.WriteString("}\n")
}

// writeRequireOverload lets namespace-style provides be reached through
// goog.require('ns') with the namespace's own type.
func (w *unitWriter) writeRequireOverload(b *strings.Builder) {
	u := w.unit
	if u.Decl.Style != symbols.StyleProvide || u.Form != resolver.ExportAssign {
		return
	}
	if u.Self != nil && u.Self.Kind != symbols.KindNamespace {
		return
	}
	fmt.Fprintf(b, "declare namespace %s.goog {\n", w.namespace())
	fmt.Fprintf(b, "%sfunction require(name: %s): typeof %s;\n", indent, typeexpr.QuoteString(u.Name()), u.Target)
	b.WriteString("}\n")
}

// writeShims emits one ambient module per alias, each importing the
// canonical declaration. When a unit has both a goog: and a path alias,
// each shim records the other name.
func (w *unitWriter) writeShims(b *strings.Builder) {
	u := w.unit
	aliases := u.Decl.Aliases()
	local := localName(u.Name())
	for i, alias := range aliases {
		fmt.Fprintf(b, "declare module %s {\n", typeexpr.QuoteString(alias))
		fmt.Fprintf(b, "%simport %s = %s;\n", indent, local, u.Target)
		if u.Form == resolver.ExportDefault {
			fmt.Fprintf(b, "%sexport default %s;\n", indent, local)
		} else {
			fmt.Fprintf(b, "%sexport = %s;\n", indent, local)
		}
		if len(aliases) > 1 {
			if i == 0 {
				fmt.Fprintf(b, "%sconst __clutz_actual_path: %s;\n", indent, typeexpr.QuoteString(u.Decl.Path))
			} else {
				fmt.Fprintf(b, "%sconst __clutz_actual_namespace: %s;\n", indent, typeexpr.QuoteString(u.Name()))
			}
		}
		b.WriteString("}\n")
	}
}

// localName is the binding a shim imports the unit under.
func localName(namespace string) string {
	name := guard.Sanitize(symbols.BaseName(namespace))
	if name == "" {
		return "alias"
	}
	if r := rune(name[0]); unicode.IsDigit(r) {
		name = "_" + name
	}
	return name
}
