package symbols

import "strings"

// ModuleStyle is how a unit declares itself.
type ModuleStyle uint8

const (
	// StyleProvide is a legacy goog.provide namespace.
	StyleProvide ModuleStyle = iota
	// StyleModule is a goog.module with an exports object.
	StyleModule
)

func (s ModuleStyle) String() string {
	if s == StyleModule {
		return "module"
	}
	return "provide"
}

// Export is one named export of a goog.module.
type Export struct {
	Name   string
	Symbol string
}

// Require is one goog.require binding. Local is the name the unit uses.
// Export is set for a destructuring require
// (const {Export: Local} = goog.require('module')); empty binds the whole module.
type Require struct {
	Local  string
	Module string
	Export string
}

// ModuleDecl is one translation unit.
type ModuleDecl struct {
	// Name is the Closure namespace (goog.provide / goog.module argument).
	Name  string
	Style ModuleStyle
	// Path is the file-path alias a module is importable under, if any.
	Path string
	File string

	Exports  []Export
	Default  string
	Requires []Require

	// Symbols declared by the unit, filled by Build.
	Symbols []ID
	// Missing lists required modules absent from the input, filled by Build.
	Missing []string
}

// Aliases returns the external names the unit is importable under:
// 'goog:<namespace>' and, when set, its file path.
func (m *ModuleDecl) Aliases() []string {
	aliases := []string{"goog:" + m.Name}
	if m.Path != "" {
		aliases = append(aliases, m.Path)
	}
	return aliases
}

// RequireFor returns the require bound to local.
func (m *ModuleDecl) RequireFor(local string) (Require, bool) {
	for _, r := range m.Requires {
		if r.Local == local {
			return r, true
		}
	}
	return Require{}, false
}

// ExportNamed returns the export called name.
func (m *ModuleDecl) ExportNamed(name string) (Export, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}

// IsMissing reports whether module was required but not found.
func (m *ModuleDecl) IsMissing(module string) bool {
	for _, name := range m.Missing {
		if name == module {
			return true
		}
	}
	return false
}

func mangle(namespace string) string {
	return strings.ReplaceAll(namespace, ".", "$")
}

// ModuleExportsName is the internal name of a goog.module's exports object.
func ModuleExportsName(namespace string) string {
	return "module$exports$" + mangle(namespace)
}

// ModuleContentsName is the internal name of a goog.module local declaration.
func ModuleContentsName(namespace, local string) string {
	return "module$contents$" + mangle(namespace) + "_" + local
}
