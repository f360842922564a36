// Package oracle reads the resolved symbol graph produced by the host
// compiler front end and turns it into a symbols.Graph.
//
// The dump is a plain data document (JSON, YAML or TOML) listing translation
// units and their symbols. Type annotations are carried as Closure type
// expression text and parsed here.
package oracle

// Dump is the top-level oracle document.
type Dump struct {
	// Version of the dump schema, checked against a semver constraint.
	Version string `json:"version" yaml:"version" toml:"version"`
	Units   []Unit `json:"units" yaml:"units" toml:"units"`
}

// Unit is one goog.provide file or goog.module.
type Unit struct {
	// Kind is "provide" or "module".
	Kind      string    `json:"kind" yaml:"kind" toml:"kind"`
	Namespace string    `json:"namespace" yaml:"namespace" toml:"namespace"`
	Path      string    `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	File      string    `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Requires  []Require `json:"requires,omitempty" yaml:"requires,omitempty" toml:"requires,omitempty"`
	Exports   []Export  `json:"exports,omitempty" yaml:"exports,omitempty" toml:"exports,omitempty"`
	Default   string    `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
	Symbols   []Symbol  `json:"symbols,omitempty" yaml:"symbols,omitempty" toml:"symbols,omitempty"`
}

// Require is a goog.require binding.
type Require struct {
	Local  string `json:"local" yaml:"local" toml:"local"`
	Module string `json:"module" yaml:"module" toml:"module"`
	// Export names the destructured export; empty binds the whole module.
	Export string `json:"export,omitempty" yaml:"export,omitempty" toml:"export,omitempty"`
}

// Export is a named goog.module export.
type Export struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	Symbol string `json:"symbol" yaml:"symbol" toml:"symbol"`
}

// Template is a @template parameter.
type Template struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Default string `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
}

// Param is a parameter; Type may carry the `=` and `...` markers.
type Param struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
}

// Ctor is a class constructor.
type Ctor struct {
	Params []Param `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
}

// Symbol is one declaration.
type Symbol struct {
	Name       string     `json:"name" yaml:"name" toml:"name"`
	Kind       string     `json:"kind" yaml:"kind" toml:"kind"`
	Visibility string     `json:"visibility,omitempty" yaml:"visibility,omitempty" toml:"visibility,omitempty"`
	Doc        string     `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
	Line       int        `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty"`
	Template   []Template `json:"template,omitempty" yaml:"template,omitempty" toml:"template,omitempty"`

	// Extends holds the superclass of a class, or the extended interfaces
	// of an interface, as type expressions.
	Extends    []string `json:"extends,omitempty" yaml:"extends,omitempty" toml:"extends,omitempty"`
	Implements []string `json:"implements,omitempty" yaml:"implements,omitempty" toml:"implements,omitempty"`
	Ctor       *Ctor    `json:"ctor,omitempty" yaml:"ctor,omitempty" toml:"ctor,omitempty"`

	Params  []Param  `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
	Returns string   `json:"returns,omitempty" yaml:"returns,omitempty" toml:"returns,omitempty"`
	Type    string   `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Const   bool     `json:"const,omitempty" yaml:"const,omitempty" toml:"const,omitempty"`
	Members []Member `json:"members,omitempty" yaml:"members,omitempty" toml:"members,omitempty"`
	Enum    *Enum    `json:"enum,omitempty" yaml:"enum,omitempty" toml:"enum,omitempty"`
}

// Member is a class or interface member.
type Member struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	// Kind is "method", "field" or "index". An index member has no name;
	// Key and Type hold its key and value types.
	Kind       string     `json:"kind" yaml:"kind" toml:"kind"`
	Visibility string     `json:"visibility,omitempty" yaml:"visibility,omitempty" toml:"visibility,omitempty"`
	Doc        string     `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
	Line       int        `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty"`
	Static     bool       `json:"static,omitempty" yaml:"static,omitempty" toml:"static,omitempty"`
	Override   bool       `json:"override,omitempty" yaml:"override,omitempty" toml:"override,omitempty"`
	Optional   bool       `json:"optional,omitempty" yaml:"optional,omitempty" toml:"optional,omitempty"`
	Template   []Template `json:"template,omitempty" yaml:"template,omitempty" toml:"template,omitempty"`
	Params     []Param    `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
	Returns    string     `json:"returns,omitempty" yaml:"returns,omitempty" toml:"returns,omitempty"`
	Type       string     `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Key        string     `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
}

// Enum is an enum's element type and members.
type Enum struct {
	Type    string       `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Members []EnumMember `json:"members,omitempty" yaml:"members,omitempty" toml:"members,omitempty"`
}

// EnumMember is one enum entry. A missing Value means the oracle could not
// determine the initializer.
type EnumMember struct {
	Name  string  `json:"name" yaml:"name" toml:"name"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
}
