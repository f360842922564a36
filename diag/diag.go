// Package diag records translation diagnostics.
//
// A diagnostic never stops a run. The emitter degrades the offending type or
// member, records what happened here, and keeps going.
package diag

import (
	"fmt"
	"sort"
	"sync"
)

// Code identifies a class of translation problem.
type Code string

const (
	// UnresolvableReference: a named type or base class with no symbol in the graph
	UnresolvableReference Code = "UNRESOLVABLE_REFERENCE"
	// AmbiguousEnumLiteral: an enum member whose value is not a known literal
	AmbiguousEnumLiteral Code = "AMBIGUOUS_ENUM_LITERAL"
	// NominalCollision: two classes sanitise to the same guard name
	NominalCollision Code = "NOMINAL_COLLISION"
	// FatalGraphError: a unit whose own declaration cannot be built
	FatalGraphError Code = "FATAL_GRAPH_ERROR"
	// CoercedIndexKey: an index signature key that TypeScript does not accept
	CoercedIndexKey Code = "COERCED_INDEX_KEY"
	// MalformedType: oracle type text that does not parse
	MalformedType Code = "MALFORMED_TYPE"
	// MissingImport: a required module absent from the input set
	MissingImport Code = "MISSING_IMPORT"
)

// Severity of a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DefaultSeverity is the severity a code is recorded with.
func DefaultSeverity(code Code) Severity {
	switch code {
	case NominalCollision:
		return Info
	case FatalGraphError:
		return Error
	default:
		return Warning
	}
}

// Diagnostic is one recorded translation problem.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Unit     string   `json:"unit,omitempty"`
	Symbol   string   `json:"symbol,omitempty"`
	Message  string   `json:"message"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
}

func (d Diagnostic) String() string {
	loc := ""
	if d.File != "" {
		loc = d.File
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d", d.File, d.Line)
		}
		loc += ": "
	}
	subject := d.Symbol
	if subject == "" {
		subject = d.Unit
	}
	if subject != "" {
		return fmt.Sprintf("%s%s %s: %s", loc, d.Severity, subject, d.Message)
	}
	return fmt.Sprintf("%s%s: %s", loc, d.Severity, d.Message)
}

// Sink receives diagnostics.
type Sink interface {
	Report(d Diagnostic)
}

// New builds a diagnostic with the code's default severity.
func New(code Code, symbol, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: DefaultSeverity(code),
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Collector is a Sink safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Report records d.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// All returns the diagnostics in a stable order: unit, symbol, code, message.
// Emission order across workers is not deterministic, the returned order is.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
	return out
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Count returns how many diagnostics carry code.
func (c *Collector) Count(code Code) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// CountByCode groups diagnostics by code.
func CountByCode(ds []Diagnostic) map[Code]int {
	out := make(map[Code]int)
	for _, d := range ds {
		out[d.Code]++
	}
	return out
}

// Scoped stamps a unit name (and optional file) on everything reported through it.
type Scoped struct {
	Sink Sink
	Unit string
	File string
}

// Report forwards d with the scope's unit and file filled in.
func (s Scoped) Report(d Diagnostic) {
	if d.Unit == "" {
		d.Unit = s.Unit
	}
	if d.File == "" {
		d.File = s.File
	}
	s.Sink.Report(d)
}

// Discard drops every diagnostic.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}
