// Package guard names the private brand members that keep TypeScript from
// treating unrelated classes as structurally interchangeable.
//
// Every emitted class gets `private noStructuralTyping_<name>: any;` where
// <name> is its sanitised qualified name. Names are unique for the whole run.
package guard

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/teranos/clutz/diag"
)

// Prefix of every guard member name.
const Prefix = "noStructuralTyping_"

// Registry assigns guard names. It is safe for concurrent use, but Assign
// should be called once with every class up front so suffixes do not depend
// on worker scheduling.
type Registry struct {
	mu       sync.Mutex
	bySymbol map[string]string
	taken    map[string]string
	sink     diag.Sink
}

// NewRegistry creates a registry reporting collisions to sink.
func NewRegistry(sink diag.Sink) *Registry {
	if sink == nil {
		sink = diag.Discard
	}
	return &Registry{
		bySymbol: make(map[string]string),
		taken:    make(map[string]string),
		sink:     sink,
	}
}

// Assign registers symbols in sorted order.
func (r *Registry) Assign(symbols []string) {
	sorted := append([]string(nil), symbols...)
	sort.Strings(sorted)
	for _, s := range sorted {
		r.Name(s)
	}
}

// Name returns the guard member name for the class called symbol.
func (r *Registry) Name(symbol string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name, ok := r.bySymbol[symbol]; ok {
		return name
	}

	base := Prefix + Sanitize(symbol)
	name := base
	if owner, clash := r.taken[name]; clash {
		for i := 2; ; i++ {
			name = fmt.Sprintf("%s_%d", base, i)
			if _, clash := r.taken[name]; !clash {
				break
			}
		}
		d := diag.New(diag.NominalCollision, symbol,
			"guard name %s already used by %s, using %s", base, owner, name)
		r.sink.Report(d)
	}
	r.taken[name] = symbol
	r.bySymbol[symbol] = name
	return name
}

// Member renders the guard declaration for symbol.
func (r *Registry) Member(symbol string) string {
	return "private " + r.Name(symbol) + ": any;"
}

// IsGuard reports whether a member name is a guard.
func IsGuard(member string) bool {
	return strings.HasPrefix(member, Prefix)
}

// Sanitize maps a qualified name to identifier characters: dots and any
// other character not valid in an identifier become underscores.
func Sanitize(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case c == '_' || c == '$',
			c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
