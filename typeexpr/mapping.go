package typeexpr

// Global describes a Closure extern that maps onto a TypeScript global.
type Global struct {
	// Target is the TypeScript name.
	Target string
	// Arity is the number of type parameters the target takes; references
	// with fewer arguments are padded with any.
	Arity int
}

// TypeMapping maps Closure extern names to TypeScript globals. Names handled
// structurally (Array, Object, Function, IObject) are not listed here.
var TypeMapping = map[string]Global{
	"IArrayLike":       {Target: "ArrayLike", Arity: 1},
	"IThenable":        {Target: "PromiseLike", Arity: 1},
	"Thenable":         {Target: "PromiseLike", Arity: 1},
	"Promise":          {Target: "Promise", Arity: 1},
	"Iterable":         {Target: "Iterable", Arity: 1},
	"Iterator":         {Target: "Iterator", Arity: 1},
	"IIterableResult":  {Target: "IteratorResult", Arity: 1},
	"Generator":        {Target: "Generator", Arity: 1},
	"AsyncIterable":    {Target: "AsyncIterable", Arity: 1},
	"AsyncIterator":    {Target: "AsyncIterator", Arity: 1},
	"ReadonlyArray":    {Target: "ReadonlyArray", Arity: 1},
	"Map":              {Target: "Map", Arity: 2},
	"WeakMap":          {Target: "WeakMap", Arity: 2},
	"Set":              {Target: "Set", Arity: 1},
	"WeakSet":          {Target: "WeakSet", Arity: 1},
	"Object":           {Target: "Object"},
	"String":           {Target: "String"},
	"Number":           {Target: "Number"},
	"Boolean":          {Target: "Boolean"},
	"Symbol":           {Target: "Symbol"},
	"Date":             {Target: "Date"},
	"RegExp":           {Target: "RegExp"},
	"Error":            {Target: "Error"},
	"TypeError":        {Target: "TypeError"},
	"ArrayBuffer":      {Target: "ArrayBuffer"},
	"Uint8Array":       {Target: "Uint8Array"},
	"Event":            {Target: "Event"},
	"EventTarget":      {Target: "EventTarget"},
	"Element":          {Target: "Element"},
	"HTMLElement":      {Target: "HTMLElement"},
	"Node":             {Target: "Node"},
	"Document":         {Target: "Document"},
	"Window":           {Target: "Window"},
	"JSON":             {Target: "JSON"},
	"arguments":        {Target: "IArguments"},
	"Arguments":        {Target: "IArguments"},
	"IteratorIterable": {Target: "IterableIterator", Arity: 1},
}

// Closure names with a structural translation.
const (
	arrayName    = "Array"
	objectName   = "Object"
	functionName = "Function"
	iObjectName  = "IObject"
)

// Index-bearing structural contracts a class may implement.
const (
	ArrayLikeContract = "IArrayLike"
	ObjectContract    = "IObject"
)
