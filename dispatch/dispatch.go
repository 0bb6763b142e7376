// Package dispatch is the small runtime consumed by generated code. Every
// resolved (context, component) pair registers its specialized entry in an
// init function, so a lookup is one map access with no reflection and no
// runtime resolution.
package dispatch

import (
	"fmt"
	"sort"
	"sync"
)

// Key identifies one dispatch table row.
type Key struct {
	// Context is the context name (e.g., "Rect").
	Context string
	// Component is the capability name (e.g., "area").
	Component string
}

// String returns the canonical "Context/component" form.
func (k Key) String() string {
	return k.Context + "/" + k.Component
}

// Op is a specialized operation: the whole provider chain inlined into one
// function over the concrete context value.
type Op func(subject any) any

// Entry is one registered dispatch row.
type Entry struct {
	// Providers is the provider chain, outermost first.
	Providers []string
	// Route records how the pair was wired (explicit, bundle, implicit).
	Route string
	// Ops maps operation name to its specialized function.
	Ops map[string]Op
}

// Table is a registry of dispatch entries. Registration happens during
// package init; lookups afterwards are read-only.
type Table struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

// NewTable creates an empty dispatch table.
func NewTable() *Table {
	return &Table{entries: make(map[Key]Entry)}
}

// Register adds an entry. Registering the same pair twice is an error: the
// generator emits exactly one entry per resolved pair.
func (t *Table) Register(context, component string, e Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := Key{Context: context, Component: component}
	if _, dup := t.entries[key]; dup {
		return fmt.Errorf("dispatch entry %s registered twice", key)
	}

	t.entries[key] = e

	return nil
}

// Lookup returns the entry for a pair.
func (t *Table) Lookup(context, component string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[Key{Context: context, Component: component}]

	return e, ok
}

// Call invokes one specialized operation on a subject value.
func (t *Table) Call(context, component, op string, subject any) (any, error) {
	e, ok := t.Lookup(context, component)
	if !ok {
		return nil, fmt.Errorf("no dispatch entry for %s/%s", context, component)
	}

	fn, ok := e.Ops[op]
	if !ok {
		return nil, fmt.Errorf("dispatch entry %s/%s has no operation %q", context, component, op)
	}

	return fn(subject), nil
}

// Keys returns every registered key in sorted order.
func (t *Table) Keys() []Key {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Context != keys[j].Context {
			return keys[i].Context < keys[j].Context
		}

		return keys[i].Component < keys[j].Component
	})

	return keys
}

// Default is the table generated code registers into.
var Default = NewTable()

// MustRegister registers into the Default table and panics on duplicates.
// Generated init functions use it; a duplicate means two generator runs were
// compiled into the same binary.
func MustRegister(context, component string, e Entry) {
	if err := Default.Register(context, component, e); err != nil {
		panic(err)
	}
}

// Lookup reads from the Default table.
func Lookup(context, component string) (Entry, bool) {
	return Default.Lookup(context, component)
}

// Call invokes an operation through the Default table.
func Call(context, component, op string, subject any) (any, error) {
	return Default.Call(context, component, op, subject)
}
