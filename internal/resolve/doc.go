// Package resolve implements the capability-resolution engine.
//
// For every (context, component) pair the program consumes, the resolver
// walks the pair through the state machine
//
//	Unresolved -> Delegated -> Validated -> Specialized
//
// with the terminal failure states Ambiguous (several eligible providers,
// no disambiguating wiring entry) and Missing (no eligible provider).
// Delegation prefers an explicit wiring row, then a bundle row, then the
// implicit route of a single eligible provider. Validation recursively checks
// the chosen provider's full constraint set: accessors through the
// field-projection layer, type slots through the per-context slot dictionary,
// and required capabilities through recursive pair resolution. Specialization
// inlines the whole provider/projection chain into one expression tree over
// stored fields, with no indirection left.
//
// Resolution is a pure function of the frozen declaration registries: it may
// run per-context in parallel but always produces the result of a sequential
// pass, and it accumulates every independent error instead of stopping at
// the first.
package resolve
