// Package gen emits Go source from a resolved plan.
//
// Generation approach uses text/template + go/format for readable output.
//
// Emitted per run:
//   - One capabilities file with the consumer-form and provider-form
//     interface for every capability.
//   - One file per context with its accessor methods, one specialized
//     method per resolved operation, and an init function registering the
//     pair in the dispatch table.
//
// Every emitted call path is indirection-free: the provider chain and the
// projection layer are already inlined into plain field expressions.
package gen
