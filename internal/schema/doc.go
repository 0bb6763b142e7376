// Package schema defines the YAML declaration surface for the capability
// wiring engine.
//
// A wiring file declares four kinds of build-time-only data:
//   - capabilities: named contracts of operations and required type slots,
//     each with a consumer-form and a provider-form interface name
//   - providers: generic implementations of a capability, with the constraint
//     set they require from a context and an expression body per operation
//   - bundles: named groups of component->provider rows reusable across contexts
//   - contexts: concrete subject types with their slot bindings, field
//     projections, consumed capabilities, and wiring rows
//
// The package owns parsing, shorthand YAML forms, and structural validation.
// Type-level checks (slot bounds, accessor resolution) belong to resolve.
package schema
