// Package match provides identifier normalization and similarity scoring.
//
// It backs two parts of the engine: automatic field-projection derivation
// (matching an accessor name like "scale_factor" against a struct field like
// "ScaleFactor") and "did you mean" suggestions attached to missing-provider,
// missing-slot, and missing-accessor diagnostics.
package match
