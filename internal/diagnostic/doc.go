// Package diagnostic provides structured warnings, errors, and
// "why this resolved" explanations for the capability wiring engine.
//
// Key capabilities:
//   - Missing/ambiguous provider reports with candidate lists
//   - Slot and accessor resolution failures with the offending name and bound
//   - Explanation of wiring decisions
//
// Diagnostics accumulate across the whole build graph; resolution never
// halts at the first failure.
package diagnostic
