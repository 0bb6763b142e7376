package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"capwire-generator/internal/common"
)

// Error codes for the resolution failure taxonomy. Every unresolvable
// (context, component) pair maps to exactly one of these.
const (
	CodeMissingProvider   = "missing_provider"
	CodeAmbiguousProvider = "ambiguous_provider"
	CodeUnsatisfied       = "unsatisfied_constraint"
	CodeMissingSlot       = "missing_slot"
	CodeIncompatibleSlot  = "incompatible_slot"
	CodeMissingAccessor   = "missing_accessor"
	CodeCyclicComposition = "cyclic_composition"
	CodeDuplicateWiring   = "duplicate_wiring"
)

// Diagnostics holds all diagnostic information from resolution.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Pair identifies which (context, component) pair this relates to (if any),
	// formatted as "Context/component".
	Pair string
	// Path identifies the slot, accessor, or provider this relates to (if any).
	Path string
	// Candidates are the competing or near-miss names considered, for
	// ambiguity reports and "did you mean" suggestions.
	Candidates []string
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, pair, path string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Pair:     pair,
		Path:     path,
	})
}

// AddErrorWithCandidates adds an error diagnostic carrying the set of
// candidate names that were considered.
func (d *Diagnostics) AddErrorWithCandidates(code, message, pair, path string, candidates []string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:   SeverityError,
		Code:       code,
		Message:    message,
		Pair:       pair,
		Path:       path,
		Candidates: candidates,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, pair, path string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Pair:     pair,
		Path:     path,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, pair, path string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  message,
		Pair:     pair,
		Path:     path,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Pair != "" {
		prefix = append(prefix, "["+d.Pair+"]")
	}

	if d.Path != "" {
		prefix = append(prefix, d.Path)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Candidates) > 0 {
		msg += " (candidates: " + strings.Join(d.Candidates, ", ") + ")"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
