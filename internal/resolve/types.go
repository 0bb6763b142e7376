package resolve

import (
	"capwire-generator/internal/analyze"
	"capwire-generator/internal/common"
	"capwire-generator/internal/diagnostic"
	"capwire-generator/internal/expr"
	"capwire-generator/internal/schema"
)

// PairState tracks a (context, component) pair through resolution.
type PairState int

const (
	// StateUnresolved - no route chosen yet.
	StateUnresolved PairState = iota
	// StateDelegated - a provider chain was chosen but not yet validated.
	StateDelegated
	// StateValidated - the chosen chain's full constraint set holds.
	StateValidated
	// StateSpecialized - an indirection-free call path was produced.
	StateSpecialized
	// StateAmbiguous - terminal: several eligible providers, no wiring entry.
	StateAmbiguous
	// StateMissing - terminal: no eligible provider.
	StateMissing
)

// String returns a human-readable state name.
func (s PairState) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateDelegated:
		return "delegated"
	case StateValidated:
		return "validated"
	case StateSpecialized:
		return "specialized"
	case StateAmbiguous:
		return "ambiguous"
	case StateMissing:
		return "missing"
	default:
		return common.UnknownStr
	}
}

// Route records how a pair was delegated to its provider.
type Route int

const (
	// RouteNone - the pair never reached Delegated.
	RouteNone Route = iota
	// RouteExplicit - a direct wiring row named the provider.
	RouteExplicit
	// RouteBundle - a bundle reference contributed the row.
	RouteBundle
	// RouteImplicit - a single eligible provider was inferred.
	RouteImplicit
)

// String returns a human-readable route name.
func (r Route) String() string {
	switch r {
	case RouteNone:
		return "none"
	case RouteExplicit:
		return "explicit"
	case RouteBundle:
		return "bundle"
	case RouteImplicit:
		return "implicit"
	default:
		return common.UnknownStr
	}
}

// ResolvedPair is one row of the final dispatch table.
type ResolvedPair struct {
	// Context is the context name.
	Context string
	// Component is the capability name.
	Component string
	// State the pair ended resolution in.
	State PairState
	// Route records how the provider was chosen.
	Route Route
	// Bundle is the contributing bundle name when Route is RouteBundle.
	Bundle string
	// Chain is the provider composition chain, outermost first.
	Chain []string
	// Candidates lists the competing providers for an Ambiguous pair, or the
	// providers considered for a Missing one.
	Candidates []string
	// Operations maps operation name to its fully inlined expression tree.
	// Identifiers in these trees are Go field names of the context type.
	// Populated only in StateSpecialized.
	Operations map[string]expr.Node
	// Explanation describes why this wiring outcome was chosen.
	Explanation string
}

// Provider returns the outermost provider of the chain, or "".
func (p *ResolvedPair) Provider() string {
	if v, ok := common.First(p.Chain); ok {
		return v
	}

	return ""
}

// Key returns the canonical "Context/component" pair identifier.
func (p *ResolvedPair) Key() string {
	return schema.PairKey(p.Context, p.Component)
}

// Eval evaluates a specialized operation against concrete field values,
// keyed by Go field name. It exists so a specialization can be checked
// against sample data without generating code.
func (p *ResolvedPair) Eval(op string, fields map[string]float64) (float64, error) {
	node, ok := p.Operations[op]
	if !ok {
		return 0, &OpNotSpecializedError{Pair: p.Key(), Op: op}
	}

	return expr.Eval(node, fields)
}

// OpNotSpecializedError reports an Eval against an operation that never
// reached StateSpecialized.
type OpNotSpecializedError struct {
	Pair string
	Op   string
}

func (e *OpNotSpecializedError) Error() string {
	return "operation " + e.Op + " is not specialized for " + e.Pair
}

// AccessorKind distinguishes how an accessor was resolved.
type AccessorKind int

const (
	// AccessorField - resolves to a stored field, directly or renamed.
	AccessorField AccessorKind = iota
	// AccessorComputed - resolves to an expression over other accessors.
	AccessorComputed
)

// AccessorPlan records how one accessor of a context resolves.
type AccessorPlan struct {
	// Name of the accessor (e.g., "width").
	Name string
	// Kind of resolution.
	Kind AccessorKind
	// Field is the Go field name for AccessorField.
	Field string
	// Expr is the inlined expression over stored fields. Set for both kinds;
	// for AccessorField it is the bare field reference.
	Expr expr.Node
	// Explicit is true when an explicit projection produced this plan,
	// false when automatic derivation matched a field by name.
	Explicit bool
}

// SlotBinding records one resolved entry of a context's type-slot dictionary.
type SlotBinding struct {
	// Name of the slot.
	Name string
	// TypeRef is the declared type reference after following From chains.
	TypeRef string
	// Type is the resolved type, nil when the reference did not resolve.
	Type *analyze.TypeInfo
	// Family is the declaring family name, or "" for a standalone slot.
	Family string
}

// ResolvedContext aggregates everything resolved for one context.
type ResolvedContext struct {
	// Name of the context.
	Name string
	// Decl is the source declaration.
	Decl *schema.ContextDecl
	// Type is the analyzed Go struct type, nil when analysis failed.
	Type *analyze.TypeInfo
	// Slots is the resolved type-slot dictionary.
	Slots map[string]SlotBinding
	// Accessors are the accessor plans resolution touched.
	Accessors map[string]*AccessorPlan
	// Pairs are the dispatch rows, sorted by component.
	Pairs []ResolvedPair
}

// Pair returns the resolved pair for a component, or nil.
func (c *ResolvedContext) Pair(component string) *ResolvedPair {
	for i := range c.Pairs {
		if c.Pairs[i].Component == component {
			return &c.Pairs[i]
		}
	}

	return nil
}

// Plan is the final output of the resolution pipeline: everything code
// generation needs, plus the accumulated diagnostics.
type Plan struct {
	// Contexts in declaration order.
	Contexts []ResolvedContext
	// Graph holds the analyzed types for package/import lookups.
	Graph *analyze.TypeGraph
	// Diagnostics accumulated across the whole build graph.
	Diagnostics diagnostic.Diagnostics
}

// Context returns the resolved context by name, or nil.
func (p *Plan) Context(name string) *ResolvedContext {
	for i := range p.Contexts {
		if p.Contexts[i].Name == name {
			return &p.Contexts[i]
		}
	}

	return nil
}

// Complete returns true when every pair reached StateSpecialized and no
// error diagnostics were recorded.
func (p *Plan) Complete() bool {
	if p.Diagnostics.HasErrors() {
		return false
	}

	for i := range p.Contexts {
		for j := range p.Contexts[i].Pairs {
			if p.Contexts[i].Pairs[j].State != StateSpecialized {
				return false
			}
		}
	}

	return true
}

// StuckPairs returns every pair that did not reach StateSpecialized.
func (p *Plan) StuckPairs() []*ResolvedPair {
	var stuck []*ResolvedPair

	for i := range p.Contexts {
		for j := range p.Contexts[i].Pairs {
			if p.Contexts[i].Pairs[j].State != StateSpecialized {
				stuck = append(stuck, &p.Contexts[i].Pairs[j])
			}
		}
	}

	return stuck
}
