package resolve

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"capwire-generator/internal/analyze"
	"capwire-generator/internal/common"
	"capwire-generator/internal/diagnostic"
	"capwire-generator/internal/expr"
	"capwire-generator/internal/registry"
	"capwire-generator/internal/schema"
)

// Resolver turns a frozen registry plus an analyzed type graph into a Plan.
// Contexts resolve independently, so they run concurrently; diagnostics and
// pairs are merged in declaration order afterwards, which keeps the output
// byte-for-byte identical at any parallelism level.
type Resolver struct {
	reg    *registry.Registry
	graph  *analyze.TypeGraph
	config Config
}

// NewResolver creates a resolver. The graph may be nil, in which case slot
// bound checks and field projections degrade to name-level checks only.
func NewResolver(reg *registry.Registry, graph *analyze.TypeGraph, config Config) *Resolver {
	return &Resolver{reg: reg, graph: graph, config: config}
}

// Resolve freezes the registry and resolves every declared context.
func (r *Resolver) Resolve() (*Plan, error) {
	r.reg.Freeze()

	names := r.reg.ContextNames()
	results := make([]ResolvedContext, len(names))
	resultDiags := make([]diagnostic.Diagnostics, len(names))

	var group errgroup.Group

	group.SetLimit(max(1, r.config.Parallelism))

	for i, name := range names {
		group.Go(func() error {
			results[i], resultDiags[i] = r.resolveContext(name)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	plan := &Plan{Contexts: results, Graph: r.graph}
	for i := range resultDiags {
		plan.Diagnostics.Merge(resultDiags[i])
	}

	return plan, nil
}

func (r *Resolver) resolveContext(name string) (ResolvedContext, diagnostic.Diagnostics) {
	var diags diagnostic.Diagnostics

	decl := r.reg.Context(name)

	var typ *analyze.TypeInfo
	if r.graph != nil {
		typ = analyze.ResolveRef(decl.Type, r.graph)
		if typ == nil {
			diags.AddError(diagnostic.CodeUnsatisfied,
				fmt.Sprintf("context %q names type %q, which was not found in the analyzed packages", name, decl.Type),
				"", name)
		}
	}

	cr := &contextResolver{
		r:         r,
		decl:      decl,
		typ:       typ,
		slots:     resolveSlots(decl, r.graph, &diags),
		pairs:     make(map[string]*ResolvedPair),
		resolving: make(map[string]bool),
		diags:     &diags,
	}
	cr.pj = newProjector(decl, typ, r.config.MaxCandidates, &diags)
	cr.buildRows()

	for _, component := range cr.components() {
		cr.resolvePair(component)
	}

	resolved := ResolvedContext{
		Name:      name,
		Decl:      decl,
		Type:      typ,
		Slots:     cr.slots,
		Accessors: cr.pj.plans,
	}

	for _, component := range common.SortedKeys(cr.pairs) {
		resolved.Pairs = append(resolved.Pairs, *cr.pairs[component])
	}

	return resolved, diags
}

// row is a delegation source for one component after bundle expansion.
type row struct {
	chain  []string
	route  Route
	bundle string
}

// contextResolver carries the per-context resolution state. It is used from a
// single goroutine; contexts never share mutable state.
type contextResolver struct {
	r     *Resolver
	decl  *schema.ContextDecl
	typ   *analyze.TypeInfo
	slots map[string]SlotBinding
	pj    *projector

	rows      map[string]row
	pairs     map[string]*ResolvedPair
	resolving map[string]bool
	diags     *diagnostic.Diagnostics
}

// buildRows flattens the context's wiring into one row per component. Direct
// rows take precedence over bundle rows; collisions among the remaining rows
// were rejected during validation.
func (c *contextResolver) buildRows() {
	c.rows = make(map[string]row, len(c.decl.Wiring))

	for i := range c.decl.Wiring {
		w := &c.decl.Wiring[i]
		if w.IsBundleRef() || w.Component == "" {
			continue
		}

		if _, dup := c.rows[w.Component]; dup {
			continue
		}

		c.rows[w.Component] = row{chain: w.Chain(), route: RouteExplicit}
	}

	for i := range c.decl.Wiring {
		w := &c.decl.Wiring[i]
		if !w.IsBundleRef() {
			continue
		}

		bundle := c.r.reg.Bundle(w.Bundle)
		if bundle == nil {
			continue
		}

		for j := range bundle.Wiring {
			bw := &bundle.Wiring[j]
			if _, taken := c.rows[bw.Component]; taken {
				continue
			}

			c.rows[bw.Component] = row{chain: bw.Chain(), route: RouteBundle, bundle: bundle.Name}
		}
	}
}

// components returns the set of components this context must resolve: every
// wired component plus everything the context declares it uses.
func (c *contextResolver) components() []string {
	set := make(map[string]bool, len(c.rows)+len(c.decl.Uses))
	for component := range c.rows {
		set[component] = true
	}

	for _, u := range c.decl.Uses {
		set[u] = true
	}

	return common.SortedKeys(set)
}

// resolvePair drives one (context, component) pair through the state machine.
// Results are memoized; a re-entrant request means a provider requirement
// cycle and resolves to a terminal unresolved stub.
func (c *contextResolver) resolvePair(component string) *ResolvedPair {
	if p, ok := c.pairs[component]; ok {
		return p
	}

	key := schema.PairKey(c.decl.Name, component)

	if c.resolving[component] {
		c.diags.AddError(diagnostic.CodeCyclicComposition,
			fmt.Sprintf("capability %q depends on itself through provider requirements", component),
			key, "")

		stub := &ResolvedPair{Context: c.decl.Name, Component: component, State: StateUnresolved}
		c.pairs[component] = stub

		return stub
	}

	c.resolving[component] = true
	p := c.resolveUncached(component, key)
	delete(c.resolving, component)

	c.pairs[component] = p

	return p
}

func (c *contextResolver) resolveUncached(component, key string) *ResolvedPair {
	pair := &ResolvedPair{Context: c.decl.Name, Component: component, State: StateUnresolved}

	capDecl := c.r.reg.Capability(component)
	if capDecl == nil {
		pair.State = StateMissing
		pair.Explanation = "unknown capability"
		c.diags.AddErrorWithCandidates(diagnostic.CodeMissingProvider,
			fmt.Sprintf("context %q uses unknown capability %q", c.decl.Name, component),
			key, "",
			c.capped(c.r.reg.ComponentNames()))

		return pair
	}

	if !c.delegate(pair, key) {
		return pair
	}

	if !c.validatePair(pair, capDecl, key) {
		return pair
	}

	pair.State = StateValidated

	if c.specializePair(pair, capDecl, key) {
		pair.State = StateSpecialized
	}

	return pair
}

// delegate picks the provider chain: an explicit wiring row first, then a
// bundle row, then the implicit route of a single eligible provider.
func (c *contextResolver) delegate(pair *ResolvedPair, key string) bool {
	if row, ok := c.rows[pair.Component]; ok {
		pair.State = StateDelegated
		pair.Route = row.route
		pair.Bundle = row.bundle
		pair.Chain = row.chain

		switch row.route {
		case RouteBundle:
			pair.Explanation = fmt.Sprintf("wired by bundle %q", row.bundle)
		default:
			pair.Explanation = "explicit wiring row"
		}

		return true
	}

	declared := c.r.reg.ProvidersFor(pair.Component)

	var eligible []string

	for _, name := range declared {
		prov := c.r.reg.Provider(name)
		if prov != nil && c.eligible(prov, map[string]bool{pair.Component: true}) {
			eligible = append(eligible, name)
		}
	}

	switch {
	case common.IsSingle(eligible):
		pair.State = StateDelegated
		pair.Route = RouteImplicit
		pair.Chain = eligible
		pair.Explanation = fmt.Sprintf("implicit: %q is the only eligible provider", eligible[0])

		return true

	case common.IsMultiple(eligible):
		pair.State = StateAmbiguous
		pair.Candidates = c.capped(eligible)
		pair.Explanation = "several eligible providers"
		c.diags.AddErrorWithCandidates(diagnostic.CodeAmbiguousProvider,
			fmt.Sprintf("capability %q on context %q has several eligible providers; add a wiring entry",
				pair.Component, c.decl.Name),
			key, "", pair.Candidates)

		return false

	default:
		pair.State = StateMissing
		pair.Candidates = c.capped(declared)
		pair.Explanation = "no eligible provider"
		c.diags.AddErrorWithCandidates(diagnostic.CodeMissingProvider,
			fmt.Sprintf("no provider satisfies capability %q on context %q", pair.Component, c.decl.Name),
			key, "", pair.Candidates)

		return false
	}
}

// eligible is the dry-run constraint check backing the implicit route. It
// records no diagnostics; a provider that fails here is simply not a
// candidate. Higher-order providers are never eligible implicitly because
// their inner chain can only come from a wiring entry.
func (c *contextResolver) eligible(prov *schema.ProviderDecl, visited map[string]bool) bool {
	if prov.IsHigherOrder() {
		return false
	}

	capDecl := c.r.reg.Capability(prov.Capability)
	if capDecl == nil {
		return false
	}

	if !checkSlotReqs(capDecl.Slots, c.slots, "", "", nil) {
		return false
	}

	if !checkSlotReqs(prov.Requires.Slots, c.slots, "", "", nil) {
		return false
	}

	for _, acc := range prov.Requires.Accessors {
		if !c.pj.resolvable(acc) {
			return false
		}
	}

	for _, dep := range prov.Requires.Capabilities {
		if !c.componentResolvable(dep, visited) {
			return false
		}
	}

	bodies := prov.OperationBodies(capDecl.Operations)
	for _, op := range capDecl.Operations {
		if bodies[op.Name] == "" {
			return false
		}
	}

	return true
}

// componentResolvable reports whether a required component would resolve on
// this context: wired, or implicitly via exactly one eligible provider.
func (c *contextResolver) componentResolvable(component string, visited map[string]bool) bool {
	if visited[component] {
		return false
	}

	if _, wired := c.rows[component]; wired {
		return true
	}

	visited[component] = true
	defer delete(visited, component)

	n := 0

	for _, name := range c.r.reg.ProvidersFor(component) {
		prov := c.r.reg.Provider(name)
		if prov != nil && c.eligible(prov, visited) {
			n++
		}
	}

	return n == 1
}

// validatePair checks the full constraint set of the delegated chain. Every
// independent failure is recorded; the pair advances only if all hold.
func (c *contextResolver) validatePair(pair *ResolvedPair, capDecl *schema.CapabilityDecl, key string) bool {
	if common.IsEmpty(pair.Chain) {
		c.diags.AddError(diagnostic.CodeMissingProvider,
			fmt.Sprintf("wiring row for %q names no provider", pair.Component), key, "")

		return false
	}

	ok := checkSlotReqs(capDecl.Slots, c.slots, key, fmt.Sprintf("capability %q", capDecl.Name), c.diags)

	for i, name := range pair.Chain {
		prov := c.r.reg.Provider(name)
		if prov == nil {
			ok = false

			c.diags.AddErrorWithCandidates(diagnostic.CodeMissingProvider,
				fmt.Sprintf("wiring names unknown provider %q", name),
				key, name,
				c.capped(c.r.reg.ProvidersFor(pair.Component)))

			continue
		}

		if prov.Capability != pair.Component {
			ok = false

			c.diags.AddError(diagnostic.CodeUnsatisfied,
				fmt.Sprintf("provider %q implements %q, not %q", name, prov.Capability, pair.Component),
				key, name)

			continue
		}

		last := i == len(pair.Chain)-1

		if prov.IsHigherOrder() && last {
			ok = false

			c.diags.AddError(diagnostic.CodeUnsatisfied,
				fmt.Sprintf("provider %q composes an inner provider, but the chain ends with it", name),
				key, name)
		}

		if !prov.IsHigherOrder() && !last {
			ok = false

			c.diags.AddError(diagnostic.CodeUnsatisfied,
				fmt.Sprintf("provider %q does not accept an inner provider", name),
				key, name)
		}

		if !c.validateProvider(prov, capDecl, key) {
			ok = false
		}
	}

	return ok
}

func (c *contextResolver) validateProvider(
	prov *schema.ProviderDecl,
	capDecl *schema.CapabilityDecl,
	key string,
) bool {
	ok := checkSlotReqs(prov.Requires.Slots, c.slots, key, fmt.Sprintf("provider %q", prov.Name), c.diags)

	for _, acc := range prov.Requires.Accessors {
		if c.pj.resolve(acc, key) == nil {
			ok = false
		}
	}

	for _, dep := range prov.Requires.Capabilities {
		depPair := c.resolvePair(dep)
		if depPair.State == StateValidated || depPair.State == StateSpecialized {
			continue
		}

		ok = false

		// A cycle stub already carries its own diagnostic.
		if depPair.State != StateUnresolved {
			c.diags.AddError(diagnostic.CodeUnsatisfied,
				fmt.Sprintf("provider %q requires capability %q, which did not resolve on context %q",
					prov.Name, dep, c.decl.Name),
				key, dep)
		}
	}

	bodies := prov.OperationBodies(capDecl.Operations)
	for _, op := range capDecl.Operations {
		if bodies[op.Name] == "" {
			ok = false

			c.diags.AddError(diagnostic.CodeUnsatisfied,
				fmt.Sprintf("provider %q has no body for operation %q", prov.Name, op.Name),
				key, op.Name)
		}
	}

	return ok
}

// specializePair inlines the whole provider chain bottom-up into one
// expression tree per operation, referring only to stored fields. This is the
// indirection-free call path the generated code emits.
func (c *contextResolver) specializePair(pair *ResolvedPair, capDecl *schema.CapabilityDecl, key string) bool {
	innerOps := map[string]expr.Node{}

	for i := len(pair.Chain) - 1; i >= 0; i-- {
		prov := c.r.reg.Provider(pair.Chain[i])
		bodies := prov.OperationBodies(capDecl.Operations)
		ops := make(map[string]expr.Node, len(capDecl.Operations))

		for _, op := range capDecl.Operations {
			node, err := expr.Parse(bodies[op.Name])
			if err != nil {
				c.diags.AddError(diagnostic.CodeUnsatisfied,
					fmt.Sprintf("provider %q has an invalid body for operation %q: %v", prov.Name, op.Name, err),
					key, op.Name)

				return false
			}

			idents := make(map[string]expr.Node)

			for _, id := range expr.Idents(node) {
				plan := c.pj.resolve(id, key)
				if plan == nil {
					return false
				}

				idents[id] = plan.Expr
			}

			var calls map[string]expr.Node
			if i < len(pair.Chain)-1 {
				calls = map[string]expr.Node{"inner": innerOps[op.Name]}
			}

			ops[op.Name] = expr.Substitute(node, idents, calls)
		}

		innerOps = ops
	}

	pair.Operations = innerOps

	return true
}

// capped truncates a candidate list to the configured maximum.
func (c *contextResolver) capped(names []string) []string {
	maxN := c.r.config.MaxCandidates
	if maxN <= 0 || len(names) <= maxN {
		return names
	}

	return names[:maxN]
}
