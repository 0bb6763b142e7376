package schema

import (
	"fmt"
	"slices"

	"capwire-generator/internal/analyze"
	"capwire-generator/internal/diagnostic"
	"capwire-generator/internal/expr"
	"capwire-generator/internal/match"
)

// maxSuggestions caps the candidate list attached to unknown-name errors.
const maxSuggestions = 3

// Validate performs structural validation of a wiring declaration set.
// When graph is non-nil, context types are checked against it; type-level
// slot and accessor resolution is left to the resolve package.
func Validate(wf *WiringFile, graph *analyze.TypeGraph) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if wf == nil {
		res.AddError("wiring_is_nil", "wiring declaration set is nil", "", "")
		return res
	}

	validateCapabilities(wf, res)
	validateProviders(wf, res)
	validateBundles(wf, res)

	for i := range wf.Contexts {
		validateContext(wf, &wf.Contexts[i], graph, res)
	}

	return res
}

func validateCapabilities(wf *WiringFile, res *diagnostic.Diagnostics) {
	seen := map[string]struct{}{}

	for i := range wf.Capabilities {
		decl := &wf.Capabilities[i]
		if decl.Name == "" {
			res.AddError("capability_unnamed", "capability declaration has no name", "", "")
			continue
		}

		if _, ok := seen[decl.Name]; ok {
			res.AddError("duplicate_capability", fmt.Sprintf("duplicate capability %q", decl.Name), "", decl.Name)
			continue
		}

		seen[decl.Name] = struct{}{}

		opSeen := map[string]struct{}{}

		for _, op := range decl.Operations {
			if op.Name == "" {
				res.AddError("operation_unnamed",
					fmt.Sprintf("capability %q declares an unnamed operation", decl.Name), "", decl.Name)

				continue
			}

			if _, ok := opSeen[op.Name]; ok {
				res.AddError("duplicate_operation",
					fmt.Sprintf("capability %q declares operation %q twice", decl.Name, op.Name), "", decl.Name)
			}

			opSeen[op.Name] = struct{}{}
		}

		for _, slot := range decl.Slots {
			if !slot.Bound.IsValid() {
				res.AddError("invalid_bound",
					fmt.Sprintf("capability %q requires slot %q with unknown bound %q",
						decl.Name, slot.Name, slot.Bound), "", slot.Name)
			}
		}
	}
}

func validateProviders(wf *WiringFile, res *diagnostic.Diagnostics) {
	seen := map[string]struct{}{}

	for i := range wf.Providers {
		p := &wf.Providers[i]
		if p.Name == "" {
			res.AddError("provider_unnamed", "provider declaration has no name", "", "")
			continue
		}

		if _, ok := seen[p.Name]; ok {
			res.AddError("duplicate_provider", fmt.Sprintf("duplicate provider %q", p.Name), "", p.Name)
			continue
		}

		seen[p.Name] = struct{}{}

		capDecl := wf.Capability(p.Capability)
		if capDecl == nil {
			res.AddErrorWithCandidates("unknown_capability",
				fmt.Sprintf("provider %q implements unknown capability %q", p.Name, p.Capability),
				"", p.Name,
				match.Suggest(p.Capability, wf.ComponentNames(), maxSuggestions))

			continue
		}

		validateProviderBodies(p, capDecl, res)

		for _, slot := range p.Requires.Slots {
			if !slot.Bound.IsValid() {
				res.AddError("invalid_bound",
					fmt.Sprintf("provider %q requires slot %q with unknown bound %q",
						p.Name, slot.Name, slot.Bound), "", p.Name)
			}
		}
	}
}

func validateProviderBodies(p *ProviderDecl, capDecl *CapabilityDecl, res *diagnostic.Diagnostics) {
	if p.Body != "" && len(p.Bodies) > 0 {
		res.AddError("conflicting_bodies",
			fmt.Sprintf("provider %q sets both body and bodies", p.Name), "", p.Name)

		return
	}

	if p.Body != "" && len(capDecl.Operations) != 1 {
		res.AddError("body_needs_single_operation",
			fmt.Sprintf("provider %q uses single-body form but capability %q has %d operations",
				p.Name, capDecl.Name, len(capDecl.Operations)), "", p.Name)

		return
	}

	bodies := p.OperationBodies(capDecl.Operations)

	// Every declared operation needs a body, and no body may target an
	// undeclared operation.
	for _, op := range capDecl.Operations {
		if _, ok := bodies[op.Name]; !ok {
			res.AddError("missing_operation_body",
				fmt.Sprintf("provider %q has no body for operation %q of capability %q",
					p.Name, op.Name, capDecl.Name), "", p.Name)
		}
	}

	opNames := make([]string, 0, len(capDecl.Operations))
	for _, op := range capDecl.Operations {
		opNames = append(opNames, op.Name)
	}

	usedAccessors := map[string]struct{}{}
	usesInner := false

	for op, body := range bodies {
		if !slices.Contains(opNames, op) {
			res.AddError("unknown_operation",
				fmt.Sprintf("provider %q has a body for unknown operation %q", p.Name, op), "", p.Name)

			continue
		}

		node, err := expr.Parse(body)
		if err != nil {
			res.AddError("invalid_body",
				fmt.Sprintf("provider %q operation %q: %v", p.Name, op, err), "", p.Name)

			continue
		}

		for _, name := range expr.Idents(node) {
			usedAccessors[name] = struct{}{}

			if !slices.Contains(p.Requires.Accessors, name) {
				res.AddError("undeclared_accessor",
					fmt.Sprintf("provider %q body references accessor %q not in its constraint set",
						p.Name, name), "", p.Name)
			}
		}

		for _, call := range expr.Calls(node) {
			if call != "inner" {
				res.AddError("unknown_call",
					fmt.Sprintf("provider %q body calls %q; only inner() is allowed", p.Name, call),
					"", p.Name)

				continue
			}

			usesInner = true
		}
	}

	if usesInner && !p.Requires.Inner {
		res.AddError("undeclared_inner",
			fmt.Sprintf("provider %q calls inner() but does not declare requires.inner", p.Name),
			"", p.Name)
	}

	if p.Requires.Inner && !usesInner && len(bodies) > 0 {
		res.AddWarning("unused_inner",
			fmt.Sprintf("provider %q declares requires.inner but never calls inner()", p.Name),
			"", p.Name)
	}

	for _, acc := range p.Requires.Accessors {
		if _, ok := usedAccessors[acc]; !ok && len(bodies) > 0 {
			res.AddWarning("unused_accessor",
				fmt.Sprintf("provider %q requires accessor %q but never uses it", p.Name, acc),
				"", p.Name)
		}
	}
}

func validateBundles(wf *WiringFile, res *diagnostic.Diagnostics) {
	seen := map[string]struct{}{}

	for i := range wf.Bundles {
		b := &wf.Bundles[i]
		if b.Name == "" {
			res.AddError("bundle_unnamed", "bundle declaration has no name", "", "")
			continue
		}

		if _, ok := seen[b.Name]; ok {
			res.AddError("duplicate_bundle", fmt.Sprintf("duplicate bundle %q", b.Name), "", b.Name)
			continue
		}

		seen[b.Name] = struct{}{}

		components := map[string]struct{}{}

		for j := range b.Wiring {
			row := &b.Wiring[j]
			if row.IsBundleRef() {
				res.AddError("nested_bundle",
					fmt.Sprintf("bundle %q references bundle %q; bundles cannot nest", b.Name, row.Bundle),
					"", b.Name)

				continue
			}

			if _, ok := components[row.Component]; ok {
				res.AddError(diagnostic.CodeDuplicateWiring,
					fmt.Sprintf("bundle %q wires component %q twice", b.Name, row.Component),
					"", b.Name)
			}

			components[row.Component] = struct{}{}

			validateRowRefs(wf, row, "bundle "+b.Name, res)
		}
	}
}

// validateRowRefs checks a wiring row's component, provider, and composition
// chain against the declaration set.
func validateRowRefs(wf *WiringFile, row *WiringRow, where string, res *diagnostic.Diagnostics) {
	if row.Component == "" {
		res.AddError("component_unnamed",
			fmt.Sprintf("%s has a wiring row without a component", where), "", "")

		return
	}

	if wf.Capability(row.Component) == nil {
		res.AddErrorWithCandidates("unknown_capability",
			fmt.Sprintf("%s wires unknown component %q", where, row.Component),
			"", row.Component,
			match.Suggest(row.Component, wf.ComponentNames(), maxSuggestions))

		return
	}

	chain := row.Chain()
	if len(chain) == 0 {
		res.AddError("provider_unnamed",
			fmt.Sprintf("%s wires component %q without a provider", where, row.Component),
			"", row.Component)

		return
	}

	// Cyclic composition: any provider repeating along its own chain.
	seen := map[string]struct{}{}

	for _, name := range chain {
		if _, ok := seen[name]; ok {
			res.AddError(diagnostic.CodeCyclicComposition,
				fmt.Sprintf("%s: provider %q composes with itself in component %q",
					where, name, row.Component),
				"", row.Component)

			return
		}

		seen[name] = struct{}{}
	}

	for pos, name := range chain {
		p := wf.Provider(name)
		if p == nil {
			res.AddErrorWithCandidates("unknown_provider",
				fmt.Sprintf("%s wires unknown provider %q for component %q", where, name, row.Component),
				"", row.Component,
				match.Suggest(name, wf.ProviderNames(), maxSuggestions))

			return
		}

		if p.Capability != row.Component {
			res.AddError("provider_capability_mismatch",
				fmt.Sprintf("%s: provider %q implements %q, not %q",
					where, name, p.Capability, row.Component),
				"", row.Component)

			return
		}

		last := pos == len(chain)-1
		if p.IsHigherOrder() && last {
			res.AddError("missing_inner",
				fmt.Sprintf("%s: provider %q needs an inner provider for component %q",
					where, name, row.Component),
				"", row.Component)
		}

		if !p.IsHigherOrder() && !last {
			res.AddError("unexpected_inner",
				fmt.Sprintf("%s: provider %q takes no inner provider but one is wired for component %q",
					where, name, row.Component),
				"", row.Component)
		}
	}
}

func validateContext(wf *WiringFile, c *ContextDecl, graph *analyze.TypeGraph, res *diagnostic.Diagnostics) {
	if c.Name == "" {
		res.AddError("context_unnamed", "context declaration has no name", "", "")
		return
	}

	if c.Type == "" {
		res.AddError("context_untyped",
			fmt.Sprintf("context %q declares no Go type", c.Name), c.Name, "")
	} else if graph != nil {
		info := analyze.ResolveRef(c.Type, graph)
		switch {
		case info == nil:
			res.AddError("context_type_not_found",
				fmt.Sprintf("context %q type %q not found in analyzed packages", c.Name, c.Type),
				c.Name, c.Type)
		case info.Kind != analyze.TypeKindStruct:
			res.AddError("context_type_not_struct",
				fmt.Sprintf("context %q type %q is %s, not a struct", c.Name, c.Type, info.Kind),
				c.Name, c.Type)
		}
	}

	for _, used := range c.Uses {
		if wf.Capability(used) == nil {
			res.AddErrorWithCandidates("unknown_capability",
				fmt.Sprintf("context %q uses unknown component %q", c.Name, used),
				c.Name, used,
				match.Suggest(used, wf.ComponentNames(), maxSuggestions))
		}
	}

	validateContextSlots(c, res)
	validateContextProjections(c, res)
	validateContextWiring(wf, c, res)
}

func validateContextSlots(c *ContextDecl, res *diagnostic.Diagnostics) {
	seen := map[string]struct{}{}

	for _, slot := range c.AllSlotDecls() {
		if slot.Name == "" {
			res.AddError("slot_unnamed",
				fmt.Sprintf("context %q binds an unnamed slot", c.Name), c.Name, "")

			continue
		}

		if _, ok := seen[slot.Name]; ok {
			res.AddError("duplicate_slot",
				fmt.Sprintf("context %q binds slot %q twice", c.Name, slot.Name), c.Name, slot.Name)

			continue
		}

		seen[slot.Name] = struct{}{}

		if (slot.Type == "") == (slot.From == "") {
			res.AddError("invalid_slot_binding",
				fmt.Sprintf("context %q slot %q must set exactly one of type and from",
					c.Name, slot.Name),
				c.Name, slot.Name)
		}
	}
}

func validateContextProjections(c *ContextDecl, res *diagnostic.Diagnostics) {
	seen := map[string]struct{}{}

	for i := range c.Projections {
		p := &c.Projections[i]
		if p.Accessor == "" {
			res.AddError("accessor_unnamed",
				fmt.Sprintf("context %q declares a projection without an accessor", c.Name), c.Name, "")

			continue
		}

		if _, ok := seen[p.Accessor]; ok {
			res.AddError("duplicate_projection",
				fmt.Sprintf("context %q projects accessor %q twice", c.Name, p.Accessor),
				c.Name, p.Accessor)

			continue
		}

		seen[p.Accessor] = struct{}{}

		if (p.Field == "") == (p.Expr == "") {
			res.AddError("invalid_projection",
				fmt.Sprintf("context %q accessor %q must set exactly one of field and expr",
					c.Name, p.Accessor),
				c.Name, p.Accessor)

			continue
		}

		if p.Expr != "" {
			node, err := expr.Parse(p.Expr)
			if err != nil {
				res.AddError("invalid_projection_expr",
					fmt.Sprintf("context %q accessor %q: %v", c.Name, p.Accessor, err),
					c.Name, p.Accessor)

				continue
			}

			if calls := expr.Calls(node); len(calls) > 0 {
				res.AddError("invalid_projection_expr",
					fmt.Sprintf("context %q accessor %q: projections cannot call providers",
						c.Name, p.Accessor),
					c.Name, p.Accessor)
			}
		}
	}
}

func validateContextWiring(wf *WiringFile, c *ContextDecl, res *diagnostic.Diagnostics) {
	explicit := map[string]struct{}{}
	fromBundle := map[string]string{}

	for i := range c.Wiring {
		row := &c.Wiring[i]

		if row.IsBundleRef() {
			b := wf.Bundle(row.Bundle)
			if b == nil {
				res.AddErrorWithCandidates("unknown_bundle",
					fmt.Sprintf("context %q references unknown bundle %q", c.Name, row.Bundle),
					c.Name, row.Bundle, nil)

				continue
			}

			for j := range b.Wiring {
				comp := b.Wiring[j].Component
				if prev, ok := fromBundle[comp]; ok {
					res.AddError(diagnostic.CodeDuplicateWiring,
						fmt.Sprintf("context %q wires component %q from bundles %q and %q",
							c.Name, comp, prev, b.Name),
						PairKey(c.Name, comp), "")

					continue
				}

				fromBundle[comp] = b.Name
			}

			continue
		}

		if _, ok := explicit[row.Component]; ok && row.Component != "" {
			res.AddError(diagnostic.CodeDuplicateWiring,
				fmt.Sprintf("context %q wires component %q twice", c.Name, row.Component),
				PairKey(c.Name, row.Component), "")

			continue
		}

		explicit[row.Component] = struct{}{}

		validateRowRefs(wf, row, "context "+c.Name, res)
	}

	// A direct row shadowing a bundle row is allowed (direct wins) but worth
	// flagging; two bundles colliding was already rejected above.
	for comp, bundle := range fromBundle {
		if _, ok := explicit[comp]; ok {
			res.AddWarning("shadowed_bundle_row",
				fmt.Sprintf("context %q wires component %q directly, shadowing bundle %q",
					c.Name, comp, bundle),
				PairKey(c.Name, comp), "")
		}
	}
}
