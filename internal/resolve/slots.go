package resolve

import (
	"fmt"
	"go/types"
	"slices"

	"capwire-generator/internal/analyze"
	"capwire-generator/internal/diagnostic"
	"capwire-generator/internal/schema"
)

// resolveSlots builds a context's type-slot dictionary: every declared slot
// (standalone and family members) resolved to its concrete type. From chains
// are followed to their terminal type declaration; a chain that loops or
// dangles leaves the binding without a type and records an error.
func resolveSlots(
	decl *schema.ContextDecl,
	graph *analyze.TypeGraph,
	diags *diagnostic.Diagnostics,
) map[string]SlotBinding {
	byName := make(map[string]*schema.SlotDecl)
	family := make(map[string]string)

	for i := range decl.Slots {
		byName[decl.Slots[i].Name] = &decl.Slots[i]
	}

	for f := range decl.Families {
		fam := &decl.Families[f]
		for i := range fam.Slots {
			byName[fam.Slots[i].Name] = &fam.Slots[i]
			family[fam.Slots[i].Name] = fam.Name
		}
	}

	slots := make(map[string]SlotBinding, len(byName))

	for _, name := range sortedSlotNames(byName) {
		ref, ok := followFromChain(name, byName, decl.Name, diags)

		binding := SlotBinding{
			Name:    name,
			TypeRef: ref,
			Family:  family[name],
		}

		if ok && graph != nil {
			binding.Type = analyze.ResolveRef(ref, graph)
			if binding.Type == nil {
				diags.AddError(diagnostic.CodeIncompatibleSlot,
					fmt.Sprintf("slot %q of context %q refers to unknown type %q", name, decl.Name, ref),
					"", decl.Name+"."+name)
			}
		}

		slots[name] = binding
	}

	checkFamilies(decl, slots, diags)

	return slots
}

func sortedSlotNames(byName map[string]*schema.SlotDecl) []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}

	// Preserves no declaration information, so sort for stable diagnostics.
	slices.Sort(names)

	return names
}

// followFromChain resolves a slot's From references to the terminal type
// reference. Returns ok=false when the chain loops, exceeds depth, or names an
// undeclared slot.
func followFromChain(
	name string,
	byName map[string]*schema.SlotDecl,
	contextName string,
	diags *diagnostic.Diagnostics,
) (string, bool) {
	visited := map[string]bool{}
	cur := name

	for {
		if visited[cur] {
			diags.AddError(diagnostic.CodeIncompatibleSlot,
				fmt.Sprintf("slot %q of context %q has a cyclic 'from' chain", name, contextName),
				"", contextName+"."+name)

			return "", false
		}

		visited[cur] = true

		slot, ok := byName[cur]
		if !ok {
			diags.AddError(diagnostic.CodeMissingSlot,
				fmt.Sprintf("slot %q of context %q references undeclared slot %q", name, contextName, cur),
				"", contextName+"."+name)

			return "", false
		}

		if slot.From == "" {
			return slot.Type, true
		}

		cur = slot.From
	}
}

// checkFamilies enforces that every member of a family resolved to the same
// concrete type. Members whose type failed to resolve are skipped; the
// resolution failure was already reported.
func checkFamilies(decl *schema.ContextDecl, slots map[string]SlotBinding, diags *diagnostic.Diagnostics) {
	for f := range decl.Families {
		fam := &decl.Families[f]

		var first SlotBinding

		for i := range fam.Slots {
			b, ok := slots[fam.Slots[i].Name]
			if !ok || b.Type == nil {
				continue
			}

			if first.Type == nil {
				first = b

				continue
			}

			if !sameType(first.Type, b.Type) {
				diags.AddError(diagnostic.CodeIncompatibleSlot,
					fmt.Sprintf("family %q of context %q mixes types: slot %q is %s but slot %q is %s",
						fam.Name, decl.Name, first.Name, first.TypeRef, b.Name, b.TypeRef),
					"", decl.Name+"."+fam.Name)
			}
		}
	}
}

// sameType reports whether two resolved types are identical.
func sameType(a, b *analyze.TypeInfo) bool {
	if a.GoType != nil && b.GoType != nil {
		return types.Identical(a.GoType, b.GoType)
	}

	return a.ID == b.ID
}

// checkSlotReqs verifies a requirement list (from a capability or a provider
// constraint set) against the context's slot dictionary. Every failure is
// recorded; nothing short-circuits.
func checkSlotReqs(
	reqs []schema.SlotReq,
	slots map[string]SlotBinding,
	pair string,
	origin string,
	diags *diagnostic.Diagnostics,
) bool {
	ok := true

	for _, req := range reqs {
		binding, found := slots[req.Name]
		if !found {
			ok = false

			if diags != nil {
				diags.AddError(diagnostic.CodeMissingSlot,
					fmt.Sprintf("slot %q required by %s is not filled", req.Name, origin),
					pair, req.Name)
			}

			continue
		}

		if binding.Type == nil {
			// Unresolvable type was reported when the dictionary was built.
			continue
		}

		if !boundSatisfied(req.Bound, binding.Type) {
			ok = false

			if diags != nil {
				diags.AddError(diagnostic.CodeIncompatibleSlot,
					fmt.Sprintf("slot %q is %s, which does not satisfy bound %q required by %s",
						req.Name, binding.TypeRef, req.Bound.String(), origin),
					pair, req.Name)
			}
		}
	}

	return ok
}

// boundSatisfied reports whether a concrete type satisfies a bound.
func boundSatisfied(bound schema.Bound, t *analyze.TypeInfo) bool {
	switch bound {
	case schema.BoundAny:
		return true
	case schema.BoundNumeric:
		return t.IsNumeric()
	case schema.BoundInteger:
		return t.IsInteger()
	case schema.BoundFloat:
		return t.IsFloat()
	case schema.BoundString:
		return t.IsString()
	case schema.BoundOrdered:
		return t.IsOrdered()
	case schema.BoundComparable:
		return t.IsComparable()
	default:
		return false
	}
}
