package schema

import (
	"capwire-generator/internal/common"
)

// WiringFile represents the root of a YAML wiring declaration file.
// This is the authoritative, human-reviewed declaration set the resolution
// engine consumes. Several files may be merged into one WiringFile.
type WiringFile struct {
	// Version of the wiring schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Packages lists Go package patterns to analyze for context types.
	Packages StringArray `yaml:"packages,omitempty"`

	// Capabilities declares the abstract contracts.
	Capabilities []CapabilityDecl `yaml:"capabilities,omitempty"`

	// Providers declares the implementations.
	Providers []ProviderDecl `yaml:"providers,omitempty"`

	// Bundles declares reusable groups of wiring rows.
	Bundles []BundleDecl `yaml:"bundles,omitempty"`

	// Contexts declares the concrete subject types and their wiring.
	Contexts []ContextDecl `yaml:"contexts,omitempty"`
}

// CapabilityDecl declares a named capability contract. A capability with zero
// operations is a legal marker capability; it still participates in wiring
// when consumed.
type CapabilityDecl struct {
	// Name is the component key used in wiring rows (e.g., "area").
	Name string `yaml:"name"`

	// ConsumerName is the generated consumer-form interface name.
	// Defaults to "Has" + exported Name.
	ConsumerName string `yaml:"consumer_name,omitempty"`

	// ProviderName is the generated provider-form interface name.
	// Defaults to exported Name + "Provider". The split from ConsumerName is
	// what lets many providers coexist for one capability.
	ProviderName string `yaml:"provider_name,omitempty"`

	// Operations lists the required operation signatures.
	Operations []OperationDecl `yaml:"operations,omitempty"`

	// Slots lists type slots every satisfying context must fill.
	Slots []SlotReq `yaml:"slots,omitempty"`
}

// OperationDecl declares one required operation signature.
type OperationDecl struct {
	// Name of the operation (e.g., "area").
	Name string `yaml:"name"`

	// Returns is the result type reference. Defaults to "float64".
	Returns string `yaml:"returns,omitempty"`
}

// Bound names a constraint a slot's concrete type must satisfy.
type Bound string

const (
	BoundAny        Bound = ""           // no constraint
	BoundNumeric    Bound = "numeric"    // integer, unsigned, or float
	BoundInteger    Bound = "integer"    // signed or unsigned integer
	BoundFloat      Bound = "float"      // floating point
	BoundString     Bound = "string"     // string kind
	BoundOrdered    Bound = "ordered"    // supports <
	BoundComparable Bound = "comparable" // supports ==
)

// IsValid returns true if the bound is a recognized value.
func (b Bound) IsValid() bool {
	switch b {
	case BoundAny, BoundNumeric, BoundInteger, BoundFloat, BoundString, BoundOrdered, BoundComparable:
		return true
	default:
		return false
	}
}

// String returns the bound name, or "any" for the empty bound.
func (b Bound) String() string {
	if b == BoundAny {
		return "any"
	}

	return string(b)
}

// SlotReq is a required type slot with its bound, as stated by a capability
// or a provider constraint set.
type SlotReq struct {
	// Name of the slot (e.g., "Scalar", "Error").
	Name string `yaml:"name"`

	// Bound the filled type must satisfy.
	Bound Bound `yaml:"bound,omitempty"`
}

// ProviderDecl declares a polymorphic implementation of a capability.
// A provider never owns a context; it is pure with respect to the engine.
type ProviderDecl struct {
	// Name of the provider (e.g., "RectangleArea").
	Name string `yaml:"name"`

	// Capability is the component key this provider implements.
	Capability string `yaml:"capability"`

	// Body is the expression body for a single-operation capability.
	// Identifiers refer to accessors; "inner()" refers to the composed
	// provider for higher-order providers.
	Body string `yaml:"body,omitempty"`

	// Bodies maps operation name to expression body for multi-operation
	// capabilities. Mutually exclusive with Body.
	Bodies map[string]string `yaml:"bodies,omitempty"`

	// Requires is the constraint set this provider needs from a context.
	Requires RequiresDecl `yaml:"requires,omitempty"`
}

// RequiresDecl is a provider's constraint set.
type RequiresDecl struct {
	// Accessors lists accessor names the context must resolve via the
	// field-projection layer.
	Accessors StringArray `yaml:"accessors,omitempty"`

	// Capabilities lists other components that must resolve on the context.
	Capabilities StringArray `yaml:"capabilities,omitempty"`

	// Slots lists type slots the context must fill, with bounds.
	Slots []SlotReq `yaml:"slots,omitempty"`

	// Inner marks the provider as higher-order: a wiring entry must supply
	// another provider of the same capability as its inner implementation.
	Inner bool `yaml:"inner,omitempty"`
}

// IsHigherOrder returns true if the provider composes with an inner provider.
func (p *ProviderDecl) IsHigherOrder() bool {
	return p.Requires.Inner
}

// OperationBodies returns the operation->body map regardless of which YAML
// form was used. For the single-body form, the capability's sole operation
// name is taken from ops.
func (p *ProviderDecl) OperationBodies(ops []OperationDecl) map[string]string {
	if len(p.Bodies) > 0 {
		return p.Bodies
	}

	if p.Body == "" {
		return nil
	}

	if len(ops) == 0 {
		return nil
	}

	return map[string]string{ops[0].Name: p.Body}
}

// BundleDecl groups several wiring rows under one name so identical
// combinations need not be repeated per context.
type BundleDecl struct {
	// Name of the bundle.
	Name string `yaml:"name"`

	// Wiring lists the component->provider rows the bundle contributes.
	// Bundle references inside a bundle are rejected during validation.
	Wiring []WiringRow `yaml:"wiring"`
}

// WiringRow is one row of a dispatch table: either a component->provider
// binding (optionally with a composition chain) or a bundle reference.
type WiringRow struct {
	// Component is the capability name being wired.
	Component string `yaml:"component,omitempty"`

	// Provider names the chosen provider for the component.
	Provider string `yaml:"provider,omitempty"`

	// Inner is the composition chain for higher-order providers.
	Inner *WiringRef `yaml:"inner,omitempty"`

	// Bundle references a BundleDecl instead of naming a single row.
	Bundle string `yaml:"bundle,omitempty"`
}

// IsBundleRef returns true if this row references a bundle.
func (w *WiringRow) IsBundleRef() bool {
	return w.Bundle != ""
}

// WiringRef names a provider with an optional nested inner provider.
// Composition is expressed purely through this nesting; the chain must be
// acyclic in provider names.
type WiringRef struct {
	Provider string     `yaml:"provider"`
	Inner    *WiringRef `yaml:"inner,omitempty"`
}

// Chain returns the provider names along the composition chain, outermost
// first (starting with the given head).
func (w *WiringRow) Chain() []string {
	if w.Provider == "" {
		return nil
	}

	chain := []string{w.Provider}
	for ref := w.Inner; ref != nil; ref = ref.Inner {
		chain = append(chain, ref.Provider)
	}

	return chain
}

// ContextDecl declares a concrete subject type. The context itself holds no
// behavior; every structure here drives build-time resolution only.
type ContextDecl struct {
	// Name is the context key (e.g., "Rect").
	Name string `yaml:"name"`

	// Type is the Go type reference (e.g., "shapes.Rect").
	Type string `yaml:"type"`

	// DeriveFields opts the context into automatic field-projection
	// derivation: accessor names match stored fields by normalized name.
	DeriveFields bool `yaml:"derive_fields,omitempty"`

	// Uses lists the components calling code consumes on this context.
	// Every used component must resolve; unwired used components fall back
	// to implicit provider inference.
	Uses StringArray `yaml:"uses,omitempty"`

	// Slots binds slot names to concrete types for this context.
	Slots []SlotDecl `yaml:"slots,omitempty"`

	// Families declares blocks of co-constrained slots filled together.
	Families []FamilyDecl `yaml:"families,omitempty"`

	// Projections maps accessor names to stored fields or expressions.
	Projections []ProjectionDecl `yaml:"projections,omitempty"`

	// Wiring lists this context's dispatch rows and bundle references.
	Wiring []WiringRow `yaml:"wiring,omitempty"`
}

// SlotDecl binds one slot name to a concrete type, or to another slot on the
// same context via From. Type and From are mutually exclusive.
type SlotDecl struct {
	// Name of the slot.
	Name string `yaml:"name"`

	// Type is the concrete type reference filling the slot.
	Type string `yaml:"type,omitempty"`

	// From references another slot on the same context; the slot resolves to
	// whatever that slot resolves to. Reference chains must be acyclic.
	From string `yaml:"from,omitempty"`
}

// FamilyDecl supplies several co-constrained slots in one block, expressing
// "these types originate from the same source and must be mutually
// compatible" without a separate equality constraint per pair.
type FamilyDecl struct {
	// Name of the family.
	Name string `yaml:"name"`

	// Slots are the member slot bindings.
	Slots []SlotDecl `yaml:"slots"`
}

// ProjectionDecl maps one capability accessor to stored data.
// Exactly one of Field and Expr must be set.
type ProjectionDecl struct {
	// Accessor is the accessor name being projected (e.g., "width").
	Accessor string `yaml:"accessor"`

	// Field names a stored field, directly or as a rename (e.g., "Side").
	Field string `yaml:"field,omitempty"`

	// Expr computes the accessor from other accessors
	// (e.g., "(top + bottom) / 2").
	Expr string `yaml:"expr,omitempty"`
}

// IsComputed returns true if the projection is expression-backed.
func (p *ProjectionDecl) IsComputed() bool {
	return p.Expr != ""
}

// PairKey formats the canonical "Context/component" pair identifier used in
// diagnostics.
func PairKey(context, component string) string {
	return context + "/" + component
}

// Merge appends another file's declarations into this one. Versions must not
// conflict; the first non-empty version wins and a differing later version is
// reported by validation.
func (wf *WiringFile) Merge(other *WiringFile) {
	if wf.Version == "" {
		wf.Version = other.Version
	}

	wf.Packages = append(wf.Packages, other.Packages...)
	wf.Capabilities = append(wf.Capabilities, other.Capabilities...)
	wf.Providers = append(wf.Providers, other.Providers...)
	wf.Bundles = append(wf.Bundles, other.Bundles...)
	wf.Contexts = append(wf.Contexts, other.Contexts...)
}

// Capability returns the declaration for a component name, or nil.
func (wf *WiringFile) Capability(name string) *CapabilityDecl {
	for i := range wf.Capabilities {
		if wf.Capabilities[i].Name == name {
			return &wf.Capabilities[i]
		}
	}

	return nil
}

// Provider returns the declaration for a provider name, or nil.
func (wf *WiringFile) Provider(name string) *ProviderDecl {
	for i := range wf.Providers {
		if wf.Providers[i].Name == name {
			return &wf.Providers[i]
		}
	}

	return nil
}

// Bundle returns the declaration for a bundle name, or nil.
func (wf *WiringFile) Bundle(name string) *BundleDecl {
	for i := range wf.Bundles {
		if wf.Bundles[i].Name == name {
			return &wf.Bundles[i]
		}
	}

	return nil
}

// ProvidersFor returns the declared providers implementing a component,
// in declaration order.
func (wf *WiringFile) ProvidersFor(component string) []*ProviderDecl {
	var out []*ProviderDecl

	for i := range wf.Providers {
		if wf.Providers[i].Capability == component {
			out = append(out, &wf.Providers[i])
		}
	}

	return out
}

// ProviderNames returns all declared provider names, in declaration order.
func (wf *WiringFile) ProviderNames() []string {
	names := make([]string, len(wf.Providers))
	for i := range wf.Providers {
		names[i] = wf.Providers[i].Name
	}

	return names
}

// ComponentNames returns all declared capability names, in declaration order.
func (wf *WiringFile) ComponentNames() []string {
	names := make([]string, len(wf.Capabilities))
	for i := range wf.Capabilities {
		names[i] = wf.Capabilities[i].Name
	}

	return names
}

// AllSlotDecls returns a context's slot bindings with family members
// flattened in, family blocks after standalone slots.
func (c *ContextDecl) AllSlotDecls() []SlotDecl {
	if common.IsEmpty(c.Families) {
		return c.Slots
	}

	out := make([]SlotDecl, 0, len(c.Slots))
	out = append(out, c.Slots...)

	for _, fam := range c.Families {
		out = append(out, fam.Slots...)
	}

	return out
}
