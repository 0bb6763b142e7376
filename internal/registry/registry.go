// Package registry holds the build-time declaration registries consulted by
// the resolver: capabilities, providers, bundles, and contexts.
//
// Registries are write-once: declarations accumulate until Freeze, after
// which any further registration is rejected. Resolution only ever runs
// against a frozen registry, so it reads immutable data and can be
// parallelized freely.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"capwire-generator/internal/common"
	"capwire-generator/internal/schema"
)

// ErrFrozen is returned when a declaration arrives after resolution began.
var ErrFrozen = errors.New("registry is frozen: no declarations may be added once resolution begins")

// Registry is the write-once declaration store.
type Registry struct {
	mu     sync.RWMutex
	frozen bool

	capabilities map[string]*schema.CapabilityDecl
	providers    map[string]*schema.ProviderDecl
	bundles      map[string]*schema.BundleDecl
	contexts     map[string]*schema.ContextDecl

	// byCapability indexes provider names per component, in registration order.
	byCapability map[string][]string

	// declOrder remembers context registration order for deterministic output.
	contextOrder []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		capabilities: make(map[string]*schema.CapabilityDecl),
		providers:    make(map[string]*schema.ProviderDecl),
		bundles:      make(map[string]*schema.BundleDecl),
		contexts:     make(map[string]*schema.ContextDecl),
		byCapability: make(map[string][]string),
	}
}

// FromFile builds a registry from a merged wiring file. The file should have
// passed schema.Validate first; duplicate names still fail here so a registry
// can never hold an ambiguous declaration set.
func FromFile(wf *schema.WiringFile) (*Registry, error) {
	r := New()

	for i := range wf.Capabilities {
		if err := r.RegisterCapability(&wf.Capabilities[i]); err != nil {
			return nil, err
		}
	}

	for i := range wf.Providers {
		if err := r.RegisterProvider(&wf.Providers[i]); err != nil {
			return nil, err
		}
	}

	for i := range wf.Bundles {
		if err := r.RegisterBundle(&wf.Bundles[i]); err != nil {
			return nil, err
		}
	}

	for i := range wf.Contexts {
		if err := r.RegisterContext(&wf.Contexts[i]); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Freeze seals the registry. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
}

// Frozen reports whether the registry is sealed.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

// RegisterCapability adds a capability declaration.
func (r *Registry) RegisterCapability(decl *schema.CapabilityDecl) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}

	if _, ok := r.capabilities[decl.Name]; ok {
		return fmt.Errorf("capability %q is already registered", decl.Name)
	}

	r.capabilities[decl.Name] = decl

	return nil
}

// RegisterProvider adds a provider declaration.
func (r *Registry) RegisterProvider(decl *schema.ProviderDecl) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}

	if _, ok := r.providers[decl.Name]; ok {
		return fmt.Errorf("provider %q is already registered", decl.Name)
	}

	r.providers[decl.Name] = decl
	r.byCapability[decl.Capability] = append(r.byCapability[decl.Capability], decl.Name)

	return nil
}

// RegisterBundle adds a bundle declaration.
func (r *Registry) RegisterBundle(decl *schema.BundleDecl) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}

	if _, ok := r.bundles[decl.Name]; ok {
		return fmt.Errorf("bundle %q is already registered", decl.Name)
	}

	r.bundles[decl.Name] = decl

	return nil
}

// RegisterContext adds a context declaration.
func (r *Registry) RegisterContext(decl *schema.ContextDecl) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}

	if _, ok := r.contexts[decl.Name]; ok {
		return fmt.Errorf("context %q is already registered", decl.Name)
	}

	r.contexts[decl.Name] = decl
	r.contextOrder = append(r.contextOrder, decl.Name)

	return nil
}

// Capability returns a capability declaration by component name, or nil.
func (r *Registry) Capability(name string) *schema.CapabilityDecl {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.capabilities[name]
}

// Provider returns a provider declaration by name, or nil.
func (r *Registry) Provider(name string) *schema.ProviderDecl {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.providers[name]
}

// Bundle returns a bundle declaration by name, or nil.
func (r *Registry) Bundle(name string) *schema.BundleDecl {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.bundles[name]
}

// Context returns a context declaration by name, or nil.
func (r *Registry) Context(name string) *schema.ContextDecl {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.contexts[name]
}

// ProvidersFor returns the provider names implementing a component, in
// registration order.
func (r *Registry) ProvidersFor(component string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.byCapability[component]))
	copy(out, r.byCapability[component])

	return out
}

// ProviderNames returns all registered provider names, sorted.
func (r *Registry) ProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return common.SortedKeys(r.providers)
}

// ComponentNames returns all registered capability names, sorted.
func (r *Registry) ComponentNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return common.SortedKeys(r.capabilities)
}

// ContextNames returns context names in registration order.
func (r *Registry) ContextNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.contextOrder))
	copy(out, r.contextOrder)

	return out
}
