package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capwire-generator/internal/schema"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterCapability(&schema.CapabilityDecl{Name: "area"}))
	require.NoError(t, r.RegisterProvider(&schema.ProviderDecl{Name: "RectangleArea", Capability: "area"}))
	require.NoError(t, r.RegisterProvider(&schema.ProviderDecl{Name: "CircleArea", Capability: "area"}))
	require.NoError(t, r.RegisterContext(&schema.ContextDecl{Name: "Rect", Type: "shapes.Rect"}))

	assert.NotNil(t, r.Capability("area"))
	assert.Nil(t, r.Capability("perimeter"))
	assert.NotNil(t, r.Provider("CircleArea"))
	assert.NotNil(t, r.Context("Rect"))

	assert.Equal(t, []string{"RectangleArea", "CircleArea"}, r.ProvidersFor("area"))
	assert.Equal(t, []string{"CircleArea", "RectangleArea"}, r.ProviderNames())
	assert.Equal(t, []string{"Rect"}, r.ContextNames())
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterProvider(&schema.ProviderDecl{Name: "P", Capability: "area"}))
	assert.Error(t, r.RegisterProvider(&schema.ProviderDecl{Name: "P", Capability: "area"}))

	require.NoError(t, r.RegisterContext(&schema.ContextDecl{Name: "C"}))
	assert.Error(t, r.RegisterContext(&schema.ContextDecl{Name: "C"}))
}

func TestFreezeRejectsLateDeclarations(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterCapability(&schema.CapabilityDecl{Name: "area"}))

	r.Freeze()
	assert.True(t, r.Frozen())

	assert.ErrorIs(t, r.RegisterCapability(&schema.CapabilityDecl{Name: "late"}), ErrFrozen)
	assert.ErrorIs(t, r.RegisterProvider(&schema.ProviderDecl{Name: "late"}), ErrFrozen)
	assert.ErrorIs(t, r.RegisterBundle(&schema.BundleDecl{Name: "late"}), ErrFrozen)
	assert.ErrorIs(t, r.RegisterContext(&schema.ContextDecl{Name: "late"}), ErrFrozen)

	// Reads still work.
	assert.NotNil(t, r.Capability("area"))

	// Freeze is idempotent.
	r.Freeze()
	assert.True(t, r.Frozen())
}

func TestFromFile(t *testing.T) {
	wf := &schema.WiringFile{
		Capabilities: []schema.CapabilityDecl{{Name: "area"}},
		Providers:    []schema.ProviderDecl{{Name: "RectangleArea", Capability: "area"}},
		Bundles:      []schema.BundleDecl{{Name: "geometry"}},
		Contexts:     []schema.ContextDecl{{Name: "Rect", Type: "shapes.Rect"}},
	}

	r, err := FromFile(wf)
	require.NoError(t, err)
	assert.NotNil(t, r.Bundle("geometry"))

	// Duplicates in the file surface as registration errors.
	wf.Providers = append(wf.Providers, schema.ProviderDecl{Name: "RectangleArea", Capability: "area"})
	_, err = FromFile(wf)
	assert.Error(t, err)
}
