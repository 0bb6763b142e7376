package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capwire-generator/internal/diagnostic"
	"capwire-generator/internal/registry"
	"capwire-generator/internal/schema"
)

func TestProjectionComputedExpression(t *testing.T) {
	// diameter is computed from radius, which itself derives from the
	// stored Radius field; the whole chain inlines to one tree.
	plan := resolveWiring(t, `
contexts:
  - name: Circ
    type: shapes.Circ
    derive_fields: true
    projections:
      - diameter:
          expr: 2 * radius
    wiring:
      - area: CircleArea
`)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())

	ctx := plan.Context("Circ")
	require.True(t, ctx.Pair("area").State == StateSpecialized)

	// The computed accessor was not demanded by any provider, so it is
	// resolved lazily and absent from the plan.
	assert.NotContains(t, ctx.Accessors, "diameter")
}

func TestProjectionComputedDemandedByProvider(t *testing.T) {
	wf, err := schema.Parse([]byte(`
capabilities:
  - name: girth
    operations:
      - name: girth
providers:
  - name: DiameterGirth
    capability: girth
    body: 3 * diameter
    requires:
      accessors: diameter
contexts:
  - name: Circ
    type: shapes.Circ
    derive_fields: true
    projections:
      - diameter:
          expr: 2 * radius
    wiring:
      - girth: DiameterGirth
`))
	require.NoError(t, err)

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, shapesGraph(), DefaultConfig()).Resolve()
	require.NoError(t, err)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())

	ctx := plan.Context("Circ")

	diameter := ctx.Accessors["diameter"]
	require.NotNil(t, diameter)
	assert.Equal(t, AccessorComputed, diameter.Kind)

	got, err := ctx.Pair("girth").Eval("girth", map[string]float64{"Radius": 2})
	require.NoError(t, err)
	assert.InDelta(t, 12.0, got, 1e-9)
}

func TestProjectionCycle(t *testing.T) {
	wf, err := schema.Parse([]byte(`
capabilities:
  - name: girth
    operations:
      - name: girth
providers:
  - name: DiameterGirth
    capability: girth
    body: 3 * diameter
    requires:
      accessors: diameter
contexts:
  - name: Circ
    type: shapes.Circ
    projections:
      - diameter:
          expr: 2 * spread
      - spread:
          expr: diameter / 2
    wiring:
      - girth: DiameterGirth
`))
	require.NoError(t, err)

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, shapesGraph(), DefaultConfig()).Resolve()
	require.NoError(t, err)

	require.True(t, plan.Diagnostics.HasErrors())

	var codes []string
	for _, e := range plan.Diagnostics.Errors {
		codes = append(codes, e.Code)
	}

	assert.Contains(t, codes, diagnostic.CodeMissingAccessor)
	assert.NotEqual(t, StateSpecialized, plan.Context("Circ").Pair("girth").State)
}

func TestProjectionUnknownFieldSuggests(t *testing.T) {
	wf, err := schema.Parse([]byte(shapesWiring + `
contexts:
  - name: Sq
    type: shapes.Sq
    projections:
      - width: Sides
      - height: Side
    wiring:
      - area: RectangleArea
`))
	require.NoError(t, err)

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, shapesGraph(), DefaultConfig()).Resolve()
	require.NoError(t, err)

	require.True(t, plan.Diagnostics.HasErrors())

	diag := plan.Diagnostics.Errors[0]
	assert.Equal(t, diagnostic.CodeMissingAccessor, diag.Code)
	assert.Equal(t, "width", diag.Path)
	assert.Contains(t, diag.Candidates, "Side")
}

func TestProjectionNoDerivationWithoutOptIn(t *testing.T) {
	// Without derive_fields, matching field names alone must not project.
	plan := resolveWiring(t, `
contexts:
  - name: Rect
    type: shapes.Rect
    wiring:
      - area: RectangleArea
`)

	require.True(t, plan.Diagnostics.HasErrors())
	assert.Equal(t, diagnostic.CodeMissingAccessor, plan.Diagnostics.Errors[0].Code)
	assert.NotEqual(t, StateSpecialized, plan.Context("Rect").Pair("area").State)
}

func TestProjectionDerivationNormalizesNames(t *testing.T) {
	wf, err := schema.Parse([]byte(`
capabilities:
  - name: scaled
    operations:
      - name: scaled
providers:
  - name: ScaleOnly
    capability: scaled
    body: scale_factor * scale_factor
    requires:
      accessors: scale_factor
contexts:
  - name: Gauge
    type: shapes.Gauge
    derive_fields: true
    wiring:
      - scaled: ScaleOnly
`))
	require.NoError(t, err)

	g := shapesGraph()
	addStruct(g, "Gauge", "ScaleFactor")

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, g, DefaultConfig()).Resolve()
	require.NoError(t, err)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())

	plan0 := plan.Context("Gauge").Accessors["scale_factor"]
	require.NotNil(t, plan0)
	assert.Equal(t, "ScaleFactor", plan0.Field)
	assert.False(t, plan0.Explicit)
}
