package resolve

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capwire-generator/internal/analyze"
	"capwire-generator/internal/diagnostic"
	"capwire-generator/internal/registry"
	"capwire-generator/internal/schema"
)

const shapesPkg = "capwire-generator/examples/shapes"

func addStruct(g *analyze.TypeGraph, name string, fields ...string) {
	vars := make([]*types.Var, len(fields))
	info := &analyze.TypeInfo{
		ID:   analyze.TypeID{PkgPath: shapesPkg, Name: name},
		Kind: analyze.TypeKindStruct,
	}

	for i, f := range fields {
		vars[i] = types.NewField(token.NoPos, nil, f, types.Typ[types.Float64], false)
		info.Fields = append(info.Fields, analyze.FieldInfo{
			Name:     f,
			Exported: true,
			Type:     &analyze.TypeInfo{Kind: analyze.TypeKindBasic, GoType: types.Typ[types.Float64]},
			Index:    i,
		})
	}

	info.GoType = types.NewStruct(vars, nil)
	g.Types[info.ID] = info
}

func shapesGraph() *analyze.TypeGraph {
	g := analyze.NewTypeGraph()
	addStruct(g, "Rect", "Width", "Height")
	addStruct(g, "Circ", "Radius")
	addStruct(g, "Sq", "Side")
	addStruct(g, "ScaledRect", "Width", "Height", "Scale")
	addStruct(g, "Blob")

	return g
}

const shapesWiring = `
capabilities:
  - name: area
    operations:
      - name: area
providers:
  - name: RectangleArea
    capability: area
    body: width * height
    requires:
      accessors: [width, height]
  - name: CircleArea
    capability: area
    body: 3.14159265358979 * radius * radius
    requires:
      accessors: radius
  - name: ScaledArea
    capability: area
    body: scale * inner()
    requires:
      accessors: scale
      inner: true
`

func resolveWiring(t *testing.T, contexts string) *Plan {
	t.Helper()

	wf, err := schema.Parse([]byte(shapesWiring + contexts))
	require.NoError(t, err)

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	resolver := NewResolver(reg, shapesGraph(), DefaultConfig())
	plan, err := resolver.Resolve()
	require.NoError(t, err)

	return plan
}

func TestResolveExplicitWiring(t *testing.T) {
	plan := resolveWiring(t, `
contexts:
  - name: Rect
    type: shapes.Rect
    derive_fields: true
    wiring:
      - area: RectangleArea
`)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())
	require.True(t, plan.Complete())

	pair := plan.Context("Rect").Pair("area")
	require.NotNil(t, pair)
	assert.Equal(t, StateSpecialized, pair.State)
	assert.Equal(t, RouteExplicit, pair.Route)
	assert.Equal(t, []string{"RectangleArea"}, pair.Chain)

	got, err := pair.Eval("area", map[string]float64{"Width": 3, "Height": 4})
	require.NoError(t, err)
	assert.InDelta(t, 12.0, got, 1e-9)
}

func TestResolveImplicitSingleProvider(t *testing.T) {
	// Circ stores only Radius, so CircleArea is the sole eligible provider
	// and no wiring entry is needed.
	plan := resolveWiring(t, `
contexts:
  - name: Circ
    type: shapes.Circ
    derive_fields: true
    uses: area
`)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())

	pair := plan.Context("Circ").Pair("area")
	require.NotNil(t, pair)
	assert.Equal(t, StateSpecialized, pair.State)
	assert.Equal(t, RouteImplicit, pair.Route)
	assert.Equal(t, "CircleArea", pair.Provider())

	got, err := pair.Eval("area", map[string]float64{"Radius": 2})
	require.NoError(t, err)
	assert.InDelta(t, 12.566, got, 1e-3)
}

func TestResolveThroughProjections(t *testing.T) {
	// Sq satisfies RectangleArea by projecting both width and height onto
	// its single Side field.
	plan := resolveWiring(t, `
contexts:
  - name: Sq
    type: shapes.Sq
    projections:
      - width: Side
      - height: Side
    wiring:
      - area: RectangleArea
`)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())

	pair := plan.Context("Sq").Pair("area")
	require.NotNil(t, pair)
	assert.Equal(t, StateSpecialized, pair.State)

	got, err := pair.Eval("area", map[string]float64{"Side": 5})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, got, 1e-9)

	width := plan.Context("Sq").Accessors["width"]
	require.NotNil(t, width)
	assert.Equal(t, "Side", width.Field)
	assert.True(t, width.Explicit)
}

func TestResolveAmbiguousProviders(t *testing.T) {
	// A context storing both rectangle and circle fields makes both
	// providers eligible; without a wiring entry the pair must terminate
	// as ambiguous and name every candidate.
	wf, err := schema.Parse([]byte(shapesWiring + `
contexts:
  - name: Amb
    type: shapes.Amb
    derive_fields: true
    uses: area
`))
	require.NoError(t, err)

	g := shapesGraph()
	addStruct(g, "Amb", "Width", "Height", "Radius")

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, g, DefaultConfig()).Resolve()
	require.NoError(t, err)

	pair := plan.Context("Amb").Pair("area")
	require.NotNil(t, pair)
	assert.Equal(t, StateAmbiguous, pair.State)
	assert.Equal(t, []string{"RectangleArea", "CircleArea"}, pair.Candidates)

	require.True(t, plan.Diagnostics.HasErrors())
	diag := plan.Diagnostics.Errors[0]
	assert.Equal(t, diagnostic.CodeAmbiguousProvider, diag.Code)
	assert.Equal(t, "Amb/area", diag.Pair)
	assert.Equal(t, []string{"RectangleArea", "CircleArea"}, diag.Candidates)
}

func TestResolveHigherOrderComposition(t *testing.T) {
	plan := resolveWiring(t, `
contexts:
  - name: ScaledRect
    type: shapes.ScaledRect
    derive_fields: true
    wiring:
      - area:
          provider: ScaledArea
          inner:
            provider: RectangleArea
`)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())

	pair := plan.Context("ScaledRect").Pair("area")
	require.NotNil(t, pair)
	assert.Equal(t, StateSpecialized, pair.State)
	assert.Equal(t, []string{"ScaledArea", "RectangleArea"}, pair.Chain)

	got, err := pair.Eval("area", map[string]float64{"Width": 3, "Height": 4, "Scale": 2})
	require.NoError(t, err)
	assert.InDelta(t, 24.0, got, 1e-9)
}

func TestResolveHigherOrderNeverImplicit(t *testing.T) {
	// A higher-order provider must not be inferred even when it is the only
	// declared provider: its inner chain can only come from a wiring entry.
	wf, err := schema.Parse([]byte(`
capabilities:
  - name: area
    operations:
      - name: area
providers:
  - name: ScaledArea
    capability: area
    body: scale * inner()
    requires:
      accessors: scale
      inner: true
contexts:
  - name: ScaledRect
    type: shapes.ScaledRect
    derive_fields: true
    uses: area
`))
	require.NoError(t, err)

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, shapesGraph(), DefaultConfig()).Resolve()
	require.NoError(t, err)

	pair := plan.Context("ScaledRect").Pair("area")
	require.NotNil(t, pair)
	assert.Equal(t, StateMissing, pair.State)

	require.True(t, plan.Diagnostics.HasErrors())
	assert.Equal(t, diagnostic.CodeMissingProvider, plan.Diagnostics.Errors[0].Code)
}

func TestResolveMissingProvider(t *testing.T) {
	// Blob stores nothing, so neither provider's accessors project.
	plan := resolveWiring(t, `
contexts:
  - name: Blob
    type: shapes.Blob
    derive_fields: true
    uses: area
`)

	pair := plan.Context("Blob").Pair("area")
	require.NotNil(t, pair)
	assert.Equal(t, StateMissing, pair.State)
	assert.Equal(t, []string{"RectangleArea", "CircleArea", "ScaledArea"}, pair.Candidates)

	require.True(t, plan.Diagnostics.HasErrors())
	assert.Equal(t, diagnostic.CodeMissingProvider, plan.Diagnostics.Errors[0].Code)
	assert.False(t, plan.Complete())
	assert.Len(t, plan.StuckPairs(), 1)
}

func TestResolveExplicitWiringBeatsAmbiguity(t *testing.T) {
	// Same eligible set as the ambiguous case, but an explicit row settles it.
	wf, err := schema.Parse([]byte(shapesWiring + `
contexts:
  - name: Amb
    type: shapes.Amb
    derive_fields: true
    wiring:
      - area: CircleArea
`))
	require.NoError(t, err)

	g := shapesGraph()
	addStruct(g, "Amb", "Width", "Height", "Radius")

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, g, DefaultConfig()).Resolve()
	require.NoError(t, err)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())

	pair := plan.Context("Amb").Pair("area")
	assert.Equal(t, RouteExplicit, pair.Route)
	assert.Equal(t, "CircleArea", pair.Provider())
}

func TestResolveBundleRow(t *testing.T) {
	wf, err := schema.Parse([]byte(shapesWiring + `
bundles:
  - name: rectangles
    wiring:
      - area: RectangleArea
contexts:
  - name: Rect
    type: shapes.Rect
    derive_fields: true
    wiring:
      - bundle: rectangles
`))
	require.NoError(t, err)

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, shapesGraph(), DefaultConfig()).Resolve()
	require.NoError(t, err)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())

	pair := plan.Context("Rect").Pair("area")
	require.NotNil(t, pair)
	assert.Equal(t, RouteBundle, pair.Route)
	assert.Equal(t, "rectangles", pair.Bundle)
	assert.Equal(t, StateSpecialized, pair.State)
}

func TestResolveDirectRowShadowsBundle(t *testing.T) {
	wf, err := schema.Parse([]byte(shapesWiring + `
bundles:
  - name: circles
    wiring:
      - area: CircleArea
contexts:
  - name: Rect
    type: shapes.Rect
    derive_fields: true
    wiring:
      - bundle: circles
      - area: RectangleArea
`))
	require.NoError(t, err)

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, shapesGraph(), DefaultConfig()).Resolve()
	require.NoError(t, err)

	pair := plan.Context("Rect").Pair("area")
	require.NotNil(t, pair)
	assert.Equal(t, RouteExplicit, pair.Route)
	assert.Equal(t, "RectangleArea", pair.Provider())
}

func TestResolveRequiredCapability(t *testing.T) {
	// doubled requires the area capability to resolve on the same context.
	wf, err := schema.Parse([]byte(`
capabilities:
  - name: area
    operations:
      - name: area
  - name: doubled
    operations:
      - name: doubled
providers:
  - name: RectangleArea
    capability: area
    body: width * height
    requires:
      accessors: [width, height]
  - name: DoubledWidth
    capability: doubled
    body: 2 * width
    requires:
      accessors: width
      capabilities: area
contexts:
  - name: Rect
    type: shapes.Rect
    derive_fields: true
    wiring:
      - area: RectangleArea
      - doubled: DoubledWidth
`))
	require.NoError(t, err)

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, shapesGraph(), DefaultConfig()).Resolve()
	require.NoError(t, err)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())
	assert.Equal(t, StateSpecialized, plan.Context("Rect").Pair("doubled").State)
}

func TestResolveRequiredCapabilityCycle(t *testing.T) {
	wf, err := schema.Parse([]byte(`
capabilities:
  - name: a
    operations: [{name: a}]
  - name: b
    operations: [{name: b}]
providers:
  - name: AP
    capability: a
    body: "1"
    requires:
      capabilities: b
  - name: BP
    capability: b
    body: "2"
    requires:
      capabilities: a
contexts:
  - name: Rect
    type: shapes.Rect
    wiring:
      - a: AP
      - b: BP
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

	assert.Contains(t, codes, diagnostic.CodeCyclicComposition)
	assert.False(t, plan.Complete())
}

func TestResolveExplicitProjectionBeatsDerivation(t *testing.T) {
	wf, err := schema.Parse([]byte(shapesWiring + `
contexts:
  - name: Rect
    type: shapes.Rect
    derive_fields: true
    projections:
      - width: Height
    wiring:
      - area: RectangleArea
`))
	require.NoError(t, err)

	reg, err := registry.FromFile(wf)
	require.NoError(t, err)

	plan, err := NewResolver(reg, shapesGraph(), DefaultConfig()).Resolve()
	require.NoError(t, err)

	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())

	width := plan.Context("Rect").Accessors["width"]
	require.NotNil(t, width)
	assert.Equal(t, "Height", width.Field)

	got, err := plan.Context("Rect").Pair("area").Eval("area", map[string]float64{"Width": 3, "Height": 4})
	require.NoError(t, err)
	assert.InDelta(t, 16.0, got, 1e-9)
}

func TestResolveSequentialMatchesParallel(t *testing.T) {
	contexts := `
contexts:
  - name: Rect
    type: shapes.Rect
    derive_fields: true
    wiring:
      - area: RectangleArea
  - name: Circ
    type: shapes.Circ
    derive_fields: true
    uses: area
  - name: Sq
    type: shapes.Sq
    projections:
      - width: Side
      - height: Side
    wiring:
      - area: RectangleArea
  - name: Blob
    type: shapes.Blob
    derive_fields: true
    uses: area
`

	run := func(parallelism int) *Plan {
		wf, err := schema.Parse([]byte(shapesWiring + contexts))
		require.NoError(t, err)

		reg, err := registry.FromFile(wf)
		require.NoError(t, err)

		cfg := DefaultConfig()
		cfg.Parallelism = parallelism

		plan, err := NewResolver(reg, shapesGraph(), cfg).Resolve()
		require.NoError(t, err)

		return plan
	}

	sequential := run(1)
	parallel := run(8)

	assert.Equal(t, sequential.Diagnostics, parallel.Diagnostics)
	require.Len(t, parallel.Contexts, len(sequential.Contexts))

	for i := range sequential.Contexts {
		assert.Equal(t, sequential.Contexts[i].Name, parallel.Contexts[i].Name)
		assert.Equal(t, sequential.Contexts[i].Pairs, parallel.Contexts[i].Pairs)
	}
}

func TestResolveStateStrings(t *testing.T) {
	assert.Equal(t, "specialized", StateSpecialized.String())
	assert.Equal(t, "ambiguous", StateAmbiguous.String())
	assert.Equal(t, "implicit", RouteImplicit.String())
}
