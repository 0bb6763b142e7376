package analyze

import (
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeIDString(t *testing.T) {
	id := TypeID{PkgPath: "capwire-generator/examples/shapes", Name: "Rect"}
	assert.Equal(t, "capwire-generator/examples/shapes.Rect", id.String())

	assert.Equal(t, "float64", TypeID{Name: "float64"}.String())
}

func TestBasicClassification(t *testing.T) {
	f64 := &TypeInfo{Kind: TypeKindBasic, GoType: types.Typ[types.Float64]}
	assert.True(t, f64.IsNumeric())
	assert.True(t, f64.IsFloat())
	assert.False(t, f64.IsInteger())
	assert.True(t, f64.IsOrdered())
	assert.True(t, f64.IsComparable())

	i := &TypeInfo{Kind: TypeKindBasic, GoType: types.Typ[types.Int]}
	assert.True(t, i.IsNumeric())
	assert.True(t, i.IsInteger())
	assert.False(t, i.IsFloat())

	s := &TypeInfo{Kind: TypeKindBasic, GoType: types.Typ[types.String]}
	assert.False(t, s.IsNumeric())
	assert.True(t, s.IsString())
	assert.True(t, s.IsOrdered())

	var nilInfo *TypeInfo
	assert.False(t, nilInfo.IsNumeric())
	assert.False(t, nilInfo.IsComparable())
}

func TestResolveRefBuiltin(t *testing.T) {
	graph := NewTypeGraph()

	info := ResolveRef("float64", graph)
	assert.NotNil(t, info)
	assert.Equal(t, TypeKindBasic, info.Kind)
	assert.True(t, info.IsFloat())

	assert.Nil(t, ResolveRef("notatype", graph))
	assert.Nil(t, ResolveRef("", graph))
}

func TestResolveRefNamed(t *testing.T) {
	graph := NewTypeGraph()
	id := TypeID{PkgPath: "capwire-generator/examples/shapes", Name: "Rect"}
	graph.Types[id] = &TypeInfo{ID: id, Kind: TypeKindStruct}

	assert.NotNil(t, ResolveRef("shapes.Rect", graph))
	assert.NotNil(t, ResolveRef("capwire-generator/examples/shapes.Rect", graph))
	assert.Nil(t, ResolveRef("shapes.Missing", graph))
}
