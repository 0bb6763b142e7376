package analyze

import (
	"go/types"

	"capwire-generator/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "capwire-generator/examples/shapes"
	Name    string // e.g., "Rect"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown  TypeKind = iota
	TypeKindBasic             // int, string, bool, etc.
	TypeKindStruct            // struct type
	TypeKindPointer           // pointer to another type
	TypeKindSlice             // slice of another type
	TypeKindAlias             // named type wrapping another
	TypeKindExternal          // external/opaque type (e.g., time.Time)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID         TypeID     // Unique identifier (empty for unnamed types like *T or []T)
	Kind       TypeKind   // Kind of type
	Underlying *TypeInfo  // For named types, the underlying type
	ElemType   *TypeInfo  // For pointers and slices, the element type
	Fields     []FieldInfo // For structs, the list of fields
	GoType     types.Type // The original go/types.Type (for bound checks)
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// basicInfo returns the go/types basic-type info, following named types to
// their underlying basic type. Returns 0 when the type is not basic.
func (t *TypeInfo) basicInfo() types.BasicInfo {
	if t == nil || t.GoType == nil {
		return 0
	}

	basic, ok := t.GoType.Underlying().(*types.Basic)
	if !ok {
		return 0
	}

	return basic.Info()
}

// IsNumeric returns true for integer, unsigned, and floating-point types.
func (t *TypeInfo) IsNumeric() bool {
	return t.basicInfo()&types.IsNumeric != 0
}

// IsInteger returns true for signed and unsigned integer types.
func (t *TypeInfo) IsInteger() bool {
	return t.basicInfo()&types.IsInteger != 0
}

// IsFloat returns true for floating-point types.
func (t *TypeInfo) IsFloat() bool {
	return t.basicInfo()&types.IsFloat != 0
}

// IsString returns true for string types.
func (t *TypeInfo) IsString() bool {
	return t.basicInfo()&types.IsString != 0
}

// IsOrdered returns true for types supporting < comparisons.
func (t *TypeInfo) IsOrdered() bool {
	return t.basicInfo()&types.IsOrdered != 0
}

// IsComparable returns true for types supporting == comparisons.
func (t *TypeInfo) IsComparable() bool {
	if t == nil || t.GoType == nil {
		return false
	}

	return types.Comparable(t.GoType)
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string    // Go field name
	Exported bool      // Whether the field is exported
	Type     *TypeInfo // Field type
	Index    int       // Field index in the struct
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Named types defined in this package
}
