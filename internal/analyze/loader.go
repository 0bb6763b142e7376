package analyze

import (
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"

	"capwire-generator/internal/common"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	graph     *TypeGraph
	typeCache map[types.Type]*TypeInfo // Cache to handle recursive types
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph:     NewTypeGraph(),
		typeCache: make(map[types.Type]*TypeInfo),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./examples/shapes").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts exported named types from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)

		typeName, ok := obj.(*types.TypeName)
		if !ok {
			continue
		}

		if !typeName.Exported() {
			continue
		}

		typeID := TypeID{
			PkgPath: pkg.PkgPath,
			Name:    name,
		}

		typeInfo := a.analyzeType(typeName.Type())
		typeInfo.ID = typeID

		a.graph.Types[typeID] = typeInfo
		pkgInfo.Types = append(pkgInfo.Types, typeID)
	}

	a.graph.Packages[pkg.PkgPath] = pkgInfo
}

// analyzeType recursively analyzes a go/types.Type and returns a TypeInfo.
func (a *Analyzer) analyzeType(t types.Type) *TypeInfo {
	if cached, ok := a.typeCache[t]; ok {
		return cached
	}

	info := &TypeInfo{
		GoType: t,
	}

	// Pre-cache to handle recursive types
	a.typeCache[t] = info

	switch tt := t.(type) {
	case *types.Named:
		a.analyzeNamedType(tt, info)

	case *types.Basic:
		info.Kind = TypeKindBasic

	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Slice:
		info.Kind = TypeKindSlice
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(tt, info)

	default:
		// Maps, interfaces, channels, etc. cannot serve as context types.
		info.Kind = TypeKindUnknown
	}

	return info
}

// analyzeNamedType analyzes a named type.
func (a *Analyzer) analyzeNamedType(named *types.Named, info *TypeInfo) {
	obj := named.Obj()
	info.ID = TypeID{
		PkgPath: obj.Pkg().Path(),
		Name:    obj.Name(),
	}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(ut, info)

	case *types.Basic:
		info.Kind = TypeKindAlias
		info.Underlying = a.analyzeType(ut)

	default:
		if a.isExternalPackage(obj.Pkg().Path()) {
			info.Kind = TypeKindExternal
		} else {
			info.Kind = TypeKindAlias
			info.Underlying = a.analyzeType(ut)
		}
	}
}

// isExternalPackage returns true if the package is not in our analyzed set.
func (a *Analyzer) isExternalPackage(pkgPath string) bool {
	_, ok := a.graph.Packages[pkgPath]
	return !ok
}

// analyzeStructFields extracts exported fields from a struct type.
func (a *Analyzer) analyzeStructFields(st *types.Struct, info *TypeInfo) {
	for i := range st.NumFields() {
		field := st.Field(i)

		if !field.Exported() {
			continue
		}

		info.Fields = append(info.Fields, FieldInfo{
			Name:     field.Name(),
			Exported: true,
			Type:     a.analyzeType(field.Type()),
			Index:    i,
		})
	}
}

// ResolveRef resolves a type reference string against the graph. The reference
// is either a builtin basic type ("float64", "string") or "pkgalias.Name"
// where pkgalias is the last element of the package path ("shapes.Rect").
func ResolveRef(ref string, graph *TypeGraph) *TypeInfo {
	if ref == "" || graph == nil {
		return nil
	}

	if !strings.Contains(ref, ".") {
		if obj := types.Universe.Lookup(ref); obj != nil {
			if basic, ok := obj.Type().(*types.Basic); ok {
				return &TypeInfo{Kind: TypeKindBasic, GoType: basic}
			}
		}
	}

	// Exact TypeID match first, then suffix match on "alias.Name".
	for id, info := range graph.Types {
		if id.String() == ref {
			return info
		}
	}

	var found *TypeInfo

	for id, info := range graph.Types {
		short := id.Name
		if id.PkgPath != "" {
			short = common.PkgAlias(id.PkgPath) + "." + id.Name
		}

		if short == ref {
			// Ambiguous suffix matches resolve to nothing rather than guessing.
			if found != nil {
				return nil
			}

			found = info
		}
	}

	return found
}
