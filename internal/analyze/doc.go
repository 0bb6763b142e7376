// Package analyze provides package loading and type graph extraction.
//
// It uses golang.org/x/tools/go/packages with go/types to build a canonical
// in-memory model of context struct types and their stored fields. The graph
// is the ground truth the field-projection layer and the type-slot dictionary
// validate against.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/external)
//   - FieldInfo: describes field name, type, and position
package analyze
