package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringArray is a string slice that can be unmarshaled from a single string
// or a list of strings.
type StringArray []string

// UnmarshalYAML implements yaml.Unmarshaler for StringArray.
func (s *StringArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringArray{str}
		} else {
			*s = StringArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringArray.
// Outputs a single string if length is 1, otherwise an array.
func (s StringArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// --- WiringRow YAML methods ---

type wiringRowPlain WiringRow

// UnmarshalYAML implements yaml.Unmarshaler for WiringRow.
// Accepted forms:
//   - Full: {component: area, provider: RectangleArea}
//   - Full with composition: {component: area, provider: ScaledArea, inner: {provider: RectangleArea}}
//   - Shorthand: {area: RectangleArea}
//   - Shorthand with composition: {area: {provider: ScaledArea, inner: {provider: RectangleArea}}}
//   - Bundle reference: {bundle: geometry}
func (w *WiringRow) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected map for wiring row, got %v", node.Kind)
	}

	if hasKey(node, "component") || hasKey(node, "bundle") {
		return node.Decode((*wiringRowPlain)(w))
	}

	if len(node.Content) != 2 {
		return fmt.Errorf("shorthand wiring row must be a single key-value pair")
	}

	var component string
	if err := node.Content[0].Decode(&component); err != nil {
		return fmt.Errorf("invalid wiring component: %w", err)
	}

	w.Component = component

	val := node.Content[1]
	switch val.Kind {
	case yaml.ScalarNode:
		return val.Decode(&w.Provider)

	case yaml.MappingNode:
		var ref WiringRef

		err := val.Decode(&ref)
		if err != nil {
			return err
		}

		w.Provider = ref.Provider
		w.Inner = ref.Inner

		return nil

	default:
		return fmt.Errorf("expected provider name or composition for %q", component)
	}
}

// --- SlotReq YAML methods ---

type slotReqPlain SlotReq

// UnmarshalYAML implements yaml.Unmarshaler for SlotReq.
// Accepted forms:
//   - Bare name (no bound): "Scalar"
//   - Shorthand: {Scalar: numeric}
//   - Full: {name: Scalar, bound: numeric}
func (s *SlotReq) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&s.Name)

	case yaml.MappingNode:
		if hasKey(node, "name") {
			return node.Decode((*slotReqPlain)(s))
		}

		if len(node.Content) != 2 {
			return fmt.Errorf("shorthand slot requirement must be a single key-value pair")
		}

		if err := node.Content[0].Decode(&s.Name); err != nil {
			return fmt.Errorf("invalid slot name: %w", err)
		}

		var bound string
		if err := node.Content[1].Decode(&bound); err != nil {
			return fmt.Errorf("invalid slot bound: %w", err)
		}

		s.Bound = Bound(bound)

		return nil

	default:
		return fmt.Errorf("expected string or map for slot requirement, got %v", node.Kind)
	}
}

// --- SlotDecl YAML methods ---

type slotDeclPlain SlotDecl

// UnmarshalYAML implements yaml.Unmarshaler for SlotDecl.
// Accepted forms:
//   - Shorthand: {Scalar: float64}
//   - Full: {name: Delta, from: Scalar}
func (s *SlotDecl) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected map for slot binding, got %v", node.Kind)
	}

	if hasKey(node, "name") {
		return node.Decode((*slotDeclPlain)(s))
	}

	if len(node.Content) != 2 {
		return fmt.Errorf("shorthand slot binding must be a single key-value pair")
	}

	if err := node.Content[0].Decode(&s.Name); err != nil {
		return fmt.Errorf("invalid slot name: %w", err)
	}

	if err := node.Content[1].Decode(&s.Type); err != nil {
		return fmt.Errorf("invalid slot type: %w", err)
	}

	return nil
}

// --- ProjectionDecl YAML methods ---

type projectionDeclPlain ProjectionDecl

// projectionBody is the mapping-valued shorthand body: {field: X} or {expr: E}.
type projectionBody struct {
	Field string `yaml:"field,omitempty"`
	Expr  string `yaml:"expr,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler for ProjectionDecl.
// Accepted forms:
//   - Shorthand rename: {width: Side}
//   - Shorthand computed: {diameter: {expr: "2 * radius"}}
//   - Full: {accessor: width, field: Side}
func (p *ProjectionDecl) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected map for projection, got %v", node.Kind)
	}

	if hasKey(node, "accessor") {
		return node.Decode((*projectionDeclPlain)(p))
	}

	if len(node.Content) != 2 {
		return fmt.Errorf("shorthand projection must be a single key-value pair")
	}

	if err := node.Content[0].Decode(&p.Accessor); err != nil {
		return fmt.Errorf("invalid accessor name: %w", err)
	}

	val := node.Content[1]
	switch val.Kind {
	case yaml.ScalarNode:
		return val.Decode(&p.Field)

	case yaml.MappingNode:
		var body projectionBody

		err := val.Decode(&body)
		if err != nil {
			return err
		}

		p.Field = body.Field
		p.Expr = body.Expr

		return nil

	default:
		return fmt.Errorf("expected field name or {expr: ...} for accessor %q", p.Accessor)
	}
}

// hasKey reports whether a mapping node contains the given top-level key.
func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}

	return false
}
