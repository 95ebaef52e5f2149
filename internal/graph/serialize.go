package graph

import (
	"fmt"

	"github.com/openogm/graphom/internal/schema"
)

// SerializedNode is the persistence form of one entity: the properties
// stored on the node itself, and the nested values routed through reserved
// property edges.
type SerializedNode struct {
	// Labels are the database labels the node carries.
	Labels []string

	// Properties holds the simple (scalar or scalar-collection) properties.
	Properties map[string]any

	// Complex holds the nested values, one entry per attached property
	// node, in declaration order.
	Complex []ComplexValue
}

// ComplexValue is one nested value to persist behind a property edge.
type ComplexValue struct {
	// Name is the property name on the owning type.
	Name string

	// RelationshipType is the reserved property-edge type.
	RelationshipType string

	// SequenceNumber is the element position for ordered collections, or
	// -1 for unordered values.
	SequenceNumber int

	// Properties is the nested value's own property map.
	Properties map[string]any
}

// Serialize splits an entity's property map into the node's own properties
// and the complex values that persist behind property edges.
//
// Properties the descriptor declares complex must be objects (single
// values) or lists of objects (collections); ordered collections receive
// sequence numbers in list order. Undeclared object-valued properties are
// an error rather than a silent flattening.
func Serialize(desc schema.NodeDescriptor, props map[string]any) (*SerializedNode, error) {
	out := &SerializedNode{
		Labels:     desc.Labels,
		Properties: make(map[string]any, len(props)),
	}
	if len(out.Labels) == 0 {
		out.Labels = []string{desc.Name}
	}

	// Complex entries follow the descriptor's declaration order, so the
	// same input always serializes the same way.
	seen := make(map[string]bool, len(desc.Complex))
	for _, cp := range desc.Complex {
		value, ok := props[cp.Name]
		if !ok {
			continue
		}
		seen[cp.Name] = true
		values, err := complexValues(cp, value)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", cp.Name, err)
		}
		out.Complex = append(out.Complex, values...)
	}

	for name, value := range props {
		if seen[name] {
			continue
		}
		if _, ok := value.(map[string]any); ok {
			return nil, fmt.Errorf("property %q: nested object not declared as a complex property of %s", name, desc.Name)
		}
		out.Properties[name] = value
	}

	return out, nil
}

// complexValues expands one declared complex property into its persistence
// entries.
func complexValues(cp schema.ComplexProperty, value any) ([]ComplexValue, error) {
	relType := cp.RelationshipType
	if relType == "" {
		relType = schema.PropertyRelationshipType(cp.Name)
	}

	switch v := value.(type) {
	case map[string]any:
		return []ComplexValue{{
			Name:             cp.Name,
			RelationshipType: relType,
			SequenceNumber:   -1,
			Properties:       v,
		}}, nil
	case []any:
		out := make([]ComplexValue, 0, len(v))
		for i, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d: complex collection elements must be objects, got %T", i, elem)
			}
			seq := -1
			if cp.Ordered {
				seq = i
			}
			out = append(out, ComplexValue{
				Name:             cp.Name,
				RelationshipType: relType,
				SequenceNumber:   seq,
				Properties:       obj,
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("complex property values must be objects or lists of objects, got %T", value)
	}
}
