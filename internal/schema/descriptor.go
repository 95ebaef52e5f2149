package schema

import (
	"fmt"
	"strings"
)

// ComplexProperty describes one nested object-valued property of a node
// type. Complex properties are not stored on the node itself; they are
// reached over a reserved property-edge relationship.
type ComplexProperty struct {
	// Name is the property name as declared on the type.
	Name string

	// RelationshipType is the reserved property-edge type used to reach the
	// property value, derived from Name when registered empty.
	RelationshipType string

	// Ordered marks collection-valued properties whose element order is
	// recovered from the SequenceNumber relationship property.
	Ordered bool
}

// NodeDescriptor is the registration-time description of a node type.
//
// Descriptors replace runtime type inspection: a type's labels and its
// need for complex-property expansion are declared once, when the schema is
// registered, and looked up during query compilation.
type NodeDescriptor struct {
	// Name is the schema type name used by query definitions.
	Name string

	// Labels lists every database label the type maps to. A type with
	// multiple compatible labels (subtype polymorphism) lists them all; the
	// compiler joins them with "|" in match patterns.
	Labels []string

	// Complex lists the nested object-valued properties of the type.
	Complex []ComplexProperty
}

// NeedsExpansion reports whether loading this type requires the synthetic
// complex-property sub-query.
func (d NodeDescriptor) NeedsExpansion() bool {
	return len(d.Complex) > 0
}

// LabelExpr renders the label component of a match pattern for this type.
// Multiple labels join with "|" (a logical OR of labels).
func (d NodeDescriptor) LabelExpr() string {
	if len(d.Labels) == 0 {
		return d.Name
	}
	return strings.Join(d.Labels, "|")
}

// RelationshipDescriptor is the registration-time description of a
// relationship type.
type RelationshipDescriptor struct {
	// Name is the schema type name used by query definitions.
	Name string

	// Type is the database relationship type.
	Type string
}

// Registry maps schema type names to their descriptors. A registry is
// populated once, at schema-registration time, and is read-only afterwards;
// concurrent lookups are safe once registration is complete.
type Registry struct {
	nodes         map[string]NodeDescriptor
	relationships map[string]RelationshipDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes:         make(map[string]NodeDescriptor),
		relationships: make(map[string]RelationshipDescriptor),
	}
}

// RegisterNode adds a node descriptor. A descriptor with no labels defaults
// to a single label equal to its name. Complex properties with no explicit
// relationship type derive it from the property name.
func (r *Registry) RegisterNode(d NodeDescriptor) error {
	if d.Name == "" {
		return fmt.Errorf("node descriptor requires a name")
	}
	if _, exists := r.nodes[d.Name]; exists {
		return fmt.Errorf("node type %q already registered", d.Name)
	}
	if len(d.Labels) == 0 {
		d.Labels = []string{d.Name}
	}
	for i, cp := range d.Complex {
		if cp.Name == "" {
			return fmt.Errorf("node type %q: complex property %d requires a name", d.Name, i)
		}
		if cp.RelationshipType == "" {
			d.Complex[i].RelationshipType = PropertyRelationshipType(cp.Name)
		}
	}
	r.nodes[d.Name] = d
	return nil
}

// RegisterRelationship adds a relationship descriptor. A descriptor with no
// explicit database type defaults it to the name.
func (r *Registry) RegisterRelationship(d RelationshipDescriptor) error {
	if d.Name == "" {
		return fmt.Errorf("relationship descriptor requires a name")
	}
	if _, exists := r.relationships[d.Name]; exists {
		return fmt.Errorf("relationship type %q already registered", d.Name)
	}
	if d.Type == "" {
		d.Type = d.Name
	}
	r.relationships[d.Name] = d
	return nil
}

// Node looks up a node descriptor by schema type name.
func (r *Registry) Node(name string) (NodeDescriptor, bool) {
	d, ok := r.nodes[name]
	return d, ok
}

// Relationship looks up a relationship descriptor by schema type name.
func (r *Registry) Relationship(name string) (RelationshipDescriptor, bool) {
	d, ok := r.relationships[name]
	return d, ok
}

// LabelExpr resolves the match-pattern label component for a node type
// name. Unregistered names pass through unchanged, so callers can mix
// registered schema types with raw labels.
func (r *Registry) LabelExpr(name string) string {
	if r == nil {
		return name
	}
	if d, ok := r.nodes[name]; ok {
		return d.LabelExpr()
	}
	return name
}

// RelationshipType resolves the database relationship type for a schema type
// name. Unregistered names pass through unchanged.
func (r *Registry) RelationshipType(name string) string {
	if r == nil {
		return name
	}
	if d, ok := r.relationships[name]; ok {
		return d.Type
	}
	return name
}

// NeedsExpansion reports whether a node type requires complex-property
// expansion. Unregistered names never do.
func (r *Registry) NeedsExpansion(name string) bool {
	if r == nil {
		return false
	}
	d, ok := r.nodes[name]
	return ok && d.NeedsExpansion()
}
