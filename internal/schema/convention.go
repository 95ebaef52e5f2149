package schema

import "strings"

// Reserved relationship-type naming for complex properties.
//
// The target database stores only flat values on a node. A nested
// object-valued property is stored out-of-band as a chain of auxiliary nodes
// connected by relationships whose type carries this reserved marker, e.g.
// the property "address" is reached over a relationship typed
// "__PROPERTY__address__". Domain relationships never use the marker.
const (
	// PropertyRelationshipPrefix marks a relationship as a property edge.
	PropertyRelationshipPrefix = "__PROPERTY__"

	// PropertyRelationshipSuffix closes a property-edge type name.
	PropertyRelationshipSuffix = "__"

	// SequenceNumberProperty is the relationship property that records the
	// position of an element inside an ordered complex-property collection.
	SequenceNumberProperty = "SequenceNumber"

	// DefaultDepthAllowed bounds how deep a complex-property chain may nest.
	DefaultDepthAllowed = 5
)

// PropertyRelationshipType converts a property name to its reserved
// relationship-type name: "address" becomes "__PROPERTY__address__".
func PropertyRelationshipType(propertyName string) string {
	return PropertyRelationshipPrefix + propertyName + PropertyRelationshipSuffix
}

// PropertyNameFromRelationshipType recovers the property name from a
// property-edge type name. Names that do not carry the reserved marker are
// returned unchanged.
func PropertyNameFromRelationshipType(relationshipType string) string {
	if IsPropertyRelationshipType(relationshipType) {
		return relationshipType[len(PropertyRelationshipPrefix) : len(relationshipType)-len(PropertyRelationshipSuffix)]
	}
	return relationshipType
}

// IsPropertyRelationshipType reports whether a relationship-type name carries
// the reserved property-edge marker.
func IsPropertyRelationshipType(relationshipType string) bool {
	return strings.HasPrefix(relationshipType, PropertyRelationshipPrefix) &&
		strings.HasSuffix(relationshipType, PropertyRelationshipSuffix) &&
		len(relationshipType) > len(PropertyRelationshipPrefix)+len(PropertyRelationshipSuffix)
}
