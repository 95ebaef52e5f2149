package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openogm/graphom/internal/schema"
)

func personDescriptor() schema.NodeDescriptor {
	return schema.NodeDescriptor{
		Name:   "Person",
		Labels: []string{"Person"},
		Complex: []schema.ComplexProperty{
			{Name: "address", RelationshipType: "__PROPERTY__address__"},
			{Name: "phoneNumbers", RelationshipType: "__PROPERTY__phoneNumbers__", Ordered: true},
		},
	}
}

func TestSerialize_SplitsSimpleAndComplex(t *testing.T) {
	node, err := Serialize(personDescriptor(), map[string]any{
		"id":      "abc",
		"name":    "alice",
		"age":     34,
		"address": map[string]any{"city": "Berlin", "zip": "10115"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Person"}, node.Labels)
	assert.Equal(t, map[string]any{"id": "abc", "name": "alice", "age": 34}, node.Properties)
	require.Len(t, node.Complex, 1)
	assert.Equal(t, "address", node.Complex[0].Name)
	assert.Equal(t, "__PROPERTY__address__", node.Complex[0].RelationshipType)
	assert.Equal(t, -1, node.Complex[0].SequenceNumber)
	assert.Equal(t, map[string]any{"city": "Berlin", "zip": "10115"}, node.Complex[0].Properties)
}

func TestSerialize_OrderedCollectionSequencing(t *testing.T) {
	node, err := Serialize(personDescriptor(), map[string]any{
		"phoneNumbers": []any{
			map[string]any{"number": "1"},
			map[string]any{"number": "2"},
			map[string]any{"number": "3"},
		},
	})
	require.NoError(t, err)

	require.Len(t, node.Complex, 3)
	for i, cv := range node.Complex {
		assert.Equal(t, "phoneNumbers", cv.Name)
		assert.Equal(t, i, cv.SequenceNumber)
	}
}

func TestSerialize_ComplexEntriesFollowDeclarationOrder(t *testing.T) {
	node, err := Serialize(personDescriptor(), map[string]any{
		"phoneNumbers": []any{map[string]any{"number": "1"}},
		"address":      map[string]any{"city": "Berlin"},
	})
	require.NoError(t, err)

	require.Len(t, node.Complex, 2)
	assert.Equal(t, "address", node.Complex[0].Name)
	assert.Equal(t, "phoneNumbers", node.Complex[1].Name)
}

func TestSerialize_UndeclaredNestedObject(t *testing.T) {
	_, err := Serialize(personDescriptor(), map[string]any{
		"metadata": map[string]any{"source": "import"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared as a complex property")
}

func TestSerialize_RejectsScalarComplexValue(t *testing.T) {
	_, err := Serialize(personDescriptor(), map[string]any{
		"address": "Berlin",
	})
	require.Error(t, err)
}

func TestSerialize_DefaultsLabelToTypeName(t *testing.T) {
	node, err := Serialize(schema.NodeDescriptor{Name: "City"}, map[string]any{"name": "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"City"}, node.Labels)
}

func TestSerialize_DerivesPropertyRelationshipType(t *testing.T) {
	desc := schema.NodeDescriptor{
		Name:    "Person",
		Complex: []schema.ComplexProperty{{Name: "address"}},
	}
	node, err := Serialize(desc, map[string]any{
		"address": map[string]any{"city": "Berlin"},
	})
	require.NoError(t, err)
	require.Len(t, node.Complex, 1)
	assert.Equal(t, schema.PropertyRelationshipType("address"), node.Complex[0].RelationshipType)
}
