package querydef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openogm/graphom/internal/cypher"
)

func TestCompare_Lower(t *testing.T) {
	testCases := []struct {
		name     string
		filter   Compare
		expected string
	}{
		{"equals", Compare{Field: "name", Op: OpEquals, Value: "alice"}, "n.name = $p0"},
		{"not equals", Compare{Field: "name", Op: OpNotEquals, Value: "alice"}, "n.name <> $p0"},
		{"greater", Compare{Field: "age", Op: OpGreater, Value: 30}, "n.age > $p0"},
		{"greater or equal", Compare{Field: "age", Op: OpGreaterEq, Value: 30}, "n.age >= $p0"},
		{"less", Compare{Field: "age", Op: OpLess, Value: 30}, "n.age < $p0"},
		{"less or equal", Compare{Field: "age", Op: OpLessEq, Value: 30}, "n.age <= $p0"},
		{"in", Compare{Field: "city", Op: OpIn, Value: []any{"Berlin", "Paris"}}, "n.city IN $p0"},
		{"contains", Compare{Field: "name", Op: OpContains, Value: "li"}, "n.name CONTAINS $p0"},
		{"starts with", Compare{Field: "name", Op: OpStartsWith, Value: "al"}, "n.name STARTS WITH $p0"},
		{"ends with", Compare{Field: "name", Op: OpEndsWith, Value: "ce"}, "n.name ENDS WITH $p0"},
		{"regex", Compare{Field: "name", Op: OpMatchesRx, Value: "al.*"}, "n.name =~ $p0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			params := cypher.NewParameters()
			text, err := tc.filter.Lower("n", params)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, text)
			assert.Equal(t, 1, params.Len())
			assert.Equal(t, tc.filter.Value, params.Ordered()[0].Value)
		})
	}
}

func TestCompare_LowerNullChecks(t *testing.T) {
	params := cypher.NewParameters()

	text, err := Compare{Field: "email", Op: OpIsNull}.Lower("n", params)
	require.NoError(t, err)
	assert.Equal(t, "n.email IS NULL", text)

	text, err = Compare{Field: "email", Op: OpIsNotNull}.Lower("n", params)
	require.NoError(t, err)
	assert.Equal(t, "n.email IS NOT NULL", text)

	// Null checks bind no parameters.
	assert.Equal(t, 0, params.Len())
}

func TestCompare_LowerErrors(t *testing.T) {
	params := cypher.NewParameters()

	_, err := Compare{Op: OpEquals, Value: 1}.Lower("n", params)
	assert.Error(t, err)

	_, err = Compare{Field: "age", Op: "approximately", Value: 1}.Lower("n", params)
	assert.Error(t, err)

	// Null checks take no right-hand value; a supplied one is an error,
	// not a silent drop.
	_, err = Compare{Field: "email", Op: OpIsNull, Value: 42}.Lower("n", params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes no value")
	assert.Equal(t, 0, params.Len())
}

func TestAll_Lower(t *testing.T) {
	params := cypher.NewParameters()
	filter := All{Filters: []Filter{
		Compare{Field: "age", Op: OpGreater, Value: 21},
		Any{Filters: []Filter{
			Compare{Field: "city", Op: OpEquals, Value: "Berlin"},
			Compare{Field: "city", Op: OpEquals, Value: "Paris"},
		}},
	}}

	text, err := filter.Lower("n", params)
	require.NoError(t, err)
	assert.Equal(t, "n.age > $p0 AND (n.city = $p1 OR n.city = $p2)", text)
	assert.Equal(t, 3, params.Len())
}

func TestAll_LowerEmptyIsVacuouslyTrue(t *testing.T) {
	text, err := All{}.Lower("n", cypher.NewParameters())
	require.NoError(t, err)
	assert.Equal(t, "true", text)
}

func TestAny_LowerEmptyIsFalse(t *testing.T) {
	text, err := Any{}.Lower("n", cypher.NewParameters())
	require.NoError(t, err)
	assert.Equal(t, "false", text)
}

func TestRaw_Lower(t *testing.T) {
	params := cypher.NewParameters()
	text, err := Raw{Text: "size(n.tags) > 0"}.Lower("n", params)
	require.NoError(t, err)
	assert.Equal(t, "size(n.tags) > 0", text)
	assert.Equal(t, 0, params.Len())

	_, err = Raw{}.Lower("n", params)
	assert.Error(t, err)
}

func TestLower_EqualValuesShareOneParameter(t *testing.T) {
	params := cypher.NewParameters()
	filter := All{Filters: []Filter{
		Compare{Field: "min", Op: OpGreaterEq, Value: 10},
		Compare{Field: "max", Op: OpLessEq, Value: 10},
	}}

	text, err := filter.Lower("n", params)
	require.NoError(t, err)
	assert.Equal(t, "n.min >= $p0 AND n.max <= $p0", text)
	assert.Equal(t, 1, params.Len())
}
