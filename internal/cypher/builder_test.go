package cypher

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openogm/graphom/internal/schema"
)

// testCondition is a minimal predicate used to drive deferred lowering.
type testCondition struct {
	field string
	op    string
	value any
}

func (c testCondition) Lower(alias string, params *Parameters) (string, error) {
	name := params.Register(c.value)
	return fmt.Sprintf("%s.%s %s $%s", alias, c.field, c.op, name), nil
}

func TestBuild_FilteredNodeQuery(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.SetPendingWhere(testCondition{field: "age", op: ">", value: 30}, "")
	b.SetLimit(10)

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person)\nWHERE n.age > $p0\nRETURN n\nLIMIT 10", q.Text)
	assert.Equal(t, map[string]any{"p0": 30}, q.ParameterMap())
}

func TestBuild_ExistsQuery(t *testing.T) {
	b := NewBuilder(nil)
	b.AddRelationshipMatch("KNOWS")
	require.NoError(t, b.SetExistsQuery())

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (src)-[r:KNOWS]->(tgt)\nRETURN COUNT(r) > 0 AS exists", q.Text)
	assert.Empty(t, q.Parameters)
}

func TestBuild_NotExistsQuery(t *testing.T) {
	b := NewBuilder(nil)
	b.AddRelationshipMatch("KNOWS")
	require.NoError(t, b.SetNotExistsQuery())

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (src)-[r:KNOWS]->(tgt)\nRETURN COUNT(r) = 0 AS all", q.Text)
}

func TestBuild_ExistsIgnoresProjectionsAndPagination(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.AddUserProjection("n.name", "name")
	b.AddOrderBy("n.name", false)
	b.SetLimit(5)
	require.NoError(t, b.SetExistsQuery())

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person)\nRETURN COUNT(n) > 0 AS exists", q.Text)
}

func TestBuild_ConflictingModes(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	require.NoError(t, b.SetExistsQuery())

	err := b.SetNotExistsQuery()
	require.Error(t, err)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeConflictingMode, be.Code)
}

func TestBuild_ClauseOrderIndependentOfCallOrder(t *testing.T) {
	// Populate parts in the reverse of their render positions.
	b := NewBuilder(nil)
	b.SetLimit(3)
	b.SetSkip(1)
	b.AddOrderBy("n.name", true)
	b.AddUserProjection("n.name", "name")
	b.AddGroupBy("n.name")
	b.AddWhere("n.active = true")
	b.AddMatch("n", "Person", "")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (n:Person)\nWHERE n.active = true\nGROUP BY n.name\nRETURN n.name AS name\nORDER BY n.name DESC\nSKIP 1\nLIMIT 3",
		q.Text)
}

func TestBuild_Deterministic(t *testing.T) {
	build := func() *Query {
		b := NewBuilder(nil)
		b.AddMatch("n", "Person", "")
		b.SetPendingWhere(testCondition{field: "age", op: ">=", value: 21}, "n")
		b.SetPendingWhere(testCondition{field: "city", op: "=", value: "Berlin"}, "n")
		b.AddOrderBy("n.name", false)
		b.SetLimit(10)
		q, err := b.Build()
		require.NoError(t, err)
		return q
	}

	first := build()
	second := build()
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Parameters, second.Parameters)
}

func TestBuild_RebuildSameBuilderIsStable(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.SetPendingWhere(testCondition{field: "age", op: ">", value: 30}, "")

	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Parameters, second.Parameters)
}

func TestBuild_ParameterDeduplication(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	first := b.AddParameter(30)
	second := b.AddParameter(30)
	third := b.AddParameter("other")

	assert.Equal(t, "p0", first)
	assert.Equal(t, "p0", second)
	assert.Equal(t, "p1", third)
}

func TestBuild_AmbiguousAlias(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.SetPendingWhere(testCondition{field: "age", op: ">", value: 30}, "m")

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, IsAmbiguousAlias(err))
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "m", be.Alias)
}

func TestBuild_NoMainAliasForPendingFilter(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingWhere(testCondition{field: "age", op: ">", value: 30}, "")

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, IsAmbiguousAlias(err))
}

func TestBuild_RelationshipDefaultReturn(t *testing.T) {
	b := NewBuilder(nil)
	b.AddRelationshipMatch("KNOWS")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (src)-[r:KNOWS]->(tgt)\nRETURN src, r, tgt", q.Text)
}

func TestBuild_SatellitePatternRendersOwnMatch(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.AddMatchPattern("(n)-[:WORKS_AT]->(c)")
	b.AddMatchPattern("(m:City)")
	b.AddUserProjection("n", "")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person), (m:City)\nMATCH (n)-[:WORKS_AT]->(c)\nRETURN n", q.Text)
}

func TestBuild_OptionalMatch(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.AddOptionalMatch("(n)-[:OWNS]->(car:Car)")
	b.AddUserProjection("n", "")
	b.AddUserProjection("car", "")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person)\nOPTIONAL MATCH (n)-[:OWNS]->(car:Car)\nRETURN n, car", q.Text)
}

func TestBuild_InlinePropertySelector(t *testing.T) {
	b := NewBuilder(nil)
	name := b.AddParameter("alice")
	b.AddMatch("n", "Person", fmt.Sprintf("{name: $%s}", name))

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person {name: $p0})\nRETURN n", q.Text)
	assert.Equal(t, map[string]any{"p0": "alice"}, q.ParameterMap())
}

func TestBuild_AggregationSuppressesOrdering(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.SetAggregation("count", "n")
	b.AddOrderBy("n.name", false)

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person)\nRETURN count(n)", q.Text)
}

func TestBuild_DistinctProjections(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.AddUserProjection("n.city", "city")
	b.SetDistinct(true)

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person)\nRETURN DISTINCT n.city AS city", q.Text)
}

func TestBuild_WithAndUnwindPrecedeReturn(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.AddWith("n, collect(n.tag) AS tags")
	b.AddUnwind("tags AS tag")
	b.AddUserProjection("tag", "")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person)\nWITH n, collect(n.tag) AS tags\nUNWIND tags AS tag\nRETURN tag", q.Text)
}

func TestBuild_ReverseOrderBy(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.AddOrderBy("n.age", false)
	b.AddOrderBy("n.name", true)
	b.ReverseOrderBy()

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person)\nRETURN n\nORDER BY n.age DESC, n.name", q.Text)
}

func TestBuild_ComplexPropertyExpansion(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.EnableComplexPropertyLoading()
	b.SetLimit(1)

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"MATCH (n:Person)",
		"WITH n",
		"LIMIT 1",
		"OPTIONAL MATCH nPropPath = (n)-[*1..]->(nProp)",
		"WHERE ALL(rel IN relationships(nPropPath) WHERE type(rel) STARTS WITH '__PROPERTY__')",
		"WITH n, last(relationships(nPropPath)) AS nPropRel, nProp",
		"WITH n, collect(DISTINCT CASE WHEN nPropRel IS NULL THEN NULL ELSE { ParentNode: startNode(nPropRel), Relationship: nPropRel, SequenceNumber: coalesce(nPropRel.SequenceNumber, -1), Property: nProp } END) AS nComplexProps",
		"RETURN { Node: n, ComplexProperties: nComplexProps } AS n",
	}, "\n"), q.Text)
}

func TestBuild_PaginationPrecedesExpansion(t *testing.T) {
	b := NewBuilder(nil)
	b.AddMatch("n", "Person", "")
	b.EnableComplexPropertyLoading()
	b.AddOrderBy("n.name", false)
	b.SetSkip(10)
	b.SetLimit(5)

	q, err := b.Build()
	require.NoError(t, err)
	limitAt := strings.Index(q.Text, "LIMIT 5")
	skipAt := strings.Index(q.Text, "SKIP 10")
	orderAt := strings.Index(q.Text, "ORDER BY n.name")
	expandAt := strings.Index(q.Text, "OPTIONAL MATCH")
	require.True(t, limitAt >= 0 && skipAt >= 0 && orderAt >= 0 && expandAt >= 0)
	assert.Less(t, orderAt, skipAt)
	assert.Less(t, skipAt, limitAt)
	assert.Less(t, limitAt, expandAt)
}

func TestBuild_PathSegmentFullProjection(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingPathSegmentPattern("Person", "KNOWS", "Person", "", "", "")
	b.EnablePathSegmentLoading()

	q, err := b.Build()
	require.NoError(t, err)

	lines := strings.Split(q.Text, "\n")
	assert.Equal(t, "MATCH (src:Person)-[r:KNOWS]->(tgt:Person)", lines[0])
	assert.Equal(t, "WITH src, r, tgt", lines[1])

	// Both endpoints expand, start first, and the second expansion carries
	// the first's record list through its WITH clauses.
	assert.Contains(t, q.Text, "OPTIONAL MATCH srcPropPath = (src)-[*1..]->(srcProp)")
	assert.Contains(t, q.Text, "OPTIONAL MATCH tgtPropPath = (tgt)-[*1..]->(tgtProp)")
	assert.Contains(t, q.Text, "WITH src, r, tgt, srcComplexProps, last(relationships(tgtPropPath)) AS tgtPropRel, tgtProp")
	assert.Equal(t,
		"RETURN { StartNode: { Node: src, ComplexProperties: srcComplexProps }, Relationship: r, EndNode: { Node: tgt, ComplexProperties: tgtComplexProps } } AS r",
		lines[len(lines)-1])
}

func TestBuild_PathSegmentEndNodeProjection(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingPathSegmentPattern("Person", "KNOWS", "Person", "", "", "")
	b.EnablePathSegmentLoading()
	b.SetProjectionMode(ProjectionEndNode)

	q, err := b.Build()
	require.NoError(t, err)
	assert.NotContains(t, q.Text, "srcPropPath")
	assert.Contains(t, q.Text, "OPTIONAL MATCH tgtPropPath = (tgt)-[*1..]->(tgtProp)")
	assert.True(t, strings.HasSuffix(q.Text, "RETURN { Node: tgt, ComplexProperties: tgtComplexProps } AS tgt"))
}

func TestBuild_PathSegmentStartNodeProjection(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingPathSegmentPattern("Person", "KNOWS", "Person", "", "", "")
	b.EnablePathSegmentLoading()
	b.SetProjectionMode(ProjectionStartNode)

	q, err := b.Build()
	require.NoError(t, err)
	assert.NotContains(t, q.Text, "tgtPropPath")
	assert.True(t, strings.HasSuffix(q.Text, "RETURN { Node: src, ComplexProperties: srcComplexProps } AS src"))
}

func TestBuild_MixedProjectionWithPathSegment(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingPathSegmentPattern("Person", "KNOWS", "Person", "", "", "")
	b.EnablePathSegmentLoading()
	b.AddUserProjection("src.name", "name")
	b.AddUserProjection("tgt.name", "friend")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Contains(t, q.Text, "OPTIONAL MATCH srcPropPath")
	assert.Contains(t, q.Text, "OPTIONAL MATCH tgtPropPath")
	assert.True(t, strings.HasSuffix(q.Text, "RETURN src.name AS name, tgt.name AS friend"))
}

func TestBuild_ChainedSegmentsWithFilterRewrite(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingPathSegmentPattern("Person", "KNOWS", "Company", "s", "r1", "mid")
	b.SetPendingPathSegmentPattern("Company", "LOCATED_IN", "City", "tgt", "r2", "t2")
	b.SetPendingWhere(testCondition{field: "name", op: "=", value: "ACME"}, "tgt")
	b.AddUserProjection("t2", "")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"MATCH (s:Person)-[r1:KNOWS]->(mid:Company)-[r2:LOCATED_IN]->(t2:City)",
		"WHERE mid.name = $p0",
		"RETURN t2",
	}, "\n"), q.Text)
}

func TestBuild_ChainedSegmentOrderingRewrite(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingPathSegmentPattern("Person", "KNOWS", "Company", "s", "r1", "mid")
	b.SetPendingPathSegmentPattern("Company", "LOCATED_IN", "City", "tgt", "r2", "t2")
	b.AddUserProjection("t2", "")
	b.AddOrderBy("tgt.name", false)

	q, err := b.Build()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(q.Text, "ORDER BY mid.name"))
}

func TestBuild_SegmentDepthBounds(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingPathSegmentPattern("Person", "KNOWS", "Person", "", "", "")
	b.SetDepthRange(2, 5)
	b.AddUserProjection("tgt", "")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (src:Person)-[r:KNOWS*2..5]->(tgt:Person)\nRETURN tgt", q.Text)
}

func TestBuild_InvalidDepthFailsBuild(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingPathSegmentPattern("Person", "KNOWS", "Person", "", "", "")
	b.SetDepthRange(5, 2)

	_, err := b.Build()
	require.Error(t, err)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeInvalidDepth, be.Code)
}

func TestBuild_IncomingTraversal(t *testing.T) {
	b := NewBuilder(nil)
	b.SetPendingPathSegmentPattern("Person", "KNOWS", "Person", "", "", "")
	b.SetTraversalDirection(DirectionIncoming)
	b.AddUserProjection("tgt", "")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (src:Person)<-[r:KNOWS]-(tgt:Person)\nRETURN tgt", q.Text)
}

func TestBuild_RegistryResolvesLabelsAndTypes(t *testing.T) {
	reg := schema.NewRegistry()
	require.NoError(t, reg.RegisterNode(schema.NodeDescriptor{Name: "Manager", Labels: []string{"Manager", "Employee"}}))
	require.NoError(t, reg.RegisterRelationship(schema.RelationshipDescriptor{Name: "ReportsTo", Type: "REPORTS_TO"}))

	b := NewBuilder(reg)
	b.SetPendingPathSegmentPattern("Manager", "ReportsTo", "Manager", "", "", "")
	b.AddUserProjection("tgt", "")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "MATCH (src:Manager|Employee)-[r:REPORTS_TO]->(tgt:Manager|Employee)\nRETURN tgt", q.Text)
}

func TestBuild_FullTextNodeSearch(t *testing.T) {
	b := NewBuilder(nil)
	param := b.AddParameter("smith~")
	b.AddFullTextNodeSearch("personNames", param, "node")
	b.AddUserProjection("node", "")
	b.AddOrderBy("score", true)

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"CALL db.index.fulltext.queryNodes('personNames', $p0) YIELD node AS node, score",
		"RETURN node",
		"ORDER BY score DESC",
	}, "\n"), q.Text)
}

func TestBuild_NoReturnableShapeFails(t *testing.T) {
	b := NewBuilder(nil)

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, IsUnsupportedShape(err))
}

func TestParseProjectionMode(t *testing.T) {
	testCases := []struct {
		input    string
		expected ProjectionMode
	}{
		{"", ProjectionFull},
		{"full", ProjectionFull},
		{"startNode", ProjectionStartNode},
		{"endNode", ProjectionEndNode},
		{"relationship", ProjectionRelationship},
	}
	for _, tc := range testCases {
		mode, err := ParseProjectionMode(tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, mode)
	}

	_, err := ParseProjectionMode("sideways")
	require.Error(t, err)
	assert.True(t, IsUnsupportedShape(err))
}
