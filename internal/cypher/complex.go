package cypher

import (
	"fmt"
	"strings"
)

// ProjectionMode selects which side of a path segment the caller observes,
// so the expander only walks the property chains a result shape actually
// needs.
type ProjectionMode int

const (
	// ProjectionFull observes the whole segment: both endpoints expand.
	ProjectionFull ProjectionMode = iota

	// ProjectionStartNode observes only the segment's start node.
	ProjectionStartNode

	// ProjectionEndNode observes only the segment's end node.
	ProjectionEndNode

	// ProjectionRelationship observes the relationship; both endpoints
	// still expand so navigation can continue from either side.
	ProjectionRelationship
)

// String returns the projection mode name.
func (m ProjectionMode) String() string {
	switch m {
	case ProjectionFull:
		return "full"
	case ProjectionStartNode:
		return "startNode"
	case ProjectionEndNode:
		return "endNode"
	case ProjectionRelationship:
		return "relationship"
	default:
		return fmt.Sprintf("ProjectionMode(%d)", int(m))
	}
}

// ParseProjectionMode converts a mode name to its value.
func ParseProjectionMode(s string) (ProjectionMode, error) {
	switch s {
	case "", "full":
		return ProjectionFull, nil
	case "startNode":
		return ProjectionStartNode, nil
	case "endNode":
		return ProjectionEndNode, nil
	case "relationship":
		return ProjectionRelationship, nil
	default:
		return ProjectionFull, &BuildError{
			Code:    ErrCodeUnsupportedShape,
			Message: fmt.Sprintf("unknown projection mode %q", s),
		}
	}
}

// expander generates the synthetic sub-query that walks property edges to
// reconstruct nested object graphs attached to a node.
//
// The walk matches every outgoing chain of relationships whose type carries
// the reserved property-edge prefix, at arbitrary depth. A variable-length
// match yields one row per path, and every hop in the property tree is some
// path's last hop, so taking each path's last relationship and collecting
// DISTINCT records flattens the walk into one deduplicated record list per
// root row. The sequence number recovered from the relationship supports
// ordered collections; -1 marks unordered entries.
type expander struct {
	prefix string
}

// expansionLines renders the OPTIONAL MATCH walk for one root alias. carry
// lists every identifier that must survive the aggregating WITH clauses
// (the root itself plus any previously produced record lists). The final
// line leaves "<alias>ComplexProps" in scope.
func (e expander) expansionLines(alias string, carry []string) []string {
	pathVar := alias + "PropPath"
	propVar := alias + "Prop"
	relVar := alias + "PropRel"
	scope := strings.Join(carry, ", ")

	record := fmt.Sprintf(
		"{ ParentNode: startNode(%s), Relationship: %s, SequenceNumber: coalesce(%s.SequenceNumber, -1), Property: %s }",
		relVar, relVar, relVar, propVar)

	return []string{
		fmt.Sprintf("OPTIONAL MATCH %s = (%s)-[*1..]->(%s)", pathVar, alias, propVar),
		fmt.Sprintf("WHERE ALL(rel IN relationships(%s) WHERE type(rel) STARTS WITH '%s')", pathVar, e.prefix),
		fmt.Sprintf("WITH %s, last(relationships(%s)) AS %s, %s", scope, pathVar, relVar, propVar),
		fmt.Sprintf("WITH %s, collect(DISTINCT CASE WHEN %s IS NULL THEN NULL ELSE %s END) AS %s",
			scope, relVar, record, e.complexPropsVar(alias)),
	}
}

// complexPropsVar names the record list an expansion leaves in scope.
func (e expander) complexPropsVar(alias string) string {
	return alias + "ComplexProps"
}

// wrapped renders the canonical node record shape for a root whose
// expansion already ran.
func (e expander) wrapped(alias string) string {
	return fmt.Sprintf("{ Node: %s, ComplexProperties: %s }", alias, e.complexPropsVar(alias))
}

// nodeReturn renders the RETURN clause for a single expanded node root,
// aliased back to the root's name for uniform downstream materialization.
func (e expander) nodeReturn(alias string) string {
	return fmt.Sprintf("RETURN %s AS %s", e.wrapped(alias), alias)
}

// expandsStart reports whether the projection mode walks the start node.
func (m ProjectionMode) expandsStart() bool {
	return m == ProjectionFull || m == ProjectionStartNode || m == ProjectionRelationship
}

// expandsEnd reports whether the projection mode walks the end node.
func (m ProjectionMode) expandsEnd() bool {
	return m == ProjectionFull || m == ProjectionEndNode || m == ProjectionRelationship
}

// segmentReturn renders the RETURN clause for a path-segment root under the
// given projection mode.
func (e expander) segmentReturn(src, rel, tgt string, mode ProjectionMode) (string, error) {
	switch mode {
	case ProjectionStartNode:
		return fmt.Sprintf("RETURN %s AS %s", e.wrapped(src), src), nil
	case ProjectionEndNode:
		return fmt.Sprintf("RETURN %s AS %s", e.wrapped(tgt), tgt), nil
	case ProjectionFull, ProjectionRelationship:
		return fmt.Sprintf("RETURN { StartNode: %s, Relationship: %s, EndNode: %s } AS %s",
			e.wrapped(src), rel, e.wrapped(tgt), rel), nil
	default:
		return "", &BuildError{
			Code:    ErrCodeUnsupportedShape,
			Message: fmt.Sprintf("no rendering rule for projection mode %d", int(mode)),
		}
	}
}
