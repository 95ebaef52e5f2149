package querydef

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the declarative description of one query: what to match,
// how to filter, what to return, and how the result set is shaped. It is
// the YAML surface the CLI and the scenario harness load; the translator
// walks it and drives the query orchestrator.
//
// A definition describes a query, it does not execute one. Compiling the
// same definition twice yields byte-identical query text and parameter
// order.
type Definition struct {
	// Match lists node patterns. The first entry's alias becomes the main
	// alias.
	Match []MatchSpec `yaml:"match,omitempty"`

	// Relationship roots the query at a relationship type instead of a node
	// pattern, matching both endpoints under the default aliases.
	Relationship string `yaml:"relationship,omitempty"`

	// Patterns lists raw pattern fragments added alongside Match.
	Patterns []string `yaml:"patterns,omitempty"`

	// OptionalMatch lists raw OPTIONAL MATCH pattern fragments.
	OptionalMatch []string `yaml:"optionalMatch,omitempty"`

	// Segments lists traversal hops. Sequential hops whose types line up
	// chain into one pattern at build time.
	Segments []SegmentSpec `yaml:"segments,omitempty"`

	// Traverse adjusts traversal direction and depth bounds for Segments.
	Traverse *TraverseSpec `yaml:"traverse,omitempty"`

	// FullText roots the query at a full-text index lookup.
	FullText *FullTextSpec `yaml:"fullText,omitempty"`

	// Where is the filter tree.
	Where *FilterSpec `yaml:"where,omitempty"`

	// Return lists the projections.
	Return []ReturnSpec `yaml:"return,omitempty"`

	// Aggregate replaces the projections with a single aggregation.
	Aggregate *AggregateSpec `yaml:"aggregate,omitempty"`

	// With and Unwind add pre-clauses rendered ahead of RETURN.
	With   []string `yaml:"with,omitempty"`
	Unwind []string `yaml:"unwind,omitempty"`

	// GroupBy lists grouping expressions.
	GroupBy []string `yaml:"groupBy,omitempty"`

	// OrderBy lists ordering expressions; ReverseOrder flips all of them,
	// which implements "last N" paging.
	OrderBy      []OrderSpec `yaml:"orderBy,omitempty"`
	ReverseOrder bool        `yaml:"reverseOrder,omitempty"`

	Skip     *int `yaml:"skip,omitempty"`
	Limit    *int `yaml:"limit,omitempty"`
	Distinct bool `yaml:"distinct,omitempty"`

	// Exists and NotExists switch the query to the boolean shapes. They are
	// mutually exclusive.
	Exists    bool `yaml:"exists,omitempty"`
	NotExists bool `yaml:"notExists,omitempty"`

	// LoadComplexProperties turns on the nested-object hydration sub-query.
	// With Segments present it loads the whole path segment.
	LoadComplexProperties bool `yaml:"loadComplexProperties,omitempty"`

	// Projection selects which side of a path segment the result observes:
	// "full" (default), "startNode", "endNode", or "relationship".
	Projection string `yaml:"projection,omitempty"`
}

// MatchSpec is one node pattern declaration.
type MatchSpec struct {
	Alias string `yaml:"alias"`

	// Type is the schema type name; it resolves to a label expression
	// through the registry, or passes through as a raw label.
	Type string `yaml:"type,omitempty"`

	// Properties is an inline equality selector. Values bind as parameters.
	Properties map[string]any `yaml:"properties,omitempty"`
}

// SegmentSpec is one traversal hop declaration.
type SegmentSpec struct {
	Source       string `yaml:"source"`
	Relationship string `yaml:"relationship"`
	Target       string `yaml:"target"`

	SourceAlias       string `yaml:"sourceAlias,omitempty"`
	RelationshipAlias string `yaml:"relationshipAlias,omitempty"`
	TargetAlias       string `yaml:"targetAlias,omitempty"`
}

// TraverseSpec adjusts how traversal hops render.
type TraverseSpec struct {
	// Direction is "outgoing" (default), "incoming", or "both".
	Direction string `yaml:"direction,omitempty"`

	MinDepth *int `yaml:"minDepth,omitempty"`
	MaxDepth *int `yaml:"maxDepth,omitempty"`
}

// FullTextSpec roots a query at a full-text index lookup.
type FullTextSpec struct {
	// Index is the full-text index name.
	Index string `yaml:"index"`

	// Query is the search expression; it binds as a parameter.
	Query string `yaml:"query"`

	// Entity selects the index kind: "node" (default), "relationship", or
	// "any" for a union of both.
	Entity string `yaml:"entity,omitempty"`

	// Alias names the yielded entity. Defaults to "node".
	Alias string `yaml:"alias,omitempty"`
}

// ReturnSpec is one projection.
type ReturnSpec struct {
	Expr  string `yaml:"expr"`
	Alias string `yaml:"alias,omitempty"`

	// Infrastructure marks the projection as internal scaffolding; such
	// projections never force the mixed render mode.
	Infrastructure bool `yaml:"infrastructure,omitempty"`
}

// AggregateSpec is a single aggregation projection.
type AggregateSpec struct {
	Fn   string `yaml:"fn"`
	Expr string `yaml:"expr"`
}

// OrderSpec is one ordering expression.
type OrderSpec struct {
	Expr string `yaml:"expr"`
	Desc bool   `yaml:"desc,omitempty"`
}

// FilterSpec is the YAML surface of the filter tree. Exactly one of the
// comparison fields (field + op), raw, all, or any must be set per node.
// The top-level node may carry an alias binding the whole tree to a
// pattern identifier; an empty alias binds to the main alias.
type FilterSpec struct {
	// Alias binds the filter tree to a pattern identifier. Only valid at
	// the top level of the tree.
	Alias string `yaml:"alias,omitempty"`

	Field string   `yaml:"field,omitempty"`
	Op    Operator `yaml:"op,omitempty"`
	Value any      `yaml:"value,omitempty"`

	Raw string `yaml:"raw,omitempty"`

	All []FilterSpec `yaml:"all,omitempty"`
	Any []FilterSpec `yaml:"any,omitempty"`
}

// isComparison reports whether the node declares a field comparison.
func (s FilterSpec) isComparison() bool {
	return s.Field != "" || s.Op != ""
}

// shapeCount counts the variants the node declares; a valid node declares
// exactly one.
func (s FilterSpec) shapeCount() int {
	n := 0
	if s.isComparison() {
		n++
	}
	if s.Raw != "" {
		n++
	}
	if len(s.All) > 0 {
		n++
	}
	if len(s.Any) > 0 {
		n++
	}
	return n
}

// ToFilter converts the spec tree into the sealed filter AST.
func (s FilterSpec) ToFilter() (Filter, error) {
	return s.toFilter(true)
}

func (s FilterSpec) toFilter(top bool) (Filter, error) {
	if !top && s.Alias != "" {
		return nil, fmt.Errorf("filter alias is only valid at the top of the tree")
	}
	if s.shapeCount() != 1 {
		return nil, fmt.Errorf("filter node must declare exactly one of field/op, raw, all, any")
	}

	switch {
	case s.isComparison():
		if !knownOperator(s.Op) {
			return nil, fmt.Errorf("unknown operator %q", s.Op)
		}
		if s.Op.valueless() && s.Value != nil {
			return nil, fmt.Errorf("operator %q takes no value", s.Op)
		}
		return Compare{Field: s.Field, Op: s.Op, Value: s.Value}, nil
	case s.Raw != "":
		return Raw{Text: s.Raw}, nil
	case len(s.All) > 0:
		children, err := toFilters(s.All)
		if err != nil {
			return nil, err
		}
		return All{Filters: children}, nil
	default:
		children, err := toFilters(s.Any)
		if err != nil {
			return nil, err
		}
		return Any{Filters: children}, nil
	}
}

func toFilters(specs []FilterSpec) ([]Filter, error) {
	out := make([]Filter, 0, len(specs))
	for _, spec := range specs {
		f, err := spec.toFilter(false)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Parse decodes a query definition from YAML. Unknown fields are rejected,
// so a typo in a definition fails loudly instead of silently compiling a
// different query.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parse query definition: %w", err)
	}
	return &def, nil
}

// Load reads and parses a query definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query definition: %w", err)
	}
	return Parse(data)
}
