package querydef

import (
	"fmt"
	"strings"

	"github.com/openogm/graphom/internal/cypher"
)

// Filter represents a predicate in a query definition.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the translator.
//
// Filter types:
//   - Compare: field <operator> literal_value
//   - All: conjunction, every sub-filter must hold
//   - Any: disjunction, at least one sub-filter must hold
//   - Raw: an already-written condition fragment, passed through verbatim
//
// Every filter also satisfies the compiler's predicate contract: it lowers
// itself to condition text once the build binds it to a concrete alias,
// registering bound values with the build's parameter table.
type Filter interface {
	cypher.Condition
	filterNode() // Marker method - seals interface to this package
}

// Operator names a comparison in a Compare filter.
type Operator string

const (
	OpEquals     Operator = "eq"
	OpNotEquals  Operator = "neq"
	OpGreater    Operator = "gt"
	OpGreaterEq  Operator = "gte"
	OpLess       Operator = "lt"
	OpLessEq     Operator = "lte"
	OpIn         Operator = "in"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startsWith"
	OpEndsWith   Operator = "endsWith"
	OpMatchesRx  Operator = "matches"
	OpIsNull     Operator = "isNull"
	OpIsNotNull  Operator = "isNotNull"
)

// symbol returns the query-text rendering of the operator, or "" for
// operators that render as a trailing keyword instead of an infix symbol.
func (o Operator) symbol() string {
	switch o {
	case OpEquals:
		return "="
	case OpNotEquals:
		return "<>"
	case OpGreater:
		return ">"
	case OpGreaterEq:
		return ">="
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpIn:
		return "IN"
	case OpContains:
		return "CONTAINS"
	case OpStartsWith:
		return "STARTS WITH"
	case OpEndsWith:
		return "ENDS WITH"
	case OpMatchesRx:
		return "=~"
	default:
		return ""
	}
}

// valueless reports whether the operator takes no right-hand value.
func (o Operator) valueless() bool {
	return o == OpIsNull || o == OpIsNotNull
}

// knownOperator reports whether the name is a recognized operator.
func knownOperator(o Operator) bool {
	return o.valueless() || o.symbol() != ""
}

// Compare represents a field-against-literal comparison.
//
// The field is read from the alias the filter is bound to at build time;
// the literal registers with the build's parameter table and renders as a
// placeholder, never interpolated.
type Compare struct {
	Field string   // Property name on the bound alias
	Op    Operator // Comparison operator
	Value any      // Literal right-hand value; must be nil for null checks
}

func (Compare) filterNode() {}

// Lower renders the comparison against the bound alias.
func (c Compare) Lower(alias string, params *cypher.Parameters) (string, error) {
	if c.Field == "" {
		return "", fmt.Errorf("compare filter requires a field")
	}
	ref := alias + "." + c.Field

	if c.Op.valueless() {
		if c.Value != nil {
			return "", fmt.Errorf("operator %q takes no value", c.Op)
		}
		if c.Op == OpIsNull {
			return ref + " IS NULL", nil
		}
		return ref + " IS NOT NULL", nil
	}

	sym := c.Op.symbol()
	if sym == "" {
		return "", fmt.Errorf("unknown operator %q", c.Op)
	}
	name := params.Register(c.Value)
	return fmt.Sprintf("%s %s $%s", ref, sym, name), nil
}

// All represents a conjunction of filters (every one must hold).
//
// An empty conjunction is vacuously true and lowers to "true".
type All struct {
	Filters []Filter
}

func (All) filterNode() {}

// Lower renders the conjunction joined with AND.
func (a All) Lower(alias string, params *cypher.Parameters) (string, error) {
	return lowerJoined(a.Filters, " AND ", alias, params)
}

// Any represents a disjunction of filters (at least one must hold).
//
// A disjunction always parenthesizes, so it composes safely inside a
// surrounding conjunction. An empty disjunction lowers to "false".
type Any struct {
	Filters []Filter
}

func (Any) filterNode() {}

// Lower renders the parenthesized disjunction joined with OR.
func (a Any) Lower(alias string, params *cypher.Parameters) (string, error) {
	if len(a.Filters) == 0 {
		return "false", nil
	}
	text, err := lowerJoined(a.Filters, " OR ", alias, params)
	if err != nil {
		return "", err
	}
	return "(" + text + ")", nil
}

// Raw represents an already-written condition fragment.
//
// The text passes through verbatim; it is the caller's escape hatch for
// expressions the structured filters cannot express. Values inside the
// fragment should reference placeholders from previously bound parameters.
type Raw struct {
	Text string
}

func (Raw) filterNode() {}

// Lower returns the fragment unchanged.
func (r Raw) Lower(string, *cypher.Parameters) (string, error) {
	if r.Text == "" {
		return "", fmt.Errorf("raw filter requires text")
	}
	return r.Text, nil
}

// lowerJoined lowers each filter and joins the results.
func lowerJoined(filters []Filter, sep, alias string, params *cypher.Parameters) (string, error) {
	if len(filters) == 0 {
		return "true", nil
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		text, err := f.Lower(alias, params)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, sep), nil
}
