package cypher

import (
	"fmt"
	"strings"
)

// projection is one RETURN expression with an optional alias.
type projection struct {
	expr  string
	alias string
}

func (p projection) render() string {
	if p.alias != "" {
		return p.expr + " AS " + p.alias
	}
	return p.expr
}

// existsForm selects the boolean-shaped special returns.
type existsForm int

const (
	existsNone existsForm = iota
	existsCount
	notExistsCount
)

// returnPart assembles the RETURN clause and its WITH/UNWIND pre-clauses.
//
// Projections split into user projections (caller-visible) and
// infrastructure projections (internal scaffolding such as path-segment
// carriers); the split controls which render mode the orchestrator may
// select, but both render identically here.
//
// Rendering precedence: the exists/not-exists forms short-circuit
// everything else; otherwise WITH and UNWIND lines come first, then exactly
// one of aggregation, the projection list, the relationship-synthesized
// default, or the bare main-alias fallback.
type returnPart struct {
	user  []projection
	infra []projection

	aggregation *projection // expr = "fn(expr)" rendered form, alias unused
	distinct    bool

	withClauses   []string
	unwindClauses []string

	exists     existsForm
	countAlias string

	// Fallback shape state, fixed by the orchestrator before rendering.
	mainAlias         string
	relationshipRoot  bool
	sourceAlias       string
	relationshipAlias string
	targetAlias       string
}

func (r *returnPart) hasContent() bool {
	return true // every query returns something; the fallback guarantees it
}

func (r *returnPart) renderOrder() int { return orderReturn }

func (r *returnPart) addUser(expr, alias string) {
	r.user = append(r.user, projection{expr: expr, alias: alias})
}

func (r *returnPart) addInfrastructure(expr, alias string) {
	r.infra = append(r.infra, projection{expr: expr, alias: alias})
}

func (r *returnPart) setAggregation(fn, expr string) {
	r.aggregation = &projection{expr: fmt.Sprintf("%s(%s)", fn, expr)}
}

func (r *returnPart) addWith(clause string) {
	if clause == "" || containsString(r.withClauses, clause) {
		return
	}
	r.withClauses = append(r.withClauses, clause)
}

func (r *returnPart) addUnwind(clause string) {
	if clause == "" || containsString(r.unwindClauses, clause) {
		return
	}
	r.unwindClauses = append(r.unwindClauses, clause)
}

// hasUserProjections reports whether any caller-visible projection exists.
func (r *returnPart) hasUserProjections() bool {
	return len(r.user) > 0
}

// projectionList renders every projection, user before infrastructure.
func (r *returnPart) projectionList() string {
	rendered := make([]string, 0, len(r.user)+len(r.infra))
	for _, p := range r.user {
		rendered = append(rendered, p.render())
	}
	for _, p := range r.infra {
		rendered = append(rendered, p.render())
	}
	return strings.Join(rendered, ", ")
}

func (r *returnPart) appendTo(b *strings.Builder) error {
	switch r.exists {
	case existsCount:
		appendLine(b, fmt.Sprintf("RETURN COUNT(%s) > 0 AS exists", r.countAlias))
		return nil
	case notExistsCount:
		appendLine(b, fmt.Sprintf("RETURN COUNT(%s) = 0 AS all", r.countAlias))
		return nil
	}

	for _, w := range r.withClauses {
		appendLine(b, "WITH "+w)
	}
	for _, u := range r.unwindClauses {
		appendLine(b, "UNWIND "+u)
	}

	keyword := "RETURN"
	if r.distinct {
		keyword = "RETURN DISTINCT"
	}

	switch {
	case r.aggregation != nil:
		appendLine(b, keyword+" "+r.aggregation.expr)
	case len(r.user) > 0 || len(r.infra) > 0:
		appendLine(b, keyword+" "+r.projectionList())
	case r.relationshipRoot:
		appendLine(b, keyword+" "+r.relationshipDefault())
	case r.mainAlias != "":
		appendLine(b, keyword+" "+r.mainAlias)
	default:
		return &BuildError{
			Code:    ErrCodeUnsupportedShape,
			Message: "no projection, aggregation, or main alias to return",
		}
	}
	return nil
}

// relationshipDefault synthesizes the return shape for a relationship-rooted
// query with no explicit projections: the relationship plus both endpoints.
// The wrapped record shapes for complex-property loading come from the
// expander, never from here.
func (r *returnPart) relationshipDefault() string {
	return fmt.Sprintf("%s, %s, %s", r.sourceAlias, r.relationshipAlias, r.targetAlias)
}
