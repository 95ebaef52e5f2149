package cypher

import "strings"

// groupByPart accumulates grouping expressions for the GROUP BY clause.
type groupByPart struct {
	expressions []string
}

func (g *groupByPart) hasContent() bool {
	return len(g.expressions) > 0
}

func (g *groupByPart) renderOrder() int { return orderGroupBy }

// add appends a grouping expression in declaration order.
func (g *groupByPart) add(expr string) {
	if expr == "" || containsString(g.expressions, expr) {
		return
	}
	g.expressions = append(g.expressions, expr)
}

func (g *groupByPart) appendTo(b *strings.Builder) error {
	appendLine(b, "GROUP BY "+strings.Join(g.expressions, ", "))
	return nil
}
