package cypher

import "strings"

// orderItem is one ordering expression with its direction.
type orderItem struct {
	expr       string
	descending bool
}

// orderByPart accumulates ordering expressions for the ORDER BY clause.
// The whole list can flip direction as a unit, which implements "last N"
// semantics as reverse, take N, reverse result.
type orderByPart struct {
	items []orderItem
}

func (o *orderByPart) hasContent() bool {
	return len(o.items) > 0
}

func (o *orderByPart) renderOrder() int { return orderOrderBy }

// add appends an ordering expression in declaration order.
func (o *orderByPart) add(expr string, descending bool) {
	if expr == "" {
		return
	}
	o.items = append(o.items, orderItem{expr: expr, descending: descending})
}

// reverse flips the direction of every ordering expression.
func (o *orderByPart) reverse() {
	for i := range o.items {
		o.items[i].descending = !o.items[i].descending
	}
}

// clause renders the ORDER BY line without a trailing newline, so the
// complex-property expander can reuse it mid-query.
func (o *orderByPart) clause() string {
	rendered := make([]string, len(o.items))
	for i, item := range o.items {
		if item.descending {
			rendered[i] = item.expr + " DESC"
		} else {
			rendered[i] = item.expr
		}
	}
	return "ORDER BY " + strings.Join(rendered, ", ")
}

func (o *orderByPart) appendTo(b *strings.Builder) error {
	appendLine(b, o.clause())
	return nil
}
