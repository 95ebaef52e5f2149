package cypher

import (
	"fmt"
	"strings"
)

// paginationPart holds the optional SKIP and LIMIT values.
//
// When complex-property expansion will multiply rows, the orchestrator
// renders these clauses against the pre-expansion row set instead of at the
// end of the query; rendering after the expansion would silently corrupt
// page boundaries.
type paginationPart struct {
	skip  *int
	limit *int
}

func (p *paginationPart) hasContent() bool {
	return p.skip != nil || p.limit != nil
}

func (p *paginationPart) renderOrder() int { return orderPagination }

func (p *paginationPart) setSkip(n int) {
	p.skip = &n
}

func (p *paginationPart) setLimit(n int) {
	p.limit = &n
}

// lines renders the SKIP and LIMIT clauses, one per element, so the
// complex-property expander can splice them before its OPTIONAL MATCH.
func (p *paginationPart) lines() []string {
	var out []string
	if p.skip != nil {
		out = append(out, fmt.Sprintf("SKIP %d", *p.skip))
	}
	if p.limit != nil {
		out = append(out, fmt.Sprintf("LIMIT %d", *p.limit))
	}
	return out
}

func (p *paginationPart) appendTo(b *strings.Builder) error {
	for _, line := range p.lines() {
		appendLine(b, line)
	}
	return nil
}
