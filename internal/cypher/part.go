package cypher

import "strings"

// queryPart is one clause-category fragment builder. Each part accumulates
// state for a single clause kind and knows how to render itself.
//
// Parts render in ascending renderOrder regardless of the order the caller
// populated them, so setting ORDER BY before WHERE still yields valid query
// text. Gaps in the order values are reserved for future clause kinds.
type queryPart interface {
	// hasContent reports whether the part would emit anything.
	hasContent() bool

	// renderOrder fixes the part's position in the assembled query.
	renderOrder() int

	// appendTo writes the part's clause text to b. Each part terminates its
	// output with a trailing newline; the orchestrator trims the final one.
	appendTo(b *strings.Builder) error
}

// Fixed render positions for the clause parts.
const (
	orderMatch      = 1
	orderWhere      = 2
	orderGroupBy    = 5
	orderReturn     = 6
	orderOrderBy    = 7
	orderPagination = 8
)

// appendLine writes one clause line with the trailing newline every part
// emits.
func appendLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteByte('\n')
}

// containsString reports whether list already holds exactly s. Parts use it
// for duplicate suppression by exact text.
func containsString(list []string, s string) bool {
	for _, existing := range list {
		if existing == s {
			return true
		}
	}
	return false
}
