package cypher

import "strings"

// matchPart accumulates pattern fragments for the MATCH clause group.
//
// Patterns route into three independent collections:
//   - primary patterns join into one MATCH clause, comma-separated;
//   - satellite patterns each render as their own MATCH statement, so an
//     unrelated second relationship hop (a complex-property lookup) is not
//     cross-joined with the primary pattern;
//   - optional patterns each render as their own OPTIONAL MATCH statement.
//
// CALL fragments (full-text index lookups) render ahead of all MATCH lines.
// Duplicate exact-text patterns are suppressed in every collection.
type matchPart struct {
	calls     []string
	primary   []string
	satellite []string
	optional  []string
}

func (m *matchPart) hasContent() bool {
	return len(m.calls) > 0 || len(m.primary) > 0 || len(m.satellite) > 0 || len(m.optional) > 0
}

func (m *matchPart) renderOrder() int { return orderMatch }

// addPattern routes a pattern to the primary or satellite collection. A
// pattern that syntactically denotes a directed relationship hop is treated
// as a satellite statement; everything else joins the primary pattern.
func (m *matchPart) addPattern(pattern string) {
	if isRelationshipPattern(pattern) {
		m.addSatellite(pattern)
		return
	}
	m.addPrimary(pattern)
}

// addPrimary appends to the comma-joined primary MATCH pattern.
func (m *matchPart) addPrimary(pattern string) {
	if pattern == "" || containsString(m.primary, pattern) {
		return
	}
	m.primary = append(m.primary, pattern)
}

// addSatellite appends a standalone MATCH statement.
func (m *matchPart) addSatellite(pattern string) {
	if pattern == "" || containsString(m.satellite, pattern) {
		return
	}
	m.satellite = append(m.satellite, pattern)
}

// addOptional appends a standalone OPTIONAL MATCH statement.
func (m *matchPart) addOptional(pattern string) {
	if pattern == "" || containsString(m.optional, pattern) {
		return
	}
	m.optional = append(m.optional, pattern)
}

// addCall appends a raw CALL fragment for an index lookup.
func (m *matchPart) addCall(fragment string) {
	if fragment == "" || containsString(m.calls, fragment) {
		return
	}
	m.calls = append(m.calls, fragment)
}

// clearPrimary drops only the primary patterns. Used when a deferred
// traversal pattern is finalized and must replace its placeholder without
// discarding satellite (complex-property) patterns already queued.
func (m *matchPart) clearPrimary() {
	m.primary = nil
}

func (m *matchPart) appendTo(b *strings.Builder) error {
	for _, call := range m.calls {
		appendLine(b, call)
	}
	if len(m.primary) > 0 {
		appendLine(b, "MATCH "+strings.Join(m.primary, ", "))
	}
	for _, pattern := range m.satellite {
		appendLine(b, "MATCH "+pattern)
	}
	for _, pattern := range m.optional {
		appendLine(b, "OPTIONAL MATCH "+pattern)
	}
	return nil
}

// isRelationshipPattern reports whether a pattern contains a directed-edge
// arrow, the heuristic for a hop unrelated to the primary pattern.
func isRelationshipPattern(pattern string) bool {
	return strings.Contains(pattern, "]->") || strings.Contains(pattern, ")<-[")
}
