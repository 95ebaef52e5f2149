package cypher

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction selects how a traversal follows relationship arrows.
type Direction int

const (
	// DirectionOutgoing follows relationship arrows.
	DirectionOutgoing Direction = iota

	// DirectionIncoming reverses relationship arrows.
	DirectionIncoming

	// DirectionBoth ignores relationship direction.
	DirectionBoth
)

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case DirectionOutgoing:
		return "outgoing"
	case DirectionIncoming:
		return "incoming"
	case DirectionBoth:
		return "both"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Default row aliases used when a path-segment declaration does not supply
// its own.
const (
	DefaultSourceAlias       = "src"
	DefaultRelationshipAlias = "r"
	DefaultTargetAlias       = "tgt"
)

// SegmentSpec is one pending traversal-pattern declaration. It cannot be
// rendered at declaration time: the direction and depth bounds may still
// change, and a following declaration may chain onto it.
type SegmentSpec struct {
	SourceType        string
	RelationshipType  string
	TargetType        string
	SourceAlias       string
	RelationshipAlias string
	TargetAlias       string
}

// withDefaults fills empty aliases with the reserved defaults. Hops after
// the first take a numeric suffix, so a pattern built from several
// alias-less specs never redeclares a variable.
func (s SegmentSpec) withDefaults(hop int) SegmentSpec {
	suffix := ""
	if hop > 0 {
		suffix = strconv.Itoa(hop + 1)
	}
	if s.SourceAlias == "" {
		s.SourceAlias = DefaultSourceAlias + suffix
	}
	if s.RelationshipAlias == "" {
		s.RelationshipAlias = DefaultRelationshipAlias + suffix
	}
	if s.TargetAlias == "" {
		s.TargetAlias = DefaultTargetAlias + suffix
	}
	return s
}

// resolvedPattern is the outcome of finalizing the pending segment specs:
// the rendered pattern text, the externally visible alias triple, and the
// intermediate alias recorded when hops were chained.
type resolvedPattern struct {
	pattern           string
	sourceAlias       string
	relationshipAlias string
	targetAlias       string

	// intermediateAlias names the first hop's target when two or more hops
	// chain into one pattern. Clauses written against the logical middle
	// node rewrite to it.
	intermediateAlias string
}

// patternResolver resolves traversal-pattern aliases, including deferred
// pending patterns that cannot be finalized until the full query shape
// (direction, depth, chained hops) is known.
type patternResolver struct {
	specs    []SegmentSpec
	dir      Direction
	minDepth *int
	maxDepth *int

	resolved *resolvedPattern
}

// addSpec queues a pending pattern spec in declaration order.
func (r *patternResolver) addSpec(spec SegmentSpec) {
	r.specs = append(r.specs, spec.withDefaults(len(r.specs)))
}

func (r *patternResolver) hasSpecs() bool {
	return len(r.specs) > 0
}

func (r *patternResolver) setDirection(d Direction) {
	r.dir = d
}

func (r *patternResolver) setDepth(min, max *int) {
	r.minDepth = min
	r.maxDepth = max
}

// depthPattern encodes the depth bounds for a variable-length match:
// no bounds → "1" (single hop, no star operator); only max → "1..max";
// both → "min..max"; only min → "min..".
func (r *patternResolver) depthPattern() string {
	switch {
	case r.minDepth == nil && r.maxDepth == nil:
		return "1"
	case r.minDepth == nil:
		return fmt.Sprintf("1..%d", *r.maxDepth)
	case r.maxDepth == nil:
		return fmt.Sprintf("%d..", *r.minDepth)
	default:
		return fmt.Sprintf("%d..%d", *r.minDepth, *r.maxDepth)
	}
}

// validateDepth rejects negative or inverted bounds.
func (r *patternResolver) validateDepth() error {
	if r.minDepth != nil && *r.minDepth < 0 {
		return &BuildError{Code: ErrCodeInvalidDepth, Message: fmt.Sprintf("minimum depth must be non-negative, got %d", *r.minDepth)}
	}
	if r.maxDepth != nil && *r.maxDepth < 0 {
		return &BuildError{Code: ErrCodeInvalidDepth, Message: fmt.Sprintf("maximum depth must be non-negative, got %d", *r.maxDepth)}
	}
	if r.minDepth != nil && r.maxDepth != nil && *r.maxDepth < *r.minDepth {
		return &BuildError{Code: ErrCodeInvalidDepth, Message: fmt.Sprintf("maximum depth %d below minimum %d", *r.maxDepth, *r.minDepth)}
	}
	return nil
}

// relationshipToken renders the bracketed relationship element with the
// active depth pattern. A depth of "1" needs no star operator.
func (r *patternResolver) relationshipToken(alias, relType string) string {
	depth := r.depthPattern()
	if depth == "1" {
		return fmt.Sprintf("[%s:%s]", alias, relType)
	}
	return fmt.Sprintf("[%s:%s*%s]", alias, relType, depth)
}

// hop renders one relationship hop from a node token to a node token, with
// the arrows the active direction requires.
func (r *patternResolver) hop(relToken, targetToken string) string {
	switch r.dir {
	case DirectionIncoming:
		return "<-" + relToken + "-" + targetToken
	case DirectionBoth:
		return "-" + relToken + "-" + targetToken
	default:
		return "-" + relToken + "->" + targetToken
	}
}

// resolve finalizes the pending specs into one pattern. Sequential specs
// chain into a single left-to-right pattern when each hop's source type
// equals the previous hop's target type, because intermediate nodes are not
// otherwise reachable once filtered; every hop uses the active direction.
// Non-chaining specs render as independent comma-joined patterns.
//
// labelOf maps a schema type name to its label expression; relTypeOf maps a
// relationship type name to its database type.
func (r *patternResolver) resolve(labelOf, relTypeOf func(string) string) (*resolvedPattern, error) {
	if len(r.specs) == 0 {
		return nil, nil
	}
	if r.resolved != nil {
		return r.resolved, nil
	}
	if err := r.validateDepth(); err != nil {
		return nil, err
	}

	first := r.specs[0]
	var b strings.Builder
	b.WriteString(nodeToken(first.SourceAlias, labelOf(first.SourceType)))
	b.WriteString(r.hop(
		r.relationshipToken(first.RelationshipAlias, relTypeOf(first.RelationshipType)),
		nodeToken(first.TargetAlias, labelOf(first.TargetType)),
	))

	res := &resolvedPattern{
		sourceAlias:       first.SourceAlias,
		relationshipAlias: first.RelationshipAlias,
		targetAlias:       first.TargetAlias,
	}

	prev := first
	for _, spec := range r.specs[1:] {
		if spec.SourceType != prev.TargetType {
			// Unrelated hop: render it as its own pattern alongside.
			b.WriteString(", ")
			b.WriteString(nodeToken(spec.SourceAlias, labelOf(spec.SourceType)))
			b.WriteString(r.hop(
				r.relationshipToken(spec.RelationshipAlias, relTypeOf(spec.RelationshipType)),
				nodeToken(spec.TargetAlias, labelOf(spec.TargetType)),
			))
			prev = spec
			continue
		}

		// Chained hop: extend the pattern from the previous target and
		// record the join point as the intermediate alias.
		if res.intermediateAlias == "" {
			res.intermediateAlias = prev.TargetAlias
		}
		b.WriteString(r.hop(
			r.relationshipToken(spec.RelationshipAlias, relTypeOf(spec.RelationshipType)),
			nodeToken(spec.TargetAlias, labelOf(spec.TargetType)),
		))
		res.targetAlias = spec.TargetAlias
		prev = spec
	}

	res.pattern = b.String()
	r.resolved = res
	return res, nil
}

// claimedAliases lists every alias a pending spec declares.
func (r *patternResolver) claimedAliases() []string {
	var out []string
	for _, spec := range r.specs {
		out = append(out, spec.SourceAlias, spec.RelationshipAlias, spec.TargetAlias)
	}
	return out
}

// rewriteAlias maps an alias written against the logical middle node of a
// chained pattern onto the recorded intermediate alias. Other aliases pass
// through unchanged.
func (r *patternResolver) rewriteAlias(alias string) string {
	if r.resolved == nil || r.resolved.intermediateAlias == "" {
		return alias
	}
	// After chaining, the second hop's declared source is the middle node.
	for _, spec := range r.specs[1:] {
		if alias == spec.SourceAlias {
			return r.resolved.intermediateAlias
		}
	}
	return alias
}

// nodeToken renders a node pattern element. An empty label expression
// renders a bare alias.
func nodeToken(alias, labelExpr string) string {
	if labelExpr == "" {
		return "(" + alias + ")"
	}
	return "(" + alias + ":" + labelExpr + ")"
}
