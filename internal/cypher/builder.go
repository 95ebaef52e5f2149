package cypher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openogm/graphom/internal/schema"
)

// Query is the output of one build: the finished query text and its
// insertion-ordered parameter table. Placeholders in Text are $p0, $p1, …
// matching the parameter names.
type Query struct {
	Text       string
	Parameters []Parameter
}

// ParameterMap returns the parameters as the map a driver session expects.
func (q *Query) ParameterMap() map[string]any {
	m := make(map[string]any, len(q.Parameters))
	for _, p := range q.Parameters {
		m[p.Name] = p.Value
	}
	return m
}

// Builder is the query orchestrator: it owns the clause parts, the pattern
// resolver, and the complex-property expander, and exposes the build-time
// API the query translator drives while walking a query definition.
//
// Nothing renders until Build, which resolves deferred traversal patterns,
// lowers pending filters in the finalized alias space, selects a render
// mode, and assembles the clause text in fixed part order.
//
// A Builder compiles one logical query on one goroutine. It holds no shared
// mutable state, so independent queries may compile concurrently, each with
// its own Builder.
type Builder struct {
	registry *schema.Registry
	params   *Parameters

	match      matchPart
	where      wherePart
	groupBy    groupByPart
	returns    returnPart
	orderBy    orderByPart
	pagination paginationPart

	resolver patternResolver
	expand   expander

	mainAlias        string
	claimed          []string
	boolMode         existsForm
	includeComplex   bool
	loadPathSegment  bool
	relationshipRoot bool
	projectionMode   ProjectionMode
}

// NewBuilder creates a builder resolving type names through reg. A nil
// registry is allowed; every type name then passes through as a raw label.
func NewBuilder(reg *schema.Registry) *Builder {
	return &Builder{
		registry: reg,
		params:   NewParameters(),
		expand:   expander{prefix: schema.PropertyRelationshipPrefix},
	}
}

// AddMatch declares a node pattern "(alias:Label)". The label resolves
// through the schema registry, so a type with several compatible labels
// renders them "|"-joined. props, when non-empty, is an inline property
// selector such as "{id: $p0}". The first declared alias becomes the main
// alias, the row-producing identifier used as the fallback return shape.
func (b *Builder) AddMatch(alias, label, props string) {
	labelExpr := ""
	if label != "" {
		labelExpr = b.registry.LabelExpr(label)
	}
	pattern := nodeToken(alias, labelExpr)
	if props != "" {
		pattern = pattern[:len(pattern)-1] + " " + props + ")"
	}
	b.match.addPrimary(pattern)
	b.claim(alias)
	if b.mainAlias == "" {
		b.mainAlias = alias
	}
}

// AddMatchPattern adds a raw pattern fragment. Patterns that denote a
// directed relationship hop render as their own MATCH statement so they do
// not cross-join with the primary pattern.
func (b *Builder) AddMatchPattern(pattern string) {
	b.match.addPattern(pattern)
	b.claimFromPattern(pattern)
}

// AddOptionalMatch adds an OPTIONAL MATCH pattern.
func (b *Builder) AddOptionalMatch(pattern string) {
	b.match.addOptional(pattern)
	b.claimFromPattern(pattern)
}

// AddRelationshipMatch roots the query at a relationship type, matching
// "(src)-[r:TYPE]->(tgt)" with the reserved default aliases. The
// relationship alias becomes the main alias.
func (b *Builder) AddRelationshipMatch(relType string) {
	pattern := fmt.Sprintf("(%s)-[%s:%s]->(%s)",
		DefaultSourceAlias, DefaultRelationshipAlias,
		b.registry.RelationshipType(relType), DefaultTargetAlias)
	b.match.addPrimary(pattern)
	b.claim(DefaultSourceAlias, DefaultRelationshipAlias, DefaultTargetAlias)
	b.mainAlias = DefaultRelationshipAlias
	b.relationshipRoot = true
}

// EnableComplexPropertyLoading turns on the synthetic sub-query that
// hydrates nested object properties.
func (b *Builder) EnableComplexPropertyLoading() {
	b.includeComplex = true
}

// EnablePathSegmentLoading marks the query root as a path segment. A path
// segment is always a complex-property case.
func (b *Builder) EnablePathSegmentLoading() {
	b.includeComplex = true
	b.loadPathSegment = true
}

// SetPendingWhere queues a predicate for deferred lowering against alias.
// An empty alias binds to the main alias at finalize time.
func (b *Builder) SetPendingWhere(cond Condition, alias string) {
	b.where.setPending(cond, alias)
}

// AddWhere adds an already-lowered condition string.
func (b *Builder) AddWhere(condition string) {
	b.where.add(condition)
}

// AddUserProjection adds a caller-visible RETURN expression.
func (b *Builder) AddUserProjection(expr, alias string) {
	b.returns.addUser(expr, alias)
}

// AddInfrastructureReturn adds an internal scaffolding projection, e.g. a
// path-segment carrier. Infrastructure projections never force the mixed
// render mode.
func (b *Builder) AddInfrastructureReturn(expr, alias string) {
	b.returns.addInfrastructure(expr, alias)
}

// SetAggregation sets the single aggregation projection. Aggregation wins
// over projections and suppresses ordering.
func (b *Builder) SetAggregation(fn, expr string) {
	b.returns.setAggregation(fn, expr)
}

// AddWith adds a WITH pre-clause rendered ahead of RETURN.
func (b *Builder) AddWith(clause string) {
	b.returns.addWith(clause)
}

// AddUnwind adds an UNWIND pre-clause rendered ahead of RETURN.
func (b *Builder) AddUnwind(clause string) {
	b.returns.addUnwind(clause)
}

// AddOrderBy appends an ordering expression.
func (b *Builder) AddOrderBy(expr string, descending bool) {
	b.orderBy.add(expr, descending)
}

// ReverseOrderBy flips the direction of every ordering expression, turning
// an ascending traversal into "last N" semantics.
func (b *Builder) ReverseOrderBy() {
	b.orderBy.reverse()
}

// AddGroupBy appends a grouping expression.
func (b *Builder) AddGroupBy(expr string) {
	b.groupBy.add(expr)
}

// SetSkip sets the number of rows to skip.
func (b *Builder) SetSkip(n int) {
	b.pagination.setSkip(n)
}

// SetLimit sets the maximum number of rows.
func (b *Builder) SetLimit(n int) {
	b.pagination.setLimit(n)
}

// SetDistinct toggles RETURN DISTINCT.
func (b *Builder) SetDistinct(distinct bool) {
	b.returns.distinct = distinct
}

// SetExistsQuery switches the build to the boolean exists shape. Exists and
// not-exists are one exclusive choice; requesting both fails.
func (b *Builder) SetExistsQuery() error {
	if b.boolMode == notExistsCount {
		return &BuildError{Code: ErrCodeConflictingMode, Message: "query already marked not-exists"}
	}
	b.boolMode = existsCount
	return nil
}

// SetNotExistsQuery switches the build to the boolean not-exists shape.
func (b *Builder) SetNotExistsQuery() error {
	if b.boolMode == existsCount {
		return &BuildError{Code: ErrCodeConflictingMode, Message: "query already marked exists"}
	}
	b.boolMode = notExistsCount
	return nil
}

// SetTraversalDirection sets the direction every traversal hop uses.
func (b *Builder) SetTraversalDirection(dir Direction) {
	b.resolver.setDirection(dir)
}

// SetDepth bounds a variable-length traversal to at most max hops.
func (b *Builder) SetDepth(max int) {
	b.resolver.setDepth(nil, &max)
}

// SetDepthRange bounds a variable-length traversal to min..max hops.
func (b *Builder) SetDepthRange(min, max int) {
	b.resolver.setDepth(&min, &max)
}

// SetMinDepth bounds a variable-length traversal to at least min hops.
func (b *Builder) SetMinDepth(min int) {
	b.resolver.setDepth(&min, nil)
}

// SetProjectionMode selects which side of a path segment the result
// observes. The default is the full segment.
func (b *Builder) SetProjectionMode(mode ProjectionMode) {
	b.projectionMode = mode
}

// SetPendingPathSegmentPattern queues a traversal-pattern declaration that
// cannot be rendered until the full query shape is known. Sequential
// declarations whose types line up chain into one pattern at build time.
func (b *Builder) SetPendingPathSegmentPattern(sourceType, relType, targetType, sourceAlias, relAlias, targetAlias string) {
	b.resolver.addSpec(SegmentSpec{
		SourceType:        sourceType,
		RelationshipType:  relType,
		TargetType:        targetType,
		SourceAlias:       sourceAlias,
		RelationshipAlias: relAlias,
		TargetAlias:       targetAlias,
	})
}

// AddFullTextNodeSearch emits a CALL fragment invoking the database's
// full-text node index. queryParam is a placeholder name previously
// obtained from AddParameter.
func (b *Builder) AddFullTextNodeSearch(index, queryParam, alias string) {
	b.match.addCall(fmt.Sprintf("CALL db.index.fulltext.queryNodes('%s', $%s) YIELD node AS %s, score", index, queryParam, alias))
	b.claim(alias, "score")
	if b.mainAlias == "" {
		b.mainAlias = alias
	}
}

// AddFullTextRelationshipSearch emits a CALL fragment invoking the
// database's full-text relationship index.
func (b *Builder) AddFullTextRelationshipSearch(index, queryParam, alias string) {
	b.match.addCall(fmt.Sprintf("CALL db.index.fulltext.queryRelationships('%s', $%s) YIELD relationship AS %s, score", index, queryParam, alias))
	b.claim(alias, "score")
	if b.mainAlias == "" {
		b.mainAlias = alias
	}
}

// AddFullTextEntitySearch emits a CALL subquery unioning node and
// relationship full-text lookups under one alias.
func (b *Builder) AddFullTextEntitySearch(index, queryParam, alias string) {
	b.match.addCall(fmt.Sprintf(
		"CALL { CALL db.index.fulltext.queryNodes('%s', $%s) YIELD node AS %s, score RETURN %s, score UNION ALL CALL db.index.fulltext.queryRelationships('%s', $%s) YIELD relationship AS %s, score RETURN %s, score }",
		index, queryParam, alias, alias, index, queryParam, alias, alias))
	b.claim(alias, "score")
	if b.mainAlias == "" {
		b.mainAlias = alias
	}
}

// AddParameter binds a value and returns its placeholder name. Equal values
// share one placeholder.
func (b *Builder) AddParameter(value any) string {
	return b.params.Register(value)
}

// claim records aliases as pattern-owned identifiers.
func (b *Builder) claim(aliases ...string) {
	for _, a := range aliases {
		if a != "" && !containsString(b.claimed, a) {
			b.claimed = append(b.claimed, a)
		}
	}
}

// claimFromPattern scans a raw pattern for "(alias" and "[alias" element
// names so filters may reference them.
func (b *Builder) claimFromPattern(pattern string) {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '(' && pattern[i] != '[' {
			continue
		}
		j := i + 1
		for j < len(pattern) && isAliasChar(pattern[j]) {
			j++
		}
		if j > i+1 {
			b.claim(pattern[i+1 : j])
		}
	}
}

func isAliasChar(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// resolveAlias maps a filter alias into the identifier space of the
// finalized pattern. An empty alias binds to the main alias; an alias no
// pattern claims fails the build rather than silently running the filter
// against the wrong identifier.
func (b *Builder) resolveAlias(alias string) (string, error) {
	if alias == "" {
		if b.mainAlias == "" {
			return "", &BuildError{Code: ErrCodeAmbiguousAlias, Message: "no main alias to bind filter to"}
		}
		return b.mainAlias, nil
	}
	rewritten := b.resolver.rewriteAlias(alias)
	if containsString(b.claimed, rewritten) {
		return rewritten, nil
	}
	return "", &BuildError{Code: ErrCodeAmbiguousAlias, Message: "no pattern claims alias", Alias: alias}
}

// rewriteExpr rewrites the alias prefix of an "alias.property" expression
// through the pattern resolver, so ordering and grouping written against
// the logical middle node of a chained pattern bind to the intermediate
// alias.
func (b *Builder) rewriteExpr(expr string) string {
	dot := strings.IndexByte(expr, '.')
	if dot <= 0 {
		return expr
	}
	return b.resolver.rewriteAlias(expr[:dot]) + expr[dot:]
}

// selectMode chooses the render strategy. Exists and not-exists win
// unconditionally; complex-property loading without user projections
// renders the expansion's record shape; complex loading with user
// projections over a path-segment root renders the mixed shape; everything
// else is the simple clause assembly.
func (b *Builder) selectMode() renderMode {
	switch b.boolMode {
	case existsCount:
		return modeExists
	case notExistsCount:
		return modeNotExists
	}
	if b.includeComplex && !b.returns.hasUserProjections() {
		return modeComplexOnly
	}
	if b.includeComplex && b.loadPathSegment {
		return modeMixedPathSegment
	}
	return modeSimple
}

// Build finalizes the query: deferred traversal patterns resolve, pending
// filters lower against the finalized alias space, a render mode is
// selected, and the parts assemble in fixed priority order. Building the
// same state again yields byte-identical text and parameter order.
func (b *Builder) Build() (*Query, error) {
	if err := b.resolvePatterns(); err != nil {
		return nil, err
	}

	// Filters always bind to the pre-expansion alias space: lowering must
	// run before the expansion introduces intermediate identifiers.
	if err := b.where.finalizePending(b.resolveAlias, b.params); err != nil {
		return nil, err
	}

	var buf strings.Builder
	var err error
	switch mode := b.selectMode(); mode {
	case modeExists, modeNotExists:
		err = b.renderBool(&buf, mode)
	case modeComplexOnly:
		err = b.renderComplex(&buf, false)
	case modeMixedPathSegment:
		err = b.renderComplex(&buf, true)
	case modeSimple:
		err = b.renderSimple(&buf)
	default:
		err = &BuildError{Code: ErrCodeUnsupportedShape, Message: fmt.Sprintf("no rendering rule for mode %d", int(mode))}
	}
	if err != nil {
		return nil, err
	}

	return &Query{
		Text:       strings.TrimSuffix(buf.String(), "\n"),
		Parameters: b.params.Ordered(),
	}, nil
}

// resolvePatterns finalizes pending traversal patterns and installs the
// result as the primary match pattern, keeping satellite patterns intact.
func (b *Builder) resolvePatterns() error {
	if !b.resolver.hasSpecs() {
		return b.resolver.validateDepth()
	}
	res, err := b.resolver.resolve(b.registry.LabelExpr, b.registry.RelationshipType)
	if err != nil {
		return err
	}
	b.match.clearPrimary()
	b.match.addPrimary(res.pattern)
	b.claim(b.resolver.claimedAliases()...)
	if b.mainAlias == "" {
		b.mainAlias = res.targetAlias
	}
	return nil
}

// segmentAliases returns the source/relationship/target triple for the
// active path-segment or relationship root.
func (b *Builder) segmentAliases() (string, string, string) {
	if b.resolver.resolved != nil {
		res := b.resolver.resolved
		return res.sourceAlias, res.relationshipAlias, res.targetAlias
	}
	return DefaultSourceAlias, DefaultRelationshipAlias, DefaultTargetAlias
}

// renderBool emits the boolean-shaped exists/not-exists forms, which
// short-circuit projections, grouping, ordering, and pagination.
func (b *Builder) renderBool(buf *strings.Builder, mode renderMode) error {
	if b.mainAlias == "" {
		return &BuildError{Code: ErrCodeAmbiguousAlias, Message: "exists query requires a match pattern"}
	}
	if mode == modeExists {
		b.returns.exists = existsCount
	} else {
		b.returns.exists = notExistsCount
	}
	b.returns.countAlias = b.mainAlias

	for _, part := range []queryPart{&b.match, &b.where, &b.returns} {
		if !part.hasContent() {
			continue
		}
		if err := part.appendTo(buf); err != nil {
			return err
		}
	}
	return nil
}

// renderSimple assembles every part with content in ascending render
// order, so the call order of the build API never affects clause order.
func (b *Builder) renderSimple(buf *strings.Builder) error {
	b.returns.exists = existsNone
	b.returns.mainAlias = b.mainAlias
	b.returns.relationshipRoot = b.relationshipRoot
	b.returns.sourceAlias, b.returns.relationshipAlias, b.returns.targetAlias = b.segmentAliases()
	b.rewriteClauses()

	parts := []queryPart{&b.match, &b.where, &b.groupBy, &b.returns, &b.orderBy, &b.pagination}
	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].renderOrder() < parts[j].renderOrder()
	})

	for _, part := range parts {
		if !part.hasContent() {
			continue
		}
		// Aggregation fixes the row shape; ordering no longer applies.
		if part.renderOrder() == orderOrderBy && b.returns.aggregation != nil {
			continue
		}
		if err := part.appendTo(buf); err != nil {
			return err
		}
	}
	return nil
}

// renderComplex assembles the complex-property expansion modes. Pagination
// and ordering apply to the root row set, while it is still one row per
// root, before the one-to-many property walk multiplies rows.
func (b *Builder) renderComplex(buf *strings.Builder, mixed bool) error {
	b.returns.exists = existsNone
	b.rewriteClauses()

	if err := b.match.appendTo(buf); err != nil {
		return err
	}
	if b.where.hasContent() {
		if err := b.where.appendTo(buf); err != nil {
			return err
		}
	}

	segment := b.loadPathSegment || b.relationshipRoot
	var roots []string
	if segment {
		src, rel, tgt := b.segmentAliases()
		roots = []string{src, rel, tgt}
	} else {
		if b.mainAlias == "" {
			return &BuildError{Code: ErrCodeAmbiguousAlias, Message: "complex-property loading requires a match pattern"}
		}
		roots = []string{b.mainAlias}
	}

	appendLine(buf, "WITH "+strings.Join(roots, ", "))
	if b.orderBy.hasContent() {
		appendLine(buf, b.orderBy.clause())
	}
	for _, line := range b.pagination.lines() {
		appendLine(buf, line)
	}

	carry := roots
	if segment {
		src, _, tgt := b.segmentAliases()
		mode := b.projectionMode
		if mode.expandsStart() {
			for _, line := range b.expand.expansionLines(src, carry) {
				appendLine(buf, line)
			}
			carry = append(carry, b.expand.complexPropsVar(src))
		}
		if mode.expandsEnd() {
			for _, line := range b.expand.expansionLines(tgt, carry) {
				appendLine(buf, line)
			}
			carry = append(carry, b.expand.complexPropsVar(tgt))
		}
		if !mode.expandsStart() && !mode.expandsEnd() {
			return &BuildError{
				Code:    ErrCodeUnsupportedShape,
				Message: fmt.Sprintf("no rendering rule for projection mode %d", int(mode)),
			}
		}
	} else {
		for _, line := range b.expand.expansionLines(b.mainAlias, carry) {
			appendLine(buf, line)
		}
	}

	if mixed {
		keyword := "RETURN"
		if b.returns.distinct {
			keyword = "RETURN DISTINCT"
		}
		appendLine(buf, keyword+" "+b.returns.projectionList())
		return nil
	}

	if segment {
		src, rel, tgt := b.segmentAliases()
		line, err := b.expand.segmentReturn(src, rel, tgt, b.projectionMode)
		if err != nil {
			return err
		}
		appendLine(buf, line)
		return nil
	}

	appendLine(buf, b.expand.nodeReturn(b.mainAlias))
	return nil
}

// rewriteClauses maps ordering and grouping expressions through the alias
// rewrite a chained pattern may have introduced.
func (b *Builder) rewriteClauses() {
	for i, item := range b.orderBy.items {
		b.orderBy.items[i].expr = b.rewriteExpr(item.expr)
	}
	for i, expr := range b.groupBy.expressions {
		b.groupBy.expressions[i] = b.rewriteExpr(expr)
	}
}
