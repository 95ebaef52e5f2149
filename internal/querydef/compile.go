package querydef

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openogm/graphom/internal/cypher"
	"github.com/openogm/graphom/internal/schema"
)

// Compiler translates query definitions into compiled queries.
//
// The compiler walks a definition in a fixed order and drives the query
// orchestrator's build API; clause order in the output is fixed by the
// orchestrator, not by the walk. A compiler is stateless between calls and
// safe for concurrent use; each Compile call builds with its own parameter
// table.
type Compiler struct {
	registry *schema.Registry
}

// NewCompiler creates a compiler resolving type names through reg. A nil
// registry is allowed; type names then pass through as raw labels.
func NewCompiler(reg *schema.Registry) *Compiler {
	return &Compiler{registry: reg}
}

// Compile validates the definition and translates it into a compiled
// query: the final query text plus its ordered parameter table.
func (c *Compiler) Compile(def *Definition) (*cypher.Query, error) {
	if result := Validate(def); !result.Valid {
		return nil, fmt.Errorf("invalid query definition: %s", strings.Join(result.Errors, "; "))
	}

	b := cypher.NewBuilder(c.registry)

	if def.FullText != nil {
		c.compileFullText(b, def.FullText)
	}
	for _, m := range def.Match {
		b.AddMatch(m.Alias, m.Type, propertySelector(b, m.Properties))
	}
	if def.Relationship != "" {
		b.AddRelationshipMatch(def.Relationship)
	}
	for _, p := range def.Patterns {
		b.AddMatchPattern(p)
	}
	for _, p := range def.OptionalMatch {
		b.AddOptionalMatch(p)
	}
	for _, s := range def.Segments {
		b.SetPendingPathSegmentPattern(
			s.Source, s.Relationship, s.Target,
			s.SourceAlias, s.RelationshipAlias, s.TargetAlias)
	}

	if def.Traverse != nil {
		if err := c.compileTraverse(b, def.Traverse); err != nil {
			return nil, err
		}
	}

	if def.LoadComplexProperties {
		if len(def.Segments) > 0 {
			b.EnablePathSegmentLoading()
		} else {
			b.EnableComplexPropertyLoading()
		}
	}
	if def.Projection != "" {
		mode, err := cypher.ParseProjectionMode(def.Projection)
		if err != nil {
			return nil, err
		}
		b.SetProjectionMode(mode)
	}

	if def.Where != nil {
		filter, err := def.Where.ToFilter()
		if err != nil {
			return nil, fmt.Errorf("compile filter: %w", err)
		}
		b.SetPendingWhere(filter, def.Where.Alias)
	}

	for _, r := range def.Return {
		if r.Infrastructure {
			b.AddInfrastructureReturn(r.Expr, r.Alias)
		} else {
			b.AddUserProjection(r.Expr, r.Alias)
		}
	}
	if def.Aggregate != nil {
		b.SetAggregation(def.Aggregate.Fn, def.Aggregate.Expr)
	}
	for _, w := range def.With {
		b.AddWith(w)
	}
	for _, u := range def.Unwind {
		b.AddUnwind(u)
	}

	for _, g := range def.GroupBy {
		b.AddGroupBy(g)
	}
	for _, o := range def.OrderBy {
		b.AddOrderBy(o.Expr, o.Desc)
	}
	if def.ReverseOrder {
		b.ReverseOrderBy()
	}
	if def.Skip != nil {
		b.SetSkip(*def.Skip)
	}
	if def.Limit != nil {
		b.SetLimit(*def.Limit)
	}
	b.SetDistinct(def.Distinct)

	if def.Exists {
		if err := b.SetExistsQuery(); err != nil {
			return nil, err
		}
	}
	if def.NotExists {
		if err := b.SetNotExistsQuery(); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

// compileFullText roots the build at a full-text index lookup.
func (c *Compiler) compileFullText(b *cypher.Builder, ft *FullTextSpec) {
	param := b.AddParameter(ft.Query)
	alias := ft.Alias
	if alias == "" {
		alias = "node"
	}
	switch ft.Entity {
	case "relationship":
		b.AddFullTextRelationshipSearch(ft.Index, param, alias)
	case "any":
		b.AddFullTextEntitySearch(ft.Index, param, alias)
	default:
		b.AddFullTextNodeSearch(ft.Index, param, alias)
	}
}

// compileTraverse applies direction and depth bounds to the build.
func (c *Compiler) compileTraverse(b *cypher.Builder, tr *TraverseSpec) error {
	switch tr.Direction {
	case "", "outgoing":
		b.SetTraversalDirection(cypher.DirectionOutgoing)
	case "incoming":
		b.SetTraversalDirection(cypher.DirectionIncoming)
	case "both":
		b.SetTraversalDirection(cypher.DirectionBoth)
	default:
		return fmt.Errorf("unknown traversal direction %q", tr.Direction)
	}

	switch {
	case tr.MinDepth != nil && tr.MaxDepth != nil:
		b.SetDepthRange(*tr.MinDepth, *tr.MaxDepth)
	case tr.MaxDepth != nil:
		b.SetDepth(*tr.MaxDepth)
	case tr.MinDepth != nil:
		b.SetMinDepth(*tr.MinDepth)
	}
	return nil
}

// propertySelector renders an inline equality selector from a properties
// map, binding every value as a parameter. Keys are sorted so the selector
// text and the parameter order are deterministic.
func propertySelector(b *cypher.Builder, props map[string]any) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: $%s", k, b.AddParameter(props[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
