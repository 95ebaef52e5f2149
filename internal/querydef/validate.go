package querydef

import "fmt"

// ValidationResult contains the structural analysis of a query definition.
//
// Validation is a pure function over the definition: it checks shape rules
// the YAML schema cannot express (mutually exclusive flags, operator names,
// enum values) without touching a schema registry or a builder. A failed
// validation means compilation would fail; the result gives all reasons at
// once instead of the first one the translator happens to hit.
type ValidationResult struct {
	// Valid indicates the definition passed every structural rule.
	Valid bool

	// Errors lists every rule violation. Empty when Valid is true.
	Errors []string
}

// Validate checks a query definition against the structural rules.
func Validate(def *Definition) ValidationResult {
	v := &validator{}
	v.validate(def)
	return ValidationResult{
		Valid:  len(v.errors) == 0,
		Errors: v.errors,
	}
}

// validator accumulates rule violations during traversal.
type validator struct {
	errors []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) validate(def *Definition) {
	if def == nil {
		v.addError("nil definition")
		return
	}

	if !def.hasRoot() {
		v.addError("definition declares nothing to match: need match, relationship, patterns, segments, or fullText")
	}
	if def.Exists && def.NotExists {
		v.addError("exists and notExists are mutually exclusive")
	}
	if def.Aggregate != nil && len(def.Return) > 0 {
		v.addError("aggregate and return are mutually exclusive")
	}

	for i, m := range def.Match {
		if m.Alias == "" {
			v.addError("match[%d]: alias is required", i)
		}
	}
	for i, s := range def.Segments {
		if s.Source == "" || s.Relationship == "" || s.Target == "" {
			v.addError("segments[%d]: source, relationship, and target are required", i)
		}
	}

	if def.Traverse != nil {
		switch def.Traverse.Direction {
		case "", "outgoing", "incoming", "both":
		default:
			v.addError("traverse.direction: unknown direction %q", def.Traverse.Direction)
		}
	}

	if def.FullText != nil {
		if def.FullText.Index == "" || def.FullText.Query == "" {
			v.addError("fullText: index and query are required")
		}
		switch def.FullText.Entity {
		case "", "node", "relationship", "any":
		default:
			v.addError("fullText.entity: unknown entity kind %q", def.FullText.Entity)
		}
	}

	switch def.Projection {
	case "", "full", "startNode", "endNode", "relationship":
	default:
		v.addError("projection: unknown projection mode %q", def.Projection)
	}

	if def.Aggregate != nil && (def.Aggregate.Fn == "" || def.Aggregate.Expr == "") {
		v.addError("aggregate: fn and expr are required")
	}
	for i, r := range def.Return {
		if r.Expr == "" {
			v.addError("return[%d]: expr is required", i)
		}
	}
	for i, o := range def.OrderBy {
		if o.Expr == "" {
			v.addError("orderBy[%d]: expr is required", i)
		}
	}

	if def.Skip != nil && *def.Skip < 0 {
		v.addError("skip must be non-negative, got %d", *def.Skip)
	}
	if def.Limit != nil && *def.Limit < 0 {
		v.addError("limit must be non-negative, got %d", *def.Limit)
	}
	if def.Traverse != nil {
		if def.Traverse.MinDepth != nil && *def.Traverse.MinDepth < 0 {
			v.addError("traverse.minDepth must be non-negative, got %d", *def.Traverse.MinDepth)
		}
		if def.Traverse.MaxDepth != nil && *def.Traverse.MaxDepth < 0 {
			v.addError("traverse.maxDepth must be non-negative, got %d", *def.Traverse.MaxDepth)
		}
	}

	if def.Where != nil {
		v.validateFilter(*def.Where, "where", true)
	}
}

// validateFilter recursively validates a filter node.
func (v *validator) validateFilter(spec FilterSpec, path string, top bool) {
	if !top && spec.Alias != "" {
		v.addError("%s: alias is only valid at the top of the filter tree", path)
	}
	if spec.shapeCount() != 1 {
		v.addError("%s: filter node must declare exactly one of field/op, raw, all, any", path)
		return
	}
	if spec.isComparison() {
		if spec.Field == "" {
			v.addError("%s: comparison requires a field", path)
		}
		if !knownOperator(spec.Op) {
			v.addError("%s: unknown operator %q", path, spec.Op)
		}
		if spec.Op.valueless() && spec.Value != nil {
			v.addError("%s: operator %q takes no value", path, spec.Op)
		}
		return
	}
	for i, child := range spec.All {
		v.validateFilter(child, fmt.Sprintf("%s.all[%d]", path, i), false)
	}
	for i, child := range spec.Any {
		v.validateFilter(child, fmt.Sprintf("%s.any[%d]", path, i), false)
	}
}

// hasRoot reports whether the definition declares any row source.
func (d *Definition) hasRoot() bool {
	return len(d.Match) > 0 || d.Relationship != "" || len(d.Patterns) > 0 ||
		len(d.Segments) > 0 || d.FullText != nil
}
