package cypher

// Condition is the consumed contract between the compiler and the external
// predicate translator: a predicate AST node that can lower itself to a
// condition string once bound to a concrete alias.
//
// Lowering is deferred because the alias a condition binds to may be
// rewritten when a pending traversal pattern is finalized; the orchestrator
// lowers pending conditions only after pattern resolution, always in the
// pre-expansion alias space. Parameters bound during lowering register with
// the build's parameter table.
type Condition interface {
	// Lower renders the condition against the given alias, registering any
	// bound values with params, and returns the condition text.
	Lower(alias string, params *Parameters) (string, error)
}
