package cypher

import "strings"

// pendingCondition is a predicate not yet lowered to text, paired with the
// alias it will bind to. Lowering waits until pattern resolution fixes the
// alias space.
type pendingCondition struct {
	cond  Condition
	alias string
}

// wherePart accumulates filter conditions for the WHERE clause.
//
// Conditions arrive in two forms: already-lowered condition strings, and
// pending (predicate, alias) pairs. Pending conditions lower through
// finalizePending, which the orchestrator invokes after pattern finalization
// and before rendering; lowering is idempotent. Duplicate exact-text
// conditions are suppressed.
type wherePart struct {
	conditions []string
	pending    []pendingCondition
}

func (w *wherePart) hasContent() bool {
	return len(w.conditions) > 0
}

func (w *wherePart) renderOrder() int { return orderWhere }

// add appends an already-lowered condition string.
func (w *wherePart) add(condition string) {
	if condition == "" || containsString(w.conditions, condition) {
		return
	}
	w.conditions = append(w.conditions, condition)
}

// setPending queues a predicate for deferred lowering against alias.
func (w *wherePart) setPending(cond Condition, alias string) {
	w.pending = append(w.pending, pendingCondition{cond: cond, alias: alias})
}

// finalizePending lowers every queued predicate. The resolve callback maps
// each declared alias into the identifier space of the finalized pattern;
// it fails for aliases no pattern claims. Lowered text appends to the
// condition list and the queue empties, so a second call is a no-op.
func (w *wherePart) finalizePending(resolve func(string) (string, error), params *Parameters) error {
	for _, pc := range w.pending {
		alias, err := resolve(pc.alias)
		if err != nil {
			return err
		}
		text, err := pc.cond.Lower(alias, params)
		if err != nil {
			return err
		}
		w.add(text)
	}
	w.pending = nil
	return nil
}

func (w *wherePart) appendTo(b *strings.Builder) error {
	appendLine(b, "WHERE "+strings.Join(w.conditions, " AND "))
	return nil
}
