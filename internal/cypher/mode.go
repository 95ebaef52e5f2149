package cypher

import "fmt"

// renderMode is the mutually exclusive strategy used to assemble the final
// query text. It is computed once per Build call, with no further
// transitions, and matched exhaustively at render time so adding a mode is
// a compiler-checked change.
type renderMode int

const (
	// modeSimple renders the clause parts in their fixed order.
	modeSimple renderMode = iota

	// modeExists renders a boolean-shaped COUNT(alias) > 0 comparison,
	// ignoring projections entirely.
	modeExists

	// modeNotExists renders COUNT(alias) = 0.
	modeNotExists

	// modeComplexOnly renders the complex-property expansion with no user
	// projections: the expansion's record shape is the result.
	modeComplexOnly

	// modeMixedPathSegment renders the expansion for a path-segment root
	// and then the caller's projections.
	modeMixedPathSegment
)

// String returns the render mode name.
func (m renderMode) String() string {
	switch m {
	case modeSimple:
		return "simple"
	case modeExists:
		return "exists"
	case modeNotExists:
		return "notExists"
	case modeComplexOnly:
		return "complexPropertiesOnly"
	case modeMixedPathSegment:
		return "mixedProjectionWithPathSegment"
	default:
		return fmt.Sprintf("renderMode(%d)", int(m))
	}
}
