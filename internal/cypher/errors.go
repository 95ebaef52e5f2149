package cypher

import (
	"errors"
	"fmt"
)

// BuildError represents a failure detected while assembling a query.
//
// Build failures fall into a small taxonomy:
//   - Unsupported shape: a projection or pattern combination the compiler
//     has no rendering rule for. This is a programming-error class failure;
//     it indicates an internal state that the public API should have made
//     unreachable.
//   - Ambiguous alias: a pending filter references an alias no pattern
//     claims. Silently passing the alias through would run the filter
//     against the wrong identifier, so this fails the build instead.
//   - Conflicting mode: mutually exclusive build states were both
//     requested, e.g. exists and not-exists.
//   - Invalid depth: traversal depth bounds are negative or inverted.
//
// All failures occur before any network interaction; a failed build simply
// prevents the query from ever being issued.
type BuildError struct {
	// Code identifies the error category.
	Code BuildErrorCode

	// Message is a human-readable description.
	Message string

	// Alias identifies the offending alias (for alias errors).
	Alias string
}

// BuildErrorCode categorizes build errors.
type BuildErrorCode string

const (
	// ErrCodeUnsupportedShape indicates a projection or pattern combination
	// with no rendering rule.
	ErrCodeUnsupportedShape BuildErrorCode = "UNSUPPORTED_SHAPE"

	// ErrCodeAmbiguousAlias indicates a filter alias no pattern claims.
	ErrCodeAmbiguousAlias BuildErrorCode = "AMBIGUOUS_ALIAS"

	// ErrCodeConflictingMode indicates mutually exclusive build states.
	ErrCodeConflictingMode BuildErrorCode = "CONFLICTING_MODE"

	// ErrCodeInvalidDepth indicates invalid traversal depth bounds.
	ErrCodeInvalidDepth BuildErrorCode = "INVALID_DEPTH"
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Alias != "" {
		return fmt.Sprintf("%s: %s (alias=%s)", e.Code, e.Message, e.Alias)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsAmbiguousAlias returns true if the error is an unresolved-alias failure.
// Uses errors.As to handle wrapped errors.
func IsAmbiguousAlias(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == ErrCodeAmbiguousAlias
	}
	return false
}

// IsUnsupportedShape returns true if the error is an unsupported-shape
// failure. Uses errors.As to handle wrapped errors.
func IsUnsupportedShape(err error) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == ErrCodeUnsupportedShape
	}
	return false
}
