package graph

import "github.com/google/uuid"

// IDProperty is the property every persisted entity is keyed by.
const IDProperty = "id"

// NewEntityID generates a time-ordered entity identifier. v7 UUIDs sort by
// creation time, which keeps id-ordered scans close to insertion order.
func NewEntityID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4
		// rather than propagating an error nobody can act on.
		return uuid.NewString()
	}
	return id.String()
}

// EnsureID assigns a fresh entity ID to the property map when it has none,
// and returns the effective ID.
func EnsureID(props map[string]any) string {
	if id, ok := props[IDProperty].(string); ok && id != "" {
		return id
	}
	id := NewEntityID()
	props[IDProperty] = id
	return id
}
