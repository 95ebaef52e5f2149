// Package cypher compiles a typed, composable description of a graph query
// into a single executable Cypher string plus its parameter table.
//
// The query translator drives a Builder incrementally while walking a query
// definition (add match, queue a pending filter, set depth and direction,
// and so on). Nothing renders until the terminal Build call, which resolves
// deferred traversal patterns, lowers pending filters into the finalized
// alias space, selects one of five mutually exclusive render modes
// (simple, exists, not-exists, complex-properties-only, mixed projection
// with a path segment), and assembles the clause parts in fixed priority
// order.
//
// The package is a pure value transformer: no I/O, no sessions, no
// execution. A Builder serves one logical query on one goroutine;
// independent queries compile concurrently with no shared state.
package cypher
