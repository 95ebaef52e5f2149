// Package querydef is the declarative query surface: a YAML-loadable
// description of a graph query, a sealed filter AST, structural validation,
// and the translator that walks a definition and drives the query
// orchestrator in internal/cypher.
//
// The package separates describing a query from compiling one. Definitions
// are plain data, cheap to construct, serialize, and diff; every decision
// about clause order, render mode, and alias resolution belongs to the
// orchestrator.
package querydef
