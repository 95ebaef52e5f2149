// Package harness provides a conformance harness for the query compiler.
//
// A scenario pairs a query definition with an optional schema; running it
// compiles the definition and snapshots the query text plus the ordered
// parameter table. Snapshots serialize through canonical JSON and compare
// against golden files, so any change to clause order, placeholder naming,
// or parameter order shows up as a byte-level diff.
package harness

import (
	"fmt"

	"github.com/openogm/graphom/internal/canon"
	"github.com/openogm/graphom/internal/querydef"
	"github.com/openogm/graphom/internal/schema"
)

// Snapshot captures one compiled query for golden comparison.
type Snapshot struct {
	// Name is the scenario name.
	Name string

	// Query is the compiled query text.
	Query string

	// Parameters holds the bound parameters in registration order.
	Parameters []Parameter
}

// Parameter is one bound value in the snapshot.
type Parameter struct {
	Name  string
	Value any
}

// Run compiles a scenario and returns its snapshot.
func Run(s *Scenario) (*Snapshot, error) {
	var reg *schema.Registry
	if path := s.schemaPath(); path != "" {
		var err error
		reg, err = schema.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
	}

	query, err := querydef.NewCompiler(reg).Compile(&s.Definition)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	snap := &Snapshot{
		Name:  s.Name,
		Query: query.Text,
	}
	for _, p := range query.Parameters {
		snap.Parameters = append(snap.Parameters, Parameter{Name: p.Name, Value: p.Value})
	}
	return snap, nil
}

// toCanonicalMap converts the snapshot to the shape canonical JSON
// serializes. Parameters stay a list: their registration order is part of
// what the golden file pins down.
func (s *Snapshot) toCanonicalMap() map[string]any {
	params := make([]any, len(s.Parameters))
	for i, p := range s.Parameters {
		params[i] = map[string]any{
			"name":  p.Name,
			"value": p.Value,
		}
	}
	return map[string]any{
		"name":       s.Name,
		"query":      s.Query,
		"parameters": params,
	}
}

// MarshalCanonical serializes the snapshot as canonical JSON.
func (s *Snapshot) MarshalCanonical() ([]byte, error) {
	return canon.Marshal(s.toCanonicalMap())
}
