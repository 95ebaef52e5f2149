package cypher

import (
	"fmt"
	"reflect"
)

// Parameter is one named, bound query value. Placeholders in the query text
// reference it as "$<name>".
type Parameter struct {
	Name  string
	Value any
}

// Parameters is the insertion-ordered parameter table for one query build.
//
// Names are generated as p0, p1, … in registration order and are stable for
// the lifetime of one build: the same query rebuilt from the same state
// yields identical names in identical order. Registration deduplicates by
// value equality, so a repeated literal reuses one parameter slot.
//
// Parameters is not safe for concurrent use; each query build owns its own
// table.
type Parameters struct {
	ordered []Parameter
}

// NewParameters creates an empty parameter table.
func NewParameters() *Parameters {
	return &Parameters{}
}

// Register stores a value and returns its placeholder name (without the "$"
// prefix). Registering an equal value twice returns the same name.
func (p *Parameters) Register(value any) string {
	for _, existing := range p.ordered {
		if reflect.DeepEqual(existing.Value, value) {
			return existing.Name
		}
	}
	name := fmt.Sprintf("p%d", len(p.ordered))
	p.ordered = append(p.ordered, Parameter{Name: name, Value: value})
	return name
}

// Ordered returns the parameters in registration order.
func (p *Parameters) Ordered() []Parameter {
	out := make([]Parameter, len(p.ordered))
	copy(out, p.ordered)
	return out
}

// Map returns the parameters as the name-to-value map a driver session
// expects. Ordering information is lost; use Ordered where determinism of
// iteration matters.
func (p *Parameters) Map() map[string]any {
	m := make(map[string]any, len(p.ordered))
	for _, param := range p.ordered {
		m[param.Name] = param.Value
	}
	return m
}

// Len returns the number of registered parameters.
func (p *Parameters) Len() int {
	return len(p.ordered)
}
