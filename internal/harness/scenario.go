package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/openogm/graphom/internal/querydef"
)

// Scenario defines one compile-conformance case: a query definition,
// optionally a schema, and a name the golden file is stored under.
//
// Scenarios validate the compiler end to end: the definition loads, the
// schema compiles, the query builds, and the resulting text and parameter
// order match the golden snapshot byte for byte.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Schema is an optional path to a CUE schema file, relative to the
	// scenario file location. Without one, type names pass through as raw
	// labels.
	Schema string `yaml:"schema,omitempty"`

	// Definition is the query definition to compile.
	Definition querydef.Definition `yaml:"definition"`

	// dir is the directory the scenario was loaded from, for resolving the
	// schema path. Empty for scenarios constructed in code.
	dir string
}

// Load reads a scenario from a YAML file. Unknown fields are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// schemaPath resolves the schema file path against the scenario location.
func (s *Scenario) schemaPath() string {
	if s.Schema == "" {
		return ""
	}
	if s.dir == "" || filepath.IsAbs(s.Schema) {
		return s.Schema
	}
	return filepath.Join(s.dir, s.Schema)
}
