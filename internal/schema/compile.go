package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileRegistry parses a CUE value into a Registry.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The CUE value should be the schema struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`schema: { nodes: { ... } }`)
//	reg, err := CompileRegistry(v.LookupPath(cue.ParsePath("schema")))
//
// Expected shape:
//
//	schema: {
//		nodes: Person: {
//			labels: ["Person", "Human"]
//			complex: address: {ordered: false}
//		}
//		relationships: Knows: {type: "KNOWS"}
//	}
func CompileRegistry(v cue.Value) (*Registry, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	reg := NewRegistry()

	nodesVal := v.LookupPath(cue.ParsePath("nodes"))
	if nodesVal.Exists() {
		iter, err := nodesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			desc, err := compileNode(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return nil, err
			}
			if err := reg.RegisterNode(desc); err != nil {
				return nil, &CompileError{
					Field:   "nodes",
					Message: err.Error(),
					Pos:     iter.Value().Pos(),
				}
			}
		}
	}

	relsVal := v.LookupPath(cue.ParsePath("relationships"))
	if relsVal.Exists() {
		iter, err := relsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			desc, err := compileRelationship(iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return nil, err
			}
			if err := reg.RegisterRelationship(desc); err != nil {
				return nil, &CompileError{
					Field:   "relationships",
					Message: err.Error(),
					Pos:     iter.Value().Pos(),
				}
			}
		}
	}

	return reg, nil
}

// compileNode parses one node descriptor from its CUE struct.
func compileNode(name string, v cue.Value) (NodeDescriptor, error) {
	desc := NodeDescriptor{Name: name}

	labelsVal := v.LookupPath(cue.ParsePath("labels"))
	if labelsVal.Exists() {
		iter, err := labelsVal.List()
		if err != nil {
			return desc, &CompileError{
				Field:   name + ".labels",
				Message: "labels must be a list of strings",
				Pos:     labelsVal.Pos(),
			}
		}
		for iter.Next() {
			label, err := iter.Value().String()
			if err != nil {
				return desc, formatCUEError(err)
			}
			desc.Labels = append(desc.Labels, label)
		}
	}

	complexVal := v.LookupPath(cue.ParsePath("complex"))
	if complexVal.Exists() {
		iter, err := complexVal.Fields()
		if err != nil {
			return desc, formatCUEError(err)
		}
		for iter.Next() {
			cp := ComplexProperty{Name: iter.Selector().Unquoted()}

			orderedVal := iter.Value().LookupPath(cue.ParsePath("ordered"))
			if orderedVal.Exists() {
				ordered, err := orderedVal.Bool()
				if err != nil {
					return desc, &CompileError{
						Field:   fmt.Sprintf("%s.complex.%s.ordered", name, cp.Name),
						Message: "ordered must be a bool",
						Pos:     orderedVal.Pos(),
					}
				}
				cp.Ordered = ordered
			}

			relVal := iter.Value().LookupPath(cue.ParsePath("relationship"))
			if relVal.Exists() {
				relType, err := relVal.String()
				if err != nil {
					return desc, formatCUEError(err)
				}
				cp.RelationshipType = relType
			}

			desc.Complex = append(desc.Complex, cp)
		}
	}

	return desc, nil
}

// compileRelationship parses one relationship descriptor from its CUE struct.
func compileRelationship(name string, v cue.Value) (RelationshipDescriptor, error) {
	desc := RelationshipDescriptor{Name: name}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if typeVal.Exists() {
		relType, err := typeVal.String()
		if err != nil {
			return desc, &CompileError{
				Field:   name + ".type",
				Message: "type must be a string",
				Pos:     typeVal.Pos(),
			}
		}
		desc.Type = relType
	}

	return desc, nil
}

// LoadFile reads a CUE schema file and compiles it into a Registry.
// The file must declare a top-level "schema" struct.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schemaVal := v.LookupPath(cue.ParsePath("schema"))
	if !schemaVal.Exists() {
		return nil, &CompileError{
			Field:   "schema",
			Message: "top-level schema struct is required",
			Pos:     v.Pos(),
		}
	}

	return CompileRegistry(schemaVal)
}

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
