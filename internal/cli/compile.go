package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openogm/graphom/internal/canon"
	"github.com/openogm/graphom/internal/cypher"
	"github.com/openogm/graphom/internal/querydef"
	"github.com/openogm/graphom/internal/schema"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Schema string // optional CUE schema file
	Output string // optional output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <definition.yaml>",
		Short: "Compile a query definition to query text and parameters",
		Long: `Compile a YAML query definition into final query text plus its ordered
parameter table. With --schema, type names resolve through a CUE schema;
without one they pass through as raw labels.

Output is deterministic: the same definition always compiles to
byte-identical text and parameter order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "CUE schema file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	def, reg, err := loadInputs(path, opts.Schema, formatter)
	if err != nil {
		return err
	}

	query, err := querydef.NewCompiler(reg).Compile(def)
	if err != nil {
		formatter.Error(err.Error())
		return WrapExitError(ExitFailure, "compilation failed", err)
	}
	formatter.VerboseLog("Compiled %d parameter(s)", len(query.Parameters))

	var out []byte
	if opts.Format == "json" {
		out, err = compileJSON(query.Text, query.Parameters)
		if err != nil {
			formatter.Error(err.Error())
			return WrapExitError(ExitFailure, "serialize output", err)
		}
		out = append(out, '\n')
	} else {
		out = compileText(query.Text, query.Parameters)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, out, 0o644); err != nil {
			formatter.Error(err.Error())
			return WrapExitError(ExitCommandError, "write output file", err)
		}
		return nil
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// loadInputs reads the definition and, when given, the schema.
func loadInputs(path, schemaPath string, formatter *OutputFormatter) (*querydef.Definition, *schema.Registry, error) {
	def, err := querydef.Load(path)
	if err != nil {
		formatter.Error(err.Error())
		return nil, nil, WrapExitError(ExitCommandError, "load definition", err)
	}

	var reg *schema.Registry
	if schemaPath != "" {
		reg, err = schema.LoadFile(schemaPath)
		if err != nil {
			formatter.Error(err.Error())
			return nil, nil, WrapExitError(ExitCommandError, "load schema", err)
		}
		formatter.VerboseLog("Loaded schema %s", schemaPath)
	}
	return def, reg, nil
}

// compileJSON serializes the compiled query as canonical JSON, so repeated
// runs produce byte-identical output.
func compileJSON(text string, params []cypher.Parameter) ([]byte, error) {
	list := make([]any, len(params))
	for i, p := range params {
		list[i] = map[string]any{"name": p.Name, "value": p.Value}
	}
	return canon.Marshal(map[string]any{
		"query":      text,
		"parameters": list,
	})
}

// compileText renders the human-readable layout: the query text, then one
// line per parameter in registration order.
func compileText(text string, params []cypher.Parameter) []byte {
	out := text + "\n"
	if len(params) > 0 {
		out += "\nParameters:\n"
		for _, p := range params {
			out += fmt.Sprintf("  $%s = %v\n", p.Name, p.Value)
		}
	}
	return []byte(out)
}
