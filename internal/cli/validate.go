package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openogm/graphom/internal/querydef"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema string
}

// ValidationReport is the validate command's JSON payload.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <definition.yaml>",
		Short: "Validate a query definition without compiling it",
		Long: `Check a YAML query definition against the structural rules: row
sources, operator names, mutually exclusive flags, depth bounds, and
filter-tree shape. All violations report at once.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "CUE schema file")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	def, _, err := loadInputs(path, opts.Schema, formatter)
	if err != nil {
		return err
	}

	result := querydef.Validate(def)
	report := ValidationReport{Valid: result.Valid, Errors: result.Errors}

	if opts.Format == "json" {
		if err := formatter.SuccessJSON(report); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
	} else {
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s\n", e)
		}
	}

	if !result.Valid {
		return WrapExitError(ExitFailure, "definition is invalid", nil)
	}
	return nil
}
