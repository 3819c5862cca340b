package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results for JSON output.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Forms  []string `json:"forms,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <forms-dir>",
		Short: "Compile and validate CUE form definitions",
		Long: `Compile CUE form definitions and check the schema invariants:
unique element ids, known rule and computed targets, parseable
expressions, and computed dependencies covering their expressions.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, formsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result, loadErrors := LoadForms(formsDir, LoadModeCollectAll)

	if result == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		_ = formatter.Error(ErrCodeGeneric, loadErrors[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, formsDir)

	var formIDs []string
	for _, f := range result.Forms {
		formIDs = append(formIDs, f.ID)
	}

	if len(loadErrors) > 0 {
		msgs := make([]string, len(loadErrors))
		for i, err := range loadErrors {
			msgs[i] = err.Error()
		}

		if formatter.Format == "json" {
			_ = formatter.Error(ErrCodeBuildFailed, "validation failed", ValidationResult{
				Valid:  false,
				Forms:  formIDs,
				Errors: msgs,
			})
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
			fmt.Fprintln(formatter.Writer)
			for _, msg := range msgs {
				fmt.Fprintf(formatter.Writer, "  %s\n", msg)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(loadErrors)))
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Forms: formIDs})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d form(s) valid\n", len(result.Forms))
	return nil
}
