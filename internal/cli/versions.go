package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldline/fieldline/internal/store"
)

// VersionsResult holds a form's version history for JSON output.
type VersionsResult struct {
	FormID  string                `json:"formId"`
	Current string                `json:"current"`
	History []store.VersionRecord `json:"history"`
}

// NewVersionsCommand creates the versions command.
func NewVersionsCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "versions <form-id>",
		Short:         "List a form's version history",
		Long:          "List the version history of a form, derived from its create and update audit snapshots.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersions(rootOpts, args[0], dbPath, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runVersions(opts *RootOptions, formID, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer st.Close()

	ctx := cmd.Context()
	records, err := st.ListVersions(ctx, formID)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		if store.IsNotFound(err) {
			return NewExitError(ExitFailure, err.Error())
		}
		return NewExitError(ExitCommandError, err.Error())
	}

	current := ""
	if sc, err := st.GetForm(ctx, formID); err == nil {
		current = sc.Version
	}

	if formatter.Format == "json" {
		return formatter.Success(VersionsResult{
			FormID:  formID,
			Current: current,
			History: records,
		})
	}

	fmt.Fprintf(formatter.Writer, "%s (current: %s)\n", formID, current)
	for _, r := range records {
		fmt.Fprintf(formatter.Writer, "  %-10s %-8s %s\n", r.Version, r.Action, r.At)
	}
	return nil
}
