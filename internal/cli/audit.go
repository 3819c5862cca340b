package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldline/fieldline/internal/form"
	"github.com/fieldline/fieldline/internal/store"
)

// AuditResult holds audit entries for JSON output.
type AuditResult struct {
	Entries []form.AuditEntry `json:"entries"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "audit [form-id]",
		Short: "Dump the audit trail",
		Long: `Print the append-only audit trail, optionally filtered to one form.

With --verify every entry's payload hash is recomputed and mismatches
are reported.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formID := ""
			if len(args) == 1 {
				formID = args[0]
			}
			return runAudit(rootOpts, formID, dbPath, verify, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database (required)")
	cmd.Flags().BoolVar(&verify, "verify", false, "recompute payload hashes and report mismatches")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runAudit(opts *RootOptions, formID, dbPath string, verify bool, cmd *cobra.Command) error {
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

	if verify {
		bad, err := st.VerifyAudit(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		if len(bad) > 0 {
			msg := fmt.Sprintf("%d audit entries failed hash verification: %v", len(bad), bad)
			_ = formatter.Error(ErrCodeStore, msg, bad)
			return NewExitError(ExitFailure, msg)
		}
		formatter.VerboseLog("All audit hashes verified")
	}

	entries, err := st.AuditEntries(ctx, formID)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(AuditResult{Entries: entries})
	}

	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "%6d  %-24s %-10s %-10s %s\n",
			e.ID,
			e.At.Format(time.RFC3339),
			e.FormID,
			e.Action,
			e.PayloadHash[:12],
		)
	}
	return nil
}
