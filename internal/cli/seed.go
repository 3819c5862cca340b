package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fieldline/fieldline/internal/form"
	"github.com/fieldline/fieldline/internal/store"
)

// SeedResult summarizes a seed run for JSON output.
type SeedResult struct {
	Seeded []string `json:"seeded"`
	Reset  bool     `json:"reset"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		reset  bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Populate the store from a YAML or JSON seed file",
		Long: `Load form schemas from a seed file and create them in the store.

With --reset the store is wiped first: forms, submissions, and the
audit trail are all cleared before seeding. --reset refuses to run
without --yes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], dbPath, reset, yes, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the SQLite database (required)")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear the store before seeding (destructive)")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm a destructive --reset")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSeed(opts *RootOptions, seedPath, dbPath string, reset, yes bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// The confirmation gate lives here, not in the store: store.Reset
	// always obeys its caller.
	if reset && !yes {
		msg := "--reset clears all forms, submissions, and audit history; re-run with --yes to confirm"
		_ = formatter.Error(ErrCodeRefused, msg, nil)
		return NewExitError(ExitFailure, msg)
	}

	seeds, err := loadSeedFile(seedPath)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	formatter.VerboseLog("Loaded %d schema(s) from %s", len(seeds), seedPath)

	for _, seed := range seeds {
		if verrs := form.Validate(seed); len(verrs) > 0 {
			msg := fmt.Sprintf("seed form %q: %v", seed.ID, verrs[0])
			_ = formatter.Error(verrs[0].Code, msg, verrs)
			return NewExitError(ExitFailure, msg)
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer st.Close()

	ctx := cmd.Context()
	if reset {
		if err := st.Reset(ctx, seeds); err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
	} else {
		for _, seed := range seeds {
			if err := st.CreateForm(ctx, seed); err != nil {
				_ = formatter.Error(ErrCodeStore, err.Error(), nil)
				if store.IsDuplicate(err) {
					return NewExitError(ExitFailure, err.Error())
				}
				return NewExitError(ExitCommandError, err.Error())
			}
		}
	}

	ids := make([]string, len(seeds))
	for i, seed := range seeds {
		ids[i] = seed.ID
	}

	if formatter.Format == "json" {
		return formatter.Success(SeedResult{Seeded: ids, Reset: reset})
	}
	fmt.Fprintf(formatter.Writer, "✓ Seeded %d form(s)\n", len(ids))
	return nil
}

// seedFile is the on-disk seed format. YAML input is decoded through a
// JSON round trip so the schema's JSON field names apply to both
// formats.
type seedFile struct {
	Forms []*form.Schema `json:"forms"`
}

func loadSeedFile(path string) ([]*form.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	jsonBytes, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("convert seed file: %w", err)
	}

	var file seedFile
	if err := json.Unmarshal(jsonBytes, &file); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if len(file.Forms) == 0 {
		return nil, fmt.Errorf("seed file %s contains no forms", path)
	}
	return file.Forms, nil
}
