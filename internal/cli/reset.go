package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Force bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all loaded customers and orders",
		Long: `Empty the customers and orders tables and restart ID assignment.
The schema stays in place; the next ingest starts from a clean slate.

Requires --force.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "confirm the deletion")

	return cmd
}

func runReset(cmd *cobra.Command, opts *ResetOptions) error {
	setupLogging(opts.RootOptions)
	if !opts.Force {
		return NewExitError(ExitCommandError, "reset deletes all loaded data; re-run with --force to confirm")
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := st.ResetAll(ctx); err != nil {
		return WrapExitError(ExitCommandError, "reset failed", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Database reset.")
	return nil
}
