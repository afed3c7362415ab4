package cli

import (
	"context"

	"github.com/spf13/cobra"

	"orderpulse/internal/ingest"
	"orderpulse/internal/render"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	RejectsDir string
	Reprocess  bool
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Load feed files into the database",
		Long: `Scan a directory for customer CSV and order XML files and load them.

Files failing the structural pre-check are rejected whole; individual bad
records are skipped and written to a reject artifact. The run always ends
with a per-file summary unless the directory itself cannot be listed.

With --reprocess the database is emptied first, so the run rebuilds the
full dataset from the feed files instead of skipping known duplicates.

Example:
  orderpulse ingest --db ./orderpulse.db ./data/incoming
  orderpulse ingest --reprocess --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.RejectsDir, "rejects", "", "directory for reject artifacts (overrides config)")
	cmd.Flags().BoolVar(&opts.Reprocess, "reprocess", false, "empty the database before loading (full backfill)")

	return cmd
}

func runIngest(cmd *cobra.Command, opts *IngestOptions, args []string) error {
	logger := setupLogging(opts.RootOptions)
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	dir := cfg.DataDir
	if len(args) == 1 {
		dir = args[0]
	}
	rejectsDir := cfg.RejectsDir
	if opts.RejectsDir != "" {
		rejectsDir = opts.RejectsDir
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	p := ingest.New(st, ingest.Options{
		Logger:     logger,
		RejectsDir: rejectsDir,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Reprocess {
		logger.Info("reprocessing: emptying database before load")
		if err := st.ResetAll(ctx); err != nil {
			return WrapExitError(ExitCommandError, "reprocess reset failed", err)
		}
	}

	summary, err := p.IngestDirectory(ctx, dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "ingestion failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if out.JSON() {
		return out.Success(summary)
	}
	render.New(cmd.OutOrStdout()).RunSummary(summary)
	return nil
}
