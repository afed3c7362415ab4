package cli

import (
	"context"
	"runtime"

	"github.com/spf13/cobra"

	"orderpulse/internal/kpi"
	"orderpulse/internal/render"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Days    int
	Limit   int
	Workers int
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that all KPI backends agree",
		Long: `Compute every KPI through all three backends over the same data and
compare the results. Counts and grouping must match exactly; monetary
values may differ by at most 0.01.

Exits non-zero if any backend diverges.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 0, "top-spenders window in days (defaults from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "top-spenders result size (defaults from config)")
	cmd.Flags().IntVar(&opts.Workers, "workers", runtime.NumCPU(), "partition count for the partitioned backend")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *VerifyOptions) error {
	setupLogging(opts.RootOptions)
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

	// One clock for every backend, so the trailing window is identical.
	clock := kpi.SystemClock()
	snap, err := st.Snapshot(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read snapshot", err)
	}

	reference := kpi.NewSQLBackend(st, clock)
	others := []kpi.Backend{
		kpi.NewMemoryBackend(snap, clock),
		kpi.NewPartitionedBackend(snap, clock, opts.Workers),
	}

	days, limit := windowDefaults(cfg, opts.Days, opts.Limit)
	want, err := kpi.All(ctx, reference, days, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "KPI computation failed", err)
	}

	r := render.New(cmd.OutOrStdout())
	diverged := false
	for _, b := range others {
		got, err := kpi.All(ctx, b, days, limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "KPI computation failed", err)
		}
		divs := kpi.Compare(want, got)
		r.Divergences(reference.Name(), b.Name(), divs)
		if len(divs) > 0 {
			diverged = true
		}
	}

	if diverged {
		return NewExitError(ExitFailure, "backend results diverge")
	}
	return nil
}
