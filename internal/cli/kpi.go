package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"orderpulse/internal/config"
	"orderpulse/internal/kpi"
	"orderpulse/internal/render"
	"orderpulse/internal/store"
)

// Backend names accepted by --backend.
var validBackends = []string{"sql", "memory", "partitioned"}

// KPIOptions holds flags for the kpi command.
type KPIOptions struct {
	*RootOptions
	Backend string
	Days    int
	Limit   int
	Workers int
}

// NewKPICommand creates the kpi command.
func NewKPICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KPIOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Compute KPIs over the loaded data",
		Long: `Compute repeat customers, monthly order trends, regional revenue, and
top spenders through one of the interchangeable backends.

The sql backend pushes aggregation into SQLite; memory aggregates a
snapshot in one pass; partitioned fans the snapshot out over worker
goroutines. All three produce identical results.

Example:
  orderpulse kpi --db ./orderpulse.db
  orderpulse kpi --backend partitioned --days 90 --limit 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKPI(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "sql", "execution backend (sql|memory|partitioned)")
	cmd.Flags().IntVar(&opts.Days, "days", 0, "top-spenders window in days (defaults from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "top-spenders result size (defaults from config)")
	cmd.Flags().IntVar(&opts.Workers, "workers", runtime.NumCPU(), "partition count for the partitioned backend")

	return cmd
}

func runKPI(cmd *cobra.Command, opts *KPIOptions) error {
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

	backend, err := buildBackend(ctx, st, opts.Backend, opts.Workers)
	if err != nil {
		return err
	}

	days, limit := windowDefaults(cfg, opts.Days, opts.Limit)
	results, err := kpi.All(ctx, backend, days, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "KPI computation failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if out.JSON() {
		return out.Success(results)
	}
	render.New(cmd.OutOrStdout()).Results(results, days)
	return nil
}

// buildBackend constructs the named KPI backend. The snapshot backends read
// the store once, up front.
func buildBackend(ctx context.Context, st *store.Store, name string, workers int) (kpi.Backend, error) {
	switch name {
	case "sql":
		return kpi.NewSQLBackend(st, kpi.SystemClock()), nil
	case "memory", "partitioned":
		snap, err := st.Snapshot(ctx)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read snapshot", err)
		}
		if name == "memory" {
			return kpi.NewMemoryBackend(snap, kpi.SystemClock()), nil
		}
		return kpi.NewPartitionedBackend(snap, kpi.SystemClock(), workers), nil
	default:
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("unknown backend %q: must be one of %v", name, validBackends))
	}
}

func windowDefaults(cfg *config.Config, days, limit int) (int, int) {
	if days <= 0 {
		days = cfg.TopSpenders.Days
	}
	if limit <= 0 {
		limit = cfg.TopSpenders.Limit
	}
	return days, limit
}
