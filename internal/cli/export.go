package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"orderpulse/internal/artifact"
	"orderpulse/internal/kpi"
	"orderpulse/internal/render"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	ArtifactFormat string
	KeyPrefix      string
	Days           int
	Limit          int
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export KPI results to the artifact store",
		Long: `Compute all KPIs and persist them through the configured artifact
backend (a local directory or a remote object store), one table per KPI.

Example:
  orderpulse export --db ./orderpulse.db
  orderpulse export --artifact-format delimited-text --key reports/2024-11`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ArtifactFormat, "artifact-format", string(artifact.FormatColumnar),
		"artifact encoding (tabular-columnar|delimited-text)")
	cmd.Flags().StringVar(&opts.KeyPrefix, "key", "kpi", "artifact key prefix")
	cmd.Flags().IntVar(&opts.Days, "days", 0, "top-spenders window in days (defaults from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "top-spenders result size (defaults from config)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	logger := setupLogging(opts.RootOptions)
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	format, err := artifact.ParseFormat(opts.ArtifactFormat)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid artifact format", err)
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

	days, limit := windowDefaults(cfg, opts.Days, opts.Limit)
	results, err := kpi.All(ctx, kpi.NewSQLBackend(st, kpi.SystemClock()), days, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "KPI computation failed", err)
	}

	tables := map[string]*artifact.Table{
		"repeat_customers":     render.RepeatCustomersTable(results.RepeatCustomers),
		"monthly_order_trends": render.MonthlyTrendsTable(results.MonthlyTrends),
		"regional_revenue":     render.RegionalRevenueTable(results.RegionalRevenue),
		"top_spenders":         render.TopSpendersTable(results.TopSpenders),
	}

	dest := artifactStore(cfg)
	locators := make(map[string]string, len(tables))
	// Fixed order so output and object creation are deterministic.
	for _, name := range []string{"repeat_customers", "monthly_order_trends", "regional_revenue", "top_spenders"} {
		key := opts.KeyPrefix + "/" + name
		loc, err := dest.Save(ctx, key, tables[name], format)
		if err != nil {
			return WrapExitError(ExitCommandError, "artifact save failed", err)
		}
		logger.Info("artifact saved", "key", key, "locator", loc)
		locators[name] = loc
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if out.JSON() {
		return out.Success(locators)
	}
	for _, name := range []string{"repeat_customers", "monthly_order_trends", "regional_revenue", "top_spenders"} {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", name, locators[name])
	}
	return nil
}
