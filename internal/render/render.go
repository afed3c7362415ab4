// Package render writes KPI results and ingestion run summaries as aligned
// text tables for the CLI, and converts them to tabular form for export.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"orderpulse/internal/ingest"
	"orderpulse/internal/kpi"
)

// Renderer writes human-readable tables to a single destination.
type Renderer struct {
	w io.Writer
}

// New returns a Renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) title(s string) {
	fmt.Fprintln(r.w, color.New(color.FgCyan, color.Bold).Sprint(s))
}

func (r *Renderer) table(fill func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fill(tw)
	tw.Flush()
}

// RepeatCustomers renders the repeat-customers KPI.
func (r *Renderer) RepeatCustomers(rows []kpi.RepeatCustomer) {
	r.title("REPEAT CUSTOMERS")
	if len(rows) == 0 {
		fmt.Fprintln(r.w, "No repeat customers.")
		return
	}
	r.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tMOBILE\tREGION\tORDERS")
		for _, row := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n",
				row.CustomerID, row.CustomerName, row.MobileNumber, row.Region, row.OrderCount)
		}
	})
}

// MonthlyTrends renders the monthly order trends KPI.
func (r *Renderer) MonthlyTrends(rows []kpi.MonthlyTrend) {
	r.title("MONTHLY ORDER TRENDS")
	if len(rows) == 0 {
		fmt.Fprintln(r.w, "No orders recorded.")
		return
	}
	r.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "YEAR\tMONTH\tORDERS\tREVENUE")
		for _, row := range rows {
			fmt.Fprintf(tw, "%d\t%02d\t%d\t%.2f\n",
				row.Year, row.Month, row.OrderCount, row.TotalRevenue)
		}
	})
}

// RegionalRevenue renders the regional revenue KPI.
func (r *Renderer) RegionalRevenue(rows []kpi.RegionalRevenue) {
	r.title("REGIONAL REVENUE")
	if len(rows) == 0 {
		fmt.Fprintln(r.w, "No regional activity.")
		return
	}
	r.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "REGION\tCUSTOMERS\tORDERS\tREVENUE\tAVG ORDER")
		for _, row := range rows {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\n",
				row.Region, row.CustomerCount, row.OrderCount, row.TotalRevenue, row.AvgOrderValue)
		}
	})
}

// TopSpenders renders the trailing-window top spenders KPI.
func (r *Renderer) TopSpenders(rows []kpi.TopSpender, days int) {
	r.title(fmt.Sprintf("TOP SPENDERS (last %d days)", days))
	if len(rows) == 0 {
		fmt.Fprintln(r.w, "No orders in window.")
		return
	}
	r.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tNAME\tMOBILE\tREGION\tORDERS\tTOTAL\tAVG\tLAST ORDER")
		for _, row := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%.2f\t%.2f\t%s\n",
				row.CustomerID, row.CustomerName, row.MobileNumber, row.Region,
				row.OrderCount, row.TotalSpent, row.AvgOrderValue, row.LastOrderDate)
		}
	})
}

// Results renders all four KPIs in order, blank-line separated.
func (r *Renderer) Results(res *kpi.Results, days int) {
	r.RepeatCustomers(res.RepeatCustomers)
	fmt.Fprintln(r.w)
	r.MonthlyTrends(res.MonthlyTrends)
	fmt.Fprintln(r.w)
	r.RegionalRevenue(res.RegionalRevenue)
	fmt.Fprintln(r.w)
	r.TopSpenders(res.TopSpenders, days)
}

// RunSummary renders the per-file outcomes and totals of one ingestion run.
func (r *Renderer) RunSummary(s *ingest.RunSummary) {
	r.title("INGESTION RUN " + s.RunID)
	if len(s.Outcomes) == 0 {
		fmt.Fprintln(r.w, "No files processed.")
		return
	}
	r.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "FILE\tSTATUS\tLOADED\tSKIPPED\tREASON")
		for _, o := range s.Outcomes {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
				o.FileName, statusLabel(o.Status), o.RecordsLoaded, o.RecordsSkipped, o.Reason)
		}
	})
	fmt.Fprintf(r.w, "\ncustomers loaded: %d\norders loaded: %d\nrecords skipped: %d\n",
		s.CustomersLoaded, s.OrdersLoaded, s.RecordsSkipped)
}

// Divergences renders the verify command's cross-backend comparison.
func (r *Renderer) Divergences(ref, other string, divs []kpi.Divergence) {
	if len(divs) == 0 {
		fmt.Fprintf(r.w, "%s %s agrees with %s\n",
			color.New(color.FgGreen).Sprint("✓"), other, ref)
		return
	}
	fmt.Fprintf(r.w, "%s %s diverges from %s:\n",
		color.New(color.FgRed).Sprint("✗"), other, ref)
	for _, d := range divs {
		fmt.Fprintf(r.w, "  %s: %s\n", d.KPI, d.Detail)
	}
}

func statusLabel(status string) string {
	switch status {
	case ingest.StatusLoaded:
		return color.New(color.FgGreen).Sprint(status)
	case ingest.StatusRejected:
		return color.New(color.FgRed).Sprint(status)
	default:
		return status
	}
}
