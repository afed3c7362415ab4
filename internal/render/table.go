package render

import (
	"strconv"

	"orderpulse/internal/artifact"
	"orderpulse/internal/kpi"
)

// The *Table functions turn KPI rows into the tabular payload the artifact
// store persists. Cell values use the same formatting as the rendered
// tables so a delimited export matches what the CLI displayed.

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RepeatCustomersTable converts the repeat-customers KPI for export.
func RepeatCustomersTable(rows []kpi.RepeatCustomer) *artifact.Table {
	tbl := &artifact.Table{
		Columns: []string{"customer_id", "customer_name", "mobile_number", "region", "order_count"},
	}
	for _, r := range rows {
		tbl.Rows = append(tbl.Rows, []string{
			strconv.FormatInt(r.CustomerID, 10), r.CustomerName, r.MobileNumber,
			r.Region, strconv.Itoa(r.OrderCount),
		})
	}
	return tbl
}

// MonthlyTrendsTable converts the monthly order trends KPI for export.
func MonthlyTrendsTable(rows []kpi.MonthlyTrend) *artifact.Table {
	tbl := &artifact.Table{
		Columns: []string{"year", "month", "order_count", "total_revenue"},
	}
	for _, r := range rows {
		tbl.Rows = append(tbl.Rows, []string{
			strconv.Itoa(r.Year), strconv.Itoa(r.Month),
			strconv.Itoa(r.OrderCount), money(r.TotalRevenue),
		})
	}
	return tbl
}

// RegionalRevenueTable converts the regional revenue KPI for export.
func RegionalRevenueTable(rows []kpi.RegionalRevenue) *artifact.Table {
	tbl := &artifact.Table{
		Columns: []string{"region", "customer_count", "order_count", "total_revenue", "avg_order_value"},
	}
	for _, r := range rows {
		tbl.Rows = append(tbl.Rows, []string{
			r.Region, strconv.Itoa(r.CustomerCount), strconv.Itoa(r.OrderCount),
			money(r.TotalRevenue), money(r.AvgOrderValue),
		})
	}
	return tbl
}

// TopSpendersTable converts the top spenders KPI for export.
func TopSpendersTable(rows []kpi.TopSpender) *artifact.Table {
	tbl := &artifact.Table{
		Columns: []string{"customer_id", "customer_name", "mobile_number", "region", "order_count", "total_spent", "avg_order_value", "last_order_date"},
	}
	for _, r := range rows {
		tbl.Rows = append(tbl.Rows, []string{
			strconv.FormatInt(r.CustomerID, 10), r.CustomerName, r.MobileNumber, r.Region,
			strconv.Itoa(r.OrderCount), money(r.TotalSpent), money(r.AvgOrderValue), r.LastOrderDate,
		})
	}
	return tbl
}
