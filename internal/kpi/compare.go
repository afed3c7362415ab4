package kpi

import (
	"fmt"
	"math"
)

// MoneyTolerance is the maximum allowed absolute difference on monetary
// fields when comparing backend results. Count and grouping fields must
// match exactly.
const MoneyTolerance = 0.01

// Divergence describes one disagreement between two backends' results.
type Divergence struct {
	KPI    string
	Detail string
}

func (d Divergence) String() string {
	return d.KPI + ": " + d.Detail
}

// Compare checks two result sets against the cross-backend consistency
// contract and returns every divergence found. An empty slice means the
// backends agree. This is a verification aid for tests and the verify
// command; it is never raised as a runtime error by KPI computation.
func Compare(a, b *Results) []Divergence {
	var divs []Divergence

	if len(a.RepeatCustomers) != len(b.RepeatCustomers) {
		divs = append(divs, Divergence{"repeat_customers", fmt.Sprintf("row count %d vs %d", len(a.RepeatCustomers), len(b.RepeatCustomers))})
	} else {
		for i := range a.RepeatCustomers {
			x, y := a.RepeatCustomers[i], b.RepeatCustomers[i]
			if x != y {
				divs = append(divs, Divergence{"repeat_customers", fmt.Sprintf("row %d: %+v vs %+v", i, x, y)})
			}
		}
	}

	if len(a.MonthlyTrends) != len(b.MonthlyTrends) {
		divs = append(divs, Divergence{"monthly_order_trends", fmt.Sprintf("row count %d vs %d", len(a.MonthlyTrends), len(b.MonthlyTrends))})
	} else {
		for i := range a.MonthlyTrends {
			x, y := a.MonthlyTrends[i], b.MonthlyTrends[i]
			if x.Year != y.Year || x.Month != y.Month || x.OrderCount != y.OrderCount {
				divs = append(divs, Divergence{"monthly_order_trends", fmt.Sprintf("row %d: %+v vs %+v", i, x, y)})
			} else if !moneyEqual(x.TotalRevenue, y.TotalRevenue) {
				divs = append(divs, Divergence{"monthly_order_trends", fmt.Sprintf("row %d: total_revenue %.2f vs %.2f", i, x.TotalRevenue, y.TotalRevenue)})
			}
		}
	}

	if len(a.RegionalRevenue) != len(b.RegionalRevenue) {
		divs = append(divs, Divergence{"regional_revenue", fmt.Sprintf("row count %d vs %d", len(a.RegionalRevenue), len(b.RegionalRevenue))})
	} else {
		for i := range a.RegionalRevenue {
			x, y := a.RegionalRevenue[i], b.RegionalRevenue[i]
			if x.Region != y.Region || x.CustomerCount != y.CustomerCount || x.OrderCount != y.OrderCount {
				divs = append(divs, Divergence{"regional_revenue", fmt.Sprintf("row %d: %+v vs %+v", i, x, y)})
			} else if !moneyEqual(x.TotalRevenue, y.TotalRevenue) || !moneyEqual(x.AvgOrderValue, y.AvgOrderValue) {
				divs = append(divs, Divergence{"regional_revenue", fmt.Sprintf("row %d: revenue %.2f/%.2f vs %.2f/%.2f", i, x.TotalRevenue, x.AvgOrderValue, y.TotalRevenue, y.AvgOrderValue)})
			}
		}
	}

	if len(a.TopSpenders) != len(b.TopSpenders) {
		divs = append(divs, Divergence{"top_spenders", fmt.Sprintf("row count %d vs %d", len(a.TopSpenders), len(b.TopSpenders))})
	} else {
		for i := range a.TopSpenders {
			x, y := a.TopSpenders[i], b.TopSpenders[i]
			if x.CustomerID != y.CustomerID || x.CustomerName != y.CustomerName ||
				x.MobileNumber != y.MobileNumber || x.Region != y.Region ||
				x.OrderCount != y.OrderCount || x.LastOrderDate != y.LastOrderDate {
				divs = append(divs, Divergence{"top_spenders", fmt.Sprintf("row %d: %+v vs %+v", i, x, y)})
			} else if !moneyEqual(x.TotalSpent, y.TotalSpent) || !moneyEqual(x.AvgOrderValue, y.AvgOrderValue) {
				divs = append(divs, Divergence{"top_spenders", fmt.Sprintf("row %d: spent %.2f/%.2f vs %.2f/%.2f", i, x.TotalSpent, x.AvgOrderValue, y.TotalSpent, y.AvgOrderValue)})
			}
		}
	}

	return divs
}

func moneyEqual(a, b float64) bool {
	return math.Abs(a-b) <= MoneyTolerance
}
