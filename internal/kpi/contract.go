package kpi

import (
	"math"
	"sort"
	"time"

	"orderpulse/internal/model"
)

// This file encodes the backend-independent parts of the KPI contract:
// monetary rounding and result ordering. Every backend funnels through
// these helpers (the SQL backend expresses the same rules in SQL) so the
// ordering and rounding semantics are written down exactly once.

// round2 rounds a monetary value to 2 decimal places, half away from zero.
// Applied once, at output time - never to intermediate partial aggregates.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// windowCutoff computes the inclusive lower bound of a trailing window of
// the given number of days ending at now. Stored timestamps are naive wall
// time, so the cutoff is reduced to the same shape: formatted through the
// storage layout and re-parsed. That drops the clock's zone offset and
// truncates to whole seconds, giving every backend the exact boundary the
// SQL string comparison uses.
func windowCutoff(now time.Time, days int) time.Time {
	naive, err := time.Parse(model.DateTimeLayout, now.AddDate(0, 0, -days).Format(model.DateTimeLayout))
	if err != nil {
		// Unreachable: the string was produced by the same layout.
		panic(err)
	}
	return naive
}

// Ordering rules. Every backend breaks ties identically (mobile number or
// region ascending) so results stay deterministic across runs and
// strategies.

func sortRepeatCustomers(rows []RepeatCustomer) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].OrderCount != rows[j].OrderCount {
			return rows[i].OrderCount > rows[j].OrderCount
		}
		return rows[i].MobileNumber < rows[j].MobileNumber
	})
}

func sortMonthlyTrends(rows []MonthlyTrend) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
}

func sortRegionalRevenue(rows []RegionalRevenue) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalRevenue != rows[j].TotalRevenue {
			return rows[i].TotalRevenue > rows[j].TotalRevenue
		}
		return rows[i].Region < rows[j].Region
	})
}

func sortTopSpenders(rows []TopSpender) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSpent != rows[j].TotalSpent {
			return rows[i].TotalSpent > rows[j].TotalSpent
		}
		return rows[i].MobileNumber < rows[j].MobileNumber
	})
}
