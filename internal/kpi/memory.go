package kpi

import (
	"context"
	"time"

	"orderpulse/internal/model"
)

// MemoryBackend computes every KPI by single-pass aggregation over a
// private snapshot. The snapshot is loaded once per run and never mutated;
// the backend holds no other state.
type MemoryBackend struct {
	snap  model.Snapshot
	clock Clock
}

// NewMemoryBackend creates the in-memory backend over a snapshot.
// A nil clock defaults to the system clock.
func NewMemoryBackend(snap model.Snapshot, clock Clock) *MemoryBackend {
	if clock == nil {
		clock = SystemClock()
	}
	return &MemoryBackend{snap: snap, clock: clock}
}

// Name implements Backend.
func (b *MemoryBackend) Name() string { return "memory" }

// RepeatCustomers implements Backend.
func (b *MemoryBackend) RepeatCustomers(ctx context.Context) ([]RepeatCustomer, error) {
	counts := make(map[string]int)
	for _, o := range b.snap.Orders {
		counts[o.MobileNumber]++
	}

	result := []RepeatCustomer{}
	for _, c := range b.snap.Customers {
		if n := counts[c.MobileNumber]; n > 1 {
			result = append(result, RepeatCustomer{
				CustomerID:   c.CustomerID,
				CustomerName: c.CustomerName,
				MobileNumber: c.MobileNumber,
				Region:       c.Region,
				OrderCount:   n,
			})
		}
	}
	sortRepeatCustomers(result)
	return result, nil
}

// MonthlyOrderTrends implements Backend.
func (b *MemoryBackend) MonthlyOrderTrends(ctx context.Context) ([]MonthlyTrend, error) {
	type agg struct {
		count int
		sum   float64
	}
	groups := make(map[[2]int]*agg)
	for _, o := range b.snap.Orders {
		key := [2]int{o.OrderDateTime.Year(), int(o.OrderDateTime.Month())}
		a := groups[key]
		if a == nil {
			a = &agg{}
			groups[key] = a
		}
		a.count++
		a.sum += o.TotalAmount
	}

	result := []MonthlyTrend{}
	for key, a := range groups {
		result = append(result, MonthlyTrend{
			Year:         key[0],
			Month:        key[1],
			OrderCount:   a.count,
			TotalRevenue: round2(a.sum),
		})
	}
	sortMonthlyTrends(result)
	return result, nil
}

// RegionalRevenue implements Backend.
func (b *MemoryBackend) RegionalRevenue(ctx context.Context) ([]RegionalRevenue, error) {
	customersByMobile := make(map[string]model.Customer, len(b.snap.Customers))
	for _, c := range b.snap.Customers {
		customersByMobile[c.MobileNumber] = c
	}

	type agg struct {
		customers map[int64]struct{}
		orders    int
		sum       float64
	}
	groups := make(map[string]*agg)
	for _, o := range b.snap.Orders {
		// Inner join: orders with no matching customer are excluded.
		c, ok := customersByMobile[o.MobileNumber]
		if !ok {
			continue
		}
		a := groups[c.Region]
		if a == nil {
			a = &agg{customers: make(map[int64]struct{})}
			groups[c.Region] = a
		}
		a.customers[c.CustomerID] = struct{}{}
		a.orders++
		a.sum += o.TotalAmount
	}

	result := []RegionalRevenue{}
	for region, a := range groups {
		result = append(result, RegionalRevenue{
			Region:        region,
			CustomerCount: len(a.customers),
			OrderCount:    a.orders,
			TotalRevenue:  round2(a.sum),
			AvgOrderValue: round2(a.sum / float64(a.orders)),
		})
	}
	sortRegionalRevenue(result)
	return result, nil
}

// TopSpenders implements Backend.
func (b *MemoryBackend) TopSpenders(ctx context.Context, days, limit int) ([]TopSpender, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	cutoff := windowCutoff(b.clock.Now(), days)

	type agg struct {
		orders int
		sum    float64
		last   time.Time
	}
	groups := make(map[string]*agg)
	for _, o := range b.snap.Orders {
		if o.OrderDateTime.Before(cutoff) {
			continue
		}
		a := groups[o.MobileNumber]
		if a == nil {
			a = &agg{}
			groups[o.MobileNumber] = a
		}
		a.orders++
		a.sum += o.TotalAmount
		if o.OrderDateTime.After(a.last) {
			a.last = o.OrderDateTime
		}
	}

	result := []TopSpender{}
	for _, c := range b.snap.Customers {
		a, ok := groups[c.MobileNumber]
		if !ok {
			continue
		}
		result = append(result, TopSpender{
			CustomerID:    c.CustomerID,
			CustomerName:  c.CustomerName,
			MobileNumber:  c.MobileNumber,
			Region:        c.Region,
			OrderCount:    a.orders,
			TotalSpent:    round2(a.sum),
			AvgOrderValue: round2(a.sum / float64(a.orders)),
			LastOrderDate: a.last.Format(model.DateLayout),
		})
	}
	sortTopSpenders(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
