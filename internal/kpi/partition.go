package kpi

import (
	"context"
	"runtime"
	"sync"
	"time"

	"orderpulse/internal/model"
)

// PartitionedBackend computes KPIs by splitting the order set across
// independent partitions, aggregating each partition concurrently, and
// merging the partial aggregates into one coherent collection before any
// cross-partition join, final ordering, or rounding. Partial, un-merged
// partition results are never exposed as KPI output.
type PartitionedBackend struct {
	snap       model.Snapshot
	clock      Clock
	partitions int
}

// NewPartitionedBackend creates the partition-parallel backend.
// partitions <= 0 selects one partition per CPU. A nil clock defaults to
// the system clock.
func NewPartitionedBackend(snap model.Snapshot, clock Clock, partitions int) *PartitionedBackend {
	if clock == nil {
		clock = SystemClock()
	}
	if partitions <= 0 {
		partitions = runtime.NumCPU()
	}
	return &PartitionedBackend{snap: snap, clock: clock, partitions: partitions}
}

// Name implements Backend.
func (b *PartitionedBackend) Name() string { return "partitioned" }

// split slices the orders into contiguous partitions. The partition count
// never exceeds the order count, so no partition is empty.
func (b *PartitionedBackend) split() [][]model.Order {
	orders := b.snap.Orders
	n := b.partitions
	if n > len(orders) {
		n = len(orders)
	}
	if n <= 1 {
		if len(orders) == 0 {
			return nil
		}
		return [][]model.Order{orders}
	}
	parts := make([][]model.Order, 0, n)
	size := (len(orders) + n - 1) / n
	for start := 0; start < len(orders); start += size {
		end := start + size
		if end > len(orders) {
			end = len(orders)
		}
		parts = append(parts, orders[start:end])
	}
	return parts
}

// mapPartitions runs fn once per partition concurrently and collects the
// partial results. fn must not touch shared state.
func mapPartitions[T any](parts [][]model.Order, fn func([]model.Order) T) []T {
	partials := make([]T, len(parts))
	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		go func(i int, part []model.Order) {
			defer wg.Done()
			partials[i] = fn(part)
		}(i, part)
	}
	wg.Wait()
	return partials
}

// RepeatCustomers implements Backend.
func (b *PartitionedBackend) RepeatCustomers(ctx context.Context) ([]RepeatCustomer, error) {
	partials := mapPartitions(b.split(), func(part []model.Order) map[string]int {
		counts := make(map[string]int)
		for _, o := range part {
			counts[o.MobileNumber]++
		}
		return counts
	})

	// Merge before the customer join: per-partition counts are partial.
	merged := make(map[string]int)
	for _, p := range partials {
		for mobile, n := range p {
			merged[mobile] += n
		}
	}

	result := []RepeatCustomer{}
	for _, c := range b.snap.Customers {
		if n := merged[c.MobileNumber]; n > 1 {
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

type monthlyPartial struct {
	count int
	sum   float64
}

// MonthlyOrderTrends implements Backend.
func (b *PartitionedBackend) MonthlyOrderTrends(ctx context.Context) ([]MonthlyTrend, error) {
	partials := mapPartitions(b.split(), func(part []model.Order) map[[2]int]monthlyPartial {
		groups := make(map[[2]int]monthlyPartial)
		for _, o := range part {
			key := [2]int{o.OrderDateTime.Year(), int(o.OrderDateTime.Month())}
			a := groups[key]
			a.count++
			a.sum += o.TotalAmount
			groups[key] = a
		}
		return groups
	})

	// Merge all partitions before rounding: rounding partial sums would
	// accumulate error across partitions.
	merged := make(map[[2]int]monthlyPartial)
	for _, p := range partials {
		for key, a := range p {
			m := merged[key]
			m.count += a.count
			m.sum += a.sum
			merged[key] = m
		}
	}

	result := []MonthlyTrend{}
	for key, a := range merged {
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

type regionalPartial struct {
	customers map[int64]struct{}
	orders    int
	sum       float64
}

// RegionalRevenue implements Backend.
func (b *PartitionedBackend) RegionalRevenue(ctx context.Context) ([]RegionalRevenue, error) {
	customersByMobile := make(map[string]model.Customer, len(b.snap.Customers))
	for _, c := range b.snap.Customers {
		customersByMobile[c.MobileNumber] = c
	}

	partials := mapPartitions(b.split(), func(part []model.Order) map[string]*regionalPartial {
		groups := make(map[string]*regionalPartial)
		for _, o := range part {
			c, ok := customersByMobile[o.MobileNumber]
			if !ok {
				continue
			}
			a := groups[c.Region]
			if a == nil {
				a = &regionalPartial{customers: make(map[int64]struct{})}
				groups[c.Region] = a
			}
			a.customers[c.CustomerID] = struct{}{}
			a.orders++
			a.sum += o.TotalAmount
		}
		return groups
	})

	// A customer's orders may land in different partitions; the distinct
	// customer sets only become correct after the merge.
	merged := make(map[string]*regionalPartial)
	for _, p := range partials {
		for region, a := range p {
			m := merged[region]
			if m == nil {
				m = &regionalPartial{customers: make(map[int64]struct{})}
				merged[region] = m
			}
			for id := range a.customers {
				m.customers[id] = struct{}{}
			}
			m.orders += a.orders
			m.sum += a.sum
		}
	}

	result := []RegionalRevenue{}
	for region, a := range merged {
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

type spendPartial struct {
	orders int
	sum    float64
	last   time.Time
}

// TopSpenders implements Backend.
func (b *PartitionedBackend) TopSpenders(ctx context.Context, days, limit int) ([]TopSpender, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	cutoff := windowCutoff(b.clock.Now(), days)

	partials := mapPartitions(b.split(), func(part []model.Order) map[string]spendPartial {
		groups := make(map[string]spendPartial)
		for _, o := range part {
			if o.OrderDateTime.Before(cutoff) {
				continue
			}
			a := groups[o.MobileNumber]
			a.orders++
			a.sum += o.TotalAmount
			if o.OrderDateTime.After(a.last) {
				a.last = o.OrderDateTime
			}
			groups[o.MobileNumber] = a
		}
		return groups
	})

	merged := make(map[string]spendPartial)
	for _, p := range partials {
		for mobile, a := range p {
			m := merged[mobile]
			m.orders += a.orders
			m.sum += a.sum
			if a.last.After(m.last) {
				m.last = a.last
			}
			merged[mobile] = m
		}
	}

	result := []TopSpender{}
	for _, c := range b.snap.Customers {
		a, ok := merged[c.MobileNumber]
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
