package kpi

// The shared contract suite: every test in this file runs identically
// against all three backends. A backend that diverges from the others
// beyond the monetary tolerance fails here, at test time.

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"orderpulse/internal/model"
	"orderpulse/internal/store"
	"orderpulse/internal/testutil"
)

// clockNow pins "now" for every test: the scenario orders all land inside
// the default 30-day window ending 2024-11-01.
var clockNow = time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)

func seedStore(t *testing.T, customers []model.Customer, orders []model.Order) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	sess, err := st.Begin(ctx)
	require.NoError(t, err)
	defer sess.Close()
	for _, c := range customers {
		_, err := sess.AddCustomer(ctx, c)
		require.NoError(t, err)
	}
	for _, o := range orders {
		require.NoError(t, sess.AddOrder(ctx, o))
	}
	require.NoError(t, sess.Commit())
	return st
}

// allBackends builds every execution strategy over the same committed data,
// including partition counts that force merges across partition boundaries.
func allBackends(t *testing.T, customers []model.Customer, orders []model.Order) []Backend {
	t.Helper()
	st := seedStore(t, customers, orders)
	snap, err := st.Snapshot(context.Background())
	require.NoError(t, err)

	clock := testutil.NewFixedClock(clockNow)
	return []Backend{
		NewSQLBackend(st, clock),
		NewMemoryBackend(snap, clock),
		NewPartitionedBackend(snap, clock, 2),
		NewPartitionedBackend(snap, clock, 3),
	}
}

func date(s string) time.Time {
	t, err := time.Parse(model.DateTimeLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// scenarioCustomers and scenarioOrders are the reference scenario with
// known-good expected values for all four KPIs.
func scenarioCustomers() []model.Customer {
	return []model.Customer{
		{CustomerName: "Amit", MobileNumber: "9876543210", Region: "North"},
		{CustomerName: "Priya", MobileNumber: "9876543211", Region: "West"},
		{CustomerName: "Rahul", MobileNumber: "9876543212", Region: "South"},
		{CustomerName: "Sneha", MobileNumber: "9876543213", Region: "South"},
	}
}

func scenarioOrders() []model.Order {
	return []model.Order{
		{OrderID: 1001, MobileNumber: "9876543210", OrderDateTime: date("2024-10-15 10:30:00"), SKUID: "SKU001", SKUCount: 2, TotalAmount: 5500.00},
		{OrderID: 1002, MobileNumber: "9876543211", OrderDateTime: date("2024-10-16 14:20:00"), SKUID: "SKU002", SKUCount: 1, TotalAmount: 3200.50},
		{OrderID: 1003, MobileNumber: "9876543210", OrderDateTime: date("2024-10-20 09:15:00"), SKUID: "SKU003", SKUCount: 3, TotalAmount: 8750.00},
		{OrderID: 1004, MobileNumber: "9876543212", OrderDateTime: date("2024-10-22 16:45:00"), SKUID: "SKU001", SKUCount: 1, TotalAmount: 2750.00},
		{OrderID: 1005, MobileNumber: "9876543211", OrderDateTime: date("2024-10-25 11:30:00"), SKUID: "SKU004", SKUCount: 2, TotalAmount: 4500.00},
	}
}

// dirtyCustomers/dirtyOrders extend the scenario with the messy cases the
// pipeline tolerates: orphan orders, a sub-10-digit mobile, customers with
// no orders, and orders spread across months and years.
func dirtyCustomers() []model.Customer {
	return append(scenarioCustomers(),
		model.Customer{CustomerName: "Vikram", MobileNumber: "12345", Region: "East"},
	)
}

func dirtyOrders() []model.Order {
	return append(scenarioOrders(),
		// Orphan: no customer carries this mobile.
		model.Order{OrderID: 1006, MobileNumber: "9999999999", OrderDateTime: date("2024-09-10 08:00:00"), SKUID: "SKU005", SKUCount: 1, TotalAmount: 1200.00},
		// Sub-10-digit mobile still joins.
		model.Order{OrderID: 1007, MobileNumber: "12345", OrderDateTime: date("2024-10-28 12:00:00"), SKUID: "SKU006", SKUCount: 1, TotalAmount: 100.00},
		model.Order{OrderID: 1008, MobileNumber: "9876543210", OrderDateTime: date("2024-09-05 09:00:00"), SKUID: "SKU001", SKUCount: 1, TotalAmount: 450.25},
		model.Order{OrderID: 1009, MobileNumber: "9876543211", OrderDateTime: date("2023-12-31 23:59:59"), SKUID: "SKU002", SKUCount: 1, TotalAmount: 99.99},
	)
}

func TestScenario_RepeatCustomers(t *testing.T) {
	for _, b := range allBackends(t, scenarioCustomers(), scenarioOrders()) {
		t.Run(b.Name(), func(t *testing.T) {
			rows, err := b.RepeatCustomers(context.Background())
			require.NoError(t, err)

			require.Len(t, rows, 2)
			// Both have 2 orders; ties break on mobile ascending.
			require.Equal(t, "Amit", rows[0].CustomerName)
			require.Equal(t, 2, rows[0].OrderCount)
			require.Equal(t, "North", rows[0].Region)
			require.Equal(t, "Priya", rows[1].CustomerName)
			require.Equal(t, 2, rows[1].OrderCount)
		})
	}
}

func TestScenario_MonthlyOrderTrends(t *testing.T) {
	for _, b := range allBackends(t, scenarioCustomers(), scenarioOrders()) {
		t.Run(b.Name(), func(t *testing.T) {
			rows, err := b.MonthlyOrderTrends(context.Background())
			require.NoError(t, err)

			require.Len(t, rows, 1)
			require.Equal(t, 2024, rows[0].Year)
			require.Equal(t, 10, rows[0].Month)
			require.Equal(t, 5, rows[0].OrderCount)
			require.InDelta(t, 24700.50, rows[0].TotalRevenue, MoneyTolerance)
		})
	}
}

func TestScenario_RegionalRevenue(t *testing.T) {
	for _, b := range allBackends(t, scenarioCustomers(), scenarioOrders()) {
		t.Run(b.Name(), func(t *testing.T) {
			rows, err := b.RegionalRevenue(context.Background())
			require.NoError(t, err)

			require.Len(t, rows, 3)

			// Descending by revenue: North 14250.00, West 7700.50, South 2750.00.
			require.Equal(t, "North", rows[0].Region)
			require.Equal(t, 1, rows[0].CustomerCount)
			require.Equal(t, 2, rows[0].OrderCount)
			require.InDelta(t, 14250.00, rows[0].TotalRevenue, MoneyTolerance)
			require.InDelta(t, 7125.00, rows[0].AvgOrderValue, MoneyTolerance)

			require.Equal(t, "West", rows[1].Region)
			require.Equal(t, 1, rows[1].CustomerCount)
			require.Equal(t, 2, rows[1].OrderCount)
			require.InDelta(t, 7700.50, rows[1].TotalRevenue, MoneyTolerance)

			// Sneha has no orders: South counts only Rahul.
			require.Equal(t, "South", rows[2].Region)
			require.Equal(t, 1, rows[2].CustomerCount)
			require.Equal(t, 1, rows[2].OrderCount)
			require.InDelta(t, 2750.00, rows[2].TotalRevenue, MoneyTolerance)
		})
	}
}

func TestScenario_TopSpenders(t *testing.T) {
	for _, b := range allBackends(t, scenarioCustomers(), scenarioOrders()) {
		t.Run(b.Name(), func(t *testing.T) {
			rows, err := b.TopSpenders(context.Background(), 30, 10)
			require.NoError(t, err)

			require.Len(t, rows, 3)
			require.Equal(t, "Amit", rows[0].CustomerName)
			require.InDelta(t, 14250.00, rows[0].TotalSpent, MoneyTolerance)
			require.Equal(t, "2024-10-20", rows[0].LastOrderDate)

			require.Equal(t, "Priya", rows[1].CustomerName)
			require.InDelta(t, 7700.50, rows[1].TotalSpent, MoneyTolerance)
			require.Equal(t, "2024-10-25", rows[1].LastOrderDate)

			require.Equal(t, "Rahul", rows[2].CustomerName)
			require.InDelta(t, 2750.00, rows[2].TotalSpent, MoneyTolerance)
			require.Equal(t, "2024-10-22", rows[2].LastOrderDate)
		})
	}
}

func TestTopSpenders_WindowAndLimit(t *testing.T) {
	for _, b := range allBackends(t, dirtyCustomers(), dirtyOrders()) {
		t.Run(b.Name(), func(t *testing.T) {
			ctx := context.Background()

			// 30-day window ending 2024-11-01 excludes the September and
			// December orders but includes the sub-10-digit join.
			rows, err := b.TopSpenders(ctx, 30, 10)
			require.NoError(t, err)
			require.Len(t, rows, 4)
			for _, r := range rows {
				require.NotEqual(t, "9999999999", r.MobileNumber, "orphan order must not surface a spender")
			}
			require.Equal(t, "12345", rows[3].MobileNumber)
			require.InDelta(t, 100.00, rows[3].TotalSpent, MoneyTolerance)

			// A wider window picks up September; limit truncates.
			rows, err = b.TopSpenders(ctx, 90, 2)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			require.Equal(t, "Amit", rows[0].CustomerName)
			require.InDelta(t, 14700.25, rows[0].TotalSpent, MoneyTolerance)
		})
	}
}

func TestTopSpenders_Defaults(t *testing.T) {
	for _, b := range allBackends(t, scenarioCustomers(), scenarioOrders()) {
		t.Run(b.Name(), func(t *testing.T) {
			// days/limit <= 0 fall back to the 30-day / top-10 defaults.
			rows, err := b.TopSpenders(context.Background(), 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 3)
		})
	}
}

// A zoned clock must not move the window boundary. Stored timestamps are
// naive wall time, so every backend reduces "now" to the same wall-time
// cutoff whatever zone the process clock carries.
func TestTopSpenders_WindowIgnoresClockZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)
	zoned := testutil.NewFixedClock(time.Date(2024, 11, 1, 10, 0, 0, 0, ist))

	customers := []model.Customer{
		{CustomerName: "Amit", MobileNumber: "9876543210", Region: "North"},
	}
	orders := []model.Order{
		// Three hours before the 2024-10-02 10:00:00 wall-time cutoff.
		{OrderID: 2001, MobileNumber: "9876543210", OrderDateTime: date("2024-10-02 07:00:00"), SKUID: "SKU001", SKUCount: 1, TotalAmount: 500.00},
		{OrderID: 2002, MobileNumber: "9876543210", OrderDateTime: date("2024-10-20 09:00:00"), SKUID: "SKU002", SKUCount: 1, TotalAmount: 750.00},
	}

	st := seedStore(t, customers, orders)
	snap, err := st.Snapshot(context.Background())
	require.NoError(t, err)

	backends := []Backend{
		NewSQLBackend(st, zoned),
		NewMemoryBackend(snap, zoned),
		NewPartitionedBackend(snap, zoned, 2),
	}
	for _, b := range backends {
		t.Run(b.Name(), func(t *testing.T) {
			rows, err := b.TopSpenders(context.Background(), 30, 10)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.Equal(t, 1, rows[0].OrderCount)
			require.Equal(t, 750.00, rows[0].TotalSpent)
		})
	}

	reference, err := All(context.Background(), backends[0], 30, 10)
	require.NoError(t, err)
	for _, b := range backends[1:] {
		got, err := All(context.Background(), b, 30, 10)
		require.NoError(t, err)
		divs := Compare(reference, got)
		require.Empty(t, divs, "backends diverged under zoned clock: %v", divs)
	}
}

// A clock with sub-second precision truncates to whole seconds, so an order
// stored exactly at the cutoff stays inside the window for every backend.
func TestTopSpenders_WindowTruncatesSubseconds(t *testing.T) {
	frac := testutil.NewFixedClock(time.Date(2024, 11, 1, 10, 0, 0, 987654321, time.UTC))

	customers := []model.Customer{
		{CustomerName: "Amit", MobileNumber: "9876543210", Region: "North"},
	}
	orders := []model.Order{
		{OrderID: 2001, MobileNumber: "9876543210", OrderDateTime: date("2024-10-02 10:00:00"), SKUID: "SKU001", SKUCount: 1, TotalAmount: 500.00},
	}

	st := seedStore(t, customers, orders)
	snap, err := st.Snapshot(context.Background())
	require.NoError(t, err)

	backends := []Backend{
		NewSQLBackend(st, frac),
		NewMemoryBackend(snap, frac),
		NewPartitionedBackend(snap, frac, 2),
	}
	for _, b := range backends {
		t.Run(b.Name(), func(t *testing.T) {
			rows, err := b.TopSpenders(context.Background(), 30, 10)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			require.Equal(t, "2024-10-02", rows[0].LastOrderDate)
		})
	}
}

func TestBackendsAgree_DirtyData(t *testing.T) {
	backends := allBackends(t, dirtyCustomers(), dirtyOrders())
	ctx := context.Background()

	reference, err := All(ctx, backends[0], 30, 10)
	require.NoError(t, err)

	for _, b := range backends[1:] {
		t.Run(backends[0].Name()+"_vs_"+b.Name(), func(t *testing.T) {
			got, err := All(ctx, b, 30, 10)
			require.NoError(t, err)
			divs := Compare(reference, got)
			require.Empty(t, divs, "backends diverged: %v", divs)
		})
	}
}

func TestBackendsAgree_EmptyStore(t *testing.T) {
	backends := allBackends(t, nil, nil)
	ctx := context.Background()

	for _, b := range backends {
		t.Run(b.Name(), func(t *testing.T) {
			res, err := All(ctx, b, 30, 10)
			require.NoError(t, err)
			require.Empty(t, res.RepeatCustomers)
			require.Empty(t, res.MonthlyTrends)
			require.Empty(t, res.RegionalRevenue)
			require.Empty(t, res.TopSpenders)
		})
	}
}

// Monthly trends must account for every committed order: summing the rows
// reproduces the total order count and total revenue of a manual scan.
func TestMonthlyTrends_SumMatchesManualScan(t *testing.T) {
	orders := dirtyOrders()
	var wantCount int
	var wantRevenue float64
	for _, o := range orders {
		wantCount++
		wantRevenue += o.TotalAmount
	}

	for _, b := range allBackends(t, dirtyCustomers(), orders) {
		t.Run(b.Name(), func(t *testing.T) {
			rows, err := b.MonthlyOrderTrends(context.Background())
			require.NoError(t, err)

			var gotCount int
			var gotRevenue float64
			for _, r := range rows {
				gotCount += r.OrderCount
				gotRevenue += r.TotalRevenue
			}
			require.Equal(t, wantCount, gotCount)
			// Per-month rounding can widen the error to a cent per row.
			require.InDelta(t, wantRevenue, gotRevenue, MoneyTolerance*float64(len(rows)))
		})
	}
}

// Repeat customers never include a single-order customer and always include
// every customer with two or more joined orders.
func TestRepeatCustomers_Threshold(t *testing.T) {
	customers := dirtyCustomers()
	orders := dirtyOrders()

	ordersPerMobile := make(map[string]int)
	for _, o := range orders {
		ordersPerMobile[o.MobileNumber]++
	}

	for _, b := range allBackends(t, customers, orders) {
		t.Run(b.Name(), func(t *testing.T) {
			rows, err := b.RepeatCustomers(context.Background())
			require.NoError(t, err)

			got := make(map[string]int)
			for _, r := range rows {
				got[r.MobileNumber] = r.OrderCount
				require.Greater(t, r.OrderCount, 1)
			}
			for _, c := range customers {
				if ordersPerMobile[c.MobileNumber] >= 2 {
					require.Contains(t, got, c.MobileNumber)
					require.Equal(t, ordersPerMobile[c.MobileNumber], got[c.MobileNumber])
				}
			}
		})
	}
}

// A region's customer_count never exceeds the number of distinct customers
// in that region who placed at least one order.
func TestRegionalRevenue_CustomerCountBound(t *testing.T) {
	customers := dirtyCustomers()
	orders := dirtyOrders()

	withOrders := make(map[string]int)
	ordered := make(map[string]bool)
	for _, o := range orders {
		ordered[o.MobileNumber] = true
	}
	for _, c := range customers {
		if ordered[c.MobileNumber] {
			withOrders[c.Region]++
		}
	}

	for _, b := range allBackends(t, customers, orders) {
		t.Run(b.Name(), func(t *testing.T) {
			rows, err := b.RegionalRevenue(context.Background())
			require.NoError(t, err)
			for _, r := range rows {
				require.LessOrEqual(t, r.CustomerCount, withOrders[r.Region],
					"region %s customer_count exceeds customers with orders", r.Region)
			}
		})
	}
}

// Orphan orders are excluded from customer-joined KPIs but still count in
// the order-only monthly trend.
func TestOrphanOrders_JoinSemantics(t *testing.T) {
	customers := scenarioCustomers()
	orders := append(scenarioOrders(),
		model.Order{OrderID: 2001, MobileNumber: "9999999999", OrderDateTime: date("2024-10-30 10:00:00"), SKUID: "SKU009", SKUCount: 1, TotalAmount: 777.77},
	)

	for _, b := range allBackends(t, customers, orders) {
		t.Run(b.Name(), func(t *testing.T) {
			ctx := context.Background()

			monthly, err := b.MonthlyOrderTrends(ctx)
			require.NoError(t, err)
			require.Equal(t, 6, monthly[0].OrderCount)
			require.InDelta(t, 25478.27, monthly[0].TotalRevenue, MoneyTolerance)

			regional, err := b.RegionalRevenue(ctx)
			require.NoError(t, err)
			var total float64
			for _, r := range regional {
				total += r.TotalRevenue
			}
			require.InDelta(t, 24700.50, total, MoneyTolerance*float64(len(regional)),
				"orphan revenue must not leak into regional revenue")
		})
	}
}

// KPI computation is idempotent over a fixed snapshot and clock.
func TestKPIs_Idempotent(t *testing.T) {
	for _, b := range allBackends(t, dirtyCustomers(), dirtyOrders()) {
		t.Run(b.Name(), func(t *testing.T) {
			ctx := context.Background()
			first, err := All(ctx, b, 30, 10)
			require.NoError(t, err)
			second, err := All(ctx, b, 30, 10)
			require.NoError(t, err)
			require.Empty(t, Compare(first, second))
		})
	}
}

func TestRound2(t *testing.T) {
	require.Equal(t, 24700.50, round2(24700.499999999996))
	require.Equal(t, 0.0, round2(0))
	require.Equal(t, -1.23, round2(-1.2349))
	require.False(t, math.Signbit(round2(0.001)))
}
