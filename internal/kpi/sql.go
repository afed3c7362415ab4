package kpi

import (
	"context"
	"fmt"

	"orderpulse/internal/model"
	"orderpulse/internal/store"
)

// SQLBackend pushes every KPI down to the relational store as one query.
// Grouping, joins, filtering, ordering, and monetary rounding all happen in
// SQL; Go only scans rows. Each call runs on its own scoped connection from
// the store's pool and holds no state between calls.
type SQLBackend struct {
	store *store.Store
	clock Clock
}

// NewSQLBackend creates the query-pushdown backend.
// A nil clock defaults to the system clock.
func NewSQLBackend(st *store.Store, clock Clock) *SQLBackend {
	if clock == nil {
		clock = SystemClock()
	}
	return &SQLBackend{store: st, clock: clock}
}

// Name implements Backend.
func (b *SQLBackend) Name() string { return "sql" }

// RepeatCustomers implements Backend.
func (b *SQLBackend) RepeatCustomers(ctx context.Context) ([]RepeatCustomer, error) {
	rows, err := b.store.Query(ctx, `
		SELECT c.customer_id, c.customer_name, c.mobile_number, c.region,
		       COUNT(o.order_id) AS order_count
		FROM customers c
		JOIN orders o ON c.mobile_number = o.mobile_number
		GROUP BY c.customer_id, c.customer_name, c.mobile_number, c.region
		HAVING COUNT(o.order_id) > 1
		ORDER BY order_count DESC, c.mobile_number ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("repeat customers: %w", err)
	}
	defer rows.Close()

	result := []RepeatCustomer{}
	for rows.Next() {
		var r RepeatCustomer
		if err := rows.Scan(&r.CustomerID, &r.CustomerName, &r.MobileNumber, &r.Region, &r.OrderCount); err != nil {
			return nil, fmt.Errorf("repeat customers: scan: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repeat customers: iterate: %w", err)
	}
	return result, nil
}

// MonthlyOrderTrends implements Backend.
func (b *SQLBackend) MonthlyOrderTrends(ctx context.Context) ([]MonthlyTrend, error) {
	rows, err := b.store.Query(ctx, `
		SELECT CAST(strftime('%Y', order_date_time) AS INTEGER) AS year,
		       CAST(strftime('%m', order_date_time) AS INTEGER) AS month,
		       COUNT(order_id) AS order_count,
		       ROUND(SUM(total_amount), 2) AS total_revenue
		FROM orders
		GROUP BY year, month
		ORDER BY year ASC, month ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("monthly trends: %w", err)
	}
	defer rows.Close()

	result := []MonthlyTrend{}
	for rows.Next() {
		var r MonthlyTrend
		if err := rows.Scan(&r.Year, &r.Month, &r.OrderCount, &r.TotalRevenue); err != nil {
			return nil, fmt.Errorf("monthly trends: scan: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monthly trends: iterate: %w", err)
	}
	return result, nil
}

// RegionalRevenue implements Backend.
func (b *SQLBackend) RegionalRevenue(ctx context.Context) ([]RegionalRevenue, error) {
	rows, err := b.store.Query(ctx, `
		SELECT c.region,
		       COUNT(DISTINCT c.customer_id) AS customer_count,
		       COUNT(o.order_id) AS order_count,
		       ROUND(SUM(o.total_amount), 2) AS total_revenue,
		       ROUND(AVG(o.total_amount), 2) AS avg_order_value
		FROM customers c
		JOIN orders o ON c.mobile_number = o.mobile_number
		GROUP BY c.region
		ORDER BY total_revenue DESC, c.region ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("regional revenue: %w", err)
	}
	defer rows.Close()

	result := []RegionalRevenue{}
	for rows.Next() {
		var r RegionalRevenue
		if err := rows.Scan(&r.Region, &r.CustomerCount, &r.OrderCount, &r.TotalRevenue, &r.AvgOrderValue); err != nil {
			return nil, fmt.Errorf("regional revenue: scan: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("regional revenue: iterate: %w", err)
	}
	return result, nil
}

// TopSpenders implements Backend.
func (b *SQLBackend) TopSpenders(ctx context.Context, days, limit int) ([]TopSpender, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	cutoff := windowCutoff(b.clock.Now(), days).Format(model.DateTimeLayout)

	rows, err := b.store.Query(ctx, `
		SELECT c.customer_id, c.customer_name, c.mobile_number, c.region,
		       COUNT(o.order_id) AS order_count,
		       ROUND(SUM(o.total_amount), 2) AS total_spent,
		       ROUND(AVG(o.total_amount), 2) AS avg_order_value,
		       strftime('%Y-%m-%d', MAX(o.order_date_time)) AS last_order_date
		FROM customers c
		JOIN orders o ON c.mobile_number = o.mobile_number
		WHERE o.order_date_time >= ?
		GROUP BY c.customer_id, c.customer_name, c.mobile_number, c.region
		ORDER BY total_spent DESC, c.mobile_number ASC
		LIMIT ?
	`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("top spenders: %w", err)
	}
	defer rows.Close()

	result := []TopSpender{}
	for rows.Next() {
		var r TopSpender
		if err := rows.Scan(&r.CustomerID, &r.CustomerName, &r.MobileNumber, &r.Region,
			&r.OrderCount, &r.TotalSpent, &r.AvgOrderValue, &r.LastOrderDate); err != nil {
			return nil, fmt.Errorf("top spenders: scan: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top spenders: iterate: %w", err)
	}
	return result, nil
}
