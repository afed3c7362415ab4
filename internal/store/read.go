package store

import (
	"context"
	"fmt"
	"time"

	"orderpulse/internal/model"
)

// Snapshot reads every committed customer and order into memory.
// The in-memory KPI backends work from this private copy; results are
// ordered deterministically (customers by customer_id, orders by order_id).
//
// Returns empty slices (not nil) when a table is empty.
func (s *Store) Snapshot(ctx context.Context) (model.Snapshot, error) {
	customers, err := s.readCustomers(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	orders, err := s.readOrders(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Customers: customers, Orders: orders}, nil
}

func (s *Store) readCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_id, customer_name, mobile_number, region, created_at
		FROM customers
		ORDER BY customer_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		var created string
		if err := rows.Scan(&c.CustomerID, &c.CustomerName, &c.MobileNumber, &c.Region, &created); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.CreatedAt, err = parseStored(created)
		if err != nil {
			return nil, fmt.Errorf("customer %d: %w", c.CustomerID, err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

func (s *Store) readOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, mobile_number, order_date_time, sku_id, sku_count, total_amount, created_at
		FROM orders
		ORDER BY order_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		var orderDate, created string
		if err := rows.Scan(&o.OrderID, &o.MobileNumber, &orderDate, &o.SKUID, &o.SKUCount, &o.TotalAmount, &created); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.OrderDateTime, err = parseStored(orderDate)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", o.OrderID, err)
		}
		o.CreatedAt, err = parseStored(created)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", o.OrderID, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// CountCustomers returns the number of committed customers.
func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	return s.count(ctx, "customers")
}

// CountOrders returns the number of committed orders.
func (s *Store) CountOrders(ctx context.Context) (int, error) {
	return s.count(ctx, "orders")
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func parseStored(v string) (time.Time, error) {
	t, err := time.Parse(model.DateTimeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", v, err)
	}
	return t, nil
}
