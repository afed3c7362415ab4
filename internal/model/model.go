// Package model defines the persistent entities shared by ingestion, storage,
// and KPI computation.
//
// Both entities are created exclusively by the ingestion pipeline and are
// never mutated after insert. Customers and Orders are related through the
// canonical mobile number, not a foreign key: an order may carry a mobile
// number with no matching customer. Such orders still participate in
// order-only KPIs but drop out of customer-joined ones.
package model

import "time"

// Customer is a customer master record.
//
// MobileNumber is the canonical join key (see normalize.MobileNumber) and is
// globally unique across customers.
type Customer struct {
	CustomerID   int64
	CustomerName string
	MobileNumber string
	Region       string
	CreatedAt    time.Time
}

// Order is a single order line from the order feed.
//
// OrderID is the natural key from the source and must be unique and non-zero.
// SKUCount and TotalAmount default to zero when the source value is
// unparseable; they are not required fields.
type Order struct {
	OrderID       int64
	MobileNumber  string
	OrderDateTime time.Time
	SKUID         string
	SKUCount      int
	TotalAmount   float64
	CreatedAt     time.Time
}

// Snapshot is a point-in-time copy of all committed customers and orders.
// The in-memory KPI backends operate on a private Snapshot loaded once per
// run; KPI computation never mutates it.
type Snapshot struct {
	Customers []Customer
	Orders    []Order
}

// DateTimeLayout is the canonical storage representation for timestamps.
// Lexicographic order on this layout matches chronological order, which the
// SQL backend relies on for range filters.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateLayout is the plain-date representation used for last_order_date output.
const DateLayout = "2006-01-02"
