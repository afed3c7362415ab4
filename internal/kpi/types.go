package kpi

import "context"

// Default top-spenders window and result size.
const (
	DefaultWindowDays = 30
	DefaultTopLimit   = 10
)

// RepeatCustomer is one row of the repeat-customers KPI: a customer with
// strictly more than one order, joined on the canonical mobile number.
type RepeatCustomer struct {
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	MobileNumber string `json:"mobile_number"`
	Region       string `json:"region"`
	OrderCount   int    `json:"order_count"`
}

// MonthlyTrend is one row of the monthly order trends KPI. Order-only: no
// customer join, so orphan mobile numbers still count here.
type MonthlyTrend struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	OrderCount   int     `json:"order_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

// RegionalRevenue is one row of the regional revenue KPI. Orders inner-join
// to customers; orders with no matching customer are excluded.
type RegionalRevenue struct {
	Region        string  `json:"region"`
	CustomerCount int     `json:"customer_count"`
	OrderCount    int     `json:"order_count"`
	TotalRevenue  float64 `json:"total_revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// TopSpender is one row of the trailing-window top spenders KPI.
// LastOrderDate is a plain date string (2006-01-02).
type TopSpender struct {
	CustomerID    int64   `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	MobileNumber  string  `json:"mobile_number"`
	Region        string  `json:"region"`
	OrderCount    int     `json:"order_count"`
	TotalSpent    float64 `json:"total_spent"`
	AvgOrderValue float64 `json:"avg_order_value"`
	LastOrderDate string  `json:"last_order_date"`
}

// Results bundles one run of all four KPIs over a single snapshot.
type Results struct {
	RepeatCustomers []RepeatCustomer  `json:"repeat_customers"`
	MonthlyTrends   []MonthlyTrend    `json:"monthly_order_trends"`
	RegionalRevenue []RegionalRevenue `json:"regional_revenue"`
	TopSpenders     []TopSpender      `json:"top_spenders"`
}

// Backend is one KPI execution strategy. Implementations must satisfy the
// per-KPI contracts documented on the result types and are validated by the
// shared contract test suite.
type Backend interface {
	// Name identifies the strategy in logs and the verify command.
	Name() string

	RepeatCustomers(ctx context.Context) ([]RepeatCustomer, error)
	MonthlyOrderTrends(ctx context.Context) ([]MonthlyTrend, error)
	RegionalRevenue(ctx context.Context) ([]RegionalRevenue, error)
	TopSpenders(ctx context.Context, days, limit int) ([]TopSpender, error)
}

// All computes every KPI through one backend.
func All(ctx context.Context, b Backend, days, limit int) (*Results, error) {
	repeat, err := b.RepeatCustomers(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := b.MonthlyOrderTrends(ctx)
	if err != nil {
		return nil, err
	}
	regional, err := b.RegionalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	top, err := b.TopSpenders(ctx, days, limit)
	if err != nil {
		return nil, err
	}
	return &Results{
		RepeatCustomers: repeat,
		MonthlyTrends:   monthly,
		RegionalRevenue: regional,
		TopSpenders:     top,
	}, nil
}
