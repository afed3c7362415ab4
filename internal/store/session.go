package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"orderpulse/internal/model"
)

// ErrDuplicateKey reports a uniqueness violation on insert: a customer
// mobile number or an order ID that already exists. Load is insert-only;
// the existing row is never overwritten.
var ErrDuplicateKey = errors.New("duplicate key")

// Session is a scoped transaction over the store. One session covers one
// file-level load: every accepted record is added inside it and persisted by
// a single Commit. Sessions are not safe for concurrent use and must be
// released on every exit path - the usual shape is
//
//	sess, err := st.Begin(ctx)
//	...
//	defer sess.Close()
//
// where Close rolls back anything not committed.
type Session struct {
	tx   *sql.Tx
	seq  int
	done bool
}

// Begin opens a new scoped transaction.
func (s *Store) Begin(ctx context.Context) (*Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return &Session{tx: tx}, nil
}

// AddCustomer inserts one customer row inside the session.
//
// The insert runs under a per-record savepoint: on any failure only this
// record's pending change is rolled back and the session remains usable for
// the next record. A unique-constraint violation on mobile_number is
// reported as ErrDuplicateKey.
func (sess *Session) AddCustomer(ctx context.Context, c model.Customer) (int64, error) {
	var id int64
	err := sess.withSavepoint(ctx, func() error {
		res, err := sess.tx.ExecContext(ctx, `
			INSERT INTO customers (customer_name, mobile_number, region, created_at)
			VALUES (?, ?, ?, ?)
		`,
			c.CustomerName,
			c.MobileNumber,
			c.Region,
			createdAt(c.CreatedAt),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, translateConstraint("add customer", err)
	}
	return id, nil
}

// AddOrder inserts one order row inside the session, under a per-record
// savepoint. A unique-constraint violation on order_id is reported as
// ErrDuplicateKey.
func (sess *Session) AddOrder(ctx context.Context, o model.Order) error {
	err := sess.withSavepoint(ctx, func() error {
		_, err := sess.tx.ExecContext(ctx, `
			INSERT INTO orders (order_id, mobile_number, order_date_time, sku_id, sku_count, total_amount, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			o.OrderID,
			o.MobileNumber,
			o.OrderDateTime.Format(model.DateTimeLayout),
			o.SKUID,
			o.SKUCount,
			o.TotalAmount,
			createdAt(o.CreatedAt),
		)
		return err
	})
	if err != nil {
		return translateConstraint("add order", err)
	}
	return nil
}

// Commit persists everything added to the session.
func (sess *Session) Commit() error {
	sess.done = true
	if err := sess.tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Rollback discards everything added to the session.
func (sess *Session) Rollback() error {
	sess.done = true
	if err := sess.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback session: %w", err)
	}
	return nil
}

// Close releases the session, rolling back if it was not committed.
// Safe to call after Commit or Rollback.
func (sess *Session) Close() error {
	if sess.done {
		return nil
	}
	return sess.Rollback()
}

// withSavepoint runs fn inside a named savepoint so a failing insert leaves
// the rest of the transaction intact.
func (sess *Session) withSavepoint(ctx context.Context, fn func() error) error {
	sess.seq++
	name := fmt.Sprintf("rec_%d", sess.seq)

	if _, err := sess.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(); err != nil {
		if _, rbErr := sess.tx.ExecContext(ctx, "ROLLBACK TO "+name); rbErr != nil {
			return fmt.Errorf("rollback to savepoint after %v: %w", err, rbErr)
		}
		// Release the savepoint name for reuse; the record's change is gone.
		if _, relErr := sess.tx.ExecContext(ctx, "RELEASE "+name); relErr != nil {
			return fmt.Errorf("release savepoint after %v: %w", err, relErr)
		}
		return err
	}
	if _, err := sess.tx.ExecContext(ctx, "RELEASE "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// translateConstraint maps sqlite unique-constraint violations to
// ErrDuplicateKey so callers can branch on errors.Is.
func translateConstraint(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%s: %w", op, ErrDuplicateKey)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// createdAt fills the insert timestamp, defaulting to wall-clock now when
// the pipeline did not set one.
func createdAt(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.Format(model.DateTimeLayout)
}
