// Package store provides SQLite-backed durable storage for customers and
// orders.
//
// The store is insert-only: entities are created by the ingestion pipeline,
// never mutated, and deleted only by ResetAll before a full reprocessing
// run. Writes go through a Session (one per file-level load) that wraps a
// transaction: each record inserts under its own savepoint so a bad record
// rolls back alone, and a single Commit persists the whole file.
//
// Uniqueness is enforced by the schema - customers.mobile_number UNIQUE and
// orders.order_id PRIMARY KEY - and surfaced to callers as ErrDuplicateKey.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
