// Package kpi computes the four business KPIs over customers and orders.
//
// Each KPI has one backend-independent contract - row shape, grouping,
// filtering, ordering, and 2-decimal rounding on monetary fields - realized
// by three execution strategies:
//
//   - SQLBackend: pushes grouping and joins down to the relational store
//   - MemoryBackend: aggregates over a private in-memory snapshot
//   - PartitionedBackend: splits the snapshot across partitions, computes
//     partial aggregates concurrently, and merges them before any
//     cross-partition join, final ordering, or rounding
//
// All three must agree bit-for-bit on count and grouping fields and within
// 0.01 on monetary fields; the shared contract test suite in this package
// runs every backend through the same assertions. Divergence beyond the
// tolerance is a defect in a backend, not a runtime condition - production
// code never raises it.
//
// KPI computation is stateless and idempotent given a fixed snapshot and a
// fixed clock. The top-spenders window depends on "now", so every backend
// takes an injectable Clock.
package kpi
