// Package store keeps benchmark run history in SQLite.
//
// Each perf run becomes one row in runs plus one row per repetition in
// samples. Rows are append-only and ordered by seq, a logical counter
// assigned on insert, so listings do not depend on wall-clock time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Run IDs are UUIDv7 by default and can be replaced with a fixed sequence
// for deterministic tests.
package store
