// Package store provides SQLite-backed storage for replay journals and
// persistent options.
//
// The store records:
//   - Passes: one row per checkpoint firing of a category
//   - Replayed entries: one row per deferred builder replayed in a pass
//   - Replayed calls: one row per recorded call with its outcome
//   - Options: named settings values written by settings pages
//
// # Ordering
//
// All ordering uses the logical seq stamped at record time, never wall
// clock. Queries order by seq ASC, id ASC so results are identical across
// runs.
//
// # Idempotency
//
// Writing a pass whose ID is already stored is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
