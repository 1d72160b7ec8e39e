// Package ir provides the recorded representation of deferred builder calls.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Arguments are opaque: captured exactly as passed, never coerced or validated
//   - Logical clocks (seq) only, never wall-clock timestamps
//   - A CallLog is append-only until sealed; sealing happens when replay begins
package ir
