// Package testutil provides test doubles shared across packages: a real
// builder stub that records its own invocation trace and loggers that discard
// or capture output.
package testutil
