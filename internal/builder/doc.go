// Package builder holds the concrete fluent builders: forms, post types,
// settings pages, AJAX actions, REST routes and list filters, plus the
// immediate-only widgets.
//
// Every builder is configuration plus calls into the host. Each exposes a
// typed chainable interface, a name-based Call escape hatch and a Dispatch
// method backed by an operation table, so a deferred call log can be replayed
// against it. The Deferred* wrappers give a deferral.Facade the same typed
// interface.
package builder
