// Package host is a stand-in for the platform that deferred builders plug
// into.
//
// It provides just enough of a plugin host to observe the side effects of
// replayed builder calls: named action hooks with priorities (the source of
// lifecycle checkpoints), filters, shortcodes, AJAX actions, REST routes,
// post types, settings pages with persistent options, widgets, notices,
// bulk actions and a mail outbox.
//
// Hook semantics follow the usual plugin-host model: DoAction runs callbacks
// in priority order, then registration order; a callback added to a hook
// while that hook runs executes in the same run when its priority is not
// lower than the priority currently executing.
//
// Markup, transport encoding beyond plain JSON, and mail delivery are out of
// scope.
package host
