// Package deferral implements deferred fluent builders.
//
// A builder factory called before its category's lifecycle checkpoint does not
// construct the real builder. It registers an Entry with the category's
// Registry and returns the entry's Facade. Calls made on the facade are
// appended to the entry's CallLog and return the facade, so call sites chain
// exactly as they would against the real builder.
//
// When the checkpoint fires, the Registry replays every pending entry in
// registration order: the real builder is constructed from the entry's
// construction key alone and each recorded call is dispatched to it by name,
// in log order, with the original arguments.
//
// ARCHITECTURE:
//
// Recording:
//  1. Factory.Get(key) checks Registry.Fired()
//  2. fired: construct and return the real builder (immediate path)
//  3. not fired: NewEntry + Registry.Register, return the facade
//  4. Facade.Call(method, args...) appends a CallRecord stamped by the Clock
//
// Replay (Registry.Fire):
//  1. fired flag set and pending list detached under the lock
//  2. entries replayed in registration order, outside the lock, so replayed
//     operations may call factories of the same category (immediate path)
//  3. each entry: seal log, construct, dispatch records in order
//  4. pass summary logged and handed to the Journal, if any
//
// FAILURE ISOLATION:
//
// An unknown method name skips that record only. A failing or panicking
// operation ends its own entry; the remaining entries of the pass still
// replay. Nothing escapes Fire.
//
// The design assumes one logical control flow. The Registry takes a mutex so
// misuse from several goroutines cannot corrupt it, but ordering guarantees
// only hold for a single caller.
package deferral
