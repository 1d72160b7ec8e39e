package deferral

import (
	"log/slog"

	"github.com/roach88/atom/internal/ir"
)

// Constructor builds the real builder for a construction key.
// It must be side-effect free: side effects come from the operations
// dispatched afterwards.
type Constructor func(key ir.Key) Dispatcher

type entryState int

const (
	statePending entryState = iota
	stateReplaying
	stateReplayed
)

func (s entryState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateReplaying:
		return "replaying"
	default:
		return "replayed"
	}
}

// Entry is one deferred builder: a construction key plus its call log.
//
// An Entry exists from factory-call time until its replay completes. After
// replay it is inert: Replay refuses to run twice and the log is sealed.
type Entry struct {
	id        string
	category  ir.Category
	key       ir.Key
	log       ir.CallLog
	construct Constructor
	clock     *Clock
	logger    *slog.Logger
	state     entryState
	real      Dispatcher
	facade    *Facade
}

// NewEntry creates an unregistered entry. The entry receives its ID, clock and
// logger from the Registry it is registered with.
func NewEntry(category ir.Category, key ir.Key, construct Constructor) *Entry {
	e := &Entry{
		category:  category,
		key:       key,
		construct: construct,
		logger:    slog.Default(),
	}
	e.facade = &Facade{entry: e}
	return e
}

// ID returns the content-addressed entry ID, or "" before registration.
func (e *Entry) ID() string { return e.id }

// Category returns the builder category.
func (e *Entry) Category() ir.Category { return e.category }

// Key returns the construction key.
func (e *Entry) Key() ir.Key { return e.key }

// Facade returns the chainable stand-in that records into this entry.
func (e *Entry) Facade() *Facade { return e.facade }

// Log returns a copy of the recorded calls in order.
func (e *Entry) Log() []ir.CallRecord { return e.log.Records() }

// Len returns the number of recorded calls.
func (e *Entry) Len() int { return e.log.Len() }

// Replayed reports whether replay has started or completed.
func (e *Entry) Replayed() bool { return e.state != statePending }

func (e *Entry) nextSeq() int64 {
	if e.clock == nil {
		return int64(e.log.Len() + 1)
	}
	return e.clock.Next()
}

// Facade is the chainable stand-in returned during the deferral window.
//
// The facade never executes domain logic and has no knowledge of which
// method names the real builder accepts: every call is recorded the same
// way, including calls that will later register user-facing entry points.
type Facade struct {
	entry *Entry
}

// Call records method with args and returns the facade.
//
// Once the owning entry has been replayed the log is sealed. A call on a
// retained facade is then forwarded to the real builder constructed at
// replay time, so late calls keep their effect instead of vanishing.
func (f *Facade) Call(method string, args ...any) *Facade {
	e := f.entry

	captured := make([]any, len(args))
	copy(captured, args)

	if e.state == statePending {
		rec := ir.CallRecord{Seq: e.nextSeq(), Method: method, Args: captured}
		if err := e.log.Append(rec); err == nil {
			e.logger.Debug("call deferred",
				"category", e.category,
				"key", e.key,
				"method", method,
				"seq", rec.Seq,
			)
			return f
		}
	}

	if e.real == nil {
		e.logger.Warn("call on replayed facade dropped: no real builder",
			"category", e.category,
			"key", e.key,
			"method", method,
		)
		return f
	}

	if err := SafeDispatch(e.real, method, captured); err != nil {
		e.logger.Warn("call on replayed facade failed",
			"category", e.category,
			"key", e.key,
			"method", method,
			"error", err,
		)
		return f
	}
	e.logger.Debug("call forwarded to real builder",
		"category", e.category,
		"key", e.key,
		"method", method,
	)
	return f
}

// Key returns the construction key of the owning entry.
func (f *Facade) Key() ir.Key { return f.entry.key }

// Category returns the category of the owning entry.
func (f *Facade) Category() ir.Category { return f.entry.category }

// Len returns the number of calls recorded so far.
func (f *Facade) Len() int { return f.entry.log.Len() }

// Entry returns the owning entry.
func (f *Facade) Entry() *Entry { return f.entry }
