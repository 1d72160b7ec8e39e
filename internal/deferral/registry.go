package deferral

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/atom/internal/ir"
)

// Journal persists checkpoint passes. Write failures are logged by the
// Registry and never interrupt the host's startup.
type Journal interface {
	WritePass(ctx context.Context, pass *Pass) error
}

// Registry tracks one category's checkpoint state and its pending entries.
//
// INVARIANTS:
//   - fired is monotonic: false → true, never back
//   - no entry is registered after fired
//   - pending entries replay exactly once, in registration order
//
// One Registry exists per category; firing one never touches another.
type Registry struct {
	mu       sync.Mutex
	category ir.Category
	fired    bool
	pending  []*Entry
	ordinals map[ir.Key]int

	logger  *slog.Logger
	journal Journal
	passIDs PassIDGenerator
	clock   *Clock
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for replay diagnostics.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithJournal records every pass through j.
func WithJournal(j Journal) RegistryOption {
	return func(r *Registry) {
		r.journal = j
	}
}

// WithPassIDGenerator sets the pass ID source. Default: UUIDv7Generator.
func WithPassIDGenerator(g PassIDGenerator) RegistryOption {
	return func(r *Registry) {
		if g != nil {
			r.passIDs = g
		}
	}
}

// WithClock shares a logical clock between registries so seq numbers are
// ordered across categories.
func WithClock(c *Clock) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// NewRegistry creates the registry for one category.
func NewRegistry(category ir.Category, opts ...RegistryOption) *Registry {
	r := &Registry{
		category: category,
		ordinals: make(map[ir.Key]int),
		logger:   slog.Default(),
		passIDs:  UUIDv7Generator{},
		clock:    NewClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Category returns the category this registry serves.
func (r *Registry) Category() ir.Category {
	return r.category
}

// Fired reports whether the checkpoint has fired.
func (r *Registry) Fired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fired
}

// Pending returns the number of entries awaiting replay.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Entries returns the pending entries in registration order.
func (r *Registry) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Entry, len(r.pending))
	copy(out, r.pending)
	return out
}

// Register appends e to the pending collection.
//
// Callers check Fired first; Register returns ErrCheckpointFired rather than
// accept an entry that would never replay.
func (r *Registry) Register(e *Entry) error {
	if e == nil {
		return fmt.Errorf("register: nil entry")
	}
	if e.category != r.category {
		return fmt.Errorf("register: entry category %q does not match registry %q", e.category, r.category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fired {
		return ErrCheckpointFired
	}
	if e.id != "" {
		return fmt.Errorf("register: entry %s already registered", e.id)
	}

	ordinal := r.ordinals[e.key]
	r.ordinals[e.key] = ordinal + 1

	e.id = ir.EntryID(e.category, e.key, ordinal)
	e.clock = r.clock
	e.logger = r.logger
	r.pending = append(r.pending, e)

	r.logger.Debug("entry registered",
		"category", r.category,
		"key", e.key,
		"entry_id", e.id,
		"pending", len(r.pending),
	)
	return nil
}

// Fire marks the checkpoint as fired and replays every pending entry in
// registration order, then clears the pending collection.
//
// Fire is idempotent: every call after the first is a no-op returning nil.
// Per-entry failures are contained in the returned Pass and logged; nothing
// propagates to the caller.
func (r *Registry) Fire(ctx context.Context) *Pass {
	r.mu.Lock()
	if r.fired {
		r.mu.Unlock()
		r.logger.Debug("checkpoint already fired", "category", r.category)
		return nil
	}
	r.fired = true
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	pass := &Pass{
		ID:       r.passIDs.Generate(),
		Category: r.category,
		Seq:      r.clock.Next(),
		Entries:  make([]EntryResult, 0, len(pending)),
	}

	for _, e := range pending {
		pass.Entries = append(pass.Entries, e.Replay())
	}

	r.logger.Info("checkpoint pass complete",
		"category", r.category,
		"pass_id", pass.ID,
		"entries", len(pass.Entries),
		"applied", pass.Applied(),
		"skipped", pass.Skipped(),
		"failed", pass.Failed(),
	)

	if r.journal != nil {
		if err := r.journal.WritePass(ctx, pass); err != nil {
			r.logger.Error("journal write failed",
				"category", r.category,
				"pass_id", pass.ID,
				"error", err,
			)
		}
	}

	return pass
}
