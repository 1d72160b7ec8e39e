package deferral

import (
	"log/slog"

	"github.com/roach88/atom/internal/ir"
)

// Chain is the name-based fluent surface shared by deferred and immediate
// builders. It serves callers that only know method names at runtime.
type Chain interface {
	Call(method string, args ...any) Chain
}

// Factory decides, per call, between immediate construction and deferral.
//
// T is the public chainable type callers see (usually an interface); R is
// the real builder. public converts a real builder to T and wrap converts a
// facade to T, so both paths hand out the same static type.
type Factory[T any, R Dispatcher] struct {
	registry  *Registry
	construct func(ir.Key) R
	public    func(R) T
	wrap      func(*Facade) T
}

// NewFactory creates a factory bound to reg.
func NewFactory[T any, R Dispatcher](
	reg *Registry,
	construct func(ir.Key) R,
	public func(R) T,
	wrap func(*Facade) T,
) *Factory[T, R] {
	return &Factory[T, R]{
		registry:  reg,
		construct: construct,
		public:    public,
		wrap:      wrap,
	}
}

// Registry returns the registry this factory registers with.
func (f *Factory[T, R]) Registry() *Registry {
	return f.registry
}

// Get returns a real builder when the checkpoint has fired, otherwise a
// deferred stand-in registered for replay.
func (f *Factory[T, R]) Get(key ir.Key) T {
	if f.registry.Fired() {
		return f.public(f.construct(key))
	}
	e, ok := f.enqueue(key)
	if !ok {
		return f.public(f.construct(key))
	}
	return f.wrap(e.Facade())
}

// Chain is Get for name-based callers.
func (f *Factory[T, R]) Chain(key ir.Key) Chain {
	if f.registry.Fired() {
		return &dispatchChain{d: f.construct(key), key: key, category: f.registry.Category(), logger: f.registry.logger}
	}
	e, ok := f.enqueue(key)
	if !ok {
		return &dispatchChain{d: f.construct(key), key: key, category: f.registry.Category(), logger: f.registry.logger}
	}
	return facadeChain{f: e.Facade()}
}

// enqueue registers a new entry. It reports false when the checkpoint fired
// between the Fired check and registration.
func (f *Factory[T, R]) enqueue(key ir.Key) (*Entry, bool) {
	e := NewEntry(f.registry.Category(), key, func(k ir.Key) Dispatcher {
		return f.construct(k)
	})
	if err := f.registry.Register(e); err != nil {
		return nil, false
	}
	return e, true
}

// facadeChain adapts a Facade to Chain.
type facadeChain struct {
	f *Facade
}

func (c facadeChain) Call(method string, args ...any) Chain {
	c.f.Call(method, args...)
	return c
}

// Facade exposes the underlying facade.
func (c facadeChain) Facade() *Facade { return c.f }

// dispatchChain drives a real builder by name. Failures are logged the same
// way replay logs them; the chain keeps going.
type dispatchChain struct {
	d        Dispatcher
	key      ir.Key
	category ir.Category
	logger   *slog.Logger
}

func (c *dispatchChain) Call(method string, args ...any) Chain {
	if err := SafeDispatch(c.d, method, args); err != nil {
		if IsUnknownOperation(err) {
			c.logger.Warn("unknown operation skipped",
				"category", c.category,
				"key", c.key,
				"method", method,
			)
		} else {
			c.logger.Error("operation failed",
				"category", c.category,
				"key", c.key,
				"method", method,
				"error", err,
			)
		}
	}
	return c
}

// Builder exposes the real builder.
func (c *dispatchChain) Builder() Dispatcher { return c.d }

// IsDeferred reports whether a Chain records calls for later replay.
func IsDeferred(c Chain) bool {
	_, ok := c.(facadeChain)
	return ok
}
