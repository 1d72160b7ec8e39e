package testutil

import (
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/ir"
)

// ErrStubFailed is returned by the recorder's failing method.
var ErrStubFailed = errors.New("stub operation failed")

// Recorder builds TraceBuilders that append every dispatched call to one
// shared trace, in "key:method(args)" form.
//
// The builders expose the methods passed to NewRecorder. "fail" returns
// ErrStubFailed and "panic" panics when listed; any other name is unknown.
//
// Thread-safety: the trace is guarded by a mutex.
type Recorder struct {
	mu      sync.Mutex
	methods map[string]bool
	trace   []string
	built   []ir.Key
}

// NewRecorder creates a recorder whose builders expose methods.
func NewRecorder(methods ...string) *Recorder {
	m := make(map[string]bool, len(methods))
	for _, name := range methods {
		m[name] = true
	}
	return &Recorder{methods: m}
}

// Construct is a deferral.Constructor.
func (r *Recorder) Construct(key ir.Key) deferral.Dispatcher {
	r.mu.Lock()
	r.built = append(r.built, key)
	r.mu.Unlock()
	return &TraceBuilder{key: key, rec: r}
}

// Trace returns the recorded calls in dispatch order.
func (r *Recorder) Trace() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.trace...)
}

// Built returns the keys of every builder constructed, in order.
func (r *Recorder) Built() []ir.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ir.Key(nil), r.built...)
}

// TraceBuilder is the real builder handed out by a Recorder.
type TraceBuilder struct {
	key ir.Key
	rec *Recorder
}

// Key returns the construction key.
func (b *TraceBuilder) Key() ir.Key { return b.key }

// Dispatch implements deferral.Dispatcher.
func (b *TraceBuilder) Dispatch(method string, args []any) error {
	if !b.rec.methods[method] {
		return fmt.Errorf("%w: %q", deferral.ErrUnknownOperation, method)
	}
	b.rec.mu.Lock()
	b.rec.trace = append(b.rec.trace, fmt.Sprintf("%s:%s(%s)", b.key, method, ir.FormatArgs(args)))
	b.rec.mu.Unlock()

	switch method {
	case "fail":
		return ErrStubFailed
	case "panic":
		panic("stub panic")
	}
	return nil
}
