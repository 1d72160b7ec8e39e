package deferral

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/atom/internal/ir"
)

// traceBuilder is a real builder stub that records its own invocation trace.
// It exposes alpha, beta and boom; boom fails, panic panics.
type traceBuilder struct {
	key   ir.Key
	trace *[]string
}

func (b *traceBuilder) Dispatch(method string, args []any) error {
	switch method {
	case "alpha", "beta":
		*b.trace = append(*b.trace, fmt.Sprintf("%s:%s(%s)", b.key, method, ir.FormatArgs(args)))
		return nil
	case "boom":
		*b.trace = append(*b.trace, fmt.Sprintf("%s:boom()", b.key))
		return errors.New("boom failed")
	case "panic":
		panic("kaboom")
	}
	return fmt.Errorf("%w: %q", ErrUnknownOperation, method)
}

func traceConstructor(trace *[]string) Constructor {
	return func(key ir.Key) Dispatcher {
		return &traceBuilder{key: key, trace: trace}
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(c ir.Category, opts ...RegistryOption) *Registry {
	base := []RegistryOption{
		WithLogger(quietLogger()),
		WithPassIDGenerator(NewSequenceGenerator("pass")),
	}
	return NewRegistry(c, append(base, opts...)...)
}

// memJournal is an in-memory Journal.
type memJournal struct {
	passes []*Pass
	err    error
}

func (j *memJournal) WritePass(_ context.Context, p *Pass) error {
	if j.err != nil {
		return j.err
	}
	j.passes = append(j.passes, p)
	return nil
}
