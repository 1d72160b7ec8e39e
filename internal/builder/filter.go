package builder

import (
	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/ir"
)

// Filter is the chainable surface of a list filter builder.
type Filter interface {
	By(field string) Filter
	Render() Filter
	Call(method string, args ...any) Filter
}

// FilterBuilder collects the fields a post type's list can be filtered by.
type FilterBuilder struct {
	env      *Env
	postType string
	fields   []string
}

func NewFilter(env *Env, key ir.Key) *FilterBuilder {
	return &FilterBuilder{env: env, postType: string(key)}
}

func (b *FilterBuilder) By(field string) Filter {
	b.fields = append(b.fields, field)
	return b
}

// Render registers the filter form with the host.
func (b *FilterBuilder) Render() Filter {
	b.env.Host.AddFilterUI(b.postType, b.fields)
	return b
}

func (b *FilterBuilder) Call(method string, args ...any) Filter {
	callLogged(b.env, ir.CategoryFilter, b.postType, b, method, args)
	return b
}

// Dispatch implements deferral.Dispatcher.
func (b *FilterBuilder) Dispatch(method string, args []any) error {
	return filterOps.Dispatch(b, method, args)
}

var filterOps = deferral.Table[*FilterBuilder]{
	"by": func(b *FilterBuilder, args []any) error {
		if err := deferral.MaxArgs(args, 1); err != nil {
			return err
		}
		f, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		b.By(f)
		return nil
	},
	"render": func(b *FilterBuilder, args []any) error {
		b.Render()
		return nil
	},
}

// DeferredFilter records Filter calls on a facade.
type DeferredFilter struct {
	f *deferral.Facade
}

func NewDeferredFilter(f *deferral.Facade) *DeferredFilter { return &DeferredFilter{f: f} }

func (d *DeferredFilter) Facade() *deferral.Facade { return d.f }

func (d *DeferredFilter) By(field string) Filter { return d.Call("by", field) }
func (d *DeferredFilter) Render() Filter         { return d.Call("render") }

func (d *DeferredFilter) Call(method string, args ...any) Filter {
	d.f.Call(method, args...)
	return d
}
