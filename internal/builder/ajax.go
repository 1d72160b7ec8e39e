package builder

import (
	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/host"
	"github.com/roach88/atom/internal/ir"
)

// Ajax is the chainable surface of an AJAX action builder.
type Ajax interface {
	Fields(names ...string) Ajax
	Field(name string, typ ...string) Ajax
	FieldWith(name, typ string, opts FieldOptions) Ajax
	OnSubmit(fn SubmitFunc) Ajax
	Call(method string, args ...any) Ajax
}

// AjaxBuilder registers an AJAX action for both signed-in and public
// visitors. Fields are read per request.
type AjaxBuilder struct {
	env     *Env
	action  string
	fields  fieldList
	handler SubmitFunc
}

// NewAjax creates an AJAX builder for action.
func NewAjax(env *Env, key ir.Key) *AjaxBuilder {
	return &AjaxBuilder{env: env, action: string(key)}
}

func (b *AjaxBuilder) Action() string { return b.action }

func (b *AjaxBuilder) Fields(names ...string) Ajax {
	for _, n := range names {
		b.Field(n)
	}
	return b
}

func (b *AjaxBuilder) Field(name string, typ ...string) Ajax {
	return b.FieldWith(name, firstType(typ), FieldOptions{})
}

func (b *AjaxBuilder) FieldWith(name, typ string, opts FieldOptions) Ajax {
	b.fields = b.fields.set(newField(name, typ, opts, plainText))
	return b
}

// OnSubmit sets the handler and registers the action.
func (b *AjaxBuilder) OnSubmit(fn SubmitFunc) Ajax {
	b.handler = fn
	b.env.Host.AddAjax(b.action, func(req map[string]string) host.Response {
		r, err := safeSubmit(b.handler, b.fields.collect(req))
		return toResponse(r, err, "")
	})
	return b
}

func (b *AjaxBuilder) Call(method string, args ...any) Ajax {
	callLogged(b.env, ir.CategoryAjax, b.action, b, method, args)
	return b
}

// Dispatch implements deferral.Dispatcher.
func (b *AjaxBuilder) Dispatch(method string, args []any) error {
	return ajaxOps.Dispatch(b, method, args)
}

var ajaxOps = deferral.Table[*AjaxBuilder]{
	"fields": func(b *AjaxBuilder, args []any) error {
		names, err := deferral.ArgStrings(args, 0)
		if err != nil {
			return err
		}
		b.Fields(names...)
		return nil
	},
	"field": func(b *AjaxBuilder, args []any) error {
		f, err := fieldArgs(args, plainText)
		if err != nil {
			return err
		}
		b.fields = b.fields.set(f)
		return nil
	},
	"onSubmit": func(b *AjaxBuilder, args []any) error {
		fn, err := submitArg(args, 0)
		if err != nil {
			return err
		}
		b.OnSubmit(fn)
		return nil
	},
}

// DeferredAjax records Ajax calls on a facade.
type DeferredAjax struct {
	f *deferral.Facade
}

func NewDeferredAjax(f *deferral.Facade) *DeferredAjax { return &DeferredAjax{f: f} }

func (d *DeferredAjax) Facade() *deferral.Facade { return d.f }

func (d *DeferredAjax) Fields(names ...string) Ajax { return d.Call("fields", stringsToAny(names)...) }
func (d *DeferredAjax) Field(name string, typ ...string) Ajax {
	return d.Call("field", fieldCallArgs(name, typ)...)
}
func (d *DeferredAjax) FieldWith(name, typ string, opts FieldOptions) Ajax {
	return d.Call("field", name, typ, opts)
}
func (d *DeferredAjax) OnSubmit(fn SubmitFunc) Ajax { return d.Call("onSubmit", fn) }

func (d *DeferredAjax) Call(method string, args ...any) Ajax {
	d.f.Call(method, args...)
	return d
}
