package builder

import (
	"net/http"
	"strings"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/ir"
)

// RestNamespace is the namespace every route is registered under.
const RestNamespace = "atom/v1"

// RestError is the body of a failed REST call.
type RestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Rest is the chainable surface of a REST route builder.
type Rest interface {
	Fields(names ...string) Rest
	Field(name string, typ ...string) Rest
	FieldWith(name, typ string, opts FieldOptions) Rest
	OnSubmit(fn SubmitFunc) Rest
	Call(method string, args ...any) Rest
}

// RestBuilder registers a POST route under RestNamespace on rest_api_init.
type RestBuilder struct {
	env     *Env
	route   string
	fields  fieldList
	handler SubmitFunc
}

// NewRest creates a REST builder for route ("/hello").
func NewRest(env *Env, key ir.Key) *RestBuilder {
	route := string(key)
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return &RestBuilder{env: env, route: route}
}

// Path is the full route path, "/atom/v1/hello".
func (b *RestBuilder) Path() string { return "/" + RestNamespace + b.route }

func (b *RestBuilder) Fields(names ...string) Rest {
	for _, n := range names {
		b.Field(n)
	}
	return b
}

func (b *RestBuilder) Field(name string, typ ...string) Rest {
	return b.FieldWith(name, firstType(typ), FieldOptions{})
}

func (b *RestBuilder) FieldWith(name, typ string, opts FieldOptions) Rest {
	b.fields = b.fields.set(newField(name, typ, opts, plainText))
	return b
}

// OnSubmit sets the handler and registers the route once the REST API
// initializes.
func (b *RestBuilder) OnSubmit(fn SubmitFunc) Rest {
	b.handler = fn
	h := b.env.Host
	h.AddActionOrRun("rest_api_init", func() {
		h.RegisterRoute(RestNamespace, b.route, b.serve)
	})
	return b
}

func (b *RestBuilder) serve(params map[string]string) (any, int) {
	r, err := safeSubmit(b.handler, b.fields.collect(params))
	if err != nil {
		return RestError{Code: "rest_exception", Message: err.Error(), Status: http.StatusInternalServerError}, http.StatusInternalServerError
	}
	if !r.Success {
		msg := r.Message
		if msg == "" {
			msg = "Error"
		}
		return RestError{Code: "rest_error", Message: msg, Status: http.StatusBadRequest}, http.StatusBadRequest
	}
	return r, http.StatusOK
}

func (b *RestBuilder) Call(method string, args ...any) Rest {
	callLogged(b.env, ir.CategoryRest, b.route, b, method, args)
	return b
}

// Dispatch implements deferral.Dispatcher.
func (b *RestBuilder) Dispatch(method string, args []any) error {
	return restOps.Dispatch(b, method, args)
}

var restOps = deferral.Table[*RestBuilder]{
	"fields": func(b *RestBuilder, args []any) error {
		names, err := deferral.ArgStrings(args, 0)
		if err != nil {
			return err
		}
		b.Fields(names...)
		return nil
	},
	"field": func(b *RestBuilder, args []any) error {
		f, err := fieldArgs(args, plainText)
		if err != nil {
			return err
		}
		b.fields = b.fields.set(f)
		return nil
	},
	"onSubmit": func(b *RestBuilder, args []any) error {
		fn, err := submitArg(args, 0)
		if err != nil {
			return err
		}
		b.OnSubmit(fn)
		return nil
	},
}

// DeferredRest records Rest calls on a facade.
type DeferredRest struct {
	f *deferral.Facade
}

func NewDeferredRest(f *deferral.Facade) *DeferredRest { return &DeferredRest{f: f} }

func (d *DeferredRest) Facade() *deferral.Facade { return d.f }

func (d *DeferredRest) Fields(names ...string) Rest { return d.Call("fields", stringsToAny(names)...) }
func (d *DeferredRest) Field(name string, typ ...string) Rest {
	return d.Call("field", fieldCallArgs(name, typ)...)
}
func (d *DeferredRest) FieldWith(name, typ string, opts FieldOptions) Rest {
	return d.Call("field", name, typ, opts)
}
func (d *DeferredRest) OnSubmit(fn SubmitFunc) Rest { return d.Call("onSubmit", fn) }

func (d *DeferredRest) Call(method string, args ...any) Rest {
	d.f.Call(method, args...)
	return d
}
