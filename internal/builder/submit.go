package builder

import (
	"fmt"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/host"
)

// Result is what a submit handler returns.
type Result struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// SubmitFunc handles sanitized submission data. A returned error is reported
// to the client as a failure.
type SubmitFunc func(data map[string]string) (Result, error)

// submitArg reads argument i as a SubmitFunc, accepting unnamed func
// literals of the same shape.
func submitArg(args []any, i int) (SubmitFunc, error) {
	if i >= len(args) {
		return nil, &deferral.ArgError{Index: i, Want: "SubmitFunc", Missing: true}
	}
	switch fn := args[i].(type) {
	case SubmitFunc:
		if fn != nil {
			return fn, nil
		}
	case func(map[string]string) (Result, error):
		if fn != nil {
			return fn, nil
		}
	}
	return nil, &deferral.ArgError{Index: i, Want: "SubmitFunc", Got: args[i]}
}

// fieldDef is one declared input.
type fieldDef struct {
	Name    string
	Type    string
	Label   string
	Desc    string
	Require bool
}

// FieldOptions carries a field's optional label, description and required
// flag.
type FieldOptions struct {
	Label    string
	Desc     string
	Required bool
}

func (o FieldOptions) apply(f fieldDef) fieldDef {
	f.Label, f.Desc, f.Require = o.Label, o.Desc, o.Required
	return f
}

// newField builds a field, falling back to defaultType when typ is empty.
func newField(name, typ string, opts FieldOptions, defaultType func(string) string) fieldDef {
	if typ == "" {
		typ = defaultType(name)
	}
	return opts.apply(fieldDef{Name: name, Type: typ})
}

// firstType is the type of a Field(name, typ...) call. Extra strings are
// ignored.
func firstType(typ []string) string {
	if len(typ) > 0 {
		return typ[0]
	}
	return ""
}

// fieldCallArgs records a Field(name, typ...) call with the arguments the
// immediate builders read.
func fieldCallArgs(name string, typ []string) []any {
	if len(typ) == 0 {
		return []any{name}
	}
	return []any{name, typ[0]}
}

// fieldList keeps fields in declaration order; redeclaring a name replaces
// it in place.
type fieldList []fieldDef

func (l fieldList) set(f fieldDef) fieldList {
	for i := range l {
		if l[i].Name == f.Name {
			l[i] = f
			return l
		}
	}
	return append(l, f)
}

func (l fieldList) names() []string {
	out := make([]string, len(l))
	for i, f := range l {
		out[i] = f.Name
	}
	return out
}

func (l fieldList) clone() fieldList {
	return append(fieldList(nil), l...)
}

// collect sanitizes every declared field out of req.
func (l fieldList) collect(req map[string]string) map[string]string {
	data := make(map[string]string, len(l))
	for _, f := range l {
		data[f.Name] = SanitizeField(req[f.Name], f.Type)
	}
	return data
}

// fieldArgs parses the arguments of a field(name, type?, opts?) call.
// name may also be a [name, type, opts] list.
func fieldArgs(args []any, defaultType func(string) string) (fieldDef, error) {
	if err := deferral.MaxArgs(args, 3); err != nil {
		return fieldDef{}, err
	}
	if len(args) == 1 {
		if list, ok := args[0].([]any); ok {
			return fieldArgs(list, defaultType)
		}
	}
	name, err := deferral.Arg[string](args, 0)
	if err != nil {
		return fieldDef{}, err
	}
	typ, err := deferral.OptArg(args, 1, "")
	if err != nil {
		return fieldDef{}, err
	}
	var opts FieldOptions
	if len(args) > 2 && args[2] != nil {
		switch v := args[2].(type) {
		case FieldOptions:
			opts = v
		case map[string]any:
			opts.Label, _ = v["label"].(string)
			opts.Desc, _ = v["desc"].(string)
			opts.Required, _ = v["required"].(bool)
		default:
			return fieldDef{}, &deferral.ArgError{Index: 2, Want: "FieldOptions", Got: args[2]}
		}
	}
	return newField(name, typ, opts, defaultType), nil
}

func plainText(string) string { return "text" }

// toResponse converts a handler outcome to an AJAX response.
func toResponse(r Result, err error, errMessage string) host.Response {
	if err != nil {
		msg := errMessage
		if msg == "" {
			msg = err.Error()
		}
		return host.Response{Success: false, Data: Result{Message: msg}}
	}
	return host.Response{Success: r.Success, Data: r}
}

// safeSubmit runs fn, turning a panic into an error.
func safeSubmit(fn SubmitFunc, data map[string]string) (r Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("submit handler panicked: %v", rec)
		}
	}()
	return fn(data)
}
