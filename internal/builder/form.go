package builder

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/host"
	"github.com/roach88/atom/internal/ir"
)

const (
	defaultFormSuccess = "Thank you!"
	defaultFormError   = "Failed to send."
	formMailSubject    = "Contact Form Submission"
)

// Form is the chainable surface of a form builder.
type Form interface {
	Fields(names ...string) Form
	Field(name string, typ ...string) Form
	FieldWith(name, typ string, opts FieldOptions) Form
	Success(msg string) Form
	Error(msg string) Form
	Turnstile() Form
	Captcha() Form
	SendTo(email string) Form
	OnSubmit(fn SubmitFunc) Form
	Shortcode(tag string) Form
	Call(method string, args ...any) Form
}

// FormBuilder collects form fields and registers the form's submit handler
// and shortcode with the host.
type FormBuilder struct {
	env        *Env
	slug       string
	fields     fieldList
	successMsg string
	errorMsg   string
	turnstile  bool
	captcha    bool
	email      string
	handler    SubmitFunc
}

// NewForm creates a form builder. Construction has no side effects.
func NewForm(env *Env, key ir.Key) *FormBuilder {
	return &FormBuilder{
		env:        env,
		slug:       SanitizeKey(string(key)),
		successMsg: defaultFormSuccess,
		errorMsg:   defaultFormError,
	}
}

// ID is the form's identifier, "atom_form_<slug>".
func (b *FormBuilder) ID() string { return "atom_form_" + b.slug }

// Action is the AJAX action that receives submissions.
func (b *FormBuilder) Action() string { return b.ID() + "_submit" }

// Fields declares fields with types derived from their names.
func (b *FormBuilder) Fields(names ...string) Form {
	for _, n := range names {
		b.Field(n)
	}
	return b
}

// Field declares one field. Without a type, names containing "email" get
// "email", names containing "message" get "textarea", the rest "text".
func (b *FormBuilder) Field(name string, typ ...string) Form {
	return b.FieldWith(name, firstType(typ), FieldOptions{})
}

// FieldWith declares one field with a label, description or required flag.
func (b *FormBuilder) FieldWith(name, typ string, opts FieldOptions) Form {
	b.fields = b.fields.set(newField(name, typ, opts, defaultFieldType))
	return b
}

func (b *FormBuilder) Success(msg string) Form { b.successMsg = msg; return b }
func (b *FormBuilder) Error(msg string) Form   { b.errorMsg = msg; return b }
func (b *FormBuilder) Turnstile() Form         { b.turnstile = true; return b }
func (b *FormBuilder) Captcha() Form           { b.captcha = true; return b }

// SendTo mails submissions to email and registers the submit handler.
func (b *FormBuilder) SendTo(email string) Form {
	b.email = email
	b.registerHandler()
	return b
}

// OnSubmit sets a custom submit handler and registers it.
func (b *FormBuilder) OnSubmit(fn SubmitFunc) Form {
	b.handler = fn
	b.registerHandler()
	return b
}

// Shortcode registers tag to render this form.
func (b *FormBuilder) Shortcode(tag string) Form {
	b.env.Host.AddShortcode(tag, func(map[string]string) string { return b.Render() })
	return b
}

// Call dispatches by name. Failures are logged.
func (b *FormBuilder) Call(method string, args ...any) Form {
	callLogged(b.env, ir.CategoryForm, b.slug, b, method, args)
	return b
}

// Dispatch implements deferral.Dispatcher.
func (b *FormBuilder) Dispatch(method string, args []any) error {
	return formOps.Dispatch(b, method, args)
}

// inputs returns the declared fields plus the anti-spam inputs.
func (b *FormBuilder) inputs() fieldList {
	fields := b.fields.clone()
	if b.turnstile {
		fields = fields.set(fieldDef{Name: "turnstile", Type: "turnstile"})
	}
	if b.captcha {
		fields = fields.set(fieldDef{Name: "captcha", Type: "captcha"})
	}
	return fields
}

// registerHandler wires the submit action with the fields and messages
// configured so far. A later registration replaces an earlier one.
func (b *FormBuilder) registerHandler() {
	fields := b.inputs()
	mailFields := b.fields.clone()
	successMsg, errorMsg := b.successMsg, b.errorMsg

	handler := b.handler
	if handler == nil && b.email != "" {
		to := b.email
		handler = func(data map[string]string) (Result, error) {
			var body strings.Builder
			for _, f := range mailFields {
				fmt.Fprintf(&body, "%s: %s\n", titleize(f.Name), data[f.Name])
			}
			var headers []string
			if addr, err := mail.ParseAddress(data["email"]); err == nil {
				headers = append(headers, "Reply-To: "+addr.Address)
			}
			if err := b.env.Host.Mail(to, formMailSubject, body.String(), headers); err != nil {
				return Result{Success: false, Message: errorMsg}, nil
			}
			return Result{Success: true, Message: successMsg}, nil
		}
	}
	if handler == nil {
		return
	}

	b.env.Host.AddAjax(b.Action(), func(req map[string]string) host.Response {
		r, err := safeSubmit(handler, fields.collect(req))
		return toResponse(r, err, errorMsg)
	})
}

// Render returns a plain-text summary of the form: its action followed by
// one line per input.
func (b *FormBuilder) Render() string {
	var out strings.Builder
	fmt.Fprintf(&out, "form %s action=%s\n", b.ID(), b.Action())
	for _, f := range b.inputs() {
		label := f.Label
		if label == "" {
			label = titleize(f.Name)
		}
		switch f.Type {
		case "turnstile":
			fmt.Fprintf(&out, "- turnstile sitekey=%q\n", b.env.Turnstile.Site)
		default:
			req := ""
			if f.Require {
				req = " *"
			}
			fmt.Fprintf(&out, "- %s (%s) %s%s\n", f.Name, f.Type, label, req)
		}
	}
	return out.String()
}

var formOps = deferral.Table[*FormBuilder]{
	"fields": func(b *FormBuilder, args []any) error {
		names, err := deferral.ArgStrings(args, 0)
		if err != nil {
			return err
		}
		b.Fields(names...)
		return nil
	},
	"field": func(b *FormBuilder, args []any) error {
		f, err := fieldArgs(args, defaultFieldType)
		if err != nil {
			return err
		}
		b.fields = b.fields.set(f)
		return nil
	},
	"success": func(b *FormBuilder, args []any) error {
		msg, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		b.Success(msg)
		return nil
	},
	"error": func(b *FormBuilder, args []any) error {
		msg, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		b.Error(msg)
		return nil
	},
	"turnstile": func(b *FormBuilder, args []any) error {
		b.Turnstile()
		return nil
	},
	"captcha": func(b *FormBuilder, args []any) error {
		b.Captcha()
		return nil
	},
	"sendTo": func(b *FormBuilder, args []any) error {
		email, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		b.SendTo(email)
		return nil
	},
	"onSubmit": func(b *FormBuilder, args []any) error {
		fn, err := submitArg(args, 0)
		if err != nil {
			return err
		}
		b.OnSubmit(fn)
		return nil
	},
	"shortcode": func(b *FormBuilder, args []any) error {
		tag, err := deferral.Arg[string](args, 0)
		if err != nil {
			return err
		}
		b.Shortcode(tag)
		return nil
	},
}

// DeferredForm records Form calls on a facade.
type DeferredForm struct {
	f *deferral.Facade
}

// NewDeferredForm wraps f.
func NewDeferredForm(f *deferral.Facade) *DeferredForm { return &DeferredForm{f: f} }

// Facade returns the recording facade.
func (d *DeferredForm) Facade() *deferral.Facade { return d.f }

func (d *DeferredForm) Fields(names ...string) Form { return d.Call("fields", stringsToAny(names)...) }
func (d *DeferredForm) Field(name string, typ ...string) Form {
	return d.Call("field", fieldCallArgs(name, typ)...)
}
func (d *DeferredForm) FieldWith(name, typ string, opts FieldOptions) Form {
	return d.Call("field", name, typ, opts)
}
func (d *DeferredForm) Success(msg string) Form     { return d.Call("success", msg) }
func (d *DeferredForm) Error(msg string) Form       { return d.Call("error", msg) }
func (d *DeferredForm) Turnstile() Form             { return d.Call("turnstile") }
func (d *DeferredForm) Captcha() Form               { return d.Call("captcha") }
func (d *DeferredForm) SendTo(email string) Form    { return d.Call("sendTo", email) }
func (d *DeferredForm) OnSubmit(fn SubmitFunc) Form { return d.Call("onSubmit", fn) }
func (d *DeferredForm) Shortcode(tag string) Form   { return d.Call("shortcode", tag) }

func (d *DeferredForm) Call(method string, args ...any) Form {
	d.f.Call(method, args...)
	return d
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
