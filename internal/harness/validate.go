package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/atom/internal/builder"
	"github.com/roach88/atom/internal/ir"
)

// Validation is the report of Validate. Errors stop a run; warnings name
// calls that replay will skip.
type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the manifest has no errors.
func (v *Validation) OK() bool { return len(v.Errors) == 0 }

// Err joins the errors, or returns nil.
func (v *Validation) Err() error {
	if v.OK() {
		return nil
	}
	errs := make([]error, len(v.Errors))
	for i, e := range v.Errors {
		errs[i] = errors.New(e)
	}
	return errors.Join(errs...)
}

func (v *Validation) errorf(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *Validation) warnf(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a manifest against the builder catalog. Unknown
// categories, handlers and request kinds are errors. Unknown methods are
// warnings: the facade records them and replay skips them.
func Validate(m *Manifest) *Validation {
	v := &Validation{Errors: []string{}, Warnings: []string{}}
	validateStepsAgainstCatalog(v, "builders", m.Builders)
	validateStepsAgainstCatalog(v, "late", m.Late)

	for i, r := range m.Requests {
		switch r.Kind {
		case RequestShortcode, RequestAjax, RequestRest, RequestHTTP:
		default:
			v.errorf("requests[%d]: unknown kind %q", i, r.Kind)
		}
	}
	return v
}

func validateStepsAgainstCatalog(v *Validation, section string, steps []BuilderStep) {
	for i, s := range steps {
		cat, err := ir.ParseCategory(s.Category)
		if err != nil {
			v.errorf("%s[%d]: %v", section, i, err)
			continue
		}
		methods, _ := builder.Methods(cat)
		known := make(map[string]bool, len(methods))
		for _, name := range methods {
			known[name] = true
		}
		for j, c := range s.Calls {
			if !known[c.Method] {
				v.warnf("%s[%d].calls[%d]: %s has no method %q; replay will skip it", section, i, j, cat, c.Method)
			}
			if _, err := resolveArgs(c.Args); err != nil {
				v.errorf("%s[%d].calls[%d]: %v", section, i, j, err)
			}
		}
	}
}
