package ir

import (
	"fmt"
	"strings"
)

// Category identifies a family of builders that share one lifecycle checkpoint.
type Category string

// Builder categories that support deferral.
const (
	CategoryForm     Category = "form"
	CategoryPostType Category = "post_type"
	CategorySettings Category = "settings"
	CategoryAjax     Category = "ajax"
	CategoryRest     Category = "rest"
	CategoryFilter   Category = "filter"
)

// categoryOrder is the canonical order used for listing and for firing
// every category off a single checkpoint.
var categoryOrder = []Category{
	CategoryForm,
	CategoryPostType,
	CategorySettings,
	CategoryAjax,
	CategoryRest,
	CategoryFilter,
}

// Categories returns all deferrable categories in canonical order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory resolves a category name. The camelCase spellings used by the
// fluent API ("postType") are accepted alongside the canonical snake_case.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	if norm == "posttype" {
		norm = string(CategoryPostType)
	}
	for _, c := range categoryOrder {
		if string(c) == norm {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown builder category %q", s)
}

// Key is the construction key of a builder: a slug, action name or route.
// It is used verbatim to construct the real builder.
type Key string

// CallRecord is one intercepted method invocation.
type CallRecord struct {
	Seq    int64  `json:"seq"`    // Logical clock stamp at record time
	Method string `json:"method"` // Method name exactly as invoked
	Args   []any  `json:"-"`      // Opaque, captured as passed
}

// String renders the record as method(args...) for diagnostics.
func (r CallRecord) String() string {
	return r.Method + "(" + FormatArgs(r.Args) + ")"
}
