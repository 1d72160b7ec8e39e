package builder

import (
	"github.com/roach88/atom/internal/ir"
)

// Methods lists the operation names a category's real builder exposes.
// It reports false for an unknown category.
func Methods(c ir.Category) ([]string, bool) {
	switch c {
	case ir.CategoryForm:
		return formOps.Methods(), true
	case ir.CategoryPostType:
		return postTypeOps.Methods(), true
	case ir.CategorySettings:
		return settingsOps.Methods(), true
	case ir.CategoryAjax:
		return ajaxOps.Methods(), true
	case ir.CategoryRest:
		return restOps.Methods(), true
	case ir.CategoryFilter:
		return filterOps.Methods(), true
	}
	return nil, false
}
