package ir

import (
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// argPrinter renders opaque arguments deterministically: map keys sorted,
// no pointer addresses, no capacities.
var argPrinter = spew.ConfigState{
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

// FormatArgs renders an argument list as a comma separated string.
// Used for logs, the replay journal and CLI output; never parsed back.
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = FormatArg(a)
	}
	return strings.Join(parts, ", ")
}

// FormatArg renders a single opaque argument.
// Funcs render as "func" because spew prints their code address, which
// differs between runs.
func FormatArg(a any) string {
	switch v := a.(type) {
	case nil:
		return "nil"
	case string:
		return `"` + v + `"`
	}
	if reflect.TypeOf(a).Kind() == reflect.Func {
		return "func"
	}
	return argPrinter.Sprintf("%v", a)
}
