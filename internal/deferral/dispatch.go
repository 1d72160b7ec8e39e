package deferral

import (
	"fmt"
	"reflect"
	"sort"
)

// Dispatcher is the real builder capability contract: every fluent operation
// must be invocable by name with a positional argument list and nothing else
// beyond construction.
//
// Dispatch returns an error wrapping ErrUnknownOperation for names the
// builder does not expose. Any other error is the operation's own failure.
type Dispatcher interface {
	Dispatch(method string, args []any) error
}

// Operation adapts one named operation of builder B to positional args.
type Operation[B any] func(b B, args []any) error

// Table maps method names to the operations of builder B.
// It is the interpreter half of the recorded command list.
type Table[B any] map[string]Operation[B]

// Dispatch runs the named operation against b.
func (t Table[B]) Dispatch(b B, method string, args []any) error {
	op, ok := t[method]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, method)
	}
	return op(b, args)
}

// Has reports whether the table exposes method.
func (t Table[B]) Has(method string) bool {
	_, ok := t[method]
	return ok
}

// Methods returns the exposed method names, sorted.
func (t Table[B]) Methods() []string {
	out := make([]string, 0, len(t))
	for name := range t {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MaxArgs fails when more than n arguments were recorded.
func MaxArgs(args []any, n int) error {
	if len(args) > n {
		return fmt.Errorf("too many arguments: got %d, want at most %d", len(args), n)
	}
	return nil
}

// Arg returns argument i as T. A missing argument or a type mismatch is an
// *ArgError.
func Arg[T any](args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, &ArgError{Index: i, Want: typeName[T](), Missing: true}
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, &ArgError{Index: i, Want: typeName[T](), Got: args[i]}
	}
	return v, nil
}

// OptArg returns argument i as T, or def when the argument is absent or nil.
func OptArg[T any](args []any, i int, def T) (T, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	return Arg[T](args, i)
}

// ArgInt returns argument i as an int, accepting every integer kind as well
// as integral floats (JSON numbers).
func ArgInt(args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, &ArgError{Index: i, Want: "int", Missing: true}
	}
	rv := reflect.ValueOf(args[i])
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == float64(int(f)) {
			return int(f), nil
		}
	}
	return 0, &ArgError{Index: i, Want: "int", Got: args[i]}
}

// ArgStrings flattens the arguments from index i on into strings.
// Both variadic strings and a single []string / []any argument are accepted,
// matching how fluent calls such as sortable("a", "b") and
// sortable([]string{"a", "b"}) are written.
func ArgStrings(args []any, i int) ([]string, error) {
	var out []string
	for j := i; j < len(args); j++ {
		switch v := args[j].(type) {
		case string:
			out = append(out, v)
		case []string:
			out = append(out, v...)
		case []any:
			for _, e := range v {
				s, ok := e.(string)
				if !ok {
					return nil, &ArgError{Index: j, Want: "string list", Got: e}
				}
				out = append(out, s)
			}
		default:
			return nil, &ArgError{Index: j, Want: "string", Got: args[j]}
		}
	}
	return out, nil
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.String()
}
