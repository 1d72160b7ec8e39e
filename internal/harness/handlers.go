package harness

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/atom/internal/builder"
)

// ErrHandlerFailed is returned by the built-in "fail" handler.
var ErrHandlerFailed = errors.New("handler failed")

// handlers are the submit handlers a manifest can name.
var handlers = map[string]builder.SubmitFunc{
	"echo": func(data map[string]string) (builder.Result, error) {
		out := make(map[string]any, len(data))
		for k, v := range data {
			out[k] = v
		}
		return builder.Result{Success: true, Message: "ok", Data: out}, nil
	},
	"greet": func(data map[string]string) (builder.Result, error) {
		name := data["name"]
		if name == "" {
			name = "there"
		}
		return builder.Result{Success: true, Message: "Hello, " + name + "!"}, nil
	},
	"fail": func(map[string]string) (builder.Result, error) {
		return builder.Result{}, ErrHandlerFailed
	},
}

// HandlerNames lists the built-in submit handlers.
func HandlerNames() []string {
	names := make([]string, 0, len(handlers))
	for n := range handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// resolveArgs replaces {handler: name} with the named submit handler and
// {column: prefix} with a column renderer. Other arguments pass through.
func resolveArgs(args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		r, err := resolveArg(a)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

func resolveArg(a any) (any, error) {
	m, ok := a.(map[string]any)
	if !ok || len(m) != 1 {
		return a, nil
	}
	if v, ok := m["handler"]; ok {
		name, _ := v.(string)
		fn, ok := handlers[name]
		if !ok {
			return nil, fmt.Errorf("unknown handler %v (want one of %v)", v, HandlerNames())
		}
		return fn, nil
	}
	if v, ok := m["column"]; ok {
		prefix := fmt.Sprint(v)
		return builder.ColumnFunc(func(postID int) string {
			return fmt.Sprintf("%s %d", prefix, postID)
		}), nil
	}
	return a, nil
}
