package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/atom/internal/host"
)

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertHookFired     = "hook_fired"
	AssertOption        = "option"
)

// Assertion validates the trace, the lifecycle or stored options.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Call is a call label, "category:key.method" (trace_contains,
	// trace_count).
	Call string `yaml:"call,omitempty"`

	// Outcome optionally narrows trace_contains to one outcome.
	Outcome string `yaml:"outcome,omitempty"`

	// Calls is the expected label order (trace_order).
	Calls []string `yaml:"calls,omitempty"`

	// Count is the expected number of occurrences (trace_count, hook_fired).
	Count int `yaml:"count,omitempty"`

	// Hook is the hook name (hook_fired).
	Hook string `yaml:"hook,omitempty"`

	// Name and Value describe a stored option (option).
	Name  string `yaml:"name,omitempty"`
	Value string `yaml:"value,omitempty"`
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: trace_contains requires call", index)
		}
	case AssertTraceOrder:
		if len(a.Calls) < 2 {
			return fmt.Errorf("assertions[%d]: trace_order requires at least 2 calls", index)
		}
	case AssertTraceCount:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: trace_count requires call", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: trace_count count must be >= 0", index)
		}
	case AssertHookFired:
		if a.Hook == "" {
			return fmt.Errorf("assertions[%d]: hook_fired requires hook", index)
		}
	case AssertOption:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: option requires name", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}

// AssertionError is returned when an assertion fails. It carries the trace
// labels to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s(%s) %s\n", i+1, ev.Label(), ev.Args, ev.Outcome)
		}
	}
	return buf.String()
}

// assertTraceContains checks for an event with the call label and, when
// given, the outcome.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if ev.Label() == a.Call && (a.Outcome == "" || ev.Outcome == a.Outcome) {
			return nil
		}
	}
	expected := a.Call
	if a.Outcome != "" {
		expected += " with outcome " + a.Outcome
	}
	return &AssertionError{Type: AssertTraceContains, Expected: expected, Actual: "not found in trace", Trace: trace}
}

// assertTraceOrder checks that labels first appear in the given order.
// Intervening calls are allowed.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range trace {
		label := ev.Label()
		if _, seen := positions[label]; !seen {
			positions[label] = i + 1
		}
	}

	for _, call := range a.Calls {
		if positions[call] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all calls present: %v", a.Calls),
				Actual:   fmt.Sprintf("missing call: %s", call),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Calls); i++ {
		prev, curr := a.Calls[i-1], a.Calls[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("calls in order: %v", a.Calls),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that the label appears exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Label() == a.Call {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Call),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertHookFired checks the hook's firing count in the snapshot.
func assertHookFired(snap host.Snapshot, a Assertion) error {
	n := snap.Hooks[a.Hook]
	if (a.Count == 0 && n > 0) || (a.Count > 0 && n == a.Count) {
		return nil
	}
	expected := fmt.Sprintf("%s fired %d times", a.Hook, a.Count)
	if a.Count == 0 {
		expected = fmt.Sprintf("%s fired at least once", a.Hook)
	}
	return &AssertionError{Type: AssertHookFired, Expected: expected, Actual: fmt.Sprintf("fired %d times", n)}
}

// assertOption checks a stored option's value.
func assertOption(ctx context.Context, opts host.OptionStore, a Assertion) error {
	v, ok, err := opts.GetOption(ctx, a.Name)
	if err != nil {
		return fmt.Errorf("option %s: %w", a.Name, err)
	}
	if !ok {
		return &AssertionError{Type: AssertOption, Expected: fmt.Sprintf("%s = %q", a.Name, a.Value), Actual: "option not set"}
	}
	if v != a.Value {
		return &AssertionError{Type: AssertOption, Expected: fmt.Sprintf("%s = %q", a.Name, a.Value), Actual: fmt.Sprintf("%q", v)}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, opts host.OptionStore) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertHookFired:
			err = assertHookFired(result.Snapshot, a)
		case AssertOption:
			if opts == nil {
				err = fmt.Errorf("no option store")
				break
			}
			err = assertOption(ctx, opts, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i+1, a.Type, err))
		}
	}
	return errs
}
