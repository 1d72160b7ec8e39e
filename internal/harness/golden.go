package harness

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/atom/internal/deferral"
)

// Render writes a result as deterministic text: passes with their replayed
// calls, late calls, request outcomes, fired hooks and the verdict. Passes
// without entries are omitted; errors are shown for failed calls only.
func Render(r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "manifest: %s\n", r.Manifest)
	fmt.Fprintf(&b, "checkpoint: %s\n", r.Checkpoint)

	for _, p := range r.Passes {
		if p.Entries == 0 {
			continue
		}
		fmt.Fprintf(&b, "pass %s %s seq=%d entries=%d applied=%d skipped=%d failed=%d\n",
			p.ID, p.Category, p.Seq, p.Entries, p.Applied, p.Skipped, p.Failed)
		for _, ev := range r.Trace {
			if ev.Phase == PhaseReplay && ev.PassID == p.ID {
				fmt.Fprintf(&b, "  %d %s(%s) %s\n", ev.Seq, ev.Label(), ev.Args, ev.Outcome)
				if ev.Outcome == string(deferral.OutcomeFailed) {
					fmt.Fprintf(&b, "    error: %s\n", ev.Error)
				}
			}
		}
	}

	for _, ev := range r.Trace {
		if ev.Phase == PhaseLate {
			fmt.Fprintf(&b, "late %s(%s) %s\n", ev.Label(), ev.Args, ev.Outcome)
		}
	}

	for i, q := range r.Requests {
		fmt.Fprintf(&b, "request %d %s %s status=%d success=%t\n", i+1, q.Kind, q.Target, q.Status, q.Success)
		for _, line := range strings.Split(strings.TrimRight(q.Body, "\n"), "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	hooks := make([]string, 0, len(r.Snapshot.Hooks))
	for h := range r.Snapshot.Hooks {
		hooks = append(hooks, h)
	}
	sort.Strings(hooks)
	for i, h := range hooks {
		hooks[i] = fmt.Sprintf("%s=%d", h, r.Snapshot.Hooks[h])
	}
	fmt.Fprintf(&b, "hooks: %s\n", strings.Join(hooks, " "))

	if r.Pass {
		b.WriteString("result: pass\n")
	} else {
		b.WriteString("result: fail\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s\n", strings.ReplaceAll(strings.TrimRight(e, "\n"), "\n", "\n  "))
		}
	}
	return []byte(b.String())
}

// AssertGolden compares the rendered result against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Render(result))
}
