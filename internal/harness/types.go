package harness

import (
	"fmt"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/host"
	"github.com/roach88/atom/internal/ir"
)

// Trace phases.
const (
	PhaseReplay = "replay"
	PhaseLate   = "late"
)

// OutcomeForwarded marks a late call handed straight to the real builder.
const OutcomeForwarded = "forwarded"

// TraceEvent is one builder call as the run saw it: either replayed during
// a checkpoint pass or applied late.
type TraceEvent struct {
	Phase    string `json:"phase"`
	PassID   string `json:"pass_id,omitempty"`
	Category string `json:"category"`
	Key      string `json:"key"`
	Seq      int64  `json:"seq,omitempty"`
	Method   string `json:"method"`
	Args     string `json:"args"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
}

// Label is the event's call label, "category:key.method".
func (e TraceEvent) Label() string {
	return fmt.Sprintf("%s:%s.%s", e.Category, e.Key, e.Method)
}

// PassSummary condenses one checkpoint pass.
type PassSummary struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Seq      int64  `json:"seq"`
	Entries  int    `json:"entries"`
	Applied  int    `json:"applied"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// RequestOutcome is the observed result of one request.
type RequestOutcome struct {
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Body    string `json:"body"`
}

// Result is the outcome of a manifest run.
type Result struct {
	// Manifest is the name of the manifest that ran.
	Manifest string `json:"manifest"`

	// Checkpoint is the hook that replayed deferred builders.
	Checkpoint string `json:"checkpoint"`

	// Pass is true when every request expectation and assertion held.
	Pass bool `json:"pass"`

	// Passes summarizes each checkpoint pass in firing order.
	Passes []PassSummary `json:"passes"`

	// Trace lists replayed calls pass by pass, then late calls.
	Trace []TraceEvent `json:"trace"`

	// Requests holds one outcome per manifest request.
	Requests []RequestOutcome `json:"requests"`

	// Snapshot is the host's registrations after the run.
	Snapshot host.Snapshot `json:"snapshot"`

	// Errors contains failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name, checkpoint string) *Result {
	return &Result{
		Manifest:   name,
		Checkpoint: checkpoint,
		Pass:       true,
		Passes:     []PassSummary{},
		Trace:      []TraceEvent{},
		Requests:   []RequestOutcome{},
		Errors:     []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddPass appends a pass summary and its replayed calls to the trace.
func (r *Result) AddPass(p *deferral.Pass) {
	for _, e := range p.Entries {
		for _, c := range e.Calls {
			ev := TraceEvent{
				Phase:    PhaseReplay,
				PassID:   p.ID,
				Category: string(e.Category),
				Key:      string(e.Key),
				Seq:      c.Record.Seq,
				Method:   c.Record.Method,
				Args:     ir.FormatArgs(c.Record.Args),
				Outcome:  string(c.Outcome),
			}
			if c.Err != nil {
				ev.Error = c.Err.Error()
			}
			r.Trace = append(r.Trace, ev)
		}
	}
	r.Passes = append(r.Passes, PassSummary{
		ID:       p.ID,
		Category: string(p.Category),
		Seq:      p.Seq,
		Entries:  len(p.Entries),
		Applied:  p.Applied(),
		Skipped:  p.Skipped(),
		Failed:   p.Failed(),
	})
}

// AddLate records a call applied after the checkpoint.
func (r *Result) AddLate(category, key, method string, args []any) {
	r.Trace = append(r.Trace, TraceEvent{
		Phase:    PhaseLate,
		Category: category,
		Key:      key,
		Method:   method,
		Args:     ir.FormatArgs(args),
		Outcome:  OutcomeForwarded,
	})
}
