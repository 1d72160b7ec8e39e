package deferral

import (
	"errors"
	"fmt"

	"github.com/roach88/atom/internal/ir"
)

// Outcome is what happened to one recorded call during replay.
type Outcome string

const (
	// OutcomeApplied: dispatched to the real builder without error.
	OutcomeApplied Outcome = "applied"
	// OutcomeSkipped: the real builder does not expose the method.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed: the operation returned an error or panicked.
	OutcomeFailed Outcome = "failed"
	// OutcomeNotRun: an earlier call of the same entry failed.
	OutcomeNotRun Outcome = "not_run"
)

// CallResult pairs a recorded call with its replay outcome.
type CallResult struct {
	Record  ir.CallRecord
	Outcome Outcome
	Err     error
}

// EntryResult summarizes the replay of one entry.
type EntryResult struct {
	EntryID  string
	Category ir.Category
	Key      ir.Key
	Calls    []CallResult
	Err      error // set when the entry failed (construct, operation error or panic)
}

// Pass is the record of one checkpoint firing for one category.
type Pass struct {
	ID       string
	Category ir.Category
	Seq      int64
	Entries  []EntryResult
}

// Applied counts calls dispatched successfully.
func (p *Pass) Applied() int { return p.count(OutcomeApplied) }

// Skipped counts calls skipped as unknown operations.
func (p *Pass) Skipped() int { return p.count(OutcomeSkipped) }

// Failed counts entries that did not replay completely.
func (p *Pass) Failed() int {
	n := 0
	for _, e := range p.Entries {
		if e.Err != nil {
			n++
		}
	}
	return n
}

func (p *Pass) count(o Outcome) int {
	n := 0
	for _, e := range p.Entries {
		for _, c := range e.Calls {
			if c.Outcome == o {
				n++
			}
		}
	}
	return n
}

// errAlreadyReplayed guards against replaying an entry twice.
var errAlreadyReplayed = errors.New("entry already replayed")

// Replay constructs the real builder from the entry's key and applies the
// call log to it in order.
//
// Unknown methods are skipped with a warning. The first operation that fails
// ends the entry: its remaining records are reported as not run. Replay never
// panics and never runs twice for the same entry.
func (e *Entry) Replay() EntryResult {
	res := EntryResult{EntryID: e.id, Category: e.category, Key: e.key}

	if e.state != statePending {
		res.Err = &ReplayError{Code: ErrCodeOperationFailed, Category: e.category, Key: e.key, Err: errAlreadyReplayed}
		return res
	}
	e.state = stateReplaying
	e.log.Seal()
	defer func() { e.state = stateReplayed }()

	real, err := safeConstruct(e.construct, e.key)
	if err != nil {
		res.Err = &ReplayError{Code: ErrCodeConstructFailed, Category: e.category, Key: e.key, Err: err}
		e.logger.Error("construct failed",
			"category", e.category,
			"key", e.key,
			"entry_id", e.id,
			"error", err,
		)
		return res
	}
	e.real = real

	records := e.log.Records()
	res.Calls = make([]CallResult, 0, len(records))
	for i, rec := range records {
		err := SafeDispatch(real, rec.Method, rec.Args)
		if err == nil {
			res.Calls = append(res.Calls, CallResult{Record: rec, Outcome: OutcomeApplied})
			continue
		}

		if errors.Is(err, ErrUnknownOperation) {
			re := &ReplayError{Code: ErrCodeUnknownOperation, Category: e.category, Key: e.key, Method: rec.Method, Seq: rec.Seq, Err: err}
			res.Calls = append(res.Calls, CallResult{Record: rec, Outcome: OutcomeSkipped, Err: re})
			e.logger.Warn("unknown operation skipped",
				"category", e.category,
				"key", e.key,
				"method", rec.Method,
				"seq", rec.Seq,
			)
			continue
		}

		code := ErrCodeOperationFailed
		var pe *panicError
		if errors.As(err, &pe) {
			code = ErrCodeOperationPanic
		}
		re := &ReplayError{Code: code, Category: e.category, Key: e.key, Method: rec.Method, Seq: rec.Seq, Err: err}
		res.Calls = append(res.Calls, CallResult{Record: rec, Outcome: OutcomeFailed, Err: re})
		res.Err = re
		e.logger.Error("entry replay failed",
			"category", e.category,
			"key", e.key,
			"method", rec.Method,
			"seq", rec.Seq,
			"error", err,
		)
		for _, rest := range records[i+1:] {
			res.Calls = append(res.Calls, CallResult{Record: rest, Outcome: OutcomeNotRun})
		}
		break
	}

	return res
}

// panicError carries a recovered panic value.
type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// SafeDispatch calls d.Dispatch, turning a panic into an error.
func SafeDispatch(d Dispatcher, method string, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return d.Dispatch(method, args)
}

func safeConstruct(c Constructor, key ir.Key) (d Dispatcher, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, &panicError{value: r}
		}
	}()
	if c == nil {
		return nil, errors.New("no constructor")
	}
	d = c(key)
	if d == nil {
		return nil, errors.New("constructor returned nil")
	}
	return d, nil
}
