package ir

import "errors"

// ErrLogSealed is returned when appending to a log whose replay has begun.
var ErrLogSealed = errors.New("call log sealed: replay has begun")

// CallLog is the ordered sequence of records for one deferred builder.
//
// INVARIANTS:
//   - insertion order == call order
//   - append-only while open; no append succeeds after Seal
//
// A CallLog is not safe for concurrent use. Recording and replay happen on the
// single control flow that drives the host lifecycle.
type CallLog struct {
	records []CallRecord
	sealed  bool
}

// Append adds a record to the end of the log.
func (l *CallLog) Append(r CallRecord) error {
	if l.sealed {
		return ErrLogSealed
	}
	l.records = append(l.records, r)
	return nil
}

// Seal freezes the log. Sealing twice is a no-op.
func (l *CallLog) Seal() {
	l.sealed = true
}

// Sealed reports whether the log has been frozen.
func (l *CallLog) Sealed() bool {
	return l.sealed
}

// Len returns the number of recorded calls.
func (l *CallLog) Len() int {
	return len(l.records)
}

// Records returns a copy of the records in call order. The argument slices
// are shared with the log, so callers must not modify them.
func (l *CallLog) Records() []CallRecord {
	out := make([]CallRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Methods returns the recorded method names in call order.
func (l *CallLog) Methods() []string {
	out := make([]string, len(l.records))
	for i, r := range l.records {
		out[i] = r.Method
	}
	return out
}
