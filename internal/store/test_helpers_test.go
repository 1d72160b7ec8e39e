package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPass builds a pass with one entry holding the given calls.
func createTestPass(id string, category ir.Category, seq int64, calls ...deferral.CallResult) *deferral.Pass {
	return &deferral.Pass{
		ID:       id,
		Category: category,
		Seq:      seq,
		Entries: []deferral.EntryResult{{
			EntryID:  "entry-" + id,
			Category: category,
			Key:      "k1",
			Calls:    calls,
		}},
	}
}

func applied(seq int64, method string, args ...any) deferral.CallResult {
	return deferral.CallResult{
		Record:  ir.CallRecord{Seq: seq, Method: method, Args: args},
		Outcome: deferral.OutcomeApplied,
	}
}
