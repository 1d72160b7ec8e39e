package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journaledDB runs the contact manifest against a fresh database and
// returns its path.
func journaledDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := writeManifest(t, dir, "contact.yaml", contactManifest)
	dbPath := filepath.Join(dir, "atom.db")
	_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path, "--db", dbPath)
	require.NoError(t, err)
	return dbPath
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	_, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "set --db or ATOM_DB")
}

func TestTraceInvalidCategory(t *testing.T) {
	_, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}),
		"--db", filepath.Join(t.TempDir(), "atom.db"), "--category", "widget")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceEmptyDatabase(t *testing.T) {
	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}),
		"--db", filepath.Join(t.TempDir(), "atom.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No passes found.")
}

func TestTraceAllPasses(t *testing.T) {
	dbPath := journaledDB(t)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, " form seq=")
	assert.Contains(t, out, `form:contact.field("name") applied`)
	assert.Contains(t, out, "Stats: 6 passes, 3 calls (3 applied, 0 skipped, 0 failed)")
}

func TestTraceCategoryFilterJSON(t *testing.T) {
	dbPath := journaledDB(t)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "json"}),
		"--db", dbPath, "--category", "form")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Passes, 1)
	pass := resp.Data.Passes[0]
	assert.Equal(t, "form", pass.Category)
	require.Len(t, pass.EntryList, 1)
	assert.Equal(t, "contact", pass.EntryList[0].Key)
	require.Len(t, pass.Calls, 3)
	assert.Equal(t, "field", pass.Calls[0].Method)
	assert.Equal(t, "shortcode", pass.Calls[2].Method)
}

func TestTraceSinglePass(t *testing.T) {
	dbPath := journaledDB(t)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--category", "form")
	require.NoError(t, err)
	var all struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	require.Len(t, all.Data.Passes, 1)
	id := all.Data.Passes[0].ID

	out, _, err = execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--pass", id)
	require.NoError(t, err)
	assert.Contains(t, out, "pass "+id+" form")
	assert.Contains(t, out, "Stats: 1 passes")
}

func TestTracePassNotFound(t *testing.T) {
	dbPath := journaledDB(t)

	out, _, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--pass", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E007]")
}
