package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atom/internal/store"
)

func TestRunMissingArgs(t *testing.T) {
	_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestRunNonExistentManifest(t *testing.T) {
	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "/nonexistent/contact.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestRunInvalidManifest(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "invalid.yaml", invalidManifest)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
}

func TestRunPassingManifest(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "contact.yaml", contactManifest)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "manifest: contact")
	assert.Contains(t, out, `form:contact.field("name") applied`)
	assert.Contains(t, out, "result: pass")
}

func TestRunFailingManifest(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "failing.yaml", failingManifest)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "result: fail")
	assert.Contains(t, out, "expected success=true, got false")
}

func TestRunJSON(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "contact.yaml", contactManifest)

	out, _, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Manifest string `json:"manifest"`
			Pass     bool   `json:"pass"`
			Passes   []struct {
				Category string `json:"category"`
			} `json:"passes"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "contact", resp.Data.Manifest)
	assert.True(t, resp.Data.Pass)
	require.NotEmpty(t, resp.Data.Passes)
	assert.Equal(t, "form", resp.Data.Passes[0].Category)
}

func TestRunWithDatabase(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "contact.yaml", contactManifest)
	dbPath := filepath.Join(dir, "atom.db")

	_, _, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path, "--db", dbPath)
	require.NoError(t, err)
	_, _, err = execute(NewRunCommand(&RootOptions{Format: "text"}), path, "--db", dbPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	passes, err := st.ReadPasses(context.Background(), "form")
	require.NoError(t, err)
	require.Len(t, passes, 2, "each run journals its own form pass")
	assert.NotEqual(t, passes[0].ID, passes[1].ID)
	assert.Greater(t, passes[1].Seq, passes[0].Seq, "seq continues across runs")
}

func TestRunHelpText(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	assert.Contains(t, cmd.Long, "Exit codes:")
	assert.Contains(t, cmd.Long, "--db")
}
