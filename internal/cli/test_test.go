package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	_, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/manifests")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "manifests directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No manifests found")
}

func TestTestCommandEmptyDirJSON(t *testing.T) {
	out, _, err := execute(NewTestCommand(&RootOptions{Format: "json"}), t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
}

func TestTestCommandUpdateThenMatch(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "contact.yaml", contactManifest)

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ contact (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "contact.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), "manifest: contact")

	out, _, err = execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "contact.yaml", contactManifest)
	writeManifest(t, dir, "golden/contact.golden", "manifest: something else\n")

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ contact")
	assert.Contains(t, out, "Golden file mismatch")
}

func TestTestCommandFailingManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "contact.yaml", contactManifest)
	writeManifest(t, dir, "failing.yaml", failingManifest)

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "✓ contact")
	assert.Contains(t, out, "✗ failing")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "contact.yaml", contactManifest)
	writeManifest(t, dir, "failing.yaml", failingManifest)

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir, "--filter", "cont*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "failing")
}

func TestFindManifestFiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.yaml", "")
	writeManifest(t, dir, "b.cue", "")
	writeManifest(t, dir, "nested/c.yml", "")
	writeManifest(t, dir, "notes.txt", "")
	writeManifest(t, dir, "golden/a.golden", "")
	writeManifest(t, dir, "golden/stray.yaml", "")

	files, err := findManifestFiles(dir, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.cue"),
		filepath.Join(dir, "nested", "c.yml"),
	}, files)
}

func TestFindManifestFilesInvalidFilter(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.yaml", "")

	_, err := findManifestFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	tests := []struct {
		manifest string
		want     string
	}{
		{"manifests/contact.yaml", filepath.Join("manifests", "golden", "contact.golden")},
		{"manifests/settings.cue", filepath.Join("manifests", "golden", "settings.golden")},
		{"late.yml", filepath.Join("golden", "late.golden")},
	}
	for _, tt := range tests {
		t.Run(tt.manifest, func(t *testing.T) {
			assert.Equal(t, tt.want, goldenFilePath(tt.manifest))
		})
	}
}
