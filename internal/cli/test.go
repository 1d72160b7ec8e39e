package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/atom/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // manifest filter (glob pattern on the file name)
}

// ManifestResult holds the result of a single manifest.
type ManifestResult struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "matched", "updated" or "none"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Manifests []ManifestResult `json:"manifests"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <manifests-dir>",
		Short: "Run every manifest in a directory",
		Long: `Run every manifest (.yaml, .yml, .cue) in a directory.

A manifest passes when its requests and assertions hold and, if
golden/<name>.golden exists next to it, its rendered trace matches.

Exit codes:
  0 - All manifests passed
  1 - One or more manifests failed
  2 - Command error (invalid paths, etc.)

Examples:
  atom test ./manifests
  atom test ./manifests --filter "contact*"
  atom test ./manifests --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter manifests by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("manifests directory not found: %s", dir), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("manifests directory not found: %s", dir))
	}

	files, err := findManifestFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find manifests", err)
	}

	result := TestResult{Manifests: make([]ManifestResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		mr := runManifestTest(opts, file, cmd)
		if mr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Manifests = append(result.Manifests, mr)
	}

	text := func(w io.Writer) {
		if result.Total == 0 {
			fmt.Fprintln(w, "No manifests found.")
			return
		}
		for _, mr := range result.Manifests {
			mark := "✓"
			if !mr.Pass {
				mark = "✗"
			}
			suffix := ""
			if mr.Golden == "updated" {
				suffix = " (golden updated)"
			}
			fmt.Fprintf(w, "%s %s%s\n", mark, mr.Name, suffix)
			for _, e := range mr.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		msg := fmt.Sprintf("%d manifest(s) failed", result.Failed)
		if err := f.Failure(ErrCodeRunFailed, msg, result, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(result, text)
}

// findManifestFiles finds manifest files in dir, skipping golden directories.
func findManifestFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		switch ext {
		case ".yaml", ".yml", ".cue":
		default:
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runManifestTest runs one manifest and checks its golden file.
func runManifestTest(opts *TestOptions, file string, cmd *cobra.Command) ManifestResult {
	mr := ManifestResult{Name: filepath.Base(file), Path: file}

	m, err := harness.LoadManifest(file)
	if err != nil {
		mr.Errors = []string{fmt.Sprintf("failed to load manifest: %v", err)}
		return mr
	}
	mr.Name = m.Name

	result, err := harness.Run(commandContext(cmd), m, harness.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	if err != nil {
		mr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return mr
	}
	mr.Errors = result.Errors

	rendered := harness.Render(result)
	goldenPath := goldenFilePath(file)

	if opts.Update {
		if err := writeGoldenFile(goldenPath, rendered); err != nil {
			mr.Errors = append(mr.Errors, err.Error())
			return mr
		}
		mr.Golden = "updated"
		mr.Pass = result.Pass
		return mr
	}

	want, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
		mr.Golden = "none"
	case err != nil:
		mr.Errors = append(mr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return mr
	case !bytes.Equal(want, rendered):
		mr.Errors = append(mr.Errors, "Golden file mismatch (run with --update to regenerate)")
		return mr
	default:
		mr.Golden = "matched"
	}

	mr.Pass = result.Pass
	return mr
}

// goldenFilePath returns the golden file for a manifest file.
func goldenFilePath(manifestFile string) string {
	dir := filepath.Dir(manifestFile)
	base := filepath.Base(manifestFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

func writeGoldenFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
