package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/atom/internal/harness"
)

// ValidationResult holds the validation result of one manifest.
type ValidationResult struct {
	Path     string   `json:"path"`
	Name     string   `json:"name,omitempty"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>...",
		Short: "Validate manifests without running them",
		Long: `Validate builder manifests against the builder catalog.

Unknown categories, handlers and request kinds are errors. Calls to
methods a builder does not expose are warnings: they are recorded and
skipped at replay.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	results := make([]ValidationResult, 0, len(paths))
	invalid := 0
	for _, path := range paths {
		r := validateOne(path)
		if !r.Valid {
			invalid++
		}
		results = append(results, r)
	}

	text := func(w io.Writer) {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(w, "✓ %s\n", r.Path)
			} else {
				fmt.Fprintf(w, "✗ %s\n", r.Path)
			}
			for _, e := range r.Errors {
				fmt.Fprintf(w, "  error: %s\n", e)
			}
			for _, warn := range r.Warnings {
				fmt.Fprintf(w, "  warning: %s\n", warn)
			}
		}
	}

	if invalid > 0 {
		msg := fmt.Sprintf("%d manifest(s) invalid", invalid)
		if err := f.Failure(ErrCodeInvalid, msg, results, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(results, text)
}

func validateOne(path string) ValidationResult {
	r := ValidationResult{Path: path}
	m, err := harness.LoadManifest(path)
	if err != nil {
		r.Errors = []string{err.Error()}
		return r
	}
	r.Name = m.Name
	v := harness.Validate(m)
	r.Valid = v.OK()
	if len(v.Errors) > 0 {
		r.Errors = v.Errors
	}
	if len(v.Warnings) > 0 {
		r.Warnings = v.Warnings
	}
	return r
}
