package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/harness"
	"github.com/roach88/atom/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Run a builder manifest",
		Long: `Run a builder manifest against a fresh in-process host.

Builders are declared, the lifecycle hooks fire (replaying deferred calls
at the checkpoint), late builders are applied and the manifest's requests
and assertions are evaluated. With --db, passes are journaled and options
stored in a SQLite database.

Exit codes:
  0 - Manifest ran and every check passed
  1 - Manifest invalid or a check failed
  2 - Command error (unreadable manifest, database error)

Examples:
  atom run ./manifests/contact.yaml
  atom run ./manifests/settings.cue --db ./atom.db
  atom run ./manifests/contact.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Env.Database, "path to SQLite database for the journal and options (ATOM_DB)")

	return cmd
}

func runManifest(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	m, err := loadValidManifest(f, path)
	if err != nil {
		return err
	}

	runOpts := []harness.Option{harness.WithLogger(logger)}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			_ = f.Error(ErrCodeStore, "failed to open database", err.Error())
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer closeStore(st, logger)
		// UUIDv7 keeps pass IDs unique across runs sharing a database.
		runOpts = append(runOpts, harness.WithStore(st), harness.WithPassIDGenerator(deferral.UUIDv7Generator{}))
	}

	result, err := harness.Run(commandContext(cmd), m, runOpts...)
	if err != nil {
		_ = f.Error(ErrCodeGeneric, "manifest run failed", err.Error())
		return WrapExitError(ExitCommandError, "manifest run failed", err)
	}

	text := func(w io.Writer) { _, _ = w.Write(harness.Render(result)) }
	if !result.Pass {
		msg := fmt.Sprintf("%d check(s) failed", len(result.Errors))
		if err := f.Failure(ErrCodeRunFailed, msg, result, text); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(result, text)
}

// loadValidManifest loads and validates a manifest, reporting problems
// through f.
func loadValidManifest(f *OutputFormatter, path string) (*harness.Manifest, error) {
	m, err := harness.LoadManifest(path)
	if err != nil {
		_ = f.Error(ErrCodeLoadFailed, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load manifest", err)
	}
	v := harness.Validate(m)
	for _, w := range v.Warnings {
		f.VerboseLog("warning: %s", w)
	}
	if !v.OK() {
		_ = f.Error(ErrCodeInvalid, "manifest is invalid", v.Errors)
		return nil, WrapExitError(ExitFailure, "manifest is invalid", v.Err())
	}
	return m, nil
}

func closeStore(st *store.Store, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command runs without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
