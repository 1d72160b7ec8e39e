package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/harness"
	"github.com/roach88/atom/internal/store"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Database string

	// ready is called with the bound address once the server listens (for
	// testing).
	ready func(addr string)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <manifest>",
		Short: "Run a manifest and serve its host over HTTP",
		Long: `Run a builder manifest, then serve the resulting host over HTTP.

Routes:
  /admin-ajax?action=<name>  registered ajax actions (form-encoded body)
  /wp-json/<route>           registered REST routes

Press Ctrl-C to stop.

Examples:
  atom serve ./manifests/contact.yaml
  atom serve ./manifests/contact.yaml --addr 127.0.0.1:9090 --db ./atom.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	addr := rootOpts.Env.Addr
	if addr == "" {
		addr = defaultAddr
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", addr, "listen address (ATOM_ADDR)")
	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Env.Database, "path to SQLite database for the journal and options (ATOM_DB)")

	return cmd
}

func runServe(opts *ServeOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	m, err := loadValidManifest(f, path)
	if err != nil {
		return err
	}

	// Use command's context if available (for testing), otherwise create one
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	runOpts := []harness.Option{harness.WithLogger(logger)}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			_ = f.Error(ErrCodeStore, "failed to open database", err.Error())
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer closeStore(st, logger)
		runOpts = append(runOpts, harness.WithStore(st), harness.WithPassIDGenerator(deferral.UUIDv7Generator{}))
	}

	session, err := harness.Start(ctx, m, runOpts...)
	if err != nil {
		_ = f.Error(ErrCodeGeneric, "manifest run failed", err.Error())
		return WrapExitError(ExitCommandError, "manifest run failed", err)
	}
	for _, e := range session.Result.Errors {
		logger.Warn("manifest check failed", "error", e)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		_ = f.Error(ErrCodeServeFailed, "failed to listen", err.Error())
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	srv := &http.Server{Handler: session.Host(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	addr := ln.Addr().String()
	logger.Info("serving host", "manifest", m.Name, "addr", addr)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", m.Name, addr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")
	if opts.ready != nil {
		opts.ready(addr)
	}

	select {
	case err := <-errCh:
		_ = f.Error(ErrCodeServeFailed, "server error", err.Error())
		return WrapExitError(ExitFailure, "server error", err)
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
