package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/atom/internal/ir"
	"github.com/roach88/atom/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Category string // optional - filter to one category
	PassID   string // optional - show a single pass
}

// TracePass is a journaled pass with its entries and calls.
type TracePass struct {
	store.PassRecord
	EntryList []store.EntryRecord `json:"entry_list"`
	Calls     []store.CallRecord  `json:"calls"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Passes []TracePass `json:"passes"`
	Stats  TraceStats  `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Passes  int `json:"passes"`
	Calls   int `json:"calls"`
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled checkpoint passes",
		Long: `Show the checkpoint passes journaled by "atom run --db".

Each pass lists the calls it replayed in seq order with their outcome
(applied, skipped, failed, not_run).

Examples:
  atom trace --db ./atom.db
  atom trace --db ./atom.db --category form
  atom trace --db ./atom.db --pass 0192f7c1-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Env.Database, "path to SQLite database (ATOM_DB)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "filter to one category")
	cmd.Flags().StringVar(&opts.PassID, "pass", "", "show a single pass")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Database == "" {
		return NewExitError(ExitCommandError, "a database is required: set --db or ATOM_DB")
	}
	if opts.Category != "" {
		if _, err := ir.ParseCategory(opts.Category); err != nil {
			_ = f.Error(ErrCodeInvalid, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid category", err)
		}
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = f.Error(ErrCodeStore, "failed to open database", err.Error())
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st, newLogger(opts.RootOptions, cmd.ErrOrStderr()))

	var records []store.PassRecord
	if opts.PassID != "" {
		p, ok, err := st.ReadPass(ctx, opts.PassID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read pass", err)
		}
		if !ok {
			msg := fmt.Sprintf("pass not found: %s", opts.PassID)
			_ = f.Error(ErrCodeNotFound, msg, nil)
			return NewExitError(ExitFailure, msg)
		}
		records = []store.PassRecord{p}
	} else {
		records, err = st.ReadPasses(ctx, opts.Category)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read passes", err)
		}
	}

	result := TraceResult{Passes: make([]TracePass, 0, len(records))}
	for _, p := range records {
		entries, err := st.ReadEntries(ctx, p.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read entries", err)
		}
		calls, err := st.ReadCalls(ctx, p.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read calls", err)
		}
		result.Passes = append(result.Passes, TracePass{PassRecord: p, EntryList: entries, Calls: calls})
		result.Stats.Calls += len(calls)
		result.Stats.Applied += p.Applied
		result.Stats.Skipped += p.Skipped
		result.Stats.Failed += p.Failed
	}
	result.Stats.Passes = len(result.Passes)

	return f.Success(result, func(w io.Writer) { writeTraceText(w, result) })
}

func writeTraceText(w io.Writer, result TraceResult) {
	if len(result.Passes) == 0 {
		fmt.Fprintln(w, "No passes found.")
		return
	}
	for _, p := range result.Passes {
		fmt.Fprintf(w, "pass %s %s seq=%d entries=%d applied=%d skipped=%d failed=%d\n",
			p.ID, p.Category, p.Seq, p.Entries, p.Applied, p.Skipped, p.Failed)
		for _, c := range p.Calls {
			fmt.Fprintf(w, "  %d %s:%s.%s(%s) %s\n", c.Seq, c.Category, c.Key, c.Method, c.Args, c.Outcome)
			if c.Error != "" {
				fmt.Fprintf(w, "    error: %s\n", c.Error)
			}
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d passes, %d calls (%d applied, %d skipped, %d failed)\n",
		result.Stats.Passes, result.Stats.Calls, result.Stats.Applied, result.Stats.Skipped, result.Stats.Failed)
}
