package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"

	"github.com/roach88/atom/internal/atom"
	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/host"
	"github.com/roach88/atom/internal/ir"
	"github.com/roach88/atom/internal/store"
)

// Option configures a run.
type Option func(*runner)

// WithStore journals passes and keeps options in s instead of memory. Seq
// numbering continues after the highest seq already journaled.
func WithStore(s *store.Store) Option {
	return func(r *runner) { r.store = s }
}

// WithLogger sets the logger for the host and the app. Runs are silent by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPassIDGenerator overrides the sequential pass IDs.
func WithPassIDGenerator(g deferral.PassIDGenerator) Option {
	return func(r *runner) {
		if g != nil {
			r.passIDs = g
		}
	}
}

type runner struct {
	store   *store.Store
	logger  *slog.Logger
	passIDs deferral.PassIDGenerator
	host    *host.Host
	app     *atom.App
}

// Session is a completed run whose host is still live.
type Session struct {
	Result *Result
	host   *host.Host
}

// Host returns the host the manifest was applied to.
func (s *Session) Host() *host.Host { return s.host }

// Run executes a manifest and returns the result.
func Run(ctx context.Context, m *Manifest, opts ...Option) (*Result, error) {
	s, err := Start(ctx, m, opts...)
	if err != nil {
		return nil, err
	}
	return s.Result, nil
}

// Start executes a manifest like Run and keeps the host for further
// requests.
//
// Each run uses a fresh host. Execution flow:
//  1. Apply Builders (calls are deferred)
//  2. Fire the lifecycle hooks, the checkpoint among them
//  3. Apply Late builders (calls take the immediate path)
//  4. Run requests and check their expectations
//  5. Snapshot the host and evaluate assertions
//
// An error is returned only when the manifest cannot run; failed
// expectations and assertions are reported in the Result.
func Start(ctx context.Context, m *Manifest, opts ...Option) (*Session, error) {
	if v := Validate(m); !v.OK() {
		return nil, fmt.Errorf("invalid manifest: %w", v.Err())
	}

	r := &runner{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		passIDs: deferral.NewSequenceGenerator("pass"),
	}
	for _, opt := range opts {
		opt(r)
	}

	hostOpts := []host.Option{host.WithLogger(r.logger)}
	appOpts := []atom.Option{
		atom.WithLogger(r.logger),
		atom.WithCheckpoint(m.checkpoint()),
		atom.WithPassIDGenerator(r.passIDs),
	}
	if r.store != nil {
		seq, err := r.store.MaxSeq(ctx)
		if err != nil {
			return nil, err
		}
		hostOpts = append(hostOpts, host.WithOptionStore(r.store))
		appOpts = append(appOpts,
			atom.WithJournal(r.store),
			atom.WithClock(deferral.NewClockAt(seq)),
		)
	}
	r.host = host.New(hostOpts...)
	r.app = atom.New(r.host, appOpts...)

	result := NewResult(m.Name, m.checkpoint())

	if err := r.apply(m.Builders, nil); err != nil {
		return nil, err
	}
	for _, hook := range m.lifecycle() {
		r.host.DoAction(hook)
	}
	for _, p := range r.app.Passes() {
		result.AddPass(p)
	}
	if err := r.apply(m.Late, result); err != nil {
		return nil, err
	}

	for i, req := range m.Requests {
		out := r.request(req)
		result.Requests = append(result.Requests, out)
		for _, msg := range checkExpect(req.Expect, out) {
			result.AddError(fmt.Sprintf("requests[%d] %s %s: %s", i, req.Kind, req.Target, msg))
		}
	}

	result.Snapshot = r.host.Snapshot()
	for _, msg := range EvaluateAssertions(ctx, result, m.Assertions, r.host.Options()) {
		result.AddError(msg)
	}

	r.logger.Info("manifest run complete",
		"manifest", m.Name,
		"passes", len(result.Passes),
		"requests", len(result.Requests),
		"pass", result.Pass,
	)
	return &Session{Result: result, host: r.host}, nil
}

// apply makes every step's calls. Late calls are recorded on result.
func (r *runner) apply(steps []BuilderStep, late *Result) error {
	for i, s := range steps {
		cat, err := ir.ParseCategory(s.Category)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		chain, err := r.app.Builder(cat, s.Key)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		for j, c := range s.Calls {
			args, err := resolveArgs(c.Args)
			if err != nil {
				return fmt.Errorf("step %d call %d: %w", i, j, err)
			}
			chain = chain.Call(c.Method, args...)
			if late != nil {
				late.AddLate(string(cat), s.Key, c.Method, args)
			}
		}
	}
	return nil
}

// request probes one host entry point. Missing registrations are reported
// as 404 outcomes.
func (r *runner) request(req Request) RequestOutcome {
	out := RequestOutcome{Kind: req.Kind, Target: req.Target}
	switch req.Kind {
	case RequestShortcode:
		body, err := r.host.DoShortcode(req.Target, req.Data)
		if err != nil {
			return notFound(out, err)
		}
		out.Status, out.Success, out.Body = http.StatusOK, true, body

	case RequestAjax:
		resp, err := r.host.HandleAjax(req.Target, req.Public, req.Data)
		if err != nil {
			return notFound(out, err)
		}
		out.Status, out.Success, out.Body = http.StatusOK, resp.Success, encodeBody(resp)

	case RequestRest:
		body, status, err := r.host.HandleRest(req.Target, req.Data)
		if err != nil {
			return notFound(out, err)
		}
		out.Status, out.Success, out.Body = status, status < http.StatusBadRequest, encodeBody(body)

	case RequestHTTP:
		method := req.Method
		if method == "" {
			method = http.MethodPost
		}
		form := url.Values{}
		for _, k := range sortedDataKeys(req.Data) {
			form.Set(k, req.Data[k])
		}
		hr := httptest.NewRequest(method, req.Target, strings.NewReader(form.Encode()))
		hr.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.host.ServeHTTP(rec, hr)
		out.Status = rec.Code
		out.Success = rec.Code < http.StatusBadRequest
		out.Body = strings.TrimSpace(rec.Body.String())
	}
	return out
}

func notFound(out RequestOutcome, err error) RequestOutcome {
	out.Status = http.StatusNotFound
	out.Body = err.Error()
	return out
}

func encodeBody(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<unencodable: %v>", err)
	}
	return string(b)
}

func sortedDataKeys(data map[string]string) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// checkExpect compares a request outcome with its expectation.
func checkExpect(e *Expect, out RequestOutcome) []string {
	if e == nil {
		return nil
	}
	var msgs []string
	if e.Status != 0 && e.Status != out.Status {
		msgs = append(msgs, fmt.Sprintf("expected status %d, got %d", e.Status, out.Status))
	}
	if e.Success != nil && *e.Success != out.Success {
		msgs = append(msgs, fmt.Sprintf("expected success=%t, got %t", *e.Success, out.Success))
	}
	if e.Contains != "" && !strings.Contains(out.Body, e.Contains) {
		msgs = append(msgs, fmt.Sprintf("expected body to contain %q, got %q", e.Contains, out.Body))
	}
	return msgs
}
