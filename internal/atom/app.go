package atom

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/atom/internal/builder"
	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/host"
	"github.com/roach88/atom/internal/ir"
)

// DefaultCheckpoint is the hook whose first firing replays deferred builders.
const DefaultCheckpoint = "init"

// App ties builders to one host.
//
// Thread-safety: the pass history is guarded by a mutex. Recording and
// replay follow the host's single lifecycle control flow.
type App struct {
	host       *host.Host
	env        *builder.Env
	logger     *slog.Logger
	clock      *deferral.Clock
	checkpoint string
	journal    deferral.Journal
	passIDs    deferral.PassIDGenerator

	registries map[ir.Category]*deferral.Registry
	chains     map[ir.Category]func(ir.Key) deferral.Chain

	forms     *deferral.Factory[builder.Form, *builder.FormBuilder]
	postTypes *deferral.Factory[builder.PostType, *builder.PostTypeBuilder]
	settings  *deferral.Factory[builder.Settings, *builder.SettingsBuilder]
	ajax      *deferral.Factory[builder.Ajax, *builder.AjaxBuilder]
	rest      *deferral.Factory[builder.Rest, *builder.RestBuilder]
	filters   *deferral.Factory[builder.Filter, *builder.FilterBuilder]

	mu     sync.Mutex
	passes []*deferral.Pass
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger shared by registries and builders.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithJournal records every replay pass.
func WithJournal(j deferral.Journal) Option {
	return func(a *App) { a.journal = j }
}

// WithCheckpoint sets the hook that triggers replay. Default: "init".
func WithCheckpoint(hook string) Option {
	return func(a *App) {
		if hook != "" {
			a.checkpoint = hook
		}
	}
}

// WithPassIDGenerator sets how pass IDs are generated. Default: UUIDv7.
func WithPassIDGenerator(g deferral.PassIDGenerator) Option {
	return func(a *App) {
		if g != nil {
			a.passIDs = g
		}
	}
}

// WithClock sets the logical clock shared by all registries.
func WithClock(c *deferral.Clock) Option {
	return func(a *App) {
		if c != nil {
			a.clock = c
		}
	}
}

// New creates an App over h and subscribes every category's replay to the
// checkpoint hook, at most once each. When h already completed the
// checkpoint, every category fires before New returns and all builders take
// the immediate path.
func New(h *host.Host, opts ...Option) *App {
	a := &App{
		host:       h,
		logger:     h.Logger(),
		clock:      deferral.NewClock(),
		checkpoint: DefaultCheckpoint,
		passIDs:    deferral.UUIDv7Generator{},
		registries: make(map[ir.Category]*deferral.Registry),
		chains:     make(map[ir.Category]func(ir.Key) deferral.Chain),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.env = builder.NewEnv(h, a.logger)

	for _, c := range ir.Categories() {
		regOpts := []deferral.RegistryOption{
			deferral.WithLogger(a.logger),
			deferral.WithClock(a.clock),
			deferral.WithPassIDGenerator(a.passIDs),
		}
		if a.journal != nil {
			regOpts = append(regOpts, deferral.WithJournal(a.journal))
		}
		a.registries[c] = deferral.NewRegistry(c, regOpts...)
	}

	env := a.env
	a.forms = deferral.NewFactory(a.registries[ir.CategoryForm],
		func(k ir.Key) *builder.FormBuilder { return builder.NewForm(env, k) },
		func(b *builder.FormBuilder) builder.Form { return b },
		func(f *deferral.Facade) builder.Form { return builder.NewDeferredForm(f) },
	)
	a.postTypes = deferral.NewFactory(a.registries[ir.CategoryPostType],
		func(k ir.Key) *builder.PostTypeBuilder { return builder.NewPostType(env, k) },
		func(b *builder.PostTypeBuilder) builder.PostType { return b },
		func(f *deferral.Facade) builder.PostType { return builder.NewDeferredPostType(f) },
	)
	a.settings = deferral.NewFactory(a.registries[ir.CategorySettings],
		func(k ir.Key) *builder.SettingsBuilder { return builder.NewSettings(env, k) },
		func(b *builder.SettingsBuilder) builder.Settings { return b },
		func(f *deferral.Facade) builder.Settings { return builder.NewDeferredSettings(f) },
	)
	a.ajax = deferral.NewFactory(a.registries[ir.CategoryAjax],
		func(k ir.Key) *builder.AjaxBuilder { return builder.NewAjax(env, k) },
		func(b *builder.AjaxBuilder) builder.Ajax { return b },
		func(f *deferral.Facade) builder.Ajax { return builder.NewDeferredAjax(f) },
	)
	a.rest = deferral.NewFactory(a.registries[ir.CategoryRest],
		func(k ir.Key) *builder.RestBuilder { return builder.NewRest(env, k) },
		func(b *builder.RestBuilder) builder.Rest { return b },
		func(f *deferral.Facade) builder.Rest { return builder.NewDeferredRest(f) },
	)
	a.filters = deferral.NewFactory(a.registries[ir.CategoryFilter],
		func(k ir.Key) *builder.FilterBuilder { return builder.NewFilter(env, k) },
		func(b *builder.FilterBuilder) builder.Filter { return b },
		func(f *deferral.Facade) builder.Filter { return builder.NewDeferredFilter(f) },
	)

	a.chains[ir.CategoryForm] = a.forms.Chain
	a.chains[ir.CategoryPostType] = a.postTypes.Chain
	a.chains[ir.CategorySettings] = a.settings.Chain
	a.chains[ir.CategoryAjax] = a.ajax.Chain
	a.chains[ir.CategoryRest] = a.rest.Chain
	a.chains[ir.CategoryFilter] = a.filters.Chain

	for _, c := range ir.Categories() {
		category := c
		h.OnceOrRun(a.checkpoint, func() {
			a.Fire(context.Background(), category)
		})
	}
	return a
}

// Host returns the host the App registers with.
func (a *App) Host() *host.Host { return a.host }

// Checkpoint returns the hook that triggers replay.
func (a *App) Checkpoint() string { return a.checkpoint }

// Registry returns the registry for c, or nil for an unknown category.
func (a *App) Registry(c ir.Category) *deferral.Registry { return a.registries[c] }

// Form returns the form builder for slug.
func (a *App) Form(slug string) builder.Form { return a.forms.Get(ir.Key(slug)) }

// PostType returns the post type builder for slug.
func (a *App) PostType(slug string) builder.PostType { return a.postTypes.Get(ir.Key(slug)) }

// Settings returns the settings page builder for slug.
func (a *App) Settings(slug string) builder.Settings { return a.settings.Get(ir.Key(slug)) }

// Ajax returns the AJAX action builder for action.
func (a *App) Ajax(action string) builder.Ajax { return a.ajax.Get(ir.Key(action)) }

// Rest returns the REST route builder for route ("/hello").
func (a *App) Rest(route string) builder.Rest { return a.rest.Get(ir.Key(route)) }

// Filter returns the list filter builder for postType.
func (a *App) Filter(postType string) builder.Filter { return a.filters.Get(ir.Key(postType)) }

// Builder returns a name-based builder for category and key, deferred or
// immediate by the same rule as the typed factories.
func (a *App) Builder(category ir.Category, key string) (deferral.Chain, error) {
	chain, ok := a.chains[category]
	if !ok {
		return nil, fmt.Errorf("unknown builder category %q", category)
	}
	return chain(ir.Key(key)), nil
}

// Fire replays category's deferred builders now. It returns nil when the
// category already fired.
func (a *App) Fire(ctx context.Context, category ir.Category) *deferral.Pass {
	reg, ok := a.registries[category]
	if !ok {
		a.logger.Warn("fire for unknown category ignored", "category", category)
		return nil
	}
	pass := reg.Fire(ctx)
	if pass == nil {
		return nil
	}
	a.mu.Lock()
	a.passes = append(a.passes, pass)
	a.mu.Unlock()
	return pass
}

// Passes returns the replay passes run so far, in order.
func (a *App) Passes() []*deferral.Pass {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*deferral.Pass(nil), a.passes...)
}
