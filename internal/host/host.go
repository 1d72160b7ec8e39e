package host

import (
	"log/slog"
	"sync"
)

// Host holds every registration made by builders.
//
// Thread-safety: registration and lookup are guarded by a mutex. Callbacks
// run without the lock held, so they may register further callbacks.
type Host struct {
	mu      sync.Mutex
	order   int
	actions map[string][]hookEntry
	filters map[string][]filterEntry
	fired   map[string]int
	running map[string]int

	shortcodes       map[string]ShortcodeFunc
	ajax             map[string]AjaxHandler
	routes           map[string]RestHandler
	postTypes        map[string]PostTypeArgs
	menuPages        []MenuPage
	settings         map[string][]Setting
	widgets          []Widget
	dashboardWidgets []Widget
	filterUIs        map[string][]string
	notices          []Notice
	bulkActions      map[string]map[string]BulkAction
	outbox           []Mail

	options OptionStore
	logger  *slog.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithOptionStore sets the persistent option store. Default: MemoryOptions.
func WithOptionStore(s OptionStore) Option {
	return func(h *Host) {
		if s != nil {
			h.options = s
		}
	}
}

// New creates an empty host.
func New(opts ...Option) *Host {
	h := &Host{
		actions:     make(map[string][]hookEntry),
		filters:     make(map[string][]filterEntry),
		fired:       make(map[string]int),
		running:     make(map[string]int),
		shortcodes:  make(map[string]ShortcodeFunc),
		ajax:        make(map[string]AjaxHandler),
		routes:      make(map[string]RestHandler),
		postTypes:   make(map[string]PostTypeArgs),
		settings:    make(map[string][]Setting),
		filterUIs:   make(map[string][]string),
		bulkActions: make(map[string]map[string]BulkAction),
		options:     NewMemoryOptions(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Options returns the persistent option store.
func (h *Host) Options() OptionStore {
	return h.options
}

// Logger returns the host logger.
func (h *Host) Logger() *slog.Logger {
	return h.logger
}
