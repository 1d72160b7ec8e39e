package builder

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/atom/internal/deferral"
	"github.com/roach88/atom/internal/host"
	"github.com/roach88/atom/internal/ir"
)

// TurnstileKeys are the site and secret keys rendered by forms using
// turnstile.
type TurnstileKeys struct {
	Site   string
	Secret string
}

// Env is what builders share with the surrounding application.
// Builders keep a pointer, so keys set after construction are still seen
// when a form renders.
type Env struct {
	Host      *host.Host
	Logger    *slog.Logger
	Turnstile TurnstileKeys
}

// NewEnv creates an Env over h. A nil logger falls back to the host's.
func NewEnv(h *host.Host, logger *slog.Logger) *Env {
	if logger == nil {
		logger = h.Logger()
	}
	return &Env{Host: h, Logger: logger}
}

// callLogged dispatches method on d and logs instead of returning failures,
// the same way replay reports them.
func callLogged(env *Env, category ir.Category, key string, d deferral.Dispatcher, method string, args []any) {
	err := deferral.SafeDispatch(d, method, args)
	if err == nil {
		return
	}
	if deferral.IsUnknownOperation(err) {
		env.Logger.Warn("unknown operation skipped",
			"category", category,
			"key", key,
			"method", method,
		)
		return
	}
	env.Logger.Error("operation failed",
		"category", category,
		"key", key,
		"method", method,
		"args", ir.FormatArgs(args),
		"error", err,
	)
}

// titleize turns a slug or field name into a label: "api_key" -> "Api Key".
func titleize(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
