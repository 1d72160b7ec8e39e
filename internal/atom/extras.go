package atom

import (
	"github.com/roach88/atom/internal/builder"
	"github.com/roach88/atom/internal/host"
)

// Shortcode registers a shortcode directly with the host.
func (a *App) Shortcode(tag string, fn host.ShortcodeFunc) {
	a.host.AddShortcode(tag, fn)
}

// Plugin runs fn on the checkpoint hook, after deferred builders have been
// replayed, or right away when the checkpoint has passed.
func (a *App) Plugin(fn func()) {
	a.host.AddActionOrRun(a.checkpoint, fn)
}

// AdminNotice shows msg in the admin area. The type defaults to "success".
func (a *App) AdminNotice(msg string, typ ...string) {
	a.notice("admin_notices", "admin", msg, typ)
}

// Notice shows msg on the front end. The type defaults to "success".
func (a *App) Notice(msg string, typ ...string) {
	a.notice("wp_footer", "front", msg, typ)
}

func (a *App) notice(hook, scope, msg string, typ []string) {
	t := "success"
	if len(typ) > 0 && typ[0] != "" {
		t = typ[0]
	}
	a.host.AddAction(hook, func() {
		a.host.AddNotice(host.Notice{Scope: scope, Message: msg, Type: t})
	})
}

// BulkAction adds a bulk action to postType's list.
func (a *App) BulkAction(postType, action, label string, fn func(ids []int)) {
	a.host.AddBulkAction(postType, action, host.BulkAction{Label: label, Handler: fn})
}

// DashboardWidget returns a dashboard widget builder. Widgets are never
// deferred.
func (a *App) DashboardWidget(id string) *builder.DashboardWidgetBuilder {
	return builder.NewDashboardWidget(a.env, id)
}

// Widget returns a sidebar widget builder. Widgets are never deferred.
func (a *App) Widget(id string) *builder.WidgetBuilder {
	return builder.NewWidget(a.env, id)
}

// SetTurnstileKeys sets the keys forms render for turnstile.
func (a *App) SetTurnstileKeys(site, secret string) {
	a.env.Turnstile = builder.TurnstileKeys{Site: site, Secret: secret}
}
