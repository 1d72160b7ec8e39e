package builder

import (
	"github.com/roach88/atom/internal/host"
)

// DashboardWidgetBuilder registers an admin dashboard widget. It is always
// built immediately.
type DashboardWidgetBuilder struct {
	env        *Env
	id         string
	title      string
	content    func() string
	context    string
	priority   string
	registered bool
}

func NewDashboardWidget(env *Env, id string) *DashboardWidgetBuilder {
	return &DashboardWidgetBuilder{
		env:      env,
		id:       SanitizeKey(id),
		title:    "Dashboard Widget",
		context:  "normal",
		priority: "core",
	}
}

func (b *DashboardWidgetBuilder) Title(title string) *DashboardWidgetBuilder {
	b.title = title
	return b
}

// Content sets the renderer and schedules registration on
// wp_dashboard_setup. Title, context and priority are read when the hook
// runs.
func (b *DashboardWidgetBuilder) Content(render func() string) *DashboardWidgetBuilder {
	b.content = render
	if b.registered {
		return b
	}
	b.registered = true
	b.env.Host.AddActionOrRun("wp_dashboard_setup", func() {
		b.env.Host.AddDashboardWidget(host.Widget{
			ID:       b.id,
			Title:    b.title,
			Context:  b.context,
			Priority: b.priority,
			Render:   b.content,
		})
	})
	return b
}

func (b *DashboardWidgetBuilder) Context(context string) *DashboardWidgetBuilder {
	b.context = context
	return b
}

func (b *DashboardWidgetBuilder) Priority(priority string) *DashboardWidgetBuilder {
	b.priority = priority
	return b
}

// WidgetBuilder registers a sidebar widget on widgets_init.
type WidgetBuilder struct {
	env        *Env
	id         string
	title      string
	content    func() string
	registered bool
}

func NewWidget(env *Env, id string) *WidgetBuilder {
	return &WidgetBuilder{env: env, id: SanitizeKey(id), title: "Widget"}
}

func (b *WidgetBuilder) Title(title string) *WidgetBuilder {
	b.title = title
	return b
}

func (b *WidgetBuilder) Content(render func() string) *WidgetBuilder {
	b.content = render
	if b.registered {
		return b
	}
	b.registered = true
	b.env.Host.AddActionOrRun("widgets_init", func() {
		b.env.Host.AddWidget(host.Widget{ID: b.id, Title: b.title, Render: b.content})
	})
	return b
}
