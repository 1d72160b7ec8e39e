package host

import (
	"context"
	"fmt"
	"sort"
)

// ShortcodeFunc renders a shortcode.
type ShortcodeFunc func(attrs map[string]string) string

// Response is the result of an AJAX action.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// AjaxHandler serves an AJAX action with the submitted request values.
type AjaxHandler func(req map[string]string) Response

// RestHandler serves a REST route. It returns the response body and status.
type RestHandler func(params map[string]string) (body any, status int)

// PostTypeArgs describes a registered post type.
type PostTypeArgs struct {
	Label          string   `json:"label"`
	Supports       []string `json:"supports,omitempty"`
	Public         bool     `json:"public"`
	MenuIcon       string   `json:"menu_icon,omitempty"`
	CapabilityType string   `json:"capability_type,omitempty"`
	MenuPosition   int      `json:"menu_position,omitempty"`
}

// MenuPage is an admin page. Parent is empty for top-level pages.
type MenuPage struct {
	Slug       string `json:"slug"`
	Parent     string `json:"parent,omitempty"`
	Title      string `json:"title"`
	Menu       string `json:"menu"`
	Capability string `json:"capability"`
	Icon       string `json:"icon,omitempty"`
	Position   int    `json:"position,omitempty"`
}

// Setting is a persistent option registered under a settings group.
type Setting struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

// Widget is a sidebar or dashboard widget.
type Widget struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Context  string        `json:"context,omitempty"`
	Priority string        `json:"priority,omitempty"`
	Render   func() string `json:"-"`
}

// Notice is a message shown in the admin area or on the front end.
type Notice struct {
	Scope   string `json:"scope"` // "admin" | "front"
	Message string `json:"message"`
	Type    string `json:"type"`
}

// BulkAction is a list-table bulk action.
type BulkAction struct {
	Label   string
	Handler func(ids []int)
}

// Mail is a message placed in the outbox.
type Mail struct {
	To      string   `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Headers []string `json:"headers,omitempty"`
}

// AddShortcode registers a shortcode renderer, replacing any previous one.
func (h *Host) AddShortcode(tag string, fn ShortcodeFunc) {
	h.mu.Lock()
	h.shortcodes[tag] = fn
	h.mu.Unlock()
	h.logger.Debug("shortcode registered", "tag", tag)
}

// DoShortcode renders a registered shortcode.
func (h *Host) DoShortcode(tag string, attrs map[string]string) (string, error) {
	h.mu.Lock()
	fn, ok := h.shortcodes[tag]
	h.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("shortcode %q not registered", tag)
	}
	return fn(attrs), nil
}

// AddAjax registers handler for both the privileged and the public variant
// of action.
func (h *Host) AddAjax(action string, handler AjaxHandler) {
	h.mu.Lock()
	h.ajax["wp_ajax_"+action] = handler
	h.ajax["wp_ajax_nopriv_"+action] = handler
	h.mu.Unlock()
	h.logger.Debug("ajax action registered", "action", action)
}

// HandleAjax runs an AJAX action. public selects the unauthenticated variant.
func (h *Host) HandleAjax(action string, public bool, req map[string]string) (Response, error) {
	prefix := "wp_ajax_"
	if public {
		prefix = "wp_ajax_nopriv_"
	}
	h.mu.Lock()
	handler, ok := h.ajax[prefix+action]
	h.mu.Unlock()
	if !ok {
		return Response{}, fmt.Errorf("ajax action %q not registered", action)
	}
	return handler(req), nil
}

// RegisterRoute registers a REST route under namespace.
func (h *Host) RegisterRoute(namespace, route string, handler RestHandler) {
	path := "/" + namespace + route
	h.mu.Lock()
	h.routes[path] = handler
	h.mu.Unlock()
	h.logger.Debug("rest route registered", "path", path)
}

// HandleRest calls the handler registered for path ("/atom/v1/hello").
func (h *Host) HandleRest(path string, params map[string]string) (any, int, error) {
	h.mu.Lock()
	handler, ok := h.routes[path]
	h.mu.Unlock()
	if !ok {
		return nil, 0, fmt.Errorf("rest route %q not registered", path)
	}
	body, status := handler(params)
	return body, status, nil
}

// RegisterPostType registers or replaces a post type.
func (h *Host) RegisterPostType(slug string, args PostTypeArgs) {
	h.mu.Lock()
	h.postTypes[slug] = args
	h.mu.Unlock()
	h.logger.Debug("post type registered", "slug", slug, "label", args.Label)
}

// PostType returns a registered post type.
func (h *Host) PostType(slug string) (PostTypeArgs, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	args, ok := h.postTypes[slug]
	return args, ok
}

// AddMenuPage registers an admin page.
func (h *Host) AddMenuPage(p MenuPage) {
	h.mu.Lock()
	h.menuPages = append(h.menuPages, p)
	h.mu.Unlock()
	h.logger.Debug("menu page registered", "slug", p.Slug, "parent", p.Parent)
}

// RegisterSetting registers key under group. Registering a key twice keeps
// the latest type.
func (h *Host) RegisterSetting(group, key, typ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.settings[group] {
		if s.Key == key {
			h.settings[group][i].Type = typ
			return
		}
	}
	h.settings[group] = append(h.settings[group], Setting{Key: key, Type: typ})
}

// Settings returns the settings registered under group, in registration order.
func (h *Host) Settings(group string) []Setting {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Setting, len(h.settings[group]))
	copy(out, h.settings[group])
	return out
}

// SaveSettings stores values for the settings registered under group.
// Unregistered keys are rejected; values pass through sanitize, keyed by
// the registered type.
func (h *Host) SaveSettings(ctx context.Context, group string, values map[string]string, sanitize func(value, typ string) string) error {
	registered := make(map[string]string)
	for _, s := range h.Settings(group) {
		registered[s.Key] = s.Type
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		typ, ok := registered[k]
		if !ok {
			return fmt.Errorf("setting %q not registered in group %q", k, group)
		}
		v := values[k]
		if sanitize != nil {
			v = sanitize(v, typ)
		}
		if err := h.options.UpdateOption(ctx, k, v); err != nil {
			return fmt.Errorf("save setting %q: %w", k, err)
		}
	}
	return nil
}

// AddWidget registers a sidebar widget.
func (h *Host) AddWidget(w Widget) {
	h.mu.Lock()
	h.widgets = append(h.widgets, w)
	h.mu.Unlock()
}

// AddDashboardWidget registers a dashboard widget.
func (h *Host) AddDashboardWidget(w Widget) {
	h.mu.Lock()
	h.dashboardWidgets = append(h.dashboardWidgets, w)
	h.mu.Unlock()
}

// AddFilterUI registers a filter form for a post type's list.
func (h *Host) AddFilterUI(postType string, fields []string) {
	h.mu.Lock()
	h.filterUIs[postType] = append([]string(nil), fields...)
	h.mu.Unlock()
}

// AddNotice queues a notice.
func (h *Host) AddNotice(n Notice) {
	h.mu.Lock()
	h.notices = append(h.notices, n)
	h.mu.Unlock()
}

// AddBulkAction registers a bulk action on a post type's list.
func (h *Host) AddBulkAction(postType, action string, b BulkAction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bulkActions[postType] == nil {
		h.bulkActions[postType] = make(map[string]BulkAction)
	}
	h.bulkActions[postType][action] = b
}

// RunBulkAction runs a registered bulk action on ids.
func (h *Host) RunBulkAction(postType, action string, ids []int) error {
	h.mu.Lock()
	b, ok := h.bulkActions[postType][action]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("bulk action %q not registered for %q", action, postType)
	}
	b.Handler(ids)
	return nil
}

// Mail places a message in the outbox. Nothing is delivered.
func (h *Host) Mail(to, subject, body string, headers []string) error {
	if to == "" {
		return fmt.Errorf("mail: empty recipient")
	}
	h.mu.Lock()
	h.outbox = append(h.outbox, Mail{To: to, Subject: subject, Body: body, Headers: headers})
	h.mu.Unlock()
	return nil
}

// Outbox returns the queued mail.
func (h *Host) Outbox() []Mail {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Mail, len(h.outbox))
	copy(out, h.outbox)
	return out
}
