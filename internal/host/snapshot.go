package host

import (
	"sort"
	"strings"
)

// Snapshot is a deterministic view of everything registered with the host.
type Snapshot struct {
	Hooks            map[string]int          `json:"hooks"`
	Shortcodes       []string                `json:"shortcodes"`
	AjaxActions      []string                `json:"ajax_actions"`
	Routes           []string                `json:"routes"`
	PostTypes        map[string]PostTypeArgs `json:"post_types"`
	MenuPages        []MenuPage              `json:"menu_pages"`
	Settings         map[string][]Setting    `json:"settings"`
	Widgets          []string                `json:"widgets"`
	DashboardWidgets []string                `json:"dashboard_widgets"`
	FilterUIs        map[string][]string     `json:"filter_uis"`
	Notices          []Notice                `json:"notices"`
	BulkActions      []string                `json:"bulk_actions"`
	Outbox           []Mail                  `json:"outbox"`
}

// Snapshot captures the host's registrations. Lists are sorted except where
// registration order is meaningful (menu pages, settings, notices, outbox).
func (h *Host) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Snapshot{
		Hooks:       make(map[string]int, len(h.fired)),
		PostTypes:   make(map[string]PostTypeArgs, len(h.postTypes)),
		Settings:    make(map[string][]Setting, len(h.settings)),
		FilterUIs:   make(map[string][]string, len(h.filterUIs)),
		MenuPages:   append([]MenuPage(nil), h.menuPages...),
		Notices:     append([]Notice(nil), h.notices...),
		Outbox:      append([]Mail(nil), h.outbox...),
		Shortcodes:  sortedKeys(h.shortcodes),
		Routes:      sortedKeys(h.routes),
		AjaxActions: []string{},
		BulkActions: []string{},
	}
	for k, v := range h.fired {
		s.Hooks[k] = v
	}
	for k := range h.ajax {
		if strings.HasPrefix(k, "wp_ajax_nopriv_") {
			s.AjaxActions = append(s.AjaxActions, strings.TrimPrefix(k, "wp_ajax_nopriv_"))
		}
	}
	sort.Strings(s.AjaxActions)
	for k, v := range h.postTypes {
		s.PostTypes[k] = v
	}
	for k, v := range h.settings {
		s.Settings[k] = append([]Setting(nil), v...)
	}
	for k, v := range h.filterUIs {
		s.FilterUIs[k] = append([]string(nil), v...)
	}
	for _, w := range h.widgets {
		s.Widgets = append(s.Widgets, w.ID)
	}
	for _, w := range h.dashboardWidgets {
		s.DashboardWidgets = append(s.DashboardWidgets, w.ID)
	}
	for pt, actions := range h.bulkActions {
		for a := range actions {
			s.BulkActions = append(s.BulkActions, pt+"/"+a)
		}
	}
	sort.Strings(s.BulkActions)
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
