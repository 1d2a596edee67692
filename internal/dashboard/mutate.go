package dashboard

import (
	"strings"
)

// SetAPIKey stores a credential under api_keys.<service>.<field>.
func (s *Store) SetAPIKey(service, field, value string) error {
	return s.SetPath(Path{"api_keys", service, field}, value)
}

// SetBackgroundTheme selects the active background theme.
func (s *Store) SetBackgroundTheme(id string) error {
	return s.SetPath(Path{"dashboard", "background", "theme"}, id)
}

// UpdateDashboardSettings shallow-merges settings into the dashboard
// section: each key replaces the existing value whole.
func (s *Store) UpdateDashboardSettings(settings map[string]any) {
	s.updateSection("dashboard", settings)
}

// UpdateLayout shallow-merges layout into the layout section.
func (s *Store) UpdateLayout(layout map[string]any) {
	s.updateSection("layout", layout)
}

func (s *Store) updateSection(section string, values map[string]any) {
	if len(values) == 0 {
		return
	}
	values, _ = normalizeValue(values).(map[string]any)
	s.update(section, func(tree map[string]any) bool {
		live, ok := tree[section].(map[string]any)
		if !ok {
			live = map[string]any{}
			tree[section] = live
		}
		for k, v := range values {
			live[k] = cloneValue(v)
		}
		return true
	})
}

// ToggleService sets the enabled flag of every service named name
// (case-insensitive). It reports whether any entry matched.
func (s *Store) ToggleService(name string, enabled bool) bool {
	return s.toggle("services", name, enabled)
}

// ToggleLink sets the enabled flag of every link named name.
func (s *Store) ToggleLink(name string, enabled bool) bool {
	return s.toggle("links", name, enabled)
}

func (s *Store) toggle(section, name string, enabled bool) bool {
	return s.update(section, func(tree map[string]any) bool {
		list, _ := tree[section].([]any)
		matched := false
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok || !strings.EqualFold(scalarString(entry["name"]), name) {
				continue
			}
			entry["enabled"] = enabled
			matched = true
		}
		return matched
	})
}
