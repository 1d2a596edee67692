package dashboard

import (
	"strings"
)

// serviceAliases maps a service type to the display names that identify
// it when an entry carries no type.
var serviceAliases = map[string][]string{
	"sonarr":      {"tv shows", "sonarr"},
	"radarr":      {"movies", "radarr"},
	"readarr":     {"books", "readarr"},
	"openweather": {"openweather", "weather"},
	"unsplash":    {"unsplash"},
}

// firstOf returns the result of the first strategy that succeeds.
func firstOf[T any](strategies ...func() (T, bool)) (T, bool) {
	for _, try := range strategies {
		if v, ok := try(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func serviceKind(apiType, typ string) string {
	if apiType != "" {
		return strings.ToLower(apiType)
	}
	return strings.ToLower(typ)
}

// entryKind returns the lowercase type of a raw service entry.
func entryKind(entry map[string]any) string {
	return serviceKind(scalarString(entry["api_type"]), scalarString(entry["type"]))
}

// entries returns the mapping entries of the sequence at key, skipping
// anything that is not a mapping.
func (s *Store) entries(key string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, _ := s.tree[key].([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, cloneMap(m))
		}
	}
	return out
}

// decodeEntries decodes raw entries, dropping any that do not fit T.
func decodeEntries[T any](s *Store, kind string, raw []map[string]any) []T {
	out := make([]T, 0, len(raw))
	for i, entry := range raw {
		var v T
		if err := decodeTree(entry, &v); err != nil {
			s.logger.Warn("skipping malformed entry", "section", kind, "index", i, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func enabledOnly(raw []map[string]any) []map[string]any {
	out := raw[:0]
	for _, entry := range raw {
		if on, _ := entry["enabled"].(bool); on {
			out = append(out, entry)
		}
	}
	return out
}

// Services returns every service entry in document order.
func (s *Store) Services() []Service {
	return decodeEntries[Service](s, "services", s.entries("services"))
}

// EnabledServices returns the services whose enabled flag is true, in
// document order.
func (s *Store) EnabledServices() []Service {
	return decodeEntries[Service](s, "services", enabledOnly(s.entries("services")))
}

// Links returns every link entry in document order.
func (s *Store) Links() []Link {
	return decodeEntries[Link](s, "links", s.entries("links"))
}

// EnabledLinks returns the links whose enabled flag is true, in document
// order.
func (s *Store) EnabledLinks() []Link {
	return decodeEntries[Link](s, "links", enabledOnly(s.entries("links")))
}

// SearchEngines returns the configured search engines.
func (s *Store) SearchEngines() []SearchEngine {
	return decodeEntries[SearchEngine](s, "search_engines", s.entries("search_engines"))
}

// serviceEntry finds the raw service entry for serviceType. An entry
// whose api_type (or type) matches wins; otherwise an entry whose name
// matches one of the type's aliases.
func (s *Store) serviceEntry(serviceType string) (map[string]any, bool) {
	want := strings.ToLower(serviceType)
	raw := s.entries("services")

	return firstOf(
		func() (map[string]any, bool) {
			for _, entry := range raw {
				if entryKind(entry) == want {
					return entry, true
				}
			}
			return nil, false
		},
		func() (map[string]any, bool) {
			aliases := serviceAliases[want]
			for _, entry := range raw {
				name := strings.ToLower(scalarString(entry["name"]))
				for _, alias := range aliases {
					if name == alias {
						return entry, true
					}
				}
			}
			return nil, false
		},
	)
}

// ServiceByType returns the service for serviceType, matched on type
// first and on well-known display names second.
func (s *Store) ServiceByType(serviceType string) (Service, bool) {
	entry, ok := s.serviceEntry(serviceType)
	if !ok {
		return Service{}, false
	}
	var svc Service
	if err := decodeTree(entry, &svc); err != nil {
		s.logger.Warn("malformed service entry", "type", serviceType, "error", err)
		return Service{}, false
	}
	return svc, true
}

// APIKey resolves a credential for serviceType. It prefers a field
// embedded on the service entry, then the Unsplash access and secret
// keys, then the legacy api_keys section. It returns "" when none is set.
func (s *Store) APIKey(serviceType, field string) string {
	entry, hasEntry := s.serviceEntry(serviceType)
	if hasEntry && entryKind(entry) != strings.ToLower(serviceType) {
		// Alias matches do not carry credentials.
		hasEntry = false
	}

	key, _ := firstOf(
		func() (string, bool) {
			if !hasEntry {
				return "", false
			}
			v := scalarString(entry[field])
			return v, v != ""
		},
		func() (string, bool) {
			if !hasEntry || strings.ToLower(serviceType) != "unsplash" {
				return "", false
			}
			name := "access_key"
			if field == "secret_key" {
				name = "secret_key"
			}
			v := scalarString(entry[name])
			return v, v != ""
		},
		func() (string, bool) {
			v, _ := s.GetPath(Path{"api_keys", serviceType, field})
			k := scalarString(v)
			return k, k != ""
		},
	)
	return key
}

// DefaultSearchEngine picks the first engine flagged default, else the
// first engine.
func (s *Store) DefaultSearchEngine() (SearchEngine, bool) {
	engines := s.SearchEngines()
	if len(engines) == 0 {
		return SearchEngine{}, false
	}

	return firstOf(
		func() (SearchEngine, bool) {
			for _, e := range engines {
				if e.Default {
					return e, true
				}
			}
			return SearchEngine{}, false
		},
		func() (SearchEngine, bool) {
			return engines[0], true
		},
	)
}

// Themes returns the configured background themes keyed by id.
func (s *Store) Themes() map[string]Theme {
	v, _ := s.Get("themes")
	raw, _ := v.(map[string]any)

	out := make(map[string]Theme, len(raw))
	for _, id := range sortedKeys(raw) {
		var th Theme
		if err := decodeTree(raw[id], &th); err != nil {
			s.logger.Warn("skipping malformed theme", "theme", id, "error", err)
			continue
		}
		out[id] = th
	}
	return out
}

// Theme returns the theme with the given id.
func (s *Store) Theme(id string) (Theme, bool) {
	th, ok := s.Themes()[id]
	return th, ok
}

// DashboardSettings returns a copy of the dashboard section.
func (s *Store) DashboardSettings() map[string]any {
	v, _ := s.Get("dashboard")
	m, _ := v.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m
}

// Layout returns a copy of the layout section.
func (s *Store) Layout() map[string]any {
	v, _ := s.Get("layout")
	m, _ := v.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m
}
