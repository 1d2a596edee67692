package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memOverrides is an in-memory OverrideStore.
type memOverrides struct {
	mu     sync.Mutex
	data   []byte
	saves  int
	clears int
}

func (m *memOverrides) LoadSnapshot(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, nil
}

func (m *memOverrides) SaveSnapshot(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memOverrides) ClearSnapshot(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.clears++
	return nil
}

func (m *memOverrides) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memOverrides) stored() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data)
}

func mapSource(files map[string]string) *FSSource {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return NewFSSource(fsys)
}

func loadedStore(t *testing.T, files map[string]string, overrides OverrideStore) *Store {
	t.Helper()
	s := NewStore(mapSource(files), overrides, quietLogger())
	if err := s.Load(context.Background(), LoadOptions{}); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return s
}

func mustGet(t *testing.T, s *Store, path string) any {
	t.Helper()
	v, ok := s.Get(path)
	if !ok {
		t.Fatalf("Get(%q) not found", path)
	}
	return v
}

const baseConfig = `
dashboard:
  grid:
    columns: 8
services:
  - name: Old
    enabled: true
`

func TestLoad_MergesBasePartialsAndDefaults(t *testing.T) {
	s := loadedStore(t, map[string]string{
		"config.yaml": baseConfig,
		"clock.yaml":  "settings:\n  show_seconds: true\n",
		"services.yaml": `
- name: Sonarr
  api_type: sonarr
  enabled: true
`,
	}, nil)

	if !s.Loaded() || s.Loading() {
		t.Errorf("Loaded() = %v, Loading() = %v", s.Loaded(), s.Loading())
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v", s.Err())
	}

	checks := map[string]any{
		"dashboard.grid.columns":             8,
		"dashboard.grid.rows":                4,
		"layout.clock.settings.show_seconds": true,
		"layout.clock.settings.show_date":    true,
		"layout.clock.position":              "clock",
		"dashboard.background.theme":         "nature",
		"search_engines.0.id":                "google",
		"services.0.name":                    "Sonarr",
	}
	for path, want := range checks {
		if got := mustGet(t, s, path); got != want {
			t.Errorf("%s = %#v, want %#v", path, got, want)
		}
	}
	if n := len(mustGet(t, s, "services").([]any)); n != 1 {
		t.Errorf("services has %d entries, want 1 (partial replaces)", n)
	}
}

func TestLoad_BaseFailuresFallBackToDefaults(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"missing", map[string]string{"clock.yaml": "enabled: true\n"}},
		{"empty", map[string]string{"config.yaml": "  \n"}},
		{"null", map[string]string{"config.yaml": "# nothing here\n~\n"}},
		{"unparsable", map[string]string{"config.yaml": "dashboard: [unclosed\n"}},
		{"not a mapping", map[string]string{"config.yaml": "- a\n- b\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(mapSource(tt.files), nil, quietLogger())
			err := s.Load(context.Background(), LoadOptions{})

			var le *ConfigLoadError
			if !errors.As(err, &le) {
				t.Fatalf("Load error = %v, want *ConfigLoadError", err)
			}
			if le.Name != BaseDocument {
				t.Errorf("Name = %q, want %q", le.Name, BaseDocument)
			}
			if !errors.Is(s.Err(), err) {
				t.Errorf("Err() = %v, want %v", s.Err(), err)
			}
			if !s.Loaded() {
				t.Error("Loaded() = false after failed load")
			}
			if !reflect.DeepEqual(s.Tree(), Defaults()) {
				t.Error("tree is not the built-in defaults")
			}
		})
	}
}

func TestLoad_EmptyMappingBaseKeepsPartials(t *testing.T) {
	s := NewStore(mapSource(map[string]string{
		"config.yaml": "{}\n",
		"services.yaml": `
- name: TV Shows
  type: sonarr
  url: http://localhost:8989
  enabled: true
`,
	}), nil, quietLogger())

	if err := s.Load(context.Background(), LoadOptions{}); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v, want nil", s.Err())
	}
	enabled := s.EnabledServices()
	if len(enabled) != 1 || enabled[0].Kind() != "sonarr" {
		t.Errorf("EnabledServices() = %+v, want the sonarr partial entry", enabled)
	}
}

func TestLoad_MissingBaseIsNotFound(t *testing.T) {
	s := NewStore(mapSource(nil), nil, quietLogger())
	err := s.Load(context.Background(), LoadOptions{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load error = %v, want ErrNotFound in chain", err)
	}
}

func TestLoad_BrokenPartial(t *testing.T) {
	s := NewStore(mapSource(map[string]string{
		"config.yaml":  baseConfig,
		"weather.yaml": "weather: {location: [\n",
	}), nil, quietLogger())

	err := s.Load(context.Background(), LoadOptions{})
	var pe *PartialFetchError
	if !errors.As(err, &pe) {
		t.Fatalf("Load error = %v, want *PartialFetchError", err)
	}
	if pe.Name != PartialWeather {
		t.Errorf("Name = %q, want %q", pe.Name, PartialWeather)
	}
	if got := mustGet(t, s, "dashboard.grid.columns"); got != 6 {
		t.Errorf("grid.columns = %v, want default 6", got)
	}
}

func TestLoad_HTTPSource(t *testing.T) {
	docs := map[string]string{
		"/dash/config.yaml": baseConfig,
		"/dash/links.yaml":  "links:\n  - name: Plex\n    url: http://plex:32400\n    enabled: true\n",
	}
	var failing atomic.Value
	failing.Store("")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == failing.Load().(string) {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		body, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		io.WriteString(w, body)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/dash/", srv.Client(), quietLogger())
	s := NewStore(src, nil, quietLogger())
	if err := s.Load(context.Background(), LoadOptions{}); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	links := s.EnabledLinks()
	if len(links) != 1 || links[0].Name != "Plex" {
		t.Errorf("EnabledLinks() = %+v", links)
	}

	failing.Store("/dash/search.yaml")
	err := s.Reload(context.Background())
	var pe *PartialFetchError
	if !errors.As(err, &pe) || pe.Name != PartialSearch {
		t.Fatalf("Reload error = %v, want PartialFetchError for search.yaml", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention the status", err)
	}
}

func TestLoad_AppliesOverrideSnapshot(t *testing.T) {
	overrides := &memOverrides{data: []byte(`
api_keys:
  unsplash:
    access_key: from-snapshot
dashboard:
  background:
    theme: space
layout:
  clock:
    enabled: false
services: []
links:
  - name: Injected
    url: http://injected.example
    enabled: true
`)}
	s := loadedStore(t, map[string]string{"config.yaml": baseConfig}, overrides)
	plain := loadedStore(t, map[string]string{"config.yaml": baseConfig}, nil)

	if got := mustGet(t, s, "api_keys.unsplash"); !reflect.DeepEqual(got, map[string]any{"access_key": "from-snapshot"}) {
		t.Errorf("api_keys.unsplash = %#v, want snapshot value replacing whole entry", got)
	}
	if got := mustGet(t, s, "dashboard.background"); !reflect.DeepEqual(got, map[string]any{"theme": "space"}) {
		t.Errorf("dashboard.background = %#v, want shallow replacement", got)
	}
	if got := mustGet(t, s, "dashboard.grid.columns"); got != 8 {
		t.Errorf("dashboard.grid.columns = %v, want 8 (untouched by snapshot)", got)
	}
	if got := mustGet(t, s, "layout.clock.enabled"); got != true {
		t.Errorf("layout.clock.enabled = %v, snapshot layout must be ignored", got)
	}
	if n := len(s.Services()); n != 1 {
		t.Errorf("services = %d entries, snapshot services must be ignored", n)
	}
	if got, want := s.Links(), plain.Links(); !reflect.DeepEqual(got, want) {
		t.Errorf("links = %+v, snapshot links must be ignored (want %+v)", got, want)
	}

	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if got := mustGet(t, s, "dashboard.background.theme"); got != "nature" {
		t.Errorf("after forced reload theme = %v, want nature", got)
	}
}

func TestLoad_IgnoresCorruptSnapshot(t *testing.T) {
	overrides := &memOverrides{data: []byte("api_keys: [oops\n")}
	s := loadedStore(t, map[string]string{"config.yaml": baseConfig}, overrides)
	if s.Err() != nil {
		t.Errorf("Err() = %v, corrupt snapshot should not fail the load", s.Err())
	}
}

func TestClearOverridesAndReload(t *testing.T) {
	overrides := &memOverrides{data: []byte("dashboard:\n  background:\n    theme: space\n")}
	s := loadedStore(t, map[string]string{"config.yaml": baseConfig}, overrides)

	if err := s.ClearOverridesAndReload(context.Background()); err != nil {
		t.Fatalf("ClearOverridesAndReload error: %v", err)
	}
	if overrides.clears != 1 || overrides.data != nil {
		t.Errorf("snapshot not cleared: clears=%d data=%q", overrides.clears, overrides.data)
	}
	if got := mustGet(t, s, "dashboard.background.theme"); got != "nature" {
		t.Errorf("theme = %v, want nature", got)
	}

	if err := s.Load(context.Background(), LoadOptions{}); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got := mustGet(t, s, "dashboard.background.theme"); got != "nature" {
		t.Errorf("theme after unforced load = %v, want nature", got)
	}
}

func TestSet_NotifiesSubscribers(t *testing.T) {
	s := loadedStore(t, map[string]string{"config.yaml": baseConfig}, nil)

	var got []Change
	unsubscribe := s.Subscribe(func(c Change) { got = append(got, c) })

	if err := s.Set("dashboard.weather.location", "Lisbon"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := s.Set("dashboard.weather.location.city", "x"); err == nil {
		t.Fatal("Set through a scalar succeeded")
	}
	unsubscribe()
	if err := s.Set("dashboard.weather.units", "imperial"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("received %d changes, want 1: %+v", len(got), got)
	}
	if got[0].Kind != ChangeSet || got[0].Path != "dashboard.weather.location" {
		t.Errorf("change = %+v", got[0])
	}
	if got[0].ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("change has no ID")
	}
	if v := mustGet(t, s, "dashboard.weather.location"); v != "Lisbon" {
		t.Errorf("location = %v, want Lisbon", v)
	}
}

func TestGet_ReturnsCopies(t *testing.T) {
	s := loadedStore(t, map[string]string{"config.yaml": baseConfig}, nil)

	grid := mustGet(t, s, "dashboard.grid").(map[string]any)
	grid["columns"] = 99

	if got := mustGet(t, s, "dashboard.grid.columns"); got != 8 {
		t.Errorf("columns = %v after mutating a copy, want 8", got)
	}
	if _, ok := s.Get("no.such.path"); ok {
		t.Error("Get(no.such.path) reported found")
	}
	if _, ok := s.Get("bad..path"); ok {
		t.Error("Get(bad..path) reported found")
	}
}

func TestExport(t *testing.T) {
	s := NewStore(mapSource(nil), nil, quietLogger())
	out, err := s.Export()
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	for _, want := range []string{
		"api_keys:\n  openweather:\n    api_key: \"\"\n",
		"\n  background:\n    blur_overlay: 0.3\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Export() missing %q:\n%s", want, out)
		}
	}
}

func TestImport(t *testing.T) {
	s := loadedStore(t, map[string]string{"config.yaml": baseConfig}, nil)

	var kinds []ChangeKind
	s.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	if err := s.Import("dashboard:\n  grid:\n    columns: 3\n"); err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if got := mustGet(t, s, "dashboard.grid.columns"); got != 3 {
		t.Errorf("columns = %v, want 3", got)
	}
	if got := mustGet(t, s, "dashboard.grid.rows"); got != 4 {
		t.Errorf("rows = %v, want default 4", got)
	}
	if n := len(s.Services()); n != 0 {
		t.Errorf("services = %d, import replaces the document over defaults", n)
	}
	if !reflect.DeepEqual(kinds, []ChangeKind{ChangeImport}) {
		t.Errorf("changes = %v, want [import]", kinds)
	}

	before := s.Tree()
	for _, bad := range []string{"dashboard: [unclosed\n", "- just\n- a list\n"} {
		err := s.Import(bad)
		if !IsImportError(err) {
			t.Fatalf("Import(%q) error = %v, want ConfigImportError", bad, err)
		}
		if !errors.Is(s.Err(), err) {
			t.Errorf("Err() = %v, want the import error", s.Err())
		}
	}
	if !reflect.DeepEqual(s.Tree(), before) {
		t.Error("failed import modified the document")
	}

	if err := s.Import(""); err != nil {
		t.Fatalf("Import(empty) error: %v", err)
	}
	if !reflect.DeepEqual(s.Tree(), Defaults()) {
		t.Error("empty import should yield the defaults")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := loadedStore(t, map[string]string{"config.yaml": baseConfig}, nil)
	out, err := s.Export()
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}

	other := NewStore(mapSource(nil), nil, quietLogger())
	if err := other.Import(out); err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if !reflect.DeepEqual(other.Tree(), s.Tree()) {
		t.Error("round trip changed the document")
	}
}

func TestReset(t *testing.T) {
	overrides := &memOverrides{data: []byte("dashboard:\n  grid:\n    rows: 2\n")}
	s := loadedStore(t, map[string]string{"config.yaml": baseConfig}, overrides)

	var kinds []ChangeKind
	s.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
	if !reflect.DeepEqual(s.Tree(), Defaults()) {
		t.Error("tree is not the defaults after Reset")
	}
	if overrides.clears != 1 {
		t.Errorf("clears = %d, want 1", overrides.clears)
	}
	if !reflect.DeepEqual(kinds, []ChangeKind{ChangeReset}) {
		t.Errorf("changes = %v, want [reset]", kinds)
	}
}
