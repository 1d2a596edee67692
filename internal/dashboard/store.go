// Package dashboard owns the LazyBeagle dashboard configuration: it loads
// a base document and optional partials from a [Source], merges them over
// built-in defaults, layers the user's override snapshot on top, and
// serves typed queries and mutations over the result.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

// LoadOptions controls a call to [Store.Load].
type LoadOptions struct {
	// Force skips the override snapshot.
	Force bool
}

// Store holds the live configuration document. All methods are safe for
// concurrent use; readers receive copies.
type Store struct {
	source    Source
	overrides OverrideStore
	logger    *slog.Logger

	mu      sync.RWMutex
	tree    map[string]any
	loaded  bool
	loading bool
	err     error

	subMu   sync.Mutex
	subs    []subscriber
	nextSub uint64
}

// NewStore creates a store reading from src. overrides may be nil, in
// which case no snapshot is applied or cleared. Until Load completes the
// store serves the built-in defaults.
func NewStore(src Source, overrides OverrideStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		source:    src,
		overrides: overrides,
		logger:    logger,
		tree:      Defaults(),
	}
}

// Load fetches and merges the configuration. On failure the store falls
// back to the built-in defaults, records the error, and still counts as
// loaded; the error is also returned.
func (s *Store) Load(ctx context.Context, opts LoadOptions) error {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	tree, err := s.loadLayers(ctx)
	if err == nil && !opts.Force {
		s.applySnapshot(ctx, tree)
	}

	s.mu.Lock()
	if err != nil {
		s.tree = Defaults()
		s.err = err
	} else {
		s.tree = tree
	}
	s.loaded = true
	s.loading = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("dashboard config load failed, using defaults", "error", err)
	} else {
		s.logger.Info("dashboard config loaded", "forced", opts.Force)
	}

	s.notify(ChangeReload, "")
	return err
}

// Reload is Load without the snapshot.
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx, LoadOptions{Force: true})
}

// ClearOverridesAndReload deletes the override snapshot and reloads from
// the sources.
func (s *Store) ClearOverridesAndReload(ctx context.Context) error {
	if s.overrides != nil {
		if err := s.overrides.ClearSnapshot(ctx); err != nil {
			return err
		}
		s.logger.Info("dashboard overrides cleared")
	}
	return s.Reload(ctx)
}

// Reset replaces the live document with the built-in defaults and
// removes the override snapshot.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.tree = Defaults()
	s.mu.Unlock()

	s.notify(ChangeReset, "")

	if s.overrides != nil {
		if err := s.overrides.ClearSnapshot(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("dashboard config reset to defaults")
	return nil
}

func (s *Store) loadLayers(ctx context.Context) (map[string]any, error) {
	data, err := s.source.Fetch(ctx, BaseDocument)
	if err != nil {
		return nil, &ConfigLoadError{Name: BaseDocument, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ConfigLoadError{Name: BaseDocument, Err: errEmptyDocument}
	}
	// A null document (comments only, "~") counts as empty. An empty
	// mapping is a valid base that simply sets nothing.
	raw, err := parseFragment(data)
	if err != nil {
		return nil, &ConfigLoadError{Name: BaseDocument, Err: err}
	}
	if raw == nil {
		return nil, &ConfigLoadError{Name: BaseDocument, Err: errEmptyDocument}
	}
	base, ok := raw.(map[string]any)
	if !ok {
		return nil, &ConfigLoadError{Name: BaseDocument, Err: fmt.Errorf("document root is a %s, want a mapping", kindOf(raw))}
	}

	parts, err := fetchPartials(ctx, s.source)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("dashboard partials fetched", "count", len(parts))

	merged := DeepMerge(base, normalizePartials(parts))
	return mergeInto(Defaults(), merged), nil
}

// applySnapshot layers the stored overrides onto tree. A missing or
// unreadable snapshot leaves tree unchanged.
func (s *Store) applySnapshot(ctx context.Context, tree map[string]any) {
	if s.overrides == nil {
		return
	}
	data, err := s.overrides.LoadSnapshot(ctx)
	if err != nil {
		s.logger.Warn("override snapshot unavailable", "error", err)
		return
	}
	snap, err := parseSnapshot(data)
	if err != nil {
		s.logger.Warn("override snapshot ignored", "error", err)
		return
	}
	if snap == nil {
		return
	}
	applyOverrides(tree, snap)
	s.logger.Debug("override snapshot applied")
}

// Loaded reports whether a load has completed, successfully or not.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Loading reports whether a load is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error recorded by the last load or import, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Tree returns a deep copy of the live document.
func (s *Store) Tree() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMap(s.tree)
}

// Get returns a copy of the value at a dot-separated path.
func (s *Store) Get(path string) (any, bool) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	return s.GetPath(p)
}

// GetPath is Get for a parsed path.
func (s *Store) GetPath(p Path) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := lookupPath(s.tree, p)
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Set stores value at a dot-separated path, creating intermediate
// mappings as needed, and notifies subscribers.
func (s *Store) Set(path string, value any) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	return s.SetPath(p, value)
}

// SetPath is Set for a parsed path.
func (s *Store) SetPath(p Path, value any) error {
	value = cloneValue(normalizeValue(value))

	s.mu.Lock()
	err := assignPath(s.tree, p, value)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(ChangeSet, p.String())
	return nil
}

// update runs fn against the live tree under the write lock and
// notifies subscribers when fn reports a change.
func (s *Store) update(path string, fn func(tree map[string]any) bool) bool {
	s.mu.Lock()
	changed := fn(s.tree)
	s.mu.Unlock()
	if changed {
		s.notify(ChangeSet, path)
	}
	return changed
}

// Snapshot renders the overridable sections of the live document as the
// YAML stored by an [OverrideStore].
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	trimmed := trimSnapshot(s.tree)
	s.mu.RUnlock()
	return yaml.Marshal(trimmed)
}

// Export renders the live document as YAML with two-space indentation.
func (s *Store) Export() (string, error) {
	tree := s.Tree()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return "", fmt.Errorf("export config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("export config: %w", err)
	}
	return buf.String(), nil
}

// Import replaces the live document with text merged over the built-in
// defaults. On a parse error the document is left untouched, the error
// is recorded, and a [*ConfigImportError] is returned.
func (s *Store) Import(text string) error {
	doc, err := parseDocument([]byte(text))
	if err != nil {
		importErr := &ConfigImportError{Err: err}
		s.mu.Lock()
		s.err = importErr
		s.mu.Unlock()
		s.logger.Warn("dashboard config import rejected", "error", err)
		return importErr
	}

	merged := mergeInto(Defaults(), doc)

	s.mu.Lock()
	s.tree = merged
	s.mu.Unlock()

	s.notify(ChangeImport, "")
	return nil
}

// IsImportError reports whether err came from a rejected import.
func IsImportError(err error) bool {
	var ie *ConfigImportError
	return errors.As(err, &ie)
}
