package dashboard

import (
	"context"
	"fmt"
	"strings"
)

// Override snapshot location in a key-value store.
const (
	OverrideNamespace = "dashboard"
	OverrideKey       = "lazybeagle-config"
)

// overridableSections are the top-level sections a snapshot may carry.
// Each is applied as a shallow merge over the loaded document.
var overridableSections = []string{"api_keys", "dashboard"}

// OverrideStore persists the user's override snapshot. LoadSnapshot
// returns nil data and a nil error when no snapshot exists.
type OverrideStore interface {
	LoadSnapshot(ctx context.Context) ([]byte, error)
	SaveSnapshot(ctx context.Context, data []byte) error
	ClearSnapshot(ctx context.Context) error
}

// KV is the subset of a namespaced key-value store that [KVOverrides]
// needs. Get returns "" and a nil error for a missing key.
type KV interface {
	Get(namespace, key string) (string, error)
	Set(namespace, key, value string) error
	Delete(namespace, key string) error
}

// KVOverrides keeps the snapshot as one YAML value in a [KV] store.
type KVOverrides struct {
	kv        KV
	namespace string
	key       string
}

// NewKVOverrides returns an override store using the default namespace
// and key.
func NewKVOverrides(kv KV) *KVOverrides {
	return &KVOverrides{kv: kv, namespace: OverrideNamespace, key: OverrideKey}
}

func (o *KVOverrides) LoadSnapshot(_ context.Context) ([]byte, error) {
	v, err := o.kv.Get(o.namespace, o.key)
	if err != nil {
		return nil, fmt.Errorf("load override snapshot: %w", err)
	}
	if v == "" {
		return nil, nil
	}
	return []byte(v), nil
}

func (o *KVOverrides) SaveSnapshot(_ context.Context, data []byte) error {
	if err := o.kv.Set(o.namespace, o.key, string(data)); err != nil {
		return fmt.Errorf("save override snapshot: %w", err)
	}
	return nil
}

func (o *KVOverrides) ClearSnapshot(_ context.Context) error {
	if err := o.kv.Delete(o.namespace, o.key); err != nil {
		return fmt.Errorf("clear override snapshot: %w", err)
	}
	return nil
}

// parseSnapshot decodes a stored snapshot. Blank data yields nil.
func parseSnapshot(data []byte) (map[string]any, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	snap, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// applyOverrides shallow-merges each overridable section of snap into
// tree in place. Keys inside a section replace the loaded values whole.
func applyOverrides(tree, snap map[string]any) {
	for _, section := range overridableSections {
		over, ok := snap[section].(map[string]any)
		if !ok {
			continue
		}
		live, ok := tree[section].(map[string]any)
		if !ok {
			live = map[string]any{}
			tree[section] = live
		}
		for k, v := range over {
			live[k] = cloneValue(v)
		}
	}
}

// trimSnapshot copies the overridable sections of tree.
func trimSnapshot(tree map[string]any) map[string]any {
	out := make(map[string]any, len(overridableSections))
	for _, section := range overridableSections {
		if v, ok := tree[section]; ok {
			out[section] = cloneValue(v)
		}
	}
	return out
}
