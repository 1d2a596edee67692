package dashboard

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// defaultTree is parsed once at init; Defaults hands out deep copies.
var defaultTree = mustParseDefaults(defaultsYAML)

func mustParseDefaults(data []byte) map[string]any {
	tree, err := parseDocument(data)
	if err != nil {
		panic(fmt.Sprintf("dashboard: built-in defaults: %v", err))
	}
	return tree
}

// Defaults returns a fresh copy of the built-in configuration. Every
// top-level section is present.
func Defaults() map[string]any {
	return cloneMap(defaultTree)
}

// DefaultsYAML returns the built-in configuration as YAML text.
func DefaultsYAML() []byte {
	out := make([]byte, len(defaultsYAML))
	copy(out, defaultsYAML)
	return out
}

// parseDocument parses YAML text into a normalized tree. An empty
// document yields an empty, non-nil map.
func parseDocument(data []byte) (map[string]any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch v := normalizeValue(raw).(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("document root is a %s, want a mapping", kindOf(v))
	}
}

// parseFragment parses YAML text that may be any shape (partials are
// allowed to be bare sequences).
func parseFragment(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return normalizeValue(raw), nil
}
