package dashboard

import (
	"fmt"
	"sort"
)

// DeepMerge returns a new tree holding target with source merged over it.
// A source value that is a non-nil mapping merges recursively into the
// matching target value (an absent or non-mapping target is treated as an
// empty mapping). Every other source value, including sequences and nil,
// replaces the target value outright. Neither input is modified.
func DeepMerge(target, source map[string]any) map[string]any {
	return mergeInto(cloneMap(target), source)
}

// mergeInto merges source into dst in place. dst must be owned by the
// caller; values taken from source are cloned.
func mergeInto(dst, source map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(source))
	}
	for key, srcVal := range source {
		if srcMap, ok := srcVal.(map[string]any); ok && srcMap != nil {
			dstMap, _ := dst[key].(map[string]any)
			dst[key] = mergeInto(dstMap, srcMap)
			continue
		}
		dst[key] = cloneValue(srcVal)
	}
	return dst
}

// cloneValue creates a deep copy of a tree value.
func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneSlice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = cloneValue(v)
	}
	return out
}

// normalizeValue converts decoder output into the tree's canonical shape:
// map[string]any for mappings and []any for sequences. Non-string
// mapping keys are formatted with fmt.
func normalizeValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	default:
		return val
	}
}

// kindOf names the shape of a tree value for error messages.
func kindOf(val any) string {
	switch val.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", val)
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
