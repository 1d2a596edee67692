package dashboard

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a value in the configuration tree. Segments name
// mapping keys; a numeric segment indexes into a sequence.
type Path []string

// ParsePath splits a dot-separated path such as "api_keys.unsplash.access_key".
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, &PathError{Path: s, Reason: "empty path"}
	}
	segs := strings.Split(s, ".")
	for i, seg := range segs {
		if seg == "" {
			return nil, &PathError{Path: s, Reason: fmt.Sprintf("empty segment at position %d", i)}
		}
	}
	return Path(segs), nil
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// PathError reports a path that cannot be parsed or applied.
type PathError struct {
	Path   string
	At     string // prefix of Path where resolution stopped
	Reason string
}

func (e *PathError) Error() string {
	if e.At != "" {
		return fmt.Sprintf("path %q: at %q: %s", e.Path, e.At, e.Reason)
	}
	return fmt.Sprintf("path %q: %s", e.Path, e.Reason)
}

// lookupPath returns the value at p, or false when any segment is absent
// or cannot be descended into.
func lookupPath(root map[string]any, p Path) (any, bool) {
	var cur any = root
	for _, seg := range p {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// assignPath stores value at p, creating intermediate mappings where a
// segment is absent or null. Descending into a scalar, or indexing a
// sequence out of range, is an error and leaves root unchanged.
func assignPath(root map[string]any, p Path, value any) error {
	if len(p) == 0 {
		return &PathError{Reason: "empty path"}
	}
	if err := checkPath(root, p); err != nil {
		return err
	}

	var cur any = root
	for i, seg := range p {
		last := i == len(p)-1
		switch node := cur.(type) {
		case map[string]any:
			if last {
				node[seg] = value
				return nil
			}
			next := node[seg]
			if next == nil {
				next = map[string]any{}
				node[seg] = next
			}
			cur = next
		case []any:
			idx, _ := strconv.Atoi(seg)
			if last {
				node[idx] = value
				return nil
			}
			if node[idx] == nil {
				node[idx] = map[string]any{}
			}
			cur = node[idx]
		}
	}
	return nil
}

// checkPath verifies that assignPath can apply p without creating a
// partial result.
func checkPath(root map[string]any, p Path) error {
	var cur any = root
	for i, seg := range p {
		switch node := cur.(type) {
		case nil:
			return nil
		case map[string]any:
			cur = node[seg]
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return &PathError{Path: p.String(), At: p[:i].String(), Reason: fmt.Sprintf("segment %q is not a sequence index", seg)}
			}
			if idx < 0 || idx >= len(node) {
				return &PathError{Path: p.String(), At: p[:i].String(), Reason: fmt.Sprintf("index %d out of range (length %d)", idx, len(node))}
			}
			cur = node[idx]
		default:
			return &PathError{Path: p.String(), At: p[:i].String(), Reason: fmt.Sprintf("cannot descend into a %s", kindOf(node))}
		}
	}
	return nil
}
