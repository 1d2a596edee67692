package dashboard

import (
	"errors"
	"reflect"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in      string
		want    Path
		wantErr bool
	}{
		{"api_keys.unsplash.access_key", Path{"api_keys", "unsplash", "access_key"}, false},
		{"themes", Path{"themes"}, false},
		{"services.0.name", Path{"services", "0", "name"}, false},
		{"", nil, true},
		{"a..b", nil, true},
		{".a", nil, true},
		{"a.", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePath(%q) = %v, want %v", tt.in, got, tt.want)
			}
			var pe *PathError
			if tt.wantErr && !errors.As(err, &pe) {
				t.Errorf("error %T is not *PathError", err)
			}
		})
	}
}

func TestAssignPath_CreatesIntermediates(t *testing.T) {
	root := map[string]any{"a": nil}
	if err := assignPath(root, Path{"a", "b", "c"}, 1); err != nil {
		t.Fatalf("assignPath error: %v", err)
	}
	want := map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}
	if !reflect.DeepEqual(root, want) {
		t.Errorf("root = %#v, want %#v", root, want)
	}
}

func TestAssignPath_SequenceIndex(t *testing.T) {
	root := map[string]any{
		"services": []any{
			map[string]any{"name": "Sonarr"},
			map[string]any{"name": "Radarr"},
		},
	}
	if err := assignPath(root, Path{"services", "1", "enabled"}, true); err != nil {
		t.Fatalf("assignPath error: %v", err)
	}
	got, ok := lookupPath(root, Path{"services", "1", "enabled"})
	if !ok || got != true {
		t.Errorf("services.1.enabled = %v (%v), want true", got, ok)
	}
}

func TestAssignPath_Errors(t *testing.T) {
	tests := []struct {
		name string
		path Path
	}{
		{"through scalar", Path{"name", "child"}},
		{"deep through scalar", Path{"nested", "leaf", "x", "y"}},
		{"non-numeric index", Path{"list", "first"}},
		{"index out of range", Path{"list", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := map[string]any{
				"name":   "scalar",
				"nested": map[string]any{"leaf": 3},
				"list":   []any{"a"},
			}
			before := cloneMap(root)

			err := assignPath(root, tt.path, "v")
			var pe *PathError
			if !errors.As(err, &pe) {
				t.Fatalf("assignPath(%v) error = %v, want *PathError", tt.path, err)
			}
			if !reflect.DeepEqual(root, before) {
				t.Errorf("root modified on error: %#v", root)
			}
		})
	}
}

func TestLookupPath(t *testing.T) {
	root := map[string]any{
		"a":    map[string]any{"b": "c"},
		"list": []any{"x", map[string]any{"k": "v"}},
	}
	tests := []struct {
		path   Path
		want   any
		wantOK bool
	}{
		{Path{"a", "b"}, "c", true},
		{Path{"list", "1", "k"}, "v", true},
		{Path{"list", "9"}, nil, false},
		{Path{"a", "b", "c"}, nil, false},
		{Path{"missing"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path.String(), func(t *testing.T) {
			got, ok := lookupPath(root, tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("lookupPath(%v) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
