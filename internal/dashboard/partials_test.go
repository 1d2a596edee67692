package dashboard

import (
	"reflect"
	"testing"
)

func TestNormalizePartials_Shapes(t *testing.T) {
	clockWidget := map[string]any{"enabled": false, "settings": map[string]any{"show_seconds": true}}
	engines := []any{map[string]any{"id": "ddg", "name": "DuckDuckGo"}}

	tests := []struct {
		name  string
		parts map[string]any
		want  map[string]any
	}{
		{
			name:  "clock nested",
			parts: map[string]any{PartialClock: map[string]any{"layout": map[string]any{"clock": clockWidget}}},
			want:  map[string]any{"layout": map[string]any{"clock": clockWidget}},
		},
		{
			name:  "clock keyed",
			parts: map[string]any{PartialClock: map[string]any{"clock": clockWidget}},
			want:  map[string]any{"layout": map[string]any{"clock": clockWidget}},
		},
		{
			name:  "clock bare",
			parts: map[string]any{PartialClock: clockWidget},
			want:  map[string]any{"layout": map[string]any{"clock": clockWidget}},
		},
		{
			name: "search bare strips engines",
			parts: map[string]any{PartialSearch: map[string]any{
				"enabled":        true,
				"search_engines": engines,
			}},
			want: map[string]any{
				"layout":         map[string]any{"search": map[string]any{"enabled": true}},
				"search_engines": engines,
			},
		},
		{
			name: "search camel-case engines",
			parts: map[string]any{PartialSearch: map[string]any{
				"search":        map[string]any{"enabled": true},
				"searchEngines": engines,
			}},
			want: map[string]any{
				"layout":         map[string]any{"search": map[string]any{"enabled": true}},
				"search_engines": engines,
			},
		},
		{
			name: "upcoming releases keyed",
			parts: map[string]any{PartialUpcoming: map[string]any{
				"upcoming_releases": map[string]any{"enabled": true},
			}},
			want: map[string]any{"layout": map[string]any{"upcoming_releases": map[string]any{"enabled": true}}},
		},
		{
			name: "weather split into settings and widget",
			parts: map[string]any{PartialWeather: map[string]any{
				"weather": map[string]any{
					"location": "Oslo",
					"layout":   map[string]any{"enabled": false},
				},
			}},
			want: map[string]any{
				"dashboard": map[string]any{"weather": map[string]any{"location": "Oslo"}},
				"layout":    map[string]any{"weather": map[string]any{"enabled": false}},
			},
		},
		{
			name: "weather nested",
			parts: map[string]any{PartialWeather: map[string]any{
				"dashboard": map[string]any{"weather": map[string]any{"units": "imperial"}},
				"layout":    map[string]any{"weather": map[string]any{"position": "top"}},
			}},
			want: map[string]any{
				"dashboard": map[string]any{"weather": map[string]any{"units": "imperial"}},
				"layout":    map[string]any{"weather": map[string]any{"position": "top"}},
			},
		},
		{
			name: "links bare sequence and services keyed",
			parts: map[string]any{
				PartialLinks:    []any{map[string]any{"name": "Plex"}},
				PartialServices: map[string]any{"services": []any{map[string]any{"name": "Sonarr"}}},
			},
			want: map[string]any{
				"links":    []any{map[string]any{"name": "Plex"}},
				"services": []any{map[string]any{"name": "Sonarr"}},
			},
		},
		{
			name:  "nothing present",
			parts: map[string]any{},
			want:  map[string]any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePartials(tt.parts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizePartials() = %#v\nwant %#v", got, tt.want)
			}
		})
	}
}
