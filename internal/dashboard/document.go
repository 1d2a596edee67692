package dashboard

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Document is a typed view of the configuration tree. Fields the view
// does not model are kept in the Extra maps where the section allows
// arbitrary keys.
type Document struct {
	APIKeys       map[string]map[string]string `yaml:"api_keys"`
	Dashboard     Settings                     `yaml:"dashboard"`
	Layout        map[string]Widget            `yaml:"layout"`
	Services      []Service                    `yaml:"services"`
	Links         []Link                       `yaml:"links"`
	SearchEngines []SearchEngine               `yaml:"search_engines"`
	Themes        map[string]Theme             `yaml:"themes"`
}

// Settings is the dashboard section.
type Settings struct {
	Background Background      `yaml:"background"`
	Time       TimeSettings    `yaml:"time"`
	Weather    WeatherSettings `yaml:"weather"`
	Grid       Grid            `yaml:"grid"`
	Extra      map[string]any  `yaml:",inline"`
}

type Background struct {
	Theme            string  `yaml:"theme"`
	RotationEnabled  bool    `yaml:"rotation_enabled"`
	RotationInterval int     `yaml:"rotation_interval"` // minutes
	Quality          int     `yaml:"quality"`
	BlurOverlay      float64 `yaml:"blur_overlay"`
}

type TimeSettings struct {
	Format   string `yaml:"format"`
	Timezone string `yaml:"timezone"`
}

type WeatherSettings struct {
	Location        string `yaml:"location"`
	Units           string `yaml:"units"`
	RefreshInterval int    `yaml:"refresh_interval"` // minutes
}

type Grid struct {
	Columns int `yaml:"columns"`
	Rows    int `yaml:"rows"`
	Gap     int `yaml:"gap"`
	Padding int `yaml:"padding"`
}

// Widget is one entry of the layout section.
type Widget struct {
	Enabled  bool           `yaml:"enabled"`
	Position string         `yaml:"position"`
	Settings map[string]any `yaml:"settings,omitempty"`
	Cards    []Link         `yaml:"cards,omitempty"`
	Extra    map[string]any `yaml:",inline"`
}

// Service is an entry of the services list.
type Service struct {
	Name        string         `yaml:"name"`
	Type        string         `yaml:"type"`
	APIType     string         `yaml:"api_type"`
	URL         string         `yaml:"url"`
	APIKey      string         `yaml:"api_key"`
	AccessKey   string         `yaml:"access_key"`
	SecretKey   string         `yaml:"secret_key"`
	Description string         `yaml:"description"`
	Icon        string         `yaml:"icon"`
	Enabled     bool           `yaml:"enabled"`
	Extra       map[string]any `yaml:",inline"`
}

// Kind returns the lowercase service type, preferring api_type.
func (s Service) Kind() string {
	return serviceKind(s.APIType, s.Type)
}

// Link is an entry of the links list or a quick-link card.
type Link struct {
	Name        string         `yaml:"name"`
	URL         string         `yaml:"url"`
	Description string         `yaml:"description"`
	Icon        string         `yaml:"icon"`
	Enabled     bool           `yaml:"enabled"`
	Extra       map[string]any `yaml:",inline"`
}

type SearchEngine struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Icon        string `yaml:"icon"`
	Placeholder string `yaml:"placeholder"`
	Default     bool   `yaml:"default"`
}

// Theme describes a background theme: a display name plus the keywords
// and image collections used to pick images.
type Theme struct {
	Name        string   `yaml:"name"`
	Keywords    []string `yaml:"keywords"`
	Collections []string `yaml:"collections"`
}

// Document decodes the live tree into a typed view.
func (s *Store) Document() (Document, error) {
	var doc Document
	if err := decodeTree(s.Tree(), &doc); err != nil {
		return Document{}, fmt.Errorf("decode config: %w", err)
	}
	return doc, nil
}

// decodeTree decodes a tree value into out through a yaml.Node so the
// typed view honors the same yaml tags used for export.
func decodeTree(v any, out any) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return err
	}
	return node.Decode(out)
}

// scalarString renders a scalar tree value as text. Mappings, sequences,
// and nil yield "".
func scalarString(v any) string {
	switch x := v.(type) {
	case nil, map[string]any, []any:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// intValue converts a numeric tree value to an int.
func intValue(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		if x != float64(int(x)) {
			return 0, false
		}
		return int(x), true
	case string:
		n, err := strconv.Atoi(x)
		return n, err == nil
	default:
		return 0, false
	}
}
