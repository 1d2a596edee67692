package background

import (
	"fmt"

	"github.com/nugget/lazybeagle/internal/dashboard"
)

// builtinThemes is consulted when the configuration does not define a
// theme itself.
var builtinThemes = map[string]dashboard.Theme{
	"nature": {
		Name:        "Nature",
		Keywords:    []string{"nature", "forest", "mountains", "landscape", "trees", "wilderness"},
		Collections: []string{"1114848", "1065976"},
	},
	"urban": {
		Name:        "Urban",
		Keywords:    []string{"city", "urban", "architecture", "buildings", "skyline", "street"},
		Collections: []string{"1114849", "1065396"},
	},
	"minimal": {
		Name:        "Minimal",
		Keywords:    []string{"minimal", "clean", "simple", "abstract", "geometric", "modern"},
		Collections: []string{"1114847", "1065392"},
	},
	"space": {
		Name:        "Space",
		Keywords:    []string{"space", "galaxy", "stars", "nebula", "cosmos", "astronomy"},
		Collections: []string{"1114850", "1065397"},
	},
	"ocean": {
		Name:        "Ocean",
		Keywords:    []string{"ocean", "sea", "water", "waves", "beach", "coastal"},
		Collections: []string{"1114851", "1065398"},
	},
	"mountains": {
		Name:        "Mountains",
		Keywords:    []string{"mountains", "peaks", "alpine", "snow", "hiking", "summit"},
		Collections: []string{"1114852", "1065399"},
	},
}

// defaultPhotos holds one known-good photo per built-in theme.
var defaultPhotos = map[string]string{
	"nature":    "photo-1506905925346-21bda4d32df4",
	"urban":     "photo-1449824913935-59a10b8d2000",
	"minimal":   "photo-1557804506-669a67965ba0",
	"space":     "photo-1446776877081-d282a0f896e2",
	"ocean":     "photo-1505142468610-359e7d316be0",
	"mountains": "photo-1506905925346-21bda4d32df4",
}

// BuiltinThemes returns a copy of the built-in theme table.
func BuiltinThemes() map[string]dashboard.Theme {
	out := make(map[string]dashboard.Theme, len(builtinThemes))
	for id, th := range builtinThemes {
		th.Keywords = append([]string(nil), th.Keywords...)
		th.Collections = append([]string(nil), th.Collections...)
		out[id] = th
	}
	return out
}

// DefaultImageURL returns the fallback image for themeID. Themes without
// a dedicated photo use the nature photo.
func DefaultImageURL(themeID string, width, height int) string {
	photo, ok := defaultPhotos[themeID]
	if !ok {
		photo = defaultPhotos["nature"]
	}
	return fmt.Sprintf("https://images.unsplash.com/%s?w=%d&h=%d&fit=crop&crop=entropy&q=80&fm=jpg", photo, width, height)
}

// DefaultImage builds the image returned when no remote strategy
// produced one.
func DefaultImage(themeID string, width, height int) Image {
	return Image{
		ID:  "default-" + themeID,
		URL: DefaultImageURL(themeID, width, height),
		Photographer: Photographer{
			Name:     "Unsplash",
			Username: "unsplash",
			Profile:  "https://unsplash.com",
		},
		Description: fmt.Sprintf("Default %s background", themeID),
		Color:       "#4A5568",
		Source:      SourceDefault,
	}
}
