// Package background picks dashboard background images from Unsplash
// for a theme, with a built-in image when the API is unavailable.
package background

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/nugget/lazybeagle/internal/apiclient"
	"github.com/nugget/lazybeagle/internal/dashboard"
)

// Image sources, recorded on every [Image].
const (
	SourceCollection = "collection"
	SourceSearch     = "search"
	SourceDefault    = "default"
)

// Request defaults.
const (
	DefaultWidth    = 1920
	DefaultHeight   = 1080
	DefaultQuality  = 80
	DefaultCacheAge = 10 * time.Minute
	DefaultBaseURL  = "https://api.unsplash.com"

	photosPerPage = 30
)

// ErrUnknownTheme is returned for a theme id that is neither configured
// nor built in.
var ErrUnknownTheme = errors.New("unknown background theme")

// Image is a resolved background.
type Image struct {
	ID           string       `json:"id"`
	URL          string       `json:"url"`
	DownloadURL  string       `json:"download_url,omitempty"`
	Photographer Photographer `json:"photographer"`
	Description  string       `json:"description,omitempty"`
	Color        string       `json:"color,omitempty"`
	BlurHash     string       `json:"blur_hash,omitempty"`
	Width        int          `json:"width,omitempty"`
	Height       int          `json:"height,omitempty"`
	Source       string       `json:"source"`
}

type Photographer struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Profile  string `json:"profile"`
}

// Settings supplies themes and the Unsplash credential. A
// [*dashboard.Store] satisfies it.
type Settings interface {
	APIKey(serviceType, field string) string
	Theme(id string) (dashboard.Theme, bool)
}

// Options controls one resolution. Zero fields take the defaults.
type Options struct {
	Width           int
	Height          int
	Quality         int
	SkipCollections bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	return o
}

// ResolverConfig configures a [Resolver].
type ResolverConfig struct {
	Settings   Settings
	BaseURL    string       // defaults to DefaultBaseURL
	HTTPClient *http.Client // nil uses the apiclient default
	Logger     *slog.Logger

	// Rand returns a value in [0, n). Defaults to math/rand.
	Rand func(n int) int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Resolver turns a theme id into a background [Image].
type Resolver struct {
	cfg ResolverConfig

	mu      sync.Mutex
	cache   map[string]cacheEntry
	current *Image
}

type cacheEntry struct {
	image   Image
	fetched time.Time
}

// NewResolver creates a background resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Intn
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Resolver{
		cfg:   cfg,
		cache: make(map[string]cacheEntry),
	}
}

// Theme returns the theme for id, preferring the configured definition
// over the built-in one.
func (r *Resolver) Theme(id string) (dashboard.Theme, error) {
	if r.cfg.Settings != nil {
		if th, ok := r.cfg.Settings.Theme(id); ok {
			return th, nil
		}
	}
	if th, ok := builtinThemes[id]; ok {
		return th, nil
	}
	return dashboard.Theme{}, fmt.Errorf("%w: %s", ErrUnknownTheme, id)
}

// strategy produces an image or reports that it has none.
type strategy struct {
	name string
	run  func(ctx context.Context) (Image, bool, error)
}

// Resolve picks an image for themeID. It tries a random photo from one
// of the theme's collections, then a keyword search, then the built-in
// default. Only an unknown theme is an error.
func (r *Resolver) Resolve(ctx context.Context, themeID string, opts Options) (Image, error) {
	theme, err := r.Theme(themeID)
	if err != nil {
		return Image{}, err
	}
	opts = opts.withDefaults()

	var strategies []strategy
	if client := r.client(); client != nil {
		if !opts.SkipCollections && len(theme.Collections) > 0 {
			strategies = append(strategies, strategy{SourceCollection, func(ctx context.Context) (Image, bool, error) {
				return r.fromCollection(ctx, client, theme.Collections, opts)
			}})
		}
		if len(theme.Keywords) > 0 {
			strategies = append(strategies, strategy{SourceSearch, func(ctx context.Context) (Image, bool, error) {
				return r.fromSearch(ctx, client, theme.Keywords, opts)
			}})
		}
	} else {
		r.cfg.Logger.Debug("no unsplash access key, using default background", "theme", themeID)
	}

	for _, s := range strategies {
		img, ok, err := s.run(ctx)
		if err != nil {
			r.cfg.Logger.Warn("background strategy failed", "strategy", s.name, "theme", themeID, "error", err)
			continue
		}
		if ok {
			return img, nil
		}
		r.cfg.Logger.Debug("background strategy found nothing", "strategy", s.name, "theme", themeID)
	}
	return DefaultImage(themeID, opts.Width, opts.Height), nil
}

// client returns an Unsplash client, or nil without an access key.
func (r *Resolver) client() *apiclient.Client {
	if r.cfg.Settings == nil {
		return nil
	}
	key := r.cfg.Settings.APIKey("unsplash", "access_key")
	if key == "" {
		return nil
	}
	opts := []apiclient.Option{apiclient.WithLogger(r.cfg.Logger)}
	if r.cfg.HTTPClient != nil {
		opts = append(opts, apiclient.WithHTTPClient(r.cfg.HTTPClient))
	}
	return apiclient.NewGenericClient(r.cfg.BaseURL, "", map[string]string{
		"Authorization":  "Client-ID " + key,
		"Accept-Version": "v1",
	}, opts...)
}

func (r *Resolver) fromCollection(ctx context.Context, client *apiclient.Client, collections []string, opts Options) (Image, bool, error) {
	collection := collections[r.cfg.Rand(len(collections))]
	resp, err := client.Get(ctx, "/collections/"+collection+"/photos", apiclient.Params{
		{Key: "per_page", Value: photosPerPage},
	}, nil)
	if err != nil {
		return Image{}, false, err
	}

	var photos []photo
	if err := resp.Decode(&photos); err != nil {
		return Image{}, false, fmt.Errorf("decode collection %s: %w", collection, err)
	}
	if len(photos) == 0 {
		return Image{}, false, nil
	}
	return photos[r.cfg.Rand(len(photos))].image(SourceCollection, opts), true, nil
}

func (r *Resolver) fromSearch(ctx context.Context, client *apiclient.Client, keywords []string, opts Options) (Image, bool, error) {
	keyword := keywords[r.cfg.Rand(len(keywords))]
	resp, err := client.Get(ctx, "/search/photos", apiclient.Params{
		{Key: "query", Value: keyword},
		{Key: "per_page", Value: photosPerPage},
		{Key: "orientation", Value: "landscape"},
	}, nil)
	if err != nil {
		return Image{}, false, err
	}

	var result searchResult
	if err := resp.Decode(&result); err != nil {
		return Image{}, false, fmt.Errorf("decode search %q: %w", keyword, err)
	}
	if len(result.Results) == 0 {
		return Image{}, false, nil
	}
	return result.Results[r.cfg.Rand(len(result.Results))].image(SourceSearch, opts), true, nil
}

// Cached returns the image resolved for themeID within maxAge, resolving
// a new one otherwise. A non-positive maxAge uses DefaultCacheAge.
func (r *Resolver) Cached(ctx context.Context, themeID string, maxAge time.Duration) (Image, error) {
	if maxAge <= 0 {
		maxAge = DefaultCacheAge
	}

	r.mu.Lock()
	entry, ok := r.cache[themeID]
	r.mu.Unlock()
	if ok && r.cfg.Now().Sub(entry.fetched) < maxAge {
		return entry.image, nil
	}

	img, err := r.Resolve(ctx, themeID, Options{})
	if err != nil {
		return Image{}, err
	}

	r.mu.Lock()
	r.cache[themeID] = cacheEntry{image: img, fetched: r.cfg.Now()}
	r.mu.Unlock()
	return img, nil
}

// ClearCache drops every cached image.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.cache)
}

// Current returns the image most recently produced by Rotate.
func (r *Resolver) Current() (Image, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Image{}, false
	}
	return *r.current, true
}

// Rotate resolves an image for themeID immediately and then every
// interval until ctx is cancelled, passing each to fn (which may be nil).
// A non-positive interval resolves once. It blocks.
func (r *Resolver) Rotate(ctx context.Context, themeID string, interval time.Duration, fn func(Image)) error {
	if _, err := r.Theme(themeID); err != nil {
		return err
	}

	r.rotate(ctx, themeID, fn)
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.rotate(ctx, themeID, fn)
		}
	}
}

func (r *Resolver) rotate(ctx context.Context, themeID string, fn func(Image)) {
	img, err := r.Resolve(ctx, themeID, Options{})
	if err != nil {
		r.cfg.Logger.Error("background rotation failed", "theme", themeID, "error", err)
		return
	}

	r.mu.Lock()
	r.current = &img
	r.mu.Unlock()

	r.cfg.Logger.Debug("background rotated", "theme", themeID, "image", img.ID, "source", img.Source)
	if fn != nil {
		fn(img)
	}
}
