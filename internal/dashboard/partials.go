package dashboard

import (
	"context"
	"errors"
	"sync"
)

// BaseDocument is the required top-level configuration document.
const BaseDocument = "config.yaml"

// Partial document names, in merge order.
const (
	PartialClock    = "clock.yaml"
	PartialSearch   = "search.yaml"
	PartialUpcoming = "upcomingReleases.yaml"
	PartialWeather  = "weather.yaml"
	PartialLinks    = "links.yaml"
	PartialServices = "services.yaml"
)

// PartialDocuments lists the optional documents merged over the base.
var PartialDocuments = []string{
	PartialClock,
	PartialSearch,
	PartialUpcoming,
	PartialWeather,
	PartialLinks,
	PartialServices,
}

// fetchPartials fetches every partial concurrently. The result maps a
// partial name to its parsed content; absent partials are omitted. When
// several partials fail, the error for the earliest in merge order wins.
func fetchPartials(ctx context.Context, src Source) (map[string]any, error) {
	type result struct {
		value any
		found bool
		err   error
	}
	results := make([]result, len(PartialDocuments))

	var wg sync.WaitGroup
	for i, name := range PartialDocuments {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			data, err := src.Fetch(ctx, name)
			if errors.Is(err, ErrNotFound) {
				return
			}
			if err != nil {
				results[i].err = &PartialFetchError{Name: name, Err: err}
				return
			}
			value, err := parseFragment(data)
			if err != nil {
				results[i].err = &PartialFetchError{Name: name, Err: err}
				return
			}
			results[i] = result{value: value, found: true}
		}(i, name)
	}
	wg.Wait()

	parts := make(map[string]any, len(PartialDocuments))
	for i, name := range PartialDocuments {
		if results[i].err != nil {
			return nil, results[i].err
		}
		if results[i].found {
			parts[name] = results[i].value
		}
	}
	return parts, nil
}

// normalizePartials places each partial's content at its canonical
// location. A partial may use the nested shape (e.g. layout.clock) or the
// bare shape (the widget block itself); nested wins when both appear.
func normalizePartials(parts map[string]any) map[string]any {
	out := map[string]any{}

	if c := parts[PartialClock]; c != nil {
		putNested(out, firstPresent(dig(c, "layout", "clock"), dig(c, "clock"), c), "layout", "clock")
	}

	if s := parts[PartialSearch]; s != nil {
		widget := firstPresent(dig(s, "layout", "search"), dig(s, "search"), withoutKeys(s, "search_engines", "searchEngines"))
		putNested(out, widget, "layout", "search")
		if engines := firstPresent(dig(s, "search_engines"), dig(s, "searchEngines")); engines != nil {
			out["search_engines"] = engines
		}
	}

	if u := parts[PartialUpcoming]; u != nil {
		putNested(out, firstPresent(dig(u, "layout", "upcoming_releases"), dig(u, "upcoming_releases"), u), "layout", "upcoming_releases")
	}

	if w := parts[PartialWeather]; w != nil {
		if settings := firstPresent(dig(w, "dashboard", "weather"), withoutKeys(dig(w, "weather"), "layout")); settings != nil {
			putNested(out, settings, "dashboard", "weather")
		}
		if widget := firstPresent(dig(w, "layout", "weather"), dig(w, "weather", "layout")); widget != nil {
			putNested(out, widget, "layout", "weather")
		}
	}

	if l := parts[PartialLinks]; l != nil {
		out["links"] = firstPresent(dig(l, "links"), l)
	}

	if s := parts[PartialServices]; s != nil {
		out["services"] = firstPresent(dig(s, "services"), s)
	}

	return out
}

// dig walks mapping keys and returns nil when any step is missing.
func dig(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

func firstPresent(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// withoutKeys returns a shallow copy of a mapping minus keys. Non-mapping
// values are returned unchanged.
func withoutKeys(v any, keys ...string) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, item := range m {
		out[k] = item
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// putNested stores value under keys, creating intermediate mappings.
func putNested(dst map[string]any, value any, keys ...string) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := dst[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			dst[k] = next
		}
		dst = next
	}
	dst[keys[len(keys)-1]] = value
}
