package apiclient

import "strings"

// Versioned API prefixes for the well-known service shapes.
const (
	PrefixV3 = "/api/v3"
	PrefixV1 = "/api/v1"
)

// servicePrefixes maps a lowercase service type to its API prefix.
var servicePrefixes = map[string]string{
	"sonarr":  PrefixV3,
	"radarr":  PrefixV3,
	"readarr": PrefixV1,
	"lidarr":  PrefixV1,
}

// NewSonarrClient returns a client for a Sonarr instance at baseURL.
func NewSonarrClient(baseURL, apiKey string, opts ...Option) *Client {
	return New(joinPrefix(baseURL, PrefixV3), apiKey, opts...)
}

// NewRadarrClient returns a client for a Radarr instance at baseURL.
func NewRadarrClient(baseURL, apiKey string, opts ...Option) *Client {
	return New(joinPrefix(baseURL, PrefixV3), apiKey, opts...)
}

// NewReadarrClient returns a client for a Readarr instance at baseURL.
func NewReadarrClient(baseURL, apiKey string, opts ...Option) *Client {
	return New(joinPrefix(baseURL, PrefixV1), apiKey, opts...)
}

// NewLidarrClient returns a client for a Lidarr instance at baseURL.
func NewLidarrClient(baseURL, apiKey string, opts ...Option) *Client {
	return New(joinPrefix(baseURL, PrefixV1), apiKey, opts...)
}

// NewGenericClient returns a client for an arbitrary base address. apiKey
// may be empty; headers become defaults on every request.
func NewGenericClient(baseURL, apiKey string, headers map[string]string, opts ...Option) *Client {
	if len(headers) > 0 {
		opts = append([]Option{WithHeaders(headers)}, opts...)
	}
	return New(baseURL, apiKey, opts...)
}

// ForService returns a client for a service of the given type, applying
// the versioned prefix for known types and a generic client otherwise.
func ForService(serviceType, baseURL, apiKey string, opts ...Option) *Client {
	if prefix, ok := servicePrefixes[strings.ToLower(serviceType)]; ok {
		return New(joinPrefix(baseURL, prefix), apiKey, opts...)
	}
	return NewGenericClient(baseURL, apiKey, nil, opts...)
}

// KnownService reports whether serviceType has a dedicated constructor.
func KnownService(serviceType string) bool {
	_, ok := servicePrefixes[strings.ToLower(serviceType)]
	return ok
}

func joinPrefix(baseURL, prefix string) string {
	return strings.TrimSuffix(baseURL, "/") + prefix
}
