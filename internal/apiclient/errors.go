package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPStatusError is returned for any non-2xx response.
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	// Body holds the first bytes of the response body, for diagnostics.
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d %s: %s %s", e.StatusCode, e.Status, e.Method, e.URL)
}

// IsNotFound reports whether the server answered 404.
func (e *HTTPStatusError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether the API key was rejected.
func (e *HTTPStatusError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// NetworkError wraps a failure below HTTP: DNS, dial, TLS, timeout,
// cancelled context or a truncated body.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not
// (and does not wrap) an [*HTTPStatusError].
func StatusCode(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
