// Package apiclient is a small REST client for the uniform third-party
// services a dashboard talks to (Sonarr, Radarr, Readarr, Lidarr and
// anything else that speaks JSON over HTTP with an API key header).
//
// A Client is bound to one base address and a default header set. Every
// call builds exactly one request, never retries, and returns either a
// normalized [Response] or a typed error ([*HTTPStatusError],
// [*NetworkError]). Failures are logged once here and returned so the
// caller can pick its own fallback.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/nugget/lazybeagle/internal/httpkit"
)

// APIKeyHeader carries the service API key on every request.
const APIKeyHeader = "X-Api-Key"

// maxBody caps how much of a response body is read.
const maxBody = 16 << 20

// Client issues requests against a fixed base address.
type Client struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHeaders adds default headers sent on every request. They are
// applied after Content-Type and before the API key header.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithHTTPClient overrides the shared httpkit client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for failure reporting.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL. A single trailing slash is stripped
// from baseURL. When apiKey is non-empty it is sent as [APIKeyHeader].
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: map[string]string{"Content-Type": "application/json"},
	}
	for _, o := range opts {
		o(c)
	}
	if apiKey != "" {
		c.headers[APIKeyHeader] = apiKey
	}
	if c.httpClient == nil {
		c.httpClient = httpkit.NewClient()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// BaseURL returns the normalized base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Header returns the default value for a header, or "" if unset.
func (c *Client) Header(name string) string {
	for k, v := range c.headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Param is one query parameter. A nil Value, or a nil pointer, map or
// slice, omits the parameter. Other pointers are sent as their target.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered query parameter list. Order is preserved on the
// wire, which some arr endpoints are picky about.
type Params []Param

// Response is a successful reply. Exactly one of Data or Text is
// populated, depending on whether the server declared a JSON body.
type Response struct {
	StatusCode  int
	Header      http.Header
	ContentType string

	// Data is the decoded JSON body. An empty JSON body leaves it nil.
	Data any
	// Text is the verbatim body of a non-JSON response.
	Text string

	raw []byte
}

// IsJSON reports whether the response carried a JSON content type.
func (r *Response) IsJSON() bool {
	return isJSON(r.ContentType)
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if len(r.raw) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.raw, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get issues a GET with optional query parameters.
func (c *Client) Get(ctx context.Context, endpoint string, params Params, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, params, headers)
}

// Post issues a POST with body encoded as JSON (omitted when nil).
func (c *Client) Post(ctx context.Context, endpoint string, body any, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, body, nil, headers)
}

// Put issues a PUT with body encoded as JSON (omitted when nil).
func (c *Client) Put(ctx context.Context, endpoint string, body any, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPut, endpoint, body, nil, headers)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string, headers map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil, headers)
}

// BuildURL returns the target for endpoint with params appended.
func (c *Client) BuildURL(endpoint string, params Params) (string, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", c.baseURL+endpoint, err)
	}

	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, p := range params {
		v, ok := paramValue(p.Value)
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fmt.Sprint(v)))
	}
	u.RawQuery = b.String()

	return u.String(), nil
}

// paramValue unwraps pointers to the value they hold. Nil values,
// including typed nil pointers, maps and slices, report false.
func paramValue(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() {
		switch rv.Kind() {
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return nil, false
			}
			rv = rv.Elem()
			continue
		case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if rv.IsNil() {
				return nil, false
			}
		}
		return rv.Interface(), true
	}
	return nil, false
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, params Params, headers map[string]string) (*Response, error) {
	resp, err := c.roundTrip(ctx, method, endpoint, body, params, headers)
	if err != nil {
		c.logger.Error("API request failed",
			"method", method,
			"endpoint", endpoint,
			"error", err,
		)
		return nil, err
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, body any, params Params, headers map[string]string) (*Response, error) {
	target, err := c.BuildURL(endpoint, params)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut) {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: err}
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       httpkit.ReadErrorBody(resp.Body, 512),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &NetworkError{Method: method, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	out := &Response{
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		raw:         raw,
	}
	if !out.IsJSON() {
		out.Text = string(raw)
		return out, nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out.Data); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return out, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// statusText returns the reason phrase, e.g. "Not Found".
func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode)); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
