package httpkit

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nugget/lazybeagle/internal/config"
)

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient()
	if c.Timeout != DefaultTimeout {
		t.Errorf("expected %v timeout, got %v", DefaultTimeout, c.Timeout)
	}
}

func TestNewClient_CustomTimeout(t *testing.T) {
	c := NewClient(WithTimeout(5 * time.Second))
	if c.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", c.Timeout)
	}
}

func echoUserAgent(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func getBody(t *testing.T, c *http.Client, req *http.Request) string {
	t.Helper()
	resp, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestNewClient_UserAgent(t *testing.T) {
	srv := echoUserAgent(t)

	req, _ := http.NewRequest("GET", srv.URL, nil)
	got := getBody(t, NewClient(WithUserAgent("TestBot/1.0")), req)
	if got != "TestBot/1.0" {
		t.Errorf("expected TestBot/1.0, got %q", got)
	}
}

func TestNewClient_DefaultUserAgent(t *testing.T) {
	srv := echoUserAgent(t)

	req, _ := http.NewRequest("GET", srv.URL, nil)
	got := getBody(t, NewClient(), req)
	if !strings.HasPrefix(got, "LazyBeagle/") {
		t.Errorf("expected LazyBeagle/ prefix, got %q", got)
	}
}

func TestNewClient_WithoutUserAgent(t *testing.T) {
	srv := echoUserAgent(t)

	req, _ := http.NewRequest("GET", srv.URL, nil)
	got := getBody(t, NewClient(WithoutUserAgent()), req)
	if strings.HasPrefix(got, "LazyBeagle/") {
		t.Errorf("expected no LazyBeagle/ prefix with WithoutUserAgent, got %q", got)
	}
}

func TestNewClient_ExistingUserAgentNotOverwritten(t *testing.T) {
	srv := echoUserAgent(t)

	req, _ := http.NewRequest("GET", srv.URL, nil)
	req.Header.Set("User-Agent", "CustomBot/2.0")
	got := getBody(t, NewClient(), req)
	if got != "CustomBot/2.0" {
		t.Errorf("expected CustomBot/2.0, got %q", got)
	}
}

func TestNewClient_TraceLogging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level:       config.LevelTrace,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))

	req, _ := http.NewRequest("GET", srv.URL+"/status", nil)
	getBody(t, NewClient(WithLogger(logger)), req)

	out := buf.String()
	for _, want := range []string{"level=TRACE", "http round trip", "status=418", "/status"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace log missing %q: %s", want, out)
		}
	}
}

func TestNewTransport_HasTimeouts(t *testing.T) {
	tr := NewTransport()
	if tr.TLSHandshakeTimeout != DefaultTLSHandshakeTimeout {
		t.Errorf("TLSHandshakeTimeout: got %v, want %v", tr.TLSHandshakeTimeout, DefaultTLSHandshakeTimeout)
	}
	if tr.ResponseHeaderTimeout != DefaultResponseHeader {
		t.Errorf("ResponseHeaderTimeout: got %v, want %v", tr.ResponseHeaderTimeout, DefaultResponseHeader)
	}
	if tr.MaxIdleConnsPerHost != DefaultMaxIdleConnsPerHost {
		t.Errorf("MaxIdleConnsPerHost: got %d, want %d", tr.MaxIdleConnsPerHost, DefaultMaxIdleConnsPerHost)
	}
}

func TestNewClient_TLSInsecureSkipVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secure"))
	}))
	defer srv.Close()

	strict := NewClient(WithTimeout(2 * time.Second))
	if _, err := strict.Get(srv.URL); err == nil {
		t.Fatal("expected TLS error with strict client")
	}

	insecure := NewClient(WithTimeout(2*time.Second), WithTLSInsecureSkipVerify())
	req, _ := http.NewRequest("GET", srv.URL, nil)
	if got := getBody(t, insecure, req); got != "secure" {
		t.Errorf("expected 'secure', got %q", got)
	}
}

func TestReadErrorBody(t *testing.T) {
	tests := []struct {
		name  string
		rc    io.ReadCloser
		limit int64
		want  string
	}{
		{"full", io.NopCloser(strings.NewReader("error details here")), 512, "error details here"},
		{"truncated", io.NopCloser(strings.NewReader(strings.Repeat("x", 1000))), 10, strings.Repeat("x", 10)},
		{"nil", nil, 512, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadErrorBody(tt.rc, tt.limit); got != tt.want {
				t.Errorf("ReadErrorBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

type failReader struct{}

func (f *failReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("simulated read error")
}

func TestReadErrorBody_Error(t *testing.T) {
	got := ReadErrorBody(io.NopCloser(&failReader{}), 512)
	if !strings.Contains(got, "failed to read") {
		t.Errorf("expected failure message, got %q", got)
	}
}

func TestDrainAndClose(t *testing.T) {
	DrainAndClose(io.NopCloser(strings.NewReader("hello world")), 1024)
	DrainAndClose(nil, 1024) // nil should not panic
}
