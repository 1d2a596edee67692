package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/nugget/lazybeagle/internal/httpkit"
)

// maxDocumentSize bounds a single fetched document.
const maxDocumentSize = 4 << 20

// Source fetches named YAML documents such as "config.yaml". Fetch
// returns an error wrapping [ErrNotFound] when the document is absent.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FSSource reads documents from a filesystem.
type FSSource struct {
	fsys fs.FS
}

// NewDirSource returns a source reading documents from dir.
func NewDirSource(dir string) *FSSource {
	return &FSSource{fsys: os.DirFS(dir)}
}

// NewFSSource returns a source reading documents from fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

func (s *FSSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// HTTPSource fetches documents relative to a base URL, the way a browser
// would load them from the server hosting the dashboard.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPSource returns a source fetching baseURL + "/" + name. A nil
// client gets a default [httpkit.NewClient].
func NewHTTPSource(baseURL string, client *http.Client, logger *slog.Logger) *HTTPSource {
	if client == nil {
		client = httpkit.NewClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := s.baseURL + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		httpkit.DrainAndClose(resp.Body, 4096)
		s.logger.Debug("dashboard document absent", "url", url)
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := httpkit.ReadErrorBody(resp.Body, 512)
		return nil, fmt.Errorf("fetch %s: %s: %s", url, resp.Status, strings.TrimSpace(body))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

// NewSource picks a source for location: an http(s) URL yields an
// [HTTPSource], anything else is treated as a directory.
func NewSource(location string, client *http.Client, logger *slog.Logger) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, client, logger)
	}
	return NewDirSource(location)
}
