// Package config handles LazyBeagle process settings: where the dashboard
// documents live, where local state is kept, and how logging and
// outbound HTTP behave. The dashboard documents themselves are handled
// by the dashboard package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file name looked up in each search directory.
const FileName = "lazybeagle.yaml"

// ErrNotFound is returned by FindConfig when no settings file exists in
// any search location. Callers typically fall back to [Default].
var ErrNotFound = errors.New("no config file found")

// DefaultSearchPaths returns the config file search order.
// An explicit path (from --config) is checked first.
// Then: ./lazybeagle.yaml, ~/.config/lazybeagle/lazybeagle.yaml,
// /etc/lazybeagle/lazybeagle.yaml.
func DefaultSearchPaths() []string {
	paths := []string{FileName}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "lazybeagle", FileName))
	}

	paths = append(paths, filepath.Join("/etc/lazybeagle", FileName))
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns [ErrNotFound] (wrapped) if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w (searched: %v)", ErrNotFound, DefaultSearchPaths())
}

// Config holds all LazyBeagle process settings.
type Config struct {
	Dashboard DashboardConfig `yaml:"dashboard"`
	DataDir   string          `yaml:"data_dir" validate:"required"`
	LogLevel  string          `yaml:"log_level"`
	LogFormat string          `yaml:"log_format" validate:"omitempty,oneof=text json"`
	Store     StoreConfig     `yaml:"store"`
	Persist   PersistConfig   `yaml:"persist"`
	HTTP      HTTPConfig      `yaml:"http"`
	Unsplash  UnsplashConfig  `yaml:"unsplash"`
}

// DashboardConfig locates the declarative dashboard documents.
type DashboardConfig struct {
	// Source is either a directory path or an http(s) URL under which
	// config.yaml and the optional partials (clock.yaml, links.yaml, ...)
	// are found.
	Source string `yaml:"source" validate:"required"`
}

// IsRemote reports whether Source is an HTTP root rather than a directory.
func (d DashboardConfig) IsRemote() bool {
	return strings.HasPrefix(d.Source, "http://") || strings.HasPrefix(d.Source, "https://")
}

// StoreConfig selects the SQLite driver for the local override store.
type StoreConfig struct {
	// Driver is "sqlite3" (mattn/go-sqlite3, cgo) or "sqlite"
	// (modernc.org/sqlite, pure Go).
	Driver string `yaml:"driver" validate:"oneof=sqlite3 sqlite"`
	// File is the database file name inside DataDir.
	File string `yaml:"file" validate:"required"`
}

// PersistConfig tunes the override snapshot writer.
type PersistConfig struct {
	// Debounce coalesces bursts of mutations into one snapshot write.
	Debounce time.Duration `yaml:"debounce" validate:"min=0"`
}

// HTTPConfig defines outbound HTTP behavior.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" validate:"min=0"`
	SkipTLSVerify bool          `yaml:"skip_tls_verify"`
}

// UnsplashConfig defines the image provider used for backgrounds.
type UnsplashConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
}

// DBPath returns the full path of the override store database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.Store.File)
}

// Load reads configuration from a YAML file. Values missing from the
// file keep their [Default] values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Dashboard: DashboardConfig{Source: "public"},
		DataDir:   "data",
		LogLevel:  "info",
		LogFormat: "text",
		Store: StoreConfig{
			Driver: "sqlite3",
			File:   "lazybeagle.db",
		},
		Persist: PersistConfig{Debounce: 250 * time.Millisecond},
		HTTP:    HTTPConfig{Timeout: 30 * time.Second},
		Unsplash: UnsplashConfig{
			BaseURL: "https://api.unsplash.com",
		},
	}
}

var (
	validateOnce sync.Once
	validateInst *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate checks the settings for values that would make startup fail.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if err := validatorInstance().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
