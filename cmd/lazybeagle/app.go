package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/nugget/lazybeagle/internal/background"
	"github.com/nugget/lazybeagle/internal/config"
	"github.com/nugget/lazybeagle/internal/dashboard"
	"github.com/nugget/lazybeagle/internal/httpkit"
	"github.com/nugget/lazybeagle/internal/opstate"
)

// lockWait bounds how long a command waits for another invocation to
// release the data directory.
const lockWait = 10 * time.Second

// app wires the dashboard store to its source, the local override
// store, and the snapshot persister.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	http   *http.Client

	lock      *flock.Flock
	state     *opstate.Store
	store     *dashboard.Store
	persister *dashboard.Persister
}

// openApp builds the application and performs the initial load. A
// failed load is not fatal: the store falls back to defaults and keeps
// the error for [dashboard.Store.Err].
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
	}

	// Each run loads, mutates and rewrites the whole snapshot, so runs
	// against one data directory are serialized.
	lock := flock.New(filepath.Join(cfg.DataDir, "lazybeagle.lock"))
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	locked, err := lock.TryLockContext(lockCtx, 50*time.Millisecond)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire lock %s: another lazybeagle command is running", lock.Path())
	}

	state, err := opstate.NewStore(cfg.Store.Driver, cfg.DBPath())
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open override store: %w", err)
	}

	httpOpts := []httpkit.ClientOption{
		httpkit.WithTimeout(cfg.HTTP.Timeout),
		httpkit.WithLogger(logger),
	}
	if cfg.HTTP.SkipTLSVerify {
		httpOpts = append(httpOpts, httpkit.WithTLSInsecureSkipVerify())
	}
	client := httpkit.NewClient(httpOpts...)

	overrides := dashboard.NewKVOverrides(state)
	store := dashboard.NewStore(dashboard.NewSource(cfg.Dashboard.Source, client, logger), overrides, logger)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		http:      client,
		lock:      lock,
		state:     state,
		store:     store,
		persister: dashboard.NewPersister(store, overrides, cfg.Persist.Debounce, logger),
	}

	if err := store.Load(ctx, dashboard.LoadOptions{}); err != nil && ctx.Err() != nil {
		a.Close(context.WithoutCancel(ctx))
		return nil, ctx.Err()
	}
	return a, nil
}

func (a *app) resolver() *background.Resolver {
	return background.NewResolver(background.ResolverConfig{
		Settings:   a.store,
		BaseURL:    a.cfg.Unsplash.BaseURL,
		HTTPClient: a.http,
		Logger:     a.logger,
	})
}

// Close writes any pending override snapshot, closes the state
// database and releases the data directory lock.
func (a *app) Close(ctx context.Context) error {
	flushErr := a.persister.Close(ctx)
	if flushErr != nil {
		a.logger.Error("failed to persist dashboard overrides", "error", flushErr)
	}
	closeErr := a.state.Close()
	if err := a.lock.Unlock(); err != nil {
		a.logger.Warn("failed to release data directory lock", "error", err)
	}
	return errors.Join(flushErr, closeErr)
}
