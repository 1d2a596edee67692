package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Persister writes the override snapshot after user changes. Rapid
// changes within the debounce window collapse into one write. Reloads
// and resets cancel a pending write.
type Persister struct {
	store     *Store
	overrides OverrideStore
	debounce  time.Duration
	logger    *slog.Logger

	mu          sync.Mutex
	timer       *time.Timer
	pending     bool
	lastErr     error
	unsubscribe func()
}

// NewPersister subscribes to store and persists into overrides. A
// debounce of zero writes synchronously on every change.
func NewPersister(store *Store, overrides OverrideStore, debounce time.Duration, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Persister{
		store:     store,
		overrides: overrides,
		debounce:  debounce,
		logger:    logger,
	}
	p.unsubscribe = store.Subscribe(p.handle)
	return p
}

func (p *Persister) handle(c Change) {
	if !c.Persistable() {
		p.cancel()
		return
	}

	if p.debounce <= 0 {
		p.write(context.Background())
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = true
	if p.timer == nil {
		p.timer = time.AfterFunc(p.debounce, p.fire)
	} else {
		p.timer.Reset(p.debounce)
	}
}

func (p *Persister) cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.pending = false
}

func (p *Persister) fire() {
	p.mu.Lock()
	if !p.pending {
		p.mu.Unlock()
		return
	}
	p.pending = false
	p.mu.Unlock()

	p.write(context.Background())
}

func (p *Persister) write(ctx context.Context) error {
	data, err := p.store.Snapshot()
	if err == nil {
		err = p.overrides.SaveSnapshot(ctx, data)
	}

	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("override snapshot write failed", "error", err)
		return err
	}
	p.logger.Debug("override snapshot written", "bytes", len(data))
	return nil
}

// Pending reports whether a debounced write is waiting to fire.
func (p *Persister) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Err returns the error from the most recent write, if any.
func (p *Persister) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Flush writes a pending snapshot immediately.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	pending := p.pending
	p.pending = false
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()

	if !pending {
		return nil
	}
	return p.write(ctx)
}

// Close stops listening for changes and flushes any pending write.
func (p *Persister) Close(ctx context.Context) error {
	p.unsubscribe()
	return p.Flush(ctx)
}
