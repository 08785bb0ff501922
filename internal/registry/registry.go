package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/stakewatch/stakewatch/internal/model"
	"github.com/stakewatch/stakewatch/internal/signal"
)

// Mode selects the lookup contract for unknown ids.
type Mode string

const (
	// ModeStrict fails with ErrNotFound for unknown ids.
	ModeStrict Mode = "strict"
	// ModeSandbox synthesises a bootstrap profile for unknown ids.
	ModeSandbox Mode = "sandbox"
)

// Options configures a Registry.
type Options struct {
	Store   Store
	Signals signal.Source
	Mode    Mode
	// PersistBootstrap writes synthesised profiles back to the store so
	// later instances see the same placeholder. Off by default: sandbox
	// artifacts stay out of the store.
	PersistBootstrap bool
}

// Registry caches group profiles for the lifetime of the instance. Lookups
// miss to the backing store, then (in sandbox mode) to deterministic
// bootstrap synthesis. There is no eviction; callers needing freshness use
// Reset.
type Registry struct {
	store            Store
	signals          signal.Source
	mode             Mode
	persistBootstrap bool

	mu    sync.RWMutex
	cache map[string]*model.StakeholderGroup
	sf    singleflight.Group
}

// New creates a registry. Mode defaults to sandbox.
func New(opts Options) *Registry {
	mode := opts.Mode
	if mode == "" {
		mode = ModeSandbox
	}
	return &Registry{
		store:            opts.Store,
		signals:          opts.Signals,
		mode:             mode,
		persistBootstrap: opts.PersistBootstrap,
		cache:            make(map[string]*model.StakeholderGroup),
	}
}

// Profile returns the group profile for id, from cache, store, or (sandbox
// mode) bootstrap synthesis. ErrNotFound is returned in strict mode only.
func (r *Registry) Profile(ctx context.Context, id string) (*model.StakeholderGroup, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	r.mu.RLock()
	cached, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	// Concurrent first-access to the same id shares one fetch.
	v, err, _ := r.sf.Do(id, func() (any, error) {
		return r.fetch(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	profile := v.(*model.StakeholderGroup)

	r.mu.Lock()
	r.cache[id] = profile
	r.mu.Unlock()
	return profile, nil
}

func (r *Registry) fetch(ctx context.Context, id string) (*model.StakeholderGroup, error) {
	profile, err := r.store.Get(ctx, id)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("profile store fetch for %s: %w", id, err)
	}
	if r.mode == ModeStrict {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	profile = Bootstrap(id, r.signals)
	slog.Debug("Registry synthesised bootstrap profile", "group", id)
	if r.persistBootstrap {
		if err := r.store.Put(ctx, profile); err != nil {
			slog.Warn("Registry failed to persist bootstrap profile", "group", id, "error", err)
		}
	}
	return profile, nil
}

// Save writes a profile through to the store and refreshes the cache entry.
func (r *Registry) Save(ctx context.Context, profile *model.StakeholderGroup) error {
	if profile == nil || profile.ID == "" {
		return fmt.Errorf("cannot save profile without id")
	}
	if err := r.store.Put(ctx, profile); err != nil {
		return err
	}
	r.mu.Lock()
	r.cache[profile.ID] = profile
	r.mu.Unlock()
	return nil
}

// Profiles lists every profile in the backing store, bypassing the cache.
func (r *Registry) Profiles(ctx context.Context) ([]*model.StakeholderGroup, error) {
	return r.store.List(ctx)
}

// Reset drops every cached profile. The backing store is untouched.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]*model.StakeholderGroup)
	r.mu.Unlock()
}

// CacheSize reports how many profiles are currently cached.
func (r *Registry) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Mode reports the configured lookup contract.
func (r *Registry) Mode() Mode {
	return r.mode
}
