// Package registry owns stakeholder group profiles: a backing store, an
// instance-lifetime cache, and the strict/sandbox lookup contract every
// analysis component depends on.
package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/stakewatch/stakewatch/internal/model"
)

// ErrNotFound is returned when a profile does not exist in the store.
var ErrNotFound = errors.New("group profile not found")

// Store is the boundary to the external profile persistence service. The
// schema behind it is owned elsewhere; the registry only reads and writes
// whole profiles by id.
type Store interface {
	Get(ctx context.Context, id string) (*model.StakeholderGroup, error)
	Put(ctx context.Context, profile *model.StakeholderGroup) error
	List(ctx context.Context) ([]*model.StakeholderGroup, error)
	Close() error
}

// MemoryStore is an in-memory Store for tests and ephemeral runs. It is safe
// for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*model.StakeholderGroup
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*model.StakeholderGroup)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*model.StakeholderGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) Put(ctx context.Context, profile *model.StakeholderGroup) error {
	cp := *profile
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = &cp
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*model.StakeholderGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.StakeholderGroup, 0, len(m.profiles))
	for _, p := range m.profiles {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
