package archive

import (
	"context"
	"sort"
	"sync"
	"time"
)

type entry struct {
	run     *Run
	expires time.Time
}

// Memory is an in-process Store. Expired runs are dropped lazily.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a store whose runs expire after ttl; 0 keeps them
// forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) expired(e entry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}

func (m *Memory) Save(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{run: run}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[run.ID] = e
	return nil
}

func (m *Memory) Load(_ context.Context, id string) (*Run, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return nil, ErrNotFound
	}
	return e.run, nil
}

// List prunes expired runs and returns the rest ordered by creation time.
func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := make([]*Run, 0, len(m.entries))
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
			continue
		}
		live = append(live, e.run)
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].ID < live[j].ID
		}
		return live[i].CreatedAt.Before(live[j].CreatedAt)
	})

	ids := make([]string, len(live))
	for i, r := range live {
		ids[i] = r.ID
	}
	return ids, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
