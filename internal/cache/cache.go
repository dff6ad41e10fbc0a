// Package cache holds the catalog statistics cache used by the character service.
package cache

import (
	"context"
	"sync"
	"time"

	"heroes/internal/catalog"
)

// StatsCache stores the last computed catalog statistics.
// Get reports ok=false on a miss.
type StatsCache interface {
	Get(ctx context.Context) (*catalog.Stats, bool, error)
	Set(ctx context.Context, stats catalog.Stats) error
	Invalidate(ctx context.Context) error
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context) (*catalog.Stats, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, catalog.Stats) error          { return nil }
func (Nop) Invalidate(context.Context) error                  { return nil }

// Memory is an in-process StatsCache with an optional TTL.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	stats   *catalog.Stats
	expires time.Time
}

// NewMemory creates a Memory cache. A zero ttl keeps entries until invalidated.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl}
}

func (m *Memory) Get(context.Context) (*catalog.Stats, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.stats == nil {
		return nil, false, nil
	}
	if m.ttl > 0 && time.Now().After(m.expires) {
		return nil, false, nil
	}
	stats := cloneStats(*m.stats)
	return &stats, true, nil
}

func (m *Memory) Set(_ context.Context, stats catalog.Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneStats(stats)
	m.stats = &stored
	m.expires = time.Now().Add(m.ttl)
	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	m.stats = nil
	m.mu.Unlock()
	return nil
}

func cloneStats(s catalog.Stats) catalog.Stats {
	out := s
	out.Affiliations = cloneCounts(s.Affiliations)
	out.Universes = cloneCounts(s.Universes)
	return out
}

func cloneCounts(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
