// Package cache memoizes annotated bar series for a limited time.
package cache

import (
	"context"
	"sync"
	"time"

	"StockPulse/internal/model"
)

// DefaultTTL applies to fetched daily series.
const DefaultTTL = 300 * time.Second

// Store is a keyed series cache. Get reports a miss for absent or expired entries.
type Store interface {
	Get(ctx context.Context, key model.SeriesKey) (*model.Series, bool)
	Set(ctx context.Context, key model.SeriesKey, s *model.Series)
}

type entry struct {
	series     *model.Series
	insertedAt time.Time
}

// Memory is an in-process TTL store. All access is serialized by a mutex.
type Memory struct {
	mu      sync.Mutex
	entries map[model.SeriesKey]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a store with the given ttl; a non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[model.SeriesKey]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
	return m
}

// Get returns the entry if it is younger than ttl. Stale entries are evicted.
func (m *Memory) Get(_ context.Context, key model.SeriesKey) (*model.Series, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.insertedAt) >= m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return e.series, true
}

// Set stores s under key, replacing any previous entry.
func (m *Memory) Set(_ context.Context, key model.SeriesKey, s *model.Series) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{series: s, insertedAt: m.now()}
}

// Len returns the number of entries, including ones not yet evicted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Purge drops every expired entry and returns how many were removed.
func (m *Memory) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if now.Sub(e.insertedAt) >= m.ttl {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}
