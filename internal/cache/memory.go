package cache

import (
	"context"
	"sync"
	"time"

	"github.com/af-corp/relay/internal/types"
)

// Memory is an in-process Store bounded by both TTL and entry count.
// A single mutex serializes all access: expected entry counts (thousands)
// make one lock cheap next to the network call it avoids. When a write
// would exceed maxEntries, the oldest-inserted entries go first — plain
// insertion order, not LRU, and reads do not refresh a key's position.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	order      []string // insertion order, oldest first
	ttl        time.Duration
	maxEntries int
}

type memoryEntry struct {
	result    *types.Result
	expiresAt time.Time
}

func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	return &Memory{
		entries:    make(map[string]*memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (m *Memory) Get(_ context.Context, key string) (*types.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpiredLocked()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	res := entry.result.Clone()
	res.Cached = true
	return res, true
}

func (m *Memory) Put(_ context.Context, key string, res *types.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpiredLocked()

	// Re-inserting an existing key counts as a fresh insertion.
	if _, ok := m.entries[key]; ok {
		m.removeFromOrderLocked(key)
	}

	m.entries[key] = &memoryEntry{
		result:    res.Clone(),
		expiresAt: time.Now().Add(m.ttl),
	}
	m.order = append(m.order, key)

	for m.maxEntries > 0 && len(m.entries) > m.maxEntries {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
}

// Len reports the current entry count, after sweeping expired entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictExpiredLocked()
	return len(m.entries)
}

// evictExpiredLocked drops every entry whose expiry has passed. The TTL is
// fixed per store, so insertion order is also expiry order and the sweep
// can stop at the first live entry.
func (m *Memory) evictExpiredLocked() {
	now := time.Now()
	for len(m.order) > 0 {
		key := m.order[0]
		entry, ok := m.entries[key]
		if ok && entry.expiresAt.After(now) {
			break
		}
		m.order = m.order[1:]
		delete(m.entries, key)
	}
}

func (m *Memory) removeFromOrderLocked(key string) {
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
