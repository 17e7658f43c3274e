package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// entry stores a cached document with the time it was stored.
type entry struct {
	storedAt time.Time
	data     []byte
}

// Memory caches documents in process for a TTL.
type Memory struct {
	// TTL of an entry; zero keeps entries forever.
	TTL time.Duration
	// MaxItems caps the number of entries; zero means no cap.
	MaxItems int
	// Clock defaults to time.Now.
	Clock func() time.Time

	mu    sync.RWMutex
	items map[string]entry // key: url
}

func NewMemory(ttl time.Duration, maxItems int) *Memory {
	return &Memory{TTL: ttl, MaxItems: maxItems}
}

func (m *Memory) Get(_ context.Context, url string) ([]byte, bool, error) {
	now := nowFunc(m.Clock)

	m.mu.RLock()
	e, ok := m.items[url]
	m.mu.RUnlock()
	if !ok || expired(e.storedAt, now, m.TTL) {
		return nil, false, nil
	}
	return bytes.Clone(e.data), true, nil
}

func (m *Memory) Set(_ context.Context, url string, data []byte) error {
	now := nowFunc(m.Clock)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]entry)
	}
	m.items[url] = entry{storedAt: now, data: bytes.Clone(data)}

	// best-effort cap cache size
	if m.MaxItems > 0 && len(m.items) > m.MaxItems {
		// remove expired first, then arbitrary entries other than the new one
		for k, v := range m.items {
			if len(m.items) <= m.MaxItems {
				break
			}
			if expired(v.storedAt, now, m.TTL) {
				delete(m.items, k)
			}
		}
		for k := range m.items {
			if len(m.items) <= m.MaxItems {
				break
			}
			if k != url {
				delete(m.items, k)
			}
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
