package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Memory is a process-local Store. With a positive TTL every entry expires
// that long after its last Set and a background routine sweeps expired keys.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   clockwork.Clock

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory creates a Memory store. ttl <= 0 disables expiry.
func NewMemory(ttl time.Duration) *Memory {
	return NewMemoryWithClock(ttl, clockwork.NewRealClock())
}

// NewMemoryWithClock is NewMemory with an injectable clock.
func NewMemoryWithClock(ttl time.Duration, clock clockwork.Clock) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		clock:   clock,
		stop:    make(chan struct{}),
	}
	if ttl > 0 {
		go m.cleanupRoutine(30 * time.Second)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.expired(entry, m.clock.Now()) {
		return nil, ErrNotFound
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if m.ttl > 0 {
		entry.expiresAt = m.clock.Now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	now := m.clock.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, entry := range m.entries {
		if !m.expired(entry, now) {
			count++
		}
	}
	return count
}

// CleanupExpired removes every expired entry.
func (m *Memory) CleanupExpired() {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.entries {
		if m.expired(entry, now) {
			delete(m.entries, key)
		}
	}
}

// Close stops the cleanup routine. It is safe to call more than once.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

func (m *Memory) cleanupRoutine(every time.Duration) {
	ticker := m.clock.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			m.CleanupExpired()
		case <-m.stop:
			return
		}
	}
}
