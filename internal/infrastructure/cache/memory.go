package cache

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// MemoryStore is a simple in-memory key-value store with expiration.
// It backs run locks when Redis is disabled; locks then only hold within one process.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	clock clock.Clock
	done  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(clock.New())
}

// NewMemoryStoreWithClock creates a store that reads time from clk
func NewMemoryStoreWithClock(clk clock.Clock) *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		clock: clk,
		done:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// SetIfAbsent stores the value only when the key is missing or expired
func (ms *MemoryStore) SetIfAbsent(_ context.Context, key, value string, expiration time.Duration) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if item, exists := ms.items[key]; exists && !ms.expired(item) {
		return false, nil
	}
	ms.items[key] = &memoryItem{
		value:      value,
		expireTime: ms.clock.Now().Add(expiration),
	}
	return true, nil
}

// DeleteIfValue removes the key only while it still holds value
func (ms *MemoryStore) DeleteIfValue(_ context.Context, key, value string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[key]
	if !exists || item.value != value {
		return false, nil
	}
	delete(ms.items, key)
	return true, nil
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() {
	ms.once.Do(func() { close(ms.done) })
}

func (ms *MemoryStore) expired(item *memoryItem) bool {
	return ms.clock.Now().After(item.expireTime)
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired() {
	ticker := ms.clock.Ticker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ms.done:
			return
		case <-ticker.C:
			ms.mu.Lock()
			for key, item := range ms.items {
				if ms.expired(item) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}
