// Package cache holds the stats caches: an in-process LRU and a Redis-backed store,
// both exposed through GroupStore so a user's entries can be dropped together.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is a keyed in-process cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// GroupStore keeps opaque values under (group, key). Dropping a group removes all of its keys
// and advances the group's generation. Set stores a value only while the group is still at the
// generation the caller read before computing it, so a value computed before a drop is never
// stored after it. Implementations treat backend failures as misses.
type GroupStore interface {
	Get(ctx context.Context, group, key string) ([]byte, bool)
	// Generation returns the group's current generation; ok is false when it cannot be read
	// and nothing should be stored.
	Generation(ctx context.Context, group string) (gen uint64, ok bool)
	Set(ctx context.Context, group, key string, gen uint64, value []byte)
	DropGroup(ctx context.Context, group string)
}

// Cleaner is implemented by caches that need periodic expiry sweeps.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps registered caches on an interval until stopped.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register must be called before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			for _, c := range m.caches {
				removed += c.CleanExpired()
			}
			if removed > 0 {
				slog.Debug("Expired cache entries removed", "component", "cache", "count", removed)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) Stop() {
	if !m.started {
		return
	}
	m.started = false
	close(m.stopCleanup)
	<-m.cleanupDone
}
