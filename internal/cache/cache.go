// Package cache provides a generic TTL LRU cache and a manager that sweeps
// expired entries in the background.
package cache

import (
	"sync"
	"time"

	applog "tripdesk/internal/log"
)

// Cache is the read-through contract used by the repository decorators.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Clear()
	Size() int
}

// Cleaner is implemented by caches with expiring entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically sweeps every registered cache.
type Manager struct {
	mu       sync.Mutex
	caches   []Cleaner
	logger   *applog.Logger
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

func NewManager(logger *applog.Logger) *Manager {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Manager{
		logger: logger.WithComponent(applog.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds a cache to the sweep.
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// StartCleanup sweeps every interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()
	go m.cleanup(interval)
}

// Sweep cleans every registered cache once and returns the number of
// evicted entries.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "removed", n)
			}
		case <-m.stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.done
		}
	})
}
