// Package cache provides a two-tier cache-aside store: a capacity-bounded
// in-process tier with TTL expiry and LRU eviction, backed by an optional
// durable tier.
package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "orion-screener/internal/errors"
)

// DefaultCapacity bounds the fast tier when no capacity is configured.
const DefaultCapacity = 1024

// DurableTier is an externally addressable key -> (value, expiry) store.
// Get returns apperrors.ErrDataNotFound for absent keys.
type DurableTier interface {
	Get(ctx context.Context, key string) (value []byte, expiry time.Time, err error)
	Set(ctx context.Context, key string, value []byte, expiry time.Time) error
}

// fastEntry is one fast-tier cache entry. An entry past its expiry is
// logically dead: lookups treat it as absent.
type fastEntry struct {
	key    string
	value  interface{}
	expiry time.Time
}

// Manager is the two-tier cache manager. The fast tier tolerates
// concurrent readers and writers; durable-tier I/O failures degrade
// silently to fast-tier-only operation.
type Manager struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	capacity int
	durable  DurableTier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewManager creates a cache manager. durable may be nil for fast-tier-
// only operation.
func NewManager(capacity int, durable DurableTier, logger zerolog.Logger) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
		durable:  durable,
		logger:   logger,
		now:      time.Now,
	}
}

// Len returns the number of live entries in the fast tier.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// lookupFast returns the fast-tier value for key. Expired entries are
// evicted and reported as misses.
func (m *Manager) lookupFast(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*fastEntry)
	if m.now().After(entry.expiry) {
		m.order.Remove(elem)
		delete(m.entries, key)
		return nil, false
	}

	m.order.MoveToFront(elem)
	return entry.value, true
}

// storeFast inserts or replaces the fast-tier entry for key, evicting
// the least recently used entries once capacity is reached.
func (m *Manager) storeFast(key string, value interface{}, expiry time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[key]; ok {
		entry := elem.Value.(*fastEntry)
		entry.value = value
		entry.expiry = expiry
		m.order.MoveToFront(elem)
		return
	}

	elem := m.order.PushFront(&fastEntry{key: key, value: value, expiry: expiry})
	m.entries[key] = elem

	for len(m.entries) > m.capacity {
		oldest := m.order.Back()
		if oldest == nil {
			break
		}
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*fastEntry).key)
	}
}

// GetOrFetch resolves the value for key: fast tier, then durable tier
// when useDurable is set, then the fetch function. A fetched value is
// stored in the fast tier unconditionally and in the durable tier when
// useDurable is set, both stamped with now+ttl. Concurrent callers
// racing on the same key during a miss may each invoke fetch: fetches
// are assumed idempotent, so no request coalescing is attempted.
func GetOrFetch[T any](ctx context.Context, m *Manager, key string, ttl time.Duration, useDurable bool, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := m.lookupFast(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		// Type mismatch under a reused key: fall through to refetch.
	}

	if useDurable && m.durable != nil {
		if v, ok := lookupDurable[T](ctx, m, key); ok {
			return v, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	expiry := m.now().Add(ttl)
	m.storeFast(key, value, expiry)

	if useDurable && m.durable != nil {
		payload, err := json.Marshal(value)
		if err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Durable cache marshal failed")
		} else if err := m.durable.Set(ctx, key, payload, expiry); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Durable cache write failed, continuing fast-tier-only")
		}
	}

	return value, nil
}

// lookupDurable reads key from the durable tier. Expired entries and
// any I/O or decode error count as misses; errors are logged and never
// fail the lookup.
func lookupDurable[T any](ctx context.Context, m *Manager, key string) (T, bool) {
	var zero T

	payload, expiry, err := m.durable.Get(ctx, key)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrDataNotFound) {
			m.logger.Warn().Err(err).Str("key", key).Msg("Durable cache read failed, continuing fast-tier-only")
		}
		return zero, false
	}
	if m.now().After(expiry) {
		return zero, false
	}

	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("Durable cache decode failed")
		return zero, false
	}

	// Promote to the fast tier with the remaining lifetime.
	m.storeFast(key, value, expiry)
	return value, true
}
