package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "orion-screener/internal/errors"
)

// fakeDurable is an in-memory DurableTier with togglable failures.
type fakeDurable struct {
	values   map[string][]byte
	expiries map[string]time.Time
	getErr   error
	setErr   error
	gets     int
	sets     int
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{
		values:   make(map[string][]byte),
		expiries: make(map[string]time.Time),
	}
}

func (f *fakeDurable) Get(_ context.Context, key string) ([]byte, time.Time, error) {
	f.gets++
	if f.getErr != nil {
		return nil, time.Time{}, f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return nil, time.Time{}, apperrors.ErrDataNotFound
	}
	return v, f.expiries[key], nil
}

func (f *fakeDurable) Set(_ context.Context, key string, value []byte, expiry time.Time) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	f.expiries[key] = expiry
	return nil
}

func newTestManager(capacity int, durable DurableTier) *Manager {
	return NewManager(capacity, durable, zerolog.Nop())
}

func TestGetOrFetchCachesInFastTier(t *testing.T) {
	m := newTestManager(16, nil)
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	v, err := GetOrFetch(ctx, m, "k", time.Minute, false, fetch)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = GetOrFetch(ctx, m, "k", time.Minute, false, fetch)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	assert.Equal(t, 1, calls)
}

func TestGetOrFetchRefetchesAfterExpiry(t *testing.T) {
	m := newTestManager(16, nil)
	ctx := context.Background()

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := GetOrFetch(ctx, m, "k", 5*time.Minute, false, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Still fresh just before the deadline.
	clock = clock.Add(5 * time.Minute)
	v, err = GetOrFetch(ctx, m, "k", 5*time.Minute, false, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock = clock.Add(time.Second)
	v, err = GetOrFetch(ctx, m, "k", 5*time.Minute, false, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetchPropagatesFetchError(t *testing.T) {
	m := newTestManager(16, nil)
	ctx := context.Background()

	wantErr := errors.New("upstream down")
	_, err := GetOrFetch(ctx, m, "k", time.Minute, false, func(context.Context) (string, error) {
		return "", wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, m.Len())
}

func TestGetOrFetchWritesThroughToDurable(t *testing.T) {
	durable := newFakeDurable()
	m := newTestManager(16, durable)
	ctx := context.Background()

	_, err := GetOrFetch(ctx, m, "k", time.Minute, true, func(context.Context) (string, error) {
		return "value", nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, durable.sets)

	var stored string
	require.NoError(t, json.Unmarshal(durable.values["k"], &stored))
	assert.Equal(t, "value", stored)
}

func TestGetOrFetchPromotesDurableHit(t *testing.T) {
	durable := newFakeDurable()
	m := newTestManager(16, durable)
	ctx := context.Background()

	payload, err := json.Marshal("durable-value")
	require.NoError(t, err)
	require.NoError(t, durable.Set(ctx, "k", payload, time.Now().Add(time.Hour)))

	calls := 0
	v, err := GetOrFetch(ctx, m, "k", time.Minute, true, func(context.Context) (string, error) {
		calls++
		return "fetched", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "durable-value", v)
	assert.Equal(t, 0, calls)

	// The hit was promoted: the second read never touches the durable tier.
	gets := durable.gets
	v, err = GetOrFetch(ctx, m, "k", time.Minute, true, func(context.Context) (string, error) {
		calls++
		return "fetched", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "durable-value", v)
	assert.Equal(t, 0, calls)
	assert.Equal(t, gets, durable.gets)
}

func TestGetOrFetchSkipsExpiredDurableEntry(t *testing.T) {
	durable := newFakeDurable()
	m := newTestManager(16, durable)
	ctx := context.Background()

	payload, err := json.Marshal("stale")
	require.NoError(t, err)
	require.NoError(t, durable.Set(ctx, "k", payload, time.Now().Add(-time.Hour)))

	v, err := GetOrFetch(ctx, m, "k", time.Minute, true, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestGetOrFetchDegradesOnDurableFailure(t *testing.T) {
	durable := newFakeDurable()
	durable.getErr = errors.New("disk io error")
	durable.setErr = errors.New("disk io error")
	m := newTestManager(16, durable)
	ctx := context.Background()

	calls := 0
	v, err := GetOrFetch(ctx, m, "k", time.Minute, true, func(context.Context) (string, error) {
		calls++
		return "value", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	// The fast tier still serves the value despite the broken durable tier.
	v, err = GetOrFetch(ctx, m, "k", time.Minute, true, func(context.Context) (string, error) {
		calls++
		return "value", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetchIgnoresCorruptDurablePayload(t *testing.T) {
	durable := newFakeDurable()
	m := newTestManager(16, durable)
	ctx := context.Background()

	require.NoError(t, durable.Set(ctx, "k", []byte("{not json"), time.Now().Add(time.Hour)))

	v, err := GetOrFetch(ctx, m, "k", time.Minute, true, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestLRUEviction(t *testing.T) {
	m := newTestManager(2, nil)
	ctx := context.Background()

	fetchConst := func(s string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) { return s, nil }
	}

	_, err := GetOrFetch(ctx, m, "a", time.Minute, false, fetchConst("1"))
	require.NoError(t, err)
	_, err = GetOrFetch(ctx, m, "b", time.Minute, false, fetchConst("2"))
	require.NoError(t, err)

	// Touch "a" so "b" becomes the eviction candidate.
	_, err = GetOrFetch(ctx, m, "a", time.Minute, false, fetchConst("1"))
	require.NoError(t, err)

	_, err = GetOrFetch(ctx, m, "c", time.Minute, false, fetchConst("3"))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	calls := 0
	_, err = GetOrFetch(ctx, m, "b", time.Minute, false, func(context.Context) (string, error) {
		calls++
		return "2", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "evicted key must be refetched")

	// "a" was evicted while "b" was re-inserted above.
	callsA := 0
	_, err = GetOrFetch(ctx, m, "a", time.Minute, false, func(context.Context) (string, error) {
		callsA++
		return "1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, callsA)
}

func TestConcurrentAccess(t *testing.T) {
	m := newTestManager(64, nil)
	ctx := context.Background()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%32)
				_, err := GetOrFetch(ctx, m, key, time.Minute, false, func(context.Context) (int, error) {
					return i, nil
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	assert.LessOrEqual(t, m.Len(), 64)
}
