package availability

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/meister-web/internal/domain/calendar"
)

func TestKeyFor(t *testing.T) {
	k := KeyFor("2025-06-18", "", 30)
	assert.Equal(t, calendar.Date("2025-06-01"), k.Month)
	assert.Equal(t, "2025-06-01|custom|30", k.String())
	assert.NotEqual(t, KeyFor("2025-06-01", "haircut", 30), KeyFor("2025-06-01", "hair_beard", 45))
}

func TestEnsureMonthLoadedIsIdempotentWhilePending(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context, key Key) (map[calendar.Date]int, error) {
		calls.Add(1)
		<-release
		return map[calendar.Date]int{"2025-06-10": 3}, nil
	}

	c := NewCache(nil)
	key := KeyFor("2025-06-01", "haircut", 30)

	assert.True(t, c.EnsureMonthLoaded(context.Background(), key, fetch))
	assert.False(t, c.EnsureMonthLoaded(context.Background(), key, fetch))
	assert.Equal(t, StatusPending, c.Get(key).Status)
	assert.True(t, c.Loading(key))

	close(release)
	entry := c.Await(context.Background(), key)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StatusLoaded, entry.Status)
	assert.Equal(t, 3, entry.FreeOn("2025-06-10"))
	assert.Equal(t, 0, entry.FreeOn("2025-06-11"))
	assert.False(t, c.EnsureMonthLoaded(context.Background(), key, fetch), "loaded keys are not refetched")
}

func TestFailedFetchIsSticky(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context, key Key) (map[calendar.Date]int, error) {
		calls.Add(1)
		return nil, errors.New("network down")
	}

	var observed []Status
	c := NewCache(func(_ Key, s Status) { observed = append(observed, s) })
	key := KeyFor("2025-06-01", "haircut", 30)

	c.EnsureMonthLoaded(context.Background(), key, fetch)
	assert.Equal(t, StatusFailed, c.Await(context.Background(), key).Status)
	assert.False(t, c.EnsureMonthLoaded(context.Background(), key, fetch))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []Status{StatusFailed}, observed)
}

func TestResetDropsEverything(t *testing.T) {
	fetch := func(ctx context.Context, key Key) (map[calendar.Date]int, error) {
		return map[calendar.Date]int{"2025-06-10": 3}, nil
	}
	c := NewCache(nil)
	keys := []Key{KeyFor("2025-06-01", "haircut", 30), KeyFor("2025-07-01", "haircut", 30)}
	for _, k := range keys {
		c.EnsureMonthLoaded(context.Background(), k, fetch)
		require.Equal(t, StatusLoaded, c.Await(context.Background(), k).Status)
	}

	c.Reset()
	for _, k := range keys {
		assert.Equal(t, StatusUnknown, c.Get(k).Status)
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	key := KeyFor("2025-06-01", "haircut", 30)
	releaseOld := make(chan struct{})

	c := NewCache(nil)
	c.EnsureMonthLoaded(context.Background(), key, func(ctx context.Context, _ Key) (map[calendar.Date]int, error) {
		<-releaseOld
		return map[calendar.Date]int{"2025-06-10": 3}, nil
	})

	c.Reset()
	c.EnsureMonthLoaded(context.Background(), key, func(ctx context.Context, _ Key) (map[calendar.Date]int, error) {
		return map[calendar.Date]int{"2025-06-10": 1}, nil
	})
	require.Equal(t, 1, c.Await(context.Background(), key).FreeOn("2025-06-10"))

	close(releaseOld)
	assert.Never(t, func() bool {
		return c.Get(key).FreeOn("2025-06-10") == 3
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestAwaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	c := NewCache(nil)
	key := KeyFor("2025-06-01", "haircut", 30)
	c.EnsureMonthLoaded(context.Background(), key, func(ctx context.Context, _ Key) (map[calendar.Date]int, error) {
		<-block
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Equal(t, StatusPending, c.Await(ctx, key).Status)
}
