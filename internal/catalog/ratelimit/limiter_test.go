package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(shortLimit int, window time.Duration) *Limiter {
	l := New(Config{ShortLimit: shortLimit, DailyLimit: 50000})
	l.window = window
	l.margin = 5 * time.Millisecond
	return l
}

func TestAcquireWithinLimit(t *testing.T) {
	l := newTestLimiter(5, time.Minute)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	stats := l.Stats()
	assert.Equal(t, 5, stats.CallsLastWindow)
	assert.Equal(t, 5, stats.CallsToday)
	assert.Equal(t, 5, stats.ShortLimit)
	assert.Greater(t, stats.DailyResetIn, 23*time.Hour)
}

func TestAcquireEnforcesSlidingWindow(t *testing.T) {
	const limit = 2
	window := 150 * time.Millisecond
	l := newTestLimiter(limit, window)

	var admitted []time.Time
	for i := 0; i < 6; i++ {
		require.NoError(t, l.Acquire(context.Background()))
		admitted = append(admitted, time.Now())
	}

	// No window of length `window` may contain more than `limit` admissions.
	for i := limit; i < len(admitted); i++ {
		gap := admitted[i].Sub(admitted[i-limit])
		assert.GreaterOrEqual(t, gap, window, "admission %d violated the window", i)
	}
}

func TestAcquireConcurrent(t *testing.T) {
	const limit = 3
	window := 200 * time.Millisecond
	l := newTestLimiter(limit, window)

	var mu sync.Mutex
	var admitted []time.Time
	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Acquire(context.Background()))
			mu.Lock()
			admitted = append(admitted, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, admitted, 9)
	sort.Slice(admitted, func(i, j int) bool { return admitted[i].Before(admitted[j]) })
	for i := limit; i < len(admitted); i++ {
		gap := admitted[i].Sub(admitted[i-limit])
		assert.GreaterOrEqual(t, gap, window, "admission %d violated the window", i)
	}
}

func TestAcquireContextCanceled(t *testing.T) {
	l := newTestLimiter(1, 10*time.Second)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// A canceled wait must not consume a slot.
	stats := l.Stats()
	assert.Equal(t, 1, stats.CallsLastWindow)
	assert.Equal(t, 1, stats.CallsToday)
}

func TestDailyCounterResets(t *testing.T) {
	l := New(Config{ShortLimit: 100, DailyLimit: 50000})

	current := time.Now()
	l.now = func() time.Time { return current }
	l.dailyReset = current.Add(24 * time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	assert.Equal(t, 3, l.Stats().CallsToday)

	current = current.Add(24*time.Hour + time.Second)
	require.NoError(t, l.Acquire(context.Background()))

	stats := l.Stats()
	assert.Equal(t, 1, stats.CallsToday)
	assert.Greater(t, stats.DailyResetIn, 23*time.Hour)
}

func TestStatsEvictsExpiredEntries(t *testing.T) {
	l := New(Config{ShortLimit: 5, DailyLimit: 50000})

	current := time.Now()
	l.now = func() time.Time { return current }
	l.dailyReset = current.Add(24 * time.Hour)

	for i := 0; i < 4; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	assert.Equal(t, 4, l.Stats().CallsLastWindow)

	current = current.Add(2 * time.Minute)
	stats := l.Stats()
	assert.Equal(t, 0, stats.CallsLastWindow)
	assert.Equal(t, 4, stats.CallsToday)
}
