package ratelimit_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"quandlapi/internal/ratelimit"
)

type countingFetcher struct{ calls atomic.Int32 }

func (f *countingFetcher) Fetch(context.Context, string) ([]byte, error) {
	f.calls.Add(1)
	return []byte("ok"), nil
}

func TestLimited_BurstThenWait(t *testing.T) {
	t.Parallel()

	// Arrange: one token, refilled very slowly.
	next := &countingFetcher{}
	l := &ratelimit.Limited{Next: next, Limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}

	// Act: the first call spends the burst.
	body, err := l.Fetch(t.Context(), "u")
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))

	// Assert: the second call cannot get a token before the deadline.
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Fetch(ctx, "u")
	require.Error(t, err)
	require.EqualValues(t, 1, next.calls.Load())
}

func TestNew_DefaultsBurst(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(&countingFetcher{}, 1, 0)
	require.Equal(t, 1, l.Limiter.Burst())
	require.InDelta(t, 1.0, float64(l.Limiter.Limit()), 0.0001)
}

func TestMinInterval_CanceledWhileWaiting(t *testing.T) {
	t.Parallel()

	next := &countingFetcher{}
	m := &ratelimit.MinInterval{Next: next, Interval: time.Hour}

	_, err := m.Fetch(t.Context(), "u")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = m.Fetch(ctx, "u")
	require.ErrorIs(t, err, context.Canceled)
	require.EqualValues(t, 1, next.calls.Load())
}

func TestMinInterval_ZeroIntervalPassesThrough(t *testing.T) {
	t.Parallel()

	next := &countingFetcher{}
	m := &ratelimit.MinInterval{Next: next}
	for range 3 {
		_, err := m.Fetch(t.Context(), "u")
		require.NoError(t, err)
	}
	require.EqualValues(t, 3, next.calls.Load())
}

// stampingFetcher records when each call reached it.
type stampingFetcher struct {
	mu     sync.Mutex
	starts []time.Time
}

func (f *stampingFetcher) Fetch(context.Context, string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, time.Now())
	return nil, nil
}

func TestMinInterval_ConcurrentCallersAreSpaced(t *testing.T) {
	t.Parallel()

	// Arrange
	const interval = 40 * time.Millisecond
	next := &stampingFetcher{}
	m := &ratelimit.MinInterval{Next: next, Interval: interval}

	// Act: three callers arrive together.
	var wg sync.WaitGroup
	for range 3 {
		wg.Go(func() {
			_, err := m.Fetch(context.Background(), "u")
			require.NoError(t, err)
		})
	}
	wg.Wait()

	// Assert: no two calls started closer than the interval.
	starts := slices.SortedFunc(slices.Values(next.starts), time.Time.Compare)
	require.Len(t, starts, 3)
	for i := 1; i < len(starts); i++ {
		require.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), interval-5*time.Millisecond)
	}
}
