// Package ratelimit gates download strategies.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Fetcher returns the body behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Limited gates calls through a token bucket.
type Limited struct {
	Next    Fetcher
	Limiter *rate.Limiter
}

// New allows perSecond requests per second with the given burst.
func New(next Fetcher, perSecond float64, burst int) *Limited {
	if burst <= 0 {
		burst = 1
	}
	return &Limited{Next: next, Limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *Limited) Fetch(ctx context.Context, url string) ([]byte, error) {
	if l.Limiter != nil {
		if err := l.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return l.Next.Fetch(ctx, url)
}

// MinInterval spaces the starts of calls at least Interval apart. Each call
// reserves its slot before waiting, so concurrent callers queue up instead
// of passing together. A call canceled while waiting keeps its slot.
type MinInterval struct {
	Next     Fetcher
	Interval time.Duration

	mu   sync.Mutex
	next time.Time // earliest start of the next call
}

func (m *MinInterval) Fetch(ctx context.Context, url string) ([]byte, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		slot := time.Now()
		if m.next.After(slot) {
			slot = m.next
		}
		m.next = slot.Add(m.Interval)
		m.mu.Unlock()

		if wait := time.Until(slot); wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
			}
		}
	}
	return m.Next.Fetch(ctx, url)
}
