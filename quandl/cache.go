package quandl

import "context"

// Cache stores downloaded documents keyed by request URL. Implementations
// live in package cache.
//
//go:generate mockgen -package=quandl_test -destination=mock_cache_test.go -source=cache.go
type Cache interface {
	// Get returns the cached document and whether it was found.
	Get(ctx context.Context, url string) ([]byte, bool, error)
	// Set stores data under url.
	Set(ctx context.Context, url string, data []byte) error
}

// CacheAction is the first argument of a CacheHook.
type CacheAction string

const (
	CacheGet CacheAction = "get"
	CacheSet CacheAction = "set"
)

// CacheHook adapts a single callback to Cache. On CacheGet it returns the
// cached document or nothing; on CacheSet it stores data and its return
// value is ignored.
type CacheHook func(action CacheAction, url string, data []byte) []byte

func (h CacheHook) Get(_ context.Context, url string) ([]byte, bool, error) {
	data := h(CacheGet, url, nil)
	return data, len(data) > 0, nil
}

func (h CacheHook) Set(_ context.Context, url string, data []byte) error {
	h(CacheSet, url, data)
	return nil
}
