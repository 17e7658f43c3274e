package quandl

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Downloader is the uncached download path, usually a *Transport.
//
//go:generate mockgen -package=quandl_test -destination=mock_downloader_test.go -source=orchestrator.go
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// FetchResult is the outcome of one orchestrated fetch.
type FetchResult struct {
	Body   []byte
	Cached bool
	Err    error
}

// CacheOrchestrator puts an optional Cache in front of a Downloader.
type CacheOrchestrator struct {
	Cache      Cache
	Downloader Downloader
	// Timeout bounds a shared download. Zero leaves it to the transport.
	Timeout time.Duration

	// coalesce concurrent misses per URL
	sf singleflight.Group
}

// Fetch serves url from the cache when possible, otherwise downloads it and
// populates the cache. With a cache configured, a miss followed by a failed
// download returns ErrCacheMissDownload.
func (o *CacheOrchestrator) Fetch(ctx context.Context, url string) (FetchResult, error) {
	if o.Cache == nil {
		body, err := o.Downloader.Download(ctx, url)
		return FetchResult{Body: body, Err: err}, err
	}
	log := zerolog.Ctx(ctx)

	data, ok, err := o.Cache.Get(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("cache get failed, treating as miss")
		ok = false
	}
	if ok {
		log.Debug().Bool("cached", true).Msg("cache hit")
		return FetchResult{Body: data, Cached: true}, nil
	}
	log.Debug().Bool("cached", false).Msg("cache miss")

	// The shared download outlives any single caller; each caller only
	// stops waiting for it when its own context ends.
	ch := o.sf.DoChan(url, func() (any, error) {
		dctx := context.WithoutCancel(ctx)
		if o.Timeout > 0 {
			var cancel context.CancelFunc
			dctx, cancel = context.WithTimeout(dctx, o.Timeout)
			defer cancel()
		}
		body, err := o.Downloader.Download(dctx, url)
		if err != nil {
			return nil, err
		}
		if err := o.Cache.Set(dctx, url, body); err != nil {
			log.Warn().Err(err).Msg("cache set failed")
		}
		return body, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		res.Err = ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		err := fmt.Errorf("%w: %w", ErrCacheMissDownload, res.Err)
		return FetchResult{Err: err}, err
	}
	if res.Shared {
		log.Debug().Msg("joined in-flight download")
	}
	body, _ := res.Val.([]byte)
	return FetchResult{Body: body}, nil
}
