package quandl

import (
	"fmt"
	"io"
	"time"

	"quandlapi/cache"
	"quandlapi/config"
)

// NewFromConfig creates a client from loaded settings, opening the configured
// cache backend. options are applied after the settings. Call Close to
// release the cache.
func NewFromConfig(cfg config.Config, options ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	opts := []ClientOption{
		WithFormat(format),
		WithBaseURL(cfg.BaseURL),
		WithAPIVersions(cfg.APIVersion, cfg.ListAPIVersion),
		WithForceFallback(cfg.Transport.ForceFallback),
		WithSkipTLSVerify(cfg.Transport.SkipTLSVerify),
		WithPreflight(!cfg.Transport.DisablePreflight),
		WithUserAgent(cfg.Transport.UserAgent),
	}
	if cfg.Transport.TimeoutSec > 0 {
		opts = append(opts, WithTimeout(time.Duration(cfg.Transport.TimeoutSec)*time.Second))
	}
	if cfg.RateLimit.MaxRequestsPerMinute > 0 {
		opts = append(opts, WithRateLimit(float64(cfg.RateLimit.MaxRequestsPerMinute)/60.0, cfg.RateLimit.Burst))
	} else if cfg.RateLimit.MinRequestIntervalSec > 0 {
		opts = append(opts, WithMinInterval(time.Duration(cfg.RateLimit.MinRequestIntervalSec)*time.Second))
	}

	store, closer, err := openCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, WithCache(store))
	}

	client, err := NewClient(cfg.APIKey, append(opts, options...)...)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	if closer != nil {
		client.closers = append(client.closers, closer)
	}
	return client, nil
}

func openCache(cfg config.Cache) (Cache, io.Closer, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Kind {
	case "", "none":
		return nil, nil, nil
	case "memory":
		return cache.NewMemory(ttl, cfg.MaxItems), nil, nil
	case "file":
		f, err := cache.NewFile(cfg.Path, ttl)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	case "badger":
		b, err := cache.OpenBadger(cfg.Path, ttl)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case "sqlite":
		s, err := cache.OpenSQLite(cfg.Path, ttl)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown cache kind %q", cfg.Kind)
}
