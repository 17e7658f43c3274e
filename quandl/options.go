package quandl

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"quandlapi/internal/dates"
)

// ClientOption is a configuration option for the Quandl client.
type ClientOption func(*Client)

// WithFormat sets the output format. Defaults to FormatObject.
func WithFormat(format Format) ClientOption {
	return func(c *Client) {
		c.format = format
	}
}

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.urls.BaseURL = baseURL
	}
}

// WithAPIVersions sets the version path of the symbol and search endpoints
// and of the list endpoint.
func WithAPIVersions(version, listVersion string) ClientOption {
	return func(c *Client) {
		c.urls.Version = version
		c.urls.ListVersion = listVersion
	}
}

// WithCache enables response caching.
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithCacheHook enables response caching through a single callback.
func WithCacheHook(hook CacheHook) ClientOption {
	return WithCache(hook)
}

// WithForceFallback always uses the fallback HTTP client.
func WithForceFallback(force bool) ClientOption {
	return func(c *Client) {
		c.forceFallback = force
	}
}

// WithSkipTLSVerify disables certificate checks of the fallback HTTP client.
// It has no effect when WithHTTPClient is used.
func WithSkipTLSVerify(skip bool) ClientOption {
	return func(c *Client) {
		c.skipTLSVerify = skip
	}
}

// WithDirectReads enables or disables the direct download strategy.
func WithDirectReads(enabled bool) ClientOption {
	return func(c *Client) {
		c.directReads = enabled
	}
}

// WithFallback enables or disables the fallback download strategy.
func WithFallback(enabled bool) ClientOption {
	return func(c *Client) {
		c.fallback = enabled
	}
}

// WithDirectClient sets the client of the direct download strategy.
func WithDirectClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.directClient = httpClient
	}
}

// WithHTTPClient sets the client of the fallback download strategy.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers sent by the fallback strategy.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the user agent of the fallback strategy.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithPreflight enables or disables the HEAD probe sent before each download.
func WithPreflight(enabled bool) ClientOption {
	return func(c *Client) {
		c.preflight = enabled
	}
}

// WithRateLimit caps downloads to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.ratePerSecond = perSecond
		c.rateBurst = burst
	}
}

// WithMinInterval enforces a delay between downloads. Ignored when a rate
// limit is set.
func WithMinInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		c.minInterval = interval
	}
}

// WithLogger sets the logger. Defaults to a disabled logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock pins the reference time of relative trim dates.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.dates = dates.Normalizer{Now: now}
	}
}

// WithDateNormalizer replaces the trim date resolver.
func WithDateNormalizer(normalizer DateNormalizer) ClientOption {
	return func(c *Client) {
		c.dates = normalizer
	}
}
