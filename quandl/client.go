// Package quandl is a client for the Quandl time-series API. It composes
// request URLs for the symbol, search and list endpoints, downloads them
// through a direct or fallback strategy, optionally through a cache, and
// decodes JSON responses.
package quandl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"quandlapi/internal/dates"
	"quandlapi/internal/httpx"
	"quandlapi/internal/ratelimit"
)

// Default pagination of the search and list endpoints.
const (
	DefaultPage    = 1
	DefaultPerPage = 300
)

// LastRequest is a snapshot of the most recent call of a Client.
type LastRequest struct {
	URL    string
	Err    error
	Cached bool
}

// Client is a client for the Quandl API. Every call returns its own Result;
// the LastRequest snapshot is shared and reflects the latest call.
type Client struct {
	apiKey string
	format Format
	urls   URLComposer
	dates  DateNormalizer
	cache  Cache
	logger zerolog.Logger

	// transport settings, consumed by NewClient
	forceFallback bool
	skipTLSVerify bool
	directReads   bool
	fallback      bool
	preflight     bool
	directClient  HTTPClient
	httpClient    HTTPClient
	header        http.Header
	timeout       time.Duration
	userAgent     string
	ratePerSecond float64
	rateBurst     int
	minInterval   time.Duration

	transport    *Transport
	orchestrator *CacheOrchestrator
	closers      []io.Closer

	mu   sync.Mutex
	last LastRequest
}

// NewClient creates a new Quandl API client. key may be empty for
// anonymous access.
func NewClient(key string, options ...ClientOption) (*Client, error) {
	var client = &Client{
		apiKey:      key,
		format:      FormatObject,
		urls:        DefaultURLComposer(),
		dates:       dates.Normalizer{},
		logger:      zerolog.Nop(),
		directReads: true,
		fallback:    true,
		preflight:   true,
		header:      http.Header{},
		timeout:     30 * time.Second,
	}
	for _, option := range options {
		option(client)
	}
	if _, err := ParseFormat(string(client.format)); err != nil {
		return nil, err
	}

	if client.httpClient == nil {
		client.httpClient = httpx.New(httpx.Options{
			Timeout:            client.timeout,
			InsecureSkipVerify: client.skipTLSVerify,
			UserAgent:          client.userAgent,
		})
	}
	if client.directClient == nil {
		client.directClient = &http.Client{Timeout: client.timeout}
	}

	var direct, fallback Fetcher
	if client.directReads {
		direct = DirectFetcher{Client: client.directClient}
	}
	if client.fallback {
		fallback = HTTPFetcher{Client: client.httpClient, Header: client.header}
	}
	fetcher := SelectFetcher(direct, fallback, client.forceFallback)

	var probe HTTPClient
	switch f := fetcher.(type) {
	case DirectFetcher:
		probe = f.Client
	case HTTPFetcher:
		probe = f.Client
	}
	if !client.preflight {
		probe = nil
	}

	switch {
	case client.ratePerSecond > 0:
		fetcher = ratelimit.New(fetcher, client.ratePerSecond, client.rateBurst)
	case client.minInterval > 0:
		fetcher = &ratelimit.MinInterval{Next: fetcher, Interval: client.minInterval}
	}

	client.transport = &Transport{Fetcher: fetcher, Probe: probe}
	client.orchestrator = &CacheOrchestrator{Cache: client.cache, Downloader: client.transport}
	return client, nil
}

// SetAPIKey replaces the API key used by subsequent calls.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

// SetFormat replaces the output format used by subsequent calls.
func (c *Client) SetFormat(format Format) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.format = format
	return nil
}

// SetCache replaces the cache used by subsequent calls. Nil disables caching.
func (c *Client) SetCache(cache Cache) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = cache
	c.orchestrator = &CacheOrchestrator{Cache: cache, Downloader: c.transport}
}

// Last returns the snapshot of the most recent call.
func (c *Client) Last() LastRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Close releases the caches opened by NewFromConfig.
func (c *Client) Close() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Symbol returns the dataset identified by symbol, e.g. "GOOG/NASDAQ_AAPL".
func (c *Client) Symbol(ctx context.Context, symbol string, params *Params) (*Result, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrInvalidQuery)
	}
	return c.do(ctx, KindSymbol, symbol, params)
}

// SymbolQuery is Symbol with validated, typed parameters.
func (c *Client) SymbolQuery(ctx context.Context, symbol string, query SymbolQuery) (*Result, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return c.Symbol(ctx, symbol, query.Params())
}

// Search runs a full-text dataset search. CSV is not served by this
// endpoint, so a CSV client receives JSON. Non-positive page and perPage
// select the defaults.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) (*Result, error) {
	return c.do(ctx, KindSearch, "", pageParams(query, page, perPage))
}

// List returns the datasets of a source, e.g. "WIKI".
func (c *Client) List(ctx context.Context, source string, page, perPage int) (*Result, error) {
	params := pageParams("*", page, perPage)
	if source != "" {
		params.Set("source_code", source)
	}
	return c.do(ctx, KindList, "", params)
}

func pageParams(query string, page, perPage int) *Params {
	if page <= 0 {
		page = DefaultPage
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return NewParams().
		Set("per_page", perPage).
		Set("page", page).
		Set("query", query)
}

func (c *Client) do(ctx context.Context, kind Kind, symbol string, params *Params) (*Result, error) {
	c.mu.Lock()
	apiKey, format, orchestrator := c.apiKey, c.format, c.orchestrator
	c.mu.Unlock()

	res := &Result{RequestID: uuid.NewString(), Kind: kind, Format: format}
	log := c.logger.With().Str("request_id", res.RequestID).Str("kind", string(kind)).Logger()

	query, err := QueryBuilder{APIKey: apiKey, Dates: c.dates}.Build(params)
	if err != nil {
		return c.fail(res, err, false)
	}
	res.URL, err = c.urls.Compose(kind, symbol, format.Wire(kind), query)
	if err != nil {
		return c.fail(res, err, false)
	}
	c.mu.Lock()
	c.last = LastRequest{URL: res.URL}
	c.mu.Unlock()

	log = log.With().Str("url", redact(res.URL)).Logger()
	log.Debug().Msg("composed url")

	fr, err := orchestrator.Fetch(log.WithContext(ctx), res.URL)
	res.Body, res.Cached = fr.Body, fr.Cached
	if err != nil {
		log.Debug().Err(err).Msg("fetch failed")
		return c.fail(res, err, true)
	}

	if format == FormatObject && len(res.Body) > 0 {
		if err := decodeJSON(res.Body, &res.Data); err != nil {
			return c.fail(res, err, true)
		}
	}
	c.record(res)
	return res, nil
}

// fail records err. Without a composed URL the previous one is kept.
func (c *Client) fail(res *Result, err error, composed bool) (*Result, error) {
	res.Err = err
	if !composed {
		c.mu.Lock()
		c.last.Err = err
		c.last.Cached = false
		c.mu.Unlock()
		return res, err
	}
	c.record(res)
	return res, err
}

func (c *Client) record(res *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = LastRequest{URL: res.URL, Err: res.Err, Cached: res.Cached}
}
