package quandl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=quandl_test -destination=mock_transport_test.go -source=transport.go
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher is a download strategy: it returns the body behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// maxErrorBody caps the part of a non-2xx body kept in a TransportError.
const maxErrorBody = 2 << 10

// DirectFetcher is the primary strategy: a plain GET through the default
// HTTP machinery of the process.
type DirectFetcher struct {
	// Client defaults to http.DefaultClient.
	Client HTTPClient
}

func (f DirectFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	return get(ctx, client, url, nil)
}

// HTTPFetcher is the fallback strategy: a fully configured client, see
// internal/httpx, which also carries the skip TLS verification switch.
type HTTPFetcher struct {
	Client HTTPClient
	// Header is added to every request.
	Header http.Header
}

func (f HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.Client == nil {
		return nil, ErrTransportUnavailable
	}
	return get(ctx, f.Client, url, f.Header)
}

type unavailableFetcher struct{}

func (unavailableFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, ErrTransportUnavailable
}

// SelectFetcher picks the download strategy once, at construction time.
// The direct strategy wins unless it is missing or forceFallback is set;
// without a fallback every fetch fails with ErrTransportUnavailable.
func SelectFetcher(direct, fallback Fetcher, forceFallback bool) Fetcher {
	if direct != nil && !forceFallback {
		return direct
	}
	if fallback != nil {
		return fallback
	}
	return unavailableFetcher{}
}

func get(ctx context.Context, client HTTPClient, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("performing request: %w", err)}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{URL: url, StatusCode: res.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &TransportError{URL: url, StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// Transport downloads a URL after a HEAD pre-flight check.
type Transport struct {
	Fetcher Fetcher
	// Probe sends the pre-flight request. Nil skips the check.
	Probe HTTPClient
}

// Download returns the body behind url. A 404 from the probe fails with
// ErrNotFound without fetching the body.
func (t *Transport) Download(ctx context.Context, url string) ([]byte, error) {
	if err := t.preflight(ctx, url); err != nil {
		return nil, err
	}
	fetcher := t.Fetcher
	if fetcher == nil {
		fetcher = unavailableFetcher{}
	}
	return fetcher.Fetch(ctx, url)
}

func (t *Transport) preflight(ctx context.Context, url string) error {
	if t.Probe == nil {
		return nil
	}
	log := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, http.NoBody)
	if err != nil {
		return &TransportError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	res, err := t.Probe.Do(req)
	if err != nil {
		// The body fetch reports the real failure.
		log.Warn().Err(err).Msg("pre-flight probe failed")
		return nil
	}
	if res.Body != nil {
		res.Body.Close()
	}
	log.Debug().Int("status", res.StatusCode).Msg("pre-flight probe")
	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, redact(url))
	}
	return nil
}
