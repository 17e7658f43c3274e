package quandl

import (
	"errors"
	"fmt"

	"quandlapi/internal/dates"
)

var (
	// ErrInvalidDateExpression is returned when trim_start or trim_end cannot be resolved.
	ErrInvalidDateExpression = dates.ErrInvalidExpression
	// ErrNotFound is returned when the pre-flight probe answers 404.
	ErrNotFound = errors.New("URL not found or invalid URL")
	// ErrTransportUnavailable is returned when no download strategy is usable.
	ErrTransportUnavailable = errors.New("no usable transport: enable direct reads or configure an HTTP client")
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("transport error")
	// ErrCacheMissDownload is returned when a cache is configured, the URL was
	// not cached and the download failed as well.
	ErrCacheMissDownload = errors.New("cache miss and download failed")
	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrInvalidQuery is returned when request parameters fail validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnexpectedContent is returned by decoding helpers called on a body of the wrong format.
	ErrUnexpectedContent = errors.New("unexpected content")
)

// TransportError describes a failed fetch.
type TransportError struct {
	URL        string
	StatusCode int
	// Body holds the start of the response body for non-2xx answers.
	Body string
	Err  error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("fetching %s: %v", redact(e.URL), e.Err)
	case e.Body != "":
		return fmt.Sprintf("fetching %s: unexpected status code: %d: %s", redact(e.URL), e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("fetching %s: unexpected status code: %d", redact(e.URL), e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
