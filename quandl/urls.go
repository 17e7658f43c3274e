package quandl

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the root of the Quandl API.
const DefaultBaseURL = "https://www.quandl.com/api"

// Format is an output format. FormatObject is requested as JSON and decoded
// into Result.Data.
type Format string

const (
	FormatObject Format = "object"
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatXML    Format = "xml"
)

// ParseFormat validates s as an output format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatObject, FormatJSON, FormatCSV, FormatXML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// Wire returns the format requested from Quandl for an endpoint kind.
// Search does not serve CSV.
func (f Format) Wire(kind Kind) Format {
	if f == FormatObject || (f == FormatCSV && kind == KindSearch) {
		return FormatJSON
	}
	return f
}

// Kind is an endpoint kind.
type Kind string

const (
	// KindSymbol fetches a dataset by code.
	KindSymbol Kind = "symbol"
	// KindSearch runs a full-text dataset search.
	KindSearch Kind = "search"
	// KindList lists the datasets of a source.
	KindList Kind = "list"
)

var urlTemplates = map[Kind]string{
	KindSymbol: "%s/%s/datasets/%s.%s?%s",
	KindSearch: "%s/%s/datasets.%s?%s",
	KindList:   "%s/%s/datasets.%s?%s",
}

// URLComposer fills the per-kind URL templates.
type URLComposer struct {
	BaseURL string
	// Version is used by symbol and search.
	Version string
	// ListVersion is used by list.
	ListVersion string
}

// DefaultURLComposer returns the composer for the public Quandl API.
func DefaultURLComposer() URLComposer {
	return URLComposer{BaseURL: DefaultBaseURL, Version: "v1", ListVersion: "v2"}
}

// Compose builds the request URL. symbol is only used by KindSymbol. Stray
// '?' and '&' left by an empty query are trimmed.
func (c URLComposer) Compose(kind Kind, symbol string, format Format, query string) (string, error) {
	template, ok := urlTemplates[kind]
	if !ok {
		return "", fmt.Errorf("unknown endpoint kind %q", kind)
	}

	base := strings.TrimRight(c.BaseURL, "/")
	var raw string
	switch kind {
	case KindSymbol:
		raw = fmt.Sprintf(template, base, c.Version, escapeSymbol(symbol), format, query)
	case KindList:
		raw = fmt.Sprintf(template, base, c.ListVersion, format, query)
	default:
		raw = fmt.Sprintf(template, base, c.Version, format, query)
	}
	return strings.Trim(raw, "?&"), nil
}

// escapeSymbol escapes each segment of a dataset code, e.g. GOOG/NASDAQ_AAPL.
func escapeSymbol(symbol string) string {
	parts := strings.Split(symbol, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// redact hides the auth token of a URL for logs and error messages.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if !q.Has("auth_token") {
		return raw
	}
	q.Set("auth_token", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
