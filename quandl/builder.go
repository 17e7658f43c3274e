package quandl

import (
	"fmt"
	"time"

	"quandlapi/internal/dates"
)

// DateNormalizer resolves date expressions to YYYY-MM-DD.
type DateNormalizer interface {
	Normalize(expr string) (string, error)
}

// dateParams are normalized before encoding.
var dateParams = []string{"trim_start", "trim_end"}

// QueryBuilder serializes request parameters.
type QueryBuilder struct {
	// APIKey is sent as auth_token when set.
	APIKey string
	// Dates defaults to a wall clock normalizer.
	Dates DateNormalizer
}

// Build returns the encoded query string. The input is not modified. An
// empty set, once the token is injected, yields an empty string.
func (b QueryBuilder) Build(params *Params) (string, error) {
	p := params.Clone()
	if b.APIKey != "" {
		p.Set("auth_token", b.APIKey)
	}
	if p.Len() == 0 {
		return "", nil
	}

	normalizer := b.Dates
	if normalizer == nil {
		normalizer = dates.Normalizer{}
	}
	for _, key := range dateParams {
		v, ok := p.Get(key)
		if !ok || v == nil {
			continue
		}
		if t, ok := v.(time.Time); ok {
			p.Set(key, t.Format(dates.Layout))
			continue
		}
		d, err := normalizer.Normalize(formatValue(v))
		if err != nil {
			return "", fmt.Errorf("%s: %w", key, err)
		}
		p.Set(key, d)
	}
	return p.Encode(), nil
}
