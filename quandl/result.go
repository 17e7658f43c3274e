package quandl

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// Result is the outcome of one client call.
type Result struct {
	// RequestID correlates the call with log lines.
	RequestID string
	Kind      Kind
	// URL is the composed request URL, set even when the call failed.
	URL string
	// Format is the configured output format, not the wire format.
	Format Format
	Body   []byte
	// Cached is set when Body was served by the cache.
	Cached bool
	Err    error
	// Data holds the decoded body when Format is FormatObject. Numbers
	// decode to json.Number.
	Data any
}

// Text returns the raw body.
func (r *Result) Text() string { return string(r.Body) }

// Decode unmarshals a JSON body into v.
func (r *Result) Decode(v any) error {
	if w := r.Format.Wire(r.Kind); w != FormatJSON {
		return fmt.Errorf("%w: body is %s, not json", ErrUnexpectedContent, w)
	}
	return decodeJSON(r.Body, v)
}

// Dataset decodes a symbol response.
func (r *Result) Dataset() (*Dataset, error) {
	var d Dataset
	if err := r.Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Search decodes a search response.
func (r *Result) Search() (*SearchResponse, error) {
	var s SearchResponse
	if err := r.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List decodes a list response.
func (r *Result) List() (*ListResponse, error) {
	var l ListResponse
	if err := r.Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Records parses a CSV body.
func (r *Result) Records() ([][]string, error) {
	if w := r.Format.Wire(r.Kind); w != FormatCSV {
		return nil, fmt.Errorf("%w: body is %s, not csv", ErrUnexpectedContent, w)
	}
	records, err := csv.NewReader(bytes.NewReader(r.Body)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return records, nil
}

func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
