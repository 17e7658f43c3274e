package quandl

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Sort orders.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Collapse frequencies.
const (
	CollapseNone      = "none"
	CollapseDaily     = "daily"
	CollapseWeekly    = "weekly"
	CollapseMonthly   = "monthly"
	CollapseQuarterly = "quarterly"
	CollapseAnnual    = "annual"
)

// SymbolQuery is the typed form of the symbol endpoint parameters. Zero
// values are omitted.
type SymbolQuery struct {
	// TrimStart and TrimEnd accept absolute or relative dates ("today-30 days").
	TrimStart      string
	TrimEnd        string
	SortOrder      string `validate:"omitempty,oneof=asc desc"`
	ExcludeHeaders bool
	Rows           int    `validate:"gte=0"`
	Column         int    `validate:"gte=0"`
	Collapse       string `validate:"omitempty,oneof=none daily weekly monthly quarterly annual"`
	Transformation string `validate:"omitempty,oneof=diff rdiff cumul normalize"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (q SymbolQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return nil
}

// Params converts q to request parameters.
func (q SymbolQuery) Params() *Params {
	p := NewParams()
	if q.TrimStart != "" {
		p.Set("trim_start", q.TrimStart)
	}
	if q.TrimEnd != "" {
		p.Set("trim_end", q.TrimEnd)
	}
	if q.SortOrder != "" {
		p.Set("sort_order", q.SortOrder)
	}
	if q.ExcludeHeaders {
		p.Set("exclude_headers", true)
	}
	if q.Rows > 0 {
		p.Set("rows", q.Rows)
	}
	if q.Column > 0 {
		p.Set("column", q.Column)
	}
	if q.Collapse != "" {
		p.Set("collapse", q.Collapse)
	}
	if q.Transformation != "" {
		p.Set("transformation", q.Transformation)
	}
	return p
}
