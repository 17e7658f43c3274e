package quandl

import (
	"encoding/json"
	"fmt"
	"time"

	"quandlapi/internal/dates"
)

// Dataset is a Quandl dataset as returned by the symbol endpoint, and as a
// search or list document without Data. List documents use the v2 names
// (DatasetCode, DatabaseCode) instead of Code and SourceCode.
type Dataset struct {
	ID          int64          `json:"id"`
	SourceName  string         `json:"source_name"`
	SourceCode  string         `json:"source_code"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	URLizeName  string         `json:"urlize_name"`
	DisplayURL  string         `json:"display_url"`
	Description string         `json:"description"`
	UpdatedAt   string         `json:"updated_at"`
	Frequency   string         `json:"frequency"`
	FromDate    string         `json:"from_date"`
	ToDate      string         `json:"to_date"`
	ColumnNames []string       `json:"column_names"`
	Private     bool           `json:"private"`
	Premium     bool           `json:"premium"`
	Type        string         `json:"type"`
	Data        [][]any        `json:"data"`
	Errors      map[string]any `json:"errors,omitempty"`

	DatasetCode         string `json:"dataset_code"`
	DatabaseCode        string `json:"database_code"`
	DatabaseID          int64  `json:"database_id"`
	RefreshedAt         string `json:"refreshed_at"`
	NewestAvailableDate string `json:"newest_available_date"`
	OldestAvailableDate string `json:"oldest_available_date"`
}

// Observation is one dated value of a column.
type Observation struct {
	Date time.Time
	// Value is meaningless when Null is set.
	Value float64
	Null  bool
}

// Column returns the index of the named column.
func (d *Dataset) Column(name string) (int, bool) {
	for i, c := range d.ColumnNames {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Values returns the observations of the named column. The first column of
// every row must hold the date.
func (d *Dataset) Values(column string) ([]Observation, error) {
	idx, ok := d.Column(column)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	out := make([]Observation, 0, len(d.Data))
	for i, row := range d.Data {
		if len(row) <= idx {
			return nil, fmt.Errorf("row %d: missing column %q", i, column)
		}
		ds, ok := row[0].(string)
		if !ok {
			return nil, fmt.Errorf("row %d: date is %T", i, row[0])
		}
		date, err := time.Parse(dates.Layout, ds)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		obs := Observation{Date: date}
		switch v := row[idx].(type) {
		case nil:
			obs.Null = true
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			obs.Value = f
		case float64:
			obs.Value = v
		default:
			return nil, fmt.Errorf("row %d: value is %T", i, v)
		}
		out = append(out, obs)
	}
	return out, nil
}

// Source is a data publisher.
type Source struct {
	ID            int64  `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	DatasetsCount int    `json:"datasets_count"`
	Host          string `json:"host"`
}

// SearchResponse is the document returned by the search endpoint.
type SearchResponse struct {
	TotalCount  int       `json:"total_count"`
	CurrentPage int       `json:"current_page"`
	PerPage     int       `json:"per_page"`
	Docs        []Dataset `json:"docs"`
	Sources     []Source  `json:"sources"`
}

// ListMeta is the pagination block of a list response. PrevPage and
// NextPage are nil on the first and last page.
type ListMeta struct {
	Query            string `json:"query"`
	PerPage          int    `json:"per_page"`
	CurrentPage      int    `json:"current_page"`
	PrevPage         *int   `json:"prev_page"`
	TotalPages       int    `json:"total_pages"`
	TotalCount       int    `json:"total_count"`
	NextPage         *int   `json:"next_page"`
	CurrentFirstItem int    `json:"current_first_item"`
	CurrentLastItem  int    `json:"current_last_item"`
}

// ListResponse is the document returned by the list endpoint.
type ListResponse struct {
	Datasets []Dataset `json:"datasets"`
	Meta     ListMeta  `json:"meta"`
}
