package quandl_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"quandlapi/quandl"
)

func TestSymbolQuery_Params(t *testing.T) {
	t.Parallel()

	q := quandl.SymbolQuery{
		TrimStart:      "2014-01-01",
		TrimEnd:        "today",
		SortOrder:      quandl.SortAsc,
		Rows:           5,
		Collapse:       quandl.CollapseMonthly,
		Transformation: "rdiff",
	}
	require.NoError(t, q.Validate())

	p := q.Params()
	require.Equal(t, []string{"trim_start", "trim_end", "sort_order", "rows", "collapse", "transformation"}, p.Keys())
	require.Equal(t, "trim_start=2014-01-01&trim_end=today&sort_order=asc&rows=5&collapse=monthly&transformation=rdiff", p.Encode())
}

func TestSymbolQuery_Zero(t *testing.T) {
	t.Parallel()

	var q quandl.SymbolQuery
	require.NoError(t, q.Validate())
	require.Equal(t, 0, q.Params().Len())
}

func TestSymbolQuery_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]quandl.SymbolQuery{
		"sort order":     {SortOrder: "up"},
		"negative rows":  {Rows: -3},
		"negative col":   {Column: -1},
		"collapse":       {Collapse: "hourly"},
		"transformation": {Transformation: "log"},
	}
	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, q.Validate(), quandl.ErrInvalidQuery)
		})
	}
}
