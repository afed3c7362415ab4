// Package artifact persists tabular exports (KPI results, run summaries)
// through a storage port with two variants: a local directory and a remote
// object store. Which one backs a process is explicit configuration, never
// inferred.
package artifact

import (
	"context"
	"fmt"
)

// Format selects the on-disk encoding of a table.
type Format string

const (
	// FormatColumnar stores the table column-major in a binary encoding,
	// suited to re-loading for analysis.
	FormatColumnar Format = "tabular-columnar"

	// FormatDelimited stores the table as delimited text with a header
	// row, suited to spreadsheets and downstream pipelines.
	FormatDelimited Format = "delimited-text"
)

// ParseFormat maps a config or flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatColumnar, FormatDelimited:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown artifact format %q", s)
	}
}

// Table is the row-major tabular payload the store persists. Every row must
// have len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Store is the artifact storage port. Save returns a locator the caller can
// log or display: a filesystem path for the local variant, a URL for the
// remote one.
type Store interface {
	Save(ctx context.Context, key string, tbl *Table, format Format) (string, error)
	Load(ctx context.Context, key string, format Format) (*Table, error)
	Exists(ctx context.Context, key string) (bool, error)
}

func validateTable(tbl *Table) error {
	for i, row := range tbl.Rows {
		if len(row) != len(tbl.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(tbl.Columns))
		}
	}
	return nil
}
