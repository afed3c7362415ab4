package artifact

import (
	"bytes"
	"encoding/csv"
	"encoding/gob"
	"fmt"
)

// columnarTable is the gob wire shape of FormatColumnar: one slice per
// column, so a reader interested in a single column never touches the rest.
type columnarTable struct {
	Columns []string
	Cells   [][]string // Cells[i] holds the values of Columns[i]
}

func encode(tbl *Table, format Format) ([]byte, error) {
	if err := validateTable(tbl); err != nil {
		return nil, err
	}
	switch format {
	case FormatColumnar:
		return encodeColumnar(tbl)
	case FormatDelimited:
		return encodeDelimited(tbl)
	default:
		return nil, fmt.Errorf("unknown artifact format %q", format)
	}
}

func decode(data []byte, format Format) (*Table, error) {
	switch format {
	case FormatColumnar:
		return decodeColumnar(data)
	case FormatDelimited:
		return decodeDelimited(data)
	default:
		return nil, fmt.Errorf("unknown artifact format %q", format)
	}
}

func encodeColumnar(tbl *Table) ([]byte, error) {
	ct := columnarTable{Columns: tbl.Columns, Cells: make([][]string, len(tbl.Columns))}
	for i := range tbl.Columns {
		col := make([]string, len(tbl.Rows))
		for j, row := range tbl.Rows {
			col[j] = row[i]
		}
		ct.Cells[i] = col
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ct); err != nil {
		return nil, fmt.Errorf("encode columnar table: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeColumnar(data []byte) (*Table, error) {
	var ct columnarTable
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&ct); err != nil {
		return nil, fmt.Errorf("decode columnar table: %w", err)
	}
	tbl := &Table{Columns: ct.Columns}
	// gob drops empty slices, so a zero-row table arrives with nil Cells.
	if len(ct.Cells) == 0 {
		return tbl, nil
	}
	if len(ct.Cells) != len(ct.Columns) {
		return nil, fmt.Errorf("columnar table has %d columns but %d cell slices", len(ct.Columns), len(ct.Cells))
	}
	rows := len(ct.Cells[0])
	for i, col := range ct.Cells {
		if len(col) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", ct.Columns[i], len(col), rows)
		}
	}
	tbl.Rows = make([][]string, rows)
	for j := 0; j < rows; j++ {
		row := make([]string, len(ct.Columns))
		for i := range ct.Columns {
			row[i] = ct.Cells[i][j]
		}
		tbl.Rows[j] = row
	}
	return tbl, nil
}

func encodeDelimited(tbl *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(tbl.Columns); err != nil {
		return nil, fmt.Errorf("encode delimited table: %w", err)
	}
	if err := w.WriteAll(tbl.Rows); err != nil {
		return nil, fmt.Errorf("encode delimited table: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeDelimited(data []byte) (*Table, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode delimited table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("decode delimited table: missing header row")
	}
	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

func extension(format Format) string {
	if format == FormatColumnar {
		return ".tab"
	}
	return ".csv"
}
