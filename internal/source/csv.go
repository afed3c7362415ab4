// Package source parses raw input files into sequences of raw field maps.
// Readers do no normalization or validation; they only get bytes into
// Record form. Cheap structural prechecks live here too, so the ingestion
// pipeline can short-circuit a file before reading all of it.
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Record is one raw row keyed by source column or element name.
type Record map[string]string

// csvSampleRows is how many data rows the precheck reads beyond the header.
const csvSampleRows = 5

// ReadCustomersCSV parses a customer CSV file into raw records.
//
// The first row is the header; every data row is returned as a map from
// header name to cell value. Extra columns are carried through and ignored
// downstream. A row with a different column count than the header is a
// parse failure for the whole file.
func ReadCustomersCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rec := make(Record, len(header))
		for i, name := range header {
			rec[name] = row[i]
		}
		records = append(records, rec)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// PrecheckCSV verifies that a header plus a small sample window parses with
// a consistent column set. Passing the precheck does not guarantee the full
// file parses; it is a cheap gate before record-level processing.
func PrecheckCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil && err != io.EOF {
		return fmt.Errorf("csv header: %w", err)
	}
	for i := 0; i < csvSampleRows; i++ {
		if _, err := r.Read(); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("csv sample row %d: %w", i+1, err)
		}
	}
	return nil
}
