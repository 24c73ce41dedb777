package review

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Table is the canonical raw-table shape handed to the normalizer: a header
// row plus one string map per data row, keyed by the original header names.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// ReadTable parses a CSV file into a Table. Short rows are padded with empty
// cells; parsing is otherwise strict so a truncated upload fails loudly.
func ReadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return readTable(f)
}

func readTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Table{}, fmt.Errorf("read table header: %w", err)
	}

	t := Table{Columns: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read table row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
