package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
)

// ReadCSV loads a ping table with a header row. Dropped columns are removed
// and leading columns moved to the front before the schema is classified.
func ReadCSV(r io.Reader, opts SchemaOptions) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = false

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("failed to read csv: missing header")
	}

	header, rows := reorder(records[0], records[1:], opts)

	schema, err := NewSchema(header, rows, opts)
	if err != nil {
		return nil, err
	}

	measurements := make([]Measurement, 0, len(rows))
	for i, row := range rows {
		m, err := schema.Decode(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		measurements = append(measurements, m)
	}

	return New(schema, measurements), nil
}

// reorder applies DropColumns and LeadingColumns to the header and rows.
func reorder(header []string, rows [][]string, opts SchemaOptions) ([]string, [][]string) {
	var order []int
	for _, name := range opts.LeadingColumns {
		if i := slices.Index(header, name); i >= 0 && !slices.Contains(opts.DropColumns, name) {
			order = append(order, i)
		}
	}
	for i, name := range header {
		if slices.Contains(order, i) || slices.Contains(opts.DropColumns, name) {
			continue
		}
		order = append(order, i)
	}

	newHeader := make([]string, len(order))
	for j, i := range order {
		newHeader[j] = header[i]
	}

	newRows := make([][]string, len(rows))
	for r, row := range rows {
		out := make([]string, len(order))
		for j, i := range order {
			if i < len(row) {
				out[j] = row[i]
			}
		}
		newRows[r] = out
	}
	return newHeader, newRows
}

// WriteCSV writes the dataset with a header row in schema column order.
func WriteCSV(w io.Writer, d *Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Schema.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, m := range d.Measurements {
		if err := writer.Write(d.Schema.Encode(m)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
