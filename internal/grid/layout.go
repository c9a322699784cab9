package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/platemap/internal/plate"
)

// ReadLayout parses a plate-shaped tab-delimited matrix. The first record holds
// the column numbers, every following record starts with its row letter. Short
// records are padded with empty values.
func ReadLayout(r io.Reader, geom plate.Geometry) (*Grid, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("layout is empty")
		}
		return nil, fmt.Errorf("failed to read layout header: %w", err)
	}
	cols := geom.Cols()
	if len(header) != len(cols)+1 {
		return nil, fmt.Errorf("layout header has %d columns, plate has %d: %w", len(header)-1, len(cols), ErrOutOfRange)
	}
	for i, c := range cols {
		if strings.TrimSpace(header[i+1]) != strconv.Itoa(c) {
			return nil, fmt.Errorf("layout header column %d is %q, want %d", i+1, header[i+1], c)
		}
	}

	g := New(geom)
	rows := geom.Rows()
	seen := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read layout: %w", err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if seen >= len(rows) {
			return nil, fmt.Errorf("layout has more than %d rows: %w", len(rows), ErrOutOfRange)
		}
		label := strings.ToUpper(strings.TrimSpace(record[0]))
		if label != string(rune(rows[seen])) {
			return nil, fmt.Errorf("layout row %d is %q, want %c", seen+1, record[0], rows[seen])
		}
		values := record[1:]
		if len(values) > len(cols) {
			return nil, fmt.Errorf("layout row %s has %d values, plate has %d columns: %w", label, len(values), len(cols), ErrOutOfRange)
		}
		copy(g.cells[seen], values)
		seen++
	}
	if seen != len(rows) {
		return nil, fmt.Errorf("layout has %d rows, plate has %d: %w", seen, len(rows), ErrOutOfRange)
	}
	return g, nil
}

// WriteLayout writes the grid in the shape ReadLayout accepts.
func (g *Grid) WriteLayout(w io.Writer) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'

	header := make([]string, 0, g.geom.ColCount()+1)
	header = append(header, "")
	for _, c := range g.geom.Cols() {
		header = append(header, strconv.Itoa(c))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write layout header: %w", err)
	}
	for i, r := range g.geom.Rows() {
		record := append([]string{string(rune(r))}, g.cells[i]...)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write layout row %c: %w", r, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
