// Package export merges per-label grids into one table and serializes it.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/platemap/internal/grid"
)

// PositionHeader is the first column of every exported table.
const PositionHeader = "Cell Position"

var (
	// ErrShapeMismatch reports grids that disagree on geometry or count.
	ErrShapeMismatch = errors.New("grid shape mismatch")
	// ErrSerialization reports a failure to encode or write an export.
	ErrSerialization = errors.New("serialization failed")
	// ErrEncoding reports a value that the target format cannot represent.
	ErrEncoding = fmt.Errorf("%w: value cannot be encoded", ErrSerialization)
)

// Row is one well with a value for every label.
type Row struct {
	Well   string
	Values []string
}

// Table is a merged export with its header.
type Table struct {
	Header []string
	Rows   []Row
}

// Merge walks the wells of the first grid row-major and keeps every well where
// at least one label has a non-blank value. Values are copied untrimmed.
func Merge(grids []*grid.Grid, labels []string) ([]Row, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("no grids to merge: %w", ErrShapeMismatch)
	}
	if len(grids) != len(labels) {
		return nil, fmt.Errorf("%d grids for %d labels: %w", len(grids), len(labels), ErrShapeMismatch)
	}
	geom := grids[0].Geometry()
	for i, g := range grids[1:] {
		if g.Geometry() != geom {
			return nil, fmt.Errorf("grid %d (%s) differs from grid 0: %w", i+1, labels[i+1], ErrShapeMismatch)
		}
	}

	var rows []Row
	for r := 0; r < geom.RowCount(); r++ {
		for c := 0; c < geom.ColCount(); c++ {
			values := make([]string, len(grids))
			keep := false
			for i, g := range grids {
				v := g.At(r, c)
				values[i] = v
				if strings.TrimSpace(v) != "" {
					keep = true
				}
			}
			if !keep {
				continue
			}
			rows = append(rows, Row{Well: geom.WellAt(r, c).String(), Values: values})
		}
	}
	return rows, nil
}

// NewTable attaches the export header to merged rows.
func NewTable(rows []Row, labels []string) Table {
	header := make([]string, 0, len(labels)+1)
	header = append(header, PositionHeader)
	header = append(header, labels...)
	return Table{Header: header, Rows: rows}
}

// Records flattens the table into header plus one record per row.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Header...))
	for _, row := range t.Rows {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, row.Well)
		record = append(record, row.Values...)
		out = append(out, record)
	}
	return out
}
