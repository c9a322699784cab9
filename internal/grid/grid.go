// Package grid holds the editable per-label well values.
package grid

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/platemap/internal/plate"
)

// ErrOutOfRange reports a coordinate or snapshot that does not fit the grid.
var ErrOutOfRange = errors.New("outside plate geometry")

// Grid is a dense rows x cols matrix of free-text values. Its geometry is fixed
// at creation.
type Grid struct {
	geom  plate.Geometry
	cells [][]string
}

// New returns a grid with every well set to "".
func New(geom plate.Geometry) *Grid {
	cells := make([][]string, geom.RowCount())
	for i := range cells {
		cells[i] = make([]string, geom.ColCount())
	}
	return &Grid{geom: geom, cells: cells}
}

// Geometry returns the plate geometry the grid was created with.
func (g *Grid) Geometry() plate.Geometry {
	return g.geom
}

// Get returns the value stored at w.
func (g *Grid) Get(w plate.Well) (string, error) {
	r, c, ok := g.geom.Index(w)
	if !ok {
		return "", fmt.Errorf("get %s: %w", w, ErrOutOfRange)
	}
	return g.cells[r][c], nil
}

// Set overwrites the value at w.
func (g *Grid) Set(w plate.Well, value string) error {
	r, c, ok := g.geom.Index(w)
	if !ok {
		return fmt.Errorf("set %s: %w", w, ErrOutOfRange)
	}
	g.cells[r][c] = value
	return nil
}

// At returns the value by zero-based offsets; callers must stay in range.
func (g *Grid) At(row, col int) string {
	return g.cells[row][col]
}

// Replace swaps in a full snapshot of rows x cols values. On a shape mismatch
// the grid is left untouched.
func (g *Grid) Replace(snapshot [][]string) error {
	if len(snapshot) != g.geom.RowCount() {
		return fmt.Errorf("snapshot has %d rows, plate has %d: %w", len(snapshot), g.geom.RowCount(), ErrOutOfRange)
	}
	for i, row := range snapshot {
		if len(row) != g.geom.ColCount() {
			return fmt.Errorf("snapshot row %d has %d columns, plate has %d: %w", i, len(row), g.geom.ColCount(), ErrOutOfRange)
		}
	}
	cells := make([][]string, len(snapshot))
	for i, row := range snapshot {
		cells[i] = append([]string(nil), row...)
	}
	g.cells = cells
	return nil
}

// Snapshot returns a copy of the current values.
func (g *Grid) Snapshot() [][]string {
	out := make([][]string, len(g.cells))
	for i, row := range g.cells {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Filled counts wells holding a non-empty value.
func (g *Grid) Filled() int {
	n := 0
	for _, row := range g.cells {
		for _, v := range row {
			if v != "" {
				n++
			}
		}
	}
	return n
}
