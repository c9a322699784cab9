// Package plate describes multi-well plate layouts.
package plate

import (
	"fmt"
	"strconv"
	"strings"
)

// Type identifies a plate layout by its nominal well count.
type Type int

// None is the "Select or Reset" state: no plate is active.
const None Type = 0

const (
	Wells6   Type = 6
	Wells12  Type = 12
	Wells24  Type = 24
	Wells48  Type = 48
	Wells96  Type = 96
	Wells384 Type = 384
)

var geometries = map[Type]Geometry{
	Wells384: {RowStart: 'A', RowEnd: 'P', ColStart: 1, ColEnd: 24},
	Wells96:  {RowStart: 'A', RowEnd: 'H', ColStart: 1, ColEnd: 12},
	Wells48:  {RowStart: 'A', RowEnd: 'F', ColStart: 1, ColEnd: 8},
	Wells24:  {RowStart: 'A', RowEnd: 'D', ColStart: 1, ColEnd: 6},
	Wells12:  {RowStart: 'A', RowEnd: 'C', ColStart: 1, ColEnd: 4},
	Wells6:   {RowStart: 'A', RowEnd: 'B', ColStart: 1, ColEnd: 3},
}

// Types returns the supported plate types in ascending order.
func Types() []Type {
	return []Type{Wells6, Wells12, Wells24, Wells48, Wells96, Wells384}
}

// Valid reports whether t is one of the supported layouts.
func (t Type) Valid() bool {
	_, ok := geometries[t]
	return ok
}

// Geometry returns the coordinate space of the plate. None and unknown types
// yield the zero Geometry.
func (t Type) Geometry() Geometry {
	return geometries[t]
}

// Title returns a display name such as "96 Well Plate".
func (t Type) Title() string {
	if !t.Valid() {
		return "Select or Reset"
	}
	return fmt.Sprintf("%d Well Plate", int(t))
}

func (t Type) String() string {
	if !t.Valid() {
		return "none"
	}
	return strconv.Itoa(int(t))
}

// ParseType accepts "96", "96-well", "96well" or "96 Well Plate".
func ParseType(s string) (Type, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.TrimSuffix(norm, "plate")
	norm = strings.TrimSpace(norm)
	norm = strings.TrimSuffix(norm, "well")
	norm = strings.TrimRight(norm, " -")
	n, err := strconv.Atoi(norm)
	if err == nil {
		if t := Type(n); t.Valid() {
			return t, nil
		}
	}
	names := make([]string, 0, len(geometries))
	for _, t := range Types() {
		names = append(names, t.String())
	}
	return None, fmt.Errorf("unknown plate type %q (supported: %s)", s, strings.Join(names, ", "))
}

// Geometry is the row-letter and column-number range of a plate.
type Geometry struct {
	RowStart byte
	RowEnd   byte
	ColStart int
	ColEnd   int
}

// RowCount returns the number of plate rows.
func (g Geometry) RowCount() int {
	if g.RowEnd < g.RowStart {
		return 0
	}
	return int(g.RowEnd-g.RowStart) + 1
}

// ColCount returns the number of plate columns.
func (g Geometry) ColCount() int {
	if g.ColEnd < g.ColStart {
		return 0
	}
	return g.ColEnd - g.ColStart + 1
}

// WellCount returns RowCount * ColCount.
func (g Geometry) WellCount() int {
	return g.RowCount() * g.ColCount()
}

// Rows returns the row letters in ascending order.
func (g Geometry) Rows() []byte {
	n := g.RowCount()
	rows := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, g.RowStart+byte(i))
	}
	return rows
}

// Cols returns the column numbers in ascending order.
func (g Geometry) Cols() []int {
	cols := make([]int, 0, g.ColCount())
	for c := g.ColStart; c <= g.ColEnd; c++ {
		cols = append(cols, c)
	}
	return cols
}

// Wells enumerates every well in row-major order.
func (g Geometry) Wells() []Well {
	wells := make([]Well, 0, g.WellCount())
	for _, r := range g.Rows() {
		for _, c := range g.Cols() {
			wells = append(wells, Well{Row: r, Col: c})
		}
	}
	return wells
}

// Contains reports whether w lies inside the geometry.
func (g Geometry) Contains(w Well) bool {
	return w.Row >= g.RowStart && w.Row <= g.RowEnd && w.Col >= g.ColStart && w.Col <= g.ColEnd
}

// Index returns the zero-based row and column offsets of w.
func (g Geometry) Index(w Well) (row, col int, ok bool) {
	if !g.Contains(w) {
		return 0, 0, false
	}
	return int(w.Row - g.RowStart), w.Col - g.ColStart, true
}

// WellAt is the inverse of Index.
func (g Geometry) WellAt(row, col int) Well {
	return Well{Row: g.RowStart + byte(row), Col: g.ColStart + col}
}

// Well is a single plate position.
type Well struct {
	Row byte
	Col int
}

// String returns the canonical form, e.g. "B3".
func (w Well) String() string {
	return string(rune(w.Row)) + strconv.Itoa(w.Col)
}

// Less orders wells row-major.
func (w Well) Less(o Well) bool {
	if w.Row != o.Row {
		return w.Row < o.Row
	}
	return w.Col < o.Col
}

// ParseWell parses a canonical coordinate such as "P24". Lowercase row letters
// are accepted.
func ParseWell(s string) (Well, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Well{}, fmt.Errorf("invalid well %q", s)
	}
	row := s[0]
	if row >= 'a' && row <= 'z' {
		row -= 'a' - 'A'
	}
	if row < 'A' || row > 'Z' {
		return Well{}, fmt.Errorf("invalid well row in %q", s)
	}
	col, err := strconv.Atoi(s[1:])
	if err != nil || col < 1 {
		return Well{}, fmt.Errorf("invalid well column in %q", s)
	}
	return Well{Row: row, Col: col}, nil
}
