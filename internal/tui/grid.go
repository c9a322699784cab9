package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/platemap/internal/grid"
	"github.com/verte-zerg/platemap/internal/plate"
)

const (
	minCellWidth  = 3
	maxCellWidth  = 14
	rowLabelWidth = 2
	emptyCellMark = "·"
)

var (
	axisStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	filledCellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	emptyCellStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	cursorCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#C89A3A")).
			Bold(true)
)

// cellCursor addresses a cell by zero-based row and column.
type cellCursor struct {
	row int
	col int
}

func (c cellCursor) well(geom plate.Geometry) plate.Well {
	return geom.WellAt(c.row, c.col)
}

// move shifts the cursor and clamps it to the geometry.
func (c cellCursor) move(geom plate.Geometry, dRow, dCol int) cellCursor {
	c.row = clamp(c.row+dRow, 0, geom.RowCount()-1)
	c.col = clamp(c.col+dCol, 0, geom.ColCount()-1)
	return c
}

// gridView keeps the scroll position of the grid between renders.
type gridView struct {
	colOffset int
	rowOffset int
}

// cellWidthFor spreads the available width over the plate columns.
func cellWidthFor(width, cols int) int {
	if width <= 0 || cols <= 0 {
		return 8
	}
	w := (width-rowLabelWidth)/cols - 1
	return clamp(w, minCellWidth, maxCellWidth)
}

// visibleCols reports how many columns fit and scrolls so the cursor stays visible.
func (v *gridView) visibleCols(width, cellWidth, cols int, cur cellCursor) int {
	count := cols
	if width > 0 {
		count = clamp((width-rowLabelWidth)/(cellWidth+1), 1, cols)
	}
	if cur.col < v.colOffset {
		v.colOffset = cur.col
	}
	if cur.col >= v.colOffset+count {
		v.colOffset = cur.col - count + 1
	}
	v.colOffset = clamp(v.colOffset, 0, cols-count)
	return count
}

// visibleRows reports how many plate rows fit below the column header and
// scrolls so the cursor row stays visible. A height of 0 shows every row.
func (v *gridView) visibleRows(height, rows int, cur cellCursor) int {
	count := rows
	if height > 0 {
		count = clamp(height-1, 1, rows)
	}
	if cur.row < v.rowOffset {
		v.rowOffset = cur.row
	}
	if cur.row >= v.rowOffset+count {
		v.rowOffset = cur.row - count + 1
	}
	v.rowOffset = clamp(v.rowOffset, 0, rows-count)
	return count
}

func (v *gridView) render(g *grid.Grid, cur cellCursor, width, height int) string {
	geom := g.Geometry()
	cols := geom.ColCount()
	cellWidth := cellWidthFor(width, cols)
	count := v.visibleCols(width, cellWidth, cols, cur)
	rowCount := v.visibleRows(height, geom.RowCount(), cur)
	colNums := geom.Cols()
	letters := geom.Rows()

	lines := make([]string, 0, rowCount+1)
	header := make([]string, 0, count)
	for c := v.colOffset; c < v.colOffset+count; c++ {
		header = append(header, runewidth.FillLeft(strconv.Itoa(colNums[c]), cellWidth))
	}
	lines = append(lines, strings.Repeat(" ", rowLabelWidth)+axisStyle.Render(strings.Join(header, " ")))

	for r := v.rowOffset; r < v.rowOffset+rowCount; r++ {
		letter := letters[r]
		cells := make([]string, 0, count)
		for c := v.colOffset; c < v.colOffset+count; c++ {
			cells = append(cells, renderCell(g.At(r, c), cellWidth, cur.row == r && cur.col == c))
		}
		label := axisStyle.Render(runewidth.FillRight(string(letter), rowLabelWidth))
		lines = append(lines, label+strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func renderCell(value string, width int, selected bool) string {
	display := emptyCellMark
	style := emptyCellStyle
	if strings.TrimSpace(value) != "" {
		display = cellText(value, width)
		style = filledCellStyle
	}
	if selected {
		style = cursorCellStyle
	}
	return style.Render(runewidth.FillRight(display, width))
}

// cellText flattens a value to one line and truncates it to width columns.
func cellText(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	return runewidth.Truncate(value, width, "…")
}
