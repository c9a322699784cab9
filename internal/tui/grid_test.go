package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/platemap/internal/grid"
	"github.com/verte-zerg/platemap/internal/plate"
)

func TestCursorMoveClamps(t *testing.T) {
	geom := plate.Wells6.Geometry()
	c := cellCursor{}.move(geom, -1, -1)
	if c != (cellCursor{}) {
		t.Fatalf("expected clamp at origin, got %+v", c)
	}
	c = c.move(geom, 5, 5)
	if c != (cellCursor{row: 1, col: 2}) {
		t.Fatalf("expected clamp at B3, got %+v", c)
	}
	if c.well(geom).String() != "B3" {
		t.Fatalf("unexpected well %s", c.well(geom))
	}
}

func TestCellWidthFor(t *testing.T) {
	if got := cellWidthFor(0, 12); got != 8 {
		t.Fatalf("expected default width, got %d", got)
	}
	if got := cellWidthFor(40, 24); got != minCellWidth {
		t.Fatalf("expected minimum width, got %d", got)
	}
	if got := cellWidthFor(200, 3); got != maxCellWidth {
		t.Fatalf("expected maximum width, got %d", got)
	}
}

func TestRenderGridShowsValues(t *testing.T) {
	g := grid.New(plate.Wells6.Geometry())
	_ = g.Set(plate.Well{Row: 'A', Col: 2}, "GAPDH")
	_ = g.Set(plate.Well{Row: 'B', Col: 3}, "a very long sample name")

	var v gridView
	out := v.render(g, cellCursor{}, 0, 0)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[1], "A") || !strings.HasPrefix(lines[2], "B") {
		t.Fatalf("expected row letters, got %q / %q", lines[1], lines[2])
	}
	if !strings.Contains(lines[1], "GAPDH") {
		t.Fatalf("expected value in row A: %q", lines[1])
	}
	if strings.Contains(lines[2], "a very long sample name") || !strings.Contains(lines[2], "…") {
		t.Fatalf("expected truncated value in row B: %q", lines[2])
	}
	if !strings.Contains(lines[0], "3") {
		t.Fatalf("expected column numbers in header: %q", lines[0])
	}
}

func TestRenderGridScrollsToCursor(t *testing.T) {
	g := grid.New(plate.Wells384.Geometry())
	var v gridView
	out := v.render(g, cellCursor{row: 15, col: 23}, 40, 0)
	if v.colOffset != 15 {
		t.Fatalf("expected offset 15, got %d", v.colOffset)
	}
	header := strings.Split(out, "\n")[0]
	if !strings.HasSuffix(strings.TrimSpace(header), "24") {
		t.Fatalf("expected last column visible: %q", header)
	}

	v.render(g, cellCursor{row: 0, col: 2}, 40, 0)
	if v.colOffset != 2 {
		t.Fatalf("expected offset to follow cursor left, got %d", v.colOffset)
	}
}

func TestRenderGridScrollsRowsToCursor(t *testing.T) {
	g := grid.New(plate.Wells384.Geometry())
	var v gridView
	out := v.render(g, cellCursor{row: 15, col: 0}, 0, 6)
	lines := strings.Split(out, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header plus 5 rows, got %d", len(lines))
	}
	if v.rowOffset != 11 {
		t.Fatalf("expected row offset 11, got %d", v.rowOffset)
	}
	if !strings.HasPrefix(lines[1], "L") || !strings.HasPrefix(lines[5], "P") {
		t.Fatalf("expected rows L to P, got %q / %q", lines[1], lines[5])
	}

	out = v.render(g, cellCursor{row: 3, col: 0}, 0, 6)
	if v.rowOffset != 3 {
		t.Fatalf("expected offset to follow cursor up, got %d", v.rowOffset)
	}
	if first := strings.Split(out, "\n")[1]; !strings.HasPrefix(first, "D") {
		t.Fatalf("expected row D first, got %q", first)
	}
}

func TestCellTextFlattensAndTruncates(t *testing.T) {
	if got := cellText("a\tb\nc", 10); got != "a b c" {
		t.Fatalf("unexpected flattened text %q", got)
	}
	got := cellText("遺伝子発現", 5)
	if runewidth.StringWidth(got) > 5 {
		t.Fatalf("truncated text too wide: %q", got)
	}
}

func TestFitLines(t *testing.T) {
	out := fitLines("ab\ncdefgh\nx\ny", 4, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "ab  " || lines[1] != "cdef" {
		t.Fatalf("unexpected lines %q", lines)
	}
}
