package export

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/platemap/internal/grid"
	"github.com/verte-zerg/platemap/internal/plate"
)

func newGrids(pt plate.Type, n int) []*grid.Grid {
	grids := make([]*grid.Grid, n)
	for i := range grids {
		grids[i] = grid.New(pt.Geometry())
	}
	return grids
}

func TestMergeEmptyGridsYieldsNoRows(t *testing.T) {
	for _, pt := range plate.Types() {
		rows, err := Merge(newGrids(pt, 3), []string{"Gene", "Sample", "New Value 1"})
		if err != nil {
			t.Fatalf("plate %d: Merge failed: %v", pt, err)
		}
		if len(rows) != 0 {
			t.Fatalf("plate %d: expected no rows, got %d", pt, len(rows))
		}
	}
}

func TestMergeSingleWell(t *testing.T) {
	grids := newGrids(plate.Wells96, 2)
	if err := grids[0].Set(plate.Well{Row: 'B', Col: 3}, "X"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	rows, err := Merge(grids, []string{"Gene", "Sample"})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	want := []Row{{Well: "B3", Values: []string{"X", ""}}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRowMajorOrder(t *testing.T) {
	grids := newGrids(plate.Wells96, 2)
	_ = grids[1].Set(plate.Well{Row: 'H', Col: 12}, "last")
	_ = grids[0].Set(plate.Well{Row: 'B', Col: 3}, "X")
	_ = grids[1].Set(plate.Well{Row: 'A', Col: 12}, "a12")
	_ = grids[0].Set(plate.Well{Row: 'B', Col: 2}, "b2")
	_ = grids[1].Set(plate.Well{Row: 'A', Col: 1}, "a1")

	rows, err := Merge(grids, []string{"Gene", "Sample"})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	var wells []string
	for _, r := range rows {
		wells = append(wells, r.Well)
	}
	if diff := cmp.Diff([]string{"A1", "A12", "B2", "B3", "H12"}, wells); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeSkipsBlankAndKeepsRawValues(t *testing.T) {
	grids := newGrids(plate.Wells6, 2)
	_ = grids[0].Set(plate.Well{Row: 'A', Col: 1}, "   ")
	_ = grids[1].Set(plate.Well{Row: 'A', Col: 1}, "\t")
	_ = grids[0].Set(plate.Well{Row: 'A', Col: 2}, "  ")
	_ = grids[1].Set(plate.Well{Row: 'A', Col: 2}, " s1 ")

	rows, err := Merge(grids, []string{"Gene", "Sample"})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	want := []Row{{Well: "A2", Values: []string{"  ", " s1 "}}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFullPlate(t *testing.T) {
	grids := newGrids(plate.Wells384, 1)
	for _, w := range plate.Wells384.Geometry().Wells() {
		_ = grids[0].Set(w, w.String())
	}
	rows, err := Merge(grids, []string{"Gene"})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(rows) != 384 {
		t.Fatalf("expected 384 rows, got %d", len(rows))
	}
	if rows[0].Well != "A1" || rows[383].Well != "P24" {
		t.Fatalf("unexpected first/last wells %s, %s", rows[0].Well, rows[383].Well)
	}
}

func TestMergeShapeMismatch(t *testing.T) {
	mixed := []*grid.Grid{grid.New(plate.Wells96.Geometry()), grid.New(plate.Wells384.Geometry())}
	if _, err := Merge(mixed, []string{"Gene", "Sample"}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for mixed geometry, got %v", err)
	}
	if _, err := Merge(newGrids(plate.Wells96, 2), []string{"Gene"}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for label count, got %v", err)
	}
	if _, err := Merge(nil, nil); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for no grids, got %v", err)
	}
}

func TestNewTableHeader(t *testing.T) {
	table := NewTable([]Row{{Well: "A1", Values: []string{"g", "s"}}}, []string{"Gene", "Sample"})
	want := [][]string{
		{"Cell Position", "Gene", "Sample"},
		{"A1", "g", "s"},
	}
	if diff := cmp.Diff(want, table.Records()); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}
