package plate

import "testing"

func TestGeometryWellCounts(t *testing.T) {
	for _, pt := range Types() {
		g := pt.Geometry()
		if got := g.RowCount() * g.ColCount(); got != int(pt) {
			t.Fatalf("plate %d: expected %d wells, got %d", pt, int(pt), got)
		}
		if len(g.Wells()) != int(pt) {
			t.Fatalf("plate %d: Wells() returned %d entries", pt, len(g.Wells()))
		}
	}
}

func TestGeometryRanges(t *testing.T) {
	g := Wells384.Geometry()
	rows := g.Rows()
	if string(rows) != "ABCDEFGHIJKLMNOP" {
		t.Fatalf("unexpected 384 rows: %q", rows)
	}
	cols := g.Cols()
	if cols[0] != 1 || cols[len(cols)-1] != 24 {
		t.Fatalf("unexpected 384 cols: %v", cols)
	}
	if string(Wells6.Geometry().Rows()) != "AB" {
		t.Fatalf("unexpected 6-well rows")
	}
}

func TestWellsRowMajor(t *testing.T) {
	wells := Wells96.Geometry().Wells()
	if wells[0].String() != "A1" || wells[11].String() != "A12" || wells[12].String() != "B1" {
		t.Fatalf("unexpected order: %s %s %s", wells[0], wells[11], wells[12])
	}
	for i := 1; i < len(wells); i++ {
		if !wells[i-1].Less(wells[i]) {
			t.Fatalf("wells not ascending at %d: %s >= %s", i, wells[i-1], wells[i])
		}
	}
	if wells[len(wells)-1].String() != "H12" {
		t.Fatalf("expected H12 last, got %s", wells[len(wells)-1])
	}
}

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"96":             Wells96,
		"384-well":       Wells384,
		"6well":          Wells6,
		"48 Well Plate":  Wells48,
		"  12 well  ":    Wells12,
		"24 WELL PLATE ": Wells24,
	}
	for in, want := range cases {
		got, err := ParseType(in)
		if err != nil {
			t.Fatalf("ParseType(%q) failed: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseType(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "95", "well", "1536"} {
		if _, err := ParseType(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseWell(t *testing.T) {
	w, err := ParseWell("p24")
	if err != nil {
		t.Fatalf("ParseWell failed: %v", err)
	}
	if w.String() != "P24" {
		t.Fatalf("expected P24, got %s", w)
	}
	if !Wells384.Geometry().Contains(w) {
		t.Fatalf("expected P24 inside 384 plate")
	}
	if Wells96.Geometry().Contains(w) {
		t.Fatalf("expected P24 outside 96 plate")
	}
	for _, bad := range []string{"A", "1A", "A0", "A-1", "?3"} {
		if _, err := ParseWell(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNoneHasEmptyGeometry(t *testing.T) {
	if None.Valid() {
		t.Fatalf("None must not be valid")
	}
	if None.Geometry().WellCount() != 0 {
		t.Fatalf("expected empty geometry for None")
	}
	if None.Title() != "Select or Reset" {
		t.Fatalf("unexpected title %q", None.Title())
	}
}
