package grid

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/platemap/internal/plate"
)

func TestSetGetRoundTrip(t *testing.T) {
	for _, pt := range plate.Types() {
		geom := pt.Geometry()
		g := New(geom)
		for _, w := range geom.Wells() {
			got, err := g.Get(w)
			if err != nil {
				t.Fatalf("plate %d: get %s: %v", pt, w, err)
			}
			if got != "" {
				t.Fatalf("plate %d: expected empty %s, got %q", pt, w, got)
			}
			if err := g.Set(w, "v-"+w.String()); err != nil {
				t.Fatalf("plate %d: set %s: %v", pt, w, err)
			}
		}
		for _, w := range geom.Wells() {
			got, _ := g.Get(w)
			if got != "v-"+w.String() {
				t.Fatalf("plate %d: expected %q at %s, got %q", pt, "v-"+w.String(), w, got)
			}
		}
		if g.Filled() != int(pt) {
			t.Fatalf("plate %d: expected %d filled, got %d", pt, int(pt), g.Filled())
		}
	}
}

func TestSetOverwrites(t *testing.T) {
	g := New(plate.Wells6.Geometry())
	w := plate.Well{Row: 'B', Col: 2}
	_ = g.Set(w, "first")
	_ = g.Set(w, "second")
	got, _ := g.Get(w)
	if got != "second" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}

func TestOutOfRange(t *testing.T) {
	g := New(plate.Wells96.Geometry())
	for _, w := range []plate.Well{{Row: 'I', Col: 1}, {Row: 'A', Col: 13}, {Row: 'A', Col: 0}} {
		if _, err := g.Get(w); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange for get %s, got %v", w, err)
		}
		if err := g.Set(w, "x"); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange for set %s, got %v", w, err)
		}
	}
}

func TestReplaceRejectsWrongShape(t *testing.T) {
	g := New(plate.Wells6.Geometry())
	_ = g.Set(plate.Well{Row: 'A', Col: 1}, "keep")

	err := g.Replace([][]string{{"a", "b", "c"}})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	err = g.Replace([][]string{{"a", "b", "c"}, {"d", "e"}})
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for ragged snapshot, got %v", err)
	}
	if got, _ := g.Get(plate.Well{Row: 'A', Col: 1}); got != "keep" {
		t.Fatalf("grid changed after rejected snapshot: %q", got)
	}

	snap := [][]string{{"a", "b", "c"}, {"d", "e", "f"}}
	if err := g.Replace(snap); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	snap[0][0] = "mutated"
	if diff := cmp.Diff([][]string{{"a", "b", "c"}, {"d", "e", "f"}}, g.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	geom := plate.Wells12.Geometry()
	g := New(geom)
	_ = g.Set(plate.Well{Row: 'A', Col: 1}, "GAPDH")
	_ = g.Set(plate.Well{Row: 'C', Col: 4}, "has\ttab")

	var buf bytes.Buffer
	if err := g.WriteLayout(&buf); err != nil {
		t.Fatalf("WriteLayout failed: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "\t1\t2\t3\t4" {
		t.Fatalf("unexpected header %q", lines[0])
	}

	back, err := ReadLayout(&buf, geom)
	if err != nil {
		t.Fatalf("ReadLayout failed: %v", err)
	}
	if diff := cmp.Diff(g.Snapshot(), back.Snapshot()); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestReadLayoutPadsShortRows(t *testing.T) {
	in := "\t1\t2\t3\nA\tx\nB\t\t\ty\n"
	g, err := ReadLayout(strings.NewReader(in), plate.Wells6.Geometry())
	if err != nil {
		t.Fatalf("ReadLayout failed: %v", err)
	}
	want := [][]string{{"x", "", ""}, {"", "", "y"}}
	if diff := cmp.Diff(want, g.Snapshot()); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestReadLayoutErrors(t *testing.T) {
	geom := plate.Wells6.Geometry()
	cases := map[string]string{
		"empty":         "",
		"wrong header":  "\t1\t2\t4\nA\t\t\t\nB\t\t\t\n",
		"narrow header": "\t1\t2\nA\nB\n",
		"wrong row":     "\t1\t2\t3\nA\nC\n",
		"missing row":   "\t1\t2\t3\nA\n",
		"extra row":     "\t1\t2\t3\nA\nB\nC\n",
		"wide row":      "\t1\t2\t3\nA\t1\t2\t3\t4\nB\n",
	}
	for name, in := range cases {
		if _, err := ReadLayout(strings.NewReader(in), geom); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
