// Package history renders the export history for the terminal.
package history

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/platemap/internal/model"
	"github.com/verte-zerg/platemap/internal/plate"
)

const timeLayout = "2006-01-02 15:04"

var headers = []string{"When", "Plate", "Format", "Rows", "Labels", "Location"}

// Lines formats records as an aligned table, newest first as given.
func Lines(records []model.ExportRecord, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.ExportedAt.In(loc).Format(timeLayout),
			plate.Type(rec.PlateType).String(),
			rec.Format,
			strconv.Itoa(rec.RowCount),
			strings.Join(rec.Labels, ", "),
			rec.Location,
		})
	}
	return formatTable(headers, rows, map[int]bool{1: true, 3: true})
}

// Write prints records to w, truncated to width columns (0 disables truncation).
func Write(w io.Writer, records []model.ExportRecord, width int) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No exports recorded yet.")
		return err
	}
	for _, line := range fitLines(Lines(records, nil), width) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// TerminalWidth returns the width of w when it is a terminal, otherwise 0.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}
