package export

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Format selects an export encoding.
type Format string

const (
	FormatSpreadsheet Format = "xlsx"
	FormatText        Format = "txt"
)

// SheetName is the single worksheet written to spreadsheet exports.
const SheetName = "Sheet1"

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatSpreadsheet, FormatText}
}

// ParseFormat accepts "xlsx", "excel", "txt", "tsv" or "text".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return FormatSpreadsheet, nil
	case "txt", "tsv", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use xlsx or txt)", s)
	}
}

// Filename is the download name for the format.
func (f Format) Filename() string {
	return "labels." + string(f)
}

// ContentType is the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSpreadsheet:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Encode serializes the table in format f.
func (f Format) Encode(t Table) ([]byte, error) {
	switch f {
	case FormatSpreadsheet:
		return Spreadsheet(t)
	case FormatText:
		text, err := DelimitedText(t)
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	default:
		return nil, fmt.Errorf("unknown export format %q: %w", string(f), ErrSerialization)
	}
}

// DelimitedText renders the table tab-separated, header first. Values are
// written raw; only fields holding a tab, a quote or a line break are quoted,
// with inner quotes doubled.
func DelimitedText(t Table) (string, error) {
	records := t.Records()
	if err := validateUTF8(records); err != nil {
		return "", err
	}
	var buf strings.Builder
	for _, record := range records {
		for i, field := range record {
			if i > 0 {
				buf.WriteByte('\t')
			}
			writeField(&buf, field)
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

func writeField(buf *strings.Builder, field string) {
	if !strings.ContainsAny(field, "\t\"\r\n") {
		buf.WriteString(field)
		return
	}
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
	buf.WriteByte('"')
}

// Spreadsheet renders the table as a single-sheet xlsx workbook with a bold
// header row. Every cell is written as a string.
func Spreadsheet(t Table) ([]byte, error) {
	records := t.Records()
	if err := validateUTF8(records); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the in-memory workbook.
			_ = cerr
		}
	}()

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrSerialization, i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.Header))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 16); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func validateUTF8(records [][]string) error {
	for i, record := range records {
		for j, v := range record {
			if !utf8.ValidString(v) {
				return fmt.Errorf("%w (row %d, column %d)", ErrEncoding, i+1, j+1)
			}
		}
	}
	return nil
}
