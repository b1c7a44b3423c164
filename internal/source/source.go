// Package source turns uploaded spreadsheet files into the parsed surface
// the import pipeline consumes: an ordered header row plus data rows. The
// pipeline itself never sees file bytes or formats.
package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Sheet is the parsed input surface: distinct ordered header labels and
// raw cell rows, fully empty rows already dropped.
type Sheet struct {
	Headers []string
	Rows    [][]string
}

// Parse dispatches on the file extension. CSV is the default for unknown
// extensions since that is what exported sheets usually are. Legacy binary
// .xls is rejected up front; excelize reads only OOXML workbooks.
func Parse(filename string, data []byte) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return ParseXLSX(data)
	case ".xls":
		return nil, fmt.Errorf("legacy .xls workbooks are not supported, save the sheet as .xlsx or .csv")
	default:
		return ParseCSV(data)
	}
}

// ParseCSV parses CSV data. Invalid UTF-8 is replaced rather than
// rejected; operator exports from old Excel versions are full of it.
func ParseCSV(data []byte) (*Sheet, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	return buildSheet(records)
}

// ParseXLSX reads the first sheet of an Excel workbook.
func ParseXLSX(data []byte) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return buildSheet(rows)
}

func buildSheet(records [][]string) (*Sheet, error) {
	var kept [][]string
	for _, row := range records {
		if !isEmptyRow(row) {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	headers := make([]string, len(kept[0]))
	for i, h := range kept[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Sheet{Headers: headers, Rows: kept[1:]}, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
