// Package spreadsheet reads and writes the tabular files the shop is fed with
// (xlsx, legacy xls and csv) as header-addressed tables.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

const maxXLSRows = 100000

// ErrEmpty is returned when a file has no header row.
var ErrEmpty = errors.New("worksheet is empty")

// Table is a header-addressed view over spreadsheet rows. Rows may be shorter
// than the header; missing trailing cells read as "".
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewTable builds a table from a header row and data rows.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: rows, index: make(map[string]int, len(header))}
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t
}

// Col returns the index of the named column or -1.
func (t *Table) Col(name string) int {
	if idx, ok := t.index[normalizeHeader(name)]; ok {
		return idx
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.Col(name) >= 0
}

// Missing returns the subset of names that are not columns of the table.
func (t *Table) Missing(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Value returns the trimmed cell of row under the named column.
func (t *Table) Value(row []string, name string) string {
	return Cell(row, t.Col(name))
}

// Cell returns the trimmed value at idx or "" when out of range.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ReadFile opens path and parses it according to its extension.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses a spreadsheet from r; filename selects the format.
func Read(r io.Reader, filename string) (*Table, error) {
	rows, err := readRows(r, filename)
	if err != nil {
		return nil, err
	}
	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return NewTable(rows[0], rows[1:]), nil
}

func readRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		cr := csv.NewReader(bytes.NewReader(data))
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		return cr.ReadAll()
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		return workbook.ReadAllCells(maxXLSRows), nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		return file.GetRows(sheetName)
	}
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}

// normalizeHeader folds case and composes accents so "Bemerkungen" typed on
// different keyboards still matches.
func normalizeHeader(header string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(header)))
}
