package spreadsheet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet name used for generated workbooks.
const DefaultSheet = "Sheet1"

// Encode writes header and rows as a single-sheet xlsx workbook to w. Cells
// that parse as numbers are stored as numbers so downstream tools can sum them.
func Encode(w io.Writer, header []string, rows [][]string) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := writeRow(file, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(file, i+2, row); err != nil {
			return err
		}
	}
	_, err := file.WriteTo(w)
	return err
}

// WriteFile replaces path with a workbook holding header and rows. The
// workbook is written to a temp file in the same directory and renamed over
// the target, so readers never observe a partial file.
func WriteFile(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := Encode(tmp, header, rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Append reads path (if present), appends row and rewrites the file. A missing
// file is created with header.
func Append(path string, header []string, row []string) error {
	var rows [][]string
	table, err := ReadFile(path)
	switch {
	case err == nil:
		header = table.Header
		rows = table.Rows
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
	rows = append(rows, row)
	return WriteFile(path, header, rows)
}

func writeRow(file *excelize.File, rowNum int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = cellValue(v)
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return file.SetSheetRow(DefaultSheet, cell, &cells)
}

func cellValue(v string) any {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return v
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return v
	}
	// keep leading zeros and long identifiers as text
	if d.String() != trimmed {
		return v
	}
	if d.IsInteger() {
		return d.IntPart()
	}
	f, _ := d.Float64()
	return f
}
