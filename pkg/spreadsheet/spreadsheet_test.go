package spreadsheet

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "Storenummer , Storename,Lang\n100,Zürich HB,D\n\n200,Genève,F\n"
	table, err := Read(strings.NewReader(input), "stores.csv")
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, 0, table.Col("storenummer"))
	assert.Equal(t, 1, table.Col("STORENAME"))
	assert.Equal(t, -1, table.Col("missing"))
	assert.Equal(t, "Genève", table.Value(table.Rows[1], "Storename"))
	assert.Equal(t, []string{"Remark"}, table.Missing("Lang", "Remark"))
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader("\n\n"), "empty.csv")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCellOutOfRange(t *testing.T) {
	row := []string{" a "}
	assert.Equal(t, "a", Cell(row, 0))
	assert.Equal(t, "", Cell(row, 3))
	assert.Equal(t, "", Cell(row, -1))
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "matrix.xlsx")
	header := []string{"Storenummer", "4711", "0815"}
	rows := [][]string{{"100", "3", ""}, {"200", "", "1.5"}}

	require.NoError(t, WriteFile(path, header, rows))

	table, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, header, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "3", table.Value(table.Rows[0], "4711"))
	assert.Equal(t, "1.5", table.Value(table.Rows[1], "0815"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestAppendCreatesAndExtends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.xlsx")
	header := []string{"Datum", "Anzahl"}

	require.NoError(t, Append(path, header, []string{"2025-03-01", "2"}))
	require.NoError(t, Append(path, header, []string{"2025-03-02", "4"}))

	table, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "4", table.Value(table.Rows[1], "Anzahl"))
}

func TestEncodeProducesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []string{"A"}, [][]string{{"x"}}))

	table, err := Read(&buf, "out.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "x", table.Value(table.Rows[0], "A"))
}

func TestCellValueKeepsIdentifiers(t *testing.T) {
	assert.Equal(t, "00123", cellValue("00123"))
	assert.Equal(t, int64(42), cellValue("42"))
	assert.Equal(t, 2.5, cellValue("2.5"))
	assert.Equal(t, "abc", cellValue("abc"))
}
