package orders

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/angelmondragon/storeshop/pkg/spreadsheet"
)

// ExportHeader is the column order of CSV and XLSX exports.
var ExportHeader = []string{"ID", "Datum", "Storenummer", "Produktname", "SAP Nummer", "Anzahl"}

// MatrixStoreHeader heads the first column of the wide view.
const MatrixStoreHeader = "Storenummer"

// ExportRows flattens orders into export rows.
func ExportRows(orders []Order) [][]string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			strconv.FormatInt(o.ID, 10),
			o.Datum(),
			o.StoreNumber,
			o.ProductName,
			o.SAPNumber,
			strconv.Itoa(o.Quantity),
		})
	}
	return rows
}

// WriteCSV writes orders with ExportHeader to w.
func WriteCSV(w io.Writer, orders []Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(ExportRows(orders)); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes orders with ExportHeader as a workbook to w.
func WriteXLSX(w io.Writer, orders []Order) error {
	return spreadsheet.Encode(w, ExportHeader, ExportRows(orders))
}

// MatrixTable pivots cells into the wide store x SAP layout. Stores and SAP
// numbers are sorted; absent pairs are blank.
func MatrixTable(cells []Cell) ([]string, [][]string) {
	storeSet := make(map[string]struct{})
	sapSet := make(map[string]struct{})
	values := make(map[[2]string]int, len(cells))
	for _, c := range cells {
		storeSet[c.StoreNumber] = struct{}{}
		sapSet[c.SAPNumber] = struct{}{}
		values[[2]string{c.StoreNumber, c.SAPNumber}] = c.Quantity
	}

	saps := sortedKeys(sapSet)
	stores := sortedKeys(storeSet)

	header := append([]string{MatrixStoreHeader}, saps...)
	rows := make([][]string, 0, len(stores))
	for _, store := range stores {
		row := make([]string, len(header))
		row[0] = store
		for i, sap := range saps {
			if q, ok := values[[2]string{store, sap}]; ok {
				row[i+1] = strconv.Itoa(q)
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
