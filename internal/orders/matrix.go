package orders

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"

	"github.com/angelmondragon/storeshop/pkg/config"
	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
	"github.com/angelmondragon/storeshop/pkg/numfmt"
	"github.com/angelmondragon/storeshop/pkg/spreadsheet"
)

// LookupError reports an identifier missing from the order matrix.
type LookupError struct {
	Field string
	Value string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q not found in order matrix", e.Field, e.Value)
}

// MatrixSink stores the latest quantity per store (row) and SAP number
// (column) in a spreadsheet, rewriting the whole file on each order.
// Writes are serialised within the process only.
type MatrixSink struct {
	mu   sync.Mutex
	path string
}

// NewMatrixSink binds the sink to the workbook at path.
func NewMatrixSink(path string) *MatrixSink {
	return &MatrixSink{path: path}
}

func (s *MatrixSink) Name() string { return config.OrderSinkMatrix }

// Record overwrites the cell for the order's store and SAP number. An unknown
// store or SAP number leaves the file untouched.
func (s *MatrixSink) Record(ctx context.Context, order Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.read()
	if err != nil {
		return Order{}, err
	}

	col := sapColumn(table.Header, order.SAPNumber)
	if col < 0 {
		return Order{}, lookupFailure("sap_number", order.SAPNumber)
	}
	row := storeRow(table.Rows, order.StoreNumber)
	if row < 0 {
		return Order{}, lookupFailure("store_number", order.StoreNumber)
	}

	cells := table.Rows[row]
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = strconv.Itoa(order.Quantity)
	table.Rows[row] = cells

	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	if err := spreadsheet.WriteFile(s.path, table.Header, table.Rows); err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to write order matrix")
	}
	return order, nil
}

// Latest lists every non-empty cell of the matrix.
func (s *MatrixSink) Latest(ctx context.Context) ([]Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.read()
	if err != nil {
		return nil, err
	}
	var cells []Cell
	for _, row := range table.Rows {
		store := numfmt.Format(spreadsheet.Cell(row, 0))
		for col := 1; col < len(table.Header); col++ {
			q, ok := numfmt.WholeNumber(spreadsheet.Cell(row, col))
			if !ok {
				continue
			}
			cells = append(cells, Cell{
				StoreNumber: store,
				SAPNumber:   numfmt.Format(table.Header[col]),
				Quantity:    int(q),
			})
		}
	}
	return cells, nil
}

func (s *MatrixSink) read() (*spreadsheet.Table, error) {
	table, err := spreadsheet.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("order matrix %s not found", s.path))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to read order matrix")
	}
	return table, nil
}

func lookupFailure(field, value string) error {
	msg := "SAP-Nummer nicht gefunden."
	if field == "store_number" {
		msg = "Storenummer nicht gefunden."
	}
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, &LookupError{Field: field, Value: value}, msg).
		WithDetails(map[string]any{field: value})
}

func sapColumn(header []string, sap string) int {
	for i := 1; i < len(header); i++ {
		if numfmt.Format(header[i]) == sap {
			return i
		}
	}
	return -1
}

func storeRow(rows [][]string, store string) int {
	for i, row := range rows {
		if numfmt.Format(spreadsheet.Cell(row, 0)) == store {
			return i
		}
	}
	return -1
}
