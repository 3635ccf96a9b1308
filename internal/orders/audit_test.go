package orders

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/storeshop/pkg/spreadsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() AuditEntry {
	order := Order{
		StoreNumber: "100",
		SAPNumber:   "4711",
		ProductName: "Mug",
		Quantity:    2,
		RecordedAt:  time.Date(2025, 3, 1, 9, 15, 30, 0, time.UTC),
	}
	return NewAuditEntry(order, "Zürich HB")
}

func TestNewAuditEntrySplitsTimestamp(t *testing.T) {
	entry := sampleEntry()
	assert.Equal(t, "2025-03-01", entry.Date)
	assert.Equal(t, "09:15:30", entry.Time)
	assert.Equal(t, "Zürich HB", entry.StoreName)
}

func TestDBAuditAppends(t *testing.T) {
	ctx := context.Background()
	audit := NewDBAudit(setupOrdersTestDB(t))

	require.NoError(t, audit.Append(ctx, sampleEntry()))
	entries, err := audit.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []AuditEntry{sampleEntry()}, entries)
}

func TestSpreadsheetAuditCreatesAndAppends(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "order_logs.xlsx")
	audit := NewSpreadsheetAudit(path)

	require.NoError(t, audit.Append(ctx, sampleEntry()))
	require.NoError(t, audit.Append(ctx, sampleEntry()))

	table, err := spreadsheet.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, AuditHeader, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Zürich HB", table.Value(table.Rows[1], "Storename"))
	assert.Equal(t, "2", table.Value(table.Rows[1], "Anzahl"))
}
