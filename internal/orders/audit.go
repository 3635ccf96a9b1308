package orders

import (
	"context"
	"strconv"
	"sync"

	"github.com/angelmondragon/storeshop/internal/repo"
	"github.com/angelmondragon/storeshop/pkg/config"
	"github.com/angelmondragon/storeshop/pkg/spreadsheet"
	"gorm.io/gorm"
)

// AuditHeader is the header row of the spreadsheet audit log.
var AuditHeader = []string{"Datum", "Zeit", "Storenummer", "Storename", "SAP Nummer", "Produktname", "Anzahl"}

type auditRow struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Datum       string `gorm:"column:datum"`
	Zeit        string `gorm:"column:zeit"`
	Storenummer string `gorm:"column:storenummer"`
	Storename   string `gorm:"column:storename"`
	SAPNummer   string `gorm:"column:sap_nummer"`
	Produktname string `gorm:"column:produktname"`
	Anzahl      int    `gorm:"column:anzahl"`
}

func (auditRow) TableName() string { return "order_logs" }

// DBAudit appends audit entries to the order_logs table.
type DBAudit struct {
	rows repo.Table[auditRow]
}

// NewDBAudit binds the audit log to db.
func NewDBAudit(db *gorm.DB) *DBAudit {
	return &DBAudit{rows: repo.NewTable[auditRow](db)}
}

func (a *DBAudit) Target() string { return config.AuditTargetDB }

func (a *DBAudit) Append(ctx context.Context, entry AuditEntry) error {
	row := auditRow{
		Datum:       entry.Date,
		Zeit:        entry.Time,
		Storenummer: entry.StoreNumber,
		Storename:   entry.StoreName,
		SAPNummer:   entry.SAPNumber,
		Produktname: entry.ProductName,
		Anzahl:      entry.Quantity,
	}
	return a.rows.Append(ctx, &row)
}

// Entries returns every audit row, oldest first.
func (a *DBAudit) Entries(ctx context.Context) ([]AuditEntry, error) {
	rows, err := a.rows.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AuditEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, AuditEntry{
			Date:        r.Datum,
			Time:        r.Zeit,
			StoreNumber: r.Storenummer,
			StoreName:   r.Storename,
			SAPNumber:   r.SAPNummer,
			ProductName: r.Produktname,
			Quantity:    r.Anzahl,
		})
	}
	return out, nil
}

// SpreadsheetAudit appends audit entries to a workbook, creating it with
// AuditHeader on first use.
type SpreadsheetAudit struct {
	mu   sync.Mutex
	path string
}

// NewSpreadsheetAudit binds the audit log to the workbook at path.
func NewSpreadsheetAudit(path string) *SpreadsheetAudit {
	return &SpreadsheetAudit{path: path}
}

func (a *SpreadsheetAudit) Target() string { return config.AuditTargetSpreadsheet }

func (a *SpreadsheetAudit) Append(ctx context.Context, entry AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return spreadsheet.Append(a.path, AuditHeader, entry.Row())
}

// Row renders the entry in AuditHeader order.
func (e AuditEntry) Row() []string {
	return []string{
		e.Date,
		e.Time,
		e.StoreNumber,
		e.StoreName,
		e.SAPNumber,
		e.ProductName,
		strconv.Itoa(e.Quantity),
	}
}

// NopAudit discards entries.
type NopAudit struct{}

func (NopAudit) Target() string                          { return config.AuditTargetOff }
func (NopAudit) Append(context.Context, AuditEntry) error { return nil }
