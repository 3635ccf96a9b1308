package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/storeshop/internal/repo"
	"github.com/angelmondragon/storeshop/pkg/config"
	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
	"github.com/angelmondragon/storeshop/pkg/pagination"
	"gorm.io/gorm"
)

// orderRow maps the bestellungen table.
type orderRow struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Datum       string `gorm:"column:datum"`
	Storenummer string `gorm:"column:storenummer"`
	Produktname string `gorm:"column:produktname"`
	SAPNummer   string `gorm:"column:sap_nummer"`
	Anzahl      int    `gorm:"column:anzahl"`
}

func (orderRow) TableName() string { return "bestellungen" }

// EventLogSink appends one row per submission. Identifiers are stored as
// given; duplicates are expected.
type EventLogSink struct {
	rows repo.Table[orderRow]
	loc  *time.Location
}

// NewEventLogSink binds the sink to db.
func NewEventLogSink(db *gorm.DB) *EventLogSink {
	return &EventLogSink{rows: repo.NewTable[orderRow](db), loc: time.Local}
}

func (s *EventLogSink) Name() string { return config.OrderSinkEventLog }

func (s *EventLogSink) Record(ctx context.Context, order Order) (Order, error) {
	row := orderRow{
		Datum:       order.RecordedAt.In(s.loc).Format(DateLayout),
		Storenummer: order.StoreNumber,
		Produktname: order.ProductName,
		SAPNummer:   order.SAPNumber,
		Anzahl:      order.Quantity,
	}
	if err := s.rows.Append(ctx, &row); err != nil {
		return Order{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save order")
	}
	order.ID = row.ID
	return order, nil
}

// List returns every row in insertion order.
func (s *EventLogSink) List(ctx context.Context) ([]Order, error) {
	rows, err := s.rows.All(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list orders")
	}
	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.toOrder(r))
	}
	return out, nil
}

// Page returns up to params.Limit orders after the cursor, oldest first.
func (s *EventLogSink) Page(ctx context.Context, params pagination.Params) (Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]any{"field": "cursor"})
	}
	limit := pagination.NormalizeLimit(params.Limit)

	var afterID int64
	if cursor != nil {
		afterID = cursor.AfterID
	}
	rows, err := s.rows.After(ctx, afterID, pagination.LimitWithBuffer(limit))
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list orders")
	}

	page := Page{Orders: make([]Order, 0, limit)}
	if len(rows) > limit {
		rows = rows[:limit]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{AfterID: rows[len(rows)-1].ID})
	}
	for _, r := range rows {
		page.Orders = append(page.Orders, s.toOrder(r))
	}
	return page, nil
}

func (s *EventLogSink) toOrder(r orderRow) Order {
	recordedAt, _ := time.ParseInLocation(DateLayout, r.Datum, s.loc)
	return Order{
		ID:          r.ID,
		StoreNumber: r.Storenummer,
		SAPNumber:   r.SAPNummer,
		ProductName: r.Produktname,
		Quantity:    r.Anzahl,
		RecordedAt:  recordedAt,
	}
}

const latestQuery = `
SELECT b.storenummer, b.sap_nummer, b.anzahl
FROM bestellungen b
JOIN (
  SELECT storenummer, sap_nummer, MAX(id) AS id
  FROM bestellungen
  GROUP BY storenummer, sap_nummer
) latest ON b.id = latest.id
ORDER BY b.storenummer, b.sap_nummer`

// Latest derives the wide-matrix view: the most recent quantity per
// store and SAP number.
func (s *EventLogSink) Latest(ctx context.Context) ([]Cell, error) {
	var cells []Cell
	if err := s.rows.DB(ctx).Raw(latestQuery).Scan(&cells).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to derive latest quantities")
	}
	return cells, nil
}
