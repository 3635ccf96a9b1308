package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/storeshop/pkg/pagination"
)

// DateLayout is the Datum format of the event log and exports.
const DateLayout = "2006-01-02 15:04:05"

// Sink persists a single order.
type Sink interface {
	Name() string
	Record(ctx context.Context, order Order) (Order, error)
}

// Lister is implemented by sinks that can enumerate every recorded order.
type Lister interface {
	List(ctx context.Context) ([]Order, error)
}

// Pager is implemented by sinks that can page through recorded orders.
type Pager interface {
	Page(ctx context.Context, params pagination.Params) (Page, error)
}

// Page is one slice of the event log.
type Page struct {
	Orders     []Order `json:"orders"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// LatestReader is implemented by sinks that can report the current
// store x SAP quantity view.
type LatestReader interface {
	Latest(ctx context.Context) ([]Cell, error)
}

// AuditLog receives a best-effort copy of every persisted order.
type AuditLog interface {
	Target() string
	Append(ctx context.Context, entry AuditEntry) error
}

// Order is one successful submission.
type Order struct {
	ID          int64     `json:"id,omitempty"`
	StoreNumber string    `json:"store_number"`
	SAPNumber   string    `json:"sap_number"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Datum renders RecordedAt the way the event log stores it.
func (o Order) Datum() string {
	return o.RecordedAt.Format(DateLayout)
}

// Cell is one store x SAP quantity of the wide view.
type Cell struct {
	StoreNumber string `json:"store_number" gorm:"column:storenummer"`
	SAPNumber   string `json:"sap_number" gorm:"column:sap_nummer"`
	Quantity    int    `json:"quantity" gorm:"column:anzahl"`
}

// AuditEntry is one row of the audit log.
type AuditEntry struct {
	Date        string `json:"datum"`
	Time        string `json:"zeit"`
	StoreNumber string `json:"storenummer"`
	StoreName   string `json:"storename"`
	SAPNumber   string `json:"sap_nummer"`
	ProductName string `json:"produktname"`
	Quantity    int    `json:"anzahl"`
}

// NewAuditEntry splits the order timestamp into the date and time columns.
func NewAuditEntry(order Order, storeName string) AuditEntry {
	return AuditEntry{
		Date:        order.RecordedAt.Format("2006-01-02"),
		Time:        order.RecordedAt.Format("15:04:05"),
		StoreNumber: order.StoreNumber,
		StoreName:   storeName,
		SAPNumber:   order.SAPNumber,
		ProductName: order.ProductName,
		Quantity:    order.Quantity,
	}
}

// Input is an order submission as received from a form or the API.
type Input struct {
	StoreNumber string `json:"store_number" validate:"required,ident"`
	SAPNumber   string `json:"sap_number" validate:"required,ident"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}
