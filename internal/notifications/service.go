package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
	"github.com/angelmondragon/storeshop/pkg/events"
	"github.com/angelmondragon/storeshop/pkg/logger"
	"github.com/angelmondragon/storeshop/pkg/metrics"
)

// CatalogSource exposes the active catalog snapshot.
type CatalogSource interface {
	Current() *catalog.Catalog
}

// Request names the special product a store wants to order.
type Request struct {
	StoreNumber string `json:"store_number" validate:"required,ident"`
	SAPNumber   string `json:"sap_number" validate:"required,ident"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

// Dispatcher turns special-product submissions into mail intents.
type Dispatcher interface {
	Prepare(ctx context.Context, req Request) (MailIntent, error)
}

type dispatcher struct {
	catalog   CatalogSource
	publisher events.Publisher
	metrics   *metrics.ShopMetrics
	logg      *logger.Logger
}

// NewDispatcher wires the dispatcher; publisher, metrics and logger are optional.
func NewDispatcher(cat CatalogSource, publisher events.Publisher, m *metrics.ShopMetrics, logg *logger.Logger) (Dispatcher, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &dispatcher{catalog: cat, publisher: publisher, metrics: m, logg: logg}, nil
}

// Prepare resolves the store and product and composes the mail. No order is
// persisted.
func (d *dispatcher) Prepare(ctx context.Context, req Request) (MailIntent, error) {
	req.StoreNumber = strings.TrimSpace(req.StoreNumber)
	req.SAPNumber = strings.TrimSpace(req.SAPNumber)

	cat := d.catalog.Current()
	store, ok := cat.Store(req.StoreNumber)
	if !ok {
		return MailIntent{}, pkgerrors.New(pkgerrors.CodeNotFound, "store not found").
			WithDetails(map[string]any{"store_number": req.StoreNumber})
	}
	product, ok := cat.Product(enums.CatalogSpecial, req.SAPNumber)
	if !ok {
		return MailIntent{}, pkgerrors.New(pkgerrors.CodeNotFound, "special product not found").
			WithDetails(map[string]any{"sap_number": req.SAPNumber})
	}
	if !product.Available() {
		return MailIntent{}, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available").
			WithDetails(map[string]any{"sap_number": product.SAPNumber})
	}
	if !product.AllowsQuantity(req.Quantity) {
		return MailIntent{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity is not one of the offered options").
			WithDetails(map[string]any{"quantity": req.Quantity, "options": product.QuantityOptions})
	}

	intent, err := Compose(product.NotificationEmail, product.Name, product.SAPNumber, req.Quantity, store.Name, store.Number)
	if err != nil {
		return MailIntent{}, err
	}

	ctx = d.logg.WithFields(ctx, map[string]any{
		"store_number": store.Number,
		"sap_number":   product.SAPNumber,
		"recipient":    intent.Recipient,
	})
	d.metrics.IncMailIntent()
	d.logg.Info(ctx, "mail intent composed")
	if err := d.publisher.Publish(ctx, events.KeyMailComposed, intent); err != nil {
		d.metrics.IncPublishFailure()
		d.logg.WarnErr(ctx, "mail event publish failed", err)
	}
	return intent, nil
}
