package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
	"github.com/angelmondragon/storeshop/pkg/events"
	"github.com/angelmondragon/storeshop/pkg/logger"
	"github.com/angelmondragon/storeshop/pkg/metrics"
	"github.com/angelmondragon/storeshop/pkg/pagination"
)

// CatalogSource exposes the active catalog snapshot.
type CatalogSource interface {
	Current() *catalog.Catalog
}

// Service records standard-product orders and reads them back.
type Service interface {
	SinkName() string
	Record(ctx context.Context, input Input) (Order, error)
	List(ctx context.Context) ([]Order, error)
	Page(ctx context.Context, params pagination.Params) (Page, error)
	Latest(ctx context.Context) ([]Cell, error)
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Sink      Sink
	Audit     AuditLog
	Catalog   CatalogSource
	Publisher events.Publisher
	Metrics   *metrics.ShopMetrics
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	sink      Sink
	audit     AuditLog
	catalog   CatalogSource
	publisher events.Publisher
	metrics   *metrics.ShopMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService validates params and builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Sink == nil {
		return nil, fmt.Errorf("order sink required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if params.Audit == nil {
		params.Audit = NopAudit{}
	}
	if params.Publisher == nil {
		params.Publisher = events.Nop{}
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		sink:      params.Sink,
		audit:     params.Audit,
		catalog:   params.Catalog,
		publisher: params.Publisher,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       params.Clock,
	}, nil
}

func (s *service) SinkName() string { return s.sink.Name() }

// Record checks the submission against the catalog, persists it and then
// feeds the best-effort side channels.
func (s *service) Record(ctx context.Context, input Input) (Order, error) {
	input.StoreNumber = strings.TrimSpace(input.StoreNumber)
	input.SAPNumber = strings.TrimSpace(input.SAPNumber)

	store, product, err := s.check(input)
	if err != nil {
		s.metrics.IncOrderRejected(string(pkgerrors.As(err).Code()))
		return Order{}, err
	}

	order := Order{
		StoreNumber: store.Number,
		SAPNumber:   product.SAPNumber,
		ProductName: product.Name,
		Quantity:    input.Quantity,
		RecordedAt:  s.now(),
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"store_number": order.StoreNumber,
		"sap_number":   order.SAPNumber,
		"quantity":     order.Quantity,
		"sink":         s.sink.Name(),
	})

	saved, err := s.sink.Record(ctx, order)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			s.metrics.IncOrderRejected(string(pkgerrors.CodeNotFound))
			s.logg.Warn(ctx, "order identifiers not present in sink")
		} else {
			s.logg.Error(ctx, "order sink write failed", err)
		}
		return Order{}, err
	}
	s.metrics.IncOrderRecorded(s.sink.Name())
	s.logg.Info(ctx, "order recorded")

	if err := s.audit.Append(ctx, NewAuditEntry(saved, store.Name)); err != nil {
		s.metrics.IncAuditFailure(s.audit.Target())
		s.logg.WarnErr(ctx, "audit log append failed", err)
	}
	if err := s.publisher.Publish(ctx, events.KeyOrderRecorded, saved); err != nil {
		s.metrics.IncPublishFailure()
		s.logg.WarnErr(ctx, "order event publish failed", err)
	}
	return saved, nil
}

func (s *service) check(input Input) (catalog.Store, catalog.Product, error) {
	if input.StoreNumber == "" {
		return catalog.Store{}, catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "store number is required")
	}
	if input.SAPNumber == "" {
		return catalog.Store{}, catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "sap number is required")
	}
	if input.Quantity <= 0 {
		return catalog.Store{}, catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	cat := s.catalog.Current()
	store, ok := cat.Store(input.StoreNumber)
	if !ok {
		return catalog.Store{}, catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "store not found").
			WithDetails(map[string]any{"store_number": input.StoreNumber})
	}
	product, ok := cat.Product(enums.CatalogStandard, input.SAPNumber)
	if !ok {
		return catalog.Store{}, catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"sap_number": input.SAPNumber})
	}
	if !product.Available() {
		return catalog.Store{}, catalog.Product{}, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available").
			WithDetails(map[string]any{"sap_number": product.SAPNumber, "stock": product.Stock})
	}
	if !product.AllowsQuantity(input.Quantity) {
		return catalog.Store{}, catalog.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity is not one of the offered options").
			WithDetails(map[string]any{"quantity": input.Quantity, "options": product.QuantityOptions})
	}
	return store, product, nil
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	lister, ok := s.sink.(Lister)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("the %s sink does not keep an order history", s.sink.Name()))
	}
	return lister.List(ctx)
}

func (s *service) Page(ctx context.Context, params pagination.Params) (Page, error) {
	pager, ok := s.sink.(Pager)
	if !ok {
		return Page{}, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("the %s sink does not keep an order history", s.sink.Name()))
	}
	return pager.Page(ctx, params)
}

func (s *service) Latest(ctx context.Context) ([]Cell, error) {
	reader, ok := s.sink.(LatestReader)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("the %s sink cannot report quantities", s.sink.Name()))
	}
	return reader.Latest(ctx)
}
