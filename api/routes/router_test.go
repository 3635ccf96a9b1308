package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storeshop/api/controllers"
	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/internal/notifications"
	"github.com/angelmondragon/storeshop/internal/orders"
	"github.com/angelmondragon/storeshop/internal/render"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/config"
	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/angelmondragon/storeshop/pkg/i18n"
	"github.com/angelmondragon/storeshop/pkg/logger"
	"github.com/angelmondragon/storeshop/pkg/metrics"
	"github.com/angelmondragon/storeshop/pkg/pagination"
	"github.com/angelmondragon/storeshop/pkg/types"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type memSink struct {
	mu     sync.Mutex
	orders []orders.Order
}

func (s *memSink) Name() string { return config.OrderSinkEventLog }

func (s *memSink) Record(_ context.Context, o orders.Order) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = int64(len(s.orders) + 1)
	s.orders = append(s.orders, o)
	return o, nil
}

func (s *memSink) List(context.Context) ([]orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]orders.Order(nil), s.orders...), nil
}

func (s *memSink) Page(_ context.Context, params pagination.Params) (orders.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := pagination.NormalizeLimit(params.Limit)
	page := orders.Page{Orders: []orders.Order{}}
	for _, o := range s.orders {
		if len(page.Orders) == limit {
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{AfterID: page.Orders[limit-1].ID})
			break
		}
		page.Orders = append(page.Orders, o)
	}
	return page, nil
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Stores: []catalog.Store{
			{Number: "100", Name: "Zürich HB", LangCode: "D"},
			{Number: "200", Name: "Genève", LangCode: "F"},
		},
		Standard: []catalog.Product{
			{Kind: enums.CatalogStandard, SAPNumber: "4711", Name: "Mug", ImageRef: "mug.png", Stock: 5, QuantityOptions: []int{1, 2, 5}},
			{Kind: enums.CatalogStandard, SAPNumber: "0815", Name: "Cap", ImageRef: "cap.png", Stock: 0, QuantityOptions: []int{1}},
		},
		Special: []catalog.Product{
			{Kind: enums.CatalogSpecial, SAPNumber: "9001", Name: "Banner", ImageRef: "banner.png", Stock: 3, QuantityOptions: []int{1, 2}, NotificationEmail: "print@example.com"},
		},
	}
}

type fixture struct {
	handler http.Handler
	sink    *memSink
	jar     []*http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.Nop()
	repo := catalog.NewStaticRepository(testCatalog())
	reg := prometheus.NewRegistry()
	shopMetrics := metrics.NewShopMetrics(reg)

	sessions, err := session.NewCookieStore(config.SessionConfig{
		Secret: "test-secret", Issuer: "storeshop", CookieName: "storeshop_session", TTL: time.Hour,
	})
	require.NoError(t, err)
	renderer, err := render.New()
	require.NoError(t, err)

	sink := &memSink{}
	svc, err := orders.NewService(orders.ServiceParams{Sink: sink, Catalog: repo, Metrics: shopMetrics, Logger: logg})
	require.NoError(t, err)
	dispatcher, err := notifications.NewDispatcher(repo, nil, shopMetrics, logg)
	require.NoError(t, err)

	pages := controllers.Pages{
		Catalog:    repo,
		Translator: i18n.MustNew(),
		Renderer:   renderer,
		Sessions:   sessions,
		Images:     render.DirImages{Root: t.TempDir()},
		Columns:    render.DefaultColumns,
	}
	return &fixture{
		handler: NewRouter(cfg, logg, stubPinger{}, nil, reg, pages, svc, dispatcher),
		sink:    sink,
	}
}

func (f *fixture) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range f.jar {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		f.jar = cookies
	}
	return rec
}

func TestHealthRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Storeshop-Env"))

	rec = f.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthReadyFailsWhenCacheIsDown(t *testing.T) {
	cfg := &config.Config{}
	pages := controllers.Pages{Catalog: catalog.NewStaticRepository(nil)}
	h := NewRouter(cfg, logger.Nop(), stubPinger{}, stubPinger{err: assert.AnError}, nil, pages, nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRootRedirectsToProducts(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, render.PathProducts, rec.Header().Get("Location"))
}

func TestProductsPageRendersFirstStoreInItsLanguage(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/products", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `lang="de"`)
	assert.Contains(t, body, "Zürich HB")
	assert.Contains(t, body, "Mug")
	assert.Contains(t, body, `action="/products/4711/order"`)
	assert.NotContains(t, body, `action="/products/0815/order"`, "out of stock products have no selector")
	assert.Contains(t, body, "Bild nicht gefunden: mug.png")
}

func TestOrderFlowAcknowledgesCard(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/products", nil)

	rec := f.do(t, http.MethodPost, "/products/4711/order", url.Values{"quantity": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, render.PathProducts, rec.Header().Get("Location"))

	require.Len(t, f.sink.orders, 1)
	assert.Equal(t, "100", f.sink.orders[0].StoreNumber)
	assert.Equal(t, 2, f.sink.orders[0].Quantity)

	rec = f.do(t, http.MethodGet, "/products", nil)
	assert.Contains(t, rec.Body.String(), "Bestellung wurde erfolgreich gespeichert!")
}

func TestOrderRejectionShowsFlashOnce(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/products", nil)

	rec := f.do(t, http.MethodPost, "/products/4711/order", url.Values{"quantity": {"3"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, f.sink.orders)

	rec = f.do(t, http.MethodGet, "/products", nil)
	assert.Contains(t, rec.Body.String(), "quantity is not one of the offered options")

	rec = f.do(t, http.MethodGet, "/products", nil)
	assert.NotContains(t, rec.Body.String(), "quantity is not one of the offered options")
}

func TestMailFlowRedirectsToMailto(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/special-products", nil)

	rec := f.do(t, http.MethodPost, "/special-products/9001/mail", url.Values{"quantity": {"1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "mailto:print@example.com?subject="))
	assert.Empty(t, f.sink.orders, "mail submissions are not persisted")
}

func TestSelectStoreResetsLanguage(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/products", nil)

	rec := f.do(t, http.MethodPost, "/session/language", url.Values{"language": {"it"}, "return_to": {"/orders"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/orders", rec.Header().Get("Location"))
	assert.Contains(t, f.do(t, http.MethodGet, "/products", nil).Body.String(), `lang="it"`)

	rec = f.do(t, http.MethodPost, "/session/store", url.Values{"store_number": {"200"}, "return_to": {"https://evil.example"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, render.PathProducts, rec.Header().Get("Location"))

	body := f.do(t, http.MethodGet, "/products", nil).Body.String()
	assert.Contains(t, body, `lang="fr"`)
	assert.Contains(t, body, "Genève")
}

func TestSelectUnknownStoreFlashes(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/products", nil)
	f.do(t, http.MethodPost, "/session/store", url.Values{"store_number": {"999"}})

	assert.Contains(t, f.do(t, http.MethodGet, "/products", nil).Body.String(), "Storenummer nicht gefunden.")
}

func TestOrdersPageAndExports(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/products", nil)
	f.do(t, http.MethodPost, "/products/4711/order", url.Values{"quantity": {"5"}})

	rec := f.do(t, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>Mug</td>")

	rec = f.do(t, http.MethodGet, "/orders/export.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bestellungen.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Datum,Storenummer,Produktname,SAP Nummer,Anzahl\n"))

	rec = f.do(t, http.MethodGet, "/orders/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bestellungen.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestJSONOrdersAPI(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"store_number":"100","sap_number":"4711","quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data orders.Page `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Len(t, env.Data.Orders, 1)
	assert.Equal(t, "Mug", env.Data.Orders[0].ProductName)
	assert.Empty(t, env.Data.NextCursor)

	rec = f.do(t, http.MethodGet, "/api/v1/orders?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"store_number":"100","sap_number":"0815","quantity":1}`))
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestJSONLatestUnsupportedBySink(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/orders/latest", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestJSONCatalogAPI(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/stores", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"language":"fr"`)

	rec = f.do(t, http.MethodGet, "/api/v1/products?kind=special", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Banner")

	rec = f.do(t, http.MethodGet, "/api/v1/products?kind=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJSONMailIntentAPI(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/mail-intents", strings.NewReader(`{"store_number":"200","sap_number":"9001","quantity":2}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var env types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	data := env.Data.(map[string]any)
	assert.Equal(t, "print@example.com", data["recipient"])
	assert.Equal(t, "Order: Banner - 9001", data["subject"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/products", nil)
	f.do(t, http.MethodPost, "/products/4711/order", url.Values{"quantity": {"1"}})

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storeshop_orders_recorded_total{sink="eventlog"} 1`)
}
