package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storeshop/api/controllers"
	"github.com/angelmondragon/storeshop/api/middleware"
	"github.com/angelmondragon/storeshop/internal/notifications"
	"github.com/angelmondragon/storeshop/internal/orders"
	"github.com/angelmondragon/storeshop/internal/render"
	"github.com/angelmondragon/storeshop/pkg/config"
	"github.com/angelmondragon/storeshop/pkg/db"
	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/angelmondragon/storeshop/pkg/logger"
)

// NewRouter wires every route of the shop. cachePinger and gatherer may be nil.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cachePinger db.Pinger,
	gatherer prometheus.Gatherer,
	pages controllers.Pages,
	ordersSvc orders.Service,
	dispatcher notifications.Dispatcher,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cachePinger, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	if cfg.App.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.App.StaticDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.App.CORSOrigins))
		r.Get("/stores", controllers.ListStores(pages.Catalog))
		r.Get("/products", controllers.ListProducts(pages.Catalog, logg))
		r.Get("/orders", controllers.ListOrders(ordersSvc, logg))
		r.Get("/orders/latest", controllers.LatestOrders(ordersSvc, logg))
		r.Post("/orders", controllers.CreateOrder(ordersSvc, logg))
		r.Post("/mail-intents", controllers.CreateMailIntent(dispatcher, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(pages.Sessions, pages.Catalog, logg))

		r.Get("/api/public/ping", controllers.PublicPing())

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, render.PathProducts, http.StatusFound)
		})
		r.Get(render.PathProducts, controllers.ProductsPage(pages, enums.CatalogStandard, logg))
		r.Get(render.PathSpecialProducts, controllers.ProductsPage(pages, enums.CatalogSpecial, logg))
		r.Get(render.PathOrders, controllers.OrdersPage(pages, ordersSvc, logg))

		r.Post("/session/store", controllers.SelectStore(pages, logg))
		r.Post("/session/language", controllers.SelectLanguage(pages, logg))

		r.Post(render.PathProducts+"/{sap}/order", controllers.SubmitOrder(pages, ordersSvc, logg))
		r.Post(render.PathSpecialProducts+"/{sap}/mail", controllers.SubmitMail(pages, dispatcher, logg))

		r.Get(render.PathOrders+"/export.csv", controllers.ExportOrdersCSV(ordersSvc, logg))
		r.Get(render.PathOrders+"/export.xlsx", controllers.ExportOrdersXLSX(ordersSvc, logg))
	})

	return r
}
