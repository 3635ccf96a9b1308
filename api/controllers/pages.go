package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storeshop/api/responses"
	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/internal/orders"
	"github.com/angelmondragon/storeshop/internal/render"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/angelmondragon/storeshop/pkg/i18n"
	"github.com/angelmondragon/storeshop/pkg/logger"
)

// CatalogReader exposes the active catalog and the outcome of its last load.
type CatalogReader interface {
	Current() *catalog.Catalog
	LastError() error
}

// Pages bundles what the HTML handlers need.
type Pages struct {
	Catalog    CatalogReader
	Translator *i18n.Translator
	Renderer   *render.Renderer
	Sessions   session.Store
	Images     render.ImageResolver
	Columns    int
}

// ProductsPage renders the standard or special product grid for the session's
// store.
func ProductsPage(p Pages, kind enums.CatalogKind, logg *logger.Logger) http.HandlerFunc {
	path := render.PathProducts
	if kind.EmailMode() {
		path = render.PathSpecialProducts
	}
	return func(w http.ResponseWriter, r *http.Request) {
		cat := p.Catalog.Current()
		sess := takeFlash(w, r, p.Sessions, logg)

		layout := newLayout(p, sess, cat, path)
		grid := render.BuildGrid(cat.Products(kind), p.Columns, kind.EmailMode(), sess, layout.T, p.Images)

		writePage(w, r, p.Renderer, render.PageProducts, render.ProductsPage{
			Layout:    layout,
			EmailMode: kind.EmailMode(),
			Grid:      grid,
		}, logg)
	}
}

// OrdersPage renders every order of the event log.
func OrdersPage(p Pages, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat := p.Catalog.Current()
		sess := takeFlash(w, r, p.Sessions, logg)

		layout := newLayout(p, sess, cat, render.PathOrders)
		list, err := svc.List(r.Context())
		if err != nil {
			logg.WarnErr(r.Context(), "orders.list_failed", err)
			layout.Errors = append(layout.Errors, responses.PublicMessage(err))
		}

		writePage(w, r, p.Renderer, render.PageOrders, render.OrdersPage{Layout: layout, Orders: list}, logg)
	}
}

func newLayout(p Pages, sess session.Context, cat *catalog.Catalog, path string) render.Layout {
	layout := render.NewLayout(p.Translator, sess, cat, path)
	layout.Flash = sess.Flash
	for _, err := range multierr.Errors(p.Catalog.LastError()) {
		layout.Errors = append(layout.Errors, responses.PublicMessage(err))
	}
	return layout
}

// takeFlash consumes the pending flash message. The returned context still
// carries it so the page can show it once.
func takeFlash(w http.ResponseWriter, r *http.Request, store session.Store, logg *logger.Logger) session.Context {
	sess := session.FromContext(r.Context())
	if sess.Flash != "" {
		_, next := sess.TakeFlash()
		saveSession(w, r, store, next, logg)
	}
	return sess
}

func writePage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, page string, data any, logg *logger.Logger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderer.Render(w, page, data); err != nil {
		logg.Error(r.Context(), "page.render_failed", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func saveSession(w http.ResponseWriter, r *http.Request, store session.Store, sess session.Context, logg *logger.Logger) {
	if err := store.Save(w, r, sess); err != nil {
		logg.WarnErr(r.Context(), "session.save_failed", err)
	}
}
