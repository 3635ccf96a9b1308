package controllers

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storeshop/api/responses"
	"github.com/angelmondragon/storeshop/api/validators"
	"github.com/angelmondragon/storeshop/internal/orders"
	"github.com/angelmondragon/storeshop/internal/render"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/angelmondragon/storeshop/pkg/logger"
	"github.com/angelmondragon/storeshop/pkg/pagination"
)

const exportBaseName = "bestellungen"

// SubmitOrder handles the quantity form of a standard product card. Failures
// are shown on the next page render; success acknowledges the card.
func SubmitOrder(p Pages, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)
		sap := chi.URLParam(r, "sap")

		input := orders.Input{StoreNumber: sess.StoreNumber, SAPNumber: sap}
		err := validators.ParseForm(w, r)
		if err == nil {
			input.Quantity, err = validators.FormQuantity(r, "quantity")
		}
		if err == nil {
			_, err = svc.Record(ctx, input)
		}

		if err != nil {
			logg.WarnErr(logg.WithField(ctx, "sap_number", sap), "order.rejected", err)
			sess = sess.WithFlash(responses.PublicMessage(err))
		} else {
			sess = sess.Acknowledge(enums.CatalogStandard, sap)
		}
		saveSession(w, r, p.Sessions, sess, logg)
		redirect(w, r, render.PathProducts)
	}
}

// ExportOrdersCSV streams the event log as bestellungen.csv.
func ExportOrdersCSV(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return exportOrders(svc, logg, "text/csv; charset=utf-8", ".csv", orders.WriteCSV)
}

// ExportOrdersXLSX streams the event log as bestellungen.xlsx.
func ExportOrdersXLSX(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return exportOrders(svc, logg, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx", orders.WriteXLSX)
}

func exportOrders(svc orders.Service, logg *logger.Logger, contentType, ext string, encode func(io.Writer, []orders.Order) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var buf bytes.Buffer
		if err := encode(&buf, list); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+exportBaseName+ext+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

// ListOrders pages through the event log; ?limit=&cursor=.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.Page(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// LatestOrders returns the current quantity per store and SAP number.
func LatestOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cells, err := svc.Latest(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if cells == nil {
			cells = []orders.Cell{}
		}
		responses.WriteSuccess(w, cells)
	}
}

// CreateOrder records an order from a JSON body.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input orders.Input
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
