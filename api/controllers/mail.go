package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storeshop/api/responses"
	"github.com/angelmondragon/storeshop/api/validators"
	"github.com/angelmondragon/storeshop/internal/notifications"
	"github.com/angelmondragon/storeshop/internal/render"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/enums"
	"github.com/angelmondragon/storeshop/pkg/logger"
)

// SubmitMail handles the quantity form of a special product card by sending
// the browser to the composed mailto URI. Nothing is persisted.
func SubmitMail(p Pages, dispatcher notifications.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.FromContext(ctx)
		sap := chi.URLParam(r, "sap")

		req := notifications.Request{StoreNumber: sess.StoreNumber, SAPNumber: sap}
		err := validators.ParseForm(w, r)
		if err == nil {
			req.Quantity, err = validators.FormQuantity(r, "quantity")
		}
		var intent notifications.MailIntent
		if err == nil {
			intent, err = dispatcher.Prepare(ctx, req)
		}

		if err != nil {
			logg.WarnErr(logg.WithField(ctx, "sap_number", sap), "mail.rejected", err)
			saveSession(w, r, p.Sessions, sess.WithFlash(responses.PublicMessage(err)), logg)
			redirect(w, r, render.PathSpecialProducts)
			return
		}

		saveSession(w, r, p.Sessions, sess.Acknowledge(enums.CatalogSpecial, sap), logg)
		redirect(w, r, intent.URI)
	}
}

// CreateMailIntent composes a mail intent from a JSON body.
func CreateMailIntent(dispatcher notifications.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notifications.Request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		intent, err := dispatcher.Prepare(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}
