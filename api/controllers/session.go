package controllers

import (
	"net/http"

	"github.com/angelmondragon/storeshop/api/responses"
	"github.com/angelmondragon/storeshop/api/validators"
	"github.com/angelmondragon/storeshop/internal/render"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/logger"
)

const storeNotFoundMessage = "Storenummer nicht gefunden."

// SelectStore switches the session's store. The store's default language is
// re-applied even when the user picked another language before.
func SelectStore(p Pages, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		back := render.PathProducts

		if err := validators.ParseForm(w, r); err != nil {
			sess = sess.WithFlash(responses.PublicMessage(err))
		} else {
			back = validators.SafeReturnPath(validators.FormValue(r, "return_to"), render.PathProducts)
			number := validators.FormValue(r, "store_number")
			if store, ok := p.Catalog.Current().Store(number); ok {
				sess = sess.SelectStore(store)
				logg.Info(logg.WithStoreNumber(r.Context(), store.Number), "session.store_selected")
			} else {
				sess = sess.WithFlash(storeNotFoundMessage)
			}
		}

		saveSession(w, r, p.Sessions, sess, logg)
		redirect(w, r, back)
	}
}

// SelectLanguage overrides the session language; unknown codes resolve to the
// closest supported language.
func SelectLanguage(p Pages, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		back := render.PathProducts

		if err := validators.ParseForm(w, r); err == nil {
			back = validators.SafeReturnPath(validators.FormValue(r, "return_to"), render.PathProducts)
			sess = sess.SetLanguage(p.Translator.Normalize(validators.FormValue(r, "language")))
		}

		saveSession(w, r, p.Sessions, sess, logg)
		redirect(w, r, back)
	}
}
