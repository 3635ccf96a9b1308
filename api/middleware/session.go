package middleware

import (
	"errors"
	"net/http"

	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/internal/session"
	"github.com/angelmondragon/storeshop/pkg/logger"
)

// CatalogSource exposes the active catalog snapshot.
type CatalogSource interface {
	Current() *catalog.Catalog
}

// Session loads the browser session, falls back to the first store when none
// is selected yet and exposes the result through session.FromContext.
func Session(store session.Store, cat CatalogSource, logg *logger.Logger) func(http.Handler) http.Handler {
	if logg == nil {
		logg = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, err := store.Load(r)
			if err != nil {
				if !errors.Is(err, session.ErrInvalidSession) {
					logg.Error(ctx, "session.load_failed", err)
				} else {
					logg.WarnErr(ctx, "session.reset", err)
				}
				sess = session.Context{}
			}

			ensured := sess.EnsureStore(cat.Current())
			if ensured.StoreNumber != sess.StoreNumber || err != nil {
				if saveErr := store.Save(w, r, ensured); saveErr != nil {
					logg.WarnErr(ctx, "session.save_failed", saveErr)
				}
			}
			if ensured.StoreNumber != "" {
				ctx = logg.WithStoreNumber(ctx, ensured.StoreNumber)
			}
			ctx = logg.WithField(ctx, "session_state", ensured.State().String())

			ctx = session.WithContext(ctx, ensured)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
