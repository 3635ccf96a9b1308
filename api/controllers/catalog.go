package controllers

import (
	"net/http"

	"github.com/angelmondragon/storeshop/api/responses"
	"github.com/angelmondragon/storeshop/api/validators"
	"github.com/angelmondragon/storeshop/internal/catalog"
	"github.com/angelmondragon/storeshop/pkg/logger"
)

type storeView struct {
	catalog.Store
	Language string `json:"language"`
}

// ListStores returns the stores of the active catalog.
func ListStores(cat CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stores := cat.Current().Stores
		out := make([]storeView, 0, len(stores))
		for _, s := range stores {
			out = append(out, storeView{Store: s, Language: s.DefaultLanguage()})
		}
		responses.WriteSuccess(w, out)
	}
}

// ListProducts returns one product list; ?kind=standard|special.
func ListProducts(cat CatalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := validators.ParseCatalogKind(r, "kind")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products := cat.Current().Products(kind)
		if products == nil {
			products = []catalog.Product{}
		}
		responses.WriteSuccess(w, products)
	}
}
