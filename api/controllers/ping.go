package controllers

import (
	"net/http"

	"github.com/angelmondragon/storeshop/api/responses"
	"github.com/angelmondragon/storeshop/internal/session"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "public", "status": "ok"}
		if store := session.FromContext(r.Context()).StoreNumber; store != "" {
			payload["store_number"] = store
		}
		responses.WriteSuccess(w, payload)
	}
}
