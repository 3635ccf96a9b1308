package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/angelmondragon/storeshop/api/responses"
	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
	"github.com/angelmondragon/storeshop/pkg/logger"
)

// Recoverer turns a handler panic into a 500. Browsers get the plain German
// error text, API clients the JSON envelope. Nothing is written when the
// handler already started its response.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if e, ok := v.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(v)
				}

				err := pkgerrors.Wrap(pkgerrors.CodeInternal, fmt.Errorf("panic: %v", v), "panic")
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic": fmt.Sprint(v),
						"stack": string(debug.Stack()),
					})
					logg.Error(ctx, "panic.recovered", err)
				}
				if rec.status != 0 {
					return
				}
				if wantsHTML(r) {
					http.Error(rec, responses.PublicMessage(err), http.StatusInternalServerError)
					return
				}
				responses.WriteError(ctx, nil, rec, err)
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
