package validators

import (
	"net/http"

	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
	"github.com/angelmondragon/storeshop/pkg/numfmt"
)

const maxFormBytes = 64 << 10

// ParseForm bounds and parses a urlencoded form body.
func ParseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	return nil
}

// FormValue returns the trimmed form field key.
func FormValue(r *http.Request, key string) string {
	return SanitizeString(r.PostFormValue(key), 256)
}

// FormQuantity parses the quantity field as a positive whole number.
func FormQuantity(r *http.Request, key string) (int, error) {
	q, err := numfmt.Quantity(r.PostFormValue(key))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quantity").WithDetails(map[string]any{"field": key})
	}
	return q, nil
}
