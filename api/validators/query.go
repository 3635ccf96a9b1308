package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/storeshop/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseCatalogKind reads the catalog kind from key, defaulting to the standard
// product list.
func ParseCatalogKind(r *http.Request, key string) (enums.CatalogKind, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	if raw == "" {
		return enums.CatalogStandard, nil
	}
	kind, err := enums.ParseCatalogKind(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid catalog kind").WithDetails(map[string]any{"field": key})
	}
	return kind, nil
}
