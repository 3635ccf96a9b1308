package env

import (
	"os"
	"strings"
)

// Prefix namespaces the service's own variables.
const Prefix = "STORESHOP_"

// Get returns STORESHOP_<key>, then the bare key, then fallback. Values
// are trimmed; blank counts as unset.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
