package validators

import (
	"net/url"
	"strings"
)

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// SafeReturnPath accepts only local absolute paths so redirects cannot leave
// the site; anything else yields fallback.
func SafeReturnPath(raw, fallback string) string {
	candidate := SanitizeString(raw, 256)
	if candidate == "" || !strings.HasPrefix(candidate, "/") || strings.HasPrefix(candidate, "//") || strings.Contains(candidate, `\`) {
		return fallback
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return u.Path
}
