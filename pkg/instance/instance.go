package instance

import (
	"os"

	"github.com/angelmondragon/storeshop/pkg/env"
)

// ID identifies this process in logs: STORESHOP_INSTANCE_ID, then the
// platform's DYNO name, then the hostname.
func ID() string {
	if id := env.Get("INSTANCE_ID", env.Get("DYNO", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
