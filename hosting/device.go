package hosting

import (
	"strings"

	"github.com/mileusna/useragent"
)

// deviceName derives a human-readable device description from the User-Agent
// header. Returns the empty string when nothing useful can be resolved; the
// sign-in proceeds without the device property in that case.
func deviceName(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}

	ua := useragent.Parse(userAgent)

	parts := make([]string, 0, 2)
	if ua.Device != "" {
		parts = append(parts, ua.Device)
	} else if ua.OS != "" {
		parts = append(parts, ua.OS)
	}
	if ua.Name != "" {
		parts = append(parts, ua.Name)
	}

	return strings.Join(parts, " ")
}
