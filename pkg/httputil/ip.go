package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address of the client that sent r. With trustProxy,
// X-Forwarded-For (first entry) and X-Real-IP take precedence over
// RemoteAddr; only enable it behind a proxy that sets those headers.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
