package observability

import (
	"net"
	"net/http"
	"strings"
)

// RequestIDHeader carries a proxy-assigned id that ties webhook logs to the edge.
const RequestIDHeader = "X-Request-Id"

// RequestIDFromRequest returns the proxy-assigned request id, or "" when the
// webhook came in without one.
func RequestIDFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(RequestIDHeader))
}

// IPFromRequest names the peer that delivered a webhook. Behind a proxy the
// first X-Forwarded-For hop wins, then X-Real-Ip, then the socket address.
func IPFromRequest(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
