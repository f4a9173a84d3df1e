package observability

import (
	"net"
	"net/http"
	"strings"
)

// RequestMeta is the connection identity captured at the socket handshake
// and attached to session lifecycle events.
type RequestMeta struct {
	DeviceID  string
	RequestID string
	IP        string
}

// MetaFromRequest extracts the gateway-forwarded identity headers. The client
// IP prefers the first X-Forwarded-For hop over the raw peer address.
func MetaFromRequest(r *http.Request) RequestMeta {
	return RequestMeta{
		DeviceID:  r.Header.Get("X-Device-Id"),
		RequestID: r.Header.Get("X-Request-Id"),
		IP:        clientIP(r),
	}
}

func clientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
