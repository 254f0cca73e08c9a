package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/welldanyogia/postoffice/internal/logger"
)

const bufferSize = 1024

// fallbackOrigin is the local web client used when no origins are configured
const fallbackOrigin = "http://localhost:3000"

// NewSecureUpgrader creates an upgrader that accepts requests without an
// Origin header and requests from allowedOrigins. Rejections are reported
// to security, which may be nil.
func NewSecureUpgrader(allowedOrigins []string, security *logger.SecurityLogger) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		allowed[fallbackOrigin] = struct{}{}
	}

	return newUpgrader(func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		if security != nil {
			security.InvalidOrigin(r.RemoteAddr, origin)
		}
		return false
	})
}

// DefaultUpgrader accepts every origin. The router only uses it in
// development when no origins are configured.
func DefaultUpgrader() websocket.Upgrader {
	return newUpgrader(func(*http.Request) bool { return true })
}

func newUpgrader(check func(*http.Request) bool) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin:     check,
		ReadBufferSize:  bufferSize,
		WriteBufferSize: bufferSize,
	}
}
