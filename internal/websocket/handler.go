package websocket

import (
	"net/http"
	"strings"

	ws "github.com/coder/websocket"
	"go.uber.org/zap"
)

// HandleEvents upgrades the request and subscribes the connection to the hub
func HandleEvents(hub *Hub, allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: OriginPatterns(allowedOrigins),
		})
		if err != nil {
			hub.logger.Warn("Websocket accept failed", zap.Error(err))
			return
		}

		NewClient(hub, conn).Run(r.Context())
	}
}

// OriginPatterns converts CORS origins ("http://localhost:5173") to host patterns
func OriginPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		out = append(out, o)
	}
	return out
}
