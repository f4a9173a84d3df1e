package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"github.com/Godevs04/TeamTaatom-sub013/internal/authclient"
	"github.com/Godevs04/TeamTaatom-sub013/internal/observability"
)

// SessionHandler upgrades the live channel and tracks the session's lifetime
// in the hub. One socket per client session carries every event type for that
// user; catch-up after a gap goes through the messages endpoint with the last
// known sequence as cursor.
type SessionHandler struct {
	hub  *Hub
	auth authclient.Validator
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(hub *Hub, auth authclient.Validator) *SessionHandler {
	return &SessionHandler{hub: hub, auth: auth}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the session.
func (h *SessionHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("taatom-chat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := h.auth.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	meta := observability.MetaFromRequest(c.Request)
	session := NewSession(userID, conn)
	session.DeviceID = meta.DeviceID
	session.IP = meta.IP
	session.RequestID = meta.RequestID
	session.TraceID = span.SpanContext().TraceID().String()

	h.hub.Register(session)
	session.Start()

	observability.IncWSActive("session")
	observability.IncWSEvent("session", "ws_connect")
	h.publishLifecycle(ctx, session, "ws_connect", "")

	// The gin context is recycled once Handle returns; the goroutine keeps
	// only the traced request context.
	go func() {
		err := session.ReadLoop()

		h.hub.Unregister(session)
		session.Close(websocket.CloseNormalClosure, "")
		observability.DecWSActive("session")
		observability.IncWSEvent("session", "ws_disconnect")

		reason := ""
		if err != nil {
			reason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("session", "ws_error")
				h.publishLifecycle(ctx, session, "ws_error", reason)
			}
		}
		h.publishLifecycle(ctx, session, "ws_disconnect", reason)
	}()
}

func (h *SessionHandler) publishLifecycle(ctx context.Context, s *Session, event string, reason string) {
	headers := observability.BuildHeaders(s.RequestID, s.TraceID)
	envelope := observability.NewEnvelope("ws_events", event, sessionEventPayload(s, event, time.Since(s.ConnectedAt), reason))
	_ = observability.PublishEvent(ctx, "ws_events.sessions", envelope, headers)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	// Browser websocket clients cannot set headers; allow the query form.
	return c.Query("token")
}
