package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Godevs04/TeamTaatom-sub013/internal/models"
	"github.com/Godevs04/TeamTaatom-sub013/internal/observability"
)

// Hub is the process-local presence registry: userID to the set of that
// user's live sessions. It doubles as the live-update bus. Presence is
// transient truth, rebuilt from nothing on restart.
type Hub struct {
	sessions map[int]map[*Session]bool
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[int]map[*Session]bool)}
}

// Register adds a session to its user's live set. Idempotent per session.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.UserID]; !ok {
		h.sessions[s.UserID] = make(map[*Session]bool)
	}
	h.sessions[s.UserID][s] = true
}

// Unregister removes a session on disconnect or heartbeat timeout.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.sessions[s.UserID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.sessions, s.UserID)
		}
	}
}

// IsPresent reports whether the user has at least one live session.
func (h *Hub) IsPresent(userID int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID]) > 0
}

// SessionsFor returns a snapshot of the user's live sessions.
func (h *Hub) SessionsFor(userID int) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Session, 0, len(h.sessions[userID]))
	for s := range h.sessions[userID] {
		out = append(out, s)
	}
	return out
}

// Publish fans the event out to every live session of the user and returns
// the number of sessions it was handed to. No sessions means no-op: the
// delivery coordinator owns the offline fallback. Delivery per session is
// fire-and-forget; a session that cannot accept the payload is evicted and
// durable catch-up closes the gap on its next connect.
func (h *Hub) Publish(userID int, event models.LiveEvent) int {
	sessions := h.SessionsFor(userID)
	if len(sessions) == 0 {
		return 0
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("live event marshal failed: %v", err)
		return 0
	}

	delivered := 0
	for _, s := range sessions {
		if err := s.Send(payload); err != nil {
			log.Printf("live delivery failed user_id=%d session=%s: %v", userID, s.ID, err)
			h.Unregister(s)
			h.publishSessionError(s, err)
			continue
		}
		delivered++
		observability.IncWSEvent("session", event.Type)
	}
	return delivered
}

func (h *Hub) publishSessionError(s *Session, err error) {
	headers := observability.BuildHeaders(s.RequestID, s.TraceID)
	envelope := observability.NewEnvelope("ws_events", "ws_error", sessionEventPayload(s, "ws_error", time.Since(s.ConnectedAt), err.Error()))
	_ = observability.PublishEvent(context.Background(), "ws_events.sessions", envelope, headers)
	observability.IncWSEvent("session", "ws_error")
}

func sessionEventPayload(s *Session, event string, duration time.Duration, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     s.ID,
			"duration_ms": duration.Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   s.UserID,
			"device_id": s.DeviceID,
			"ip":        s.IP,
		},
	}
}
