package ws

import (
	"encoding/json"
	"testing"

	"github.com/Godevs04/TeamTaatom-sub013/internal/models"
)

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	session := NewSession(1, nil)

	hub.Register(session)
	if !hub.IsPresent(1) {
		t.Fatalf("expected user 1 to be present")
	}

	hub.Unregister(session)
	if hub.IsPresent(1) {
		t.Fatalf("expected user 1 to be absent after unregister")
	}
	if len(hub.sessions) != 0 {
		t.Fatalf("expected empty user entry to be removed")
	}
}

func TestHubRegisterIsIdempotentPerSession(t *testing.T) {
	hub := NewHub()
	session := NewSession(1, nil)

	hub.Register(session)
	hub.Register(session)
	if got := len(hub.SessionsFor(1)); got != 1 {
		t.Fatalf("expected 1 session, got %d", got)
	}
}

func TestHubPublishFansOutToAllSessions(t *testing.T) {
	hub := NewHub()
	first := NewSession(1, nil)
	second := NewSession(1, nil)
	hub.Register(first)
	hub.Register(second)

	event := models.LiveEvent{Type: models.EventMessageNew, ConversationID: 5}
	if delivered := hub.Publish(1, event); delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}

	for _, session := range []*Session{first, second} {
		select {
		case payload := <-session.send:
			var got models.LiveEvent
			if err := json.Unmarshal(payload, &got); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			if got.Type != models.EventMessageNew || got.ConversationID != 5 {
				t.Fatalf("unexpected event %+v", got)
			}
		default:
			t.Fatalf("expected payload enqueued for session %s", session.ID)
		}
	}
}

func TestHubPublishToAbsentUserIsNoop(t *testing.T) {
	hub := NewHub()

	if delivered := hub.Publish(42, models.LiveEvent{Type: models.EventMessageNew}); delivered != 0 {
		t.Fatalf("expected 0 deliveries, got %d", delivered)
	}
}

func TestHubPublishDoesNotCrossUsers(t *testing.T) {
	hub := NewHub()
	mine := NewSession(1, nil)
	theirs := NewSession(2, nil)
	hub.Register(mine)
	hub.Register(theirs)

	hub.Publish(1, models.LiveEvent{Type: models.EventMessageSeen, ConversationID: 9})

	select {
	case <-theirs.send:
		t.Fatalf("event leaked to another user's session")
	default:
	}
	select {
	case <-mine.send:
	default:
		t.Fatalf("expected event for user 1")
	}
}
