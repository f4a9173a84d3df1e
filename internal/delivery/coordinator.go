package delivery

import (
	"context"
	"log"
	"unicode/utf8"

	"github.com/Godevs04/TeamTaatom-sub013/internal/models"
	"github.com/Godevs04/TeamTaatom-sub013/internal/notify"
	"github.com/Godevs04/TeamTaatom-sub013/internal/repositories"
)

const previewLimit = 120

// Bus is the live-update fan-out consumed by the coordinator. The ws.Hub
// implements it; tests substitute a recording fake.
type Bus interface {
	IsPresent(userID int) bool
	Publish(userID int, event models.LiveEvent) int
}

// Coordinator decides, after each durable mutation, between live publish and
// notification fallback. It never fails the mutation that triggered it:
// presence and queue problems degrade silently, the stored message is the
// source of truth and catch-up reconciles.
type Coordinator struct {
	bus        Bus
	readState  repositories.ReadStateRepository
	dispatcher notify.Dispatcher
}

// NewCoordinator builds a Coordinator.
func NewCoordinator(bus Bus, readState repositories.ReadStateRepository, dispatcher notify.Dispatcher) *Coordinator {
	return &Coordinator{bus: bus, readState: readState, dispatcher: dispatcher}
}

// MessageStored runs after a message is durably appended. A present recipient
// gets the event pushed before the send call returns; an absent one gets a
// push notification unless they muted the conversation.
func (c *Coordinator) MessageStored(ctx context.Context, conv models.Conversation, msg models.Message) {
	recipient := conv.PeerOf(msg.SenderID)

	if c.bus.IsPresent(recipient) {
		c.bus.Publish(recipient, models.LiveEvent{
			Type:           models.EventMessageNew,
			ConversationID: conv.ID,
			Message:        &msg,
		})
		return
	}

	muted, err := c.readState.IsMuted(ctx, conv.ID, recipient)
	if err != nil {
		// Lookup failure must not swallow the notification; treat as unmuted.
		log.Printf("mute lookup failed conversation_id=%d user_id=%d: %v", conv.ID, recipient, err)
	}
	if muted {
		return
	}

	n := notify.Notification{
		RecipientID: recipient,
		Title:       "New message",
		Body:        preview(msg),
		Data:        notify.NotificationData{ConversationID: conv.ID},
	}
	if err := c.dispatcher.Dispatch(ctx, n); err != nil {
		log.Printf("notification dispatch failed conversation_id=%d user_id=%d: %v", conv.ID, recipient, err)
	}
}

// SeenAdvanced tells the peer's live sessions the seen cursor moved. A seen
// indicator is UI-only: safe to drop when offline, the next fetch reconciles,
// so there is no notification fallback.
func (c *Coordinator) SeenAdvanced(ctx context.Context, conv models.Conversation, userID int, seenSeq int64) {
	c.bus.Publish(conv.PeerOf(userID), models.LiveEvent{
		Type:           models.EventMessageSeen,
		ConversationID: conv.ID,
		Seen:           &models.SeenPayload{UserID: userID, SeenSeq: seenSeq},
	})
}

// MuteChanged tells the peer's live sessions a mute flag flipped. Same
// UI-only contract as SeenAdvanced.
func (c *Coordinator) MuteChanged(ctx context.Context, conv models.Conversation, userID int, muted bool) {
	c.bus.Publish(conv.PeerOf(userID), models.LiveEvent{
		Type:           models.EventChatMute,
		ConversationID: conv.ID,
		Mute:           &models.MutePayload{UserID: userID, Muted: muted},
	})
}

func preview(msg models.Message) string {
	if msg.Body == "" {
		return "Sent an attachment"
	}
	if utf8.RuneCountInString(msg.Body) <= previewLimit {
		return msg.Body
	}
	runes := []rune(msg.Body)
	return string(runes[:previewLimit]) + "…"
}
