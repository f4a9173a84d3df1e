package models

import "time"

// Conversation is a private message thread between exactly two users.
// Participants are stored canonically (user_a < user_b) so the pair resolves
// to the same row regardless of who sent the first message.
type Conversation struct {
	ID             int        `db:"id" json:"id"`
	UserA          int        `db:"user_a" json:"user_a"`
	UserB          int        `db:"user_b" json:"user_b"`
	LastMessageSeq int64      `db:"last_message_seq" json:"last_message_seq"`
	LastMessageAt  *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether the user belongs to the conversation.
func (c Conversation) HasParticipant(userID int) bool {
	return c.UserA == userID || c.UserB == userID
}

// PeerOf returns the other participant.
func (c Conversation) PeerOf(userID int) int {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}

// ConversationSummary provides the API-friendly view of a conversation for
// one participant, with the unread badge derived from their seen cursor.
type ConversationSummary struct {
	ConversationID int        `db:"id" json:"conversation_id"`
	PeerID         int        `db:"peer_id" json:"peer_id"`
	LastMessageSeq int64      `db:"last_message_seq" json:"last_message_seq"`
	LastMessageAt  *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
	SeenSeq        int64      `db:"seen_seq" json:"seen_seq"`
	UnreadCount    int64      `db:"unread_count" json:"unread_count"`
	Muted          bool       `db:"muted" json:"muted"`
}
