package models

import (
	"time"

	"github.com/lib/pq"
)

// Message is one entry in a conversation's log. Seq is assigned by the
// storage layer and is strictly increasing and gapless per conversation.
// Messages are immutable once stored.
type Message struct {
	ID             int            `db:"id" json:"id"`
	ConversationID int            `db:"conversation_id" json:"conversation_id"`
	SenderID       int            `db:"sender_id" json:"sender_id"`
	Seq            int64          `db:"seq" json:"seq"`
	Body           string         `db:"body" json:"body"`
	Attachments    pq.StringArray `db:"attachments" json:"attachments"`
	ClientToken    *string        `db:"client_token" json:"-"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}
