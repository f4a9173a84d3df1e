package models

import "time"

// ReadState is a participant's seen cursor in a conversation. The cursor is
// a watermark: everything up to and including SeenSeq has been acknowledged.
// It never decreases and never exceeds the conversation's last sequence.
type ReadState struct {
	ConversationID int       `db:"conversation_id" json:"conversation_id"`
	UserID         int       `db:"user_id" json:"user_id"`
	SeenSeq        int64     `db:"seen_seq" json:"seen_seq"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// MutePreference suppresses notification dispatch for one participant.
// It has no effect on storage or live delivery.
type MutePreference struct {
	ConversationID int  `db:"conversation_id" json:"conversation_id"`
	UserID         int  `db:"user_id" json:"user_id"`
	Muted          bool `db:"muted" json:"muted"`
}
