package models

import "encoding/json"

// Live channel event names. Dashboard events share the transport but are
// produced by other services and passed through opaque.
const (
	EventMessageNew  = "message:new"
	EventMessageSeen = "message:seen"
	EventChatMute    = "chat:mute"
	EventDashboard   = "dashboard:update"
)

// LiveEvent is the tagged variant pushed over a user's live connections.
// Exactly one payload field is set, matching Type.
type LiveEvent struct {
	Type           string          `json:"type"`
	ConversationID int             `json:"conversation_id,omitempty"`
	Message        *Message        `json:"message,omitempty"`
	Seen           *SeenPayload    `json:"seen,omitempty"`
	Mute           *MutePayload    `json:"mute,omitempty"`
	Dashboard      json.RawMessage `json:"dashboard,omitempty"`
}

// SeenPayload carries a seen-cursor advance for the peer's UI.
type SeenPayload struct {
	UserID  int   `json:"user_id"`
	SeenSeq int64 `json:"seen_seq"`
}

// MutePayload carries a mute toggle for the peer's UI.
type MutePayload struct {
	UserID int  `json:"user_id"`
	Muted  bool `json:"muted"`
}
