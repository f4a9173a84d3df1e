package repositories

import "errors"

var (
	// ErrConversationNotFound is returned when no conversation exists for
	// the given id or peer.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrNotParticipant is returned when the caller is not one of the two
	// participants.
	ErrNotParticipant = errors.New("user is not a conversation participant")
	// ErrEmptyMessage is returned for a blank body with no attachments.
	ErrEmptyMessage = errors.New("message body and attachments are empty")
	// ErrSelfConversation is returned when both participant ids are equal.
	ErrSelfConversation = errors.New("cannot start a conversation with self")
)
