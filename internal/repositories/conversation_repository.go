package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Godevs04/TeamTaatom-sub013/internal/models"
)

// CanonicalPair orders two participant ids so the unordered pair maps to a
// single conversation row regardless of who initiates.
func CanonicalPair(userID, peerID int) (int, int) {
	if peerID < userID {
		return peerID, userID
	}
	return userID, peerID
}

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	CreateOrGetConversation(ctx context.Context, userID int, peerID int) (models.Conversation, error)
	GetConversation(ctx context.Context, convID int) (models.Conversation, error)
	GetConversationWithPeer(ctx context.Context, userID int, peerID int) (models.Conversation, error)
	IsParticipant(ctx context.Context, convID int, userID int) (bool, error)
	ListConversations(ctx context.Context, userID int) ([]models.ConversationSummary, error)
	ClearConversation(ctx context.Context, convID int, userID int) error
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

const conversationColumns = `id, user_a, user_b, last_message_seq, last_message_at, created_at`

// CreateOrGetConversation returns the conversation for the pair, creating it
// lazily on first contact. Idempotent, and safe when both sides send their
// first message at the same time: the upsert re-reads the winning row.
func (r *ConversationRepo) CreateOrGetConversation(ctx context.Context, userID int, peerID int) (models.Conversation, error) {
	if userID == peerID {
		return models.Conversation{}, ErrSelfConversation
	}
	userA, userB := CanonicalPair(userID, peerID)

	var conv models.Conversation
	query := `INSERT INTO conversations (user_a, user_b) VALUES ($1, $2)
        ON CONFLICT (user_a, user_b) DO UPDATE SET user_a = EXCLUDED.user_a
        RETURNING ` + conversationColumns
	err := r.db.GetContext(ctx, &conv, query, userA, userB)
	return conv, err
}

// GetConversation fetches a conversation by id.
func (r *ConversationRepo) GetConversation(ctx context.Context, convID int) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, convID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// GetConversationWithPeer fetches the conversation between the user and peer,
// if one exists.
func (r *ConversationRepo) GetConversationWithPeer(ctx context.Context, userID int, peerID int) (models.Conversation, error) {
	if userID == peerID {
		return models.Conversation{}, ErrSelfConversation
	}
	userA, userB := CanonicalPair(userID, peerID)

	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE user_a=$1 AND user_b=$2`, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// IsParticipant checks whether a user belongs to the conversation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, convID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM conversations WHERE id=$1 AND (user_a=$2 OR user_b=$2))`, convID, userID)
	return exists, err
}

// ListConversations returns the user's conversations with unread counts
// derived from their seen cursor, most recent activity first. Clearing does
// not affect the peer's unread math, only what the clearer can read back.
func (r *ConversationRepo) ListConversations(ctx context.Context, userID int) ([]models.ConversationSummary, error) {
	query := `SELECT c.id,
            CASE WHEN c.user_a=$1 THEN c.user_b ELSE c.user_a END AS peer_id,
            c.last_message_seq,
            c.last_message_at,
            COALESCE(rs.seen_seq, 0) AS seen_seq,
            c.last_message_seq - COALESCE(rs.seen_seq, 0) AS unread_count,
            COALESCE(mp.muted, FALSE) AS muted
        FROM conversations c
        LEFT JOIN read_states rs ON rs.conversation_id = c.id AND rs.user_id = $1
        LEFT JOIN mute_prefs mp ON mp.conversation_id = c.id AND mp.user_id = $1
        WHERE c.user_a=$1 OR c.user_b=$1
        ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC`
	var result []models.ConversationSummary
	err := r.db.SelectContext(ctx, &result, query, userID)
	return result, err
}

// ClearConversation hides everything up to now for the requesting participant
// only. Messages stay stored and fully visible to the peer.
func (r *ConversationRepo) ClearConversation(ctx context.Context, convID int, userID int) error {
	member, err := r.IsParticipant(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotParticipant
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO conversation_clears (conversation_id, user_id, cleared_at) VALUES ($1, $2, NOW())
        ON CONFLICT (conversation_id, user_id) DO UPDATE SET cleared_at = NOW()`, convID, userID)
	return err
}
