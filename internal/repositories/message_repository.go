package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Godevs04/TeamTaatom-sub013/internal/models"
)

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	AppendMessage(ctx context.Context, convID int, senderID int, body string, attachments []string, clientToken string) (models.Message, error)
	ListMessages(ctx context.Context, convID int, userID int, afterSeq int64, limit int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, conversation_id, sender_id, seq, body, attachments, client_token, created_at`

// AppendMessage stores a message with the next sequence number. The sequence
// is taken from a single UPDATE ... RETURNING on the conversation row inside
// the same transaction as the insert: the row lock serializes concurrent
// senders, so sequences come out strictly increasing with no gaps. An
// optional clientToken makes retries idempotent: a second append carrying the
// same token returns the already-stored message.
func (r *MessageRepo) AppendMessage(ctx context.Context, convID int, senderID int, body string, attachments []string, clientToken string) (models.Message, error) {
	if strings.TrimSpace(body) == "" && len(attachments) == 0 {
		return models.Message{}, ErrEmptyMessage
	}

	var conv models.Conversation
	if err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, convID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Message{}, ErrConversationNotFound
		}
		return models.Message{}, err
	}
	if !conv.HasParticipant(senderID) {
		return models.Message{}, ErrNotParticipant
	}

	if clientToken != "" {
		msg, err := r.getByClientToken(ctx, convID, senderID, clientToken)
		if err == nil {
			return msg, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.Message{}, err
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowxContext(ctx, `UPDATE conversations
        SET last_message_seq = last_message_seq + 1, last_message_at = NOW()
        WHERE id=$1
        RETURNING last_message_seq`, convID).Scan(&seq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Message{}, ErrConversationNotFound
		}
		return models.Message{}, err
	}

	var token *string
	if clientToken != "" {
		token = &clientToken
	}
	var msg models.Message
	err = tx.QueryRowxContext(ctx, `INSERT INTO messages (conversation_id, sender_id, seq, body, attachments, client_token)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+messageColumns, convID, senderID, seq, body, pq.Array(attachments), token).
		StructScan(&msg)
	if err != nil {
		// A concurrent retry with the same token lost the race on the
		// partial unique index; hand back the message that won.
		if isUniqueViolation(err) && clientToken != "" {
			_ = tx.Rollback()
			return r.awaitClientToken(ctx, convID, senderID, clientToken)
		}
		return models.Message{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListMessages returns messages visible to the user. afterSeq >= 0 returns
// messages with seq > afterSeq in ascending order (reconnect catch-up); a
// negative afterSeq returns the most recent limit messages. The requester's
// clear horizon always applies; the peer's never does.
func (r *MessageRepo) ListMessages(ctx context.Context, convID int, userID int, afterSeq int64, limit int) ([]models.Message, error) {
	member, err := isParticipant(ctx, r.db, convID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotParticipant
	}

	const visible = `m.conversation_id=$1
        AND m.created_at > COALESCE(
            (SELECT cleared_at FROM conversation_clears WHERE conversation_id=$1 AND user_id=$2),
            'epoch'::timestamptz)`

	var msgs []models.Message
	if afterSeq >= 0 {
		query := `SELECT ` + prefixed(messageColumns) + ` FROM messages m
            WHERE ` + visible + ` AND m.seq > $3
            ORDER BY m.seq ASC LIMIT $4`
		err = r.db.SelectContext(ctx, &msgs, query, convID, userID, afterSeq, limit)
		return msgs, err
	}

	query := `SELECT ` + prefixed(messageColumns) + ` FROM messages m
        WHERE ` + visible + `
        ORDER BY m.seq DESC LIMIT $3`
	if err = r.db.SelectContext(ctx, &msgs, query, convID, userID, limit); err != nil {
		return nil, err
	}
	// Tail query runs newest-first; callers always consume ascending.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

const (
	tokenReadAttempts = 5
	tokenReadBackoff  = 20 * time.Millisecond
)

// awaitClientToken re-reads a token duplicate whose winning insert may not
// have committed yet when the unique violation surfaced.
func (r *MessageRepo) awaitClientToken(ctx context.Context, convID int, senderID int, clientToken string) (models.Message, error) {
	var lastErr error
	for attempt := 0; attempt < tokenReadAttempts; attempt++ {
		msg, err := r.getByClientToken(ctx, convID, senderID, clientToken)
		if err == nil {
			return msg, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return models.Message{}, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return models.Message{}, ctx.Err()
		case <-time.After(tokenReadBackoff):
		}
	}
	return models.Message{}, lastErr
}

func (r *MessageRepo) getByClientToken(ctx context.Context, convID int, senderID int, clientToken string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages
        WHERE conversation_id=$1 AND sender_id=$2 AND client_token=$3`, convID, senderID, clientToken)
	return msg, err
}

func isParticipant(ctx context.Context, db *sqlx.DB, convID int, userID int) (bool, error) {
	var exists bool
	err := db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM conversations WHERE id=$1 AND (user_a=$2 OR user_b=$2))`, convID, userID)
	return exists, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func prefixed(columns string) string {
	return "m." + strings.ReplaceAll(columns, ", ", ", m.")
}
