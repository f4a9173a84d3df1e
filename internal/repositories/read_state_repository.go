package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ReadStateRepository tracks per-participant seen cursors and mute flags.
type ReadStateRepository interface {
	MarkAllSeen(ctx context.Context, convID int, userID int) (int64, error)
	GetSeen(ctx context.Context, convID int, userID int) (int64, error)
	ToggleMuted(ctx context.Context, convID int, userID int) (bool, error)
	IsMuted(ctx context.Context, convID int, userID int) (bool, error)
}

// ReadStateRepo is a sqlx implementation of ReadStateRepository.
type ReadStateRepo struct {
	db *sqlx.DB
}

// NewReadStateRepo constructs a ReadStateRepo.
func NewReadStateRepo(db *sqlx.DB) *ReadStateRepo {
	return &ReadStateRepo{db: db}
}

// MarkAllSeen advances the user's seen cursor to the conversation's last
// sequence and returns the new cursor. GREATEST keeps the cursor monotonic
// under racing calls, and sourcing the target from the conversation row keeps
// it from ever exceeding last_message_seq.
func (r *ReadStateRepo) MarkAllSeen(ctx context.Context, convID int, userID int) (int64, error) {
	var seenSeq int64
	err := r.db.QueryRowxContext(ctx, `INSERT INTO read_states (conversation_id, user_id, seen_seq)
        SELECT id, $2, last_message_seq FROM conversations WHERE id=$1
        ON CONFLICT (conversation_id, user_id)
        DO UPDATE SET seen_seq = GREATEST(read_states.seen_seq, EXCLUDED.seen_seq), updated_at = NOW()
        RETURNING seen_seq`, convID, userID).Scan(&seenSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrConversationNotFound
	}
	return seenSeq, err
}

// GetSeen returns the user's seen cursor; zero when never marked. Either
// participant may read the other's cursor for seen indicators.
func (r *ReadStateRepo) GetSeen(ctx context.Context, convID int, userID int) (int64, error) {
	var seenSeq int64
	err := r.db.GetContext(ctx, &seenSeq, `SELECT seen_seq FROM read_states WHERE conversation_id=$1 AND user_id=$2`, convID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return seenSeq, err
}

// ToggleMuted flips the user's mute flag in a single statement and returns
// the resulting state. The row lock serializes concurrent toggles, so each
// call flips exactly once instead of racing a read against a write.
func (r *ReadStateRepo) ToggleMuted(ctx context.Context, convID int, userID int) (bool, error) {
	var muted bool
	err := r.db.QueryRowxContext(ctx, `INSERT INTO mute_prefs (conversation_id, user_id, muted) VALUES ($1, $2, TRUE)
        ON CONFLICT (conversation_id, user_id) DO UPDATE SET muted = NOT mute_prefs.muted
        RETURNING muted`, convID, userID).Scan(&muted)
	return muted, err
}

// IsMuted reports the user's mute flag; unmuted when never set.
func (r *ReadStateRepo) IsMuted(ctx context.Context, convID int, userID int) (bool, error) {
	var muted bool
	err := r.db.GetContext(ctx, &muted, `SELECT muted FROM mute_prefs WHERE conversation_id=$1 AND user_id=$2`, convID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return muted, err
}
