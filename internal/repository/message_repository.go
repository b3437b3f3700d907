package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projectk/projectk-backend/internal/model"
)

const messageColumns = `id, session_id, user_id, subject, user_message, bot_response, bot_type, is_error, seq, timestamp`

// MessageRepository handles the append-only message log.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Append stores a message pair. Appends to one session are serialized by
// locking the session row, so seq is gap-free and strictly increasing. The
// timestamp is taken after the lock, so it never runs backwards against seq.
func (r *MessageRepository) Append(ctx context.Context, m *model.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	if err := tx.QueryRow(ctx,
		`SELECT id FROM chat_sessions WHERE id = $1 FOR UPDATE`, m.SessionID,
	).Scan(&locked); err != nil {
		return notFound(err)
	}

	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE session_id = $1`, m.SessionID,
	).Scan(&m.Seq); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO messages (session_id, user_id, subject, user_message, bot_response, bot_type, is_error, seq, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, clock_timestamp())
		 RETURNING id, timestamp`,
		m.SessionID, m.UserID, m.Subject, m.UserMessage, m.BotResponse, m.BotType, m.IsError, m.Seq,
	).Scan(&m.ID, &m.Timestamp); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return tx.Commit(ctx)
}

// ListBySession retrieves a session's messages in insertion order.
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Message, error) {
	return r.list(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE session_id = $1 ORDER BY seq`, sessionID)
}

// ListByUserSubject retrieves every message a user exchanged on a subject,
// across all of their sessions, in insertion order.
func (r *MessageRepository) ListByUserSubject(ctx context.Context, userID uuid.UUID, subject model.Subject) ([]model.Message, error) {
	return r.list(ctx,
		`SELECT `+messageColumns+`
		 FROM messages
		 WHERE user_id = $1 AND subject = $2
		 ORDER BY timestamp, seq`, userID, subject)
}

// Recent retrieves the last limit messages of a session, oldest first.
func (r *MessageRepository) Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]model.Message, error) {
	return r.list(ctx,
		`SELECT `+messageColumns+` FROM (
			SELECT `+messageColumns+` FROM messages
			WHERE session_id = $1
			ORDER BY seq DESC
			LIMIT $2
		 ) recent ORDER BY seq`, sessionID, limit)
}

func (r *MessageRepository) list(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]model.Message, error) {
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserID, &m.Subject, &m.UserMessage, &m.BotResponse, &m.BotType, &m.IsError, &m.Seq, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
