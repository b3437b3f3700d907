package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projectk/projectk-backend/internal/model"
)

// ChatSessionRepository handles chat session data access.
type ChatSessionRepository struct {
	pool *pgxpool.Pool
}

// NewChatSessionRepository creates a new ChatSessionRepository.
func NewChatSessionRepository(pool *pgxpool.Pool) *ChatSessionRepository {
	return &ChatSessionRepository{pool: pool}
}

func scanSession(row rowScanner) (*model.ChatSession, error) {
	s := &model.ChatSession{}
	if err := row.Scan(&s.ID, &s.UserID, &s.Subject, &s.CreatedAt, &s.LastActive, &s.TotalMessages); err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// Create inserts a new chat session.
func (r *ChatSessionRepository) Create(ctx context.Context, s *model.ChatSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO chat_sessions (user_id, subject)
		 VALUES ($1, $2)
		 RETURNING id, created_at, last_active, total_messages`,
		s.UserID, s.Subject,
	).Scan(&s.ID, &s.CreatedAt, &s.LastActive, &s.TotalMessages)
}

// GetByID retrieves a session by ID.
func (r *ChatSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ChatSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT id, user_id, subject, created_at, last_active, total_messages
		 FROM chat_sessions WHERE id = $1`, id))
}

// GetLatest retrieves the user's most recently created session for a subject.
func (r *ChatSessionRepository) GetLatest(ctx context.Context, userID uuid.UUID, subject model.Subject) (*model.ChatSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT id, user_id, subject, created_at, last_active, total_messages
		 FROM chat_sessions
		 WHERE user_id = $1 AND subject = $2
		 ORDER BY created_at DESC
		 LIMIT 1`, userID, subject))
}

// ListByUser retrieves all sessions of a user, most recently active first.
func (r *ChatSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ChatSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, subject, created_at, last_active, total_messages
		 FROM chat_sessions
		 WHERE user_id = $1
		 ORDER BY last_active DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []model.ChatSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
