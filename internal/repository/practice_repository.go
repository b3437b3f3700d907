package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projectk/projectk-backend/internal/model"
)

// PracticeRepository handles practice tests and their submissions.
// Questions, answers and results are stored as JSONB documents.
type PracticeRepository struct {
	pool *pgxpool.Pool
}

// NewPracticeRepository creates a new PracticeRepository.
func NewPracticeRepository(pool *pgxpool.Pool) *PracticeRepository {
	return &PracticeRepository{pool: pool}
}

// CreateTest inserts a generated test.
func (r *PracticeRepository) CreateTest(ctx context.Context, t *model.PracticeTest) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO practice_tests (user_id, subject, topic, difficulty, source, questions, requested_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		t.UserID, t.Subject, t.Topic, t.Difficulty, t.Source, questions, t.RequestedCount,
	).Scan(&t.ID, &t.CreatedAt)
}

// GetTest retrieves a test including its correct answers.
func (r *PracticeRepository) GetTest(ctx context.Context, id uuid.UUID) (*model.PracticeTest, error) {
	t := &model.PracticeTest{}
	var questions []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, subject, topic, difficulty, source, questions, requested_count, created_at
		 FROM practice_tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.Subject, &t.Topic, &t.Difficulty, &t.Source, &questions, &t.RequestedCount, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return t, nil
}

// CreateSubmission stores a graded submission.
func (r *PracticeRepository) CreateSubmission(ctx context.Context, s *model.Submission) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	results, err := json.Marshal(s.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO practice_submissions (test_id, user_id, answers, correct, total, score, results)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		s.TestID, s.UserID, answers, s.Correct, s.Total, s.Score, results,
	).Scan(&s.ID, &s.CreatedAt)
}
