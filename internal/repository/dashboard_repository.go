package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projectk/projectk-backend/internal/model"
)

// DashboardRepository reads the raw activity behind the progress widgets.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// StudentActivity collects message counts, active days, recent messages and
// practice totals for one user. Practice totals count each test once, scored
// by its latest submission.
func (r *DashboardRepository) StudentActivity(ctx context.Context, userID uuid.UUID, recentLimit int) (*model.StudentActivity, error) {
	a := &model.StudentActivity{MessagesBySubject: make(map[model.Subject]int)}

	rows, err := r.pool.Query(ctx,
		`SELECT subject, COUNT(*) FROM messages WHERE user_id = $1 GROUP BY subject`, userID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var subject model.Subject
		var count int
		if err := rows.Scan(&subject, &count); err != nil {
			rows.Close()
			return nil, err
		}
		a.MessagesBySubject[subject] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT DISTINCT (timestamp AT TIME ZONE 'UTC')::date AS day
		 FROM messages WHERE user_id = $1
		 ORDER BY day DESC`, userID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			rows.Close()
			return nil, err
		}
		a.ActiveDays = append(a.ActiveDays, day)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT `+messageColumns+`
		 FROM messages WHERE user_id = $1
		 ORDER BY timestamp DESC, seq DESC
		 LIMIT $2`, userID, recentLimit)
	if err != nil {
		return nil, err
	}
	if a.Recent, err = collectMessages(rows); err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(correct), 0)
		 FROM (
		   SELECT DISTINCT ON (test_id) correct
		   FROM practice_submissions
		   WHERE user_id = $1
		   ORDER BY test_id, created_at DESC
		 ) latest`, userID,
	).Scan(&a.PracticeTests, &a.PracticeCorrect)
	if err != nil {
		return nil, err
	}

	return a, nil
}
