package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projectk/projectk-backend/internal/model"
)

const userColumns = `id, email, name, password_hash, user_type, grade_level, subjects, school_name, created_at, updated_at`

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	var subjects []string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.UserType, &u.GradeLevel, &subjects, &u.SchoolName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	u.Subjects = toSubjects(subjects)
	return u, nil
}

// Create inserts a new user. The email is stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, user_type, grade_level, subjects, school_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		u.Email, u.Name, u.PasswordHash, u.UserType, u.GradeLevel, fromSubjects(u.Subjects), u.SchoolName,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email)))
}

// UpdateProfile writes the profile attributes of u.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET name = $1, grade_level = $2, subjects = $3, school_name = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING updated_at`,
		u.Name, u.GradeLevel, fromSubjects(u.Subjects), u.SchoolName, u.ID,
	).Scan(&u.UpdatedAt)
	return notFound(err)
}

func toSubjects(in []string) []model.Subject {
	out := make([]model.Subject, 0, len(in))
	for _, s := range in {
		out = append(out, model.Subject(s))
	}
	return out
}

func fromSubjects(in []model.Subject) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}
