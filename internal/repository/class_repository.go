package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/projectk/projectk-backend/internal/model"
)

const classColumns = `c.id, c.teacher_id, c.name, c.subject, c.grade_level, c.join_code, c.created_at,
	COALESCE((SELECT array_agg(cs.student_id ORDER BY cs.joined_at) FROM class_students cs WHERE cs.class_id = c.id), '{}')`

// ClassRepository handles classroom and enrollment data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

func scanClass(row rowScanner) (*model.ClassRoom, error) {
	c := &model.ClassRoom{}
	err := row.Scan(&c.ID, &c.TeacherID, &c.Name, &c.Subject, &c.GradeLevel, &c.JoinCode, &c.CreatedAt, &c.StudentIDs)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// Create inserts a new class. A join code collision returns ErrDuplicateJoinCode.
func (r *ClassRepository) Create(ctx context.Context, c *model.ClassRoom) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (teacher_id, name, subject, grade_level, join_code)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		c.TeacherID, c.Name, c.Subject, c.GradeLevel, c.JoinCode,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateJoinCode
		}
		return err
	}
	if c.StudentIDs == nil {
		c.StudentIDs = []uuid.UUID{}
	}
	return nil
}

// GetByID retrieves a class with its enrolled student IDs.
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ClassRoom, error) {
	return scanClass(r.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes c WHERE c.id = $1`, id))
}

// GetByJoinCode retrieves a class by its join code.
func (r *ClassRepository) GetByJoinCode(ctx context.Context, code string) (*model.ClassRoom, error) {
	return scanClass(r.pool.QueryRow(ctx,
		`SELECT `+classColumns+` FROM classes c WHERE c.join_code = $1`, code))
}

// ListByTeacher retrieves every class owned by a teacher, newest first.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.ClassRoom, error) {
	return r.list(ctx,
		`SELECT `+classColumns+` FROM classes c WHERE c.teacher_id = $1 ORDER BY c.created_at DESC`, teacherID)
}

// ListByStudent retrieves every class a student is enrolled in.
func (r *ClassRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ClassRoom, error) {
	return r.list(ctx,
		`SELECT `+classColumns+`
		 FROM classes c
		 JOIN class_students m ON m.class_id = c.id
		 WHERE m.student_id = $1
		 ORDER BY m.joined_at DESC`, studentID)
}

func (r *ClassRepository) list(ctx context.Context, query string, args ...any) ([]model.ClassRoom, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.ClassRoom{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *c)
	}
	return classes, rows.Err()
}

// AddStudent enrolls a student. Returns ErrAlreadyEnrolled on a repeat join.
func (r *ClassRepository) AddStudent(ctx context.Context, classID, studentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO class_students (class_id, student_id) VALUES ($1, $2)`,
		classID, studentID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyEnrolled
		}
		return err
	}
	return nil
}

// ListStudents retrieves the enrolled students of a class ordered by name.
func (r *ClassRepository) ListStudents(ctx context.Context, classID uuid.UUID) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.email, u.name, u.password_hash, u.user_type, u.grade_level, u.subjects, u.school_name, u.created_at, u.updated_at
		 FROM users u
		 JOIN class_students m ON m.student_id = u.id
		 WHERE m.class_id = $1
		 ORDER BY u.name`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *u)
	}
	return students, rows.Err()
}
