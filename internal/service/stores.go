package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/model"
)

// UserRepository is the persistence the user and auth flows depend on.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, u *model.User) error
}

// ClassRepository stores classrooms and their enrollments.
type ClassRepository interface {
	Create(ctx context.Context, c *model.ClassRoom) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ClassRoom, error)
	GetByJoinCode(ctx context.Context, code string) (*model.ClassRoom, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.ClassRoom, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ClassRoom, error)
	AddStudent(ctx context.Context, classID, studentID uuid.UUID) error
	ListStudents(ctx context.Context, classID uuid.UUID) ([]model.User, error)
}

// ChatSessionRepository stores chat sessions.
type ChatSessionRepository interface {
	Create(ctx context.Context, s *model.ChatSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ChatSession, error)
	GetLatest(ctx context.Context, userID uuid.UUID, subject model.Subject) (*model.ChatSession, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ChatSession, error)
}

// MessageRepository is the append-only message log.
type MessageRepository interface {
	Append(ctx context.Context, m *model.Message) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Message, error)
	ListByUserSubject(ctx context.Context, userID uuid.UUID, subject model.Subject) ([]model.Message, error)
	Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]model.Message, error)
}

// PracticeRepository stores practice tests and submissions.
type PracticeRepository interface {
	CreateTest(ctx context.Context, t *model.PracticeTest) error
	GetTest(ctx context.Context, id uuid.UUID) (*model.PracticeTest, error)
	CreateSubmission(ctx context.Context, s *model.Submission) error
}

// DashboardRepository reads raw student activity.
type DashboardRepository interface {
	StudentActivity(ctx context.Context, userID uuid.UUID, recentLimit int) (*model.StudentActivity, error)
}

// TokenSessionStore tracks live access tokens by JTI.
type TokenSessionStore interface {
	Save(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error
	Owner(ctx context.Context, jti string) (uuid.UUID, error)
	Delete(ctx context.Context, jti string) error
}

// ActivityPublisher queues chat activity for the activity worker.
type ActivityPublisher interface {
	Publish(ctx context.Context, ev model.ActivityEvent) error
}
