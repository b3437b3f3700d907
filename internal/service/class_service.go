package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/repository"
)

const (
	joinCodeLength   = 6
	joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	joinCodeAttempts = 5
)

// ClassService handles classroom business logic.
type ClassService struct {
	repo ClassRepository
}

// NewClassService creates a new ClassService.
func NewClassService(repo ClassRepository) *ClassService {
	return &ClassService{repo: repo}
}

// Create creates a class owned by teacherID with a fresh join code.
// A join code collision is retried with a new code.
func (s *ClassService) Create(ctx context.Context, teacherID uuid.UUID, req *model.CreateClassRequest) (*model.ClassRoom, error) {
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, err
		}

		c := &model.ClassRoom{
			TeacherID:  teacherID,
			Name:       req.Name,
			Subject:    req.Subject,
			GradeLevel: req.GradeLevel,
			JoinCode:   code,
		}
		err = s.repo.Create(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, repository.ErrDuplicateJoinCode) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("create class: no free join code after %d attempts", joinCodeAttempts)
}

// ListByTeacher returns summaries of the teacher's classes.
func (s *ClassService) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.ClassSummary, error) {
	classes, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return summarize(classes), nil
}

// GetForTeacher returns a class owned by teacherID. Classes of other
// teachers are reported as not found.
func (s *ClassService) GetForTeacher(ctx context.Context, teacherID, classID uuid.UUID) (*model.ClassRoom, error) {
	c, err := s.repo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.TeacherID != teacherID {
		return nil, ErrNotFound
	}
	return c, nil
}

// ListStudents returns the students enrolled in a class owned by teacherID.
func (s *ClassService) ListStudents(ctx context.Context, teacherID, classID uuid.UUID) ([]model.User, error) {
	if _, err := s.GetForTeacher(ctx, teacherID, classID); err != nil {
		return nil, err
	}
	return s.repo.ListStudents(ctx, classID)
}

// Join enrolls a student in the class identified by code.
func (s *ClassService) Join(ctx context.Context, studentID uuid.UUID, code string) (*model.ClassSummary, error) {
	c, err := s.repo.GetByJoinCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.repo.AddStudent(ctx, c.ID, studentID); err != nil {
		if errors.Is(err, repository.ErrAlreadyEnrolled) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}
	c.StudentIDs = append(c.StudentIDs, studentID)

	summary := summarize([]model.ClassRoom{*c})[0]
	return &summary, nil
}

// ListByStudent returns the classes a student is enrolled in.
func (s *ClassService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ClassSummary, error) {
	classes, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return summarize(classes), nil
}

func summarize(classes []model.ClassRoom) []model.ClassSummary {
	out := make([]model.ClassSummary, 0, len(classes))
	for _, c := range classes {
		out = append(out, model.ClassSummary{
			ID:           c.ID,
			Name:         c.Name,
			Subject:      c.Subject,
			GradeLevel:   c.GradeLevel,
			JoinCode:     c.JoinCode,
			StudentCount: len(c.StudentIDs),
		})
	}
	return out
}

func generateJoinCode() (string, error) {
	size := big.NewInt(int64(len(joinCodeAlphabet)))
	b := make([]byte, joinCodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		b[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}
