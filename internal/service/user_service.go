package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/repository"
)

// UserService handles account business logic.
type UserService struct {
	repo UserRepository
	auth *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(repo UserRepository, auth *AuthService) *UserService {
	return &UserService{repo: repo, auth: auth}
}

// Register creates a student or teacher account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	subjects := req.Subjects
	if subjects == nil {
		subjects = []model.Subject{}
	}

	u := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		UserType:     req.UserType,
		GradeLevel:   req.GradeLevel,
		Subjects:     subjects,
		SchoolName:   req.SchoolName,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields of req to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.GradeLevel != nil {
		u.GradeLevel = *req.GradeLevel
	}
	if req.Subjects != nil {
		u.Subjects = req.Subjects
	}
	if req.SchoolName != nil {
		u.SchoolName = *req.SchoolName
	}

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
