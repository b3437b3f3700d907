package model

import (
	"time"

	"github.com/google/uuid"
)

// UserType is the role a user registered with.
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeTeacher UserType = "teacher"
)

// User is a student or teacher account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	UserType     UserType  `json:"user_type"`
	GradeLevel   string    `json:"grade_level,omitempty"`
	Subjects     []Subject `json:"subjects"`
	SchoolName   string    `json:"school_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email      string    `json:"email" binding:"required,email,max=255"`
	Password   string    `json:"password" binding:"required,min=6,max=128"`
	Name       string    `json:"name" binding:"required,min=2,max=100"`
	UserType   UserType  `json:"user_type" binding:"required,oneof=student teacher"`
	GradeLevel string    `json:"grade_level" binding:"omitempty,max=20"`
	Subjects   []Subject `json:"subjects" binding:"omitempty,max=9,dive,subject"`
	SchoolName string    `json:"school_name" binding:"omitempty,max=200"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=128"`
}

// UpdateProfileRequest is the payload for editing profile attributes.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Name       *string   `json:"name" binding:"omitempty,min=2,max=100"`
	GradeLevel *string   `json:"grade_level" binding:"omitempty,max=20"`
	Subjects   []Subject `json:"subjects" binding:"omitempty,max=9,dive,subject"`
	SchoolName *string   `json:"school_name" binding:"omitempty,max=200"`
}
