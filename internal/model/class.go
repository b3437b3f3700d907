package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassRoom is a teacher-owned class. StudentIDs is a non-owning membership list.
type ClassRoom struct {
	ID         uuid.UUID   `json:"id"`
	TeacherID  uuid.UUID   `json:"teacher_id"`
	Name       string      `json:"name"`
	Subject    Subject     `json:"subject"`
	GradeLevel string      `json:"grade_level"`
	JoinCode   string      `json:"join_code"`
	StudentIDs []uuid.UUID `json:"student_ids"`
	CreatedAt  time.Time   `json:"created_at"`
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name       string  `json:"name" binding:"required,min=2,max=100"`
	Subject    Subject `json:"subject" binding:"required,subject"`
	GradeLevel string  `json:"grade_level" binding:"required,max=20"`
}

// JoinClassRequest is the payload a student sends to enroll.
type JoinClassRequest struct {
	JoinCode string `json:"join_code" binding:"required,len=6,alphanum"`
}
