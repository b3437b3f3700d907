package model

import (
	"time"

	"github.com/google/uuid"
)

// StudentActivity is the raw material the dashboard aggregator works from.
type StudentActivity struct {
	MessagesBySubject map[Subject]int
	// ActiveDays holds distinct UTC calendar days with at least one message.
	ActiveDays      []time.Time
	Recent          []Message
	PracticeTests   int
	PracticeCorrect int
}

// ActivityItem is one entry of a student's recent activity feed.
type ActivityItem struct {
	Subject   Subject   `json:"subject"`
	BotType   BotType   `json:"bot_type"`
	Preview   string    `json:"preview"`
	Timestamp time.Time `json:"timestamp"`
}

// StudentDashboard is the payload of GET /api/dashboard for students.
type StudentDashboard struct {
	SubjectsStudied        int             `json:"subjects_studied"`
	Subjects               []Subject       `json:"subjects"`
	TotalMessages          int             `json:"total_messages"`
	StudyStreak            int             `json:"study_streak"`
	TotalXP                int             `json:"total_xp"`
	RecentActivity         []ActivityItem  `json:"recent_activity"`
	MessagesBySubject      map[Subject]int `json:"messages_by_subject"`
	PracticeTestsCompleted int             `json:"practice_tests_completed"`
}

// ClassSummary is a class row on the teacher dashboard.
type ClassSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Subject      Subject   `json:"subject"`
	GradeLevel   string    `json:"grade_level"`
	JoinCode     string    `json:"join_code"`
	StudentCount int       `json:"student_count"`
}

// TeacherDashboard is the payload of the teacher dashboard.
type TeacherDashboard struct {
	Classes       []ClassSummary `json:"classes"`
	TotalClasses  int            `json:"total_classes"`
	TotalStudents int            `json:"total_students"`
}
