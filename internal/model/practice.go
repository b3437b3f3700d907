package model

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty of a practice test.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionSource records where a practice test's questions came from.
type QuestionSource string

const (
	QuestionSourceAI   QuestionSource = "ai"
	QuestionSourceBank QuestionSource = "question_bank"
)

// PracticeQuestion is a single multiple-choice question.
type PracticeQuestion struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// PracticeTest is a generated test owned by one user. RequestedCount is the
// question_count asked for; a question bank test can hold fewer questions.
type PracticeTest struct {
	ID             uuid.UUID          `json:"test_id"`
	UserID         uuid.UUID          `json:"user_id"`
	Subject        Subject            `json:"subject"`
	Topic          string             `json:"topic"`
	Difficulty     Difficulty         `json:"difficulty"`
	Source         QuestionSource     `json:"source"`
	Questions      []PracticeQuestion `json:"questions"`
	RequestedCount int                `json:"requested_count"`
	CreatedAt      time.Time          `json:"created_at"`
}

// QuestionForStudent is a question without its answer, sent before submission.
type QuestionForStudent struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"question_text"`
	Options []string `json:"options"`
}

// PracticeTestForStudent hides correct answers and explanations.
type PracticeTestForStudent struct {
	ID             uuid.UUID            `json:"test_id"`
	Subject        Subject              `json:"subject"`
	Topic          string               `json:"topic"`
	Difficulty     Difficulty           `json:"difficulty"`
	Source         QuestionSource       `json:"source"`
	Questions      []QuestionForStudent `json:"questions"`
	RequestedCount int                  `json:"requested_count"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ForStudent strips answers from the test.
func (t *PracticeTest) ForStudent() PracticeTestForStudent {
	qs := make([]QuestionForStudent, 0, len(t.Questions))
	for _, q := range t.Questions {
		qs = append(qs, QuestionForStudent{ID: q.ID, Prompt: q.Prompt, Options: q.Options})
	}
	return PracticeTestForStudent{
		ID:             t.ID,
		Subject:        t.Subject,
		Topic:          t.Topic,
		Difficulty:     t.Difficulty,
		Source:         t.Source,
		Questions:      qs,
		RequestedCount: t.RequestedCount,
		CreatedAt:      t.CreatedAt,
	}
}

// QuestionResult is the per-question grading outcome.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
}

// Submission is a graded attempt at a practice test.
type Submission struct {
	ID        uuid.UUID         `json:"submission_id"`
	TestID    uuid.UUID         `json:"test_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Answers   map[string]string `json:"answers"`
	Correct   int               `json:"correct"`
	Total     int               `json:"total"`
	Score     float64           `json:"score"`
	Results   []QuestionResult  `json:"results"`
	CreatedAt time.Time         `json:"created_at"`
}

// GeneratePracticeRequest is the payload for POST /api/practice/generate.
type GeneratePracticeRequest struct {
	Subject       Subject    `json:"subject" binding:"required,subject"`
	Topic         string     `json:"topic" binding:"required,min=1,max=100"`
	Difficulty    Difficulty `json:"difficulty" binding:"required,oneof=easy medium hard"`
	QuestionCount int        `json:"question_count" binding:"omitempty,min=5,max=20"`
}

// SubmitPracticeRequest is the payload for POST /api/practice/submit.
type SubmitPracticeRequest struct {
	TestID  string            `json:"test_id" binding:"required,uuid"`
	Answers map[string]string `json:"answers" binding:"required"`
}
