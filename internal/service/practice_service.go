package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/llm"
	"github.com/projectk/projectk-backend/internal/metrics"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/repository"
	"github.com/projectk/projectk-backend/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultQuestionCount is used when a generate request omits question_count.
const DefaultQuestionCount = 5

const practicePromptTemplate = `Create a multiple-choice practice test for a middle or high school student.
Subject: %s
Topic: %s
Difficulty: %s
Number of questions: %d

Respond with JSON only, in this exact shape:
{"questions": [{"question_text": "...", "options": ["...", "...", "...", "..."], "correct_answer": "...", "explanation": "..."}]}
Each question must have exactly four options and correct_answer must be identical to one of them.`

// PracticeService generates and grades practice tests.
type PracticeService struct {
	repo     PracticeRepository
	client   llm.Client
	timeout  time.Duration
	fallback bool
	log      zerolog.Logger
}

// NewPracticeService creates a new PracticeService. A nil client means
// every test comes from the question bank.
func NewPracticeService(repo PracticeRepository, client llm.Client, timeout time.Duration, fallback bool, log zerolog.Logger) *PracticeService {
	return &PracticeService{
		repo:     repo,
		client:   client,
		timeout:  timeout,
		fallback: fallback,
		log:      log.With().Str("component", "practice_service").Logger(),
	}
}

// Generate creates a test from model output, falling back to the question
// bank. The bank serves at most what it holds for the subject, so a bank
// test can be shorter than RequestedCount. ErrUpstreamUnavailable means
// neither source produced questions.
func (s *PracticeService) Generate(ctx context.Context, userID uuid.UUID, req *model.GeneratePracticeRequest) (*model.PracticeTest, error) {
	count := req.QuestionCount
	if count == 0 {
		count = DefaultQuestionCount
	}

	test := &model.PracticeTest{
		UserID:         userID,
		Subject:        req.Subject,
		Topic:          strings.TrimSpace(req.Topic),
		Difficulty:     req.Difficulty,
		RequestedCount: count,
	}

	questions, err := s.generateWithModel(ctx, test, count)
	if err == nil {
		test.Source = model.QuestionSourceAI
		test.Questions = questions
	} else {
		s.log.Warn().Err(err).Str("subject", string(req.Subject)).Msg("Model practice generation failed")

		if s.fallback {
			test.Questions = bankQuestions(req.Subject, req.Difficulty, count)
		}
		if len(test.Questions) == 0 {
			return nil, ErrUpstreamUnavailable
		}
		if len(test.Questions) < count {
			s.log.Info().
				Str("subject", string(req.Subject)).
				Int("requested", count).
				Int("served", len(test.Questions)).
				Msg("Question bank is smaller than the requested count")
		}
		test.Source = model.QuestionSourceBank
	}

	for i := range test.Questions {
		test.Questions[i].ID = fmt.Sprintf("q%d", i+1)
	}

	if err := s.repo.CreateTest(ctx, test); err != nil {
		return nil, fmt.Errorf("store test: %w", err)
	}
	metrics.PracticeTestsGenerated.WithLabelValues(string(test.Source)).Inc()
	return test, nil
}

// GetTest returns a test owned by userID.
func (s *PracticeService) GetTest(ctx context.Context, userID, testID uuid.UUID) (*model.PracticeTest, error) {
	t, err := s.repo.GetTest(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrNotFound
	}
	return t, nil
}

// Submit grades answers against a test owned by userID and stores the result.
func (s *PracticeService) Submit(ctx context.Context, userID, testID uuid.UUID, answers map[string]string) (*model.Submission, error) {
	t, err := s.GetTest(ctx, userID, testID)
	if err != nil {
		return nil, err
	}

	sub, err := Grade(t, answers)
	if err != nil {
		return nil, err
	}
	sub.UserID = userID

	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}
	return sub, nil
}

// Grade scores answers against test by exact match. It has no side effects,
// so grading the same answers twice yields the same submission. Answers for
// question IDs that are not in the test are a *FieldError.
func Grade(test *model.PracticeTest, answers map[string]string) (*model.Submission, error) {
	known := make(map[string]struct{}, len(test.Questions))
	for _, q := range test.Questions {
		known[q.ID] = struct{}{}
	}

	unknown := make(map[string]string)
	for id := range answers {
		if _, ok := known[id]; !ok {
			unknown["answers."+id] = "unknown question id"
		}
	}
	if len(unknown) > 0 {
		return nil, &FieldError{Fields: unknown}
	}

	sub := &model.Submission{
		TestID:  test.ID,
		Answers: answers,
		Total:   len(test.Questions),
		Results: make([]model.QuestionResult, 0, len(test.Questions)),
	}
	for _, q := range test.Questions {
		answer := answers[q.ID]
		correct := answer == q.CorrectAnswer
		if correct {
			sub.Correct++
		}
		sub.Results = append(sub.Results, model.QuestionResult{
			QuestionID:    q.ID,
			Answer:        answer,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       correct,
			Explanation:   q.Explanation,
		})
	}
	if sub.Total > 0 {
		sub.Score = float64(sub.Correct) / float64(sub.Total)
	}
	return sub, nil
}

func (s *PracticeService) generateWithModel(ctx context.Context, test *model.PracticeTest, count int) ([]model.PracticeQuestion, error) {
	if s.client == nil {
		return nil, errModelNotConfigured
	}

	ctx, span := tracing.Tracer.Start(ctx, "practice.generate")
	span.SetAttributes(
		attribute.String("practice.subject", string(test.Subject)),
		attribute.Int("practice.question_count", count),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.Complete(ctx, llm.Request{
		Prompt: fmt.Sprintf(practicePromptTemplate, test.Subject, test.Topic, test.Difficulty, count),
		JSON:   true,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return ParseGeneratedQuestions(raw, count)
}

// ParseGeneratedQuestions decodes model output into exactly count questions.
// It accepts {"questions": [...]} or a bare array, optionally inside a
// markdown code fence. Fewer than count usable questions is an error.
func ParseGeneratedQuestions(raw string, count int) ([]model.PracticeQuestion, error) {
	body := stripCodeFence(raw)

	var generated []model.PracticeQuestion
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &generated); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
	} else {
		var envelope struct {
			Questions []model.PracticeQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(body), &envelope); err != nil {
			return nil, fmt.Errorf("decode questions: %w", err)
		}
		generated = envelope.Questions
	}

	out := make([]model.PracticeQuestion, 0, count)
	for _, q := range generated {
		if len(out) == count {
			break
		}
		if !usableQuestion(q) {
			continue
		}
		out = append(out, model.PracticeQuestion{
			Prompt:        strings.TrimSpace(q.Prompt),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   strings.TrimSpace(q.Explanation),
		})
	}
	if len(out) < count {
		return nil, fmt.Errorf("model returned %d usable questions, want %d", len(out), count)
	}
	return out, nil
}

func usableQuestion(q model.PracticeQuestion) bool {
	if strings.TrimSpace(q.Prompt) == "" || len(q.Options) < 2 {
		return false
	}
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return true
		}
	}
	return false
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
