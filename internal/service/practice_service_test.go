package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/llm"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generatedJSON(n int) string {
	qs := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, fmt.Sprintf(
			`{"question_text":"Q%d?","options":["a%d","b%d","c%d","d%d"],"correct_answer":"b%d","explanation":"because %d"}`,
			i, i, i, i, i, i, i))
	}
	return `{"questions":[` + strings.Join(qs, ",") + `]}`
}

func TestGenerateFromModel(t *testing.T) {
	client := &testutil.ScriptedLLM{Reply: func(req llm.Request) (string, error) {
		return generatedJSON(6), nil
	}}
	f := newFixture(t, client)
	u := f.register(t, "p1@example.com", model.UserTypeStudent)

	test, err := f.practice.Generate(context.Background(), u.ID, &model.GeneratePracticeRequest{
		Subject: model.SubjectChemistry, Topic: " Bonding ", Difficulty: model.DifficultyMedium, QuestionCount: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, model.QuestionSourceAI, test.Source)
	assert.Equal(t, "Bonding", test.Topic)
	require.Len(t, test.Questions, 5)
	assert.Equal(t, "q1", test.Questions[0].ID)
	assert.Equal(t, "q5", test.Questions[4].ID)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].JSON)
	assert.Contains(t, calls[0].Prompt, "Number of questions: 5")

	view := test.ForStudent()
	require.Len(t, view.Questions, 5)
	assert.Equal(t, "Q1?", view.Questions[0].Prompt)
}

func TestGenerateFallsBackToBank(t *testing.T) {
	for name, reply := range map[string]func(llm.Request) (string, error){
		"malformed":  func(llm.Request) (string, error) { return "Sure! Here is your quiz...", nil },
		"incomplete": func(llm.Request) (string, error) { return generatedJSON(2), nil },
		"upstream":   func(llm.Request) (string, error) { return "", errors.New("quota exceeded") },
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, &testutil.ScriptedLLM{Reply: reply})
			u := f.register(t, "p2@example.com", model.UserTypeStudent)

			test, err := f.practice.Generate(context.Background(), u.ID, &model.GeneratePracticeRequest{
				Subject: model.SubjectMath, Topic: "Algebra", Difficulty: model.DifficultyHard,
			})
			require.NoError(t, err)
			assert.Equal(t, model.QuestionSourceBank, test.Source)
			require.Len(t, test.Questions, DefaultQuestionCount)
			assert.Equal(t, "What are the roots of x² - 5x + 6 = 0?", test.Questions[0].Prompt)
		})
	}
}

func TestGenerateWithoutBankOrModelIsUpstreamUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	u := f.register(t, "p3@example.com", model.UserTypeStudent)

	_, err := f.practice.Generate(context.Background(), u.ID, &model.GeneratePracticeRequest{
		Subject: model.SubjectMindfulness, Topic: "Breathing", Difficulty: model.DifficultyEasy,
	})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestBankTestReportsRequestedCount(t *testing.T) {
	f := newFixture(t, nil)
	u := f.register(t, "p4@example.com", model.UserTypeStudent)

	test, err := f.practice.Generate(context.Background(), u.ID, &model.GeneratePracticeRequest{
		Subject: model.SubjectMath, Topic: "Everything", Difficulty: model.DifficultyEasy, QuestionCount: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, model.QuestionSourceBank, test.Source)
	assert.Equal(t, 20, test.RequestedCount)
	assert.Len(t, test.Questions, len(questionBank[model.SubjectMath]))

	stored, err := f.practice.GetTest(context.Background(), u.ID, test.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.ForStudent().RequestedCount)
}

func TestEveryBankSubjectCoversDefaultCount(t *testing.T) {
	for _, s := range model.SchoolSubjects {
		for _, d := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
			qs := bankQuestions(s, d, DefaultQuestionCount)
			assert.Len(t, qs, DefaultQuestionCount, "%s/%s", s, d)
			for _, q := range qs {
				assert.True(t, usableQuestion(q), q.Prompt)
			}
		}
	}
}

func TestSubmitGradesAndIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.register(t, "p4@example.com", model.UserTypeStudent)

	test, err := f.practice.Generate(ctx, u.ID, &model.GeneratePracticeRequest{
		Subject: model.SubjectMath, Topic: "Arithmetic", Difficulty: model.DifficultyEasy,
	})
	require.NoError(t, err)

	answers := map[string]string{
		"q1": test.Questions[0].CorrectAnswer,
		"q2": test.Questions[1].CorrectAnswer,
		"q3": "definitely wrong",
	}

	first, err := f.practice.Submit(ctx, u.ID, test.ID, answers)
	require.NoError(t, err)
	second, err := f.practice.Submit(ctx, u.ID, test.ID, answers)
	require.NoError(t, err)

	assert.Equal(t, 2, first.Correct)
	assert.Equal(t, 5, first.Total)
	assert.InDelta(t, 0.4, first.Score, 1e-9)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, "", first.Results[3].Answer)
	assert.False(t, first.Results[3].Correct)
	assert.Len(t, f.stores.Practice.Submissions, 2)
}

func TestSubmitUnknownQuestionIsFieldError(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.register(t, "p5@example.com", model.UserTypeStudent)
	test, err := f.practice.Generate(ctx, u.ID, &model.GeneratePracticeRequest{
		Subject: model.SubjectBiology, Topic: "Cells", Difficulty: model.DifficultyEasy,
	})
	require.NoError(t, err)

	_, err = f.practice.Submit(ctx, u.ID, test.ID, map[string]string{"q1": "x", "q99": "y"})

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, map[string]string{"answers.q99": "unknown question id"}, fe.Fields)
	assert.Empty(t, f.stores.Practice.Submissions)
}

func TestSubmitOtherUsersTestIsNotFound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.register(t, "p6@example.com", model.UserTypeStudent)
	other := f.register(t, "p7@example.com", model.UserTypeStudent)
	test, err := f.practice.Generate(ctx, owner.ID, &model.GeneratePracticeRequest{
		Subject: model.SubjectHistory, Topic: "WWII", Difficulty: model.DifficultyMedium,
	})
	require.NoError(t, err)

	_, err = f.practice.Submit(ctx, other.ID, test.ID, map[string]string{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.practice.GetTest(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseGeneratedQuestions(t *testing.T) {
	fenced := "```json\n[" +
		`{"question_text":"A?","options":["1","2"],"correct_answer":"2"},` +
		`{"question_text":"","options":["1","2"],"correct_answer":"2"},` +
		`{"question_text":"B?","options":["x","y"],"correct_answer":"z"},` +
		`{"question_text":"C?","options":["x","y"],"correct_answer":"x"}` +
		"]\n```"

	qs, err := ParseGeneratedQuestions(fenced, 2)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "A?", qs[0].Prompt)
	assert.Equal(t, "C?", qs[1].Prompt)

	_, err = ParseGeneratedQuestions(fenced, 3)
	assert.Error(t, err)

	_, err = ParseGeneratedQuestions(`{"questions": "nope"}`, 1)
	assert.Error(t, err)
}
