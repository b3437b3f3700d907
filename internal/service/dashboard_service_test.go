package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
}

func TestStudyStreak(t *testing.T) {
	now := day(2026, 3, 10)

	cases := []struct {
		name string
		now  time.Time
		days []time.Time
		want int
	}{
		{"no activity", now, nil, 0},
		{"today only", now, []time.Time{day(2026, 3, 10)}, 1},
		{"ending yesterday", now, []time.Time{day(2026, 3, 9), day(2026, 3, 8)}, 2},
		{"ending today with gap", now, []time.Time{day(2026, 3, 10), day(2026, 3, 9), day(2026, 3, 7)}, 2},
		{"broken two days ago", now, []time.Time{day(2026, 3, 8), day(2026, 3, 7)}, 0},
		{"duplicates", now, []time.Time{day(2026, 3, 10), day(2026, 3, 10), day(2026, 3, 9)}, 2},
		{"month boundary", day(2026, 3, 1), []time.Time{day(2026, 3, 1), day(2026, 2, 28), day(2026, 2, 27)}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StudyStreak(tc.days, tc.now))
		})
	}
}

func TestStudyStreakUsesUTCDays(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 2026-03-10 01:00 WIB is still 2026-03-09 in UTC.
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, jakarta)
	assert.Equal(t, 1, StudyStreak([]time.Time{day(2026, 3, 9)}, now))
}

func TestTotalXP(t *testing.T) {
	assert.Equal(t, 0, TotalXP(0, 0, 0))
	assert.Equal(t, 30+25*2+5*7, TotalXP(3, 2, 7))
}

func TestStudentDashboard(t *testing.T) {
	f := newFixture(t, testutil.EchoLLM(""))
	ctx := context.Background()
	u := f.register(t, "d1@example.com", model.UserTypeStudent)

	now := time.Now().UTC()
	f.stores.Messages.Now = func() time.Time { return now }

	math, _, err := f.chat.CreateSession(ctx, u.ID, model.SubjectMath, false)
	require.NoError(t, err)
	bio, _, err := f.chat.CreateSession(ctx, u.ID, model.SubjectBiology, false)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := f.chat.SendMessage(ctx, u.ID, math.ID, model.SubjectMath, "m")
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := f.chat.SendMessage(ctx, u.ID, bio.ID, model.SubjectBiology, "b")
		require.NoError(t, err)
	}

	test, err := f.practice.Generate(ctx, u.ID, &model.GeneratePracticeRequest{
		Subject: model.SubjectMath, Topic: "Basics", Difficulty: model.DifficultyEasy,
	})
	require.NoError(t, err)
	_, err = f.practice.Submit(ctx, u.ID, test.ID, map[string]string{"q1": test.Questions[0].CorrectAnswer})
	require.NoError(t, err)

	d, err := f.dash.ForStudent(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.SubjectsStudied)
	assert.Equal(t, []model.Subject{model.SubjectBiology, model.SubjectMath}, d.Subjects)
	assert.Equal(t, 7, d.TotalMessages)
	assert.Equal(t, map[model.Subject]int{model.SubjectMath: 4, model.SubjectBiology: 3}, d.MessagesBySubject)
	assert.Len(t, d.RecentActivity, 5)
	assert.Equal(t, model.SubjectBiology, d.RecentActivity[0].Subject)
	assert.Equal(t, 1, d.StudyStreak)
	assert.Equal(t, 1, d.PracticeTestsCompleted)
	assert.Equal(t, TotalXP(7, 1, 1), d.TotalXP)
}

func TestEmptyStudentDashboard(t *testing.T) {
	f := newFixture(t, nil)
	d, err := f.dash.ForStudent(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.NotNil(t, d.Subjects)
	assert.NotNil(t, d.RecentActivity)
	assert.NotNil(t, d.MessagesBySubject)
	assert.Zero(t, d.TotalXP)
	assert.Zero(t, d.StudyStreak)
}

func TestTeacherDashboard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	teacher := f.register(t, "t1@example.com", model.UserTypeTeacher)

	empty, err := f.dash.ForTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty.Classes)
	assert.Empty(t, empty.Classes)
	assert.Zero(t, empty.TotalClasses)
	assert.Zero(t, empty.TotalStudents)

	a, err := f.classes.Create(ctx, teacher.ID, &model.CreateClassRequest{Name: "Algebra I", Subject: model.SubjectMath, GradeLevel: "9th"})
	require.NoError(t, err)
	b, err := f.classes.Create(ctx, teacher.ID, &model.CreateClassRequest{Name: "Physics", Subject: model.SubjectPhysics, GradeLevel: "9th"})
	require.NoError(t, err)

	s1 := f.register(t, "st1@example.com", model.UserTypeStudent)
	s2 := f.register(t, "st2@example.com", model.UserTypeStudent)
	for _, join := range []struct {
		student uuid.UUID
		code    string
	}{{s1.ID, a.JoinCode}, {s2.ID, a.JoinCode}, {s1.ID, b.JoinCode}} {
		_, err := f.classes.Join(ctx, join.student, join.code)
		require.NoError(t, err)
	}

	d, err := f.dash.ForTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalClasses)
	assert.Equal(t, 2, d.TotalStudents)
	counts := map[string]int{}
	for _, c := range d.Classes {
		counts[c.Name] = c.StudentCount
	}
	assert.Equal(t, map[string]int{"Algebra I": 2, "Physics": 1}, counts)
}
