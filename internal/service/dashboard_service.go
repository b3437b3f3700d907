package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/model"
)

const (
	recentActivityLimit = 5
	previewLength       = 80

	xpPerMessage       = 10
	xpPerPracticeTest  = 25
	xpPerCorrectAnswer = 5
)

// DashboardService recomputes the progress widgets on every request.
type DashboardService struct {
	activity DashboardRepository
	classes  ClassRepository
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(activity DashboardRepository, classes ClassRepository) *DashboardService {
	return &DashboardService{activity: activity, classes: classes, now: time.Now}
}

// ForStudent builds the student dashboard.
func (s *DashboardService) ForStudent(ctx context.Context, userID uuid.UUID) (*model.StudentDashboard, error) {
	a, err := s.activity.StudentActivity(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	d := &model.StudentDashboard{
		Subjects:               []model.Subject{},
		RecentActivity:         make([]model.ActivityItem, 0, len(a.Recent)),
		MessagesBySubject:      make(map[model.Subject]int, len(a.MessagesBySubject)),
		PracticeTestsCompleted: a.PracticeTests,
	}

	for subject, n := range a.MessagesBySubject {
		if n == 0 {
			continue
		}
		d.MessagesBySubject[subject] = n
		d.Subjects = append(d.Subjects, subject)
		d.TotalMessages += n
	}
	sort.Slice(d.Subjects, func(i, j int) bool { return d.Subjects[i] < d.Subjects[j] })
	d.SubjectsStudied = len(d.Subjects)

	for _, m := range a.Recent {
		d.RecentActivity = append(d.RecentActivity, model.ActivityItem{
			Subject:   m.Subject,
			BotType:   m.BotType,
			Preview:   preview(m.UserMessage),
			Timestamp: m.Timestamp,
		})
	}

	d.StudyStreak = StudyStreak(a.ActiveDays, s.now())
	d.TotalXP = TotalXP(d.TotalMessages, a.PracticeTests, a.PracticeCorrect)
	return d, nil
}

// ForTeacher builds the teacher dashboard over the classes the teacher owns.
func (s *DashboardService) ForTeacher(ctx context.Context, teacherID uuid.UUID) (*model.TeacherDashboard, error) {
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	students := make(map[uuid.UUID]struct{})
	for _, c := range classes {
		for _, id := range c.StudentIDs {
			students[id] = struct{}{}
		}
	}

	return &model.TeacherDashboard{
		Classes:       summarize(classes),
		TotalClasses:  len(classes),
		TotalStudents: len(students),
	}, nil
}

// StudyStreak counts consecutive UTC calendar days with activity, ending today
// or, when nothing happened today yet, ending yesterday.
func StudyStreak(activeDays []time.Time, now time.Time) int {
	if len(activeDays) == 0 {
		return 0
	}

	days := make(map[time.Time]struct{}, len(activeDays))
	for _, d := range activeDays {
		days[utcDay(d)] = struct{}{}
	}

	cursor := utcDay(now)
	if _, ok := days[cursor]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[cursor]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

// TotalXP is the experience score shown on the student dashboard.
func TotalXP(messages, practiceTests, correctAnswers int) int {
	return messages*xpPerMessage + practiceTests*xpPerPracticeTest + correctAnswers*xpPerCorrectAnswer
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength]) + "..."
}
