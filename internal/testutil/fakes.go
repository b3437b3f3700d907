// Package testutil provides in-memory stores and a scripted language model
// for service, handler and router tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/llm"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/repository"
)

// Stores bundles one of each in-memory repository, sharing data where the
// Postgres implementations share tables.
type Stores struct {
	Users     *UserRepo
	Classes   *ClassRepo
	Sessions  *ChatSessionRepo
	Messages  *MessageRepo
	Practice  *PracticeRepo
	Dashboard *DashboardRepo
	Tokens    *TokenSessions
	Activity  *ActivityQueue
}

// NewStores creates empty in-memory stores.
func NewStores() *Stores {
	users := &UserRepo{byID: map[uuid.UUID]*model.User{}}
	sessions := &ChatSessionRepo{}
	messages := &MessageRepo{sessions: sessions}
	practice := &PracticeRepo{tests: map[uuid.UUID]*model.PracticeTest{}}
	return &Stores{
		Users:     users,
		Classes:   &ClassRepo{users: users},
		Sessions:  sessions,
		Messages:  messages,
		Practice:  practice,
		Dashboard: &DashboardRepo{messages: messages, practice: practice},
		Tokens:    &TokenSessions{live: map[string]uuid.UUID{}},
		Activity:  &ActivityQueue{},
	}
}

// ─── Users ───────────────────────────────────────────────────────────

type UserRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.User
}

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) UpdateProfile(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = u.Name
	existing.GradeLevel = u.GradeLevel
	existing.Subjects = u.Subjects
	existing.SchoolName = u.SchoolName
	existing.UpdatedAt = time.Now()
	u.UpdatedAt = existing.UpdatedAt
	return nil
}

// ─── Classes ─────────────────────────────────────────────────────────

type ClassRepo struct {
	mu      sync.Mutex
	classes []*model.ClassRoom
	users   *UserRepo

	// FailCodes makes Create report a join code collision this many times.
	FailCodes int
}

func (r *ClassRepo) Create(_ context.Context, c *model.ClassRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCodes > 0 {
		r.FailCodes--
		return repository.ErrDuplicateJoinCode
	}
	for _, existing := range r.classes {
		if existing.JoinCode == c.JoinCode {
			return repository.ErrDuplicateJoinCode
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.StudentIDs = []uuid.UUID{}
	cp := *c
	r.classes = append(r.classes, &cp)
	return nil
}

func (r *ClassRepo) find(pred func(*model.ClassRoom) bool) (*model.ClassRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.classes {
		if pred(c) {
			return copyClass(c), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ClassRepo) GetByID(_ context.Context, id uuid.UUID) (*model.ClassRoom, error) {
	return r.find(func(c *model.ClassRoom) bool { return c.ID == id })
}

func (r *ClassRepo) GetByJoinCode(_ context.Context, code string) (*model.ClassRoom, error) {
	return r.find(func(c *model.ClassRoom) bool { return c.JoinCode == code })
}

func (r *ClassRepo) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]model.ClassRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.ClassRoom{}
	for _, c := range r.classes {
		if c.TeacherID == teacherID {
			out = append(out, *copyClass(c))
		}
	}
	return out, nil
}

func (r *ClassRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.ClassRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.ClassRoom{}
	for _, c := range r.classes {
		for _, id := range c.StudentIDs {
			if id == studentID {
				out = append(out, *copyClass(c))
				break
			}
		}
	}
	return out, nil
}

func (r *ClassRepo) AddStudent(_ context.Context, classID, studentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.classes {
		if c.ID != classID {
			continue
		}
		for _, id := range c.StudentIDs {
			if id == studentID {
				return repository.ErrAlreadyEnrolled
			}
		}
		c.StudentIDs = append(c.StudentIDs, studentID)
		return nil
	}
	return repository.ErrNotFound
}

func (r *ClassRepo) ListStudents(ctx context.Context, classID uuid.UUID) ([]model.User, error) {
	c, err := r.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	out := []model.User{}
	for _, id := range c.StudentIDs {
		u, err := r.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func copyClass(c *model.ClassRoom) *model.ClassRoom {
	cp := *c
	cp.StudentIDs = append([]uuid.UUID{}, c.StudentIDs...)
	return &cp
}

// ─── Chat sessions ───────────────────────────────────────────────────

type ChatSessionRepo struct {
	mu       sync.Mutex
	sessions []*model.ChatSession
}

func (r *ChatSessionRepo) Create(_ context.Context, s *model.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.LastActive = s.CreatedAt
	cp := *s
	r.sessions = append(r.sessions, &cp)
	return nil
}

func (r *ChatSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ChatSessionRepo) GetLatest(_ context.Context, userID uuid.UUID, subject model.Subject) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.sessions) - 1; i >= 0; i-- {
		s := r.sessions[i]
		if s.UserID == userID && s.Subject == subject {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ChatSessionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.ChatSession{}
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastActive.After(out[j].LastActive) })
	return out, nil
}

// Touch applies an activity event the way the activity worker does.
func (r *ChatSessionRepo) Touch(id uuid.UUID, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.ID == id {
			s.TotalMessages++
			if at.After(s.LastActive) {
				s.LastActive = at
			}
		}
	}
}

// ─── Messages ────────────────────────────────────────────────────────

type MessageRepo struct {
	mu       sync.Mutex
	messages []model.Message
	sessions *ChatSessionRepo

	// Now overrides the timestamp assigned on Append.
	Now func() time.Time
}

func (r *MessageRepo) Append(ctx context.Context, m *model.Message) error {
	if _, err := r.sessions.GetByID(ctx, m.SessionID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seq := 0
	for _, existing := range r.messages {
		if existing.SessionID == m.SessionID && existing.Seq > seq {
			seq = existing.Seq
		}
	}
	m.ID = uuid.New()
	m.Seq = seq + 1
	m.Timestamp = time.Now()
	if r.Now != nil {
		m.Timestamp = r.Now()
	}
	r.messages = append(r.messages, *m)
	return nil
}

func (r *MessageRepo) filter(pred func(model.Message) bool) []model.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Message{}
	for _, m := range r.messages {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}

func (r *MessageRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.Message, error) {
	return r.filter(func(m model.Message) bool { return m.SessionID == sessionID }), nil
}

func (r *MessageRepo) ListByUserSubject(_ context.Context, userID uuid.UUID, subject model.Subject) ([]model.Message, error) {
	return r.filter(func(m model.Message) bool { return m.UserID == userID && m.Subject == subject }), nil
}

func (r *MessageRepo) Recent(_ context.Context, sessionID uuid.UUID, limit int) ([]model.Message, error) {
	all := r.filter(func(m model.Message) bool { return m.SessionID == sessionID })
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// ─── Practice ────────────────────────────────────────────────────────

type PracticeRepo struct {
	mu          sync.Mutex
	tests       map[uuid.UUID]*model.PracticeTest
	Submissions []model.Submission
}

func (r *PracticeRepo) CreateTest(_ context.Context, t *model.PracticeTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	cp := *t
	cp.Questions = append([]model.PracticeQuestion{}, t.Questions...)
	r.tests[t.ID] = &cp
	return nil
}

func (r *PracticeRepo) GetTest(_ context.Context, id uuid.UUID) (*model.PracticeTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	cp.Questions = append([]model.PracticeQuestion{}, t.Questions...)
	return &cp, nil
}

func (r *PracticeRepo) CreateSubmission(_ context.Context, s *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	r.Submissions = append(r.Submissions, *s)
	return nil
}

// ─── Dashboard ───────────────────────────────────────────────────────

type DashboardRepo struct {
	messages *MessageRepo
	practice *PracticeRepo
}

func (r *DashboardRepo) StudentActivity(_ context.Context, userID uuid.UUID, recentLimit int) (*model.StudentActivity, error) {
	a := &model.StudentActivity{MessagesBySubject: map[model.Subject]int{}}

	mine := r.messages.filter(func(m model.Message) bool { return m.UserID == userID })
	seen := map[time.Time]bool{}
	for _, m := range mine {
		a.MessagesBySubject[m.Subject]++
		y, mo, d := m.Timestamp.UTC().Date()
		day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		if !seen[day] {
			seen[day] = true
			a.ActiveDays = append(a.ActiveDays, day)
		}
	}

	a.Recent = []model.Message{}
	for i := len(mine) - 1; i >= 0 && len(a.Recent) < recentLimit; i-- {
		a.Recent = append(a.Recent, mine[i])
	}

	r.practice.mu.Lock()
	defer r.practice.mu.Unlock()
	latest := map[uuid.UUID]int{}
	for _, s := range r.practice.Submissions {
		if s.UserID == userID {
			latest[s.TestID] = s.Correct
		}
	}
	for _, correct := range latest {
		a.PracticeTests++
		a.PracticeCorrect += correct
	}
	return a, nil
}

// ─── Token sessions ──────────────────────────────────────────────────

type TokenSessions struct {
	mu   sync.Mutex
	live map[string]uuid.UUID
}

func (s *TokenSessions) Save(_ context.Context, jti string, userID uuid.UUID, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[jti] = userID
	return nil
}

func (s *TokenSessions) Owner(_ context.Context, jti string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.live[jti]
	if !ok {
		return uuid.Nil, repository.ErrNotFound
	}
	return id, nil
}

func (s *TokenSessions) Delete(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, jti)
	return nil
}

// ─── Activity queue ──────────────────────────────────────────────────

type ActivityQueue struct {
	mu     sync.Mutex
	Events []model.ActivityEvent
}

func (q *ActivityQueue) Publish(_ context.Context, ev model.ActivityEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Events = append(q.Events, ev)
	return nil
}

// Len returns the number of published events.
func (q *ActivityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.Events)
}

// ─── Language model ──────────────────────────────────────────────────

// ScriptedLLM answers each Complete call with Reply, recording requests.
type ScriptedLLM struct {
	mu       sync.Mutex
	Reply    func(req llm.Request) (string, error)
	Requests []llm.Request
}

// EchoLLM replies with a fixed prefix followed by the prompt.
func EchoLLM(prefix string) *ScriptedLLM {
	return &ScriptedLLM{Reply: func(req llm.Request) (string, error) {
		return prefix + req.Prompt, nil
	}}
}

func (l *ScriptedLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	l.mu.Lock()
	l.Requests = append(l.Requests, req)
	reply := l.Reply
	l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return reply(req)
}

// Calls returns a copy of the recorded requests.
func (l *ScriptedLLM) Calls() []llm.Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]llm.Request{}, l.Requests...)
}
