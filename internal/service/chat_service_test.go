package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/llm"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionReusesLatestUnlessForced(t *testing.T) {
	f := newFixture(t, testutil.EchoLLM("ok: "))
	ctx := context.Background()
	u := f.register(t, "s1@example.com", model.UserTypeStudent)

	first, created, err := f.chat.CreateSession(ctx, u.ID, model.SubjectMath, false)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.chat.CreateSession(ctx, u.ID, model.SubjectMath, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	forced, created, err := f.chat.CreateSession(ctx, u.ID, model.SubjectMath, true)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, forced.ID)

	other, _, err := f.chat.CreateSession(ctx, u.ID, model.SubjectPhysics, false)
	require.NoError(t, err)
	assert.NotEqual(t, forced.ID, other.ID)

	sessions, err := f.chat.ListSessions(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}

func TestSendMessageAppendsInOrderWithPersona(t *testing.T) {
	f := newFixture(t, testutil.EchoLLM("tutor: "))
	ctx := context.Background()
	u := f.register(t, "s2@example.com", model.UserTypeStudent)
	sess, _, err := f.chat.CreateSession(ctx, u.ID, model.SubjectMath, false)
	require.NoError(t, err)

	prompts := []string{"What is 2+2?", "And 3+3?", "Thanks!"}
	for _, p := range prompts {
		msg, err := f.chat.SendMessage(ctx, u.ID, sess.ID, model.SubjectMath, p)
		require.NoError(t, err)
		assert.Equal(t, model.BotType("math_bot"), msg.BotType)
		assert.Equal(t, "tutor: "+p, msg.BotResponse)
		assert.False(t, msg.IsError)
	}

	history, err := f.chat.History(ctx, u.ID, model.SubjectMath)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, m := range history {
		assert.Equal(t, prompts[i], m.UserMessage)
		assert.Equal(t, i+1, m.Seq)
	}
	assert.Equal(t, 3, f.stores.Activity.Len())
}

func TestSendMessageForwardsPriorTurnsButNotErrors(t *testing.T) {
	calls := 0
	client := &testutil.ScriptedLLM{Reply: func(req llm.Request) (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("upstream 503")
		}
		return "reply " + req.Prompt, nil
	}}
	f := newFixture(t, client)
	ctx := context.Background()
	u := f.register(t, "s3@example.com", model.UserTypeStudent)
	sess, _, err := f.chat.CreateSession(ctx, u.ID, model.SubjectPhysics, false)
	require.NoError(t, err)

	_, err = f.chat.SendMessage(ctx, u.ID, sess.ID, model.SubjectPhysics, "first")
	require.NoError(t, err)

	failed, err := f.chat.SendMessage(ctx, u.ID, sess.ID, model.SubjectPhysics, "second")
	require.NoError(t, err)
	assert.True(t, failed.IsError)
	assert.Equal(t, ApologyMessage, failed.BotResponse)
	assert.Equal(t, model.BotType("physics_bot"), failed.BotType)

	_, err = f.chat.SendMessage(ctx, u.ID, sess.ID, model.SubjectPhysics, "third")
	require.NoError(t, err)

	reqs := client.Calls()
	require.Len(t, reqs, 3)
	last := reqs[2]
	require.Len(t, last.History, 2)
	assert.Equal(t, llm.Turn{Role: llm.RoleUser, Content: "first"}, last.History[0])
	assert.Equal(t, llm.Turn{Role: llm.RoleAssistant, Content: "reply first"}, last.History[1])
	assert.Contains(t, last.System, "Physics")

	history, err := f.chat.SessionHistory(ctx, u.ID, sess.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestSendMessageRejectsSubjectMismatch(t *testing.T) {
	f := newFixture(t, testutil.EchoLLM(""))
	ctx := context.Background()
	u := f.register(t, "s4@example.com", model.UserTypeStudent)
	sess, _, err := f.chat.CreateSession(ctx, u.ID, model.SubjectMath, false)
	require.NoError(t, err)

	_, err = f.chat.SendMessage(ctx, u.ID, sess.ID, model.SubjectBiology, "hello")

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Fields["subject"], "math")
}

func TestOtherUsersSessionIsNotFound(t *testing.T) {
	f := newFixture(t, testutil.EchoLLM(""))
	ctx := context.Background()
	owner := f.register(t, "owner@example.com", model.UserTypeStudent)
	intruder := f.register(t, "intruder@example.com", model.UserTypeStudent)
	sess, _, err := f.chat.CreateSession(ctx, owner.ID, model.SubjectMath, false)
	require.NoError(t, err)

	_, err = f.chat.GetSession(ctx, intruder.ID, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.chat.SendMessage(ctx, intruder.ID, sess.ID, model.SubjectMath, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.chat.SessionHistory(ctx, intruder.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistorySpansSessionsOfSameSubject(t *testing.T) {
	f := newFixture(t, testutil.EchoLLM(""))
	ctx := context.Background()
	u := f.register(t, "s5@example.com", model.UserTypeStudent)

	a, _, err := f.chat.CreateSession(ctx, u.ID, model.SubjectEnglish, false)
	require.NoError(t, err)
	b, _, err := f.chat.CreateSession(ctx, u.ID, model.SubjectEnglish, true)
	require.NoError(t, err)
	c, _, err := f.chat.CreateSession(ctx, u.ID, model.SubjectHistory, false)
	require.NoError(t, err)

	for _, step := range []struct {
		id      uuid.UUID
		subject model.Subject
		text    string
	}{
		{a.ID, model.SubjectEnglish, "one"},
		{c.ID, model.SubjectHistory, "elsewhere"},
		{b.ID, model.SubjectEnglish, "two"},
	} {
		_, err := f.chat.SendMessage(ctx, u.ID, step.id, step.subject, step.text)
		require.NoError(t, err)
	}

	history, err := f.chat.History(ctx, u.ID, model.SubjectEnglish)
	require.NoError(t, err)
	texts := make([]string, 0, len(history))
	for _, m := range history {
		texts = append(texts, m.UserMessage)
	}
	assert.Equal(t, "one,two", strings.Join(texts, ","))

	empty, err := f.chat.History(ctx, u.ID, model.SubjectChemistry)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
