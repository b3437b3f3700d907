package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ChatService manages chat sessions and the message log.
type ChatService struct {
	sessions ChatSessionRepository
	messages MessageRepository
	tutor    *TutorRouter
	activity ActivityPublisher
	log      zerolog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(
	sessions ChatSessionRepository,
	messages MessageRepository,
	tutor *TutorRouter,
	activity ActivityPublisher,
	log zerolog.Logger,
) *ChatService {
	return &ChatService{
		sessions: sessions,
		messages: messages,
		tutor:    tutor,
		activity: activity,
		log:      log.With().Str("component", "chat_service").Logger(),
	}
}

// CreateSession returns the user's latest session for subject, creating one
// when none exists. forceNew always creates a fresh session. The bool
// reports whether a session was created.
func (s *ChatService) CreateSession(ctx context.Context, userID uuid.UUID, subject model.Subject, forceNew bool) (*model.ChatSession, bool, error) {
	if !forceNew {
		existing, err := s.sessions.GetLatest(ctx, userID, subject)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, false, err
		}
	}

	sess := &model.ChatSession{UserID: userID, Subject: subject}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, false, fmt.Errorf("create session: %w", err)
	}
	return sess, true, nil
}

// GetSession returns a session owned by userID. Sessions of other users are
// reported as not found.
func (s *ChatService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*model.ChatSession, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrNotFound
	}
	return sess, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (s *ChatService) ListSessions(ctx context.Context, userID uuid.UUID) ([]model.ChatSession, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// History returns every message the user exchanged on subject across all
// of their sessions, in insertion order.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID, subject model.Subject) ([]model.Message, error) {
	return s.messages.ListByUserSubject(ctx, userID, subject)
}

// SessionHistory returns the messages of one session owned by userID.
func (s *ChatService) SessionHistory(ctx context.Context, userID, sessionID uuid.UUID) ([]model.Message, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.messages.ListBySession(ctx, sessionID)
}

// SendMessage routes userMessage to the tutor and appends the pair to the
// session's log. A model failure is not an error: the stored and returned
// message carries the apology with IsError set.
func (s *ChatService) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, subject model.Subject, userMessage string) (*model.Message, error) {
	sess, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Subject != subject {
		return nil, fieldError("subject", fmt.Sprintf("session %s is for %s, not %s", sess.ID, sess.Subject, subject))
	}

	var history []model.Message
	if n := s.tutor.HistoryTurns(); n > 0 {
		history, err = s.messages.Recent(ctx, sess.ID, n)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
	}

	reply := s.tutor.Route(ctx, subject, userMessage, history)

	msg := &model.Message{
		SessionID:   sess.ID,
		UserID:      userID,
		Subject:     subject,
		UserMessage: userMessage,
		BotResponse: reply.Response,
		BotType:     reply.BotType,
		IsError:     reply.IsError,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("append message: %w", err)
	}

	if s.activity != nil {
		ev := model.ActivityEvent{SessionID: sess.ID, At: msg.Timestamp}
		if ev.At.IsZero() {
			ev.At = time.Now()
		}
		if err := s.activity.Publish(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("Failed to queue chat activity")
		}
	}

	return msg, nil
}
