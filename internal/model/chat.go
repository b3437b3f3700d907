package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession groups a user's conversation on one subject.
type ChatSession struct {
	ID            uuid.UUID `json:"session_id"`
	UserID        uuid.UUID `json:"user_id"`
	Subject       Subject   `json:"subject"`
	CreatedAt     time.Time `json:"created_at"`
	LastActive    time.Time `json:"last_active"`
	TotalMessages int       `json:"total_messages"`
}

// Message is one user turn and the bot reply to it.
type Message struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	UserID      uuid.UUID `json:"user_id"`
	Subject     Subject   `json:"subject"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	BotType     BotType   `json:"bot_type"`
	IsError     bool      `json:"is_error"`
	Seq         int       `json:"seq"`
	Timestamp   time.Time `json:"timestamp"`
}

// CreateSessionRequest is the payload for opening a chat session.
type CreateSessionRequest struct {
	Subject  Subject `json:"subject" binding:"required,subject"`
	ForceNew bool    `json:"force_new"`
}

// SendMessageRequest is the payload for a chat turn.
type SendMessageRequest struct {
	SessionID   string  `json:"session_id" binding:"required,uuid"`
	Subject     Subject `json:"subject" binding:"required,subject"`
	UserMessage string  `json:"user_message" binding:"required,min=1,max=4000"`
}

// HistoryQuery binds GET /api/chat/history.
type HistoryQuery struct {
	Subject Subject `form:"subject" binding:"required,subject"`
}

// ActivityEvent is queued after each appended message so session counters
// can be updated out of band.
type ActivityEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	At        time.Time `json:"at"`
}
