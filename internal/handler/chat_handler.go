package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/middleware"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/response"
	"github.com/projectk/projectk-backend/internal/service"
	"github.com/projectk/projectk-backend/internal/validator"
)

// ChatHandler handles chat sessions and tutoring messages.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreateSession godoc
// POST /api/chat/session
// Returns the caller's latest session for the subject, or opens a new one.
// force_new always opens a new session.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, created, err := h.chatService.CreateSession(c.Request.Context(), claims.UserID, req.Subject, req.ForceNew)
	if err != nil {
		failFromService(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{
		"session_id": sess.ID,
		"session":    sess,
	})
}

// GetSession godoc
// GET /api/chat/session/:id
func (h *ChatHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	sess, err := h.chatService.GetSession(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// ListSessions godoc
// GET /api/chat/sessions
// Lists the caller's sessions, most recently active first.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	claims := middleware.GetClaims(c)

	sessions, err := h.chatService.ListSessions(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// History godoc
// GET /api/chat/history?subject=math
// Returns every message the caller exchanged on a subject, oldest first.
func (h *ChatHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var q model.HistoryQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), claims.UserID, q.Subject)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"subject":  q.Subject,
		"messages": messages,
	})
}

// SessionHistory godoc
// GET /api/chat/session/:id/history
func (h *ChatHandler) SessionHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	messages, err := h.chatService.SessionHistory(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session_id": id,
		"messages":   messages,
	})
}

// SendMessage godoc
// POST /api/chat/message
// Routes the message to the subject's tutor and records the exchange.
// A tutor failure still answers 200, with is_error set and an apology as the reply.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"session_id": "must be a valid UUID"})
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), claims.UserID, sessionID, req.Subject, req.UserMessage)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":      msg,
		"bot_response": msg.BotResponse,
		"bot_type":     msg.BotType,
		"is_error":     msg.IsError,
	})
}
