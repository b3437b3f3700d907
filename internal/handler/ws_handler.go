package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/projectk/projectk-backend/internal/middleware"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/service"
	ws "github.com/projectk/projectk-backend/internal/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// maxWSMessageLen is in characters, like the user_message rule of the REST endpoint.
	maxWSMessageLen = 4000

	wsMessagesPerMinute = 20
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a chat session over a WebSocket.
type WSHandler struct {
	chatService *service.ChatService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(chatService *service.ChatService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		chatService: chatService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// ChatStream godoc
// WS /ws/chat/:session_id?token=...
// Upgrades to WebSocket and answers each message action with the tutor's reply.
// Frames are handled one at a time, in order.
func (h *WSHandler) ChatStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, ok := parseUUIDParam(c, "session_id")
	if !ok {
		return
	}

	// Ownership is checked before the upgrade so a foreign session is a plain 404.
	sess, err := h.chatService.GetSession(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failFromService(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("session_id", sess.ID.String()).
		Logger()
	wsLog.Info().Msg("Chat stream connected")

	limiter := rate.NewLimiter(rate.Every(time.Minute/wsMessagesPerMinute), 5)

	for {
		var req ws.Request
		if err := ws.ReadJSON(conn, &req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				_ = ws.WriteError(conn, "malformed frame")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch req.Action {
		case ws.ActionPing:
			_ = ws.WritePong(conn)
		case ws.ActionMessage:
			h.handleMessage(c, conn, wsLog, limiter, sess, &req)
		default:
			wsLog.Warn().Str("action", string(req.Action)).Msg("Unknown action")
			_ = ws.WriteError(conn, "unknown action: "+string(req.Action))
		}
	}
}

func (h *WSHandler) handleMessage(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, limiter *rate.Limiter, sess *model.ChatSession, req *ws.Request) {
	text := strings.TrimSpace(req.UserMessage)
	if text == "" {
		_ = ws.WriteError(conn, "user_message is required")
		return
	}
	if utf8.RuneCountInString(text) > maxWSMessageLen {
		_ = ws.WriteError(conn, "user_message is too long")
		return
	}
	if !limiter.Allow() {
		_ = ws.WriteError(conn, "too many messages, slow down")
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), sess.UserID, sess.ID, sess.Subject, text)
	if err != nil {
		wsLog.Error().Err(err).Msg("Send message failed")
		_ = ws.WriteError(conn, "message could not be processed")
		return
	}

	_ = ws.WriteTyped(conn, ws.BotMessageResponse{
		Event:       ws.EventBotMessage,
		Message:     msg,
		BotResponse: msg.BotResponse,
		BotType:     msg.BotType,
		IsError:     msg.IsError,
	})
}
