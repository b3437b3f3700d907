package websocket

import "github.com/projectk/projectk-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionMessage Action = "message"
	ActionPing    Action = "ping"
)

// Request is one client frame. UserMessage is only read for ActionMessage.
type Request struct {
	Action      Action `json:"action"`
	UserMessage string `json:"user_message"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventBotMessage Event = "bot_message"
	EventPong       Event = "pong"
	EventError      Event = "error"
)

// BotMessageResponse carries the recorded exchange, flattened the same way
// as the REST send-message response.
type BotMessageResponse struct {
	Event       Event          `json:"event"`
	Message     *model.Message `json:"message"`
	BotResponse string         `json:"bot_response"`
	BotType     model.BotType  `json:"bot_type"`
	IsError     bool           `json:"is_error"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
