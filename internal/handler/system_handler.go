package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/response"
	"github.com/projectk/projectk-backend/internal/tracing"
)

// QuickAction is a shortcut shown on the welcome screen.
type QuickAction struct {
	Label   string        `json:"label"`
	Subject model.Subject `json:"subject"`
	Prompt  string        `json:"prompt"`
}

var quickActions = []QuickAction{
	{Label: "Solve a math problem", Subject: model.SubjectMath, Prompt: "Can you help me solve an equation step by step?"},
	{Label: "Explain a science idea", Subject: model.SubjectPhysics, Prompt: "Can you explain Newton's laws with an example?"},
	{Label: "Improve my writing", Subject: model.SubjectEnglish, Prompt: "How can I make my essay introduction stronger?"},
	{Label: "Feeling stressed", Subject: model.SubjectMindfulness, Prompt: "I'm stressed about my exams. Can you help me calm down?"},
	{Label: "Ask anything", Subject: model.SubjectGeneral, Prompt: "What should I study today?"},
}

// SystemHandler serves the unauthenticated informational endpoints.
type SystemHandler struct {
	version string
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(version string) *SystemHandler {
	return &SystemHandler{version: version}
}

// Banner godoc
// GET /api/
func (h *SystemHandler) Banner(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"service": tracing.ServiceName,
		"message": "Project K educational chat API",
		"version": h.version,
	})
}

// Health godoc
// GET /api/health
func (h *SystemHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// Welcome godoc
// GET /api/welcome
// Returns the greeting, the available subjects and quick actions.
func (h *SystemHandler) Welcome(c *gin.Context) {
	subjects := append([]model.Subject{}, model.SchoolSubjects...)
	subjects = append(subjects, model.SubjectMindfulness, model.SubjectGeneral)

	response.Success(c, http.StatusOK, gin.H{
		"message":       "Welcome to Project K! Pick a subject and start learning with your AI tutor.",
		"subjects":      subjects,
		"quick_actions": quickActions,
	})
}
