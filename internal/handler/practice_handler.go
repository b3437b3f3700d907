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

// PracticeHandler handles practice test generation and grading.
type PracticeHandler struct {
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

// Generate godoc
// POST /api/practice/generate
// Generates a practice test. Correct answers are withheld until submission.
func (h *PracticeHandler) Generate(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.GeneratePracticeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.practiceService.Generate(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test.ForStudent()})
}

// GetTest godoc
// GET /api/practice/tests/:id
func (h *PracticeHandler) GetTest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	test, err := h.practiceService.GetTest(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test.ForStudent()})
}

// Submit godoc
// POST /api/practice/submit
// Grades the answers by exact match and stores the submission.
func (h *PracticeHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SubmitPracticeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	testID, err := uuid.Parse(req.TestID)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"test_id": "must be a valid UUID"})
		return
	}

	sub, err := h.practiceService.Submit(c.Request.Context(), claims.UserID, testID, req.Answers)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}
