package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectk/projectk-backend/internal/middleware"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/response"
	"github.com/projectk/projectk-backend/internal/service"
	"github.com/projectk/projectk-backend/internal/validator"
)

// ClassHandler handles teacher class management and student enrollment.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// ─── Teacher ────────────────────────────────────────────────────────

// ListClasses godoc
// GET /api/teacher/classes
// Lists the caller's classes with student counts.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	claims := middleware.GetClaims(c)

	classes, err := h.classService.ListByTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// CreateClass godoc
// POST /api/teacher/classes
// Creates a class with a freshly generated join code.
func (h *ClassHandler) CreateClass(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": class})
}

// GetClass godoc
// GET /api/teacher/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	class, err := h.classService.GetForTeacher(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// ListStudents godoc
// GET /api/teacher/classes/:id/students
// Lists the students enrolled in one of the caller's classes.
func (h *ClassHandler) ListStudents(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	students, err := h.classService.ListStudents(c.Request.Context(), claims.UserID, id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ─── Student ────────────────────────────────────────────────────────

// JoinClass godoc
// POST /api/student/classes/join
// Enrolls the caller in the class with the given join code.
func (h *ClassHandler) JoinClass(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.JoinClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Join(c.Request.Context(), claims.UserID, req.JoinCode)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// StudentClasses godoc
// GET /api/student/classes
func (h *ClassHandler) StudentClasses(c *gin.Context) {
	claims := middleware.GetClaims(c)

	classes, err := h.classService.ListByStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}
