package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectk/projectk-backend/internal/middleware"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/response"
	"github.com/projectk/projectk-backend/internal/service"
)

// DashboardHandler serves the progress dashboards.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard godoc
// GET /api/dashboard
// Returns the student or teacher dashboard depending on the caller's role.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims.UserType == model.UserTypeTeacher {
		h.TeacherDashboard(c)
		return
	}

	dash, err := h.dashboardService.ForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, dash)
}

// TeacherDashboard godoc
// GET /api/teacher/dashboard
// Summarizes the caller's classes and distinct enrolled students.
func (h *DashboardHandler) TeacherDashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)

	dash, err := h.dashboardService.ForTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, dash)
}
