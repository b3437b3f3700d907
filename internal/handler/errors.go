package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/projectk/projectk-backend/internal/response"
	"github.com/projectk/projectk-backend/internal/service"
)

// failFromService writes the API error matching a service error.
// Unknown errors become 500 and are attached to the context for the request log.
func failFromService(c *gin.Context, err error) {
	var fieldErr *service.FieldError
	switch {
	case errors.As(err, &fieldErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fieldErr.Fields)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyEnrolled)
	case errors.Is(err, service.ErrUpstreamUnavailable):
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamUnavailable)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// parseUUIDParam reads a UUID path parameter, writing 400 INVALID_ID when malformed.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
