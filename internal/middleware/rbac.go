package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/response"
)

// RequireRole checks that the authenticated user registered as one of the given types.
// It must run after RequireAuth.
func RequireRole(types ...model.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, t := range types {
			if claims.UserType == t {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
	}
}
