package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker-backend/internal/apperr"
	"finance-tracker-backend/internal/logging"
)

// statusFor maps an error kind to its HTTP status. Conflicts and blocked
// deletes are client errors the UI shows inline, so they share 400.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation, apperr.Conflict, apperr.Blocked:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": msg}. Unexpected errors are logged and
// answered with a generic message.
func fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		_ = c.Error(err)
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(statusFor(kind), gin.H{"error": apperr.Message(err)})
}

func success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
