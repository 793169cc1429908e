package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zeethx/NebulaView/internal/apperr"
	"github.com/Zeethx/NebulaView/internal/dto"
)

// statusOf maps an error kind to its HTTP status code
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service error. Only the client-safe message is
// exposed; internal causes stay in the logs.
func writeError(c *gin.Context, err error) {
	c.JSON(statusOf(err), dto.ErrorResponse{
		Error:   apperr.KindOf(err).String(),
		Message: apperr.MessageOf(err),
	})
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
	})
}
