package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/http/middleware"
	"planboard.app/server/internal/service"
)

// respondError maps service error kinds to status codes. Anything that is
// not a *service.Error is logged and hidden behind a 500.
func respondError(c *gin.Context, err error, logMsg string) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		c.JSON(statusFor(svcErr.Kind), dto.ErrorResponse{Message: svcErr.Message})
		return
	}

	slog.ErrorContext(c.Request.Context(), logMsg, "error", err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, middleware.InternalError(c.Request.URL.Path))
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, service.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(kind, service.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "invalid request: " + err.Error()})
}
