package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/dto"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				stack := string(debug.Stack())

				slog.ErrorContext(ctx, "panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", stack,
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, InternalError(c.Request.URL.Path))
			}
		}()
		c.Next()
	}
}

// InternalError is the body returned for failures the caller cannot act on.
func InternalError(path string) dto.ErrorResponse {
	return dto.ErrorResponse{
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Path:       path,
	}
}
