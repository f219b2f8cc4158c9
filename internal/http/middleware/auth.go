package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard.app/server/common/logger"
	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/identity"
	"planboard.app/server/internal/service"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// RequireAuth verifies the bearer token, makes sure the caller has a user
// record and stores the caller's id in the request context.
func RequireAuth(verifier identity.Verifier, users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, err := identity.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthorized - No user ID found"})
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			msg := "Unauthorized"
			if errors.Is(err, identity.ErrExpiredToken) {
				msg = "Token expired"
			}
			slog.WarnContext(ctx, "bearer token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: msg})
			return
		}

		user, err := users.Sync(ctx, claims)
		if err != nil {
			var svcErr *service.Error
			if errors.As(err, &svcErr) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: svcErr.Message})
				return
			}
			slog.ErrorContext(ctx, "failed to sync user", "error", err, "subject", claims.Subject)
			c.AbortWithStatusJSON(http.StatusInternalServerError, InternalError(c.Request.URL.Path))
			return
		}

		ctx = WithUserID(ctx, user.ID)
		ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Ptr(user.ID)})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// GetUserID returns the authenticated caller, or "" outside RequireAuth.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}
