package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/identity"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/service"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	verifier identity.PayloadVerifier
	users    service.UserService
}

func NewWebhookHandler(verifier identity.PayloadVerifier, users service.UserService) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, users: users}
}

// Identity accepts user lifecycle events from the identity provider and
// queues them for the worker. Unsigned or tampered bodies get a 401.
func (h *WebhookHandler) Identity(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "unreadable body"})
		return
	}
	if _, err := h.verifier.ValidatePayload(c.GetHeader(identity.SignatureHeader), string(body)); err != nil {
		slog.WarnContext(ctx, "rejected webhook with bad signature", "error", err)
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "invalid signature"})
		return
	}

	ev, err := identity.ParseUserEvent(body)
	switch {
	case errors.Is(err, identity.ErrIgnoredEvent):
		c.Status(http.StatusNoContent)
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		return
	}

	if ev.Kind == identity.UserEventDeleted {
		err = h.users.QueueDeletion(ctx, ev.Profile.ID)
	} else {
		err = h.users.QueueProfileUpdate(ctx, queue.UserUpdatedPayload{
			UserID: ev.Profile.ID,
			Email:  ev.Profile.Email,
			Name:   ev.Profile.Name,
			Image:  ev.Profile.Image,
		})
	}
	if err != nil {
		respondError(c, err, "failed to queue identity webhook")
		return
	}

	slog.InfoContext(ctx, "identity webhook queued", "event_id", ev.ID, "event", ev.Kind, "user_id", ev.Profile.ID)
	c.Status(http.StatusAccepted)
}
