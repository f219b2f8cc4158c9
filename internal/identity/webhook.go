package identity

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/workos/workos-go/v6/pkg/usermanagement"
	"github.com/workos/workos-go/v6/pkg/webhooks"

	"planboard.app/server/core/config"
)

// SignatureHeader carries the provider's signature over a webhook body.
const SignatureHeader = "WorkOS-Signature"

// PayloadVerifier checks a webhook signature and returns the body it covers.
type PayloadVerifier interface {
	ValidatePayload(signature, body string) (string, error)
}

// NewWebhookVerifier returns nil when no webhook secret is configured.
func NewWebhookVerifier(cfg config.WorkOSConfig) PayloadVerifier {
	if cfg.WebhookSecret == "" {
		return nil
	}
	return webhooks.NewClient(cfg.WebhookSecret)
}

type UserEventKind string

const (
	UserEventUpdated UserEventKind = "user.updated"
	UserEventDeleted UserEventKind = "user.deleted"
)

// ErrIgnoredEvent marks a well-formed event this service does not act on.
var ErrIgnoredEvent = errors.New("ignored event")

// UserEvent is a user lifecycle change reported by the identity provider.
type UserEvent struct {
	ID      string
	Kind    UserEventKind
	Profile Profile
}

type webhookEnvelope struct {
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ParseUserEvent decodes a verified webhook body. Events other than user
// updates and deletions return ErrIgnoredEvent.
func ParseUserEvent(body []byte) (UserEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return UserEvent{}, fmt.Errorf("decoding webhook: %w", err)
	}

	kind := UserEventKind(env.Event)
	if kind != UserEventUpdated && kind != UserEventDeleted {
		return UserEvent{ID: env.ID}, ErrIgnoredEvent
	}

	var user usermanagement.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return UserEvent{}, fmt.Errorf("decoding %s data: %w", kind, err)
	}
	if user.ID == "" {
		return UserEvent{}, fmt.Errorf("%s event without a user id", kind)
	}

	return UserEvent{
		ID:   env.ID,
		Kind: kind,
		Profile: Profile{
			ID:    user.ID,
			Name:  displayName(user.FirstName, user.LastName, user.Email),
			Email: user.Email,
			Image: user.ProfilePictureURL,
		},
	}, nil
}
