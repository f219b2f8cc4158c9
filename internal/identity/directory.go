package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/workos/workos-go/v6/pkg/usermanagement"

	"planboard.app/server/core/config"
)

// Profile is what the identity provider knows about a user.
type Profile struct {
	ID    string
	Name  string
	Email string
	Image string
}

// Directory looks up user profiles at the identity provider.
type Directory interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
}

type workOSDirectory struct {
	client *usermanagement.Client
}

func NewWorkOSDirectory(cfg config.WorkOSConfig) Directory {
	return &workOSDirectory{client: usermanagement.NewClient(cfg.APIKey)}
}

func (d *workOSDirectory) GetProfile(ctx context.Context, userID string) (Profile, error) {
	user, err := d.client.GetUser(ctx, usermanagement.GetUserOpts{User: userID})
	if err != nil {
		return Profile{}, fmt.Errorf("fetching user %s: %w", userID, err)
	}
	return Profile{
		ID:    user.ID,
		Name:  displayName(user.FirstName, user.LastName, user.Email),
		Email: user.Email,
		Image: user.ProfilePictureURL,
	}, nil
}

// ClaimsDirectory answers from the verified token alone. It is used when no
// WorkOS credentials are configured and the token carries the profile.
type ClaimsDirectory struct {
	Claims Claims
}

func (d ClaimsDirectory) GetProfile(_ context.Context, userID string) (Profile, error) {
	if d.Claims.Email == "" {
		return Profile{}, fmt.Errorf("token for %s carries no email", userID)
	}
	return Profile{
		ID:    userID,
		Name:  displayName(d.Claims.Name, "", d.Claims.Email),
		Email: d.Claims.Email,
		Image: d.Claims.Picture,
	}, nil
}

func displayName(first, last, email string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name != "" {
		return name
	}
	return email
}
