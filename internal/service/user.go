package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"planboard.app/server/common/logger"
	"planboard.app/server/internal/identity"
	"planboard.app/server/internal/model"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/store"
)

type UserService interface {
	// Sync returns the local record for a verified caller, creating it from
	// the identity provider's profile the first time the caller is seen and
	// refreshing it when the token carries a newer profile.
	Sync(ctx context.Context, claims identity.Claims) (*model.User, error)
	// QueueProfileUpdate and QueueDeletion hand identity provider changes to
	// the worker.
	QueueProfileUpdate(ctx context.Context, payload queue.UserUpdatedPayload) error
	QueueDeletion(ctx context.Context, userID string) error
	// ApplyProfile overwrites a known user's profile. Unknown users are
	// skipped; Sync creates them on first sight.
	ApplyProfile(ctx context.Context, payload queue.UserUpdatedPayload) error
	// Delete removes a user. A missing user is not an error.
	Delete(ctx context.Context, userID string) error
}

type userService struct {
	userStore store.UserStore
	directory identity.Directory
	events    EventPublisher
}

// NewUserService builds a UserService. A nil directory makes first-sight
// sync rely on the profile embedded in the token.
func NewUserService(userStore store.UserStore, directory identity.Directory, events EventPublisher) UserService {
	return &userService{
		userStore: userStore,
		directory: directory,
		events:    events,
	}
}

func (s *userService) Sync(ctx context.Context, claims identity.Claims) (*model.User, error) {
	if claims.Subject == "" {
		return nil, unauthorized("Unauthorized")
	}

	user, err := s.userStore.GetByID(ctx, claims.Subject)
	if err == nil {
		return s.refresh(ctx, user, claims), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	var dir identity.Directory = identity.ClaimsDirectory{Claims: claims}
	if s.directory != nil && claims.Email == "" {
		dir = s.directory
	}

	profile, err := dir.GetProfile(ctx, claims.Subject)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch identity profile",
			"error", err,
			"user_id", claims.Subject,
		)
		return nil, unauthorized("Unable to resolve user profile")
	}

	user = &model.User{
		ID:    claims.Subject,
		Name:  profile.Name,
		Email: profile.Email,
		Image: profile.Image,
	}
	if err := s.userStore.Upsert(ctx, user); err != nil {
		slog.ErrorContext(ctx, "failed to upsert user",
			"error", err,
			"user_id", claims.Subject,
		)
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	slog.InfoContext(ctx, "user synced from identity provider", "user_id", user.ID)
	return user, nil
}

// refresh writes the token's profile over the stored one when they differ.
// A failed write keeps the stored row; the request still proceeds.
func (s *userService) refresh(ctx context.Context, stored *model.User, claims identity.Claims) *model.User {
	if claims.Email == "" {
		return stored
	}

	next := *stored
	next.Email = claims.Email
	if name := strings.TrimSpace(claims.Name); name != "" {
		next.Name = name
	}
	if claims.Picture != "" {
		next.Image = claims.Picture
	}
	if next == *stored {
		return stored
	}

	if err := s.userStore.Upsert(ctx, &next); err != nil {
		slog.WarnContext(ctx, "failed to refresh user profile, keeping stored record",
			"error", err,
			"user_id", stored.ID,
		)
		return stored
	}
	slog.InfoContext(ctx, "user profile refreshed from token", "user_id", stored.ID)
	return &next
}

func (s *userService) QueueProfileUpdate(ctx context.Context, payload queue.UserUpdatedPayload) error {
	if payload.UserID == "" || payload.Email == "" {
		return badRequest("User id and email are required")
	}
	return s.publish(ctx, queue.EventUserUpdated, payload)
}

func (s *userService) QueueDeletion(ctx context.Context, userID string) error {
	if userID == "" {
		return badRequest("User id is required")
	}
	return s.publish(ctx, queue.EventUserDeleted, queue.UserDeletedPayload{UserID: userID})
}

func (s *userService) publish(ctx context.Context, name queue.EventName, data any) error {
	if s.events == nil {
		return errors.New("no event publisher configured")
	}
	err := s.events.Publish(ctx, queue.Event{
		Name:    name,
		Data:    data,
		TraceID: logger.TraceID(ctx),
	})
	if err != nil {
		return fmt.Errorf("publishing %s: %w", name, err)
	}
	return nil
}

func (s *userService) ApplyProfile(ctx context.Context, payload queue.UserUpdatedPayload) error {
	user, err := s.userStore.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "profile update for unknown user, skipping", "user_id", payload.UserID)
			return nil
		}
		return fmt.Errorf("getting user: %w", err)
	}

	user.Email = payload.Email
	user.Name = payload.Name
	user.Image = payload.Image
	if err := s.userStore.Upsert(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			slog.WarnContext(ctx, "profile email already taken, skipping", "user_id", user.ID)
			return nil
		}
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, userID string) error {
	err := s.userStore.Delete(ctx, userID)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "user deleted", "user_id", userID)
		return nil
	case errors.Is(err, store.ErrNotFound):
		slog.InfoContext(ctx, "user already gone, skipping", "user_id", userID)
		return nil
	case errors.Is(err, store.ErrConflict):
		// Owners keep their row until their workspaces change hands.
		slog.WarnContext(ctx, "user still owns workspaces, not deleted", "user_id", userID)
		return nil
	default:
		return fmt.Errorf("deleting user: %w", err)
	}
}
