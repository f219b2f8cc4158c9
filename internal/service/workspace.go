package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"planboard.app/server/common"
	"planboard.app/server/common/id"
	"planboard.app/server/common/logger"
	"planboard.app/server/internal/model"
	"planboard.app/server/internal/notify"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/store"
)

type AddMemberInput struct {
	Email       string
	Role        model.WorkspaceRole
	WorkspaceID string
	Message     string
}

type InviteResult struct {
	Email         string
	WorkspaceName string
}

type CreateWorkspaceInput struct {
	Name     string
	ImageURL string
}

type WorkspaceService interface {
	ListForUser(ctx context.Context, userID string) ([]model.Workspace, error)
	// ListIDsForUser is the membership set alone, for clients that only
	// need to notice joins and removals.
	ListIDsForUser(ctx context.Context, userID string) ([]string, error)
	AddMember(ctx context.Context, callerID string, in AddMemberInput) (*model.WorkspaceMember, error)
	InviteMember(ctx context.Context, callerID string, in AddMemberInput) (*InviteResult, error)
	// Create validates the request and hands provisioning to the worker.
	// It returns the id the workspace will have once provisioned.
	Create(ctx context.Context, callerID string, in CreateWorkspaceInput) (string, error)
	// Provision writes the workspace and its owner's ADMIN membership.
	// Replays of the same event are no-ops.
	Provision(ctx context.Context, payload queue.WorkspaceCreatedPayload) (*model.Workspace, error)
}

type workspaceService struct {
	users        store.UserStore
	workspaces   store.WorkspaceStore
	authz        Authorizer
	txRunner     TxRunner
	mailer       notify.Mailer
	events       EventPublisher
	dashboardURL string
}

func NewWorkspaceService(
	users store.UserStore,
	workspaces store.WorkspaceStore,
	authz Authorizer,
	txRunner TxRunner,
	mailer notify.Mailer,
	events EventPublisher,
	dashboardURL string,
) WorkspaceService {
	return &workspaceService{
		users:        users,
		workspaces:   workspaces,
		authz:        authz,
		txRunner:     txRunner,
		mailer:       mailer,
		events:       events,
		dashboardURL: dashboardURL,
	}
}

func (s *workspaceService) ListForUser(ctx context.Context, userID string) ([]model.Workspace, error) {
	workspaces, err := s.workspaces.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}
	return workspaces, nil
}

func (s *workspaceService) ListIDsForUser(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.workspaces.ListIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing workspace memberships: %w", err)
	}
	return ids, nil
}

// loadAdminWorkspace runs the checks add-member and invite-member share.
func (s *workspaceService) loadAdminWorkspace(ctx context.Context, callerID string, in AddMemberInput) (*model.Workspace, error) {
	if !in.Role.Valid() {
		return nil, badRequest("Invalid role")
	}

	ws, err := s.workspaces.GetByID(ctx, in.WorkspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Workspace not found")
		}
		return nil, fmt.Errorf("getting workspace: %w", err)
	}

	isAdmin, err := s.authz.HasRole(ctx, ws.ID, callerID, model.WorkspaceRoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, forbidden("You do not have admin privileges")
	}

	for _, m := range ws.Members {
		if m.User != nil && strings.EqualFold(m.User.Email, in.Email) {
			return nil, badRequest("User is already a member")
		}
	}
	return ws, nil
}

func (s *workspaceService) AddMember(ctx context.Context, callerID string, in AddMemberInput) (*model.WorkspaceMember, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:      logger.Ptr(callerID),
		WorkspaceID: logger.Ptr(in.WorkspaceID),
		Component:   "planboard.service.workspace",
	})

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}

	ws, err := s.loadAdminWorkspace(ctx, callerID, in)
	if err != nil {
		return nil, err
	}

	member := &model.WorkspaceMember{
		ID:          id.NewString(),
		UserID:      user.ID,
		WorkspaceID: ws.ID,
		Message:     in.Message,
		Role:        in.Role,
	}
	if err := s.workspaces.AddMember(ctx, member); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, badRequest("User is already a member")
		}
		return nil, fmt.Errorf("adding workspace member: %w", err)
	}
	member.User = user

	s.sendMemberAdded(ctx, ws, user, in)

	slog.InfoContext(ctx, "workspace member added", "member_user_id", user.ID, "role", in.Role)
	return member, nil
}

// sendMemberAdded is best effort: the member stays added if the email fails.
func (s *workspaceService) sendMemberAdded(ctx context.Context, ws *model.Workspace, user *model.User, in AddMemberInput) {
	ownerName := ""
	if ws.Owner != nil {
		ownerName = ws.Owner.Name
	}

	msg, err := notify.Invitation(notify.InvitationData{
		To:                   user.Email,
		RecipientName:        user.Name,
		InviterName:          ownerName,
		WorkspaceName:        ws.Name,
		WorkspaceDescription: deref(ws.Description),
		Role:                 string(in.Role),
		Message:              in.Message,
		DashboardURL:         s.dashboardURL,
		Added:                true,
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to send member added email", "error", err)
		return
	}
	slog.InfoContext(ctx, "member added email sent", "workspace", ws.Name)
}

func (s *workspaceService) InviteMember(ctx context.Context, callerID string, in AddMemberInput) (*InviteResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:      logger.Ptr(callerID),
		WorkspaceID: logger.Ptr(in.WorkspaceID),
		Component:   "planboard.service.workspace",
	})

	ws, err := s.loadAdminWorkspace(ctx, callerID, in)
	if err != nil {
		return nil, err
	}

	inviterName := ""
	if inviter, err := s.users.GetByID(ctx, callerID); err == nil {
		inviterName = inviter.Name
	}

	msg, err := notify.Invitation(notify.InvitationData{
		To:                   in.Email,
		InviterName:          inviterName,
		WorkspaceName:        ws.Name,
		WorkspaceDescription: deref(ws.Description),
		Role:                 string(in.Role),
		Message:              in.Message,
		DashboardURL:         s.dashboardURL,
	})
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to send invitation email", "error", err)
		return nil, badRequest("Failed to send invitation email: " + err.Error())
	}

	slog.InfoContext(ctx, "invitation email sent", "workspace", ws.Name)
	return &InviteResult{Email: in.Email, WorkspaceName: ws.Name}, nil
}

func (s *workspaceService) Create(ctx context.Context, callerID string, in CreateWorkspaceInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", badRequest("Workspace name is required")
	}

	workspaceID := id.NewString()
	slug, err := common.WorkspaceSlug(name, workspaceID)
	if err != nil {
		return "", badRequest("Invalid workspace name")
	}

	err = s.events.Publish(ctx, queue.Event{
		Name: queue.EventWorkspaceCreated,
		Data: queue.WorkspaceCreatedPayload{
			WorkspaceID: workspaceID,
			Name:        name,
			Slug:        slug,
			OwnerID:     callerID,
			ImageURL:    in.ImageURL,
			RequestedAt: time.Now().UTC(),
		},
		TraceID: logger.TraceID(ctx),
	})
	if err != nil {
		return "", fmt.Errorf("publishing workspace creation: %w", err)
	}

	slog.InfoContext(ctx, "workspace creation requested", "workspace_id", workspaceID, "user_id", callerID)
	return workspaceID, nil
}

func (s *workspaceService) Provision(ctx context.Context, payload queue.WorkspaceCreatedPayload) (*model.Workspace, error) {
	var ws *model.Workspace
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		existing, err := stores.Workspaces().GetByID(ctx, payload.WorkspaceID)
		if err == nil {
			ws = existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("checking workspace: %w", err)
		}

		created := &model.Workspace{
			ID:       payload.WorkspaceID,
			Name:     payload.Name,
			Slug:     payload.Slug,
			OwnerID:  payload.OwnerID,
			ImageURL: payload.ImageURL,
		}
		if err := stores.Workspaces().Create(ctx, created); err != nil {
			return fmt.Errorf("creating workspace: %w", err)
		}
		if err := stores.Workspaces().AddMember(ctx, &model.WorkspaceMember{
			ID:          id.NewString(),
			UserID:      payload.OwnerID,
			WorkspaceID: created.ID,
			Role:        model.WorkspaceRoleAdmin,
		}); err != nil {
			return fmt.Errorf("adding workspace owner: %w", err)
		}
		ws = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
