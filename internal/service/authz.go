package service

import (
	"context"
	"errors"
	"fmt"

	"planboard.app/server/internal/model"
	"planboard.app/server/internal/store"
)

// Authorizer answers every role question the services ask, so the rules
// live in one place.
type Authorizer interface {
	HasRole(ctx context.Context, workspaceID, userID string, role model.WorkspaceRole) (bool, error)
	IsTeamLead(project *model.Project, userID string) bool
	IsProjectMember(ctx context.Context, projectID, userID string) (bool, error)
}

type authorizer struct {
	workspaces store.WorkspaceStore
	projects   store.ProjectStore
}

func NewAuthorizer(workspaces store.WorkspaceStore, projects store.ProjectStore) Authorizer {
	return &authorizer{workspaces: workspaces, projects: projects}
}

func (a *authorizer) HasRole(ctx context.Context, workspaceID, userID string, role model.WorkspaceRole) (bool, error) {
	got, err := a.workspaces.GetMemberRole(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("looking up workspace role: %w", err)
	}
	return got == role, nil
}

func (a *authorizer) IsTeamLead(project *model.Project, userID string) bool {
	return project != nil && project.IsLedBy(userID)
}

func (a *authorizer) IsProjectMember(ctx context.Context, projectID, userID string) (bool, error) {
	ok, err := a.projects.IsMember(ctx, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("looking up project membership: %w", err)
	}
	return ok, nil
}
