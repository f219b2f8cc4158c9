package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"planboard.app/server/common/id"
	"planboard.app/server/common/logger"
	"planboard.app/server/internal/model"
	"planboard.app/server/internal/store"
)

type CreateProjectInput struct {
	WorkspaceID string
	Name        string
	Description *string
	Status      model.ProjectStatus
	Priority    model.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	// TeamLead is the lead's email address.
	TeamLead string
	// TeamMembers are email addresses; only current workspace members are added.
	TeamMembers []string
	Progress    *int
}

// DatePatch distinguishes "leave as is" (Set false) from "clear" (Set with
// a nil Value).
type DatePatch struct {
	Set   bool
	Value *time.Time
}

type UpdateProjectInput struct {
	ID          string
	WorkspaceID string
	Name        *string
	Description *string
	Status      *model.ProjectStatus
	Priority    *model.Priority
	Progress    *int
	StartDate   DatePatch
	EndDate     DatePatch
}

type ProjectService interface {
	Create(ctx context.Context, callerID string, in CreateProjectInput) (*model.Project, error)
	Update(ctx context.Context, callerID string, in UpdateProjectInput) (*model.Project, error)
	AddMember(ctx context.Context, callerID, projectID, email string) (*model.ProjectMember, error)
}

type projectService struct {
	users      store.UserStore
	workspaces store.WorkspaceStore
	projects   store.ProjectStore
	authz      Authorizer
	txRunner   TxRunner
}

func NewProjectService(
	users store.UserStore,
	workspaces store.WorkspaceStore,
	projects store.ProjectStore,
	authz Authorizer,
	txRunner TxRunner,
) ProjectService {
	return &projectService{
		users:      users,
		workspaces: workspaces,
		projects:   projects,
		authz:      authz,
		txRunner:   txRunner,
	}
}

func (s *projectService) Create(ctx context.Context, callerID string, in CreateProjectInput) (*model.Project, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:      logger.Ptr(callerID),
		WorkspaceID: logger.Ptr(in.WorkspaceID),
		Component:   "planboard.service.project",
	})

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
		return nil, forbidden("You do not have permission to create projects in this workspace")
	}

	project := &model.Project{
		ID:          id.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		WorkspaceID: ws.ID,
	}
	if project.Status == "" {
		project.Status = model.ProjectStatusActive
	}
	if project.Priority == "" {
		project.Priority = model.PriorityMedium
	}
	if in.Progress != nil {
		project.Progress = *in.Progress
	}

	// An unknown lead email leaves the project without a lead.
	if in.TeamLead != "" {
		lead, err := s.users.GetByEmail(ctx, in.TeamLead)
		switch {
		case err == nil:
			project.TeamLead = &lead.ID
		case errors.Is(err, store.ErrNotFound):
			slog.WarnContext(ctx, "team lead not found, creating project without lead")
		default:
			return nil, fmt.Errorf("resolving team lead: %w", err)
		}
	}

	memberIDs := workspaceMemberIDs(ws, in.TeamMembers)

	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.Projects().Create(ctx, project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		for _, userID := range memberIDs {
			if err := stores.Projects().AddMember(ctx, &model.ProjectMember{
				ID:        id.NewString(),
				UserID:    userID,
				ProjectID: project.ID,
			}); err != nil {
				return fmt.Errorf("adding project member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "project created", "project_id", project.ID, "members", len(memberIDs))
	return s.detailed(ctx, project.ID)
}

// workspaceMemberIDs maps emails to user ids, keeping only workspace members.
func workspaceMemberIDs(ws *model.Workspace, emails []string) []string {
	if len(emails) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		wanted[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}

	var ids []string
	for _, m := range ws.Members {
		if m.User == nil {
			continue
		}
		if _, ok := wanted[strings.ToLower(m.User.Email)]; ok {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

func (s *projectService) Update(ctx context.Context, callerID string, in UpdateProjectInput) (*model.Project, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:      logger.Ptr(callerID),
		WorkspaceID: logger.Ptr(in.WorkspaceID),
		ProjectID:   logger.Ptr(in.ID),
		Component:   "planboard.service.project",
	})

	if _, err := s.workspaces.GetByID(ctx, in.WorkspaceID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Workspace not found")
		}
		return nil, fmt.Errorf("getting workspace: %w", err)
	}

	project, err := s.projects.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Project not found")
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if project.WorkspaceID != in.WorkspaceID {
		return nil, notFound("Project not found")
	}

	isAdmin, err := s.authz.HasRole(ctx, in.WorkspaceID, callerID, model.WorkspaceRoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !s.authz.IsTeamLead(project, callerID) {
		return nil, forbidden("You do not have permission to update projects in this workspace")
	}

	applyProjectPatch(project, in)

	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Project not found")
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}

	slog.InfoContext(ctx, "project updated")
	return s.detailed(ctx, project.ID)
}

func applyProjectPatch(p *model.Project, in UpdateProjectInput) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Priority != nil {
		p.Priority = *in.Priority
	}
	if in.Progress != nil {
		p.Progress = *in.Progress
	}
	if in.StartDate.Set {
		p.StartDate = in.StartDate.Value
	}
	if in.EndDate.Set {
		p.EndDate = in.EndDate.Value
	}
}

func (s *projectService) AddMember(ctx context.Context, callerID, projectID, email string) (*model.ProjectMember, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(callerID),
		ProjectID: logger.Ptr(projectID),
		Component: "planboard.service.project",
	})

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Project not found")
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}

	if !s.authz.IsTeamLead(project, callerID) {
		return nil, forbidden("Only project lead can add members")
	}

	for _, m := range project.Members {
		if m.User != nil && strings.EqualFold(m.User.Email, email) {
			return nil, badRequest("User is already a member")
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}

	member := &model.ProjectMember{
		ID:        id.NewString(),
		UserID:    user.ID,
		ProjectID: project.ID,
	}
	if err := s.projects.AddMember(ctx, member); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, badRequest("User is already a member")
		}
		return nil, fmt.Errorf("adding project member: %w", err)
	}
	member.User = user

	slog.InfoContext(ctx, "project member added", "member_user_id", user.ID)
	return member, nil
}

func (s *projectService) detailed(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := s.projects.GetDetailed(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return project, nil
}
