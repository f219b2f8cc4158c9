package dto

import (
	"planboard.app/server/internal/model"
)

type CreateProjectRequest struct {
	WorkspaceID string              `json:"workspaceId" binding:"required"`
	Name        string              `json:"name" binding:"required,max=255"`
	Description *string             `json:"description,omitempty"`
	Status      model.ProjectStatus `json:"status,omitempty" binding:"omitempty,oneof=PLANNING ACTIVE ON_HOLD COMPLETED CANCELLED"`
	Priority    model.Priority      `json:"priority,omitempty" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate   *Date               `json:"start_date,omitempty"`
	EndDate     *Date               `json:"end_date,omitempty"`
	TeamMembers []string            `json:"team_members,omitempty" binding:"omitempty,dive,email"`
	TeamLead    string              `json:"team_lead" binding:"required"`
	Progress    *int                `json:"progress,omitempty" binding:"omitempty,min=0,max=100"`
}

type UpdateProjectRequest struct {
	ID          string               `json:"id" binding:"required"`
	WorkspaceID string               `json:"workspaceId" binding:"required"`
	Name        *string              `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Description *string              `json:"description,omitempty"`
	Status      *model.ProjectStatus `json:"status,omitempty" binding:"omitempty,oneof=PLANNING ACTIVE ON_HOLD COMPLETED CANCELLED"`
	Priority    *model.Priority      `json:"priority,omitempty" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	StartDate   NullableDate         `json:"start_date,omitzero"`
	EndDate     NullableDate         `json:"end_date,omitzero"`
	Progress    *int                 `json:"progress,omitempty" binding:"omitempty,min=0,max=100"`
}

type AddProjectMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ProjectResponse struct {
	Project *model.Project `json:"project"`
	Message string         `json:"message"`
}

type ProjectMemberResponse struct {
	Member  *model.ProjectMember `json:"member"`
	Message string               `json:"message"`
}
