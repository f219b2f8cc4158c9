package dto

import (
	"planboard.app/server/internal/model"
)

type AddMemberRequest struct {
	Email       string              `json:"email" binding:"required,email,max=255"`
	Role        model.WorkspaceRole `json:"role" binding:"required,oneof=ADMIN MEMBER"`
	WorkspaceID string              `json:"workspaceId" binding:"required"`
	Message     string              `json:"message,omitempty" binding:"max=2000"`
}

type CreateWorkspaceRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=255"`
	Image string `json:"image,omitempty" binding:"omitempty,url,max=2048"`
}

type WorkspacesResponse struct {
	Workspaces []model.Workspace `json:"workspaces"`
}

type WorkspaceMembershipsResponse struct {
	WorkspaceIDs []string `json:"workspaceIds"`
}

type WorkspaceMemberResponse struct {
	Member  *model.WorkspaceMember `json:"member"`
	Message string                 `json:"message"`
}

type InviteMemberResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	Workspace string `json:"workspace"`
}

type CreateWorkspaceResponse struct {
	WorkspaceID string `json:"workspaceId"`
	Message     string `json:"message"`
}
