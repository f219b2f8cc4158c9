package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/http/middleware"
	"planboard.app/server/internal/service"
)

type WorkspaceHandler struct {
	workspaces service.WorkspaceService
}

func NewWorkspaceHandler(workspaces service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// List returns every workspace the caller belongs to, fully expanded.
func (h *WorkspaceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	workspaces, err := h.workspaces.ListForUser(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondError(c, err, "failed to list workspaces")
		return
	}
	c.JSON(http.StatusOK, dto.WorkspacesResponse{Workspaces: workspaces})
}

// Memberships returns only the ids of the caller's workspaces.
func (h *WorkspaceHandler) Memberships(c *gin.Context) {
	ctx := c.Request.Context()

	ids, err := h.workspaces.ListIDsForUser(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondError(c, err, "failed to list workspace memberships")
		return
	}
	c.JSON(http.StatusOK, dto.WorkspaceMembershipsResponse{WorkspaceIDs: ids})
}

// Create accepts the request and leaves provisioning to the worker, so the
// workspace shows up in List shortly after the 202.
func (h *WorkspaceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	workspaceID, err := h.workspaces.Create(ctx, middleware.GetUserID(ctx), service.CreateWorkspaceInput{
		Name:     req.Name,
		ImageURL: req.Image,
	})
	if err != nil {
		respondError(c, err, "failed to create workspace")
		return
	}
	c.JSON(http.StatusAccepted, dto.CreateWorkspaceResponse{
		WorkspaceID: workspaceID,
		Message:     "Workspace creation started",
	})
}

func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	member, err := h.workspaces.AddMember(ctx, middleware.GetUserID(ctx), addMemberInput(req))
	if err != nil {
		respondError(c, err, "failed to add workspace member")
		return
	}
	c.JSON(http.StatusOK, dto.WorkspaceMemberResponse{Member: member, Message: "Member added successfully"})
}

func (h *WorkspaceHandler) InviteMember(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.workspaces.InviteMember(ctx, middleware.GetUserID(ctx), addMemberInput(req))
	if err != nil {
		respondError(c, err, "failed to invite workspace member")
		return
	}
	c.JSON(http.StatusOK, dto.InviteMemberResponse{
		Message:   "Invitation email sent successfully",
		Email:     res.Email,
		Workspace: res.WorkspaceName,
	})
}

func addMemberInput(req dto.AddMemberRequest) service.AddMemberInput {
	return service.AddMemberInput{
		Email:       req.Email,
		Role:        req.Role,
		WorkspaceID: req.WorkspaceID,
		Message:     req.Message,
	}
}
