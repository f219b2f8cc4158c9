package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/http/middleware"
	"planboard.app/server/internal/service"
)

type ProjectHandler struct {
	projects service.ProjectService
}

func NewProjectHandler(projects service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projects.Create(ctx, middleware.GetUserID(ctx), service.CreateProjectInput{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate.Ptr(),
		EndDate:     req.EndDate.Ptr(),
		TeamLead:    req.TeamLead,
		TeamMembers: req.TeamMembers,
		Progress:    req.Progress,
	})
	if err != nil {
		respondError(c, err, "failed to create project")
		return
	}
	c.JSON(http.StatusOK, dto.ProjectResponse{Project: project, Message: "Project created successfully"})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projects.Update(ctx, middleware.GetUserID(ctx), service.UpdateProjectInput{
		ID:          req.ID,
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Progress:    req.Progress,
		StartDate:   service.DatePatch{Set: req.StartDate.Set, Value: req.StartDate.Value},
		EndDate:     service.DatePatch{Set: req.EndDate.Set, Value: req.EndDate.Value},
	})
	if err != nil {
		respondError(c, err, "failed to update project")
		return
	}
	c.JSON(http.StatusOK, dto.ProjectResponse{Project: project, Message: "Project updated successfully"})
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AddProjectMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	member, err := h.projects.AddMember(ctx, middleware.GetUserID(ctx), c.Param("projectId"), req.Email)
	if err != nil {
		respondError(c, err, "failed to add project member")
		return
	}
	c.JSON(http.StatusOK, dto.ProjectMemberResponse{Member: member, Message: "Member added successfully"})
}
