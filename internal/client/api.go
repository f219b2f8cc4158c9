package client

import (
	"context"
	"net/http"
	"net/url"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/model"
)

func (c *Client) ListWorkspaces(ctx context.Context) ([]model.Workspace, error) {
	resp, err := do[dto.WorkspacesResponse](ctx, c, http.MethodGet, "/api/workspaces", nil)
	if err != nil {
		return nil, err
	}
	return resp.Workspaces, nil
}

// ListWorkspaceMemberships returns the ids of the caller's workspaces.
func (c *Client) ListWorkspaceMemberships(ctx context.Context) ([]string, error) {
	resp, err := do[dto.WorkspaceMembershipsResponse](ctx, c, http.MethodGet, "/api/workspaces/memberships", nil)
	if err != nil {
		return nil, err
	}
	return resp.WorkspaceIDs, nil
}

// CreateWorkspace returns the id the workspace will have once the worker
// has provisioned it.
func (c *Client) CreateWorkspace(ctx context.Context, req dto.CreateWorkspaceRequest) (string, error) {
	resp, err := do[dto.CreateWorkspaceResponse](ctx, c, http.MethodPost, "/api/workspaces", req)
	if err != nil {
		return "", err
	}
	return resp.WorkspaceID, nil
}

func (c *Client) AddWorkspaceMember(ctx context.Context, req dto.AddMemberRequest) (*model.WorkspaceMember, error) {
	resp, err := do[dto.WorkspaceMemberResponse](ctx, c, http.MethodPost, "/api/workspaces/add-member", req)
	if err != nil {
		return nil, err
	}
	return resp.Member, nil
}

func (c *Client) InviteWorkspaceMember(ctx context.Context, req dto.AddMemberRequest) (dto.InviteMemberResponse, error) {
	return do[dto.InviteMemberResponse](ctx, c, http.MethodPost, "/api/workspaces/invite-member", req)
}

func (c *Client) CreateProject(ctx context.Context, req dto.CreateProjectRequest) (*model.Project, error) {
	resp, err := do[dto.ProjectResponse](ctx, c, http.MethodPost, "/api/projects", req)
	if err != nil {
		return nil, err
	}
	return resp.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, req dto.UpdateProjectRequest) (*model.Project, error) {
	resp, err := do[dto.ProjectResponse](ctx, c, http.MethodPut, "/api/projects", req)
	if err != nil {
		return nil, err
	}
	return resp.Project, nil
}

func (c *Client) AddProjectMember(ctx context.Context, projectID, email string) (*model.ProjectMember, error) {
	path := "/api/projects/" + url.PathEscape(projectID) + "/addMember"
	resp, err := do[dto.ProjectMemberResponse](ctx, c, http.MethodPost, path, dto.AddProjectMemberRequest{Email: email})
	if err != nil {
		return nil, err
	}
	return resp.Member, nil
}

func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*model.Task, error) {
	resp, err := do[dto.TaskResponse](ctx, c, http.MethodPost, "/api/tasks", req)
	if err != nil {
		return nil, err
	}
	return resp.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, taskID string, req dto.UpdateTaskRequest) (*model.Task, error) {
	resp, err := do[dto.TaskResponse](ctx, c, http.MethodPut, "/api/tasks/"+url.PathEscape(taskID), req)
	if err != nil {
		return nil, err
	}
	return resp.Task, nil
}

func (c *Client) DeleteTasks(ctx context.Context, taskIDs []string) error {
	_, err := do[dto.MessageResponse](ctx, c, http.MethodPost, "/api/tasks/delete", dto.DeleteTasksRequest{TaskIDs: taskIDs})
	return err
}

func (c *Client) AddComment(ctx context.Context, taskID, content string) (*model.Comment, error) {
	resp, err := do[dto.CommentResponse](ctx, c, http.MethodPost, "/api/comments", dto.AddCommentRequest{TaskID: taskID, Content: content})
	if err != nil {
		return nil, err
	}
	return resp.Comment, nil
}

func (c *Client) ListComments(ctx context.Context, taskID string) ([]model.Comment, error) {
	resp, err := do[dto.CommentsResponse](ctx, c, http.MethodGet, "/api/comments/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	return resp.Comments, nil
}
