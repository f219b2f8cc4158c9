package dto

import (
	"planboard.app/server/internal/model"
)

type CreateTaskRequest struct {
	ProjectID   string           `json:"projectId" binding:"required"`
	Title       string           `json:"title" binding:"required,max=255"`
	Description *string          `json:"description,omitempty"`
	Type        model.TaskType   `json:"type,omitempty" binding:"omitempty,oneof=TASK BUG FEATURE IMPROVEMENT OTHER"`
	Status      model.TaskStatus `json:"status,omitempty" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    model.Priority   `json:"priority,omitempty" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssigneeID  *string          `json:"assigneeId,omitempty"`
	DueDate     *Date            `json:"due_date" binding:"required"`
	// WorkspaceID is sent by the dashboard and ignored.
	WorkspaceID string `json:"workspaceId,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string           `json:"title,omitempty" binding:"omitempty,min=1,max=255"`
	Description *string           `json:"description,omitempty"`
	Type        *model.TaskType   `json:"type,omitempty" binding:"omitempty,oneof=TASK BUG FEATURE IMPROVEMENT OTHER"`
	Status      *model.TaskStatus `json:"status,omitempty" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    *model.Priority   `json:"priority,omitempty" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	AssigneeID  *string           `json:"assigneeId,omitempty"`
	DueDate     *Date             `json:"due_date,omitempty"`
}

type DeleteTasksRequest struct {
	TaskIDs []string `json:"taskIds" binding:"required,min=1,dive,required"`
}

type TaskResponse struct {
	Task    *model.Task `json:"task"`
	Message string      `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
