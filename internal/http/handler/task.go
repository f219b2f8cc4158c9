package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/http/middleware"
	"planboard.app/server/internal/service"
)

type TaskHandler struct {
	tasks service.TaskService
}

func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.tasks.Create(ctx, middleware.GetUserID(ctx), service.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate.Time,
	}, c.GetHeader("Origin"))
	if err != nil {
		respondError(c, err, "failed to create task")
		return
	}
	c.JSON(http.StatusOK, dto.TaskResponse{Task: task, Message: "Task created successfully"})
}

func (h *TaskHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.tasks.Update(ctx, middleware.GetUserID(ctx), c.Param("id"), service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate.Ptr(),
	})
	if err != nil {
		respondError(c, err, "failed to update task")
		return
	}
	c.JSON(http.StatusOK, dto.TaskResponse{Task: task, Message: "Task updated successfully"})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DeleteTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.tasks.Delete(ctx, middleware.GetUserID(ctx), req.TaskIDs); err != nil {
		respondError(c, err, "failed to delete tasks")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}
