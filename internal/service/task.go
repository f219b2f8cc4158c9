package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"planboard.app/server/common/id"
	"planboard.app/server/common/logger"
	"planboard.app/server/internal/model"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/store"
)

type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description *string
	Type        model.TaskType
	Status      model.TaskStatus
	Priority    model.Priority
	AssigneeID  *string
	DueDate     time.Time
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Type        *model.TaskType
	Status      *model.TaskStatus
	Priority    *model.Priority
	AssigneeID  *string
	DueDate     *time.Time
}

type TaskService interface {
	// Create adds a task to a project the caller leads. origin is the
	// dashboard origin the request came from, forwarded for email links.
	Create(ctx context.Context, callerID string, in CreateTaskInput, origin string) (*model.Task, error)
	Update(ctx context.Context, callerID, taskID string, in UpdateTaskInput) (*model.Task, error)
	// Delete removes tasks that all belong to one project led by the caller.
	Delete(ctx context.Context, callerID string, taskIDs []string) error
}

type taskService struct {
	projects store.ProjectStore
	tasks    store.TaskStore
	authz    Authorizer
	events   EventPublisher
}

func NewTaskService(projects store.ProjectStore, tasks store.TaskStore, authz Authorizer, events EventPublisher) TaskService {
	return &taskService{
		projects: projects,
		tasks:    tasks,
		authz:    authz,
		events:   events,
	}
}

// ledProject loads the project with members and checks the caller leads it.
func (s *taskService) ledProject(ctx context.Context, callerID, projectID string) (*model.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Project not found")
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if !s.authz.IsTeamLead(project, callerID) {
		return nil, forbidden("You do not have admin privileges for this project")
	}
	return project, nil
}

func (s *taskService) Create(ctx context.Context, callerID string, in CreateTaskInput, origin string) (*model.Task, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(callerID),
		ProjectID: logger.Ptr(in.ProjectID),
		Component: "planboard.service.task",
	})

	project, err := s.ledProject(ctx, callerID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	if in.AssigneeID != nil && *in.AssigneeID != "" && !project.HasMember(*in.AssigneeID) && !project.IsLedBy(*in.AssigneeID) {
		return nil, forbidden("Assignee is not a member of the project")
	}

	task := &model.Task{
		ID:          id.NewString(),
		ProjectID:   project.ID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Status:      in.Status,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Status == "" {
		task.Status = model.TaskStatusTodo
	}
	if task.Type == "" {
		task.Type = model.TaskTypeTask
	}
	if task.AssigneeID == nil || *task.AssigneeID == "" {
		task.AssigneeID = project.TeamLead
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	created, err := s.tasks.GetWithAssignee(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}

	// The task exists at this point; a bus failure only costs the email.
	if err := s.events.Publish(ctx, queue.Event{
		Name:    queue.EventTaskAssigned,
		Data:    queue.TaskAssignedPayload{TaskID: task.ID, Origin: origin},
		TraceID: logger.TraceID(ctx),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish task assigned event", "error", err, "task_id", task.ID)
	}

	slog.InfoContext(ctx, "task created", "task_id", task.ID)
	return created, nil
}

func (s *taskService) Update(ctx context.Context, callerID, taskID string, in UpdateTaskInput) (*model.Task, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(callerID),
		TaskID:    logger.Ptr(taskID),
		Component: "planboard.service.task",
	})

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Task not found")
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}

	project, err := s.ledProject(ctx, callerID, task.ProjectID)
	if err != nil {
		return nil, err
	}

	if in.AssigneeID != nil && *in.AssigneeID != "" && !project.HasMember(*in.AssigneeID) && !project.IsLedBy(*in.AssigneeID) {
		return nil, forbidden("Assignee is not a member of the project")
	}

	applyTaskPatch(task, in)

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Task not found")
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}

	updated, err := s.tasks.GetWithAssignee(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}

	slog.InfoContext(ctx, "task updated")
	return updated, nil
}

func applyTaskPatch(t *model.Task, in UpdateTaskInput) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Type != nil {
		t.Type = *in.Type
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.AssigneeID != nil {
		if *in.AssigneeID == "" {
			t.AssigneeID = nil
		} else {
			t.AssigneeID = in.AssigneeID
		}
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}
}

func (s *taskService) Delete(ctx context.Context, callerID string, taskIDs []string) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(callerID),
		Component: "planboard.service.task",
	})

	tasks, err := s.tasks.ListByIDs(ctx, taskIDs)
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}
	if len(tasks) == 0 {
		return notFound("Task not found")
	}

	projectID := tasks[0].ProjectID
	for _, t := range tasks[1:] {
		if t.ProjectID != projectID {
			return badRequest("Tasks must belong to the same project")
		}
	}

	if _, err := s.ledProject(ctx, callerID, projectID); err != nil {
		return err
	}

	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	deleted, err := s.tasks.DeleteByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}

	slog.InfoContext(ctx, "tasks deleted", "project_id", projectID, "count", deleted)
	return nil
}
