package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"planboard.app/server/internal/notify"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/service"
	"planboard.app/server/internal/store"
)

// TaskAssignedHandler emails a task's assignee.
func TaskAssignedHandler(tasks store.TaskStore, mailer notify.Mailer, dashboardURL string) Handler {
	return func(ctx context.Context, msg queue.Message) error {
		var payload queue.TaskAssignedPayload
		if err := msg.Decode(&payload); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}

		task, err := tasks.GetWithAssignee(ctx, payload.TaskID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				slog.InfoContext(ctx, "task deleted before notification, skipping", "task_id", payload.TaskID)
				return nil
			}
			return fmt.Errorf("loading task: %w", err)
		}
		if task.Assignee == nil || task.Assignee.Email == "" {
			slog.InfoContext(ctx, "task has no assignee email, skipping", "task_id", task.ID)
			return nil
		}

		projectName := ""
		if task.Project != nil {
			projectName = task.Project.Name
		}

		email, err := notify.TaskAssigned(notify.TaskAssignedData{
			To:              task.Assignee.Email,
			AssigneeName:    task.Assignee.Name,
			ProjectName:     projectName,
			TaskTitle:       task.Title,
			TaskDescription: derefString(task.Description),
			DueDate:         task.DueDate,
			TaskURL:         taskURL(payload.Origin, dashboardURL, task.ProjectID, task.ID),
		})
		if err != nil {
			return err
		}
		return mailer.Send(ctx, email)
	}
}

// WorkspaceCreatedHandler provisions a workspace requested through the API.
func WorkspaceCreatedHandler(workspaces service.WorkspaceService) Handler {
	return func(ctx context.Context, msg queue.Message) error {
		var payload queue.WorkspaceCreatedPayload
		if err := msg.Decode(&payload); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}

		ws, err := workspaces.Provision(ctx, payload)
		if err != nil {
			return fmt.Errorf("provisioning workspace: %w", err)
		}
		slog.InfoContext(ctx, "workspace provisioned", "workspace_id", ws.ID, "owner_id", payload.OwnerID)
		return nil
	}
}

// UserUpdatedHandler copies an identity provider profile change onto the
// local user.
func UserUpdatedHandler(users service.UserService) Handler {
	return func(ctx context.Context, msg queue.Message) error {
		var payload queue.UserUpdatedPayload
		if err := msg.Decode(&payload); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}
		if err := users.ApplyProfile(ctx, payload); err != nil {
			return fmt.Errorf("applying profile: %w", err)
		}
		return nil
	}
}

// UserDeletedHandler removes a user deleted at the identity provider.
func UserDeletedHandler(users service.UserService) Handler {
	return func(ctx context.Context, msg queue.Message) error {
		var payload queue.UserDeletedPayload
		if err := msg.Decode(&payload); err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}
		if err := users.Delete(ctx, payload.UserID); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		return nil
	}
}

func taskURL(origin, fallback, projectID, taskID string) string {
	base := strings.TrimRight(origin, "/")
	if base == "" {
		base = strings.TrimRight(fallback, "/")
	}
	q := url.Values{}
	q.Set("projectId", projectID)
	q.Set("taskId", taskID)
	return base + "/taskDetails?" + q.Encode()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
