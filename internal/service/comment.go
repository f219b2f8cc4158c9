package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"planboard.app/server/common/id"
	"planboard.app/server/common/logger"
	"planboard.app/server/internal/model"
	"planboard.app/server/internal/store"
)

type CommentService interface {
	// Add posts a comment on a task. The caller must be a member or the
	// lead of the task's project.
	Add(ctx context.Context, callerID, taskID, content string) (*model.Comment, error)
	ListForTask(ctx context.Context, taskID string) ([]model.Comment, error)
}

type commentService struct {
	projects store.ProjectStore
	tasks    store.TaskStore
	comments store.CommentStore
	authz    Authorizer
}

func NewCommentService(projects store.ProjectStore, tasks store.TaskStore, comments store.CommentStore, authz Authorizer) CommentService {
	return &commentService{
		projects: projects,
		tasks:    tasks,
		comments: comments,
		authz:    authz,
	}
}

func (s *commentService) Add(ctx context.Context, callerID, taskID, content string) (*model.Comment, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(callerID),
		TaskID:    logger.Ptr(taskID),
		Component: "planboard.service.comment",
	})

	if strings.TrimSpace(content) == "" {
		return nil, badRequest("Comment content is required")
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Task not found")
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}

	project, err := s.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Project not found")
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}

	if !s.authz.IsTeamLead(project, callerID) {
		isMember, err := s.authz.IsProjectMember(ctx, project.ID, callerID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, forbidden("You are not a member of this project")
		}
	}

	comment := &model.Comment{
		ID:      id.NewString(),
		Content: content,
		UserID:  callerID,
		TaskID:  task.ID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	slog.InfoContext(ctx, "comment added", "comment_id", comment.ID)
	return comment, nil
}

func (s *commentService) ListForTask(ctx context.Context, taskID string) ([]model.Comment, error) {
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}
