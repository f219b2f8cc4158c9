package store

import (
	"context"
	"errors"

	"planboard.app/server/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint rejects a write
var ErrConflict = errors.New("conflict")

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetNames(ctx context.Context, ids []string) (map[string]string, error)
	Upsert(ctx context.Context, user *model.User) error
	// Delete returns ErrNotFound for an unknown id and ErrConflict while the
	// user still owns a workspace.
	Delete(ctx context.Context, id string) error
}

// WorkspaceStore defines the contract for workspace and workspace member data access
type WorkspaceStore interface {
	// GetByID returns the workspace with members (and their users) and owner.
	GetByID(ctx context.Context, id string) (*model.Workspace, error)
	Create(ctx context.Context, ws *model.Workspace) error
	AddMember(ctx context.Context, member *model.WorkspaceMember) error
	GetMemberRole(ctx context.Context, workspaceID, userID string) (model.WorkspaceRole, error)
	// ListForUser returns every workspace userID belongs to with members,
	// projects, project members, tasks, assignees, comments and owners.
	ListForUser(ctx context.Context, userID string) ([]model.Workspace, error)
	// ListIDsForUser returns only the ids of userID's workspaces.
	ListIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// ProjectStore defines the contract for project and project member data access
type ProjectStore interface {
	// GetByID returns the project with members (and their users).
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// GetDetailed returns the project with members, tasks (assignee and
	// comments included) and owner.
	GetDetailed(ctx context.Context, id string) (*model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	AddMember(ctx context.Context, member *model.ProjectMember) error
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
}

// TaskStore defines the contract for task data access
type TaskStore interface {
	GetByID(ctx context.Context, id string) (*model.Task, error)
	// GetWithAssignee returns the task with its assignee and project.
	GetWithAssignee(ctx context.Context, id string) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	ListByIDs(ctx context.Context, ids []string) ([]model.Task, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// CommentStore defines the contract for comment data access
type CommentStore interface {
	// Create inserts the comment and fills in its author.
	Create(ctx context.Context, comment *model.Comment) error
	ListByTask(ctx context.Context, taskID string) ([]model.Comment, error)
}
