package model

type WorkspaceRole string

const (
	WorkspaceRoleAdmin  WorkspaceRole = "ADMIN"
	WorkspaceRoleMember WorkspaceRole = "MEMBER"
)

func (r WorkspaceRole) Valid() bool {
	switch r {
	case WorkspaceRoleAdmin, WorkspaceRoleMember:
		return true
	}
	return false
}

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "PLANNING"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TaskType string

const (
	TaskTypeTask        TaskType = "TASK"
	TaskTypeBug         TaskType = "BUG"
	TaskTypeFeature     TaskType = "FEATURE"
	TaskTypeImprovement TaskType = "IMPROVEMENT"
	TaskTypeOther       TaskType = "OTHER"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeTask, TaskTypeBug, TaskTypeFeature, TaskTypeImprovement, TaskTypeOther:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}
