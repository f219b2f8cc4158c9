package model

import "time"

type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	Type        TaskType   `json:"type"`
	Priority    Priority   `json:"priority"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     time.Time  `json:"due_date"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Assignee    *User      `json:"assignee,omitempty"`
	Comments    []Comment  `json:"comments,omitempty"`
	Project     *Project   `json:"project,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	TaskID    string    `json:"taskId"`
	CreatedAt time.Time `json:"createdAt"`
	User      *User     `json:"user,omitempty"`
}
