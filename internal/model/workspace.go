package model

import "time"

type Workspace struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description *string           `json:"description"`
	OwnerID     string            `json:"ownerId"`
	ImageURL    string            `json:"image_url"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Members     []WorkspaceMember `json:"members"`
	Projects    []Project         `json:"projects"`
	Owner       *User             `json:"owner,omitempty"`
}

type WorkspaceMember struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	WorkspaceID string        `json:"workspaceId"`
	Message     string        `json:"message"`
	Role        WorkspaceRole `json:"role"`
	User        *User         `json:"user,omitempty"`
}

// MemberRole returns the role userID holds in the workspace, if any.
func (w *Workspace) MemberRole(userID string) (WorkspaceRole, bool) {
	for _, m := range w.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}
