package model

import "time"

type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Priority    Priority        `json:"priority"`
	Status      ProjectStatus   `json:"status"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
	TeamLead    *string         `json:"team_lead"`
	WorkspaceID string          `json:"workspaceId"`
	Progress    int             `json:"progress"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Members     []ProjectMember `json:"members"`
	Tasks       []Task          `json:"tasks"`
	Owner       *User           `json:"owner,omitempty"`
}

type ProjectMember struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
	User      *User  `json:"user,omitempty"`
}

// IsLedBy reports whether userID is the project's team lead.
func (p *Project) IsLedBy(userID string) bool {
	return p.TeamLead != nil && *p.TeamLead == userID
}

// HasMember reports whether userID is in the project's member list.
func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
