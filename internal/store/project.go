package store

import (
	"context"

	"planboard.app/server/core/db"
	"planboard.app/server/internal/model"
)

type projectStore struct {
	q db.DBTX
}

func newProjectStore(q db.DBTX) ProjectStore {
	return &projectStore{q: q}
}

func (s *projectStore) get(ctx context.Context, id string) (*model.Project, error) {
	p, err := scanProject(s.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (s *projectStore) GetByID(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := loadProjectMembers(ctx, s.q, []string{p.ID})
	if err != nil {
		return nil, err
	}
	if m, ok := members[p.ID]; ok {
		p.Members = m
	}
	return p, nil
}

func (s *projectStore) GetDetailed(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := attachProjectRelations(ctx, s.q, []*model.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectStore) Create(ctx context.Context, project *model.Project) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO projects AS p (id, name, description, priority, status, start_date, end_date, team_lead, workspace_id, progress)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+projectColumns,
		project.ID, project.Name, project.Description, project.Priority, project.Status,
		project.StartDate, project.EndDate, project.TeamLead, project.WorkspaceID, project.Progress,
	)
	created, err := scanProject(row)
	if err != nil {
		return mapErr(err)
	}
	*project = *created
	return nil
}

// Update writes every mutable column. Callers merge partial input first.
func (s *projectStore) Update(ctx context.Context, project *model.Project) error {
	row := s.q.QueryRow(ctx, `
		UPDATE projects AS p
		SET name = $2, description = $3, priority = $4, status = $5,
		    start_date = $6, end_date = $7, team_lead = $8, progress = $9,
		    updated_at = now()
		WHERE p.id = $1
		RETURNING `+projectColumns,
		project.ID, project.Name, project.Description, project.Priority, project.Status,
		project.StartDate, project.EndDate, project.TeamLead, project.Progress,
	)
	updated, err := scanProject(row)
	if err != nil {
		return mapErr(err)
	}
	*project = *updated
	return nil
}

// AddMember returns ErrConflict when the user is already a member.
func (s *projectStore) AddMember(ctx context.Context, member *model.ProjectMember) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO project_members (id, user_id, project_id) VALUES ($1, $2, $3)`,
		member.ID, member.UserID, member.ProjectID,
	)
	return mapErr(err)
}

func (s *projectStore) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`,
		projectID, userID,
	).Scan(&exists)
	return exists, err
}
