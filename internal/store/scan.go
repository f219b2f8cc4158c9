package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"planboard.app/server/internal/model"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const (
	userColumns    = "u.id, u.name, u.email, u.image, u.created_at, u.updated_at"
	projectColumns = "p.id, p.name, p.description, p.priority, p.status, p.start_date, p.end_date, p.team_lead, p.workspace_id, p.progress, p.created_at, p.updated_at"
	taskColumns    = "t.id, t.project_id, t.title, t.description, t.status, t.type, t.priority, t.assignee_id, t.due_date, t.created_at, t.updated_at"
)

// mapErr translates driver errors into store sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == uniqueViolation || pgErr.Code == foreignKeyViolation) {
		return ErrConflict
	}
	return err
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Priority, &p.Status,
		&p.StartDate, &p.EndDate, &p.TeamLead, &p.WorkspaceID, &p.Progress,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Members = []model.ProjectMember{}
	p.Tasks = []model.Task{}
	return &p, nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Type,
		&t.Priority, &t.AssigneeID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// optionalUser scans a LEFT JOINed user whose columns may all be NULL.
type optionalUser struct {
	id, name, email, image *string
	createdAt, updatedAt   pgtype.Timestamptz
}

func (o *optionalUser) dest() []any {
	return []any{&o.id, &o.name, &o.email, &o.image, &o.createdAt, &o.updatedAt}
}

func (o *optionalUser) user() *model.User {
	if o.id == nil {
		return nil
	}
	u := &model.User{ID: *o.id}
	if o.name != nil {
		u.Name = *o.name
	}
	if o.email != nil {
		u.Email = *o.email
	}
	if o.image != nil {
		u.Image = *o.image
	}
	u.CreatedAt = o.createdAt.Time
	u.UpdatedAt = o.updatedAt.Time
	return u
}
