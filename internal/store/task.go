package store

import (
	"context"

	"planboard.app/server/core/db"
	"planboard.app/server/internal/model"
)

type taskStore struct {
	q db.DBTX
}

func newTaskStore(q db.DBTX) TaskStore {
	return &taskStore{q: q}
}

func (s *taskStore) GetByID(ctx context.Context, id string) (*model.Task, error) {
	t, err := scanTask(s.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (s *taskStore) GetWithAssignee(ctx context.Context, id string) (*model.Task, error) {
	var t model.Task
	var ou optionalUser
	dest := append([]any{
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Type,
		&t.Priority, &t.AssigneeID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	}, ou.dest()...)
	err := s.q.QueryRow(ctx, `
		SELECT `+taskColumns+`, `+userColumns+`
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assignee_id
		WHERE t.id = $1`, id).Scan(dest...)
	if err != nil {
		return nil, mapErr(err)
	}
	t.Assignee = ou.user()

	project, err := scanProject(s.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, t.ProjectID))
	if err != nil {
		return nil, mapErr(err)
	}
	t.Project = project
	return &t, nil
}

func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO tasks AS t (id, project_id, title, description, status, type, priority, assignee_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+taskColumns,
		task.ID, task.ProjectID, task.Title, task.Description, task.Status,
		task.Type, task.Priority, task.AssigneeID, task.DueDate,
	)
	created, err := scanTask(row)
	if err != nil {
		return mapErr(err)
	}
	*task = *created
	return nil
}

// Update writes every mutable column. The project never changes.
func (s *taskStore) Update(ctx context.Context, task *model.Task) error {
	row := s.q.QueryRow(ctx, `
		UPDATE tasks AS t
		SET title = $2, description = $3, status = $4, type = $5, priority = $6,
		    assignee_id = $7, due_date = $8, updated_at = now()
		WHERE t.id = $1
		RETURNING `+taskColumns,
		task.ID, task.Title, task.Description, task.Status, task.Type,
		task.Priority, task.AssigneeID, task.DueDate,
	)
	updated, err := scanTask(row)
	if err != nil {
		return mapErr(err)
	}
	*task = *updated
	return nil
}

func (s *taskStore) ListByIDs(ctx context.Context, ids []string) ([]model.Task, error) {
	if len(ids) == 0 {
		return []model.Task{}, nil
	}
	rows, err := s.q.Query(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ANY($1) ORDER BY t.created_at`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// DeleteByIDs removes the tasks and their comments, returning the task count deleted.
func (s *taskStore) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.q.Exec(ctx, `DELETE FROM tasks WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
