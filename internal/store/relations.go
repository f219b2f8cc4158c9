package store

import (
	"context"

	"planboard.app/server/core/db"
	"planboard.app/server/internal/model"
)

// The loaders below fetch one relation level for a batch of parent ids with
// a single ANY($1) query, so nested includes cost one round trip per level.

func loadWorkspaceMembers(ctx context.Context, q db.DBTX, workspaceIDs []string) (map[string][]model.WorkspaceMember, error) {
	out := make(map[string][]model.WorkspaceMember, len(workspaceIDs))
	if len(workspaceIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT m.id, m.user_id, m.workspace_id, m.message, m.role, `+userColumns+`
		FROM workspace_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = ANY($1)
		ORDER BY m.created_at`, workspaceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m model.WorkspaceMember
		var u model.User
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.WorkspaceID, &m.Message, &m.Role,
			&u.ID, &u.Name, &u.Email, &u.Image, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		m.User = &u
		out[m.WorkspaceID] = append(out[m.WorkspaceID], m)
	}
	return out, rows.Err()
}

func loadProjectMembers(ctx context.Context, q db.DBTX, projectIDs []string) (map[string][]model.ProjectMember, error) {
	out := make(map[string][]model.ProjectMember, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT pm.id, pm.user_id, pm.project_id, `+userColumns+`
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = ANY($1)
		ORDER BY pm.created_at, pm.id`, projectIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m model.ProjectMember
		var u model.User
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.ProjectID,
			&u.ID, &u.Name, &u.Email, &u.Image, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		m.User = &u
		out[m.ProjectID] = append(out[m.ProjectID], m)
	}
	return out, rows.Err()
}

// loadProjects returns the projects of the given workspaces, newest last.
func loadProjects(ctx context.Context, q db.DBTX, workspaceIDs []string) ([]*model.Project, error) {
	if len(workspaceIDs) == 0 {
		return nil, nil
	}
	rows, err := q.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects p
		WHERE p.workspace_id = ANY($1)
		ORDER BY p.created_at`, workspaceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// loadTasks returns tasks with assignees and comments (each with its author),
// grouped by project id.
func loadTasks(ctx context.Context, q db.DBTX, projectIDs []string) (map[string][]model.Task, error) {
	out := make(map[string][]model.Task, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT `+taskColumns+`, `+userColumns+`
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assignee_id
		WHERE t.project_id = ANY($1)
		ORDER BY t.created_at`, projectIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		var t model.Task
		var ou optionalUser
		dest := append([]any{
			&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Type,
			&t.Priority, &t.AssigneeID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		}, ou.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		t.Assignee = ou.user()
		t.Comments = []model.Comment{}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	taskIDs := make([]string, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}
	comments, err := loadComments(ctx, q, taskIDs)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if c, ok := comments[t.ID]; ok {
			t.Comments = c
		}
		out[t.ProjectID] = append(out[t.ProjectID], *t)
	}
	return out, nil
}

func loadComments(ctx context.Context, q db.DBTX, taskIDs []string) (map[string][]model.Comment, error) {
	out := make(map[string][]model.Comment, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT c.id, c.content, c.user_id, c.task_id, c.created_at, `+userColumns+`
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.task_id = ANY($1)
		ORDER BY c.created_at`, taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCommentWithUser(rows)
		if err != nil {
			return nil, err
		}
		out[c.TaskID] = append(out[c.TaskID], *c)
	}
	return out, rows.Err()
}

// attachProjectRelations fills members, tasks and owner on each project.
func attachProjectRelations(ctx context.Context, q db.DBTX, projects []*model.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]string, len(projects))
	var leadIDs []string
	for i, p := range projects {
		ids[i] = p.ID
		if p.TeamLead != nil {
			leadIDs = append(leadIDs, *p.TeamLead)
		}
	}

	members, err := loadProjectMembers(ctx, q, ids)
	if err != nil {
		return err
	}
	tasks, err := loadTasks(ctx, q, ids)
	if err != nil {
		return err
	}
	owners, err := usersByID(ctx, q, leadIDs)
	if err != nil {
		return err
	}

	for _, p := range projects {
		if m, ok := members[p.ID]; ok {
			p.Members = m
		}
		if t, ok := tasks[p.ID]; ok {
			p.Tasks = t
		}
		if p.TeamLead != nil {
			p.Owner = owners[*p.TeamLead]
		}
	}
	return nil
}
