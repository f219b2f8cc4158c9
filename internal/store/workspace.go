package store

import (
	"context"

	"planboard.app/server/core/db"
	"planboard.app/server/internal/model"
)

const workspaceColumns = "w.id, w.name, w.slug, w.description, w.owner_id, w.image_url, w.created_at, w.updated_at"

type workspaceStore struct {
	q db.DBTX
}

func newWorkspaceStore(q db.DBTX) WorkspaceStore {
	return &workspaceStore{q: q}
}

func scanWorkspace(row interface{ Scan(...any) error }) (*model.Workspace, error) {
	var w model.Workspace
	if err := row.Scan(&w.ID, &w.Name, &w.Slug, &w.Description, &w.OwnerID, &w.ImageURL, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Members = []model.WorkspaceMember{}
	w.Projects = []model.Project{}
	return &w, nil
}

func (s *workspaceStore) GetByID(ctx context.Context, id string) (*model.Workspace, error) {
	w, err := scanWorkspace(s.q.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}

	members, err := loadWorkspaceMembers(ctx, s.q, []string{w.ID})
	if err != nil {
		return nil, err
	}
	if m, ok := members[w.ID]; ok {
		w.Members = m
	}

	owners, err := usersByID(ctx, s.q, []string{w.OwnerID})
	if err != nil {
		return nil, err
	}
	w.Owner = owners[w.OwnerID]
	return w, nil
}

func (s *workspaceStore) Create(ctx context.Context, ws *model.Workspace) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO workspaces AS w (id, name, slug, description, owner_id, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+workspaceColumns,
		ws.ID, ws.Name, ws.Slug, ws.Description, ws.OwnerID, ws.ImageURL,
	)
	created, err := scanWorkspace(row)
	if err != nil {
		return mapErr(err)
	}
	*ws = *created
	return nil
}

// AddMember returns ErrConflict when the user already belongs to the workspace.
func (s *workspaceStore) AddMember(ctx context.Context, member *model.WorkspaceMember) error {
	if member.Role == "" {
		member.Role = model.WorkspaceRoleMember
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO workspace_members (id, user_id, workspace_id, message, role)
		VALUES ($1, $2, $3, $4, $5)`,
		member.ID, member.UserID, member.WorkspaceID, member.Message, member.Role,
	)
	return mapErr(err)
}

// GetMemberRole returns ErrNotFound when userID is not a member.
func (s *workspaceStore) GetMemberRole(ctx context.Context, workspaceID, userID string) (model.WorkspaceRole, error) {
	var role model.WorkspaceRole
	err := s.q.QueryRow(ctx, `
		SELECT role FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	).Scan(&role)
	if err != nil {
		return "", mapErr(err)
	}
	return role, nil
}

func (s *workspaceStore) ListIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.q.Query(ctx, `
		SELECT w.id
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *workspaceStore) ListForUser(ctx context.Context, userID string) ([]model.Workspace, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+workspaceColumns+`
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []*model.Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(workspaces) == 0 {
		return []model.Workspace{}, nil
	}

	ids := make([]string, len(workspaces))
	ownerIDs := make([]string, len(workspaces))
	for i, w := range workspaces {
		ids[i] = w.ID
		ownerIDs[i] = w.OwnerID
	}

	members, err := loadWorkspaceMembers(ctx, s.q, ids)
	if err != nil {
		return nil, err
	}
	projects, err := loadProjects(ctx, s.q, ids)
	if err != nil {
		return nil, err
	}
	if err := attachProjectRelations(ctx, s.q, projects); err != nil {
		return nil, err
	}
	owners, err := usersByID(ctx, s.q, ownerIDs)
	if err != nil {
		return nil, err
	}

	byWorkspace := make(map[string][]model.Project, len(ids))
	for _, p := range projects {
		byWorkspace[p.WorkspaceID] = append(byWorkspace[p.WorkspaceID], *p)
	}

	out := make([]model.Workspace, len(workspaces))
	for i, w := range workspaces {
		if m, ok := members[w.ID]; ok {
			w.Members = m
		}
		if p, ok := byWorkspace[w.ID]; ok {
			w.Projects = p
		}
		w.Owner = owners[w.OwnerID]
		out[i] = *w
	}
	return out, nil
}
