package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"planboard.app/server/core/db"
	"planboard.app/server/internal/model"
)

type commentStore struct {
	q db.DBTX
}

func newCommentStore(q db.DBTX) CommentStore {
	return &commentStore{q: q}
}

func scanCommentWithUser(row pgx.Row) (*model.Comment, error) {
	var c model.Comment
	var u model.User
	if err := row.Scan(
		&c.ID, &c.Content, &c.UserID, &c.TaskID, &c.CreatedAt,
		&u.ID, &u.Name, &u.Email, &u.Image, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.User = &u
	return &c, nil
}

func (s *commentStore) Create(ctx context.Context, comment *model.Comment) error {
	row := s.q.QueryRow(ctx, `
		WITH c AS (
			INSERT INTO comments (id, content, user_id, task_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, content, user_id, task_id, created_at
		)
		SELECT c.id, c.content, c.user_id, c.task_id, c.created_at, `+userColumns+`
		FROM c JOIN users u ON u.id = c.user_id`,
		comment.ID, comment.Content, comment.UserID, comment.TaskID,
	)
	created, err := scanCommentWithUser(row)
	if err != nil {
		return mapErr(err)
	}
	*comment = *created
	return nil
}

// ListByTask returns comments oldest first, each with its author.
func (s *commentStore) ListByTask(ctx context.Context, taskID string) ([]model.Comment, error) {
	comments, err := loadComments(ctx, s.q, []string{taskID})
	if err != nil {
		return nil, err
	}
	if c, ok := comments[taskID]; ok {
		return c, nil
	}
	return []model.Comment{}, nil
}
