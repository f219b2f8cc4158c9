package store

import (
	"planboard.app/server/core/db"
)

// Stores hands out stores bound to one connection: the pool for plain
// requests, a pgx.Tx inside TxRunner.
type Stores struct {
	q db.DBTX
}

func NewStores(q db.DBTX) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.q)
}

func (s *Stores) Workspaces() WorkspaceStore {
	return newWorkspaceStore(s.q)
}

func (s *Stores) Projects() ProjectStore {
	return newProjectStore(s.q)
}

func (s *Stores) Tasks() TaskStore {
	return newTaskStore(s.q)
}

func (s *Stores) Comments() CommentStore {
	return newCommentStore(s.q)
}
