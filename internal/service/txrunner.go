package service

import (
	"context"

	"planboard.app/server/core/db"
	"planboard.app/server/internal/store"
)

// StoreProvider exposes the stores a transactional operation may touch.
type StoreProvider interface {
	Users() store.UserStore
	Workspaces() store.WorkspaceStore
	Projects() store.ProjectStore
	Tasks() store.TaskStore
	Comments() store.CommentStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q db.DBTX) error {
		return fn(store.NewStores(q))
	})
}
