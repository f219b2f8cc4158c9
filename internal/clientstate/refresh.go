package clientstate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"planboard.app/server/common/logger"
	"planboard.app/server/internal/model"
)

// DefaultRefreshDelay gives the worker time to provision a new workspace
// before the client refetches.
const DefaultRefreshDelay = 2 * time.Second

// FetchFunc returns the caller's workspaces with nested relations.
type FetchFunc func(ctx context.Context) ([]model.Workspace, error)

// Refresher keeps a Store in sync with the server's workspace list.
type Refresher struct {
	store *Store
	fetch FetchFunc
	delay time.Duration
	group singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	loading bool
	closed  bool
}

func NewRefresher(store *Store, fetch FetchFunc, delay time.Duration) *Refresher {
	if delay <= 0 {
		delay = DefaultRefreshDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		store:   store,
		fetch:   fetch,
		delay:   delay,
		ctx:     ctx,
		cancel:  cancel,
		loading: true,
	}
}

// Initial fetches immediately. Loading stays true until a fetch succeeds.
func (r *Refresher) Initial(ctx context.Context) error {
	return r.refresh(ctx)
}

// Loading reports whether no fetch has succeeded yet.
func (r *Refresher) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Trigger schedules a refetch after the configured delay. Triggers that
// arrive while one is pending are folded into it.
func (r *Refresher) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.timer != nil {
		return
	}
	r.wg.Add(1)
	r.timer = time.AfterFunc(r.delay, func() {
		defer r.wg.Done()

		r.mu.Lock()
		r.timer = nil
		r.mu.Unlock()

		ctx := logger.WithLogFields(r.ctx, logger.LogFields{Component: "planctl.refresher"})
		if err := r.refresh(ctx); err != nil && r.ctx.Err() == nil {
			slog.WarnContext(ctx, "scheduled workspace refresh failed", "error", err)
		}
	})
}

// ObserveOrganizations triggers a refetch when the externally known
// organization ids differ from the cached workspace ids. Order is ignored.
func (r *Refresher) ObserveOrganizations(ids []string) bool {
	external := slices.Clone(ids)
	slices.Sort(external)
	cached := r.store.WorkspaceIDs()
	slices.Sort(cached)

	if slices.Equal(external, cached) {
		return false
	}
	r.Trigger()
	return true
}

// Wait blocks until a pending or running scheduled refetch has finished.
// It must not race with Trigger from another goroutine.
func (r *Refresher) Wait() {
	r.wg.Wait()
}

// Close cancels any pending refetch and waits for a running one to return.
func (r *Refresher) Close() {
	r.mu.Lock()
	r.closed = true
	if r.timer != nil && r.timer.Stop() {
		r.timer = nil
		r.wg.Done()
	}
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

func (r *Refresher) refresh(ctx context.Context) error {
	_, err, _ := r.group.Do("workspaces", func() (any, error) {
		list, err := r.fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching workspaces: %w", err)
		}
		if err := r.store.LoadWorkspaces(ctx, list); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.loading = false
	r.mu.Unlock()
	return nil
}
