package service_test

import (
	"context"

	"planboard.app/server/internal/identity"
	"planboard.app/server/internal/model"
	"planboard.app/server/internal/notify"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/service"
	"planboard.app/server/internal/store"
)

type mockUserStore struct {
	getByIDFn    func(ctx context.Context, id string) (*model.User, error)
	getByEmailFn func(ctx context.Context, email string) (*model.User, error)
	upsertFn     func(ctx context.Context, user *model.User) error
	deleteFn     func(ctx context.Context, id string) error
	upsertCalls  int
	deleteCalls  int
}

func (m *mockUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) GetNames(_ context.Context, _ []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (m *mockUserStore) Upsert(ctx context.Context, user *model.User) error {
	m.upsertCalls++
	if m.upsertFn != nil {
		return m.upsertFn(ctx, user)
	}
	return nil
}

func (m *mockUserStore) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockWorkspaceStore struct {
	getByIDFn       func(ctx context.Context, id string) (*model.Workspace, error)
	createFn        func(ctx context.Context, ws *model.Workspace) error
	addMemberFn     func(ctx context.Context, member *model.WorkspaceMember) error
	getMemberRoleFn func(ctx context.Context, workspaceID, userID string) (model.WorkspaceRole, error)
	listForUserFn   func(ctx context.Context, userID string) ([]model.Workspace, error)
	listIDsFn       func(ctx context.Context, userID string) ([]string, error)
	createCalls     int
	addMemberCalls  int
}

func (m *mockWorkspaceStore) GetByID(ctx context.Context, id string) (*model.Workspace, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockWorkspaceStore) Create(ctx context.Context, ws *model.Workspace) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, ws)
	}
	return nil
}

func (m *mockWorkspaceStore) AddMember(ctx context.Context, member *model.WorkspaceMember) error {
	m.addMemberCalls++
	if m.addMemberFn != nil {
		return m.addMemberFn(ctx, member)
	}
	return nil
}

func (m *mockWorkspaceStore) GetMemberRole(ctx context.Context, workspaceID, userID string) (model.WorkspaceRole, error) {
	if m.getMemberRoleFn != nil {
		return m.getMemberRoleFn(ctx, workspaceID, userID)
	}
	return "", store.ErrNotFound
}

func (m *mockWorkspaceStore) ListForUser(ctx context.Context, userID string) ([]model.Workspace, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, userID)
	}
	return []model.Workspace{}, nil
}

func (m *mockWorkspaceStore) ListIDsForUser(ctx context.Context, userID string) ([]string, error) {
	if m.listIDsFn != nil {
		return m.listIDsFn(ctx, userID)
	}
	return []string{}, nil
}

type mockProjectStore struct {
	getByIDFn      func(ctx context.Context, id string) (*model.Project, error)
	getDetailedFn  func(ctx context.Context, id string) (*model.Project, error)
	createFn       func(ctx context.Context, project *model.Project) error
	updateFn       func(ctx context.Context, project *model.Project) error
	addMemberFn    func(ctx context.Context, member *model.ProjectMember) error
	isMemberFn     func(ctx context.Context, projectID, userID string) (bool, error)
	createCalls    int
	updateCalls    int
	addMemberCalls int
}

func (m *mockProjectStore) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockProjectStore) GetDetailed(ctx context.Context, id string) (*model.Project, error) {
	if m.getDetailedFn != nil {
		return m.getDetailedFn(ctx, id)
	}
	return &model.Project{ID: id}, nil
}

func (m *mockProjectStore) Create(ctx context.Context, project *model.Project) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, project)
	}
	return nil
}

func (m *mockProjectStore) Update(ctx context.Context, project *model.Project) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, project)
	}
	return nil
}

func (m *mockProjectStore) AddMember(ctx context.Context, member *model.ProjectMember) error {
	m.addMemberCalls++
	if m.addMemberFn != nil {
		return m.addMemberFn(ctx, member)
	}
	return nil
}

func (m *mockProjectStore) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	if m.isMemberFn != nil {
		return m.isMemberFn(ctx, projectID, userID)
	}
	return false, nil
}

type mockTaskStore struct {
	getByIDFn         func(ctx context.Context, id string) (*model.Task, error)
	getWithAssigneeFn func(ctx context.Context, id string) (*model.Task, error)
	createFn          func(ctx context.Context, task *model.Task) error
	updateFn          func(ctx context.Context, task *model.Task) error
	listByIDsFn       func(ctx context.Context, ids []string) ([]model.Task, error)
	deleteByIDsFn     func(ctx context.Context, ids []string) (int64, error)
	created           []*model.Task
	deleteCalls       int
}

func (m *mockTaskStore) GetByID(ctx context.Context, id string) (*model.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockTaskStore) GetWithAssignee(ctx context.Context, id string) (*model.Task, error) {
	if m.getWithAssigneeFn != nil {
		return m.getWithAssigneeFn(ctx, id)
	}
	for _, t := range m.created {
		if t.ID == id {
			return t, nil
		}
	}
	return &model.Task{ID: id}, nil
}

func (m *mockTaskStore) Create(ctx context.Context, task *model.Task) error {
	m.created = append(m.created, task)
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) Update(ctx context.Context, task *model.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) ListByIDs(ctx context.Context, ids []string) ([]model.Task, error) {
	if m.listByIDsFn != nil {
		return m.listByIDsFn(ctx, ids)
	}
	return []model.Task{}, nil
}

func (m *mockTaskStore) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	m.deleteCalls++
	if m.deleteByIDsFn != nil {
		return m.deleteByIDsFn(ctx, ids)
	}
	return int64(len(ids)), nil
}

type mockCommentStore struct {
	createFn     func(ctx context.Context, comment *model.Comment) error
	listByTaskFn func(ctx context.Context, taskID string) ([]model.Comment, error)
	createCalls  int
}

func (m *mockCommentStore) Create(ctx context.Context, comment *model.Comment) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	return nil
}

func (m *mockCommentStore) ListByTask(ctx context.Context, taskID string) ([]model.Comment, error) {
	if m.listByTaskFn != nil {
		return m.listByTaskFn(ctx, taskID)
	}
	return []model.Comment{}, nil
}

type mockStoreProvider struct {
	users      store.UserStore
	workspaces store.WorkspaceStore
	projects   store.ProjectStore
	tasks      store.TaskStore
	comments   store.CommentStore
}

func (m *mockStoreProvider) Users() store.UserStore           { return m.users }
func (m *mockStoreProvider) Workspaces() store.WorkspaceStore { return m.workspaces }
func (m *mockStoreProvider) Projects() store.ProjectStore     { return m.projects }
func (m *mockStoreProvider) Tasks() store.TaskStore           { return m.tasks }
func (m *mockStoreProvider) Comments() store.CommentStore     { return m.comments }

type mockTxRunner struct {
	withTxFn func(ctx context.Context, fn func(stores service.StoreProvider) error) error
}

func (m *mockTxRunner) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	if m.withTxFn != nil {
		return m.withTxFn(ctx, fn)
	}
	return fn(&mockStoreProvider{})
}

type mockMailer struct {
	sendFn func(ctx context.Context, msg notify.Message) error
	sent   []notify.Message
}

func (m *mockMailer) Send(ctx context.Context, msg notify.Message) error {
	if m.sendFn != nil {
		if err := m.sendFn(ctx, msg); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, msg)
	return nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, event queue.Event) error
	published []queue.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event queue.Event) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, event); err != nil {
			return err
		}
	}
	m.published = append(m.published, event)
	return nil
}

type mockDirectory struct {
	getProfileFn func(ctx context.Context, userID string) (identity.Profile, error)
	calls        int
}

func (m *mockDirectory) GetProfile(ctx context.Context, userID string) (identity.Profile, error) {
	m.calls++
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return identity.Profile{ID: userID}, nil
}
