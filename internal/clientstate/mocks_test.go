package clientstate_test

import (
	"context"

	"planboard.app/server/internal/clientstate"
	"planboard.app/server/internal/model"
)

type mockKV struct {
	*clientstate.MemoryKV
	getFn    func(key string) (string, bool, error)
	setFn    func(key, value string) error
	deleteFn func(key string) error
}

func newMockKV() *mockKV {
	return &mockKV{MemoryKV: clientstate.NewMemoryKV()}
}

func (m *mockKV) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getFn != nil {
		return m.getFn(key)
	}
	return m.MemoryKV.Get(ctx, key)
}

func (m *mockKV) Set(ctx context.Context, key, value string) error {
	if m.setFn != nil {
		return m.setFn(key, value)
	}
	return m.MemoryKV.Set(ctx, key, value)
}

func (m *mockKV) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(key)
	}
	return m.MemoryKV.Delete(ctx, key)
}

func workspace(id string, projects ...model.Project) model.Workspace {
	return model.Workspace{ID: id, Name: "ws " + id, Projects: projects}
}

func project(id, workspaceID string, tasks ...model.Task) model.Project {
	return model.Project{ID: id, Name: "project " + id, WorkspaceID: workspaceID, Tasks: tasks}
}

func task(id, projectID, title string) model.Task {
	return model.Task{ID: id, ProjectID: projectID, Title: title, Status: model.TaskStatusTodo}
}

func taskIDs(p model.Project) []string {
	ids := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		ids[i] = t.ID
	}
	return ids
}

func projectIDs(ws model.Workspace) []string {
	ids := make([]string, len(ws.Projects))
	for i, p := range ws.Projects {
		ids[i] = p.ID
	}
	return ids
}
