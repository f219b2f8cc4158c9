// Package clientstate holds the terminal client's in-memory projection of
// the caller's workspaces, projects and tasks.
//
// Every entity lives in exactly one map keyed by id. Ordered indexes link
// workspaces to projects and projects to tasks, and both the workspace list
// and the current workspace are assembled from the same maps on read, so
// the two can never disagree.
package clientstate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"planboard.app/server/internal/model"
)

var (
	ErrUnknownWorkspace = errors.New("unknown workspace")
	ErrUnknownProject   = errors.New("unknown project")
	ErrMissingProjectID = errors.New("task has no projectId")
)

// SelectionKey is the KV slot holding the selected workspace id.
const SelectionKey = "currentWorkspaceId"

type Store struct {
	mu sync.RWMutex
	kv KV

	workspaceOrder []string
	workspaces     map[string]model.Workspace
	projects       map[string]model.Project
	tasks          map[string]model.Task

	projectsByWorkspace map[string][]string
	tasksByProject      map[string][]string

	currentID string
}

func NewStore(kv KV) *Store {
	s := &Store{kv: kv}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.workspaceOrder = nil
	s.workspaces = map[string]model.Workspace{}
	s.projects = map[string]model.Project{}
	s.tasks = map[string]model.Task{}
	s.projectsByWorkspace = map[string][]string{}
	s.tasksByProject = map[string][]string{}
	s.currentID = ""
}

// LoadWorkspaces replaces everything with list. The remembered selection
// survives if its workspace is still present; otherwise the first workspace
// is selected, or none when list is empty. Nothing changes if the selection
// cannot be read or persisted.
func (s *Store) LoadWorkspaces(ctx context.Context, list []model.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remembered := s.currentID
	if remembered == "" {
		id, ok, err := s.kv.Get(ctx, SelectionKey)
		if err != nil {
			return fmt.Errorf("reading selection: %w", err)
		}
		if ok {
			remembered = id
		}
	}

	selected := ""
	for _, ws := range list {
		if ws.ID == remembered {
			selected = remembered
			break
		}
	}
	if selected == "" && len(list) > 0 {
		selected = list[0].ID
	}

	if selected == "" {
		if err := s.kv.Delete(ctx, SelectionKey); err != nil {
			return fmt.Errorf("clearing selection: %w", err)
		}
	} else if err := s.kv.Set(ctx, SelectionKey, selected); err != nil {
		return fmt.Errorf("persisting selection: %w", err)
	}

	s.reset()
	for _, ws := range list {
		s.putWorkspace(ws)
	}
	s.currentID = selected
	return nil
}

func (s *Store) putWorkspace(ws model.Workspace) {
	projects := ws.Projects
	ws.Projects = nil
	ws.Members = slices.Clone(ws.Members)

	if _, exists := s.workspaces[ws.ID]; !exists {
		s.workspaceOrder = append(s.workspaceOrder, ws.ID)
	}
	s.workspaces[ws.ID] = ws

	for _, p := range projects {
		if p.WorkspaceID == "" {
			p.WorkspaceID = ws.ID
		}
		s.putProject(p)
	}
}

// SelectWorkspace selects id and persists it. Unknown ids are rejected and
// leave the selection unchanged.
func (s *Store) SelectWorkspace(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workspaces[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorkspace, id)
	}
	if err := s.kv.Set(ctx, SelectionKey, id); err != nil {
		return fmt.Errorf("persisting selection: %w", err)
	}
	s.currentID = id
	return nil
}

// UpsertProject inserts p at the end of its workspace or replaces it in
// place. A project without a workspaceId goes to the current workspace. A
// project that changed workspace moves to the end of the new one. A non-nil
// task list replaces the project's tasks; a nil one keeps them.
func (s *Store) UpsertProject(p model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.WorkspaceID == "" {
		p.WorkspaceID = s.currentID
	}
	if _, ok := s.workspaces[p.WorkspaceID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWorkspace, p.WorkspaceID)
	}

	s.putProject(p)
	return nil
}

func (s *Store) putProject(p model.Project) {
	tasks := p.Tasks
	p.Tasks = nil
	p.Members = slices.Clone(p.Members)

	if old, exists := s.projects[p.ID]; exists && old.WorkspaceID != p.WorkspaceID {
		s.projectsByWorkspace[old.WorkspaceID] = remove(s.projectsByWorkspace[old.WorkspaceID], p.ID)
	}
	if !slices.Contains(s.projectsByWorkspace[p.WorkspaceID], p.ID) {
		s.projectsByWorkspace[p.WorkspaceID] = append(s.projectsByWorkspace[p.WorkspaceID], p.ID)
	}
	s.projects[p.ID] = p

	if tasks == nil {
		return
	}
	for _, id := range s.tasksByProject[p.ID] {
		delete(s.tasks, id)
	}
	s.tasksByProject[p.ID] = nil
	for _, t := range tasks {
		t.ProjectID = p.ID
		s.putTask(t)
	}
}

// UpsertTask inserts t at the end of its project or replaces it in place.
func (s *Store) UpsertTask(t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ProjectID == "" {
		return ErrMissingProjectID
	}
	if _, ok := s.projects[t.ProjectID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProject, t.ProjectID)
	}

	s.putTask(t)
	return nil
}

func (s *Store) putTask(t model.Task) {
	t.Comments = slices.Clone(t.Comments)
	// The owning project is resolved through tasksByProject on read.
	t.Project = nil

	if old, exists := s.tasks[t.ID]; exists && old.ProjectID != t.ProjectID {
		s.tasksByProject[old.ProjectID] = remove(s.tasksByProject[old.ProjectID], t.ID)
	}
	if !slices.Contains(s.tasksByProject[t.ProjectID], t.ID) {
		s.tasksByProject[t.ProjectID] = append(s.tasksByProject[t.ProjectID], t.ID)
	}
	s.tasks[t.ID] = t
}

// DeleteTasks removes the listed tasks from projectID. Ids that belong to
// other projects or are unknown are ignored.
func (s *Store) DeleteTasks(ids []string, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProject, projectID)
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		if t, ok := s.tasks[id]; ok && t.ProjectID == projectID {
			drop[id] = true
			delete(s.tasks, id)
		}
	}
	s.tasksByProject[projectID] = slices.DeleteFunc(s.tasksByProject[projectID], func(id string) bool {
		return drop[id]
	})
	return nil
}

// Clear empties the store and forgets the persisted selection.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, SelectionKey); err != nil {
		return fmt.Errorf("clearing selection: %w", err)
	}
	s.reset()
	return nil
}

// Workspaces returns every workspace with its projects and their tasks, in
// load order.
func (s *Store) Workspaces() []model.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Workspace, 0, len(s.workspaceOrder))
	for _, id := range s.workspaceOrder {
		out = append(out, s.assemble(id))
	}
	return out
}

// CurrentWorkspace returns the selected workspace, or nil when none is.
func (s *Store) CurrentWorkspace() *model.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentID == "" {
		return nil
	}
	ws := s.assemble(s.currentID)
	return &ws
}

func (s *Store) CurrentWorkspaceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// WorkspaceIDs returns the cached workspace ids in load order.
func (s *Store) WorkspaceIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.workspaceOrder)
}

func (s *Store) Project(id string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.projects[id]; !ok {
		return model.Project{}, false
	}
	return s.assembleProject(id), true
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	t.Comments = slices.Clone(t.Comments)
	return t, true
}

func (s *Store) assemble(workspaceID string) model.Workspace {
	ws := s.workspaces[workspaceID]
	ws.Members = slices.Clone(ws.Members)
	ws.Projects = make([]model.Project, 0, len(s.projectsByWorkspace[workspaceID]))
	for _, pid := range s.projectsByWorkspace[workspaceID] {
		ws.Projects = append(ws.Projects, s.assembleProject(pid))
	}
	return ws
}

func (s *Store) assembleProject(projectID string) model.Project {
	p := s.projects[projectID]
	p.Members = slices.Clone(p.Members)
	p.Tasks = make([]model.Task, 0, len(s.tasksByProject[projectID]))
	for _, tid := range s.tasksByProject[projectID] {
		t := s.tasks[tid]
		t.Comments = slices.Clone(t.Comments)
		p.Tasks = append(p.Tasks, t)
	}
	return p
}

func remove(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(v string) bool { return v == id })
}
