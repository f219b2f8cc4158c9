package service

import (
	"planboard.app/server/internal/identity"
	"planboard.app/server/internal/notify"
	"planboard.app/server/internal/store"
)

type Services struct {
	stores       *store.Stores
	txRunner     TxRunner
	events       EventPublisher
	mailer       notify.Mailer
	directory    identity.Directory
	dashboardURL string
}

func NewServices(
	stores *store.Stores,
	txRunner TxRunner,
	events EventPublisher,
	mailer notify.Mailer,
	directory identity.Directory,
	dashboardURL string,
) *Services {
	return &Services{
		stores:       stores,
		txRunner:     txRunner,
		events:       events,
		mailer:       mailer,
		directory:    directory,
		dashboardURL: dashboardURL,
	}
}

func (s *Services) Authorizer() Authorizer {
	return NewAuthorizer(s.stores.Workspaces(), s.stores.Projects())
}

func (s *Services) Users() UserService {
	return NewUserService(s.stores.Users(), s.directory, s.events)
}

func (s *Services) Workspaces() WorkspaceService {
	return NewWorkspaceService(
		s.stores.Users(),
		s.stores.Workspaces(),
		s.Authorizer(),
		s.txRunner,
		s.mailer,
		s.events,
		s.dashboardURL,
	)
}

func (s *Services) Projects() ProjectService {
	return NewProjectService(
		s.stores.Users(),
		s.stores.Workspaces(),
		s.stores.Projects(),
		s.Authorizer(),
		s.txRunner,
	)
}

func (s *Services) Tasks() TaskService {
	return NewTaskService(s.stores.Projects(), s.stores.Tasks(), s.Authorizer(), s.events)
}

func (s *Services) Comments() CommentService {
	return NewCommentService(s.stores.Projects(), s.stores.Tasks(), s.stores.Comments(), s.Authorizer())
}
