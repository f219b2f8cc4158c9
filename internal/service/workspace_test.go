package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"planboard.app/server/internal/model"
	"planboard.app/server/internal/notify"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/service"
	"planboard.app/server/internal/store"
)

var _ = Describe("WorkspaceService", func() {
	var (
		svc        service.WorkspaceService
		users      *mockUserStore
		workspaces *mockWorkspaceStore
		mailer     *mockMailer
		events     *mockPublisher
		ctx        context.Context
		ws         *model.Workspace
		bob        *model.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		users = &mockUserStore{}
		workspaces = &mockWorkspaceStore{}
		mailer = &mockMailer{}
		events = &mockPublisher{}

		ws = &model.Workspace{
			ID:      "ws1",
			Name:    "Acme",
			OwnerID: "alice",
			Owner:   &model.User{ID: "alice", Name: "Alice"},
			Members: []model.WorkspaceMember{
				{UserID: "alice", Role: model.WorkspaceRoleAdmin, User: &model.User{ID: "alice", Email: "alice@example.com"}},
				{UserID: "carol", Role: model.WorkspaceRoleMember, User: &model.User{ID: "carol", Email: "carol@example.com"}},
			},
		}
		bob = &model.User{ID: "bob", Name: "Bob", Email: "bob@example.com"}

		workspaces.getByIDFn = func(_ context.Context, id string) (*model.Workspace, error) {
			if id == ws.ID {
				return ws, nil
			}
			return nil, store.ErrNotFound
		}
		workspaces.getMemberRoleFn = func(_ context.Context, _ string, userID string) (model.WorkspaceRole, error) {
			if role, ok := ws.MemberRole(userID); ok {
				return role, nil
			}
			return "", store.ErrNotFound
		}
		users.getByEmailFn = func(_ context.Context, email string) (*model.User, error) {
			if email == bob.Email {
				return bob, nil
			}
			return nil, store.ErrNotFound
		}

		svc = service.NewWorkspaceService(
			users,
			workspaces,
			service.NewAuthorizer(workspaces, &mockProjectStore{}),
			&mockTxRunner{withTxFn: func(ctx context.Context, fn func(service.StoreProvider) error) error {
				return fn(&mockStoreProvider{users: users, workspaces: workspaces})
			}},
			mailer,
			events,
			"http://localhost:5173",
		)
	})

	Describe("AddMember", func() {
		input := func() service.AddMemberInput {
			return service.AddMemberInput{Email: "bob@example.com", Role: model.WorkspaceRoleMember, WorkspaceID: "ws1", Message: "hi"}
		}

		It("adds the member and emails them", func() {
			member, err := svc.AddMember(ctx, "alice", input())
			Expect(err).NotTo(HaveOccurred())
			Expect(member.UserID).To(Equal("bob"))
			Expect(member.Role).To(Equal(model.WorkspaceRoleMember))
			Expect(member.Message).To(Equal("hi"))
			Expect(member.User).To(Equal(bob))
			Expect(workspaces.addMemberCalls).To(Equal(1))
			Expect(mailer.sent).To(HaveLen(1))
			Expect(mailer.sent[0].To).To(Equal("bob@example.com"))
			Expect(mailer.sent[0].HTML).To(ContainSubstring("Alice has invited you"))
		})

		It("forbids non-admins and creates no record", func() {
			_, err := svc.AddMember(ctx, "carol", input())
			Expect(err).To(MatchError(service.ErrForbidden))
			Expect(err.Error()).To(Equal("You do not have admin privileges"))
			Expect(workspaces.addMemberCalls).To(BeZero())
			Expect(mailer.sent).To(BeEmpty())
		})

		It("forbids callers outside the workspace", func() {
			_, err := svc.AddMember(ctx, "mallory", input())
			Expect(err).To(MatchError(service.ErrForbidden))
			Expect(workspaces.addMemberCalls).To(BeZero())
		})

		It("returns NotFound for an unknown user", func() {
			in := input()
			in.Email = "nobody@example.com"
			_, err := svc.AddMember(ctx, "alice", in)
			Expect(err).To(MatchError(service.ErrNotFound))
			Expect(err.Error()).To(Equal("User not found"))
		})

		It("rejects an invalid role", func() {
			in := input()
			in.Role = "OWNER"
			_, err := svc.AddMember(ctx, "alice", in)
			Expect(err).To(MatchError(service.ErrBadRequest))
			Expect(err.Error()).To(Equal("Invalid role"))
		})

		It("returns NotFound for an unknown workspace", func() {
			in := input()
			in.WorkspaceID = "missing"
			_, err := svc.AddMember(ctx, "alice", in)
			Expect(err).To(MatchError(service.ErrNotFound))
			Expect(err.Error()).To(Equal("Workspace not found"))
		})

		It("rejects an existing member", func() {
			carol := &model.User{ID: "carol", Email: "carol@example.com"}
			users.getByEmailFn = func(context.Context, string) (*model.User, error) { return carol, nil }
			in := input()
			in.Email = "carol@example.com"
			_, err := svc.AddMember(ctx, "alice", in)
			Expect(err).To(MatchError(service.ErrBadRequest))
			Expect(err.Error()).To(Equal("User is already a member"))
			Expect(workspaces.addMemberCalls).To(BeZero())
		})

		It("maps a unique violation to BadRequest", func() {
			workspaces.addMemberFn = func(context.Context, *model.WorkspaceMember) error { return store.ErrConflict }
			_, err := svc.AddMember(ctx, "alice", input())
			Expect(err).To(MatchError(service.ErrBadRequest))
		})

		It("still adds the member when the email fails", func() {
			mailer.sendFn = func(context.Context, notify.Message) error { return errors.New("smtp down") }
			member, err := svc.AddMember(ctx, "alice", input())
			Expect(err).NotTo(HaveOccurred())
			Expect(member).NotTo(BeNil())
			Expect(workspaces.addMemberCalls).To(Equal(1))
		})
	})

	Describe("InviteMember", func() {
		input := func() service.AddMemberInput {
			return service.AddMemberInput{Email: "dave@example.com", Role: model.WorkspaceRoleAdmin, WorkspaceID: "ws1"}
		}

		It("sends the invitation without creating a member", func() {
			users.getByIDFn = func(context.Context, string) (*model.User, error) {
				return &model.User{ID: "alice", Name: "Alice Admin"}, nil
			}
			res, err := svc.InviteMember(ctx, "alice", input())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Email).To(Equal("dave@example.com"))
			Expect(res.WorkspaceName).To(Equal("Acme"))
			Expect(workspaces.addMemberCalls).To(BeZero())
			Expect(mailer.sent).To(HaveLen(1))
			Expect(mailer.sent[0].HTML).To(ContainSubstring("Alice Admin has invited you"))
			Expect(mailer.sent[0].HTML).To(ContainSubstring("Accept Invitation"))
		})

		It("turns an email failure into BadRequest", func() {
			mailer.sendFn = func(context.Context, notify.Message) error { return errors.New("smtp down") }
			_, err := svc.InviteMember(ctx, "alice", input())
			Expect(err).To(MatchError(service.ErrBadRequest))
			Expect(err.Error()).To(Equal("Failed to send invitation email: smtp down"))
		})

		It("forbids non-admins", func() {
			_, err := svc.InviteMember(ctx, "carol", input())
			Expect(err).To(MatchError(service.ErrForbidden))
			Expect(mailer.sent).To(BeEmpty())
		})

		It("rejects inviting an existing member", func() {
			in := input()
			in.Email = "CAROL@example.com"
			_, err := svc.InviteMember(ctx, "alice", in)
			Expect(err).To(MatchError(service.ErrBadRequest))
		})
	})

	Describe("Create", func() {
		It("publishes a workspace.created event", func() {
			workspaceID, err := svc.Create(ctx, "alice", service.CreateWorkspaceInput{Name: "New Team"})
			Expect(err).NotTo(HaveOccurred())
			Expect(workspaceID).NotTo(BeEmpty())
			Expect(events.published).To(HaveLen(1))
			Expect(events.published[0].Name).To(Equal(queue.EventWorkspaceCreated))

			payload, ok := events.published[0].Data.(queue.WorkspaceCreatedPayload)
			Expect(ok).To(BeTrue())
			Expect(payload.WorkspaceID).To(Equal(workspaceID))
			Expect(payload.OwnerID).To(Equal("alice"))
			Expect(payload.Slug).To(HavePrefix("new-team-"))
		})

		It("rejects a blank name", func() {
			_, err := svc.Create(ctx, "alice", service.CreateWorkspaceInput{Name: "  "})
			Expect(err).To(MatchError(service.ErrBadRequest))
			Expect(events.published).To(BeEmpty())
		})

		It("fails when the event cannot be published", func() {
			events.publishFn = func(context.Context, queue.Event) error { return errors.New("redis down") }
			_, err := svc.Create(ctx, "alice", service.CreateWorkspaceInput{Name: "New Team"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Provision", func() {
		payload := queue.WorkspaceCreatedPayload{WorkspaceID: "ws2", Name: "New", Slug: "new-000002", OwnerID: "alice"}

		It("creates the workspace with its owner as ADMIN", func() {
			var owner *model.WorkspaceMember
			workspaces.addMemberFn = func(_ context.Context, m *model.WorkspaceMember) error {
				owner = m
				return nil
			}
			created, err := svc.Provision(ctx, payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(Equal("ws2"))
			Expect(workspaces.createCalls).To(Equal(1))
			Expect(owner.UserID).To(Equal("alice"))
			Expect(owner.Role).To(Equal(model.WorkspaceRoleAdmin))
		})

		It("is a no-op when the workspace already exists", func() {
			p := payload
			p.WorkspaceID = "ws1"
			got, err := svc.Provision(ctx, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(ws))
			Expect(workspaces.createCalls).To(BeZero())
			Expect(workspaces.addMemberCalls).To(BeZero())
		})
	})

	Describe("ListForUser", func() {
		It("returns the store's workspaces", func() {
			workspaces.listForUserFn = func(_ context.Context, userID string) ([]model.Workspace, error) {
				Expect(userID).To(Equal("alice"))
				return []model.Workspace{*ws}, nil
			}
			list, err := svc.ListForUser(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
		})
	})
})
