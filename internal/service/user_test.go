package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"planboard.app/server/internal/identity"
	"planboard.app/server/internal/model"
	"planboard.app/server/internal/queue"
	"planboard.app/server/internal/service"
	"planboard.app/server/internal/store"
)

var _ = Describe("UserService", func() {
	var (
		users     *mockUserStore
		directory *mockDirectory
		events    *mockPublisher
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		users = &mockUserStore{}
		directory = &mockDirectory{}
		events = &mockPublisher{}
	})

	It("returns a known user without touching the directory", func() {
		users.getByIDFn = func(_ context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Ada"}, nil
		}
		svc := service.NewUserService(users, directory, events)

		user, err := svc.Sync(ctx, identity.Claims{Subject: "u1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Name).To(Equal("Ada"))
		Expect(directory.calls).To(BeZero())
		Expect(users.upsertCalls).To(BeZero())
	})

	It("creates a first-sight user from the directory when the token has no email", func() {
		directory.getProfileFn = func(_ context.Context, id string) (identity.Profile, error) {
			return identity.Profile{ID: id, Name: "Ada Lovelace", Email: "ada@example.com", Image: "http://img"}, nil
		}
		var saved *model.User
		users.upsertFn = func(_ context.Context, u *model.User) error {
			saved = u
			return nil
		}
		svc := service.NewUserService(users, directory, events)

		user, err := svc.Sync(ctx, identity.Claims{Subject: "u1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(user.ID).To(Equal("u1"))
		Expect(saved.Email).To(Equal("ada@example.com"))
		Expect(saved.Image).To(Equal("http://img"))
	})

	It("uses token claims when they carry the profile", func() {
		svc := service.NewUserService(users, directory, events)

		user, err := svc.Sync(ctx, identity.Claims{Subject: "u1", Email: "ada@example.com", Name: "Ada"})
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Name).To(Equal("Ada"))
		Expect(directory.calls).To(BeZero())
	})

	It("is Unauthorized when no profile can be resolved", func() {
		directory.getProfileFn = func(context.Context, string) (identity.Profile, error) {
			return identity.Profile{}, errors.New("workos down")
		}
		svc := service.NewUserService(users, directory, events)

		_, err := svc.Sync(ctx, identity.Claims{Subject: "u1"})
		Expect(err).To(MatchError(service.ErrUnauthorized))
	})

	It("is Unauthorized without a subject", func() {
		svc := service.NewUserService(users, nil, events)
		_, err := svc.Sync(ctx, identity.Claims{})
		Expect(err).To(MatchError(service.ErrUnauthorized))
	})

	Describe("refreshing a known user", func() {
		var stored *model.User

		BeforeEach(func() {
			stored = &model.User{ID: "u1", Name: "Ada", Email: "ada@old.example", Image: "http://old"}
			users.getByIDFn = func(context.Context, string) (*model.User, error) {
				u := *stored
				return &u, nil
			}
		})

		It("re-upserts when the token's email or name changed", func() {
			var saved *model.User
			users.upsertFn = func(_ context.Context, u *model.User) error {
				saved = u
				return nil
			}
			svc := service.NewUserService(users, directory, events)

			user, err := svc.Sync(ctx, identity.Claims{Subject: "u1", Email: "ada@new.example", Name: "Ada L"})
			Expect(err).NotTo(HaveOccurred())
			Expect(users.upsertCalls).To(Equal(1))
			Expect(saved.Email).To(Equal("ada@new.example"))
			Expect(user.Name).To(Equal("Ada L"))
			Expect(user.Image).To(Equal("http://old"))
		})

		It("leaves an unchanged user alone", func() {
			svc := service.NewUserService(users, directory, events)

			_, err := svc.Sync(ctx, identity.Claims{Subject: "u1", Email: "ada@old.example"})
			Expect(err).NotTo(HaveOccurred())
			Expect(users.upsertCalls).To(BeZero())
		})

		It("keeps the stored record when the refresh fails", func() {
			users.upsertFn = func(context.Context, *model.User) error { return store.ErrConflict }
			svc := service.NewUserService(users, directory, events)

			user, err := svc.Sync(ctx, identity.Claims{Subject: "u1", Email: "taken@example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Email).To(Equal("ada@old.example"))
		})
	})

	Describe("identity provider changes", func() {
		It("queues a profile update", func() {
			svc := service.NewUserService(users, directory, events)

			err := svc.QueueProfileUpdate(ctx, queue.UserUpdatedPayload{UserID: "u1", Email: "ada@example.com", Name: "Ada"})
			Expect(err).NotTo(HaveOccurred())
			Expect(events.published).To(HaveLen(1))
			Expect(events.published[0].Name).To(Equal(queue.EventUserUpdated))
		})

		It("rejects a deletion without a user id", func() {
			svc := service.NewUserService(users, directory, events)

			err := svc.QueueDeletion(ctx, "")
			Expect(err).To(MatchError(service.ErrBadRequest))
			Expect(events.published).To(BeEmpty())
		})

		It("applies a profile to a known user", func() {
			users.getByIDFn = func(_ context.Context, id string) (*model.User, error) {
				return &model.User{ID: id, Name: "Ada", Email: "ada@old.example"}, nil
			}
			var saved *model.User
			users.upsertFn = func(_ context.Context, u *model.User) error {
				saved = u
				return nil
			}
			svc := service.NewUserService(users, directory, events)

			err := svc.ApplyProfile(ctx, queue.UserUpdatedPayload{UserID: "u1", Email: "ada@new.example", Name: "Ada Lovelace", Image: "http://img"})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Email).To(Equal("ada@new.example"))
			Expect(saved.Name).To(Equal("Ada Lovelace"))
			Expect(saved.Image).To(Equal("http://img"))
		})

		It("skips a profile update for an unknown user", func() {
			svc := service.NewUserService(users, directory, events)

			err := svc.ApplyProfile(ctx, queue.UserUpdatedPayload{UserID: "ghost", Email: "g@example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(users.upsertCalls).To(BeZero())
		})

		It("treats deleting a missing user as done", func() {
			users.deleteFn = func(context.Context, string) error { return store.ErrNotFound }
			svc := service.NewUserService(users, directory, events)

			Expect(svc.Delete(ctx, "ghost")).To(Succeed())
			Expect(users.deleteCalls).To(Equal(1))
		})

		It("keeps a user that still owns workspaces", func() {
			users.deleteFn = func(context.Context, string) error { return store.ErrConflict }
			svc := service.NewUserService(users, directory, events)

			Expect(svc.Delete(ctx, "owner")).To(Succeed())
		})

		It("surfaces other delete failures", func() {
			users.deleteFn = func(context.Context, string) error { return errors.New("db down") }
			svc := service.NewUserService(users, directory, events)

			Expect(svc.Delete(ctx, "u1")).To(MatchError(ContainSubstring("db down")))
		})
	})
})
