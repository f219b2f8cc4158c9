package handler_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"planboard.app/server/internal/http/handler"
	"planboard.app/server/internal/model"
	"planboard.app/server/internal/service"
)

var _ = Describe("WorkspaceHandler", func() {
	var (
		router *gin.Engine
		svc    *mockWorkspaceService
	)

	BeforeEach(func() {
		router = newRouter()
		svc = &mockWorkspaceService{}
		h := handler.NewWorkspaceHandler(svc)
		router.GET("/api/workspaces", h.List)
		router.POST("/api/workspaces", h.Create)
		router.GET("/api/workspaces/memberships", h.Memberships)
		router.POST("/api/workspaces/add-member", h.AddMember)
		router.POST("/api/workspaces/invite-member", h.InviteMember)
	})

	Describe("List", func() {
		It("wraps the caller's workspaces", func() {
			svc.listForUserFn = func(_ context.Context, userID string) ([]model.Workspace, error) {
				Expect(userID).To(Equal(callerID))
				return []model.Workspace{{ID: "w1", Name: "Acme"}}, nil
			}

			w := doJSON(router, http.MethodGet, "/api/workspaces", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			workspaces := decode(w)["workspaces"].([]any)
			Expect(workspaces).To(HaveLen(1))
			Expect(workspaces[0].(map[string]any)["name"]).To(Equal("Acme"))
		})

		It("hides unexpected errors behind a timestamped 500", func() {
			svc.listForUserFn = func(context.Context, string) ([]model.Workspace, error) {
				return nil, errors.New("connection refused")
			}

			w := doJSON(router, http.MethodGet, "/api/workspaces", nil)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			resp := decode(w)
			Expect(resp["message"]).To(Equal("Internal server error"))
			Expect(resp["statusCode"]).To(BeNumerically("==", 500))
			Expect(resp["path"]).To(Equal("/api/workspaces"))
			Expect(resp["timestamp"]).NotTo(BeEmpty())
		})
	})

	Describe("Memberships", func() {
		It("returns the caller's workspace ids", func() {
			svc.listIDsFn = func(_ context.Context, userID string) ([]string, error) {
				Expect(userID).To(Equal(callerID))
				return []string{"w1", "w2"}, nil
			}

			w := doJSON(router, http.MethodGet, "/api/workspaces/memberships", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["workspaceIds"]).To(Equal([]any{"w1", "w2"}))
		})

		It("returns an empty list, never null", func() {
			w := doJSON(router, http.MethodGet, "/api/workspaces/memberships", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"workspaceIds":[]`))
		})
	})

	Describe("AddMember", func() {
		body := map[string]string{"email": "bob@example.com", "role": "MEMBER", "workspaceId": "w1"}

		It("returns the member on success", func() {
			svc.addMemberFn = func(_ context.Context, caller string, in service.AddMemberInput) (*model.WorkspaceMember, error) {
				Expect(caller).To(Equal(callerID))
				Expect(in.Role).To(Equal(model.WorkspaceRoleMember))
				return &model.WorkspaceMember{ID: "m1", UserID: "u2", WorkspaceID: in.WorkspaceID, Role: in.Role}, nil
			}

			w := doJSON(router, http.MethodPost, "/api/workspaces/add-member", body)

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["message"]).To(Equal("Member added successfully"))
			Expect(resp["member"].(map[string]any)["id"]).To(Equal("m1"))
		})

		It("maps forbidden to 403", func() {
			svc.addMemberFn = func(context.Context, string, service.AddMemberInput) (*model.WorkspaceMember, error) {
				return nil, &service.Error{Kind: service.ErrForbidden, Message: "You do not have admin privileges"}
			}

			w := doJSON(router, http.MethodPost, "/api/workspaces/add-member", body)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decode(w)["message"]).To(Equal("You do not have admin privileges"))
		})

		It("rejects an unknown role before reaching the service", func() {
			called := false
			svc.addMemberFn = func(context.Context, string, service.AddMemberInput) (*model.WorkspaceMember, error) {
				called = true
				return nil, nil
			}

			w := doJSON(router, http.MethodPost, "/api/workspaces/add-member",
				map[string]string{"email": "bob@example.com", "role": "OWNER", "workspaceId": "w1"})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(called).To(BeFalse())
		})
	})

	Describe("InviteMember", func() {
		It("reports the invited email and workspace name", func() {
			svc.inviteMemberFn = func(_ context.Context, _ string, in service.AddMemberInput) (*service.InviteResult, error) {
				return &service.InviteResult{Email: in.Email, WorkspaceName: "Acme"}, nil
			}

			w := doJSON(router, http.MethodPost, "/api/workspaces/invite-member",
				map[string]string{"email": "new@example.com", "role": "ADMIN", "workspaceId": "w1"})

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)).To(Equal(map[string]any{
				"message":   "Invitation email sent successfully",
				"email":     "new@example.com",
				"workspace": "Acme",
			}))
		})

		It("maps not found to 404", func() {
			svc.inviteMemberFn = func(context.Context, string, service.AddMemberInput) (*service.InviteResult, error) {
				return nil, &service.Error{Kind: service.ErrNotFound, Message: "Workspace not found"}
			}

			w := doJSON(router, http.MethodPost, "/api/workspaces/invite-member",
				map[string]string{"email": "new@example.com", "role": "ADMIN", "workspaceId": "nope"})

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Create", func() {
		It("accepts the request with the future workspace id", func() {
			svc.createFn = func(_ context.Context, caller string, in service.CreateWorkspaceInput) (string, error) {
				Expect(in.Name).To(Equal("Acme"))
				return "w42", nil
			}

			w := doJSON(router, http.MethodPost, "/api/workspaces", map[string]string{"name": "Acme"})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(decode(w)["workspaceId"]).To(Equal("w42"))
		})

		It("requires a name", func() {
			w := doJSON(router, http.MethodPost, "/api/workspaces", map[string]string{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
