package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"planboard.app/server/internal/client"
	"planboard.app/server/internal/http/dto"
	"planboard.app/server/internal/model"
)

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		calls   atomic.Int32
		c       *client.Client
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		calls.Store(0)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			handler(w, r)
		}))
		c = client.New(client.Config{
			BaseURL:         server.URL + "/",
			Token:           func(context.Context) (string, error) { return "tok", nil },
			MaxTries:        3,
			MaxElapsedTime:  5 * time.Second,
			InitialInterval: time.Millisecond,
		})
	})

	AfterEach(func() {
		server.Close()
	})

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		Expect(json.NewEncoder(w).Encode(v)).To(Succeed())
	}

	It("sends the bearer token and unwraps the envelope", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer tok"))
			Expect(r.URL.Path).To(Equal("/api/workspaces"))
			writeJSON(w, http.StatusOK, dto.WorkspacesResponse{Workspaces: []model.Workspace{{ID: "w1"}}})
		}

		workspaces, err := c.ListWorkspaces(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(workspaces).To(HaveLen(1))
		Expect(workspaces[0].ID).To(Equal("w1"))
	})

	It("lists workspace memberships", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/workspaces/memberships"))
			writeJSON(w, http.StatusOK, dto.WorkspaceMembershipsResponse{WorkspaceIDs: []string{"w1", "w2"}})
		}

		ids, err := c.ListWorkspaceMemberships(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]string{"w1", "w2"}))
	})

	It("retries server errors until one succeeds", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			if calls.Load() < 3 {
				writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Message: "upstream"})
				return
			}
			writeJSON(w, http.StatusOK, dto.CommentsResponse{Comments: []model.Comment{{ID: "c1"}}})
		}

		comments, err := c.ListComments(ctx, "t1")

		Expect(err).NotTo(HaveOccurred())
		Expect(comments).To(HaveLen(1))
		Expect(calls.Load()).To(BeNumerically("==", 3))
	})

	It("gives up after the configured number of tries", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
		}

		_, err := c.ListWorkspaces(ctx)

		Expect(client.StatusCode(err)).To(Equal(http.StatusInternalServerError))
		Expect(calls.Load()).To(BeNumerically("==", 3))
	})

	It("does not retry client errors", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Message: "You do not have admin privileges"})
		}

		_, err := c.AddWorkspaceMember(ctx, dto.AddMemberRequest{Email: "a@example.com", Role: model.WorkspaceRoleMember, WorkspaceID: "w1"})

		var apiErr *client.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusForbidden))
		Expect(apiErr.Message).To(Equal("You do not have admin privileges"))
		Expect(calls.Load()).To(BeNumerically("==", 1))
	})

	It("retries rate limiting", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			if calls.Load() == 1 {
				writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{Message: "slow down"})
				return
			}
			writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
		}

		Expect(c.DeleteTasks(ctx, []string{"t1"})).To(Succeed())
		Expect(calls.Load()).To(BeNumerically("==", 2))
	})

	It("sends a create only once when the server fails", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Message: "upstream"})
		}

		_, err := c.CreateWorkspace(ctx, dto.CreateWorkspaceRequest{Name: "Acme"})

		Expect(client.StatusCode(err)).To(Equal(http.StatusBadGateway))
		Expect(calls.Load()).To(BeNumerically("==", 1))
	})

	It("does not resend a POST after the connection drops", func() {
		handler = func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}

		_, err := c.CreateTask(ctx, dto.CreateTaskRequest{ProjectID: "p1", Title: "Fix bug"})

		Expect(err).To(HaveOccurred())
		Expect(client.StatusCode(err)).To(BeZero())
		Expect(calls.Load()).To(BeNumerically("==", 1))
	})

	It("retries an update on server errors", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			if calls.Load() < 2 {
				writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Message: "down"})
				return
			}
			writeJSON(w, http.StatusOK, dto.TaskResponse{Task: &model.Task{ID: "t1"}, Message: "Task updated successfully"})
		}

		task, err := c.UpdateTask(ctx, "t1", dto.UpdateTaskRequest{})

		Expect(err).NotTo(HaveOccurred())
		Expect(task.ID).To(Equal("t1"))
		Expect(calls.Load()).To(BeNumerically("==", 2))
	})

	It("joins validation message lists", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": []string{"title should not be empty", "due_date must be a date"}})
		}

		_, err := c.CreateTask(ctx, dto.CreateTaskRequest{ProjectID: "p1"})

		Expect(err).To(MatchError(ContainSubstring("title should not be empty; due_date must be a date")))
	})

	It("encodes a cleared date as null and omits untouched ones", func() {
		var body map[string]any
		handler = func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(raw, &body)).To(Succeed())
			writeJSON(w, http.StatusOK, dto.ProjectResponse{Project: &model.Project{ID: "p1"}})
		}

		_, err := c.UpdateProject(ctx, dto.UpdateProjectRequest{
			ID:          "p1",
			WorkspaceID: "w1",
			EndDate:     dto.NullableDate{Set: true},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(HaveKeyWithValue("end_date", BeNil()))
		Expect(body).NotTo(HaveKey("start_date"))
	})

	It("stops retrying when the context is cancelled", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Message: "down"})
		}
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.ListWorkspaces(cctx)

		Expect(err).To(HaveOccurred())
	})
})
