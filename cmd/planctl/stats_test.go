package main

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"planboard.app/server/internal/model"
)

var _ = Describe("computeStats", func() {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	me, other := "user_me", "user_other"

	task := func(id string, status model.TaskStatus, due time.Time, assignee *string) model.Task {
		return model.Task{ID: id, Status: status, DueDate: due, AssigneeID: assignee}
	}

	It("counts projects by status and tasks by completion", func() {
		ws := &model.Workspace{Projects: []model.Project{
			{ID: "p1", Status: model.ProjectStatusActive, Tasks: []model.Task{
				task("t1", model.TaskStatusDone, now.AddDate(0, 0, 1), nil),
				task("t2", model.TaskStatusTodo, now.AddDate(0, 0, 1), nil),
			}},
			{ID: "p2", Status: model.ProjectStatusCompleted},
			{ID: "p3", Status: model.ProjectStatusPlanning},
		}}

		st := computeStats(ws, me, now)

		Expect(st.TotalProjects).To(Equal(3))
		Expect(st.ActiveProjects).To(Equal(1))
		Expect(st.CompletedProjects).To(Equal(1))
		Expect(st.TotalTasks).To(Equal(2))
		Expect(st.CompletedTasks).To(Equal(1))
	})

	It("treats only unfinished past-due tasks as overdue", func() {
		ws := &model.Workspace{Projects: []model.Project{{ID: "p1", Tasks: []model.Task{
			task("late", model.TaskStatusInProgress, now.Add(-time.Hour), nil),
			task("late-done", model.TaskStatusDone, now.Add(-time.Hour), nil),
			task("future", model.TaskStatusTodo, now.Add(time.Hour), nil),
			task("undated", model.TaskStatusTodo, time.Time{}, nil),
		}}}}

		Expect(computeStats(ws, me, now).OverdueTasks).To(Equal(1))
	})

	It("counts tasks assigned to the caller across projects", func() {
		ws := &model.Workspace{Projects: []model.Project{
			{ID: "p1", Tasks: []model.Task{
				task("t1", model.TaskStatusTodo, now, &me),
				task("t2", model.TaskStatusDone, now, &me),
				task("t3", model.TaskStatusTodo, now, &other),
			}},
			{ID: "p2", Tasks: []model.Task{
				task("t4", model.TaskStatusTodo, now, nil),
				task("t5", model.TaskStatusTodo, now, &me),
			}},
		}}

		Expect(computeStats(ws, me, now).MyTasks).To(Equal(3))
		Expect(computeStats(ws, "", now).MyTasks).To(BeZero())
	})

	It("is all zero without a workspace", func() {
		Expect(computeStats(nil, me, now)).To(Equal(workspaceStats{}))
	})
})

var _ = Describe("callerID", func() {
	It("prefers the configured user id", func() {
		a := &app{cfg: Config{UserID: "user_cfg", Token: "not-a-jwt"}}
		id, err := a.callerID()
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal("user_cfg"))
	})

	It("reads the subject from the token", func() {
		// {"alg":"none"} . {"sub":"user_tok"} . no signature
		a := &app{cfg: Config{Token: "eyJhbGciOiJub25lIn0.eyJzdWIiOiJ1c2VyX3RvayJ9."}}
		id, err := a.callerID()
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal("user_tok"))
	})

	It("explains how to fix an unreadable token", func() {
		a := &app{cfg: Config{Token: "garbage"}}
		_, err := a.callerID()
		Expect(err).To(MatchError(ContainSubstring("PLANCTL_USER_ID")))
	})
})
