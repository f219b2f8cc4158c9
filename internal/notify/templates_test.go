package notify_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"planboard.app/server/internal/notify"
)

var _ = Describe("Templates", func() {
	Describe("Invitation", func() {
		It("renders an invitation with the inviter and message", func() {
			msg, err := notify.Invitation(notify.InvitationData{
				To:            "bob@example.com",
				InviterName:   "Alice",
				WorkspaceName: "Acme",
				Role:          "MEMBER",
				Message:       "Welcome aboard",
				DashboardURL:  "http://localhost:5173",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.To).To(Equal("bob@example.com"))
			Expect(msg.Subject).To(Equal("You've been invited to join Acme"))
			Expect(msg.HTML).To(ContainSubstring("Alice has invited you"))
			Expect(msg.HTML).To(ContainSubstring("Welcome aboard"))
			Expect(msg.HTML).To(ContainSubstring("Accept Invitation"))
			Expect(msg.HTML).To(ContainSubstring("Hi there"))
		})

		It("uses the added wording and falls back for a missing inviter", func() {
			msg, err := notify.Invitation(notify.InvitationData{
				To:            "bob@example.com",
				RecipientName: "Bob",
				WorkspaceName: "Acme",
				Role:          "ADMIN",
				Added:         true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.HTML).To(ContainSubstring("A team member has invited you"))
			Expect(msg.HTML).To(ContainSubstring("Access Workspace"))
			Expect(msg.HTML).To(ContainSubstring("Hi Bob"))
			Expect(msg.HTML).NotTo(ContainSubstring("font-style:italic"))
		})

		It("escapes user supplied text", func() {
			msg, err := notify.Invitation(notify.InvitationData{
				WorkspaceName: "Acme",
				Message:       "<script>alert(1)</script>",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.HTML).NotTo(ContainSubstring("<script>"))
		})
	})

	Describe("TaskAssigned", func() {
		It("renders task details", func() {
			msg, err := notify.TaskAssigned(notify.TaskAssignedData{
				To:           "carol@example.com",
				AssigneeName: "Carol",
				ProjectName:  "Launch",
				TaskTitle:    "Fix bug",
				DueDate:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				TaskURL:      "http://localhost:5173/taskDetails?projectId=p1&taskId=t1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Subject).To(Equal("New Task Assignment in Launch"))
			Expect(msg.HTML).To(ContainSubstring("Fix bug"))
			Expect(msg.HTML).To(ContainSubstring("Jun 1, 2024"))
			Expect(msg.HTML).To(ContainSubstring("taskId=t1"))
		})
	})
})

var _ = Describe("PlainText", func() {
	It("strips tags and keeps paragraphs apart", func() {
		text := notify.PlainText("<div><h2>Hi Bob</h2><p>You were <strong>added</strong>.</p></div>")
		Expect(text).To(Equal("Hi Bob\nYou were added."))
	})

	It("unescapes entities", func() {
		Expect(notify.PlainText("<p>Tom &amp; Jerry</p>")).To(Equal("Tom & Jerry"))
	})

	It("falls back when nothing readable remains", func() {
		Expect(notify.PlainText("<div>  </div>")).To(Equal("Please view this email in an HTML-capable email client."))
	})
})
