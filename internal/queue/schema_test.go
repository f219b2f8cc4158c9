package queue_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"planboard.app/server/internal/queue"
)

var _ = Describe("Schemas", func() {
	var schemas *queue.Schemas

	BeforeEach(func() {
		var err error
		schemas, err = queue.NewSchemas()
		Expect(err).NotTo(HaveOccurred())
	})

	It("accepts a well-formed task.assigned payload", func() {
		err := schemas.Validate(queue.EventTaskAssigned, []byte(`{"taskId":"42","origin":"http://localhost:5173"}`))
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a task.assigned payload without taskId", func() {
		err := schemas.Validate(queue.EventTaskAssigned, []byte(`{"origin":"x"}`))
		Expect(err).To(HaveOccurred())
	})

	It("rejects an empty taskId", func() {
		err := schemas.Validate(queue.EventTaskAssigned, []byte(`{"taskId":"","origin":"x"}`))
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown fields", func() {
		err := schemas.Validate(queue.EventTaskAssigned, []byte(`{"taskId":"1","origin":"x","extra":true}`))
		Expect(err).To(HaveOccurred())
	})

	It("accepts workspace.created without an image", func() {
		err := schemas.Validate(queue.EventWorkspaceCreated, []byte(`{
			"workspaceId":"1","name":"Acme","slug":"acme-000001","ownerId":"user_1",
			"requestedAt":"2024-05-01T10:00:00Z"
		}`))
		Expect(err).NotTo(HaveOccurred())
	})

	It("accepts user.updated with an empty name", func() {
		err := schemas.Validate(queue.EventUserUpdated, []byte(`{"userId":"user_1","email":"ada@example.com","name":""}`))
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects user.deleted without a userId", func() {
		err := schemas.Validate(queue.EventUserDeleted, []byte(`{}`))
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown events", func() {
		err := schemas.Validate(queue.EventName("app/unknown"), []byte(`{}`))
		Expect(err).To(MatchError(ContainSubstring("unknown event")))
	})

	It("rejects malformed JSON", func() {
		err := schemas.Validate(queue.EventTaskAssigned, []byte(`{`))
		Expect(err).To(HaveOccurred())
	})
})
