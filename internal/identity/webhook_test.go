package identity_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"planboard.app/server/core/config"
	"planboard.app/server/internal/identity"
)

var _ = Describe("ParseUserEvent", func() {
	It("reads a user update into a profile", func() {
		ev, err := identity.ParseUserEvent([]byte(`{
			"id": "event_01",
			"event": "user.updated",
			"data": {
				"object": "user",
				"id": "user_01",
				"email": "ada@example.com",
				"first_name": "Ada",
				"last_name": "Lovelace",
				"profile_picture_url": "https://img.example.com/ada.png"
			}
		}`))

		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Kind).To(Equal(identity.UserEventUpdated))
		Expect(ev.Profile).To(Equal(identity.Profile{
			ID:    "user_01",
			Name:  "Ada Lovelace",
			Email: "ada@example.com",
			Image: "https://img.example.com/ada.png",
		}))
	})

	It("falls back to the email when the user has no name", func() {
		ev, err := identity.ParseUserEvent([]byte(`{"id":"e","event":"user.updated","data":{"id":"user_01","email":"ada@example.com"}}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Profile.Name).To(Equal("ada@example.com"))
	})

	It("reads a deletion", func() {
		ev, err := identity.ParseUserEvent([]byte(`{"id":"e","event":"user.deleted","data":{"id":"user_01","email":"ada@example.com"}}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Kind).To(Equal(identity.UserEventDeleted))
		Expect(ev.Profile.ID).To(Equal("user_01"))
	})

	It("ignores other events", func() {
		_, err := identity.ParseUserEvent([]byte(`{"id":"e","event":"organization.created","data":{"id":"org_01"}}`))
		Expect(err).To(MatchError(identity.ErrIgnoredEvent))
	})

	It("rejects a user event without a user id", func() {
		_, err := identity.ParseUserEvent([]byte(`{"id":"e","event":"user.deleted","data":{}}`))
		Expect(err).To(MatchError(ContainSubstring("without a user id")))
	})

	It("rejects malformed JSON", func() {
		_, err := identity.ParseUserEvent([]byte(`{`))
		Expect(err).To(MatchError(ContainSubstring("decoding webhook")))
	})
})

var _ = Describe("NewWebhookVerifier", func() {
	It("is nil without a secret", func() {
		Expect(identity.NewWebhookVerifier(config.WorkOSConfig{})).To(BeNil())
	})

	It("rejects an unsigned payload", func() {
		v := identity.NewWebhookVerifier(config.WorkOSConfig{WebhookSecret: "whsec"})
		Expect(v).NotTo(BeNil())
		_, err := v.ValidatePayload("", `{"id":"e"}`)
		Expect(err).To(HaveOccurred())
	})
})
