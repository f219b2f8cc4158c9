package queue

import (
	"encoding/json"
	"time"
)

// EventName identifies an event on the bus and selects its payload schema.
type EventName string

const (
	EventTaskAssigned     EventName = "app/task.assigned"
	EventWorkspaceCreated EventName = "app/workspace.created"
	EventUserUpdated      EventName = "app/user.updated"
	EventUserDeleted      EventName = "app/user.deleted"
)

// TaskAssignedPayload asks the worker to email the assignee of a new task.
// Origin is the dashboard origin the task was created from, used for links.
type TaskAssignedPayload struct {
	TaskID string `json:"taskId" jsonschema:"minLength=1"`
	Origin string `json:"origin"`
}

// WorkspaceCreatedPayload carries everything the worker needs to provision
// a workspace and its owner's ADMIN membership.
type WorkspaceCreatedPayload struct {
	WorkspaceID string    `json:"workspaceId" jsonschema:"minLength=1"`
	Name        string    `json:"name" jsonschema:"minLength=1"`
	Slug        string    `json:"slug" jsonschema:"minLength=1"`
	OwnerID     string    `json:"ownerId" jsonschema:"minLength=1"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// UserUpdatedPayload is the identity provider's current profile for a user.
type UserUpdatedPayload struct {
	UserID string `json:"userId" jsonschema:"minLength=1"`
	Email  string `json:"email" jsonschema:"minLength=3"`
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
}

// UserDeletedPayload names a user removed at the identity provider.
type UserDeletedPayload struct {
	UserID string `json:"userId" jsonschema:"minLength=1"`
}

// Event is what producers publish. Data is marshalled to JSON and checked
// against the schema registered for Name.
type Event struct {
	Name    EventName
	Data    any
	TraceID string
}

// Message is an event as read back from the stream.
type Message struct {
	ID        string
	Name      EventName
	Data      json.RawMessage
	Attempt   int
	TraceID   string
	LastError string
}

// Decode unmarshals the message payload into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Data, v)
}
