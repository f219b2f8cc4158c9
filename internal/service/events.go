package service

import (
	"context"

	"planboard.app/server/internal/queue"
)

// EventPublisher is the slice of queue.Producer the services need.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
}
