package worker

import (
	"context"
	"time"

	"planboard.app/server/internal/queue"
)

// Consumer is the part of queue.RedisConsumer the worker drives.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Claimer takes over messages left pending by dead consumers.
type Claimer interface {
	Claim(ctx context.Context, minIdle time.Duration, count int64) ([]queue.Message, error)
}

// Handler processes one event. A returned error triggers a retry.
type Handler func(ctx context.Context, msg queue.Message) error
