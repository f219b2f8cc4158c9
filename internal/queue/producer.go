package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type redisProducer struct {
	client  *redis.Client
	stream  string
	schemas *Schemas
	logger  *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, schemas *Schemas, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client:  client,
		stream:  stream,
		schemas: schemas,
		logger:  logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Name, err)
	}
	if err := p.schemas.Validate(event.Name, data); err != nil {
		return err
	}

	fields := map[string]any{
		"event":   string(event.Name),
		"data":    string(data),
		"attempt": 1,
	}
	if event.TraceID != "" {
		fields["trace_id"] = event.TraceID
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Name, err)
	}

	p.logger.InfoContext(ctx, "event published", "event", event.Name, "message_id", id)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
