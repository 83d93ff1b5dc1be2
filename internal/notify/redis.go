package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("mediashare-notify")

// eventChannel is the Redis pub/sub channel carrying gallery events.
const eventChannel = "mediashare:events"

// RedisBus is a Bus backed by Redis pub/sub, so events reach subscribers on
// every instance of the service.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus initializes a Redis-backed bus and verifies the connection.
func NewRedisBus(addr, password string, db int) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisBus{client: client}, nil
}

// Publish sends the event to the shared channel. Failures are logged, not
// returned: notifications are fire-and-forget and must never fail the
// operation that raised them.
func (b *RedisBus) Publish(ctx context.Context, event Event) {
	ctx, span := tracer.Start(ctx, "notify.publish",
		trace.WithAttributes(
			attribute.String("event_id", event.ID),
			attribute.String("level", string(event.Level)),
		),
	)
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		log.Printf("Warning: failed to marshal event %s: %v", event.ID, err)
		return
	}

	if err := b.client.Publish(ctx, eventChannel, data).Err(); err != nil {
		span.RecordError(err)
		log.Printf("Warning: failed to publish event %s: %v", event.ID, err)
	}
}

// Subscribe listens on the shared channel until the cancel function is
// called or the context ends.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, func()) {
	pubsub := b.client.Subscribe(ctx, eventChannel)
	events := make(chan Event, 16)

	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Warning: dropping undecodable event: %v", err)
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("Warning: failed to close subscription: %v", err)
		}
	}
	return events, cancel
}

// Close closes the Redis connection.
func (b *RedisBus) Close() error {
	return b.client.Close()
}
