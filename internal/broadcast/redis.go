package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "room:"

type RedisBroker struct {
	logger *slog.Logger
	client *redis.Client
}

func NewRedisBroker(logger *slog.Logger, client *redis.Client) *RedisBroker {
	return &RedisBroker{
		logger: logger,
		client: client,
	}
}

func (that *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := that.client.Publish(ctx, redisChannelPrefix+topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

// Subscribe returns once redis confirmed the subscription, so nothing published
// after the call returns is missed.
func (that *RedisBroker) Subscribe(ctx context.Context, topic string, handler Handler) (func(), error) {
	log := that.logger.With("method", "Subscribe", "topic", topic)

	pubsub := that.client.Subscribe(ctx, redisChannelPrefix+topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			handler([]byte(msg.Payload))
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				log.Error("failed to close subscription", "error", err)
			}
		})
	}

	return unsubscribe, nil
}

// Close is a no-op: the redis client is owned by the caller.
func (that *RedisBroker) Close() error {
	return nil
}
