package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
)

const natsSubjectPrefix = "rooms."

type NatsBroker struct {
	logger *slog.Logger
	conn   *nats.Conn
}

func NewNatsBroker(logger *slog.Logger, url string) (*NatsBroker, error) {
	conn, err := nats.Connect(url, nats.Name("fruitseller"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &NatsBroker{
		logger: logger,
		conn:   conn,
	}, nil
}

func (that *NatsBroker) Publish(_ context.Context, topic string, payload []byte) error {
	if !that.conn.IsConnected() {
		return ErrBrokerClosed
	}

	if err := that.conn.Publish(natsSubjectPrefix+topic, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

func (that *NatsBroker) Subscribe(_ context.Context, topic string, handler Handler) (func(), error) {
	log := that.logger.With("method", "Subscribe", "topic", topic)

	sub, err := that.conn.Subscribe(natsSubjectPrefix+topic, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	// the server must know about the interest before the caller reads the current state
	if err = that.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("failed to flush subscription: %w", err)
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if err := sub.Unsubscribe(); err != nil {
				log.Error("failed to unsubscribe", "error", err)
			}
		})
	}

	return unsubscribe, nil
}

func (that *NatsBroker) Close() error {
	if err := that.conn.Drain(); err != nil {
		return fmt.Errorf("failed to drain nats connection: %w", err)
	}

	return nil
}
