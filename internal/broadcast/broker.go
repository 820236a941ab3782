package broadcast

import (
	"context"
	"errors"
)

var ErrBrokerClosed = errors.New("broker is closed")

// Handler receives the raw payload of every message published on a topic.
type Handler func(payload []byte)

// Broker fans committed room documents out to every process watching the room.
// Topics are room codes; each implementation maps them onto its own channel names.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string, handler Handler) (func(), error)
	Close() error
}
