package broadcast

import (
	"context"
	"sync"
)

// MemoryBroker delivers messages synchronously in the publisher's goroutine.
// It serves single-process runs and tests.
type MemoryBroker struct {
	mu     sync.RWMutex
	nextID uint64
	topics map[string]map[uint64]Handler
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		topics: make(map[string]map[uint64]Handler),
	}
}

func (that *MemoryBroker) Publish(_ context.Context, topic string, payload []byte) error {
	that.mu.RLock()
	if that.closed {
		that.mu.RUnlock()
		return ErrBrokerClosed
	}

	handlers := make([]Handler, 0, len(that.topics[topic]))
	for _, handler := range that.topics[topic] {
		handlers = append(handlers, handler)
	}
	that.mu.RUnlock()

	for _, handler := range handlers {
		data := make([]byte, len(payload))
		copy(data, payload)
		handler(data)
	}

	return nil
}

func (that *MemoryBroker) Subscribe(_ context.Context, topic string, handler Handler) (func(), error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return nil, ErrBrokerClosed
	}

	that.nextID++
	id := that.nextID

	if that.topics[topic] == nil {
		that.topics[topic] = make(map[uint64]Handler)
	}
	that.topics[topic][id] = handler

	unsubscribe := func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		delete(that.topics[topic], id)
		if len(that.topics[topic]) == 0 {
			delete(that.topics, topic)
		}
	}

	return unsubscribe, nil
}

// Subscribers reports how many handlers listen on topic.
func (that *MemoryBroker) Subscribers(topic string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.topics[topic])
}

func (that *MemoryBroker) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = true
	that.topics = make(map[string]map[uint64]Handler)

	return nil
}
