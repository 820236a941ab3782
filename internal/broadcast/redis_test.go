package broadcast

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/fruitseller-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deliveryTimeout = 5 * time.Second

func TestRedisBroker(t *testing.T) {
	ctx, st := suite.New(t)

	broker := NewRedisBroker(st.Logger, st.Storage)

	// Given: a subscriber on ABCD
	received := make(chan []byte, 1)
	unsubscribe, err := broker.Subscribe(ctx, "ABCD", func(payload []byte) {
		received <- payload
	})
	require.NoError(t, err)

	// When: a message is published
	require.NoError(t, broker.Publish(ctx, "ABCD", []byte(`{"code":"ABCD"}`)))

	// Then: the subscriber receives it
	select {
	case payload := <-received:
		assert.JSONEq(t, `{"code":"ABCD"}`, string(payload))
	case <-time.After(deliveryTimeout):
		t.Fatal("message was not delivered")
	}

	// When: the subscriber leaves and another message is published
	unsubscribe()
	unsubscribe()
	require.NoError(t, broker.Publish(ctx, "ABCD", []byte(`{}`)))

	// Then: nothing more arrives
	select {
	case payload := <-received:
		t.Fatalf("unexpected delivery after unsubscribe: %s", payload)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNatsBroker(t *testing.T) {
	ctx, st := suite.NewNats(t)

	broker, err := NewNatsBroker(st.Logger, st.NatsURL)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = broker.Close()
	})

	// Given: a subscriber on ABCD
	received := make(chan []byte, 1)
	unsubscribe, err := broker.Subscribe(ctx, "ABCD", func(payload []byte) {
		received <- payload
	})
	require.NoError(t, err)
	defer unsubscribe()

	// When: a message is published
	require.NoError(t, broker.Publish(ctx, "ABCD", []byte("state")))

	// Then: the subscriber receives it
	select {
	case payload := <-received:
		assert.Equal(t, "state", string(payload))
	case <-time.After(deliveryTimeout):
		t.Fatal("message was not delivered")
	}
}
