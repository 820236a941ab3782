package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/fruitseller-backend/internal/apperror"
	"github.com/rocketscienceinc/fruitseller-backend/internal/broadcast"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
)

// RoomListener receives every committed document of a room, or nil once the room is deleted.
type RoomListener func(room *entity.Room)

// roomFeed publishes committed documents and turns broker payloads back into rooms.
// An empty payload marks a deletion.
type roomFeed struct {
	logger *slog.Logger
	broker broadcast.Broker
}

func (that *roomFeed) publish(ctx context.Context, code string, payload []byte) {
	if err := that.broker.Publish(ctx, code, payload); err != nil {
		that.logger.Error("failed to publish room", "roomCode", code, "error", err)
	}
}

// subscribe delivers the current document first and then every commit after it.
func (that *roomFeed) subscribe(
	ctx context.Context,
	code string,
	get func(ctx context.Context, code string) (*entity.Room, error),
	listener RoomListener,
) (func(), error) {
	log := that.logger.With("method", "subscribe", "roomCode", code)

	// commits arriving while the current document is read wait for it
	var mu sync.Mutex
	mu.Lock()
	defer mu.Unlock()

	unsubscribe, err := that.broker.Subscribe(ctx, code, func(payload []byte) {
		room, err := decodeRoom(payload)
		if err != nil {
			log.Error("dropping broadcast", "error", err)
			return
		}

		mu.Lock()
		defer mu.Unlock()

		listener(room)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room: %w", err)
	}

	current, err := get(ctx, code)
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		listener(nil)
	case err != nil:
		unsubscribe()
		return nil, fmt.Errorf("failed to read current room: %w", err)
	default:
		listener(current)
	}

	return unsubscribe, nil
}

func encodeRoom(room *entity.Room) ([]byte, error) {
	if err := room.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(room)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal room: %w", err)
	}

	return data, nil
}

// decodeRoom returns nil for an empty payload.
func decodeRoom(payload []byte) (*entity.Room, error) {
	if len(payload) == 0 {
		return nil, nil //nolint: nilnil // deletion marker
	}

	var room entity.Room
	if err := json.Unmarshal(payload, &room); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidDocument, err)
	}

	if err := room.Validate(); err != nil {
		return nil, err
	}

	return &room, nil
}
