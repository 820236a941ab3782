package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/fruitseller-backend/internal/apperror"
	"github.com/rocketscienceinc/fruitseller-backend/internal/broadcast"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
)

// MemoryRoomRepository stores encoded documents in a map. It backs --in-memory runs and tests.
type MemoryRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string][]byte
	feed  *roomFeed
}

func NewMemoryRoomRepository(logger *slog.Logger, broker broadcast.Broker) *MemoryRoomRepository {
	return &MemoryRoomRepository{
		rooms: make(map[string][]byte),
		feed: &roomFeed{
			logger: logger.With("component", "memory_room_repository"),
			broker: broker,
		},
	}
}

func (that *MemoryRoomRepository) Create(ctx context.Context, room *entity.Room) error {
	data, err := encodeRoom(room)
	if err != nil {
		return err
	}

	that.mu.Lock()
	if _, ok := that.rooms[room.Code]; ok {
		that.mu.Unlock()
		return fmt.Errorf("%w: %s", apperror.ErrRoomExists, room.Code)
	}
	that.rooms[room.Code] = data
	that.mu.Unlock()

	that.feed.publish(ctx, room.Code, data)

	return nil
}

func (that *MemoryRoomRepository) Get(_ context.Context, code string) (*entity.Room, error) {
	that.mu.RLock()
	data, ok := that.rooms[code]
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return decodeRoom(data)
}

func (that *MemoryRoomRepository) Update(ctx context.Context, code string, patch entity.RoomPatch) (*entity.Room, error) {
	return that.Modify(ctx, code, func(*entity.Room) (entity.RoomPatch, error) {
		return patch, nil
	})
}

// Modify runs decide and commits its patch under one lock, so no other commit lands in between.
func (that *MemoryRoomRepository) Modify(ctx context.Context, code string, decide entity.PatchFunc) (*entity.Room, error) {
	that.mu.Lock()

	stored, ok := that.rooms[code]
	if !ok {
		that.mu.Unlock()
		return nil, apperror.ErrRoomNotFound
	}

	room, err := decodeRoom(stored)
	if err != nil {
		that.mu.Unlock()
		return nil, err
	}

	patch, err := decide(room.Clone())
	if err != nil {
		that.mu.Unlock()
		return nil, err
	}

	patch.Apply(room)

	data, err := encodeRoom(room)
	if err != nil {
		that.mu.Unlock()
		return nil, err
	}
	that.rooms[code] = data
	that.mu.Unlock()

	that.feed.publish(ctx, code, data)

	return room, nil
}

func (that *MemoryRoomRepository) Delete(ctx context.Context, code string) error {
	that.mu.Lock()
	delete(that.rooms, code)
	that.mu.Unlock()

	that.feed.publish(ctx, code, nil)

	return nil
}

func (that *MemoryRoomRepository) Subscribe(ctx context.Context, code string, listener RoomListener) (func(), error) {
	return that.feed.subscribe(ctx, code, that.Get, listener)
}
