package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/fruitseller-backend/internal/apperror"
	"github.com/rocketscienceinc/fruitseller-backend/internal/broadcast"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
)

const (
	roomKeyPrefix  = "room:"
	modifyAttempts = 10
)

// RoomRepository keeps one JSON document per room in redis and announces every commit on the broker.
type RoomRepository struct {
	client *redis.Client
	feed   *roomFeed
}

func NewRoomRepository(logger *slog.Logger, client *redis.Client, broker broadcast.Broker) *RoomRepository {
	return &RoomRepository{
		client: client,
		feed: &roomFeed{
			logger: logger.With("component", "room_repository"),
			broker: broker,
		},
	}
}

func (that *RoomRepository) Create(ctx context.Context, room *entity.Room) error {
	data, err := encodeRoom(room)
	if err != nil {
		return err
	}

	created, err := that.client.SetNX(ctx, roomKeyPrefix+room.Code, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: %s", apperror.ErrRoomExists, room.Code)
	}

	that.feed.publish(ctx, room.Code, data)

	return nil
}

func (that *RoomRepository) Get(ctx context.Context, code string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room, err := decodeRoom(response)
	if err != nil {
		return nil, err
	}

	if room == nil {
		return nil, apperror.ErrRoomNotFound
	}

	return room, nil
}

// Update merges patch into the stored document.
func (that *RoomRepository) Update(ctx context.Context, code string, patch entity.RoomPatch) (*entity.Room, error) {
	return that.Modify(ctx, code, func(*entity.Room) (entity.RoomPatch, error) {
		return patch, nil
	})
}

// Modify reads the room, lets decide build a patch from it and writes the result in a
// WATCH/MULTI transaction. A concurrent write aborts the transaction and decide runs
// again on the newer document.
func (that *RoomRepository) Modify(ctx context.Context, code string, decide entity.PatchFunc) (*entity.Room, error) {
	key := roomKeyPrefix + code

	for attempt := 1; attempt <= modifyAttempts; attempt++ {
		var (
			room *entity.Room
			data []byte
		)

		err := that.client.Watch(ctx, func(tx *redis.Tx) error {
			response, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return apperror.ErrRoomNotFound
			}

			if err != nil {
				return fmt.Errorf("failed to get room: %w", err)
			}

			room, err = decodeRoom(response)
			if err != nil {
				return err
			}

			if room == nil {
				return apperror.ErrRoomNotFound
			}

			patch, err := decide(room.Clone())
			if err != nil {
				return err
			}

			patch.Apply(room)

			data, err = encodeRoom(room)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})

			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			that.feed.logger.Debug("room changed during commit, retrying", "roomCode", code, "attempt", attempt)
			continue
		}

		if err != nil {
			return nil, err
		}

		that.feed.publish(ctx, code, data)

		return room, nil
	}

	return nil, fmt.Errorf("failed to update room %s after %d attempts: %w", code, modifyAttempts, apperror.ErrRoomBusy)
}

func (that *RoomRepository) Delete(ctx context.Context, code string) error {
	if err := that.client.Del(ctx, roomKeyPrefix+code).Err(); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	that.feed.publish(ctx, code, nil)

	return nil
}

func (that *RoomRepository) Subscribe(ctx context.Context, code string, listener RoomListener) (func(), error) {
	return that.feed.subscribe(ctx, code, that.Get, listener)
}
