package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/rocketscienceinc/fruitseller-backend/internal/apperror"
	"github.com/rocketscienceinc/fruitseller-backend/internal/broadcast"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryRepo(t *testing.T) (*MemoryRoomRepository, *broadcast.MemoryBroker) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	broker := broadcast.NewMemoryBroker()

	return NewMemoryRoomRepository(logger, broker), broker
}

func TestMemoryRoomRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Create then Get returns an equal copy", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)

		// Given: a new lobby room
		room := entity.NewRoom("ABCD", entity.NewHumanPlayer("h1", "Alice"))

		// When: it is created and read back
		require.NoError(t, repo.Create(ctx, room))
		stored, err := repo.Get(ctx, "ABCD")

		// Then: the stored document matches but is not the same pointer
		require.NoError(t, err)
		assert.Equal(t, room, stored)
		assert.NotSame(t, room, stored)
	})

	t.Run("Second create with the same code fails", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)

		room := entity.NewRoom("ABCD", entity.NewHumanPlayer("h1", "Alice"))
		require.NoError(t, repo.Create(ctx, room))

		// When: another room claims the same code
		err := repo.Create(ctx, entity.NewRoom("ABCD", entity.NewHumanPlayer("h2", "Bob")))

		// Then: it is rejected and the first room survives
		require.ErrorIs(t, err, apperror.ErrRoomExists)
		stored, err := repo.Get(ctx, "ABCD")
		require.NoError(t, err)
		assert.Equal(t, "h1", stored.HostID)
	})

	t.Run("Invalid documents are never written", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)

		room := entity.NewRoom("ABCD", entity.NewHumanPlayer("h1", "Alice"))
		room.MaxPlayers = 9

		err := repo.Create(ctx, room)

		require.ErrorIs(t, err, apperror.ErrInvalidDocument)
		_, err = repo.Get(ctx, "ABCD")
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestMemoryRoomRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Patch merges only the given fields", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewRoom("ABCD", entity.NewHumanPlayer("h1", "Alice"))))

		// When: maxPlayers is patched
		maxPlayers := 5
		updated, err := repo.Update(ctx, "ABCD", entity.RoomPatch{MaxPlayers: &maxPlayers})

		// Then: the merged document is returned and stored
		require.NoError(t, err)
		assert.Equal(t, 5, updated.MaxPlayers)
		assert.Len(t, updated.Players, 1)

		stored, err := repo.Get(ctx, "ABCD")
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("Missing room", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)

		_, err := repo.Update(ctx, "NOPE", entity.RoomPatch{})

		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Patch producing an invalid document is refused", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewRoom("ABCD", entity.NewHumanPlayer("h1", "Alice"))))

		status := "paused"
		_, err := repo.Update(ctx, "ABCD", entity.RoomPatch{Status: &status})

		require.ErrorIs(t, err, apperror.ErrInvalidDocument)
		stored, err := repo.Get(ctx, "ABCD")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusLobby, stored.Status)
	})
}

func TestMemoryRoomRepository_Modify(t *testing.T) {
	ctx := context.Background()

	t.Run("Concurrent joins all keep their seat", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)

		// Given: a six seat lobby with only the host
		room := entity.NewRoom("ABCD", entity.NewHumanPlayer("h1", "Alice"))
		room.MaxPlayers = entity.MaxPlayers
		require.NoError(t, repo.Create(ctx, room))

		// When: five players join at the same time, each appending to the room it reads
		var wg sync.WaitGroup
		for i := 2; i <= entity.MaxPlayers; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()

				_, err := repo.Modify(ctx, "ABCD", func(current *entity.Room) (entity.RoomPatch, error) {
					return entity.RoomPatch{Players: append(current.Players, entity.NewHumanPlayer(id, id))}, nil
				})
				assert.NoError(t, err)
			}("h" + string(rune('0'+i)))
		}
		wg.Wait()

		// Then: no seat was lost
		stored, err := repo.Get(ctx, "ABCD")
		require.NoError(t, err)
		assert.Len(t, stored.Players, entity.MaxPlayers)
	})

	t.Run("Refusal writes and publishes nothing", func(t *testing.T) {
		repo, broker := newMemoryRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewRoom("ABCD", entity.NewHumanPlayer("h1", "Alice"))))

		published := 0
		unsubscribe, err := broker.Subscribe(ctx, "ABCD", func([]byte) { published++ })
		require.NoError(t, err)
		defer unsubscribe()

		errRefused := errors.New("refused")

		// When: the decision refuses after touching its argument
		_, err = repo.Modify(ctx, "ABCD", func(current *entity.Room) (entity.RoomPatch, error) {
			current.Players = nil
			return entity.RoomPatch{}, errRefused
		})

		// Then: the refusal surfaces and the stored room is untouched
		require.ErrorIs(t, err, errRefused)
		assert.Zero(t, published)
		stored, err := repo.Get(ctx, "ABCD")
		require.NoError(t, err)
		assert.Len(t, stored.Players, 1)
	})

	t.Run("Missing room", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)

		_, err := repo.Modify(ctx, "NOPE", func(*entity.Room) (entity.RoomPatch, error) {
			return entity.RoomPatch{}, nil
		})

		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestMemoryRoomRepository_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("Current document first, then every commit, then nil on delete", func(t *testing.T) {
		repo, broker := newMemoryRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewRoom("ABCD", entity.NewHumanPlayer("h1", "Alice"))))

		// Given: a subscriber
		var seen []*entity.Room
		unsubscribe, err := repo.Subscribe(ctx, "ABCD", func(room *entity.Room) {
			seen = append(seen, room)
		})
		require.NoError(t, err)

		// When: the room is updated and then deleted
		maxPlayers := 6
		_, err = repo.Update(ctx, "ABCD", entity.RoomPatch{MaxPlayers: &maxPlayers})
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, "ABCD"))

		// Then: the subscriber saw the initial state, the update and the deletion in order
		require.Len(t, seen, 3)
		assert.Equal(t, entity.DefaultMaxPlayers, seen[0].MaxPlayers)
		assert.Equal(t, 6, seen[1].MaxPlayers)
		assert.Nil(t, seen[2])

		// Then: unsubscribing releases the topic
		unsubscribe()
		assert.Zero(t, broker.Subscribers("ABCD"))
	})

	t.Run("Absent room delivers nil at once", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)

		var seen []*entity.Room
		_, err := repo.Subscribe(ctx, "GONE", func(room *entity.Room) {
			seen = append(seen, room)
		})

		require.NoError(t, err)
		require.Len(t, seen, 1)
		assert.Nil(t, seen[0])
	})

	t.Run("Snapshots are independent copies", func(t *testing.T) {
		repo, _ := newMemoryRepo(t)
		require.NoError(t, repo.Create(ctx, entity.NewRoom("ABCD", entity.NewHumanPlayer("h1", "Alice"))))

		var first *entity.Room
		_, err := repo.Subscribe(ctx, "ABCD", func(room *entity.Room) {
			if first == nil {
				first = room
			}
		})
		require.NoError(t, err)

		// When: a subscriber mutates its snapshot
		first.Players[0].Name = "Mallory"

		// Then: the store is unaffected
		stored, err := repo.Get(ctx, "ABCD")
		require.NoError(t, err)
		assert.Equal(t, "Alice", stored.Players[0].Name)
	})
}
