package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/fruitseller-backend/internal/apperror"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
	"github.com/rocketscienceinc/fruitseller-backend/internal/game"
	"github.com/rocketscienceinc/fruitseller-backend/internal/pkg"
)

const createRoomAttempts = 5

// errNoChange and errLastHuman end a Modify decision without a write.
var (
	errNoChange  = errors.New("no change")
	errLastHuman = errors.New("last human left")
)

type roomStore interface {
	Create(ctx context.Context, room *entity.Room) error
	Get(ctx context.Context, code string) (*entity.Room, error)
	Update(ctx context.Context, code string, patch entity.RoomPatch) (*entity.Room, error)
	Modify(ctx context.Context, code string, decide entity.PatchFunc) (*entity.Room, error)
	Delete(ctx context.Context, code string) error
}

// RoomManager validates player intents against the latest stored room and commits the result.
type RoomManager struct {
	logger *slog.Logger
	store  roomStore

	newCode  func() (string, error)
	newBotID game.BotIDFunc
}

func NewRoomManager(logger *slog.Logger, store roomStore) *RoomManager {
	return &RoomManager{
		logger: logger,
		store:  store,

		newCode:  pkg.GenerateRoomCode,
		newBotID: game.NewBotID,
	}
}

func (that *RoomManager) CreateRoom(ctx context.Context, identity, name string) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom", "playerID", identity)

	name = strings.TrimSpace(name)
	if identity == "" || name == "" {
		return nil, apperror.ErrInvalidName
	}

	for attempt := 1; attempt <= createRoomAttempts; attempt++ {
		code, err := that.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate room code: %w", err)
		}

		room := entity.NewRoom(code, entity.NewHumanPlayer(identity, name))

		err = that.store.Create(ctx, room)
		if errors.Is(err, apperror.ErrRoomExists) {
			log.Debug("room code taken, retrying", "roomCode", code, "attempt", attempt)
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		log.Info("room created", "roomCode", code)

		return room, nil
	}

	return nil, fmt.Errorf("failed to create room after %d attempts: %w", createRoomAttempts, apperror.ErrRoomExists)
}

// JoinRoom seats identity in a lobby. Joining a lobby twice returns the room unchanged.
// The checks run against the stored room inside the commit, so concurrent joins never
// overwrite each other's seat.
func (that *RoomManager) JoinRoom(ctx context.Context, code, identity, name string) (*entity.Room, error) {
	log := that.logger.With("method", "JoinRoom", "playerID", identity)

	code = pkg.NormalizeRoomCode(code)
	name = strings.TrimSpace(name)
	if code == "" || identity == "" || name == "" {
		return nil, apperror.ErrInvalidName
	}

	var seated *entity.Room
	updated, err := that.store.Modify(ctx, code, func(current *entity.Room) (entity.RoomPatch, error) {
		if !current.IsLobby() {
			return entity.RoomPatch{}, apperror.ErrAlreadyStarted
		}

		if current.SeatIndex(identity) >= 0 {
			seated = current
			return entity.RoomPatch{}, errNoChange
		}

		if current.IsFull() {
			return entity.RoomPatch{}, apperror.ErrRoomFull
		}

		return entity.RoomPatch{Players: append(current.Players, entity.NewHumanPlayer(identity, name))}, nil
	})

	switch {
	case errors.Is(err, errNoChange):
		return seated, nil
	case err != nil:
		return nil, fmt.Errorf("failed to join room %s: %w", code, err)
	}

	log.Info("player joined", "roomCode", code, "seats", len(updated.Players))

	return updated, nil
}

func (that *RoomManager) SetMaxPlayers(ctx context.Context, code, identity string, maxPlayers int) (*entity.Room, error) {
	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if !room.IsHost(identity) {
		return nil, apperror.ErrNotHost
	}

	if !room.IsLobby() {
		return nil, apperror.ErrAlreadyStarted
	}

	if maxPlayers < entity.MinPlayers || maxPlayers > entity.MaxPlayers || maxPlayers < len(room.Players) {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidMaxPlayers, maxPlayers)
	}

	updated, err := that.store.Update(ctx, room.Code, entity.RoomPatch{MaxPlayers: &maxPlayers})
	if err != nil {
		return nil, fmt.Errorf("failed to update max players: %w", err)
	}

	return updated, nil
}

// StartGame starts the first round from the lobby or a new one after a finished round.
func (that *RoomManager) StartGame(ctx context.Context, code, identity string) (*entity.Room, error) {
	log := that.logger.With("method", "StartGame", "playerID", identity)

	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if !room.IsHost(identity) {
		return nil, apperror.ErrNotHost
	}

	if room.IsPlaying() {
		return nil, apperror.ErrAlreadyStarted
	}

	next := game.StartRound(room, nil, that.newBotID)

	updated, err := that.store.Update(ctx, room.Code, entity.RoundPatch(next))
	if err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	log.Info("game started", "roomCode", room.Code, "seats", len(updated.Players), "humans", updated.HumanCount())

	return updated, nil
}

// PassCard applies a pass for seat. An intent for a seat that no longer holds the
// turn is dropped without a write and the current room comes back with ErrStaleIntent.
func (that *RoomManager) PassCard(ctx context.Context, code, identity string, seat, cardIndex int) (*entity.Room, error) {
	log := that.logger.With("method", "PassCard", "playerID", identity)

	room, err := that.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if err = room.ConfirmPlaying(); err != nil {
		return nil, err
	}

	if seat != room.TurnIndex {
		return room, apperror.ErrStaleIntent
	}

	actor := room.Players[seat]
	if (actor.IsBot && !room.IsHost(identity)) || (!actor.IsBot && actor.ID != identity) {
		return nil, apperror.ErrNotYourTurn
	}

	next, event := game.ApplyPass(room, seat, cardIndex)

	updated, err := that.store.Update(ctx, room.Code, entity.RoundPatch(next))
	if err != nil {
		return nil, fmt.Errorf("failed to commit pass: %w", err)
	}

	log.Debug("card passed", "roomCode", room.Code, "seat", seat, "event", event.Text)

	if updated.IsFinished() {
		log.Info("game finished", "roomCode", room.Code, "winnerID", updated.WinnerID)
	}

	return updated, nil
}

// LeaveRoom removes identity from the room. The room is deleted once no human
// is left, and nil is returned in that case.
func (that *RoomManager) LeaveRoom(ctx context.Context, code, identity string) (*entity.Room, error) {
	log := that.logger.With("method", "LeaveRoom", "playerID", identity)

	code = pkg.NormalizeRoomCode(code)
	if code == "" {
		return nil, apperror.ErrRoomNotFound
	}

	var unchanged *entity.Room
	updated, err := that.store.Modify(ctx, code, func(current *entity.Room) (entity.RoomPatch, error) {
		seat := current.SeatIndex(identity)
		if seat < 0 {
			unchanged = current
			return entity.RoomPatch{}, errNoChange
		}

		current.Players = append(current.Players[:seat], current.Players[seat+1:]...)
		if current.HumanCount() == 0 {
			return entity.RoomPatch{}, errLastHuman
		}

		patch := entity.RoomPatch{Players: current.Players}
		if current.IsPlaying() {
			turnIndex := current.TurnIndex % len(current.Players)
			patch.TurnIndex = &turnIndex
		}

		return patch, nil
	})

	switch {
	case errors.Is(err, errNoChange):
		return unchanged, nil
	case errors.Is(err, errLastHuman):
		if err = that.store.Delete(ctx, code); err != nil {
			return nil, fmt.Errorf("failed to delete room: %w", err)
		}

		log.Info("room deleted, no players left", "roomCode", code)

		return nil, nil //nolint: nilnil // nil room means the room is gone
	case err != nil:
		return nil, fmt.Errorf("failed to leave room %s: %w", code, err)
	}

	log.Info("player left", "roomCode", code, "seats", len(updated.Players))

	return updated, nil
}

func (that *RoomManager) GetRoom(ctx context.Context, code string) (*entity.Room, error) {
	return that.getRoom(ctx, code)
}

func (that *RoomManager) getRoom(ctx context.Context, code string) (*entity.Room, error) {
	code = pkg.NormalizeRoomCode(code)
	if code == "" {
		return nil, apperror.ErrRoomNotFound
	}

	room, err := that.store.Get(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", code, err)
	}

	return room, nil
}
