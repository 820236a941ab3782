package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/fruitseller-backend/internal/apperror"
)

var (
	errNotInRoom      = errors.New("you are not in a room")
	errInvalidPayload = errors.New("invalid payload")
)

// userErrors are shown to the client verbatim; anything else is reported as an internal error.
var userErrors = []error{
	apperror.ErrRoomNotFound,
	apperror.ErrRoomFull,
	apperror.ErrRoomExists,
	apperror.ErrAlreadyStarted,
	apperror.ErrInvalidName,
	apperror.ErrInvalidMaxPlayers,
	apperror.ErrNotHost,
	apperror.ErrNotYourTurn,
	apperror.ErrGameNotPlaying,
	apperror.ErrRoomBusy,
	errNotInRoom,
	errInvalidPayload,
}

func (that *Server) handleCreateRoom(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom")

	payload, err := decodePayload(msg)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	identity := client.session.Identity()
	that.leaveCurrentRoom(ctx, client)

	room, err := that.rooms.CreateRoom(ctx, identity, payload.Name)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	if err = client.session.Watch(room.Code); err != nil {
		return fmt.Errorf("failed to watch room: %w", err)
	}

	log.Info("room created", "roomCode", room.Code, "playerID", identity)

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom")

	payload, err := decodePayload(msg)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	identity := client.session.Identity()

	room, err := that.rooms.JoinRoom(ctx, payload.Code, identity, payload.Name)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	if current := client.session.Code(); current != "" && current != room.Code {
		that.leaveCurrentRoom(ctx, client)
	}

	if err = client.session.Watch(room.Code); err != nil {
		return fmt.Errorf("failed to watch room: %w", err)
	}

	log.Info("room joined", "roomCode", room.Code, "playerID", identity)

	return nil
}

func (that *Server) handleLeaveRoom(ctx context.Context, client *client, msg *Message) error {
	code := client.session.Code()
	if code == "" {
		return that.replyError(client, msg.Action, errNotInRoom)
	}

	that.leaveCurrentRoom(ctx, client)

	if err := client.enqueue(msg.Action, ResponsePayload{Code: code}); err != nil {
		return fmt.Errorf("failed to confirm leave: %w", err)
	}

	return nil
}

func (that *Server) handleMaxPlayers(ctx context.Context, client *client, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	code := client.session.Code()
	if code == "" {
		return that.replyError(client, msg.Action, errNotInRoom)
	}

	if _, err = that.rooms.SetMaxPlayers(ctx, code, client.session.Identity(), payload.MaxPlayers); err != nil {
		return that.replyError(client, msg.Action, err)
	}

	return nil
}

func (that *Server) handleStartGame(ctx context.Context, client *client, msg *Message) error {
	code := client.session.Code()
	if code == "" {
		return that.replyError(client, msg.Action, errNotInRoom)
	}

	if _, err := that.rooms.StartGame(ctx, code, client.session.Identity()); err != nil {
		return that.replyError(client, msg.Action, err)
	}

	return nil
}

func (that *Server) handlePassCard(ctx context.Context, client *client, msg *Message) error {
	log := that.logger.With("method", "handlePassCard")

	payload, err := decodePayload(msg)
	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	code := client.session.Code()
	if code == "" {
		return that.replyError(client, msg.Action, errNotInRoom)
	}

	// without a seat the intent is for whatever turn the client last saw
	seat := -1
	if payload.Seat != nil {
		seat = *payload.Seat
	} else if room := client.session.Room(); room != nil {
		seat = room.TurnIndex
	}

	_, err = that.rooms.PassCard(ctx, code, client.session.Identity(), seat, payload.Card)
	if errors.Is(err, apperror.ErrStaleIntent) {
		log.Debug("stale pass dropped", "roomCode", code, "seat", seat)
		return nil
	}

	if err != nil {
		return that.replyError(client, msg.Action, err)
	}

	return nil
}

// leaveCurrentRoom frees the seat the session holds, if any, and stops watching it.
func (that *Server) leaveCurrentRoom(ctx context.Context, client *client) {
	log := that.logger.With("method", "leaveCurrentRoom")

	code := client.session.Code()
	if code == "" {
		return
	}

	client.session.Unwatch()

	if _, err := that.rooms.LeaveRoom(ctx, code, client.session.Identity()); err != nil {
		log.Error("failed to leave room", "roomCode", code, "error", err)
	}
}

func (that *Server) replyError(client *client, action string, cause error) error {
	message := "internal error"
	for _, userErr := range userErrors {
		if errors.Is(cause, userErr) {
			message = userErr.Error()
			break
		}
	}

	if err := client.sendError(action, message); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	if message == "internal error" {
		return cause
	}

	return nil
}

func decodePayload(msg *Message) (*RequestPayload, error) {
	var payload RequestPayload
	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	return &payload, nil
}
