package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
)

const (
	actionConnect    = "connect"
	actionRoomCreate = "room:create"
	actionRoomJoin   = "room:join"
	actionRoomLeave  = "room:leave"
	actionMaxPlayers = "room:max_players"
	actionRoomState  = "room:state"
	actionRoomClosed = "room:closed"
	actionGameStart  = "game:start"
	actionGamePass   = "game:pass"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	Name       string `json:"name,omitempty"`
	Code       string `json:"code,omitempty"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
	Seat       *int   `json:"seat,omitempty"`
	Card       int    `json:"card,omitempty"`
}

type ResponsePayload struct {
	Player *PlayerRef   `json:"player,omitempty"`
	Room   *entity.Room `json:"room,omitempty"`
	Code   string       `json:"code,omitempty"`
	Error  string       `json:"error,omitempty"`
}

type PlayerRef struct {
	ID string `json:"id"`
}

func encodeMessage(action string, payload ResponsePayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{
		Action:  action,
		Payload: body,
	})
}
