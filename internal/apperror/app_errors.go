package apperror

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrRoomExists        = errors.New("room already exists")
	ErrAlreadyStarted    = errors.New("game already started")
	ErrInvalidName       = errors.New("name and room code are required")
	ErrInvalidMaxPlayers = errors.New("invalid max players")
	ErrNotHost           = errors.New("only the host can do that")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrGameNotPlaying    = errors.New("game is not in progress")
	ErrStaleIntent       = errors.New("intent is stale, turn already advanced")
	ErrInvalidDocument   = errors.New("invalid room document")
	ErrRoomBusy          = errors.New("room is busy, try again")
)
