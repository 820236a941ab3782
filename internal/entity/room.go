package entity

import (
	"fmt"

	"github.com/rocketscienceinc/fruitseller-backend/internal/apperror"
)

const (
	StatusLobby    = "lobby"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

const (
	SchemaVersion = 1

	MinPlayers        = 4
	MaxPlayers        = 6
	DefaultMaxPlayers = 4

	CardsPerSeat = 5
	WinningCount = 5
	MaxLogs      = 5
)

type LogType string

const (
	LogNeutral LogType = "neutral"
	LogAction  LogType = "action"
	LogWin     LogType = "win"
)

type LogEntry struct {
	Text string  `json:"text"`
	Type LogType `json:"type"`
}

// Room is the single shared document every participant of a game observes.
type Room struct {
	Version    int        `json:"v"`
	Code       string     `json:"code"`
	HostID     string     `json:"hostId"`
	Status     string     `json:"status"`
	Players    []*Player  `json:"players"`
	MaxPlayers int        `json:"maxPlayers"`
	TurnIndex  int        `json:"turnIndex"`
	WinnerID   string     `json:"winnerId,omitempty"`
	Logs       []LogEntry `json:"logs"`
}

func NewRoom(code string, host *Player) *Room {
	return &Room{
		Version:    SchemaVersion,
		Code:       code,
		HostID:     host.ID,
		Status:     StatusLobby,
		Players:    []*Player{host},
		MaxPlayers: DefaultMaxPlayers,
		TurnIndex:  0,
		Logs:       []LogEntry{},
	}
}

func (that *Room) IsLobby() bool {
	return that.Status == StatusLobby
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsHost(identity string) bool {
	return identity != "" && that.HostID == identity
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= that.MaxPlayers
}

// SeatIndex returns the seat held by identity or -1.
func (that *Room) SeatIndex(identity string) int {
	for i, player := range that.Players {
		if player.ID == identity {
			return i
		}
	}
	return -1
}

func (that *Room) HumanCount() int {
	count := 0
	for _, player := range that.Players {
		if !player.IsBot {
			count++
		}
	}
	return count
}

// CurrentPlayer returns the seat whose turn it is, or nil outside of play.
func (that *Room) CurrentPlayer() *Player {
	if !that.IsPlaying() || that.TurnIndex < 0 || that.TurnIndex >= len(that.Players) {
		return nil
	}
	return that.Players[that.TurnIndex]
}

func (that *Room) PlayerByID(identity string) *Player {
	if idx := that.SeatIndex(identity); idx >= 0 {
		return that.Players[idx]
	}
	return nil
}

func (that *Room) TotalCards() int {
	total := 0
	for _, player := range that.Players {
		total += len(player.Hand)
	}
	return total
}

// AppendLog adds entries and keeps only the most recent MaxLogs.
func (that *Room) AppendLog(entries ...LogEntry) {
	that.Logs = append(that.Logs, entries...)
	if len(that.Logs) > MaxLogs {
		that.Logs = that.Logs[len(that.Logs)-MaxLogs:]
	}
}

func (that *Room) ConfirmPlaying() error {
	switch that.Status {
	case StatusPlaying:
		return nil
	case StatusLobby, StatusFinished:
		return apperror.ErrGameNotPlaying
	default:
		return fmt.Errorf("%w: unknown status %q", apperror.ErrInvalidDocument, that.Status)
	}
}

// Validate checks the structural invariants of a document before the core accepts it.
func (that *Room) Validate() error {
	if that.Version != SchemaVersion {
		return fmt.Errorf("%w: unsupported version %d", apperror.ErrInvalidDocument, that.Version)
	}

	if that.Code == "" || that.HostID == "" {
		return fmt.Errorf("%w: code and host are required", apperror.ErrInvalidDocument)
	}

	switch that.Status {
	case StatusLobby, StatusPlaying, StatusFinished:
	default:
		return fmt.Errorf("%w: unknown status %q", apperror.ErrInvalidDocument, that.Status)
	}

	if that.MaxPlayers < MinPlayers || that.MaxPlayers > MaxPlayers {
		return fmt.Errorf("%w: max players %d", apperror.ErrInvalidDocument, that.MaxPlayers)
	}

	if len(that.Players) > that.MaxPlayers {
		return fmt.Errorf("%w: %d players over limit %d", apperror.ErrInvalidDocument, len(that.Players), that.MaxPlayers)
	}

	for i, player := range that.Players {
		if player == nil || player.ID == "" {
			return fmt.Errorf("%w: seat %d has no identity", apperror.ErrInvalidDocument, i)
		}
		for _, card := range player.Hand {
			if !card.Type.IsValid() {
				return fmt.Errorf("%w: seat %d holds unknown kind %q", apperror.ErrInvalidDocument, i, card.Type)
			}
		}
	}

	if that.IsPlaying() && (that.TurnIndex < 0 || that.TurnIndex >= len(that.Players)) {
		return fmt.Errorf("%w: turn index %d out of range", apperror.ErrInvalidDocument, that.TurnIndex)
	}

	// winnerId outlives the seat: the winner may leave a finished room.
	if that.IsFinished() && that.WinnerID == "" {
		return fmt.Errorf("%w: finished without a winner", apperror.ErrInvalidDocument)
	}

	if len(that.Logs) > MaxLogs {
		return fmt.Errorf("%w: %d log entries", apperror.ErrInvalidDocument, len(that.Logs))
	}

	return nil
}

// Clone returns a deep copy so engines never mutate a shared snapshot.
func (that *Room) Clone() *Room {
	players := make([]*Player, len(that.Players))
	for i, player := range that.Players {
		players[i] = player.Clone()
	}

	logs := make([]LogEntry, len(that.Logs))
	copy(logs, that.Logs)

	return &Room{
		Version:    that.Version,
		Code:       that.Code,
		HostID:     that.HostID,
		Status:     that.Status,
		Players:    players,
		MaxPlayers: that.MaxPlayers,
		TurnIndex:  that.TurnIndex,
		WinnerID:   that.WinnerID,
		Logs:       logs,
	}
}
