package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/fruitseller-backend/internal/apperror"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
	"github.com/rocketscienceinc/fruitseller-backend/internal/game"
	"github.com/rocketscienceinc/fruitseller-backend/internal/repository"
)

const DefaultBotDelay = 1500 * time.Millisecond

var ErrSessionClosed = errors.New("session is closed")

// Sink is where a session delivers what its client should see.
type Sink interface {
	RoomState(room *entity.Room) error
	RoomClosed(code string) error
}

type roomWatcher interface {
	Subscribe(ctx context.Context, code string, listener repository.RoomListener) (func(), error)
}

type cardPasser interface {
	PassCard(ctx context.Context, code, identity string, seat, cardIndex int) (*entity.Room, error)
}

// botTurn identifies one bot turn. A snapshot with a different key invalidates a pending move.
type botTurn struct {
	turnIndex int
	status    string
	winnerID  string
}

// Session is the server-side state of one connected client: the room it watches,
// the last snapshot it saw, and, for the host, the timer that plays bot seats.
type Session struct {
	logger   *slog.Logger
	identity string
	watcher  roomWatcher
	passer   cardPasser
	sink     Sink
	botDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	generation  uint64
	code        string
	view        *entity.Room
	unsubscribe func()
	timer       *time.Timer
	pending     botTurn
}

func New(
	ctx context.Context,
	logger *slog.Logger,
	identity string,
	watcher roomWatcher,
	passer cardPasser,
	sink Sink,
	botDelay time.Duration,
) *Session {
	if botDelay <= 0 {
		botDelay = DefaultBotDelay
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Session{
		logger:   logger.With("component", "session", "playerID", identity),
		identity: identity,
		watcher:  watcher,
		passer:   passer,
		sink:     sink,
		botDelay: botDelay,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (that *Session) Identity() string {
	return that.identity
}

// Code returns the code of the watched room, or "" when the session watches nothing.
func (that *Session) Code() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.code
}

// Room returns a copy of the latest snapshot, or nil.
func (that *Session) Room() *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.view == nil {
		return nil
	}

	return that.view.Clone()
}

// Watch replaces the current subscription with one on code. The current document
// reaches the sink before Watch returns.
func (that *Session) Watch(code string) error {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return ErrSessionClosed
	}

	previous := that.detach()
	that.code = code
	generation := that.generation
	that.mu.Unlock()

	if previous != nil {
		previous()
	}

	unsubscribe, err := that.watcher.Subscribe(that.ctx, code, func(room *entity.Room) {
		that.onSnapshot(generation, room)
	})
	if err != nil {
		return err
	}

	that.mu.Lock()
	if that.closed || that.generation != generation {
		that.mu.Unlock()
		unsubscribe()
		return nil
	}
	that.unsubscribe = unsubscribe
	that.mu.Unlock()

	return nil
}

// Unwatch drops the subscription and the local view.
func (that *Session) Unwatch() {
	that.mu.Lock()
	unsubscribe := that.detach()
	that.code = ""
	that.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Close stops the bot timer and the subscription. It is safe to call more than once.
func (that *Session) Close() {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return
	}
	that.closed = true
	unsubscribe := that.detach()
	that.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	that.cancel()
}

// detach must be called with mu held. It invalidates in-flight callbacks and returns
// the subscription to release once mu is dropped.
func (that *Session) detach() func() {
	that.generation++
	that.stopTimer()
	that.view = nil

	unsubscribe := that.unsubscribe
	that.unsubscribe = nil

	return unsubscribe
}

func (that *Session) onSnapshot(generation uint64, room *entity.Room) {
	log := that.logger.With("method", "onSnapshot")

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed || that.generation != generation {
		return
	}

	if room == nil {
		code := that.code
		that.view = nil
		that.stopTimer()

		if err := that.sink.RoomClosed(code); err != nil {
			log.Error("failed to deliver room closed", "roomCode", code, "error", err)
		}
		return
	}

	that.view = room
	that.scheduleBot(generation)

	if err := that.sink.RoomState(room); err != nil {
		log.Error("failed to deliver room state", "roomCode", room.Code, "error", err)
	}
}

// scheduleBot must be called with mu held.
func (that *Session) scheduleBot(generation uint64) {
	turn, ok := that.botTurnOf(that.view)
	if !ok {
		that.stopTimer()
		return
	}

	if that.timer != nil && that.pending == turn {
		return
	}

	that.stopTimer()
	that.pending = turn
	that.timer = time.AfterFunc(that.botDelay, func() {
		that.playBot(generation, turn)
	})
}

// playBot runs on the timer goroutine and acts on the latest snapshot, not the one
// that armed the timer.
func (that *Session) playBot(generation uint64, turn botTurn) {
	log := that.logger.With("method", "playBot")

	that.mu.Lock()
	if that.closed || that.generation != generation {
		that.mu.Unlock()
		return
	}

	current, ok := that.botTurnOf(that.view)
	if !ok || current != turn {
		that.mu.Unlock()
		return
	}

	that.timer = nil
	code := that.view.Code
	seat := that.view.TurnIndex
	cardIndex := game.ChooseDiscard(that.view.Players[seat].Hand)
	that.mu.Unlock()

	_, err := that.passer.PassCard(that.ctx, code, that.identity, seat, cardIndex)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrStaleIntent):
		log.Debug("bot move was stale", "roomCode", code, "seat", seat)
	case errors.Is(err, context.Canceled):
	default:
		log.Error("failed to play bot", "roomCode", code, "seat", seat, "error", err)

		// the room did not move, so try again on the same turn
		that.mu.Lock()
		if !that.closed && that.generation == generation {
			that.scheduleBot(generation)
		}
		that.mu.Unlock()
	}
}

// botTurnOf reports whether this session has to play the current seat of room.
func (that *Session) botTurnOf(room *entity.Room) (botTurn, bool) {
	if room == nil || !room.IsHost(that.identity) {
		return botTurn{}, false
	}

	current := room.CurrentPlayer()
	if current == nil || !current.IsBot {
		return botTurn{}, false
	}

	return botTurn{
		turnIndex: room.TurnIndex,
		status:    room.Status,
		winnerID:  room.WinnerID,
	}, true
}

// stopTimer must be called with mu held.
func (that *Session) stopTimer() {
	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}
}
