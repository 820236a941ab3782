package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
	"github.com/rocketscienceinc/fruitseller-backend/internal/pkg"
	"github.com/rocketscienceinc/fruitseller-backend/internal/repository"
	"github.com/rocketscienceinc/fruitseller-backend/internal/session"
)

const sessionCookieName = "user_session"

type roomUseCase interface {
	CreateRoom(ctx context.Context, identity, name string) (*entity.Room, error)
	JoinRoom(ctx context.Context, code, identity, name string) (*entity.Room, error)
	SetMaxPlayers(ctx context.Context, code, identity string, maxPlayers int) (*entity.Room, error)
	StartGame(ctx context.Context, code, identity string) (*entity.Room, error)
	PassCard(ctx context.Context, code, identity string, seat, cardIndex int) (*entity.Room, error)
	LeaveRoom(ctx context.Context, code, identity string) (*entity.Room, error)
}

type roomWatcher interface {
	Subscribe(ctx context.Context, code string, listener repository.RoomListener) (func(), error)
}

type handlerFunc func(ctx context.Context, client *client, msg *Message) error

type Server struct {
	logger   *slog.Logger
	rooms    roomUseCase
	watcher  roomWatcher
	botDelay time.Duration
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, rooms roomUseCase, watcher roomWatcher, botDelay time.Duration) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		rooms:    rooms,
		watcher:  watcher,
		botDelay: botDelay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionRoomCreate] = server.handleCreateRoom
	server.handlers[actionRoomJoin] = server.handleJoinRoom
	server.handlers[actionRoomLeave] = server.handleLeaveRoom
	server.handlers[actionMaxPlayers] = server.handleMaxPlayers
	server.handlers[actionGameStart] = server.handleStartGame
	server.handlers[actionGamePass] = server.handlePassCard

	return server
}

// Handler serves the websocket endpoint on /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and serves it until either side closes.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	identity, responseHeader := that.sessionIdentity(req)

	conn, err := that.upgrader.Upgrade(writer, req, responseHeader)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log = log.With("playerID", identity)

	client := newClient(log, conn)
	client.session = session.New(ctx, that.logger, identity, that.watcher, that.rooms, client, that.botDelay)

	go client.writePump()

	log.Info("WebSocket connection established")

	if err = client.enqueue(actionConnect, ResponsePayload{Player: &PlayerRef{ID: identity}}); err != nil {
		log.Error("failed to greet client", "error", err)
	}

	client.readPump(func(data []byte) {
		that.handleMessage(ctx, client, data)
	})

	log.Info("WebSocket connection closed")
}

func (that *Server) handleMessage(ctx context.Context, client *client, data []byte) {
	log := that.logger.With("method", "handleMessage", "playerID", client.session.Identity())

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Error("failed to unmarshal message", "error", err)
		return
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action", "action", message.Action)
		if err := client.sendError(message.Action, "unknown action"); err != nil {
			log.Error("failed to send error", "error", err)
		}
		return
	}

	if err := handler(ctx, client, &message); err != nil {
		log.Error("error processing message", "action", message.Action, "error", err)
	}
}

// sessionIdentity - reads the user session cookie or issues a new one with the upgrade response.
func (that *Server) sessionIdentity(req *http.Request) (string, http.Header) {
	log := that.logger.With("method", "sessionIdentity")

	cookie, err := req.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		log.Debug("session cookie found", "playerID", cookie.Value)
		return cookie.Value, nil
	}

	cookie = &http.Cookie{
		Name:     sessionCookieName,
		Value:    pkg.GenerateNewSessionID(),
		Expires:  time.Now().Add(24 * time.Hour),
		Path:     "/",
		HttpOnly: true,
	}

	log.Info("session cookie not found, new one created", "playerID", cookie.Value)

	return cookie.Value, http.Header{"Set-Cookie": {cookie.String()}}
}
