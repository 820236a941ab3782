package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
	"github.com/rocketscienceinc/fruitseller-backend/internal/session"
)

const (
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

var ErrSlowClient = errors.New("client is not reading fast enough")

// client is one websocket connection. It is also the sink its session reports to.
type client struct {
	logger  *slog.Logger
	conn    *websocket.Conn
	session *session.Session

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *client {
	return &client{
		logger: logger,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

func (that *client) RoomState(room *entity.Room) error {
	return that.enqueue(actionRoomState, ResponsePayload{Room: room})
}

func (that *client) RoomClosed(code string) error {
	return that.enqueue(actionRoomClosed, ResponsePayload{Code: code})
}

func (that *client) sendError(action, errorMsg string) error {
	return that.enqueue(action, ResponsePayload{Error: errorMsg})
}

// enqueue never blocks: a client that falls a whole buffer behind is dropped.
func (that *client) enqueue(action string, payload ResponsePayload) error {
	message, err := encodeMessage(action, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", action, err)
	}

	select {
	case <-that.done:
		return websocket.ErrCloseSent
	default:
	}

	select {
	case that.send <- message:
		return nil
	default:
		// the session may be calling in with its lock held
		go that.close()
		return ErrSlowClient
	}
}

// writePump owns every write on the connection.
func (that *client) writePump() {
	log := that.logger.With("method", "writePump")

	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		that.close()
	}()

	for {
		select {
		case message := <-that.send:
			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error("failed to set write deadline", "error", err)
				return
			}
			if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Error("failed to ping", "error", err)
				return
			}
		case <-that.done:
			_ = that.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// readPump hands every text frame to handle until the connection fails.
func (that *client) readPump(handle func(data []byte)) {
	log := that.logger.With("method", "readPump")

	defer that.close()

	that.conn.SetReadLimit(maxMessageSize)
	if err := that.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error("failed to set read deadline", "error", err)
		return
	}
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			log.Warn("ignoring non-text frame", "type", messageType)
			continue
		}

		handle(data)
	}
}

func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		if that.session != nil {
			that.session.Close()
		}
		_ = that.conn.Close()
	})
}
