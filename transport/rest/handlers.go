package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/fruitseller-backend/internal/apperror"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
)

type roomGetter interface {
	GetRoom(ctx context.Context, code string) (*entity.Room, error)
}

type handlers struct {
	logger *slog.Logger
	rooms  roomGetter
}

func newHandlers(logger *slog.Logger, rooms roomGetter) *handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		rooms:  rooms,
	}
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write pong", "error", err)
	}
}

// GetRoom returns the current room document as JSON.
func (that *handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetRoom")

	room, err := that.rooms.GetRoom(r.Context(), r.PathValue("code"))
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(w, apperror.ErrRoomNotFound.Error(), http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get room", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(room); err != nil {
		log.Error("failed to encode room", "roomCode", room.Code, "error", err)
	}
}
