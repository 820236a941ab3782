package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/fruitseller-backend/internal/broadcast"
	"github.com/rocketscienceinc/fruitseller-backend/internal/config"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
	"github.com/rocketscienceinc/fruitseller-backend/internal/repository"
	"github.com/rocketscienceinc/fruitseller-backend/internal/repository/storage"
	"github.com/rocketscienceinc/fruitseller-backend/internal/usecase"
	"github.com/rocketscienceinc/fruitseller-backend/transport/rest"
	"github.com/rocketscienceinc/fruitseller-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// roomStore is what both room repositories offer to the rest of the app.
type roomStore interface {
	Create(ctx context.Context, room *entity.Room) error
	Get(ctx context.Context, code string) (*entity.Room, error)
	Update(ctx context.Context, code string, patch entity.RoomPatch) (*entity.Room, error)
	Modify(ctx context.Context, code string, decide entity.PatchFunc) (*entity.Room, error)
	Delete(ctx context.Context, code string) error
	Subscribe(ctx context.Context, code string, listener repository.RoomListener) (func(), error)
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	store, closeStore, err := newRoomStore(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeStore()

	roomManager := usecase.NewRoomManager(logger, store)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, roomManager); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomManager, store, conf.BotDelay)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newRoomStore builds the room repository and its broker. The returned func releases both.
func newRoomStore(ctx context.Context, logger *slog.Logger, conf *config.Config) (roomStore, func(), error) {
	log := logger.With("component", "app")

	if conf.InMemory {
		log.Info("Using in-memory room store")

		broker := broadcast.NewMemoryBroker()
		closeStore := func() {
			if err := broker.Close(); err != nil {
				log.Error("could not close broker", "error", err)
			}
		}

		return repository.NewMemoryRoomRepository(logger, broker), closeStore, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	var broker broadcast.Broker
	switch conf.Broker {
	case config.BrokerNats:
		broker, err = broadcast.NewNatsBroker(logger, conf.Nats.URL)
		if err != nil {
			_ = redisStorage.Close()
			return nil, nil, fmt.Errorf("could not connect to nats: %w", err)
		}
	default:
		broker = broadcast.NewRedisBroker(logger, redisStorage)
	}

	log.Info("Using redis room store", "addr", redisAddrString, "broker", conf.Broker)

	closeStore := func() {
		if err = broker.Close(); err != nil {
			log.Error("could not close broker", "error", err)
		}

		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewRoomRepository(logger, redisStorage, broker), closeStore, nil
}
