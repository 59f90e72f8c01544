package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/config"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/repository"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/service"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-chatbot/transport/rest"
	"github.com/rocketscienceinc/tictactoe-chatbot/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

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

	updateRepo, closeUpdates, err := initUpdateRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer closeUpdates()

	sessionRepo := repository.NewSessionRepository()
	botService := service.NewBotService(newRandSource(conf.Bot.Seed))
	renderService := service.NewRenderService()

	hub := websocket.NewHub()
	messenger := websocket.NewMessenger(hub)
	gameUseCase := usecase.NewGameUseCase(logger, sessionRepo, botService, renderService, messenger)

	sweeper := usecase.NewSweeper(logger, sessionRepo, conf.Session.TTL, conf.Session.SweepInterval)
	go sweeper.Run(ctx)

	wsServer := websocket.New(logger, conf.WebSocket, hub, messenger, gameUseCase, updateRepo)
	httpServer := rest.New(logger, rest.NewHandlers(sessionRepo, hub), wsServer.HandleWebSocket)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := httpServer.Start(conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("could not shutdown HTTP server", "error", err)
	}

	return nil
}

// initUpdateRepository - redis backed redelivery guard, a no-op one when redis is disabled.
func initUpdateRepository(ctx context.Context, conf *config.Config) (repository.UpdateRepository, func(), error) {
	if !conf.Redis.Enabled {
		return repository.NewNoopUpdateRepository(), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeFn := func() {
		if err := redisStorage.Close(); err != nil {
			slog.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewUpdateRepository(redisStorage.Connection, conf.Redis.DedupeTTL), closeFn, nil
}

func newRandSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return rand.New(rand.NewSource(seed)) //nolint:gosec // game moves, not secrets
}
