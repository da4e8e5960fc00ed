package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/config"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tui"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/rest"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	gameManager := usecase.NewGameManager(logger, tictactoe.NewGameEngine())

	if conf.Redis.Enabled {
		redisClient, err := redis.Connect(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis client", "error", err)
			}
		}()

		publisher := redis.NewPublisher(redisClient, conf.Redis.Channel)
		gameManager.Subscribe(publisher)
		log.Info("Publishing game events to redis", "channel", publisher.Channel())
	}

	wsServer := websocket.New(logger, gameManager)
	gameManager.Subscribe(wsServer)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		addr := conf.GetHTTPAddr()
		log.Info("Starting HTTP server", "addr", addr)

		if httpErr := rest.New(logger, gameManager).Start(ctx, addr); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		addr := conf.GetSocketAddr()
		log.Info("Starting WebSocket server", "addr", addr)

		if wsErr := wsServer.Start(ctx, addr); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	// run terminal UI in the foreground
	uiDoneCh := make(chan error, 1)
	if conf.UI == config.UIModeTUI {
		ui := tui.New(logger, gameManager, conf.Theme)
		gameManager.Subscribe(ui)

		go func() {
			uiDoneCh <- ui.Run(ctx)
		}()
	}

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case err := <-uiDoneCh:
		if err != nil {
			return fmt.Errorf("terminal UI error: %w", err)
		}

		log.Info("Terminal UI closed, shutting down")

		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
