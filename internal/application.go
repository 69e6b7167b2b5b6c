package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/config"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/repository"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/transport/chat"
	chatredis "github.com/rocketscienceinc/tictactoe-chatbot/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-chatbot/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-chatbot/transport/mcp"
	"github.com/rocketscienceinc/tictactoe-chatbot/transport/rest"
	"github.com/rocketscienceinc/tictactoe-chatbot/transport/websocket"
)

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

	registry := repository.NewMatchRegistry()
	router := usecase.NewCommandRouter(logger, registry, settingsFrom(conf))

	// run chat poller
	chatErrCh := make(chan error, 1)
	if conf.Transports.Redis {
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		client := chatredis.New(logger, redisStorage.Connection, chatredis.Options{
			InboxKey:     conf.Chat.InboxKey,
			OutboxPrefix: conf.Chat.OutboxPrefix,
			PollTimeout:  conf.Chat.PollTimeout,
			BatchSize:    conf.Chat.BatchSize,
		})
		poller := chat.NewPoller(logger, client, client, router)

		go func() {
			log.Info("Starting chat poller", "inbox", conf.Chat.InboxKey)
			if chatErr := poller.Run(ctx); chatErr != nil {
				log.Error("Chat poller error", "error", chatErr)
				chatErrCh <- chatErr
			}
		}()
	}

	var mcpHandler http.Handler
	if conf.Transports.MCP {
		mcpHandler = mcp.New(logger, router).Handler()
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "mcp", conf.Transports.MCP)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, mcpHandler); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	if conf.Transports.WebSocket {
		go func() {
			log.Info("Starting WebSocket server", "port", conf.SocketPort)
			wsServer := websocket.New(logger, router)
			if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
				log.Error("WebSocket server error", "error", wsErr)
				wsErrCh <- wsErr
			}
		}()
	}

	select {
	case err := <-chatErrCh:
		return fmt.Errorf("chat poller error: %w", err)
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func settingsFrom(conf *config.Config) usecase.Settings {
	return usecase.Settings{
		Glyphs: usecase.Glyphs{
			Empty: conf.Game.Glyphs.Empty,
			A:     conf.Game.Glyphs.A,
			B:     conf.Game.Glyphs.B,
		},
		DefaultSize: conf.Game.DefaultSize,
		MaxSize:     conf.Game.MaxSize,
	}
}
