package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 16
)

type commandHandler interface {
	Handle(ctx context.Context, req usecase.Request) usecase.Reply
}

// Server serves chat commands over concurrent WebSocket connections. A reply is
// delivered to every connection that joined the reply's chat.
type Server struct {
	logger   *slog.Logger
	handler  commandHandler
	upgrader websocket.Upgrader

	chatsMutex sync.RWMutex
	chats      map[string]map[*client]struct{}

	handlers map[string]func(ctx context.Context, c *client, msg *Message) error
}

type client struct {
	conn *websocket.Conn
	send chan Message

	// chats is only touched under Server.chatsMutex
	chats map[string]struct{}
}

func New(logger *slog.Logger, handler commandHandler) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		chats: make(map[string]map[*client]struct{}),
	}

	server.handlers = map[string]func(context.Context, *client, *Message) error{
		actionJoin:    server.handleJoin,
		actionCommand: server.handleCommand,
	}

	return server
}

// Start - starts WebSocket server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that.Handler(ctx))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler upgrades requests to WebSocket connections.
func (that *Server) Handler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})
}

func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		conn:  conn,
		send:  make(chan Message, sendBufferSize),
		chats: make(map[string]struct{}),
	}

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	go that.writePump(c)
	that.readPump(ctx, c)
}

// readPump handles messages of one connection in order until it closes.
func (that *Server) readPump(ctx context.Context, c *client) {
	log := that.logger.With("method", "readPump")

	defer func() {
		that.leaveAll(c)
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(c, "unknown action "+message.Action)
			continue
		}

		if err := handler(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
			that.sendError(c, err.Error())
		}
	}
}

func (that *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				that.logger.Error("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (that *Server) join(c *client, chatID string) {
	that.chatsMutex.Lock()
	defer that.chatsMutex.Unlock()

	members, ok := that.chats[chatID]
	if !ok {
		members = make(map[*client]struct{})
		that.chats[chatID] = members
	}

	members[c] = struct{}{}
	c.chats[chatID] = struct{}{}
}

func (that *Server) leaveAll(c *client) {
	that.chatsMutex.Lock()
	defer that.chatsMutex.Unlock()

	for chatID := range c.chats {
		delete(that.chats[chatID], c)
		if len(that.chats[chatID]) == 0 {
			delete(that.chats, chatID)
		}
	}
}

// broadcast queues message for every member of chatID; slow members miss it.
func (that *Server) broadcast(chatID string, message Message) {
	that.chatsMutex.RLock()
	defer that.chatsMutex.RUnlock()

	for member := range that.chats[chatID] {
		select {
		case member.send <- message:
		default:
			that.logger.Warn("send buffer is full, dropping message", "chat", chatID)
		}
	}
}

func (that *Server) sendError(c *client, text string) {
	message, err := newMessage(actionError, Payload{Error: text})
	if err != nil {
		return
	}

	select {
	case c.send <- message:
	default:
	}
}
