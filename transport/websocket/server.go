package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
	sendBufferSize  = 32
)

var errSlowConnection = errors.New("connection is not keeping up")

type gameManager interface {
	State() *entity.Game
	MakeTurn(ctx context.Context, cell int) (*entity.Game, error)
	ResetRound(ctx context.Context) *entity.Game
	ResetAll(ctx context.Context) *entity.Game
}

type handlerFunc func(ctx context.Context, client *client, msg *Message) error

// client is one WebSocket connection. Only its write loop writes to conn;
// everyone else enqueues on send.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan Message
	cancel context.CancelFunc
}

type Server struct {
	logger *slog.Logger
	games  gameManager

	handlers map[string]handlerFunc

	connectionsMutex sync.RWMutex
	connections      map[string]*client
}

func New(logger *slog.Logger, games gameManager) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		games:  games,

		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*client),
	}

	server.handlers[actionGameState] = server.handleGameState
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionResetRound] = server.handleResetRound
	server.handlers[actionResetAll] = server.handleResetAll

	return server
}

// Start - starts WebSocket server on addr until ctx is canceled. Open connections
// are read with a context derived from ctx, so they are closed with it.
func (that *Server) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeHTTP - upgrades the connection to WebSocket and processes its messages.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := websocket.Accept(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(req.Context())

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan Message, sendBufferSize),
		cancel: cancel,
	}
	log = log.With("connID", c.id)

	that.connectionsMutex.Lock()
	that.connections[c.id] = c
	that.connectionsMutex.Unlock()

	log.Info("WebSocket connection established", "connections", that.connectionCount())

	defer func() {
		that.unregister(c)
		cancel()

		conn.Close(websocket.StatusNormalClosure, "")
		log.Info("WebSocket connection closed")
	}()

	go that.writeLoop(ctx, c)

	if err = that.handleMessages(ctx, c); err != nil {
		log.Debug("stopped reading messages", "error", err)
	}
}

// Publish - broadcasts the event's snapshot to every connection as game:update.
// It never waits on the network: a connection whose queue is full is dropped.
func (that *Server) Publish(_ context.Context, event *entity.Event) error {
	log := that.logger.With("method", "Publish", "event", event.Type)

	message, err := newMessage(actionGameUpdate, Payload{Game: event.Game, Event: event.Type})
	if err != nil {
		return err
	}

	that.connectionsMutex.RLock()
	clients := make([]*client, 0, len(that.connections))
	for _, c := range that.connections {
		clients = append(clients, c)
	}
	that.connectionsMutex.RUnlock()

	dropped := 0
	for _, c := range clients {
		if !that.enqueue(c, message) {
			dropped++
		}
	}

	if dropped > 0 {
		log.Warn("dropped slow connections", "dropped", dropped, "connections", len(clients))
		return fmt.Errorf("failed to broadcast %s to %d connections: %w", event.Type, dropped, errSlowConnection)
	}

	return nil
}

// handleMessages - processes messages from the client until the connection is closed.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages", "connID", c.id)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)

			if err = that.sendError(c, actionError, "invalid message"); err != nil {
				return err
			}

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Debug("unknown action", "action", message.Action)

			if err = that.sendError(c, message.Action, apperror.ErrUnknownAction.Error()); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, c, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// writeLoop - the only writer of c.conn. A failed write closes the connection.
func (that *Server) writeLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "writeLoop", "connID", c.id)

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, c.conn, message)
			cancel()

			if err != nil {
				log.Debug("failed to write message", "error", err)
				c.cancel()

				return
			}
		}
	}
}

// enqueue hands message to the write loop. A full queue drops the connection.
func (that *Server) enqueue(c *client, message Message) bool {
	select {
	case c.send <- message:
		return true
	default:
		that.unregister(c)
		c.cancel()

		return false
	}
}

func (that *Server) unregister(c *client) {
	that.connectionsMutex.Lock()
	delete(that.connections, c.id)
	that.connectionsMutex.Unlock()
}

func (that *Server) connectionCount() int {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	return len(that.connections)
}

func newMessage(action string, payload Payload) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return Message{Action: action, Payload: raw}, nil
}

func (that *Server) sendMessage(c *client, action string, payload Payload) error {
	message, err := newMessage(action, payload)
	if err != nil {
		return err
	}

	if !that.enqueue(c, message) {
		return fmt.Errorf("failed to send %s: %w", action, errSlowConnection)
	}

	return nil
}

func (that *Server) sendError(c *client, action, errorMsg string) error {
	if err := that.sendMessage(c, action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
