package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/usecase"
)

type testEnv struct {
	manager *usecase.GameManager
	server  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	manager := usecase.NewGameManager(logger, tictactoe.NewGameEngine())

	wsServer := New(logger, manager)
	manager.Subscribe(wsServer)

	server := httptest.NewServer(wsServer)
	t.Cleanup(server.Close)

	return &testEnv{manager: manager, server: server}
}

func (that *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(that.server.URL, "http") + "/ws"

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := Message{Action: action}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}

	require.NoError(t, wsjson.Write(ctx, conn, msg))
}

func receive(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var msg Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))

	var payload Payload
	if len(msg.Payload) > 0 {
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	}

	return msg.Action, payload
}

func cell(n int) map[string]int {
	return map[string]int{"cell": n}
}

func TestServer_GameState(t *testing.T) {
	// Given: a connected client
	env := newTestEnv(t)
	conn := env.dial(t)

	// When: it asks for the state
	send(t, conn, actionGameState, nil)

	// Then: the current snapshot is replied
	action, payload := receive(t, conn)
	assert.Equal(t, actionGameState, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, entity.PlayerX, payload.Game.Turn)
	assert.Equal(t, "Turn: X", payload.Game.Status)
}

func TestServer_GameTurn(t *testing.T) {
	t.Run("Accepted move is broadcast as game:update", func(t *testing.T) {
		env := newTestEnv(t)
		conn := env.dial(t)

		send(t, conn, actionGameTurn, cell(4))

		action, payload := receive(t, conn)
		assert.Equal(t, actionGameUpdate, action)
		assert.Equal(t, entity.EventMove, payload.Event)
		require.NotNil(t, payload.Game)
		assert.Equal(t, entity.PlayerX, payload.Game.Board[4])
		assert.Equal(t, entity.PlayerO, payload.Game.Turn)
	})

	t.Run("Every connection receives the update", func(t *testing.T) {
		// Given: two registered clients
		env := newTestEnv(t)
		first := env.dial(t)
		second := env.dial(t)

		send(t, second, actionGameState, nil)
		receive(t, second)

		// When: the first client plays
		send(t, first, actionGameTurn, cell(0))

		// Then: both see the move
		for _, conn := range []*websocket.Conn{first, second} {
			action, payload := receive(t, conn)
			assert.Equal(t, actionGameUpdate, action)
			require.NotNil(t, payload.Game)
			assert.Equal(t, entity.PlayerX, payload.Game.Board[0])
		}
	})

	t.Run("Moves made elsewhere are pushed to the client", func(t *testing.T) {
		env := newTestEnv(t)
		conn := env.dial(t)

		send(t, conn, actionGameState, nil)
		receive(t, conn)

		_, err := env.manager.MakeTurn(context.Background(), 8)
		require.NoError(t, err)

		action, payload := receive(t, conn)
		assert.Equal(t, actionGameUpdate, action)
		assert.Equal(t, entity.PlayerX, payload.Game.Board[8])
	})

	t.Run("Winning move is reported as round:won", func(t *testing.T) {
		env := newTestEnv(t)
		conn := env.dial(t)

		var payload Payload
		for _, n := range []int{0, 3, 1, 4, 2} {
			send(t, conn, actionGameTurn, cell(n))
			_, payload = receive(t, conn)
		}

		assert.Equal(t, entity.EventRoundWon, payload.Event)
		assert.Equal(t, entity.StatusWon, payload.Game.Outcome.Status)
		assert.Equal(t, 1, payload.Game.Scores.X)
	})

	t.Run("Out of range cell is replied to the sender", func(t *testing.T) {
		env := newTestEnv(t)
		conn := env.dial(t)

		send(t, conn, actionGameTurn, cell(9))

		action, payload := receive(t, conn)
		assert.Equal(t, actionGameTurn, action)
		assert.Equal(t, "cell index out of range", payload.Error)
		assert.Nil(t, payload.Game)
	})

	t.Run("Missing cell is replied to the sender", func(t *testing.T) {
		env := newTestEnv(t)
		conn := env.dial(t)

		send(t, conn, actionGameTurn, map[string]string{})

		action, payload := receive(t, conn)
		assert.Equal(t, actionGameTurn, action)
		assert.Equal(t, "cell is required", payload.Error)
	})
}

func TestServer_Resets(t *testing.T) {
	// Given: X has won a round
	env := newTestEnv(t)
	conn := env.dial(t)

	for _, n := range []int{0, 3, 1, 4, 2} {
		send(t, conn, actionGameTurn, cell(n))
		receive(t, conn)
	}

	t.Run("Reset round keeps the score", func(t *testing.T) {
		send(t, conn, actionResetRound, nil)

		action, payload := receive(t, conn)
		assert.Equal(t, actionGameUpdate, action)
		assert.Equal(t, entity.EventRoundReset, payload.Event)
		assert.Equal(t, entity.Board{}, payload.Game.Board)
		assert.Equal(t, 1, payload.Game.Scores.X)
	})

	t.Run("Reset all clears the score", func(t *testing.T) {
		send(t, conn, actionResetAll, nil)

		action, payload := receive(t, conn)
		assert.Equal(t, actionGameUpdate, action)
		assert.Equal(t, entity.EventSessionReset, payload.Event)
		assert.Equal(t, entity.ScoreBoard{}, payload.Game.Scores)
	})
}

func TestServer_InvalidMessages(t *testing.T) {
	t.Run("Unknown action", func(t *testing.T) {
		env := newTestEnv(t)
		conn := env.dial(t)

		send(t, conn, "game:undo", nil)

		action, payload := receive(t, conn)
		assert.Equal(t, "game:undo", action)
		assert.Equal(t, "unknown action", payload.Error)
	})

	t.Run("Malformed envelope", func(t *testing.T) {
		env := newTestEnv(t)
		conn := env.dial(t)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))

		action, payload := receive(t, conn)
		assert.Equal(t, actionError, action)
		assert.Equal(t, "invalid message", payload.Error)
	})
}

func TestServer_SlowConnections(t *testing.T) {
	t.Run("Client that stops reading does not hold up commands", func(t *testing.T) {
		// Given: a registered client that never reads again
		env := newTestEnv(t)
		stalled := env.dial(t)

		send(t, stalled, actionGameState, nil)
		receive(t, stalled)

		// When: many commands are issued
		start := time.Now()
		for i := 0; i < 5000; i++ {
			env.manager.ResetRound(context.Background())
		}

		// Then: none of them waited on the network
		assert.Less(t, time.Since(start), time.Second)

		// And: other clients are still served
		healthy := env.dial(t)
		send(t, healthy, actionGameState, nil)

		action, payload := receive(t, healthy)
		assert.Equal(t, actionGameState, action)
		require.NotNil(t, payload.Game)
	})

	t.Run("Full queue drops only that connection", func(t *testing.T) {
		// Given: one client with a full queue and one with room
		logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
		manager := usecase.NewGameManager(logger, tictactoe.NewGameEngine())
		srv := New(logger, manager)

		slowCtx, slowCancel := context.WithCancel(context.Background())
		defer slowCancel()

		slow := &client{id: "slow", send: make(chan Message, 1), cancel: slowCancel}
		slow.send <- Message{Action: actionGameState}

		fast := &client{id: "fast", send: make(chan Message, 1), cancel: func() {}}

		srv.connections[slow.id] = slow
		srv.connections[fast.id] = fast

		// When: an event is broadcast
		err := srv.Publish(context.Background(), entity.NewEvent(entity.EventRoundReset, manager.State()))

		// Then: the slow client is dropped and closed, the other one is queued
		require.ErrorIs(t, err, errSlowConnection)
		assert.Equal(t, 1, srv.connectionCount())
		require.Error(t, slowCtx.Err())

		require.Len(t, fast.send, 1)
		message := <-fast.send
		assert.Equal(t, actionGameUpdate, message.Action)
	})
}
