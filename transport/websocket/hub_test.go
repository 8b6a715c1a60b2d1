package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/logger"
)

func init() {
	logger.Silence()
}

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		id:        sessionID + "-client",
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, engine.WebSocketBufferSize),
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Empty session should be cleaned up")
	}
	if _, ok := <-client.send; ok {
		t.Error("Client send channel should be closed")
	}

	// A second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub, "one")
	b := newTestClient(hub, "one")
	other := newTestClient(hub, "two")
	for _, c := range []*Client{a, b, other} {
		hub.registerClient(c)
	}

	hub.broadcastMessage(&Message{SessionID: "one", Event: "frame", Data: []int{1}})

	for _, c := range []*Client{a, b} {
		select {
		case data := <-c.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("Failed to decode message: %v", err)
			}
			if msg.Event != "frame" || msg.SessionID != "one" {
				t.Errorf("Unexpected message %+v", msg)
			}
		default:
			t.Error("Expected a message for clients of session one")
		}
	}
	if len(other.send) != 0 {
		t.Error("Clients of other sessions must not receive the message")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{id: "slow", hub: hub, sessionID: "s", send: make(chan []byte, 1)}
	hub.registerClient(slow)

	hub.sendTo(slow, []byte("1"))
	hub.sendTo(slow, []byte("2"))

	if hub.ClientCount("s") != 0 {
		t.Error("Expected the slow client to be dropped")
	}
}

func TestHubEnqueueWithoutClients(t *testing.T) {
	hub := NewHub()

	// No Run loop and no clients: must return without blocking
	done := make(chan struct{})
	go func() {
		hub.BroadcastEvent("nobody", "frame", nil)
		hub.BroadcastToSession("nobody", &engine.Snapshot{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast to an unwatched session blocked")
	}
}

// startHub runs a hub behind an httptest server
func startHub(t *testing.T, handler CommandHandler, initial *engine.Snapshot) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	hub.OnCommand(handler)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), initial)
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to decode message %q: %v", data, err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(sessionID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients for %s, got %d", n, sessionID, hub.ClientCount(sessionID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketInitialStateAndBroadcast(t *testing.T) {
	initial := &engine.Snapshot{LevelName: "First"}
	hub, url := startHub(t, nil, initial)

	conn := dial(t, url+"?session=abcd")
	msg := readMessage(t, conn)
	if msg.Event != "state_update" || msg.GameState == nil || msg.GameState.LevelName != "First" {
		t.Errorf("Expected initial state, got %+v", msg)
	}

	waitForClients(t, hub, "abcd", 1)
	hub.BroadcastEvent("abcd", "solved", map[string]string{"level_name": "First"})

	msg = readMessage(t, conn)
	if msg.Event != "solved" || msg.SessionID != "abcd" {
		t.Errorf("Expected solved event, got %+v", msg)
	}
}

func TestWebSocketCommands(t *testing.T) {
	handler := func(ctx context.Context, sessionID string, cmd Command) (*engine.Snapshot, error) {
		if cmd.Action != "move" {
			return nil, errors.New("unknown action " + cmd.Action)
		}
		return &engine.Snapshot{LevelName: sessionID + ":" + cmd.Direction}, nil
	}
	hub, url := startHub(t, handler, nil)

	mover := dial(t, url+"?session=s1")
	watcher := dial(t, url+"?session=s1")
	waitForClients(t, hub, "s1", 2)

	t.Run("move is broadcast to the session", func(t *testing.T) {
		if err := mover.WriteJSON(Command{Action: "move", Direction: "up"}); err != nil {
			t.Fatalf("Failed to send command: %v", err)
		}
		for _, conn := range []*websocket.Conn{mover, watcher} {
			msg := readMessage(t, conn)
			if msg.GameState == nil || msg.GameState.LevelName != "s1:up" {
				t.Errorf("Expected state from the move, got %+v", msg)
			}
		}
	})

	t.Run("errors go to the sender", func(t *testing.T) {
		if err := mover.WriteJSON(Command{Action: "dance"}); err != nil {
			t.Fatalf("Failed to send command: %v", err)
		}
		msg := readMessage(t, mover)
		if msg.Event != "error" {
			t.Errorf("Expected error event, got %+v", msg)
		}
	})

	t.Run("malformed command", func(t *testing.T) {
		if err := mover.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
			t.Fatalf("Failed to send: %v", err)
		}
		msg := readMessage(t, mover)
		if msg.Event != "error" {
			t.Errorf("Expected error event, got %+v", msg)
		}
	})
}

func TestWebSocketDisconnectUnregisters(t *testing.T) {
	hub, url := startHub(t, nil, nil)

	conn := dial(t, url+"?session=gone")
	waitForClients(t, hub, "gone", 1)

	conn.Close()
	waitForClients(t, hub, "gone", 0)
}
