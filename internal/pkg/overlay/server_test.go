package overlay

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*Server, *httptest.Server, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer("")
	go s.Run(ctx)
	ts := httptest.NewServer(s.Handler(ctx))
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return s, ts, cancel
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.Equal(t, nil, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.Equal(t, nil, err)

	var msg Message
	require.Equal(t, nil, json.Unmarshal(data, &msg))
	return msg
}

func waitForClients(t *testing.T, s *Server, n int) {
	deadline := time.Now().Add(5 * time.Second)
	for s.hub.Len() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, s.hub.Len())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestClientReceivesFullStateOnConnect(t *testing.T) {
	_, ts, _ := startServer(t)
	conn := dial(t, ts)

	msg := readMessage(t, conn)
	assert.Equal(t, "full", msg.Type)
	assert.Equal(t, State{}, msg.State)
}

func TestPublishDirection(t *testing.T) {
	s, ts, _ := startServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)
	waitForClients(t, s, 1)

	state := State{X: 0.8, Y: 0.1, Magnitude: 0.81, Direction: "Right", Center: [2]int{2047, 2050}, DeadZone: [2]int{12, 9}}
	s.PublishDirection(state)

	msg := readMessage(t, conn)
	assert.Equal(t, "direction", msg.Type)
	assert.Equal(t, state, msg.State)
	assert.Greater(t, msg.Seq, int64(1))
}

func TestPublishReplacesNaN(t *testing.T) {
	s, ts, _ := startServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)
	waitForClients(t, s, 1)

	s.Publish(State{X: math.NaN(), Y: math.Inf(1), Direction: "Home"})

	msg := readMessage(t, conn)
	assert.Equal(t, "state", msg.Type)
	assert.Equal(t, 0.0, msg.State.X)
	assert.Equal(t, 0.0, msg.State.Y)
}

func TestStateEndpoint(t *testing.T) {
	s, ts, _ := startServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)
	waitForClients(t, s, 1)

	s.Publish(State{X: -1, Direction: "Left"})
	readMessage(t, conn)

	resp, err := http.Get(ts.URL + "/state")
	require.Equal(t, nil, err)
	defer resp.Body.Close()

	var state State
	require.Equal(t, nil, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, State{X: -1, Direction: "Left"}, state)
}

func TestClientDisconnect(t *testing.T) {
	s, ts, _ := startServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)
	waitForClients(t, s, 1)

	conn.Close()
	waitForClients(t, s, 0)
}
