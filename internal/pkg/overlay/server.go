package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gethiox/stickd/internal/pkg/logger"
	"github.com/gorilla/websocket"
)

const fullSyncInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // overlays are served from local files or other origins
	},
}

// Server publishes joystick state over WebSocket on /ws and as JSON on /state.
type Server struct {
	hub    *Hub
	addr   string
	states chan update

	mu   sync.Mutex
	last State
	seq  int64

	httpServer *http.Server
}

type update struct {
	kind  string
	state State
}

func NewServer(addr string) *Server {
	return &Server{
		hub:    NewHub(),
		addr:   addr,
		states: make(chan update, 16),
	}
}

func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket(ctx))
	mux.HandleFunc("/state", s.handleState)
	return mux
}

func (s *Server) handleWebSocket(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Info(fmt.Sprintf("websocket upgrade failed: %v", err), logger.Warning)
			return
		}

		client := newClient(s.hub, conn)
		s.hub.register(client)

		data, err := s.message("full", nil)
		if err == nil {
			client.send <- data
		}

		go client.writePump()
		go client.readPump(ctx)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.last
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(state)
	if err != nil {
		log.Info(fmt.Sprintf("cannot encode state: %v", err), logger.Debug)
	}
}

// message stores new state if given and encodes it with the next sequence number.
func (s *Server) message(kind string, state *State) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state != nil {
		s.last = *state
	}
	s.seq++
	return json.Marshal(newMessage(kind, s.seq, s.last))
}

// Publish queues state change, it never blocks the caller. States are dropped when the queue is full.
func (s *Server) Publish(state State) {
	s.queue(update{kind: "state", state: state})
}

// PublishDirection queues state with a direction change, it never blocks the caller.
func (s *Server) PublishDirection(state State) {
	s.queue(update{kind: "direction", state: state})
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (s *Server) queue(u update) {
	// JSON has no representation for NaN, degenerate calibration produces it
	u.state.X = finite(u.state.X)
	u.state.Y = finite(u.state.Y)
	u.state.Magnitude = finite(u.state.Magnitude)

	select {
	case s.states <- u:
	default:
	}
}

// Run broadcasts queued states until ctx is done.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()
	defer s.hub.Close()

	for {
		var data []byte
		var err error

		select {
		case <-ctx.Done():
			return
		case u := <-s.states:
			data, err = s.message(u.kind, &u.state)
		case <-ticker.C:
			if s.hub.Len() == 0 {
				continue
			}
			data, err = s.message("full", nil)
		}

		if err != nil {
			log.Info(fmt.Sprintf("cannot encode overlay message: %v", err), logger.Warning)
			continue
		}
		s.hub.Broadcast(data)
	}
}

// ListenAndServe serves clients until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(ctx),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	log.Info(fmt.Sprintf("overlay server listening on %s", s.addr), logger.Info)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
