// Package snapshotsrv broadcasts canvas snapshots to connected viewers
// over a websocket, the role kernel/core/mesh/transport/transport.go's
// signalingConn fills for the mesh transport (a persistent duplex
// connection wrapper driving a broadcast loop), adapted here to a single
// server pushing frames out instead of peers exchanging signaling
// messages.
package snapshotsrv

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"

	"github.com/Vitaminas256/allocator2d/internal/rlog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server accepts websocket viewers and broadcasts PNG frames to all of
// them. Each connection's send path is wrapped in its own circuit
// breaker so one stalled viewer trips open instead of backing up the
// broadcast loop for everyone else.
type Server struct {
	log *rlog.Logger

	mu      sync.Mutex
	viewers map[*viewer]struct{}
}

type viewer struct {
	conn    *websocket.Conn
	breaker *gobreaker.CircuitBreaker
}

// New builds a snapshot server. Call ServeHTTP from an http.Server
// (typically at a path like "/snapshots") to accept viewers.
func New(log *rlog.Logger) *Server {
	return &Server{log: log, viewers: make(map[*viewer]struct{})}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection as a viewer until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", rlog.Err(err))
		return
	}

	v := &viewer{
		conn: conn,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "snapshot-viewer",
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}

	s.mu.Lock()
	s.viewers[v] = struct{}{}
	s.mu.Unlock()
	s.log.Info("viewer connected", rlog.Int("total_viewers", len(s.viewers)))

	go s.readLoop(v)
}

// readLoop drains and discards incoming frames (viewers are read-only
// clients) until the connection closes, then deregisters the viewer.
func (s *Server) readLoop(v *viewer) {
	defer s.remove(v)
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) remove(v *viewer) {
	s.mu.Lock()
	delete(s.viewers, v)
	s.mu.Unlock()
	v.conn.Close()
	s.log.Info("viewer disconnected", rlog.Int("total_viewers", len(s.viewers)))
}

// Broadcast sends a PNG frame to every connected viewer. A viewer whose
// breaker is open is skipped rather than blocked on.
func (s *Server) Broadcast(frame []byte) {
	s.mu.Lock()
	viewers := make([]*viewer, 0, len(s.viewers))
	for v := range s.viewers {
		viewers = append(viewers, v)
	}
	s.mu.Unlock()

	for _, v := range viewers {
		v := v
		_, err := v.breaker.Execute(func() (interface{}, error) {
			v.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
			return nil, v.conn.WriteMessage(websocket.BinaryMessage, frame)
		})
		if err != nil {
			s.log.Warn("broadcast send failed", rlog.Err(err))
		}
	}
}
