package broadcast

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// upgrader accepts any origin: this serves a read-only market-data feed,
// not a browser-trust-boundary endpoint.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSubscriber is one connected websocket client. Delivery goes through a
// drop-oldest ring drained by its own writer goroutine so that one slow
// reader never blocks the broadcaster thread delivering to everyone else.
type wsSubscriber struct {
	conn *websocket.Conn
	ring *ring
	wake chan struct{}

	sendDeadline time.Duration
	log          *zap.Logger
	onClose      func(id string)
	connID       string
}

func newWSSubscriber(conn *websocket.Conn, id string, bufSize int, sendDeadline time.Duration, log *zap.Logger, onClose func(string)) *wsSubscriber {
	s := &wsSubscriber{
		conn:         conn,
		ring:         newRing(bufSize),
		wake:         make(chan struct{}, 1),
		sendDeadline: sendDeadline,
		log:          log,
		onClose:      onClose,
		connID:       id,
	}
	go s.writeLoop()
	return s
}

func (s *wsSubscriber) id() string { return s.connID }

func (s *wsSubscriber) deliver(payload []byte) {
	s.ring.push(payload)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// writeLoop drains the ring and writes text frames with a send deadline;
// exceeding the deadline drops this subscriber in isolation (spec.md §5,
// §7: "per-subscriber socket errors are isolated").
func (s *wsSubscriber) writeLoop() {
	defer s.conn.Close()
	for range s.wake {
		for {
			payload, ok := s.ring.pop()
			if !ok {
				break
			}
			s.conn.SetWriteDeadline(time.Now().Add(s.sendDeadline))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.log.Info("subscriber disconnected", zap.String("id", s.connID), zap.Error(err))
				if s.onClose != nil {
					s.onClose(s.connID)
				}
				return
			}
		}
	}
}

// WSServer listens on a TCP port and upgrades every incoming connection to
// a broadcaster subscriber (spec.md §6: no subscription protocol, every
// connected client receives every snapshot post-connect).
type WSServer struct {
	b            *Broadcaster
	log          *zap.Logger
	bufSize      int
	sendDeadline time.Duration
	next         atomic.Uint64
}

// NewWSServer wires a WSServer into b.
func NewWSServer(b *Broadcaster, log *zap.Logger, bufSize int, sendDeadline time.Duration) *WSServer {
	return &WSServer{b: b, log: log, bufSize: bufSize, sendDeadline: sendDeadline}
}

func (w *WSServer) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	// net/http invokes ServeHTTP concurrently per connection, so the
	// counter must be bumped atomically — a plain w.next++ can hand two
	// simultaneous upgrades the same id, and the second Add silently
	// overwrites the first subscriber in the broadcaster's map.
	id := "ws-" + strconv.FormatUint(w.next.Add(1), 10)
	sub := newWSSubscriber(conn, id, w.bufSize, w.sendDeadline, w.log, w.b.Remove)
	w.b.Add(sub)
}
