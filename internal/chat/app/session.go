package app

import (
	"encoding/json"
	"fmt"
	"sync"

	"agri_market_service/internal/chat/domain"
	"agri_market_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// sendBufferSize bounds the per-session outbound queue. A session that
// cannot drain this many envelopes is treated as a slow consumer and
// evicted rather than blocking the hub.
const sendBufferSize = 64

// ConnWriter is the subset of the websocket connection the session writes
// through, kept narrow so tests can capture frames in memory.
type ConnWriter interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is one live websocket connection of one member. A member may hold
// several sessions (browser tabs) at once, each with its own id.
type Session struct {
	ID       string
	MemberID string
	Role     string

	conn  ConnWriter
	send  chan []byte
	pings chan struct{}
	done  chan struct{}

	closeOnce sync.Once
}

// NewSession wraps conn and starts the write pump.
func NewSession(id, memberID, role string, conn ConnWriter) *Session {
	s := &Session{
		ID:       id,
		MemberID: memberID,
		Role:     role,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		pings:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go s.writePump()
	return s
}

// Enqueue queues resp for delivery. Returns false without blocking when the
// session buffer is full or the session is already closed.
func (s *Session) Enqueue(resp domain.WSResponse) bool {
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Error("session marshal err :", zap.Error(err))
		return true
	}

	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- b:
		return true
	default:
		return false
	}
}

// Ping asks the write pump to emit a ping control frame. All frame writes
// stay on the pump goroutine, so pings never race message writes.
func (s *Session) Ping() {
	select {
	case s.pings <- struct{}{}:
	default:
	}
}

// Close shuts the session down exactly once. Safe to call from the read
// loop, the hub and eviction paths concurrently.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// writePump serializes all frame writes onto one goroutine. Exits when the
// session closes.
func (s *Session) writePump() {
	for {
		select {
		case b := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				logger.Log.Errorf(fmt.Sprintf("session %s write error", s.ID), err)
				s.Close()
				return
			}
		case <-s.pings:
			if err := s.conn.WriteMessage(websocket.PingMessage, []byte("ping message")); err != nil {
				logger.Log.Errorf(fmt.Sprintf("session %s ping error", s.ID), err)
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}
