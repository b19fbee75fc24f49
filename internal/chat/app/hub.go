package app

import (
	"fmt"
	"sync"

	"agri_market_service/internal/chat/domain"
	"agri_market_service/pkg/logger"

	"go.uber.org/zap"
)

// Hub tracks which sessions are connected on this node and which rooms each
// one has joined. It only knows local sessions, cross node delivery rides
// the redis backplane and re-enters through the Broadcast methods.
type Hub struct {
	mu sync.RWMutex

	// sessions by session id
	sessions map[string]*Session
	// rooms maps room id to the sessions joined to it
	rooms map[string]map[string]*Session
	// byMember maps member id to that member's sessions
	byMember map[string]map[string]*Session
	// joined maps session id to the rooms it sits in, for cleanup
	joined map[string]map[string]struct{}
}

// NewHub create an empty Hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]*Session),
		byMember: make(map[string]map[string]*Session),
		joined:   make(map[string]map[string]struct{}),
	}
}

// Register adds a freshly connected session.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s.ID] = s
	if h.byMember[s.MemberID] == nil {
		h.byMember[s.MemberID] = make(map[string]*Session)
	}
	h.byMember[s.MemberID][s.ID] = s
	h.joined[s.ID] = make(map[string]struct{})
}

// Unregister removes a session and clears all of its room memberships. The
// session is closed as a side effect.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	for roomID := range h.joined[s.ID] {
		h.dropFromRoom(roomID, s.ID)
	}
	delete(h.joined, s.ID)
	delete(h.sessions, s.ID)
	if member := h.byMember[s.MemberID]; member != nil {
		delete(member, s.ID)
		if len(member) == 0 {
			delete(h.byMember, s.MemberID)
		}
	}
	h.mu.Unlock()

	s.Close()
}

// Join subscribes a session to a room. Joining twice is a no-op.
func (h *Hub) Join(roomID string, s *Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.ID]; !ok {
		return fmt.Errorf("session %s is not registered", s.ID)
	}

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Session)
	}
	h.rooms[roomID][s.ID] = s
	h.joined[s.ID][roomID] = struct{}{}
	return nil
}

// Leave unsubscribes a session from a room.
func (h *Hub) Leave(roomID string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropFromRoom(roomID, s.ID)
	if set := h.joined[s.ID]; set != nil {
		delete(set, roomID)
	}
}

// IsJoined reports whether the session currently sits in the room.
func (h *Hub) IsJoined(roomID string, sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][sessionID]
	return ok
}

// RoomSessionCount counts local sessions joined to the room.
func (h *Hub) RoomSessionCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastRoom delivers resp to every local session joined to the room.
// Sessions that cannot keep up are evicted.
func (h *Hub) BroadcastRoom(roomID string, resp domain.WSResponse) {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.rooms[roomID]))
	for _, s := range h.rooms[roomID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	h.deliver(targets, resp)
}

// BroadcastAll delivers resp to every local session.
func (h *Hub) BroadcastAll(resp domain.WSResponse) {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	h.deliver(targets, resp)
}

// SendToMember delivers resp to every local session of one member.
func (h *Hub) SendToMember(memberID string, resp domain.WSResponse) {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.byMember[memberID]))
	for _, s := range h.byMember[memberID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	h.deliver(targets, resp)
}

func (h *Hub) deliver(targets []*Session, resp domain.WSResponse) {
	for _, s := range targets {
		if !s.Enqueue(resp) {
			logger.Log.Warn("evicting slow session",
				zap.String("session_id", s.ID),
				zap.String("member_id", s.MemberID),
			)
			h.Unregister(s)
		}
	}
}

// caller holds the write lock
func (h *Hub) dropFromRoom(roomID, sessionID string) {
	if room := h.rooms[roomID]; room != nil {
		delete(room, sessionID)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}
