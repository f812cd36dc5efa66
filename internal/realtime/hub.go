// Package realtime keeps track of live sharing sessions and fans frames out to
// them. A session is one websocket connection of one member on one plan; a
// member may hold several (one per open tab).
//
// The hub never blocks a sender: each session has a bounded outbound buffer
// and a frame that does not fit is dropped with a warning.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// DefaultBuffer is the outbound buffer size used when NewHub gets zero.
const DefaultBuffer = 16

// Session is one member's connection to a plan's sharing channel.
type Session struct {
	ID       uuid.UUID
	PlanID   uuid.UUID
	MemberID uuid.UUID

	out    chan Frame
	closed bool // guarded by Hub.mu
}

// Outbound returns the channel the connection writer drains. It is closed
// when the session leaves the hub.
func (s *Session) Outbound() <-chan Frame {
	return s.out
}

// Hub is a registry of sessions keyed by plan.
type Hub struct {
	mu     sync.RWMutex
	logger *slog.Logger
	buffer int
	plans  map[uuid.UUID]map[*Session]struct{}
}

// NewHub returns an empty hub. buffer is the per-session outbound capacity.
func NewHub(logger *slog.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		logger: logger.With("component", "realtime.Hub"),
		buffer: buffer,
		plans:  make(map[uuid.UUID]map[*Session]struct{}),
	}
}

// Join registers a new session for memberID on planID.
func (h *Hub) Join(planID, memberID uuid.UUID) *Session {
	s := &Session{
		ID:       uuid.New(),
		PlanID:   planID,
		MemberID: memberID,
		out:      make(chan Frame, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sessions, ok := h.plans[planID]
	if !ok {
		sessions = make(map[*Session]struct{})
		h.plans[planID] = sessions
	}
	sessions[s] = struct{}{}

	h.logger.Debug("session joined", "session_id", s.ID, "plan_id", planID, "member_id", memberID)
	return s
}

// Leave unregisters s and closes its outbound channel. Calling it twice is safe.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)

	if sessions, ok := h.plans[s.PlanID]; ok {
		delete(sessions, s)
		if len(sessions) == 0 {
			delete(h.plans, s.PlanID)
		}
	}
	h.logger.Debug("session left", "session_id", s.ID, "plan_id", s.PlanID, "member_id", s.MemberID)
}

// Broadcast queues f on every session of planID and returns how many
// sessions accepted it.
func (h *Hub) Broadcast(planID uuid.UUID, f Frame) int {
	return h.deliver(planID, f, func(*Session) bool { return true })
}

// SendToMember queues f only on memberID's sessions of planID.
func (h *Hub) SendToMember(planID, memberID uuid.UUID, f Frame) int {
	return h.deliver(planID, f, func(s *Session) bool { return s.MemberID == memberID })
}

// Send queues f on a single session.
func (h *Hub) Send(s *Session, f Frame) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.offer(s, f)
}

// Sessions returns the number of live sessions on planID.
func (h *Hub) Sessions(planID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.plans[planID])
}

func (h *Hub) deliver(planID uuid.UUID, f Frame, match func(*Session) bool) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for s := range h.plans[planID] {
		if match(s) && h.offer(s, f) {
			n++
		}
	}
	return n
}

// offer must be called with h.mu held.
func (h *Hub) offer(s *Session, f Frame) bool {
	if s.closed {
		return false
	}
	select {
	case s.out <- f:
		return true
	default:
		h.logger.Warn("dropping frame; outbound buffer full",
			"session_id", s.ID, "plan_id", s.PlanID, "member_id", s.MemberID, "type", f.Type)
		return false
	}
}
