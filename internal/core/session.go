package core

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/metameet/server/internal/domain"
)

// Frame is one marshaled protocol message.
type Frame []byte

// SessionID is connection-scoped: a new one is generated per accepted
// socket, unique for the process lifetime.
type SessionID string

// SignalConn is the outbound half of a client connection. TrySend must
// not block; Close must be safe to call more than once.
type SignalConn interface {
	TrySend(Frame) error
	Close()
}

type State int

const (
	StateUnauthenticated State = iota
	StateJoining
	StateActive
	StateClosed
)

// Session is one connected client's server-side state. All fields except
// activePeers are guarded by mu; activePeers is jointly owned by paired
// sessions and is guarded by the registry's pairing lock instead, so
// both sides of a pairing mutate under one lock.
type Session struct {
	id   SessionID
	conn SignalConn

	mu      sync.RWMutex
	state   State
	userID  domain.UserID
	spaceID domain.SpaceID
	x, y    int
	// Space bounds, fixed at join time.
	width, height int
	// cancel stops the session's proximity ticker.
	cancel context.CancelFunc

	activePeers map[SessionID]*Session
}

func NewSession(conn SignalConn) *Session {
	return &Session{
		id:          SessionID(uuid.NewString()),
		conn:        conn,
		activePeers: make(map[SessionID]*Session),
	}
}

func (s *Session) ID() SessionID    { return s.id }
func (s *Session) Conn() SignalConn { return s.conn }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) UserID() domain.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) SpaceID() domain.SpaceID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spaceID
}

func (s *Session) Position() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.x, s.y
}

// BeginJoin moves the session into Joining. Returns false when the
// session is past the point where a join frame is meaningful.
func (s *Session) BeginJoin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUnauthenticated && s.state != StateJoining {
		return false
	}
	s.state = StateJoining
	return true
}

// Activate registers identity, space, bounds and spawn position in one
// step and moves the session into Active.
func (s *Session) Activate(userID domain.UserID, spaceID domain.SpaceID, x, y, width, height int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateJoining {
		return false
	}
	s.userID = userID
	s.spaceID = spaceID
	s.x, s.y = x, y
	s.width, s.height = width, height
	s.state = StateActive
	return true
}

func (s *Session) Bounds() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// BindScheduler records the cancel func of the session's proximity
// ticker so teardown can stop it from any path. When the session closed
// before the bind landed, the cancel is invoked on the spot and false
// comes back; the caller must not start the ticker then.
func (s *Session) BindScheduler(cancel context.CancelFunc) bool {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		cancel()
		return false
	}
	s.cancel = cancel
	s.mu.Unlock()
	return true
}

// StopScheduler cancels the proximity ticker, if one was ever started.
// Safe to call more than once.
func (s *Session) StopScheduler() {
	s.mu.RLock()
	cancel := s.cancel
	s.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) SetPosition(x, y int) {
	s.mu.Lock()
	s.x, s.y = x, y
	s.mu.Unlock()
}

// MarkClosed is the single entry point into the terminal state. Only the
// first call reports true; teardown paths key off that so cleanup runs
// exactly once even when a socket error and an eviction race.
func (s *Session) MarkClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return false
	}
	s.state = StateClosed
	return true
}

// Pairing accessors. Not self-synchronized: the registry's pairing lock
// must be held across every call, including reads.

func (s *Session) HasPeer(id SessionID) bool {
	_, ok := s.activePeers[id]
	return ok
}

func (s *Session) AddPeer(peer *Session) { s.activePeers[peer.id] = peer }

func (s *Session) RemovePeer(id SessionID) { delete(s.activePeers, id) }

func (s *Session) PeerSnapshot() []*Session {
	out := make([]*Session, 0, len(s.activePeers))
	for _, p := range s.activePeers {
		out = append(out, p)
	}
	return out
}
