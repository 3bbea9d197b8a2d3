package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/metameet/server/internal/core"
	"github.com/metameet/server/internal/domain"
)

// room holds the occupants of one space, indexed both ways. byUser backs
// the single-occupancy-per-identity rule.
type room struct {
	bySID  map[core.SessionID]*core.Session
	byUser map[domain.UserID]core.SessionID
}

// Registry is the authoritative in-memory map of who is where. One
// instance per process, constructed explicitly and injected into every
// connection handler. mu guards room membership; pairMu guards the
// activePeers relation spanning paired sessions, so establishing or
// dropping a pairing updates both sides under a single lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.SpaceID]*room

	pairMu sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.SpaceID]*room)}
}

// AddOccupant registers a session in a space. Idempotent: adding a
// session that is already present is a no-op.
func (r *Registry) AddOccupant(spaceID domain.SpaceID, sess *core.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(spaceID, sess)
}

// AdmitOccupant is AddOccupant plus the same-identity eviction check,
// done under one lock acquisition: if another session in the space
// carries the same userId, it is removed and returned so the caller can
// tear it down. Join handlers must use this rather than AddOccupant
// because room membership may have changed while the token and space
// lookups were in flight.
func (r *Registry) AdmitOccupant(spaceID domain.SpaceID, sess *core.Session) *core.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted *core.Session
	if rm, ok := r.rooms[spaceID]; ok {
		if sid, ok := rm.byUser[sess.UserID()]; ok && sid != sess.ID() {
			evicted = rm.bySID[sid]
			r.removeLocked(spaceID, sid)
			log.Info().Str("module", "app.registry").
				Str("space", string(spaceID)).Str("user", string(sess.UserID())).
				Str("stale_sid", string(sid)).Msg("evicted stale session")
		}
	}
	r.addLocked(spaceID, sess)
	return evicted
}

func (r *Registry) addLocked(spaceID domain.SpaceID, sess *core.Session) {
	rm, ok := r.rooms[spaceID]
	if !ok {
		rm = &room{
			bySID:  make(map[core.SessionID]*core.Session),
			byUser: make(map[domain.UserID]core.SessionID),
		}
		r.rooms[spaceID] = rm
	}
	if _, ok := rm.bySID[sess.ID()]; ok {
		return
	}
	rm.bySID[sess.ID()] = sess
	rm.byUser[sess.UserID()] = sess.ID()
	log.Info().Str("module", "app.registry").
		Str("space", string(spaceID)).Str("sid", string(sess.ID())).
		Int("occupants", len(rm.bySID)).Msg("occupant added")
}

// RemoveOccupant removes a session by id. The room entry is deleted
// outright when the last occupant leaves; empty rooms never persist.
// Reports whether the session was actually present.
func (r *Registry) RemoveOccupant(spaceID domain.SpaceID, sid core.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(spaceID, sid)
}

func (r *Registry) removeLocked(spaceID domain.SpaceID, sid core.SessionID) bool {
	rm, ok := r.rooms[spaceID]
	if !ok {
		return false
	}
	sess, ok := rm.bySID[sid]
	if !ok {
		return false
	}
	delete(rm.bySID, sid)
	if rm.byUser[sess.UserID()] == sid {
		delete(rm.byUser, sess.UserID())
	}
	if len(rm.bySID) == 0 {
		delete(r.rooms, spaceID)
	}
	log.Info().Str("module", "app.registry").
		Str("space", string(spaceID)).Str("sid", string(sid)).
		Int("occupants", len(rm.bySID)).Msg("occupant removed")
	return true
}

func (r *Registry) FindBySessionID(spaceID domain.SpaceID, sid core.SessionID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[spaceID]
	if !ok {
		return nil, false
	}
	sess, ok := rm.bySID[sid]
	return sess, ok
}

func (r *Registry) FindByUserID(spaceID domain.SpaceID, userID domain.UserID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[spaceID]
	if !ok {
		return nil, false
	}
	sid, ok := rm.byUser[userID]
	if !ok {
		return nil, false
	}
	return rm.bySID[sid], true
}

// Occupants returns a copy of the current membership; the caller's view
// stays stable while the room keeps changing.
func (r *Registry) Occupants(spaceID domain.SpaceID) []*core.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[spaceID]
	if !ok {
		return nil
	}
	out := make([]*core.Session, 0, len(rm.bySID))
	for _, s := range rm.bySID {
		out = append(out, s)
	}
	return out
}

// Broadcast delivers a frame to every occupant of a space except the
// excluded session. Best-effort: a full or closed outbound channel is
// skipped, never retried.
func (r *Registry) Broadcast(spaceID domain.SpaceID, exclude core.SessionID, frame core.Frame) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[spaceID]
	if !ok {
		return
	}
	sent, dropped := 0, 0
	for sid, s := range rm.bySID {
		if sid == exclude {
			continue
		}
		if err := s.Conn().TrySend(frame); err != nil {
			dropped++
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.registry").Str("space", string(spaceID)).
		Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}

// ProximityPairs computes, for every occupant of a space, the set of
// other occupants within threshold Euclidean distance. Quadratic in room
// size; rooms are expected to be small.
func (r *Registry) ProximityPairs(spaceID domain.SpaceID, threshold float64) map[core.SessionID][]*core.Session {
	occupants := r.Occupants(spaceID)
	out := make(map[core.SessionID][]*core.Session)
	limit := threshold * threshold
	for i, a := range occupants {
		ax, ay := a.Position()
		for j, b := range occupants {
			if i == j {
				continue
			}
			bx, by := b.Position()
			dx := float64(ax - bx)
			dy := float64(ay - by)
			if dx*dx+dy*dy <= limit {
				out[a.ID()] = append(out[a.ID()], b)
			}
		}
	}
	return out
}
