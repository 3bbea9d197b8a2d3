package app

import (
	"github.com/rs/zerolog/log"

	"github.com/metameet/server/internal/core"
)

// Pairing bookkeeping. The peer-connection relation is undirected: both
// sides' activePeers are updated together, under pairMu, so no other
// goroutine can observe a half-established or half-dropped pairing.

// SyncPairings reconciles one session's activePeers against the set of
// sessions currently within proximity. It returns the peers whose
// pairing was just established and the ones whose pairing was just
// dropped; the caller notifies both ends of each. A peer that closed
// while still paired is detached silently with no entry in either list.
func (r *Registry) SyncPairings(sess *core.Session, nearby []*core.Session) (started, ended []*core.Session) {
	r.pairMu.Lock()
	defer r.pairMu.Unlock()

	near := make(map[core.SessionID]*core.Session, len(nearby))
	for _, n := range nearby {
		near[n.ID()] = n
	}

	for id, peer := range near {
		if peer.State() != core.StateActive {
			continue
		}
		if sess.HasPeer(id) {
			continue
		}
		sess.AddPeer(peer)
		peer.AddPeer(sess)
		started = append(started, peer)
	}

	for _, peer := range sess.PeerSnapshot() {
		if _, stillNear := near[peer.ID()]; stillNear {
			continue
		}
		sess.RemovePeer(peer.ID())
		peer.RemovePeer(sess.ID())
		if peer.State() == core.StateClosed {
			// Gone already; nobody left to notify.
			continue
		}
		ended = append(ended, peer)
	}

	if len(started) > 0 || len(ended) > 0 {
		log.Debug().Str("module", "app.pairings").Str("sid", string(sess.ID())).
			Int("started", len(started)).Int("ended", len(ended)).Msg("pairings reconciled")
	}
	return started, ended
}

// DetachPeers clears every pairing involving a session and returns the
// former peers so teardown can send end-call to the surviving sides.
func (r *Registry) DetachPeers(sess *core.Session) []*core.Session {
	r.pairMu.Lock()
	defer r.pairMu.Unlock()

	peers := sess.PeerSnapshot()
	for _, peer := range peers {
		sess.RemovePeer(peer.ID())
		peer.RemovePeer(sess.ID())
	}
	return peers
}
