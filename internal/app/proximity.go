package app

import (
	"context"
	"time"

	"github.com/metameet/server/internal/core"
	"github.com/metameet/server/internal/protocol"
)

// runProximity is the per-session scheduler: every tick it recomputes
// which occupants are within threshold of this session and drives the
// call lifecycle from the transitions. The loop exits when the session's
// context is cancelled during teardown.
func (o *Orchestrator) runProximity(ctx context.Context, sess *core.Session) {
	ticker := time.NewTicker(o.Proximity.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.proximitySweep(sess)
		}
	}
}

// proximitySweep performs one evaluation. Position reads here race
// benignly with concurrent moves: the view is eventually consistent,
// bounded by the tick interval.
func (o *Orchestrator) proximitySweep(sess *core.Session) {
	if sess.State() != core.StateActive {
		return
	}
	pairs := o.Registry.ProximityPairs(sess.SpaceID(), o.Proximity.Threshold)
	started, ended := o.Registry.SyncPairings(sess, pairs[sess.ID()])

	// Both ends of a pairing always hear about it together.
	for _, peer := range started {
		o.send(sess, protocol.TypeInitiateCall, protocol.CallPayload{
			TargetID: string(peer.ID()), TargetUserID: peer.UserID(),
		})
		o.send(peer, protocol.TypeInitiateCall, protocol.CallPayload{
			TargetID: string(sess.ID()), TargetUserID: sess.UserID(),
		})
	}
	for _, peer := range ended {
		o.send(sess, protocol.TypeEndCall, protocol.CallPayload{
			TargetID: string(peer.ID()), TargetUserID: peer.UserID(),
		})
		o.send(peer, protocol.TypeEndCall, protocol.CallPayload{
			TargetID: string(sess.ID()), TargetUserID: sess.UserID(),
		})
	}
}
