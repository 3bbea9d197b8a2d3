package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/metameet/server/internal/core"
	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/protocol"
)

var (
	// ErrAuth means the join token did not verify; the connection dies.
	ErrAuth = errors.New("token verification failed")
	// ErrUnknownSpace means the join named a space the directory does
	// not know; the connection dies.
	ErrUnknownSpace = errors.New("unknown space")
)

// IdentityVerifier validates an opaque signed token and yields the
// durable user identity behind it.
type IdentityVerifier interface {
	Verify(token string) (domain.UserID, error)
}

// SpaceDirectory resolves a space identifier to its bounds and static
// scene elements.
type SpaceDirectory interface {
	GetSpace(ctx context.Context, id domain.SpaceID) (*domain.Space, error)
}

type ProximityConfig struct {
	Threshold float64
	Interval  time.Duration
}

// Orchestrator is the use-case layer between the socket adapter and the
// registry: join, move, signal relay and teardown all run through it.
type Orchestrator struct {
	Registry  *Registry
	Verifier  IdentityVerifier
	Directory SpaceDirectory
	Proximity ProximityConfig
}

// Join handles a join frame. A nil error means the frame was consumed
// (successfully, or ignored as wrong-state); a non-nil error is fatal
// and the caller must close the connection.
func (o *Orchestrator) Join(ctx context.Context, sess *core.Session, spaceID domain.SpaceID, token string) error {
	if !sess.BeginJoin() {
		return nil
	}

	userID, err := o.Verifier.Verify(token)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.orch").Str("sid", string(sess.ID())).Msg("join rejected: bad token")
		return ErrAuth
	}

	space, err := o.Directory.GetSpace(ctx, spaceID)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.orch").
			Str("sid", string(sess.ID())).Str("space", string(spaceID)).Msg("join rejected: space lookup")
		return ErrUnknownSpace
	}

	spawnX := rand.IntN(space.Width)
	spawnY := rand.IntN(space.Height)
	if !sess.Activate(userID, space.ID, spawnX, spawnY, space.Width, space.Height) {
		// Closed while the token and space lookups were in flight.
		return nil
	}

	// Membership may have changed during the lookups above, so the
	// same-identity check and the insert happen atomically here.
	if evicted := o.Registry.AdmitOccupant(space.ID, sess); evicted != nil {
		o.retire(evicted)
	}

	others := make([]protocol.UserInfo, 0)
	for _, occ := range o.Registry.Occupants(space.ID) {
		if occ.ID() == sess.ID() {
			continue
		}
		x, y := occ.Position()
		others = append(others, protocol.UserInfo{
			ID: string(occ.ID()), UserID: occ.UserID(), X: x, Y: y,
		})
	}
	o.send(sess, protocol.TypeSpaceJoined, protocol.SpaceJoinedPayload{
		Spawn:    protocol.Position{X: spawnX, Y: spawnY},
		Users:    others,
		Elements: space.Items,
	})

	o.broadcastFrom(sess, protocol.TypeUserJoined, protocol.UserJoinedPayload{
		ID: string(sess.ID()), UserID: userID, X: spawnX, Y: spawnY,
	})

	// An eviction or socket error may have torn the session down while
	// the snapshot went out; a closed session gets no ticker.
	schedCtx, cancel := context.WithCancel(context.Background())
	if sess.BindScheduler(cancel) {
		go o.runProximity(schedCtx, sess)
	}

	log.Info().Str("module", "app.orch").Str("sid", string(sess.ID())).
		Str("user", string(userID)).Str("space", string(space.ID)).
		Int("x", spawnX).Int("y", spawnY).Msg("joined")
	return nil
}

// Move validates a proposed step. An accepted move is broadcast to the
// rest of the room; a rejected one is answered only to the requester
// with the authoritative current position, as a correction.
func (o *Orchestrator) Move(sess *core.Session, x, y int) {
	if sess.State() != core.StateActive {
		return
	}
	curX, curY := sess.Position()
	width, height := sess.Bounds()
	if !core.ValidMove(curX, curY, x, y, width, height) {
		o.send(sess, protocol.TypeMovementRejected, protocol.MovementRejectedPayload{X: curX, Y: curY})
		return
	}
	sess.SetPosition(x, y)
	o.broadcastFrom(sess, protocol.TypeMovement, protocol.MovementPayload{
		UserID: sess.UserID(), X: x, Y: y,
	})
}

// RelaySignal forwards an opaque call-negotiation payload to another
// session in the same space. The payload passes through unmodified; a
// missing target drops the frame silently.
func (o *Orchestrator) RelaySignal(sess *core.Session, targetID core.SessionID, signal []byte) {
	if sess.State() != core.StateActive {
		return
	}
	target, ok := o.Registry.FindBySessionID(sess.SpaceID(), targetID)
	if !ok {
		log.Debug().Str("module", "app.orch").Str("sid", string(sess.ID())).
			Str("target", string(targetID)).Msg("signal target gone, dropped")
		return
	}
	o.send(target, protocol.TypeSignal, protocol.SignalForwardPayload{
		TargetID:     string(sess.ID()),
		TargetUserID: sess.UserID(),
		Signal:       signal,
	})
}

// Disconnect runs full teardown: end every active call, announce the
// departure, unregister, stop the proximity ticker, close the socket.
// Idempotent; a socket error and an eviction may both land here.
func (o *Orchestrator) Disconnect(sess *core.Session) {
	wasActive := sess.State() == core.StateActive
	if !sess.MarkClosed() {
		return
	}
	sess.StopScheduler()

	o.endAllCalls(sess)

	if wasActive {
		spaceID := sess.SpaceID()
		if o.Registry.RemoveOccupant(spaceID, sess.ID()) {
			frame, err := protocol.Encode(protocol.TypeUserLeft, protocol.UserLeftPayload{UserID: sess.UserID()})
			if err == nil {
				o.Registry.Broadcast(spaceID, sess.ID(), frame)
			}
		}
	}

	sess.Conn().Close()
	log.Info().Str("module", "app.orch").Str("sid", string(sess.ID())).
		Str("user", string(sess.UserID())).Msg("session closed")
}

// retire tears down a session superseded by a reconnect. It is already
// out of the registry, and deliberately does not broadcast user-left:
// the replacement's user-joined carries the same userId, so a departure
// event would only make clients flicker the still-present user. Its
// peers still get end-call for any calls it was in.
func (o *Orchestrator) retire(stale *core.Session) {
	if !stale.MarkClosed() {
		return
	}
	stale.StopScheduler()
	o.endAllCalls(stale)
	stale.Conn().Close()
	log.Info().Str("module", "app.orch").Str("sid", string(stale.ID())).Msg("stale session retired")
}

func (o *Orchestrator) endAllCalls(sess *core.Session) {
	for _, peer := range o.Registry.DetachPeers(sess) {
		o.send(peer, protocol.TypeEndCall, protocol.CallPayload{
			TargetID: string(sess.ID()), TargetUserID: sess.UserID(),
		})
		o.send(sess, protocol.TypeEndCall, protocol.CallPayload{
			TargetID: string(peer.ID()), TargetUserID: peer.UserID(),
		})
	}
}

func (o *Orchestrator) broadcastFrom(sess *core.Session, typ string, payload any) {
	frame, err := protocol.Encode(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("type", typ).Msg("encode frame")
		return
	}
	o.Registry.Broadcast(sess.SpaceID(), sess.ID(), frame)
}

func (o *Orchestrator) send(sess *core.Session, typ string, payload any) {
	frame, err := protocol.Encode(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("type", typ).Msg("encode frame")
		return
	}
	_ = sess.Conn().TrySend(frame)
}
