package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/metameet/server/internal/core"
	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/protocol"
)

// handleFrame dispatches one inbound frame. Malformed payloads, unknown
// types and wrong-state frames are all ignored without closing the
// socket; only auth and space-lookup failures on join are fatal.
func (ctl *Controller) handleFrame(ctx context.Context, sess *core.Session, c *wsConn, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sess.ID())).Msg("bad frame, ignored")
		return
	}

	switch env.Type {
	case protocol.TypeJoin:
		var p protocol.JoinPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Debug().Err(err).Str("module", "signal").Msg("bad join payload, ignored")
			return
		}
		if err := ctl.Orch.Join(ctx, sess, domain.SpaceID(p.SpaceID), p.Token); err != nil {
			// Fatal: close the socket, the read pump finishes teardown.
			c.Close()
		}
	case protocol.TypeMove:
		var p protocol.MovePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Debug().Err(err).Str("module", "signal").Msg("bad move payload, ignored")
			return
		}
		ctl.Orch.Move(sess, p.X, p.Y)
	case protocol.TypeSignal:
		var p protocol.SignalPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Debug().Err(err).Str("module", "signal").Msg("bad signal payload, ignored")
			return
		}
		ctl.Orch.RelaySignal(sess, core.SessionID(p.TargetID), p.Signal)
	default:
		log.Debug().Str("module", "signal").Str("type", env.Type).Msg("unknown frame type, ignored")
	}
}
