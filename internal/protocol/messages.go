// Package protocol defines the closed set of frames exchanged with
// clients over the signaling socket. Every frame is a JSON document with
// a type discriminator and a payload whose shape is fixed per type.
package protocol

import (
	"encoding/json"

	"github.com/metameet/server/internal/domain"
)

// Inbound frame types (client -> server).
const (
	TypeJoin   = "join"
	TypeMove   = "move"
	TypeSignal = "webrtc-signal"
)

// Outbound frame types (server -> client).
const (
	TypeSpaceJoined      = "space-joined"
	TypeUserJoined       = "user-joined"
	TypeUserLeft         = "user-left"
	TypeMovement         = "movement"
	TypeMovementRejected = "movement-rejected"
	TypeInitiateCall     = "initiate-call"
	TypeEndCall          = "end-call"
)

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a raw frame into its envelope. The payload stays raw so
// the dispatcher can pick the concrete shape per type.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}

type JoinPayload struct {
	SpaceID string `json:"spaceId"`
	Token   string `json:"token"`
}

type MovePayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SignalPayload carries call-negotiation data. Signal is opaque: the
// server forwards it untouched.
type SignalPayload struct {
	TargetID string          `json:"targetId"`
	Signal   json.RawMessage `json:"signal"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type UserInfo struct {
	ID     string        `json:"id"`
	UserID domain.UserID `json:"userId"`
	X      int           `json:"x"`
	Y      int           `json:"y"`
}

type SpaceJoinedPayload struct {
	Spawn    Position              `json:"spawn"`
	Users    []UserInfo            `json:"users"`
	Elements []domain.SpaceElement `json:"elements,omitempty"`
}

type UserJoinedPayload struct {
	ID     string        `json:"id"`
	UserID domain.UserID `json:"userId"`
	X      int           `json:"x"`
	Y      int           `json:"y"`
}

type UserLeftPayload struct {
	UserID domain.UserID `json:"userId"`
}

type MovementPayload struct {
	UserID domain.UserID `json:"userId"`
	X      int           `json:"x"`
	Y      int           `json:"y"`
}

type MovementRejectedPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CallPayload is shared by initiate-call and end-call: both name the
// other end of the pairing.
type CallPayload struct {
	TargetID     string        `json:"targetId"`
	TargetUserID domain.UserID `json:"targetUserId"`
}

// SignalForwardPayload is the relayed form of SignalPayload: the target
// fields are rewritten to identify the sender, the signal is unchanged.
type SignalForwardPayload struct {
	TargetID     string          `json:"targetId"`
	TargetUserID domain.UserID   `json:"targetUserId"`
	Signal       json.RawMessage `json:"signal"`
}

// Encode marshals a complete outbound frame.
func Encode(typ string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: typ, Payload: raw})
}
