package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/metameet/server/internal/core"
	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/protocol"
)

// fakeConn records everything sent to it, in the style of the in-memory
// session fakes used across the test suite.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	dead   bool
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead {
		return errors.New("connection closed")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeConn) history() []protocol.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]protocol.Envelope, 0, len(f.frames))
	for _, fr := range f.frames {
		env, err := protocol.Decode(fr)
		if err != nil {
			continue
		}
		out = append(out, env)
	}
	return out
}

func (f *fakeConn) countType(typ string) int {
	n := 0
	for _, env := range f.history() {
		if env.Type == typ {
			n++
		}
	}
	return n
}

func (f *fakeConn) lastOfType(typ string) (protocol.Envelope, bool) {
	var found protocol.Envelope
	ok := false
	for _, env := range f.history() {
		if env.Type == typ {
			found, ok = env, true
		}
	}
	return found, ok
}

func (f *fakeConn) clear() {
	f.mu.Lock()
	f.frames = nil
	f.mu.Unlock()
}

func payloadOf[T any](t *testing.T, env protocol.Envelope) T {
	t.Helper()
	var p T
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return p
}

func newActiveSession(user domain.UserID, space domain.SpaceID, x, y int) (*core.Session, *fakeConn) {
	fc := &fakeConn{}
	s := core.NewSession(fc)
	s.BeginJoin()
	s.Activate(user, space, x, y, 100, 200)
	return s, fc
}

func TestRegistryOccupancy(t *testing.T) {
	reg := NewRegistry()
	space := domain.SpaceID("sp1")
	a, _ := newActiveSession("userA", space, 1, 1)
	b, _ := newActiveSession("userB", space, 5, 5)

	Convey("First occupant creates the room", t, func() {
		reg.AddOccupant(space, a)
		So(reg.Occupants(space), ShouldHaveLength, 1)
	})

	Convey("Adding the same session again is a no-op", t, func() {
		reg.AddOccupant(space, a)
		So(reg.Occupants(space), ShouldHaveLength, 1)
	})

	Convey("Lookups find occupants both ways", t, func() {
		reg.AddOccupant(space, b)

		found, ok := reg.FindBySessionID(space, a.ID())
		So(ok, ShouldBeTrue)
		So(found, ShouldEqual, a)

		found, ok = reg.FindByUserID(space, "userB")
		So(ok, ShouldBeTrue)
		So(found, ShouldEqual, b)

		_, ok = reg.FindByUserID(space, "nobody")
		So(ok, ShouldBeFalse)
		_, ok = reg.FindBySessionID("no-such-space", a.ID())
		So(ok, ShouldBeFalse)
	})

	Convey("Removing the last occupant deletes the room entry", t, func() {
		So(reg.RemoveOccupant(space, a.ID()), ShouldBeTrue)
		So(reg.Occupants(space), ShouldHaveLength, 1)
		So(reg.RemoveOccupant(space, b.ID()), ShouldBeTrue)
		So(reg.Occupants(space), ShouldBeEmpty)

		So(reg.RemoveOccupant(space, b.ID()), ShouldBeFalse)
	})
}

func TestRegistryAdmitEvictsSameIdentity(t *testing.T) {
	reg := NewRegistry()
	space := domain.SpaceID("sp1")

	Convey("A second session with the same userId replaces the first", t, func() {
		stale, _ := newActiveSession("userA", space, 1, 1)
		So(reg.AdmitOccupant(space, stale), ShouldBeNil)

		fresh, _ := newActiveSession("userA", space, 2, 2)
		evicted := reg.AdmitOccupant(space, fresh)
		So(evicted, ShouldEqual, stale)

		So(reg.Occupants(space), ShouldHaveLength, 1)
		found, ok := reg.FindByUserID(space, "userA")
		So(ok, ShouldBeTrue)
		So(found, ShouldEqual, fresh)
	})
}

func TestRegistryBroadcast(t *testing.T) {
	reg := NewRegistry()
	space := domain.SpaceID("sp1")
	a, ca := newActiveSession("userA", space, 1, 1)
	b, cb := newActiveSession("userB", space, 2, 2)
	c, cc := newActiveSession("userC", space, 3, 3)
	reg.AddOccupant(space, a)
	reg.AddOccupant(space, b)
	reg.AddOccupant(space, c)

	Convey("Broadcast reaches everyone except the excluded session", t, func() {
		frame, _ := protocol.Encode(protocol.TypeMovement, protocol.MovementPayload{UserID: "userA", X: 1, Y: 2})
		reg.Broadcast(space, a.ID(), frame)

		So(ca.history(), ShouldHaveLength, 0)
		So(cb.history(), ShouldHaveLength, 1)
		So(cc.history(), ShouldHaveLength, 1)
	})

	Convey("A dead outbound channel is skipped, not fatal", t, func() {
		cb.dead = true
		frame, _ := protocol.Encode(protocol.TypeUserLeft, protocol.UserLeftPayload{UserID: "userA"})
		reg.Broadcast(space, a.ID(), frame)

		So(cc.countType(protocol.TypeUserLeft), ShouldEqual, 1)
	})
}

func TestProximityPairs(t *testing.T) {
	reg := NewRegistry()
	space := domain.SpaceID("sp1")
	a, _ := newActiveSession("userA", space, 10, 10)
	b, _ := newActiveSession("userB", space, 11, 11)
	far, _ := newActiveSession("userC", space, 50, 50)
	reg.AddOccupant(space, a)
	reg.AddOccupant(space, b)
	reg.AddOccupant(space, far)

	Convey("Pairs within threshold are symmetric", t, func() {
		pairs := reg.ProximityPairs(space, 2)

		So(pairs[a.ID()], ShouldHaveLength, 1)
		So(pairs[a.ID()][0], ShouldEqual, b)
		So(pairs[b.ID()], ShouldHaveLength, 1)
		So(pairs[b.ID()][0], ShouldEqual, a)
		So(pairs[far.ID()], ShouldHaveLength, 0)
	})

	Convey("Exactly-at-threshold counts as near", t, func() {
		b.SetPosition(10, 12)
		pairs := reg.ProximityPairs(space, 2)
		So(pairs[a.ID()], ShouldHaveLength, 1)
	})

	Convey("Beyond threshold does not", t, func() {
		b.SetPosition(10, 13)
		pairs := reg.ProximityPairs(space, 2)
		So(pairs[a.ID()], ShouldHaveLength, 0)
	})
}
