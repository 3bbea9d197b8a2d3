package app

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/metameet/server/internal/core"
	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/protocol"
)

func TestSyncPairings(t *testing.T) {
	reg := NewRegistry()
	space := domain.SpaceID("sp1")
	a, _ := newActiveSession("userA", space, 10, 10)
	b, _ := newActiveSession("userB", space, 11, 10)

	Convey("Entering proximity establishes the pairing once", t, func() {
		started, ended := reg.SyncPairings(a, []*core.Session{b})
		So(started, ShouldHaveLength, 1)
		So(started[0], ShouldEqual, b)
		So(ended, ShouldHaveLength, 0)

		Convey("both sides see it, so neither sweep re-establishes", func() {
			started, ended = reg.SyncPairings(a, []*core.Session{b})
			So(started, ShouldHaveLength, 0)
			So(ended, ShouldHaveLength, 0)

			started, ended = reg.SyncPairings(b, []*core.Session{a})
			So(started, ShouldHaveLength, 0)
			So(ended, ShouldHaveLength, 0)
		})
	})

	Convey("Leaving proximity drops the pairing from both sides", t, func() {
		started, ended := reg.SyncPairings(a, nil)
		So(started, ShouldHaveLength, 0)
		So(ended, ShouldHaveLength, 1)
		So(ended[0], ShouldEqual, b)

		_, ended = reg.SyncPairings(b, []*core.Session{a})
		// a is near again from b's sweep: a fresh pairing, not a leak.
		So(ended, ShouldHaveLength, 0)
		reg.SyncPairings(b, nil)
	})

	Convey("A closed peer is detached silently", t, func() {
		reg.SyncPairings(a, []*core.Session{b})
		b.MarkClosed()

		started, ended := reg.SyncPairings(a, nil)
		So(started, ShouldHaveLength, 0)
		So(ended, ShouldHaveLength, 0)
		So(reg.DetachPeers(a), ShouldHaveLength, 0)
	})

	Convey("Closed sessions are never paired with", t, func() {
		c, _ := newActiveSession("userC", space, 10, 11)
		c.MarkClosed()
		started, _ := reg.SyncPairings(a, []*core.Session{c})
		So(started, ShouldHaveLength, 0)
	})
}

func TestProximitySweepNotifications(t *testing.T) {
	o, space := newTestOrchestrator()
	a, ca := joinedSession(t, o, space, "tokA")
	b, cb := joinedSession(t, o, space, "tokB")
	a.SetPosition(10, 10)
	b.SetPosition(11, 10)
	ca.clear()
	cb.clear()

	Convey("One tick within threshold starts the call on both ends", t, func() {
		o.proximitySweep(a)

		So(ca.countType(protocol.TypeInitiateCall), ShouldEqual, 1)
		So(cb.countType(protocol.TypeInitiateCall), ShouldEqual, 1)

		env, _ := ca.lastOfType(protocol.TypeInitiateCall)
		p := payloadOf[protocol.CallPayload](t, env)
		So(p.TargetID, ShouldEqual, string(b.ID()))
		So(p.TargetUserID, ShouldEqual, b.UserID())

		env, _ = cb.lastOfType(protocol.TypeInitiateCall)
		p = payloadOf[protocol.CallPayload](t, env)
		So(p.TargetID, ShouldEqual, string(a.ID()))

		Convey("further ticks on either side stay quiet", func() {
			o.proximitySweep(a)
			o.proximitySweep(b)
			So(ca.countType(protocol.TypeInitiateCall), ShouldEqual, 1)
			So(cb.countType(protocol.TypeInitiateCall), ShouldEqual, 1)
		})

		Convey("crossing back out ends the call exactly once on both ends", func() {
			b.SetPosition(50, 50)
			o.proximitySweep(a)
			o.proximitySweep(b)

			So(ca.countType(protocol.TypeEndCall), ShouldEqual, 1)
			So(cb.countType(protocol.TypeEndCall), ShouldEqual, 1)
		})
	})
}

func newTestOrchestrator() (*Orchestrator, domain.SpaceID) {
	space := domain.SpaceID("sp1")
	o := &Orchestrator{
		Registry: NewRegistry(),
		Verifier: stubVerifier{"tokA": "userA", "tokB": "userB", "tokC": "userC"},
		Directory: stubDirectory{
			space: {ID: space, Name: "hq", Width: 100, Height: 200},
		},
		// The ticker only matters for the wiring; tests drive sweeps by hand.
		Proximity: ProximityConfig{Threshold: 2, Interval: time.Hour},
	}
	return o, space
}
