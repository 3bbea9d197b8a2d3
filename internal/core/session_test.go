package core

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type nopConn struct{ closed bool }

func (c *nopConn) TrySend(Frame) error { return nil }
func (c *nopConn) Close()              { c.closed = true }

func activeSession() *Session {
	s := NewSession(&nopConn{})
	s.BeginJoin()
	s.Activate("userA", "sp1", 1, 1, 10, 10)
	return s
}

func TestSchedulerBinding(t *testing.T) {
	Convey("A live session holds the cancel for teardown", t, func() {
		s := activeSession()

		ctx, cancel := context.WithCancel(context.Background())
		So(s.BindScheduler(cancel), ShouldBeTrue)
		So(ctx.Err(), ShouldBeNil)

		s.StopScheduler()
		So(ctx.Err(), ShouldEqual, context.Canceled)
	})

	Convey("Binding after close cancels on the spot", t, func() {
		s := activeSession()
		So(s.MarkClosed(), ShouldBeTrue)

		ctx, cancel := context.WithCancel(context.Background())
		So(s.BindScheduler(cancel), ShouldBeFalse)
		So(ctx.Err(), ShouldEqual, context.Canceled)
	})

	Convey("Stopping a session that never bound is safe", t, func() {
		s := activeSession()
		s.MarkClosed()
		s.StopScheduler()
	})
}
