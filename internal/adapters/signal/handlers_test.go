package signal

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/metameet/server/internal/app"
	"github.com/metameet/server/internal/core"
)

func newFrameFixture() (*Controller, *core.Session, *wsConn) {
	ctl := NewController(&app.Orchestrator{Registry: app.NewRegistry()}, 4096, 30*time.Second)
	conn := &wsConn{send: make(chan core.Frame, 32)}
	return ctl, core.NewSession(conn), conn
}

func TestHandleFrameBadInput(t *testing.T) {
	frames := [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"type":"teleport","payload":{}}`),
		[]byte(`{}`),
		[]byte(`{"type":"join","payload":{"spaceId":42}}`),
		[]byte(`{"type":"move"}`),
		[]byte(`{"type":"move","payload":{"x":"east","y":0}}`),
		[]byte(`{"type":"webrtc-signal","payload":{"targetId":1}}`),
		[]byte(`{"type":"webrtc-signal","payload":"trunc`),
	}

	Convey("Garbage, unknown types and bad payloads leave the connection alone", t, func() {
		ctl, sess, conn := newFrameFixture()
		for _, f := range frames {
			ctl.handleFrame(context.Background(), sess, conn, f)
		}
		So(conn.closed, ShouldBeFalse)
		So(sess.State(), ShouldEqual, core.StateUnauthenticated)
		So(conn.send, ShouldBeEmpty)
	})

	Convey("Out-of-state frames are dropped without touching the connection", t, func() {
		Convey("a move before joining does nothing", func() {
			ctl, sess, conn := newFrameFixture()
			ctl.handleFrame(context.Background(), sess, conn, []byte(`{"type":"move","payload":{"x":1,"y":0}}`))
			So(conn.closed, ShouldBeFalse)
			So(sess.State(), ShouldEqual, core.StateUnauthenticated)
		})

		Convey("a repeat join on an active session is ignored, not fatal", func() {
			ctl, sess, conn := newFrameFixture()
			sess.BeginJoin()
			sess.Activate("userA", "sp1", 1, 1, 10, 10)

			ctl.handleFrame(context.Background(), sess, conn,
				[]byte(`{"type":"join","payload":{"spaceId":"sp1","token":"t"}}`))
			So(conn.closed, ShouldBeFalse)
			So(sess.State(), ShouldEqual, core.StateActive)
			So(conn.send, ShouldBeEmpty)
		})
	})
}
