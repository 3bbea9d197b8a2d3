package memory

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/metameet/server/internal/domain"
	"github.com/metameet/server/internal/storage"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()

	Convey("Users are stored and found by id and username", t, func() {
		store := NewUserStore()
		u, err := domain.NewUser("alice", "hash", domain.RoleUser)
		So(err, ShouldBeNil)
		So(store.CreateUser(ctx, u), ShouldBeNil)

		got, err := store.GetUser(ctx, u.ID)
		So(err, ShouldBeNil)
		So(got.Username, ShouldEqual, "alice")
		So(got.PasswordHash, ShouldEqual, "hash")

		got, err = store.GetUserByUsername(ctx, "alice")
		So(err, ShouldBeNil)
		So(got.ID, ShouldEqual, u.ID)

		Convey("a second user cannot take the same username", func() {
			dup, _ := domain.NewUser("alice", "otherhash", domain.RoleUser)
			err := store.CreateUser(ctx, dup)
			So(errors.Is(err, storage.ErrUsernameTaken), ShouldBeTrue)
		})

		Convey("unknown lookups report not found", func() {
			_, err := store.GetUser(ctx, "missing")
			So(errors.Is(err, storage.ErrUserNotFound), ShouldBeTrue)
			_, err = store.GetUserByUsername(ctx, "bob")
			So(errors.Is(err, storage.ErrUserNotFound), ShouldBeTrue)
		})
	})
}

func TestSpaceStore(t *testing.T) {
	ctx := context.Background()
	store := NewSpaceStore()

	Convey("Spaces are stored, listed by owner, and deleted", t, func() {
		sp, err := domain.NewSpace("hq", "owner-1", 100, 200)
		So(err, ShouldBeNil)
		So(store.CreateSpace(ctx, sp), ShouldBeNil)

		got, err := store.GetSpace(ctx, sp.ID)
		So(err, ShouldBeNil)
		So(got.Width, ShouldEqual, 100)
		So(got.Height, ShouldEqual, 200)

		other, _ := domain.NewSpace("lounge", "owner-2", 10, 10)
		So(store.CreateSpace(ctx, other), ShouldBeNil)

		mine, err := store.ListSpacesByOwner(ctx, "owner-1")
		So(err, ShouldBeNil)
		So(mine, ShouldHaveLength, 1)
		So(mine[0].ID, ShouldEqual, sp.ID)

		So(store.DeleteSpace(ctx, sp.ID), ShouldBeNil)
		_, err = store.GetSpace(ctx, sp.ID)
		So(errors.Is(err, storage.ErrSpaceNotFound), ShouldBeTrue)

		mine, _ = store.ListSpacesByOwner(ctx, "owner-1")
		So(mine, ShouldHaveLength, 0)

		So(errors.Is(store.DeleteSpace(ctx, sp.ID), storage.ErrSpaceNotFound), ShouldBeTrue)
	})

	Convey("Returned spaces are copies", t, func() {
		sp, _ := domain.NewSpace("mutable", "owner-3", 5, 5)
		So(store.CreateSpace(ctx, sp), ShouldBeNil)

		got, _ := store.GetSpace(ctx, sp.ID)
		got.Width = 999

		again, _ := store.GetSpace(ctx, sp.ID)
		So(again.Width, ShouldEqual, 5)
	})
}
