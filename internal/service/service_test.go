package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/service"
	"github.com/joestump/room-reviews/internal/store"
	"github.com/joestump/room-reviews/internal/testutil"
)

var (
	owner    = policy.Caller{ID: "owner-1", Role: policy.RoleUser}
	stranger = policy.Caller{ID: "user-2", Role: policy.RoleUser}
	admin    = policy.Caller{ID: "admin-1", Role: policy.RoleAdmin}
	nobody   = policy.Caller{}
)

type fixture struct {
	rooms   *service.RoomService
	reviews *service.ReviewService
	roomDB  *store.SQLRoomStore
	revDB   *store.SQLReviewStore
}

func newFixture(t *testing.T, p policy.Policy) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	rooms := store.NewSQLRoomStore(db)
	reviews := store.NewSQLReviewStore(db)
	return &fixture{
		rooms:   service.NewRoomService(rooms, reviews, p),
		reviews: service.NewReviewService(rooms, reviews, p),
		roomDB:  rooms,
		revDB:   reviews,
	}
}

func (f *fixture) room(t *testing.T, caller policy.Caller) *store.Room {
	t.Helper()
	r, err := f.rooms.Create(context.Background(), caller, store.Attributes{"title": "Loft", "price": 120})
	require.NoError(t, err)
	return r
}

func TestRoomService_Create_OwnerFromCaller(t *testing.T) {
	f := newFixture(t, policy.Policy{})

	r, err := f.rooms.Create(context.Background(), owner, store.Attributes{
		"title":   "Loft",
		"ownerId": "someone-else",
		"_id":     "forged",
		"reviews": []any{"x"},
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, r.OwnerID)
	assert.NotEqual(t, "forged", r.ID)
	assert.Equal(t, store.Attributes{"title": "Loft"}, r.Attributes)
	assert.Empty(t, r.ReviewIDs)
}

func TestRoomService_Create_Anonymous(t *testing.T) {
	f := newFixture(t, policy.Policy{})
	_, err := f.rooms.Create(context.Background(), nobody, store.Attributes{"title": "x"})
	require.ErrorIs(t, err, policy.ErrUnauthenticated)
}

func TestRoomService_Create_InvalidKey(t *testing.T) {
	f := newFixture(t, policy.Policy{})
	_, err := f.rooms.Create(context.Background(), owner, store.Attributes{"$where": "1"})
	require.ErrorIs(t, err, store.ErrInvalidPayload)
}

func TestRoomService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner merges attributes", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		r := f.room(t, owner)

		got, err := f.rooms.Update(ctx, owner, r.ID, store.Attributes{"price": 99, "ownerId": stranger.ID})
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got.OwnerID)
		assert.Equal(t, "Loft", got.Attributes["title"])
		assert.Equal(t, int64(99), got.Attributes["price"])
	})

	t.Run("stranger is denied and nothing changes", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		r := f.room(t, owner)

		_, err := f.rooms.Update(ctx, stranger, r.ID, store.Attributes{"title": "Mine"})
		require.ErrorIs(t, err, policy.ErrForbidden)
		assert.Equal(t, policy.GuardOwnerOnly, policy.Guard(err))

		stored, err := f.roomDB.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "Loft", stored.Attributes["title"])
	})

	t.Run("admin denied without override", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		r := f.room(t, owner)

		_, err := f.rooms.Update(ctx, admin, r.ID, store.Attributes{"title": "Admin"})
		require.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("admin allowed with override", func(t *testing.T) {
		f := newFixture(t, policy.Policy{AdminOverride: true})
		r := f.room(t, owner)

		got, err := f.rooms.Update(ctx, admin, r.ID, store.Attributes{"title": "Admin"})
		require.NoError(t, err)
		assert.Equal(t, "Admin", got.Attributes["title"])
		assert.Equal(t, owner.ID, got.OwnerID)
	})

	t.Run("missing room is not found before any guard", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		_, err := f.rooms.Update(ctx, stranger, "missing", store.Attributes{"title": "x"})
		require.ErrorIs(t, err, store.ErrNotFound)
		assert.NotErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		r := f.room(t, owner)
		_, err := f.rooms.Update(ctx, nobody, r.ID, store.Attributes{"title": "x"})
		require.ErrorIs(t, err, policy.ErrUnauthenticated)
	})
}

func TestRoomService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("stranger denied", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		r := f.room(t, owner)

		err := f.rooms.Delete(ctx, stranger, r.ID)
		require.ErrorIs(t, err, policy.ErrForbidden)

		_, err = f.roomDB.GetByID(ctx, r.ID)
		require.NoError(t, err)
	})

	t.Run("owner deletes room and its reviews", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		r := f.room(t, owner)
		rev, err := f.reviews.Create(ctx, stranger, r.ID, store.Attributes{"rating": 5})
		require.NoError(t, err)

		require.NoError(t, f.rooms.Delete(ctx, owner, r.ID))

		_, err = f.rooms.Get(ctx, r.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = f.reviews.Get(ctx, rev.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("missing room", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		err := f.rooms.Delete(ctx, owner, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRoomService_Get_ExpandsReviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.Policy{})
	r := f.room(t, owner)

	first, err := f.reviews.Create(ctx, stranger, r.ID, store.Attributes{"rating": 4})
	require.NoError(t, err)
	second, err := f.reviews.Create(ctx, admin, r.ID, store.Attributes{"rating": 2})
	require.NoError(t, err)

	detail, err := f.rooms.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, first.ID, detail.Reviews[0].ID)
	assert.Equal(t, second.ID, detail.Reviews[1].ID)
	assert.Equal(t, []string{first.ID, second.ID}, detail.ReviewIDs)
}

func TestRoomService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.Policy{})
	a := f.room(t, owner)
	b := f.room(t, stranger)

	rooms, err := f.rooms.List(ctx, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, a.ID, rooms[0].ID)
	assert.Equal(t, b.ID, rooms[1].ID)
}

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cannot review own room", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		r := f.room(t, owner)

		_, err := f.reviews.Create(ctx, owner, r.ID, store.Attributes{"rating": 5})
		require.ErrorIs(t, err, policy.ErrForbidden)
		assert.Equal(t, policy.GuardNotOwner, policy.Guard(err))

		list, err := f.reviews.ListByRoom(ctx, r.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("admin owner cannot review own room even with override", func(t *testing.T) {
		f := newFixture(t, policy.Policy{AdminOverride: true})
		r := f.room(t, admin)

		_, err := f.reviews.Create(ctx, admin, r.ID, store.Attributes{"rating": 5})
		require.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("author and room come from the request", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		r := f.room(t, owner)

		rev, err := f.reviews.Create(ctx, stranger, r.ID, store.Attributes{
			"rating": 5,
			"userId": owner.ID,
			"roomId": "other",
		})
		require.NoError(t, err)
		assert.Equal(t, stranger.ID, rev.UserID)
		assert.Equal(t, r.ID, rev.RoomID)
		assert.Equal(t, store.Attributes{"rating": int64(5)}, rev.Attributes)

		detail, err := f.rooms.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{rev.ID}, detail.ReviewIDs)
	})

	t.Run("missing room", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		_, err := f.reviews.Create(ctx, stranger, "missing", store.Attributes{"rating": 1})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t, policy.Policy{})
		r := f.room(t, owner)
		_, err := f.reviews.Create(ctx, nobody, r.ID, store.Attributes{"rating": 1})
		require.ErrorIs(t, err, policy.ErrUnauthenticated)
	})
}

func TestReviewService_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, policy.Policy{})
	r := f.room(t, owner)
	rev, err := f.reviews.Create(ctx, stranger, r.ID, store.Attributes{"rating": 3, "text": "ok"})
	require.NoError(t, err)

	_, err = f.reviews.Update(ctx, owner, rev.ID, store.Attributes{"rating": 1})
	require.ErrorIs(t, err, policy.ErrForbidden, "room owner is not the review author")

	got, err := f.reviews.Update(ctx, stranger, rev.ID, store.Attributes{"rating": 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Attributes["rating"])
	assert.Equal(t, "ok", got.Attributes["text"])

	require.ErrorIs(t, f.reviews.Delete(ctx, owner, rev.ID), policy.ErrForbidden)
	require.NoError(t, f.reviews.Delete(ctx, stranger, rev.ID))

	_, err = f.reviews.Get(ctx, rev.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, f.reviews.Delete(ctx, stranger, rev.ID), store.ErrNotFound)
}

func TestReviewService_ListByRoom_MissingRoom(t *testing.T) {
	f := newFixture(t, policy.Policy{})
	_, err := f.reviews.ListByRoom(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}
