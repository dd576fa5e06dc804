package mongo

import (
	"context"
	"errors"
	"staydesk/internal/storage"
	"staydesk/pkg/model"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockStore(mt *mtest.T) *Store {
	return New(mt.Client, mt.DB.Name(), Options{
		Retry: storage.RetryPolicy{MaxRetries: 1, InitialDelay: time.Millisecond, BackoffFactor: 1},
	})
}

func ns(mt *mtest.T, collection string) string {
	return mt.DB.Name() + "." + collection
}

func TestStore_MockedDriver(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	created := time.Date(2022, 6, 1, 8, 30, 0, 0, time.UTC)
	price, err := primitive.ParseDecimal128("100.00")
	require.NoError(t, err)

	mt.Run("get room decodes document", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, RoomsCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: int64(1)},
			{Key: "description", Value: "Room A"},
			{Key: "price_per_night", Value: price},
			{Key: "created_at", Value: created},
			{Key: "booking_seq", Value: int64(4)},
		}))

		room, err := store.GetRoom(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1), room.ID)
		assert.Equal(t, "Room A", room.Description)
		assert.Equal(t, "100.00", room.PricePerNight.StringFixed(2))
		assert.True(t, created.Equal(room.CreatedAt))
	})

	mt.Run("get room missing", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, RoomsCollection), mtest.FirstBatch))

		_, err := store.GetRoom(context.Background(), 99)

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	mt.Run("insert room allocates id from counter", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: roomCounter},
				{Key: "seq", Value: int64(7)},
			}}),
			mtest.CreateSuccessResponse(),
		)

		room, err := store.InsertRoom(context.Background(), "Suite", decimal.RequireFromString("250.5"))

		require.NoError(t, err)
		assert.Equal(t, int64(7), room.ID)
		assert.Equal(t, "250.50", room.PricePerNight.StringFixed(2))
	})

	mt.Run("delete booking missing", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := store.DeleteBooking(context.Background(), 5)

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	mt.Run("query bookings keeps storage order", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, BookingsCollection), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: int64(10)},
				{Key: "room_id", Value: int64(1)},
				{Key: "date_start", Value: time.Date(2022, 6, 20, 0, 0, 0, 0, time.UTC)},
				{Key: "date_end", Value: time.Date(2022, 6, 25, 0, 0, 0, 0, time.UTC)},
				{Key: "created_at", Value: created},
			},
			bson.D{
				{Key: "_id", Value: int64(11)},
				{Key: "room_id", Value: int64(1)},
				{Key: "date_start", Value: time.Date(2022, 6, 25, 0, 0, 0, 0, time.UTC)},
				{Key: "date_end", Value: time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC)},
				{Key: "created_at", Value: created},
			},
		))

		roomID := int64(1)
		bookings, err := store.QueryBookings(context.Background(), &roomID)

		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, "2022-06-20", bookings[0].DateStart.String())
		assert.Equal(t, "2022-06-30", bookings[1].DateEnd.String())
	})
}

func TestRoomDoc_PriceRoundTrip(t *testing.T) {
	room := model.Room{
		ID:            3,
		Description:   "Double",
		PricePerNight: decimal.RequireFromString("99.9"),
		CreatedAt:     time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	doc, err := newRoomDoc(room)
	require.NoError(t, err)
	assert.Equal(t, "99.90", doc.PricePerNight.String())

	back, err := doc.toModel()
	require.NoError(t, err)
	assert.True(t, room.PricePerNight.Equal(back.PricePerNight))
	assert.Equal(t, room.ID, back.ID)
}

func TestClassify(t *testing.T) {
	writeConflict := mongo.CommandError{Code: codeWriteConflict, Message: "WriteConflict"}
	labelled := mongo.CommandError{Code: 251, Labels: []string{labelTransientTransaction}}
	duplicate := mongo.CommandError{Code: 11000, Message: "duplicate key"}

	assert.True(t, storage.IsTransient(classify(writeConflict)))
	assert.True(t, storage.IsTransient(classify(labelled)))
	assert.False(t, storage.IsTransient(classify(duplicate)))
	assert.False(t, storage.IsTransient(classify(storage.ErrRoomNotFound)))
	assert.False(t, storage.IsTransient(classify(context.Canceled)))
	assert.True(t, storage.IsTransient(classify(context.DeadlineExceeded)))
	assert.Nil(t, classify(nil))

	var conflict *storage.ConflictError
	assert.True(t, errors.As(classify(&storage.ConflictError{}), &conflict))
}

func TestClassify_UnknownCommitResult(t *testing.T) {
	lost := mongo.CommandError{
		Code:   91,
		Labels: []string{labelUnknownCommitResult, labelRetryableWrite, "NetworkError"},
	}

	err := classify(lost)
	assert.ErrorIs(t, err, storage.ErrOutcomeUnknown)
	assert.False(t, storage.IsTransient(err))

	// Retry must give up after the first attempt
	calls := 0
	err = storage.Retry(context.Background(), storage.RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, BackoffFactor: 1},
		func(context.Context) error {
			calls++
			return classify(lost)
		})
	assert.ErrorIs(t, err, storage.ErrOutcomeUnknown)
	assert.Equal(t, 1, calls)
}
