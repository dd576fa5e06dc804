package mongo

import (
	"context"
	"errors"
	"fmt"
	"staydesk/internal/storage"
	mongotx "staydesk/pkg/db/mongo"
	"staydesk/pkg/model"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Retry        storage.RetryPolicy
}

// Store keeps rooms and bookings in MongoDB. Transactions require a replica
// set or sharded cluster.
type Store struct {
	client    *mongo.Client
	rooms     *mongo.Collection
	bookings  *mongo.Collection
	counters  *mongo.Collection
	txManager mongotx.TransactionManager
	opts      Options
}

func New(client *mongo.Client, databaseName string, opts Options) *Store {
	db := client.Database(databaseName)
	return &Store{
		client:    client,
		rooms:     db.Collection(RoomsCollection),
		bookings:  db.Collection(BookingsCollection),
		counters:  db.Collection(CountersCollection),
		txManager: mongotx.NewTransactionManager(client),
		opts:      opts,
	}
}

// withTimeout bounds ctx unless it is a transaction's SessionContext, which
// cannot be wrapped without losing the session.
func (s *Store) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok || timeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// nextID allocates from a named counter. Allocation happens outside booking
// transactions, so an aborted insert leaves a gap instead of serializing every
// room on one counter document.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var counter counterDoc
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, classify(fmt.Errorf("allocate %s id: %w", name, err))
	}
	return counter.Seq, nil
}

func (s *Store) InsertRoom(ctx context.Context, description string, price decimal.Decimal) (model.Room, error) {
	if err := storage.ValidateRoom(description, price); err != nil {
		return model.Room{}, err
	}

	var room model.Room
	err := storage.Retry(ctx, s.opts.Retry, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx, s.opts.WriteTimeout)
		defer cancel()

		id, err := s.nextID(ctx, roomCounter)
		if err != nil {
			return err
		}
		room = model.Room{
			ID:            id,
			Description:   description,
			PricePerNight: price,
			CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
		}
		doc, err := newRoomDoc(room)
		if err != nil {
			return err
		}
		_, err = s.rooms.InsertOne(ctx, doc)
		return classify(err)
	})
	if err != nil {
		return model.Room{}, fmt.Errorf("insert room: %w", err)
	}
	return room, nil
}

func (s *Store) GetRoom(ctx context.Context, id int64) (model.Room, error) {
	var room model.Room
	err := storage.Retry(ctx, s.opts.Retry, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx, s.opts.ReadTimeout)
		defer cancel()

		var doc roomDoc
		err := s.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.ErrNotFound
		}
		if err != nil {
			return classify(err)
		}
		room, err = doc.toModel()
		return err
	})
	return room, err
}

func (s *Store) DeleteRoom(ctx context.Context, id int64) error {
	return storage.Retry(ctx, s.opts.Retry, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx, s.opts.WriteTimeout)
		defer cancel()

		err := s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			res, err := s.rooms.DeleteOne(sessCtx, bson.M{"_id": id})
			if err != nil {
				return err
			}
			if res.DeletedCount == 0 {
				return storage.ErrNotFound
			}
			_, err = s.bookings.DeleteMany(sessCtx, bson.M{"room_id": id})
			return err
		})
		return classify(err)
	})
}

func roomSort(s model.RoomSort) bson.D {
	dir := 1
	if s.Order == model.SortDesc {
		dir = -1
	}
	switch s.Field {
	case model.RoomSortPrice:
		return bson.D{{Key: "price_per_night", Value: dir}, {Key: "_id", Value: 1}}
	case model.RoomSortDate:
		return bson.D{{Key: "created_at", Value: dir}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "_id", Value: 1}}
	}
}

func (s *Store) QueryRooms(ctx context.Context, query model.RoomQuery) ([]model.Room, error) {
	filter := bson.M{}
	if query.ID != nil {
		filter["_id"] = *query.ID
	}
	findOpts := options.Find().SetSort(roomSort(query.Sort))

	var rooms []model.Room
	err := storage.Retry(ctx, s.opts.Retry, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx, s.opts.ReadTimeout)
		defer cancel()

		cursor, err := s.rooms.Find(ctx, filter, findOpts)
		if err != nil {
			return classify(err)
		}
		var docs []roomDoc
		if err := cursor.All(ctx, &docs); err != nil {
			return classify(err)
		}

		rooms = make([]model.Room, 0, len(docs))
		for _, doc := range docs {
			room, err := doc.toModel()
			if err != nil {
				return err
			}
			rooms = append(rooms, room)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	return rooms, nil
}

func (s *Store) InsertBooking(ctx context.Context, roomID int64, start, end model.Date) (model.Booking, error) {
	if err := storage.ValidateRange(start, end); err != nil {
		return model.Booking{}, err
	}

	var booking model.Booking
	err := storage.Retry(ctx, s.opts.Retry, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx, s.opts.WriteTimeout)
		defer cancel()

		id, err := s.nextID(ctx, bookingCounter)
		if err != nil {
			return err
		}

		err = s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			res, err := s.rooms.UpdateOne(sessCtx,
				bson.M{"_id": roomID},
				bson.M{"$inc": bson.M{"booking_seq": int64(1)}},
			)
			if err != nil {
				return err
			}
			if res.MatchedCount == 0 {
				return storage.ErrRoomNotFound
			}

			existing, err := s.findBookings(sessCtx, bson.M{"room_id": roomID})
			if err != nil {
				return err
			}
			if blocking, found := model.FindOverlap(existing, start, end); found {
				return &storage.ConflictError{Existing: blocking}
			}

			booking = model.Booking{
				ID:        id,
				RoomID:    roomID,
				DateStart: start,
				DateEnd:   end,
				CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
			}
			_, err = s.bookings.InsertOne(sessCtx, newBookingDoc(booking))
			return err
		})
		return classify(err)
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (s *Store) DeleteBooking(ctx context.Context, id int64) (model.Booking, error) {
	var doc bookingDoc
	err := storage.Retry(ctx, s.opts.Retry, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx, s.opts.WriteTimeout)
		defer cancel()

		err := s.bookings.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return storage.ErrNotFound
		}
		return classify(err)
	})
	if err != nil {
		return model.Booking{}, err
	}
	return doc.toModel(), nil
}

func (s *Store) QueryBookings(ctx context.Context, roomID *int64) ([]model.Booking, error) {
	filter := bson.M{}
	if roomID != nil {
		filter["room_id"] = *roomID
	}

	var bookings []model.Booking
	err := storage.Retry(ctx, s.opts.Retry, func(ctx context.Context) error {
		ctx, cancel := s.withTimeout(ctx, s.opts.ReadTimeout)
		defer cancel()

		var err error
		bookings, err = s.findBookings(ctx, filter)
		return classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	return bookings, nil
}

func (s *Store) findBookings(ctx context.Context, filter bson.M) ([]model.Booking, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "date_start", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.bookings.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	var docs []bookingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	bookings := make([]model.Booking, 0, len(docs))
	for _, doc := range docs {
		bookings = append(bookings, doc.toModel())
	}
	return bookings, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return classify(s.client.Ping(ctx, nil))
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
