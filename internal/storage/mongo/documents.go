package mongo

import (
	"fmt"
	"staydesk/pkg/model"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoomsCollection    = "Rooms"
	BookingsCollection = "Bookings"
	CountersCollection = "Counters"

	roomCounter    = "rooms"
	bookingCounter = "bookings"
)

// roomDoc is the stored shape of a room. BookingSeq is bumped by every booking
// insert so that concurrent transactions on one room write-conflict.
type roomDoc struct {
	ID            int64                `bson:"_id"`
	Description   string               `bson:"description"`
	PricePerNight primitive.Decimal128 `bson:"price_per_night"`
	CreatedAt     time.Time            `bson:"created_at"`
	BookingSeq    int64                `bson:"booking_seq"`
}

type bookingDoc struct {
	ID        int64     `bson:"_id"`
	RoomID    int64     `bson:"room_id"`
	DateStart time.Time `bson:"date_start"`
	DateEnd   time.Time `bson:"date_end"`
	CreatedAt time.Time `bson:"created_at"`
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

func newRoomDoc(room model.Room) (roomDoc, error) {
	price, err := primitive.ParseDecimal128(room.PricePerNight.StringFixed(model.PriceScale))
	if err != nil {
		return roomDoc{}, fmt.Errorf("encode price_per_night: %w", err)
	}
	return roomDoc{
		ID:            room.ID,
		Description:   room.Description,
		PricePerNight: price,
		CreatedAt:     room.CreatedAt,
	}, nil
}

func (d roomDoc) toModel() (model.Room, error) {
	price, err := decimal.NewFromString(d.PricePerNight.String())
	if err != nil {
		return model.Room{}, fmt.Errorf("decode price_per_night of room %d: %w", d.ID, err)
	}
	return model.Room{
		ID:            d.ID,
		Description:   d.Description,
		PricePerNight: price,
		CreatedAt:     d.CreatedAt.UTC(),
	}, nil
}

func newBookingDoc(b model.Booking) bookingDoc {
	return bookingDoc{
		ID:        b.ID,
		RoomID:    b.RoomID,
		DateStart: b.DateStart.Time,
		DateEnd:   b.DateEnd.Time,
		CreatedAt: b.CreatedAt,
	}
}

func (d bookingDoc) toModel() model.Booking {
	return model.Booking{
		ID:        d.ID,
		RoomID:    d.RoomID,
		DateStart: model.DateOf(d.DateStart.UTC()),
		DateEnd:   model.DateOf(d.DateEnd.UTC()),
		CreatedAt: d.CreatedAt.UTC(),
	}
}
