package storage

import (
	"context"
	"errors"
	"fmt"
	"staydesk/pkg/model"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrBookingConflict = errors.New("booking overlaps an existing booking")
	ErrTransient       = errors.New("storage temporarily unavailable")
	ErrInvalidRecord   = errors.New("invalid record")
	// ErrOutcomeUnknown means the commit request was sent but no answer came
	// back. The write may or may not have landed, so it is never retried.
	ErrOutcomeUnknown = errors.New("commit outcome unknown")
)

// ConflictError carries the booking that blocked an insert.
// errors.Is(err, ErrBookingConflict) holds for every ConflictError.
type ConflictError struct {
	Existing model.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: booking %d [%s, %s)",
		ErrBookingConflict.Error(), e.Existing.ID, e.Existing.DateStart, e.Existing.DateEnd)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrBookingConflict
}

// Transient marks err as retryable while keeping the cause in the chain.
func Transient(err error) error {
	if err == nil || errors.Is(err, ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// OutcomeUnknown marks a commit failure whose effect cannot be known. The
// result is not transient even when the cause was a dropped connection.
func OutcomeUnknown(err error) error {
	if err == nil || errors.Is(err, ErrOutcomeUnknown) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrOutcomeUnknown, err)
}

type Store interface {
	InsertRoom(ctx context.Context, description string, price decimal.Decimal) (model.Room, error)
	GetRoom(ctx context.Context, id int64) (model.Room, error)
	// DeleteRoom removes the room and all of its bookings in one atomic step.
	DeleteRoom(ctx context.Context, id int64) error
	QueryRooms(ctx context.Context, query model.RoomQuery) ([]model.Room, error)

	// InsertBooking re-checks that the room exists and that [start,end) is free,
	// then inserts, all inside one transaction serialized per room.
	InsertBooking(ctx context.Context, roomID int64, start, end model.Date) (model.Booking, error)
	// DeleteBooking returns the removed booking.
	DeleteBooking(ctx context.Context, id int64) (model.Booking, error)
	// QueryBookings returns bookings ordered by date_start, then id.
	// A nil roomID returns every booking.
	QueryBookings(ctx context.Context, roomID *int64) ([]model.Booking, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ValidateRoom applies the record-level checks every backend shares.
func ValidateRoom(description string, price decimal.Decimal) error {
	if description == "" {
		return fmt.Errorf("%w: description cannot be empty", ErrInvalidRecord)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price_per_night cannot be negative", ErrInvalidRecord)
	}
	if !price.Equal(price.Round(model.PriceScale)) {
		return fmt.Errorf("%w: price_per_night allows at most %d decimal places", ErrInvalidRecord, model.PriceScale)
	}
	return nil
}

func ValidateRange(start, end model.Date) error {
	if !end.After(start) {
		return fmt.Errorf("%w: date_end must be after date_start", ErrInvalidRecord)
	}
	return nil
}
