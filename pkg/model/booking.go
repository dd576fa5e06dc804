package model

import (
	"sort"
	"time"
)

type Booking struct {
	ID        int64     `json:"booking_id"`
	RoomID    int64     `json:"room_id"`
	DateStart Date      `json:"date_start"`
	DateEnd   Date      `json:"date_end"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateBookingRequest struct {
	RoomID    *int64  `json:"room_id" validate:"required"`
	DateStart *string `json:"date_start" validate:"required,isodate"`
	DateEnd   *string `json:"date_end" validate:"required,isodate"`
}

type DeleteBookingRequest struct {
	BookingID *int64 `json:"booking_id" validate:"required"`
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2) share
// at least one day. Intervals that only touch do not overlap.
func Overlaps(s1, e1, s2, e2 Date) bool {
	return s1.Before(e2) && s2.Before(e1)
}

func (b Booking) Overlaps(start, end Date) bool {
	return Overlaps(b.DateStart, b.DateEnd, start, end)
}

// FindOverlap returns the earliest existing booking that overlaps [start,end).
func FindOverlap(existing []Booking, start, end Date) (Booking, bool) {
	var (
		found Booking
		ok    bool
	)
	for _, b := range existing {
		if !b.Overlaps(start, end) {
			continue
		}
		if !ok || bookingLess(b, found) {
			found, ok = b, true
		}
	}
	return found, ok
}

// SortBookings orders by date_start ascending, then id.
func SortBookings(bookings []Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookingLess(bookings[i], bookings[j])
	})
}

func bookingLess(a, b Booking) bool {
	if !a.DateStart.Equal(b.DateStart) {
		return a.DateStart.Before(b.DateStart)
	}
	return a.ID < b.ID
}
