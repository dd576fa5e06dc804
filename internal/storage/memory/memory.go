package memory

import (
	"context"
	"staydesk/internal/storage"
	"staydesk/pkg/model"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Store keeps rooms and bookings in process memory behind a single RWMutex.
// Every mutation is a single critical section, so the overlap check and the
// insert can never interleave with another writer.
type Store struct {
	mu sync.RWMutex

	rooms     map[int64]model.Room
	roomOrder []int64
	bookings  map[int64]model.Booking
	byRoom    map[int64][]int64

	nextRoomID    int64
	nextBookingID int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		rooms:    make(map[int64]model.Room),
		bookings: make(map[int64]model.Booking),
		byRoom:   make(map[int64][]int64),
		now:      time.Now,
	}
}

// WithClock replaces the timestamp source. Used by tests that sort by created_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) InsertRoom(_ context.Context, description string, price decimal.Decimal) (model.Room, error) {
	if err := storage.ValidateRoom(description, price); err != nil {
		return model.Room{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRoomID++
	room := model.Room{
		ID:            s.nextRoomID,
		Description:   description,
		PricePerNight: price,
		CreatedAt:     s.now().UTC(),
	}
	s.rooms[room.ID] = room
	s.roomOrder = append(s.roomOrder, room.ID)
	return room, nil
}

func (s *Store) GetRoom(_ context.Context, id int64) (model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return model.Room{}, storage.ErrNotFound
	}
	return room, nil
}

func (s *Store) DeleteRoom(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return storage.ErrNotFound
	}
	for _, bookingID := range s.byRoom[id] {
		delete(s.bookings, bookingID)
	}
	delete(s.byRoom, id)
	delete(s.rooms, id)
	for i, roomID := range s.roomOrder {
		if roomID == id {
			s.roomOrder = append(s.roomOrder[:i], s.roomOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) QueryRooms(_ context.Context, query model.RoomQuery) ([]model.Room, error) {
	s.mu.RLock()
	rooms := make([]model.Room, 0, len(s.roomOrder))
	for _, id := range s.roomOrder {
		if query.ID != nil && *query.ID != id {
			continue
		}
		rooms = append(rooms, s.rooms[id])
	}
	s.mu.RUnlock()

	if query.Sort.Field != model.RoomSortNone {
		model.SortRooms(rooms, query.Sort)
	}
	return rooms, nil
}

func (s *Store) InsertBooking(_ context.Context, roomID int64, start, end model.Date) (model.Booking, error) {
	if err := storage.ValidateRange(start, end); err != nil {
		return model.Booking{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return model.Booking{}, storage.ErrRoomNotFound
	}

	existing := make([]model.Booking, 0, len(s.byRoom[roomID]))
	for _, id := range s.byRoom[roomID] {
		existing = append(existing, s.bookings[id])
	}
	if blocking, found := model.FindOverlap(existing, start, end); found {
		return model.Booking{}, &storage.ConflictError{Existing: blocking}
	}

	s.nextBookingID++
	booking := model.Booking{
		ID:        s.nextBookingID,
		RoomID:    roomID,
		DateStart: start,
		DateEnd:   end,
		CreatedAt: s.now().UTC(),
	}
	s.bookings[booking.ID] = booking
	s.byRoom[roomID] = append(s.byRoom[roomID], booking.ID)
	return booking, nil
}

func (s *Store) DeleteBooking(_ context.Context, id int64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, storage.ErrNotFound
	}
	delete(s.bookings, id)
	ids := s.byRoom[booking.RoomID]
	for i, bookingID := range ids {
		if bookingID == id {
			s.byRoom[booking.RoomID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return booking, nil
}

func (s *Store) QueryBookings(_ context.Context, roomID *int64) ([]model.Booking, error) {
	s.mu.RLock()
	var bookings []model.Booking
	if roomID != nil {
		bookings = make([]model.Booking, 0, len(s.byRoom[*roomID]))
		for _, id := range s.byRoom[*roomID] {
			bookings = append(bookings, s.bookings[id])
		}
	} else {
		bookings = make([]model.Booking, 0, len(s.bookings))
		for _, b := range s.bookings {
			bookings = append(bookings, b)
		}
	}
	s.mu.RUnlock()

	model.SortBookings(bookings)
	return bookings, nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close(context.Context) error {
	return nil
}
