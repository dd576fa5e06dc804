package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"staydesk/internal/storage"
	"staydesk/pkg/model"

	"github.com/shopspring/decimal"
)

// Store persists rooms and bookings in PostgreSQL. Booking inserts lock the
// parent room row, so writers for one room queue behind each other while other
// rooms proceed. The bookings_no_overlap exclusion constraint backs the check.
type Store struct {
	db    *sql.DB
	retry storage.RetryPolicy
}

func New(db *sql.DB, retry storage.RetryPolicy) *Store {
	return &Store{db: db, retry: retry}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (model.Room, error) {
	var r model.Room
	if err := row.Scan(&r.ID, &r.Description, &r.PricePerNight, &r.CreatedAt); err != nil {
		return model.Room{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var b model.Booking
	if err := row.Scan(&b.ID, &b.RoomID, &b.DateStart, &b.DateEnd, &b.CreatedAt); err != nil {
		return model.Booking{}, err
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

func (s *Store) InsertRoom(ctx context.Context, description string, price decimal.Decimal) (model.Room, error) {
	if err := storage.ValidateRoom(description, price); err != nil {
		return model.Room{}, err
	}

	room := model.Room{Description: description, PricePerNight: price}
	err := storage.Retry(ctx, s.retry, func(ctx context.Context) error {
		err := s.db.QueryRowContext(ctx, insertRoomQuery, description, price).Scan(&room.ID, &room.CreatedAt)
		return classify(err)
	})
	if err != nil {
		return model.Room{}, fmt.Errorf("insert room: %w", err)
	}
	room.CreatedAt = room.CreatedAt.UTC()
	return room, nil
}

func (s *Store) GetRoom(ctx context.Context, id int64) (model.Room, error) {
	var room model.Room
	err := storage.Retry(ctx, s.retry, func(ctx context.Context) error {
		var err error
		room, err = scanRoom(s.db.QueryRowContext(ctx, selectRoomQuery, id))
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return classify(err)
	})
	return room, err
}

func (s *Store) DeleteRoom(ctx context.Context, id int64) error {
	return storage.Retry(ctx, s.retry, func(ctx context.Context) error {
		return s.withTx(ctx, func(tx *sql.Tx) error {
			if err := lockRoom(ctx, tx, id); err != nil {
				if errors.Is(err, storage.ErrRoomNotFound) {
					return storage.ErrNotFound
				}
				return err
			}
			if _, err := tx.ExecContext(ctx, deleteRoomBookingsQuery, id); err != nil {
				return classify(err)
			}
			if _, err := tx.ExecContext(ctx, deleteRoomQuery, id); err != nil {
				return classify(err)
			}
			return nil
		})
	})
}

func (s *Store) QueryRooms(ctx context.Context, query model.RoomQuery) ([]model.Room, error) {
	sqlText := listRoomsQuery
	var args []any
	if query.ID != nil {
		sqlText += " WHERE id = $1"
		args = append(args, *query.ID)
	}
	sqlText += roomOrderBy(query.Sort)

	var rooms []model.Room
	err := storage.Retry(ctx, s.retry, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, sqlText, args...)
		if err != nil {
			return classify(err)
		}
		defer rows.Close()

		rooms = rooms[:0]
		for rows.Next() {
			room, err := scanRoom(rows)
			if err != nil {
				return err
			}
			rooms = append(rooms, room)
		}
		return classify(rows.Err())
	})
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	return rooms, nil
}

func (s *Store) InsertBooking(ctx context.Context, roomID int64, start, end model.Date) (model.Booking, error) {
	if err := storage.ValidateRange(start, end); err != nil {
		return model.Booking{}, err
	}

	var booking model.Booking
	err := storage.Retry(ctx, s.retry, func(ctx context.Context) error {
		return s.withTx(ctx, func(tx *sql.Tx) error {
			if err := lockRoom(ctx, tx, roomID); err != nil {
				return err
			}

			existing, err := queryBookings(ctx, tx, roomBookingsQuery, roomID)
			if err != nil {
				return err
			}
			if blocking, found := model.FindOverlap(existing, start, end); found {
				return &storage.ConflictError{Existing: blocking}
			}

			booking = model.Booking{RoomID: roomID, DateStart: start, DateEnd: end}
			err = tx.QueryRowContext(ctx, insertBookingQuery, roomID, start, end).Scan(&booking.ID, &booking.CreatedAt)
			if err != nil {
				return classify(err)
			}
			booking.CreatedAt = booking.CreatedAt.UTC()
			return nil
		})
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (s *Store) DeleteBooking(ctx context.Context, id int64) (model.Booking, error) {
	var booking model.Booking
	err := storage.Retry(ctx, s.retry, func(ctx context.Context) error {
		var err error
		booking, err = scanBooking(s.db.QueryRowContext(ctx, deleteBookingQuery, id))
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return classify(err)
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (s *Store) QueryBookings(ctx context.Context, roomID *int64) ([]model.Booking, error) {
	var bookings []model.Booking
	err := storage.Retry(ctx, s.retry, func(ctx context.Context) error {
		var err error
		if roomID != nil {
			bookings, err = queryBookings(ctx, s.db, roomBookingsQuery, *roomID)
		} else {
			bookings, err = queryBookings(ctx, s.db, allBookingsQuery)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	return bookings, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return classify(s.db.PingContext(ctx))
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryBookings(ctx context.Context, q querier, query string, args ...any) ([]model.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	bookings := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return bookings, nil
}

// lockRoom takes a row lock on the room for the rest of the transaction.
func lockRoom(ctx context.Context, tx *sql.Tx, roomID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, lockRoomQuery, roomID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrRoomNotFound
	}
	return classify(err)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		if commitOutcomeUnknown(err) {
			return storage.OutcomeUnknown(err)
		}
		return classify(err)
	}
	return nil
}
