package postgres

import "staydesk/pkg/model"

const (
	insertRoomQuery = `INSERT INTO rooms (description, price_per_night) VALUES ($1, $2) RETURNING id, created_at`
	selectRoomQuery = `SELECT id, description, price_per_night, created_at FROM rooms WHERE id = $1`
	lockRoomQuery   = `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`
	listRoomsQuery  = `SELECT id, description, price_per_night, created_at FROM rooms`

	deleteRoomBookingsQuery = `DELETE FROM bookings WHERE room_id = $1`
	deleteRoomQuery         = `DELETE FROM rooms WHERE id = $1`

	roomBookingsQuery  = `SELECT id, room_id, date_start, date_end, created_at FROM bookings WHERE room_id = $1 ORDER BY date_start, id`
	allBookingsQuery   = `SELECT id, room_id, date_start, date_end, created_at FROM bookings ORDER BY date_start, id`
	insertBookingQuery = `INSERT INTO bookings (room_id, date_start, date_end) VALUES ($1, $2, $3) RETURNING id, created_at`
	deleteBookingQuery = `DELETE FROM bookings WHERE id = $1 RETURNING id, room_id, date_start, date_end, created_at`
)

// roomOrderBy maps a sort request onto a fixed ORDER BY clause; user input
// never reaches the SQL text.
func roomOrderBy(s model.RoomSort) string {
	dir := "ASC"
	if s.Order == model.SortDesc {
		dir = "DESC"
	}
	switch s.Field {
	case model.RoomSortPrice:
		return " ORDER BY price_per_night " + dir + ", id ASC"
	case model.RoomSortDate:
		return " ORDER BY created_at " + dir + ", id ASC"
	default:
		return " ORDER BY id ASC"
	}
}
