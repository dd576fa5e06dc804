//go:build integration

package hotel

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"staydesk/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hotel *client.HotelClient

func TestMain(m *testing.M) {
	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	hotel = client.NewHotelClient(serverURL)
	if err := hotel.WaitForHealthy(30 * time.Second); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// --- Helpers ---

func createRoom(t *testing.T, description string, price any) int64 {
	t.Helper()
	resp, err := hotel.CreateRoom(description, price)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.ToString())
	id, err := hotel.DecodeRoomID(resp)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = hotel.DeleteRoom(id) })
	return id
}

func book(t *testing.T, roomID int64, start, end string) *client.Response {
	t.Helper()
	resp, err := hotel.CreateBooking(roomID, start, end)
	require.NoError(t, err)
	return resp
}

func countBookings(t *testing.T, roomID int64) int {
	t.Helper()
	resp, err := hotel.ListBookings(&roomID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bookings, err := hotel.DecodeBookings(resp)
	require.NoError(t, err)
	return len(bookings)
}

func TestBookingScenario(t *testing.T) {
	roomID := createRoom(t, "Room A", "100.00")

	first := book(t, roomID, "2022-06-20", "2022-06-25")
	require.Equal(t, http.StatusCreated, first.StatusCode, first.ToString())

	conflict := book(t, roomID, "2022-06-23", "2022-06-27")
	assert.Equal(t, http.StatusBadRequest, conflict.StatusCode)
	assert.Equal(t, "BOOKING_CONFLICT", conflict.ErrorCode())

	abutting := book(t, roomID, "2022-06-25", "2022-06-30")
	require.Equal(t, http.StatusCreated, abutting.StatusCode, abutting.ToString())

	resp, err := hotel.ListBookings(&roomID)
	require.NoError(t, err)
	bookings, err := hotel.DecodeBookings(resp)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "2022-06-20", bookings[0].DateStart.String())
	assert.Equal(t, "2022-06-25", bookings[1].DateStart.String())
}

func TestBookingValidation(t *testing.T) {
	roomID := createRoom(t, "Room B", 80)

	tests := []struct {
		name       string
		roomID     int64
		start, end string
		wantStatus int
		wantCode   string
	}{
		{"end before start", roomID, "2022-06-25", "2022-06-20", http.StatusBadRequest, "INVALID_DATE_RANGE"},
		{"empty range", roomID, "2022-06-20", "2022-06-20", http.StatusBadRequest, "INVALID_DATE_RANGE"},
		{"bad format", roomID, "20/06/2022", "2022-06-25", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown room", 987654321, "2022-06-20", "2022-06-25", http.StatusNotFound, "ROOM_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := book(t, tt.roomID, tt.start, tt.end)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, resp.ToString())
			assert.Equal(t, tt.wantCode, resp.ErrorCode())
		})
	}

	resp, err := hotel.HTTP().POST("/rooms/bookings/create", map[string]any{"room_id": roomID})
	require.NoError(t, err)
	assert.Equal(t, "MISSING_FIELD", resp.ErrorCode())
}

func TestRequestEnvelope(t *testing.T) {
	resp, err := hotel.HTTP().POSTRaw("/rooms/create", []byte(`{"description":`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, resp.ToString())
	assert.Equal(t, "INVALID_INPUT", resp.ErrorCode())

	resp, err = hotel.HTTP().POSTRawWithContentType("/rooms/create", []byte("description=Suite"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode, resp.ToString())

	body := map[string]any{"description": "Idempotent room", "price_per_night": "75.00"}
	key := map[string]string{"Idempotency-Key": fmt.Sprintf("room-%d", time.Now().UnixNano())}
	first, err := hotel.HTTP().POSTWithHeaders("/rooms/create", body, key)
	require.NoError(t, err)
	second, err := hotel.HTTP().POSTWithHeaders("/rooms/create", body, key)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, first.StatusCode, first.ToString())
	assert.Equal(t, string(first.Body), string(second.Body))
}

func TestRoomDeleteCascades(t *testing.T) {
	resp, err := hotel.CreateRoom("Room C", "55.10")
	require.NoError(t, err)
	roomID, err := hotel.DecodeRoomID(resp)
	require.NoError(t, err)

	require.Equal(t, http.StatusCreated, book(t, roomID, "2022-07-01", "2022-07-03").StatusCode)
	require.Equal(t, http.StatusCreated, book(t, roomID, "2022-07-03", "2022-07-09").StatusCode)
	require.Equal(t, 2, countBookings(t, roomID))

	resp, err = hotel.DeleteRoom(roomID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.ToString())

	assert.Equal(t, 0, countBookings(t, roomID))

	resp, err = hotel.DeleteRoom(roomID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConcurrentOverlappingBookings(t *testing.T) {
	const trials = 20

	for i := 0; i < trials; i++ {
		roomID := createRoom(t, "Race room", "10.00")

		var wg sync.WaitGroup
		statuses := make([]int, 2)
		ranges := [][2]string{{"2022-08-01", "2022-08-05"}, {"2022-08-03", "2022-08-08"}}
		for j := range ranges {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				resp, err := hotel.CreateBooking(roomID, ranges[j][0], ranges[j][1])
				if err == nil {
					statuses[j] = resp.StatusCode
				}
			}(j)
		}
		wg.Wait()

		created := 0
		for _, s := range statuses {
			if s == http.StatusCreated {
				created++
			}
		}
		require.Equal(t, 1, created, "trial %d: statuses %v", i, statuses)
		require.Equal(t, 1, countBookings(t, roomID))
	}
}

func TestRoomListSorting(t *testing.T) {
	cheap := createRoom(t, "Cheap", "10.00")
	pricey := createRoom(t, "Pricey", "999.99")

	resp, err := hotel.ListRooms(nil, "price", "desc")
	require.NoError(t, err)
	rooms, err := hotel.DecodeRooms(resp)
	require.NoError(t, err)

	pos := map[int64]int{}
	for i, r := range rooms {
		pos[r.ID] = i
		if i > 0 {
			assert.False(t, r.PricePerNight.GreaterThan(rooms[i-1].PricePerNight), "rooms not in descending price order")
		}
	}
	assert.Less(t, pos[pricey], pos[cheap])

	resp, err = hotel.ListRooms(&cheap, "", "")
	require.NoError(t, err)
	rooms, err = hotel.DecodeRooms(resp)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "10.00", rooms[0].PricePerNight.StringFixed(2))
}

func TestDeleteBooking(t *testing.T) {
	roomID := createRoom(t, "Room D", "70")

	resp := book(t, roomID, "2022-09-01", "2022-09-04")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bookingID, err := hotel.DecodeBookingID(resp)
	require.NoError(t, err)

	resp, err = hotel.DeleteBooking(bookingID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = hotel.DeleteBooking(bookingID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, http.StatusCreated, book(t, roomID, "2022-09-01", "2022-09-04").StatusCode)
}
