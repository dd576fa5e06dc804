package client

import (
	"fmt"
	"net/url"
	"staydesk/pkg/model"
	"strconv"
	"time"
)

type HotelClient struct {
	httpClient *HttpClient
}

func NewHotelClient(baseUrl string) *HotelClient {
	return &HotelClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// HTTP exposes the underlying client for raw requests.
func (c *HotelClient) HTTP() *HttpClient {
	return c.httpClient
}

// CreateRoom posts {description, price_per_night}. price is sent as given so
// callers can exercise both string and numeric encodings.
func (c *HotelClient) CreateRoom(description string, price any) (*Response, error) {
	return c.httpClient.POST("/rooms/create", map[string]any{
		"description":     description,
		"price_per_night": price,
	})
}

func (c *HotelClient) DeleteRoom(id int64) (*Response, error) {
	return c.httpClient.DELETEWithBody("/rooms/delete", map[string]int64{"room_id": id})
}

// ListRooms passes every non-empty argument as a query parameter.
func (c *HotelClient) ListRooms(roomID *int64, sortBy, order string) (*Response, error) {
	q := url.Values{}
	if roomID != nil {
		q.Set("room_id", strconv.FormatInt(*roomID, 10))
	}
	if sortBy != "" {
		q.Set("sort_by", sortBy)
	}
	if order != "" {
		q.Set("order", order)
	}
	return c.httpClient.GET(withQuery("/rooms/list", q))
}

func (c *HotelClient) CreateBooking(roomID int64, dateStart, dateEnd string) (*Response, error) {
	return c.httpClient.POST("/rooms/bookings/create", map[string]any{
		"room_id":    roomID,
		"date_start": dateStart,
		"date_end":   dateEnd,
	})
}

func (c *HotelClient) DeleteBooking(id int64) (*Response, error) {
	return c.httpClient.DELETEWithBody("/rooms/bookings/delete", map[string]int64{"booking_id": id})
}

func (c *HotelClient) ListBookings(roomID *int64) (*Response, error) {
	q := url.Values{}
	if roomID != nil {
		q.Set("room_id", strconv.FormatInt(*roomID, 10))
	}
	return c.httpClient.GET(withQuery("/rooms/bookings/list", q))
}

func (c *HotelClient) DecodeRoomID(resp *Response) (int64, error) {
	var body struct {
		RoomID int64 `json:"room_id"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		return 0, fmt.Errorf("could not decode room id:\n%s\n%w", resp.ToString(), err)
	}
	return body.RoomID, nil
}

func (c *HotelClient) DecodeBookingID(resp *Response) (int64, error) {
	var body struct {
		BookingID int64 `json:"booking_id"`
	}
	if err := resp.DecodeJSON(&body); err != nil {
		return 0, fmt.Errorf("could not decode booking id:\n%s\n%w", resp.ToString(), err)
	}
	return body.BookingID, nil
}

func (c *HotelClient) DecodeRooms(resp *Response) ([]model.Room, error) {
	var rooms []model.Room
	if err := resp.DecodeJSON(&rooms); err != nil {
		return nil, fmt.Errorf("could not decode rooms:\n%s\n%w", resp.ToString(), err)
	}
	return rooms, nil
}

func (c *HotelClient) DecodeBookings(resp *Response) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := resp.DecodeJSON(&bookings); err != nil {
		return nil, fmt.Errorf("could not decode bookings:\n%s\n%w", resp.ToString(), err)
	}
	return bookings, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (c *HotelClient) WaitForHealthy(maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(maxWait)
}
