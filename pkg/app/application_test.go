package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	bookinghandler "staydesk/internal/bookings/handler"
	bookingservice "staydesk/internal/bookings/service"
	bookingvalidator "staydesk/internal/bookings/validator"
	"staydesk/internal/events"
	roomhandler "staydesk/internal/rooms/handler"
	roomservice "staydesk/internal/rooms/service"
	roomvalidator "staydesk/internal/rooms/validator"
	"staydesk/internal/storage/memory"
	"staydesk/pkg/config"
	"staydesk/pkg/locker"
	"staydesk/pkg/logger"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Port:              "8080",
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
		IdempotencyTTL:    time.Hour,
		MaxRequestSize:    1 << 20,
		ShutdownTimeout:   time.Second,
		Log:               logger.Nop(),
	}
	store := memory.New()
	locks := locker.NewKeyed[int64]()
	publisher := events.NopPublisher{}

	rooms := roomservice.NewRoomService(store, locks, roomvalidator.NewRoomValidator(cfg.Log), publisher, cfg)
	bookings := bookingservice.NewBookingService(store, locks, bookingvalidator.NewBookingValidator(cfg.Log), publisher, cfg)

	application := NewApplication(cfg)
	application.SetApp(store, publisher,
		roomhandler.NewRoomHandler(rooms, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
	)
	t.Cleanup(func() { application.Close(context.Background()) })
	return application.Handler()
}

func call(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Code
}

func TestApplication_BookingScenario(t *testing.T) {
	h := newTestApp(t)

	rec := call(t, h, http.MethodPost, "/rooms/create", `{"description":"Room A","price_per_night":"100.00"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"room_id":1}`, rec.Body.String())

	rec = call(t, h, http.MethodPost, "/rooms/bookings/create", `{"room_id":1,"date_start":"2022-06-20","date_end":"2022-06-25"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodPost, "/rooms/bookings/create", `{"room_id":1,"date_start":"2022-06-23","date_end":"2022-06-27"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BOOKING_CONFLICT", errorCode(t, rec))

	rec = call(t, h, http.MethodPost, "/rooms/bookings/create", `{"room_id":1,"date_start":"2022-06-25","date_end":"2022-06-30"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodGet, "/rooms/bookings/list?room_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var bookings []struct {
		DateStart string `json:"date_start"`
		DateEnd   string `json:"date_end"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bookings))
	require.Len(t, bookings, 2)
	assert.Equal(t, "2022-06-20", bookings[0].DateStart)
	assert.Equal(t, "2022-06-25", bookings[1].DateStart)

	rec = call(t, h, http.MethodDelete, "/rooms/delete", `{"room_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Room 1 deleted along with its bookings"}`, rec.Body.String())

	rec = call(t, h, http.MethodGet, "/rooms/bookings/list?room_id=1", "")
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = call(t, h, http.MethodDelete, "/rooms/delete", `{"room_id":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplication_RoomListing(t *testing.T) {
	h := newTestApp(t)

	for _, body := range []string{
		`{"description":"Suite","price_per_night":"250.00"}`,
		`{"description":"Single","price_per_night":80}`,
		`{"description":"Double","price_per_night":"120.5"}`,
	} {
		require.Equal(t, http.StatusCreated, call(t, h, http.MethodPost, "/rooms/create", body).Code)
	}

	rec := call(t, h, http.MethodGet, "/rooms/list?sort_by=price&order=desc", "")
	var rooms []struct {
		ID    int64  `json:"room_id"`
		Price string `json:"price_per_night"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 3)
	assert.Equal(t, []string{"250.00", "120.50", "80.00"}, []string{rooms[0].Price, rooms[1].Price, rooms[2].Price})

	rec = call(t, h, http.MethodPost, "/rooms/create", `{"description":"Broken","price_per_night":"1.005"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = call(t, h, http.MethodPost, "/rooms/create", `{"price_per_night":"10"}`)
	assert.Equal(t, "MISSING_FIELD", errorCode(t, rec))
}

func TestApplication_Middleware(t *testing.T) {
	h := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/rooms/create", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	body := `{"description":"Room A","price_per_night":"100.00"}`
	first := call(t, h, http.MethodPost, "/rooms/create", body, "Idempotency-Key", "abc")
	second := call(t, h, http.MethodPost, "/rooms/create", body, "Idempotency-Key", "abc")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))

	rec = call(t, h, http.MethodGet, "/rooms/list", "")
	var rooms []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	assert.Len(t, rooms, 1, "replayed request must not create a second room")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestApplication_HealthAndIndex(t *testing.T) {
	h := newTestApp(t)

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, "/ready", "").Code)

	rec := call(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome")

	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, "/nope", "").Code)
}
