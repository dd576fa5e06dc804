package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusBadRequest)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("errors.Is should see through AppError")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Booking not found"},
			expected: "NOT_FOUND: Booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", Validation("bad price", nil), CodeValidation, http.StatusBadRequest},
		{"missing field", MissingField("date_end"), CodeMissingField, http.StatusBadRequest},
		{"invalid date range", InvalidDateRange("date_end must be after date_start"), CodeInvalidDateRange, http.StatusBadRequest},
		{"booking conflict", BookingConflict("overlap", nil), CodeBookingConflict, http.StatusBadRequest},
		{"invalid input", InvalidInput("invalid JSON"), CodeInvalidInput, http.StatusBadRequest},
		{"not found", NotFoundWithID("Booking", 7), CodeNotFound, http.StatusNotFound},
		{"room not found", RoomNotFound(3), CodeRoomNotFound, http.StatusNotFound},
		{"unavailable", Unavailable("Storage", nil), CodeUnavailable, http.StatusServiceUnavailable},
		{"outcome unknown", OutcomeUnknown("Failed to create booking", nil), CodeUnavailable, http.StatusServiceUnavailable},
		{"timeout", Timeout("request timed out"), CodeTimeout, http.StatusGatewayTimeout},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestMissingField_SortsFields(t *testing.T) {
	err := MissingField("price_per_night", "description")

	fields, ok := err.Details["fields"].([]string)
	if !ok {
		t.Fatalf("expected []string fields, got %T", err.Details["fields"])
	}
	if len(fields) != 2 || fields[0] != "description" || fields[1] != "price_per_night" {
		t.Errorf("unexpected fields: %v", fields)
	}
	if !strings.Contains(err.Message, "description, price_per_night") {
		t.Errorf("message should list fields, got %q", err.Message)
	}
}

func TestRetryable(t *testing.T) {
	if !Unavailable("Storage", nil).Retryable() {
		t.Error("unavailable should be retryable")
	}
	if BookingConflict("overlap", nil).Retryable() {
		t.Error("conflict should not be retryable")
	}
	if OutcomeUnknown("Failed to create booking", nil).Retryable() {
		t.Error("an unanswered commit should not be retryable")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Room")
	regularErr := errors.New("regular error")

	if result := AsAppError(appErr); result != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	wrapped := fmt.Errorf("service layer: %w", appErr)
	if result := AsAppError(wrapped); result != appErr {
		t.Errorf("AsAppError() should unwrap to the AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see wrapped AppErrors")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
	if IsAppError(regularErr) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("create: %w", BookingConflict("overlap", nil))

	if !HasCode(err, CodeBookingConflict) {
		t.Error("expected BOOKING_CONFLICT")
	}
	if HasCode(err, CodeNotFound) {
		t.Error("did not expect NOT_FOUND")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()

	if err := WriteError(rec, RoomNotFound(9)); err != nil {
		t.Fatalf("WriteError returned %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Code != CodeRoomNotFound {
		t.Errorf("expected code %s, got %s", CodeRoomNotFound, body.Code)
	}
	if body.Details["room_id"] != float64(9) {
		t.Errorf("expected room_id 9 in details, got %v", body.Details["room_id"])
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()

	_ = WriteError(rec, errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("internal cause leaked into response: %s", rec.Body.String())
	}
}

func TestAppError_ToJSON(t *testing.T) {
	data := NotFoundWithID("Booking", 12).ToJSON()

	jsonStr := string(data)
	if !strings.Contains(jsonStr, "NOT_FOUND") {
		t.Errorf("ToJSON() should contain error code")
	}
	if !strings.Contains(jsonStr, "not found") {
		t.Errorf("ToJSON() should contain error message")
	}
}
