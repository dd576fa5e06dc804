package validator

import (
	"encoding/json"
	"errors"
	"testing"

	roomserrors "staydesk/internal/rooms/errors"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"
)

func strPtr(s string) *string { return &s }

func numPtr(s string) *json.Number {
	n := json.Number(s)
	return &n
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "100", want: "100"},
		{in: "100.5", want: "100.5"},
		{in: "100.50", want: "100.5"},
		{in: " 0 ", want: "0"},
		{in: "99999999.99", want: "99999999.99"},
		{in: "100.500", want: "100.5"},
		{in: "100.505", wantErr: roomserrors.ErrPriceScale},
		{in: "-1", wantErr: roomserrors.ErrPriceNegative},
		{in: "100000000", wantErr: roomserrors.ErrPriceTooLarge},
		{in: "abc", wantErr: roomserrors.ErrPriceFormat},
		{in: "", wantErr: roomserrors.ErrPriceFormat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParsePrice(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q) unexpected error: %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParsePrice(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoomValidator_Validate(t *testing.T) {
	v := NewRoomValidator(logger.Nop())

	tests := []struct {
		name        string
		req         model.CreateRoomRequest
		wantMissing []string
		wantTags    []string
	}{
		{
			name: "valid",
			req:  model.CreateRoomRequest{Description: strPtr("Room A"), PricePerNight: numPtr("100.00")},
		},
		{
			name: "free room",
			req:  model.CreateRoomRequest{Description: strPtr("Staff room"), PricePerNight: numPtr("0")},
		},
		{
			name:        "both missing",
			req:         model.CreateRoomRequest{},
			wantMissing: []string{"description", "price_per_night"},
			wantTags:    []string{"required", "required"},
		},
		{
			name:        "price missing",
			req:         model.CreateRoomRequest{Description: strPtr("Room A")},
			wantMissing: []string{"price_per_night"},
			wantTags:    []string{"required"},
		},
		{
			name:     "blank description",
			req:      model.CreateRoomRequest{Description: strPtr(""), PricePerNight: numPtr("10")},
			wantTags: []string{"notblank"},
		},
		{
			name:     "bad price",
			req:      model.CreateRoomRequest{Description: strPtr("Room A"), PricePerNight: numPtr("-5")},
			wantTags: []string{"price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if len(tt.wantTags) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T %v", err, err)
			}
			if len(verrs) != len(tt.wantTags) {
				t.Fatalf("got %d errors, want %d: %v", len(verrs), len(tt.wantTags), verrs)
			}
			for i, tag := range tt.wantTags {
				if verrs[i].Tag != tag {
					t.Errorf("error %d tag = %s, want %s", i, verrs[i].Tag, tag)
				}
			}
			missing := verrs.Missing()
			if len(missing) != len(tt.wantMissing) {
				t.Fatalf("missing = %v, want %v", missing, tt.wantMissing)
			}
			for i := range missing {
				if missing[i] != tt.wantMissing[i] {
					t.Errorf("missing[%d] = %s, want %s", i, missing[i], tt.wantMissing[i])
				}
			}
		})
	}
}

func TestRoomValidator_PriceMessage(t *testing.T) {
	v := NewRoomValidator(logger.Nop())

	err := v.Validate(&model.CreateRoomRequest{Description: strPtr("Room A"), PricePerNight: numPtr("1.234")})

	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 {
		t.Fatalf("expected one validation error, got %v", err)
	}
	if verrs[0].Message != roomserrors.ErrPriceScale.Error() {
		t.Errorf("message = %q", verrs[0].Message)
	}
}
