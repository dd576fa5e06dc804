package model

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PriceScale     = 2
	PriceMaxDigits = 10
)

type Room struct {
	ID            int64           `json:"room_id"`
	Description   string          `json:"description"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (r Room) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            int64  `json:"room_id"`
		Description   string `json:"description"`
		PricePerNight string `json:"price_per_night"`
		CreatedAt     string `json:"created_at"`
	}{
		ID:            r.ID,
		Description:   r.Description,
		PricePerNight: r.PricePerNight.StringFixed(PriceScale),
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

type CreateRoomRequest struct {
	Description   *string      `json:"description" validate:"required,notblank"`
	PricePerNight *json.Number `json:"price_per_night" validate:"required,price"`
}

type DeleteRoomRequest struct {
	RoomID *int64 `json:"room_id" validate:"required"`
}

type RoomSortField string

const (
	RoomSortNone  RoomSortField = ""
	RoomSortPrice RoomSortField = "price"
	RoomSortDate  RoomSortField = "date"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type RoomSort struct {
	Field RoomSortField
	Order SortOrder
}

type RoomQuery struct {
	ID   *int64
	Sort RoomSort
}

// ParseRoomSort accepts the raw sort_by/order query values. Unrecognised
// fields leave the result unsorted and anything other than "desc" sorts
// ascending.
func ParseRoomSort(sortBy, order string) RoomSort {
	s := RoomSort{Order: SortAsc}
	switch RoomSortField(sortBy) {
	case RoomSortPrice, RoomSortDate:
		s.Field = RoomSortField(sortBy)
	}
	if SortOrder(order) == SortDesc {
		s.Order = SortDesc
	}
	return s
}

// SortRooms orders rooms in place. An unsorted query keeps id order, which is
// also insertion order since ids are assigned monotonically.
func SortRooms(rooms []Room, s RoomSort) {
	sort.SliceStable(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		var c int
		switch s.Field {
		case RoomSortPrice:
			c = a.PricePerNight.Cmp(b.PricePerNight)
		case RoomSortDate:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if s.Order == SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}
