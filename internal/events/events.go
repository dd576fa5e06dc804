package events

import (
	"context"
	"strconv"
	"time"

	"staydesk/pkg/kafka"
	"staydesk/pkg/logger"
	"staydesk/pkg/middleware"
	"staydesk/pkg/model"
)

const (
	TypeRoomCreated    = "room.created"
	TypeRoomDeleted    = "room.deleted"
	TypeBookingCreated = "booking.created"
	TypeBookingDeleted = "booking.deleted"

	SchemaVersion = "1"
)

// Event is the JSON payload published for every committed mutation.
type Event struct {
	Type       string      `json:"type"`
	RoomID     int64       `json:"room_id"`
	BookingID  *int64      `json:"booking_id,omitempty"`
	DateStart  *model.Date `json:"date_start,omitempty"`
	DateEnd    *model.Date `json:"date_end,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func RoomCreated(room model.Room) Event {
	return Event{Type: TypeRoomCreated, RoomID: room.ID, OccurredAt: time.Now().UTC()}
}

func RoomDeleted(roomID int64) Event {
	return Event{Type: TypeRoomDeleted, RoomID: roomID, OccurredAt: time.Now().UTC()}
}

func BookingCreated(b model.Booking) Event {
	id, start, end := b.ID, b.DateStart, b.DateEnd
	return Event{
		Type:       TypeBookingCreated,
		RoomID:     b.RoomID,
		BookingID:  &id,
		DateStart:  &start,
		DateEnd:    &end,
		OccurredAt: time.Now().UTC(),
	}
}

func BookingDeleted(b model.Booking) Event {
	e := BookingCreated(b)
	e.Type = TypeBookingDeleted
	return e
}

// Publisher emits events after the mutation they describe has committed.
// Implementations must not block the caller on broker failures for longer
// than ctx allows.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer messagePublisher
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	builder := kafka.NewMessage().
		WithKey(strconv.FormatInt(event.RoomID, 10)).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt)
	builder = builder.WithCorrelationID(middleware.RequestID(ctx))

	msg, err := builder.Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher drops every event. Used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Emit publishes event and logs, rather than returns, any failure. The
// mutation has already committed, so the caller's outcome must not change.
func Emit(ctx context.Context, pub Publisher, log *logger.Logger, event Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn("Failed to publish event",
			"event_type", event.Type,
			"room_id", event.RoomID,
			"error", err,
		)
	}
}
