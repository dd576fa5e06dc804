package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "staydesk/internal/bookings/errors"
	"staydesk/internal/bookings/validator"
	"staydesk/internal/events"
	"staydesk/internal/storage"
	"staydesk/pkg/config"
	apperrors "staydesk/pkg/errors"
	"staydesk/pkg/locker"
	"staydesk/pkg/model"
)

type BookingService interface {
	Create(ctx context.Context, req *model.CreateBookingRequest) (model.Booking, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, roomID *int64) ([]model.Booking, error)
}

type bookingService struct {
	store     storage.Store
	locks     *locker.Keyed[int64]
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	store storage.Store,
	locks *locker.Keyed[int64],
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		store:     store,
		locks:     locks,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create books [date_start, date_end) on a room. Checks run in a fixed order:
// presence, date format, room existence, range, then the overlap check and
// insert as one step serialized per room.
func (s *bookingService) Create(ctx context.Context, req *model.CreateBookingRequest) (model.Booking, error) {
	if err := s.validate(req); err != nil {
		return model.Booking{}, err
	}
	roomID := *req.RoomID
	// format already validated
	start, _ := model.ParseDate(*req.DateStart)
	end, _ := model.ParseDate(*req.DateEnd)

	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.cfg.Log.Warn("Booking requested for unknown room", "room_id", roomID)
			return model.Booking{}, apperrors.RoomNotFound(roomID)
		}
		s.cfg.Log.Error("Failed to look up room", "room_id", roomID, "error", err)
		return model.Booking{}, storageFailure("Failed to look up room", err)
	}

	if err := s.validator.ValidateRange(start, end); err != nil {
		s.cfg.Log.Warn("Booking date range rejected",
			"room_id", roomID,
			"date_start", start,
			"date_end", end,
		)
		return model.Booking{}, apperrors.InvalidDateRange(err.Error())
	}

	unlock, err := s.locks.Lock(ctx, roomID)
	if err != nil {
		return model.Booking{}, apperrors.Timeout("Timed out waiting for room lock")
	}
	// held only across the check-and-insert; publishing runs unlocked
	booking, err := s.store.InsertBooking(ctx, roomID, start, end)
	unlock()
	if err != nil {
		return model.Booking{}, s.translateInsertError(roomID, start, end, err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"date_start", booking.DateStart,
		"date_end", booking.DateEnd,
	)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.BookingCreated(booking))
	return booking, nil
}

func (s *bookingService) translateInsertError(roomID int64, start, end model.Date, err error) error {
	var conflict *storage.ConflictError
	switch {
	case errors.As(err, &conflict):
		s.cfg.Log.Warn("Booking conflicts with an existing booking",
			"room_id", roomID,
			"date_start", start,
			"date_end", end,
			"existing_id", conflict.Existing.ID,
		)
		return apperrors.BookingConflict(
			fmt.Sprintf("Room %d is already booked from %s to %s", roomID, conflict.Existing.DateStart, conflict.Existing.DateEnd),
			map[string]any{
				"room_id":             roomID,
				"existing_booking_id": conflict.Existing.ID,
				"existing_date_start": conflict.Existing.DateStart.String(),
				"existing_date_end":   conflict.Existing.DateEnd.String(),
			},
		)
	case errors.Is(err, storage.ErrBookingConflict):
		s.cfg.Log.Warn("Booking conflicts with an existing booking", "room_id", roomID)
		return apperrors.BookingConflict(
			fmt.Sprintf("Room %d is already booked for part of %s to %s", roomID, start, end),
			map[string]any{"room_id": roomID},
		)
	case errors.Is(err, storage.ErrRoomNotFound):
		// deleted between the existence check and the insert
		s.cfg.Log.Warn("Room vanished before booking was stored", "room_id", roomID)
		return apperrors.RoomNotFound(roomID)
	case errors.Is(err, storage.ErrInvalidRecord):
		return apperrors.InvalidDateRange(bookingserrors.ErrInvalidDateRange.Error())
	default:
		s.cfg.Log.Error("Failed to create booking", "room_id", roomID, "error", err)
		return storageFailure("Failed to create booking", err)
	}
}

func (s *bookingService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.InvalidInput("booking_id must be a positive integer")
	}

	booking, err := s.store.DeleteBooking(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to delete booking", "id", id, "error", err)
		return storageFailure("Failed to delete booking", err)
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id, "room_id", booking.RoomID)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.BookingDeleted(booking))
	return nil
}

func (s *bookingService) List(ctx context.Context, roomID *int64) ([]model.Booking, error) {
	bookings, err := s.store.QueryBookings(ctx, roomID)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, storageFailure("Failed to retrieve bookings", err)
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	// backends already order; keep the guarantee local
	model.SortBookings(bookings)

	s.cfg.Log.Debug("Booking list completed", "count", len(bookings))
	return bookings, nil
}

// --- Helpers ---

func (s *bookingService) validate(req *model.CreateBookingRequest) error {
	err := s.validator.Validate(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Internal("Failed to validate booking", err)
	}
	if missing := verrs.Missing(); len(missing) > 0 {
		s.cfg.Log.Warn("Booking missing required fields", "fields", missing)
		return apperrors.MissingField(missing...)
	}

	s.cfg.Log.Warn("Booking validation failed", "error", err)
	return apperrors.Validation(verrs[0].Message, map[string]any{"errors": verrs})
}

func storageFailure(message string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Timeout(message)
	case errors.Is(err, storage.ErrOutcomeUnknown):
		return apperrors.OutcomeUnknown(message, err)
	case storage.IsTransient(err):
		return apperrors.Unavailable("Storage", err)
	default:
		return apperrors.Internal(message, err)
	}
}
