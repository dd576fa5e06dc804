package service

import (
	"context"
	"errors"
	"staydesk/internal/events"
	"staydesk/internal/rooms/validator"
	"staydesk/internal/storage"
	"staydesk/pkg/config"
	apperrors "staydesk/pkg/errors"
	"staydesk/pkg/locker"
	"staydesk/pkg/model"
	"staydesk/pkg/sanitizer"
)

type RoomService interface {
	Create(ctx context.Context, req *model.CreateRoomRequest) (model.Room, error)
	Get(ctx context.Context, id int64) (model.Room, error)
	List(ctx context.Context, query model.RoomQuery) ([]model.Room, error)
	Delete(ctx context.Context, id int64) error
}

type roomService struct {
	store     storage.Store
	locks     *locker.Keyed[int64]
	validator *validator.RoomValidator
	publisher events.Publisher
	cfg       *config.Config
}

// NewRoomService wires the registry. locks must be the instance the booking
// scheduler uses so a room delete cannot interleave with a booking insert.
func NewRoomService(
	store storage.Store,
	locks *locker.Keyed[int64],
	validator *validator.RoomValidator,
	publisher events.Publisher,
	cfg *config.Config,
) RoomService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &roomService{
		store:     store,
		locks:     locks,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, req *model.CreateRoomRequest) (model.Room, error) {
	s.sanitize(req)
	if err := s.validate(req); err != nil {
		return model.Room{}, err
	}

	price, err := validator.ParsePrice(req.PricePerNight.String())
	if err != nil {
		return model.Room{}, apperrors.Validation(err.Error(), map[string]any{"field": "price_per_night"})
	}

	room, err := s.store.InsertRoom(ctx, *req.Description, price)
	if err != nil {
		s.cfg.Log.Error("Failed to create room", "error", err)
		if errors.Is(err, storage.ErrInvalidRecord) {
			return model.Room{}, apperrors.Validation(err.Error(), nil)
		}
		return model.Room{}, storageFailure("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"price_per_night", room.PricePerNight.StringFixed(model.PriceScale),
	)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.RoomCreated(room))
	return room, nil
}

func (s *roomService) Get(ctx context.Context, id int64) (model.Room, error) {
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Room{}, apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to retrieve room", "id", id, "error", err)
		return model.Room{}, storageFailure("Failed to retrieve room", err)
	}
	return room, nil
}

func (s *roomService) List(ctx context.Context, query model.RoomQuery) ([]model.Room, error) {
	rooms, err := s.store.QueryRooms(ctx, query)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "error", err)
		return nil, storageFailure("Failed to retrieve rooms", err)
	}
	if rooms == nil {
		rooms = []model.Room{}
	}

	s.cfg.Log.Debug("Room list completed",
		"count", len(rooms),
		"sort_by", query.Sort.Field,
		"order", query.Sort.Order,
	)
	return rooms, nil
}

// Delete removes the room and, in the same storage transaction, every
// booking it owns.
func (s *roomService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.InvalidInput("room_id must be a positive integer")
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return apperrors.Timeout("Timed out waiting for room lock")
	}
	err = s.store.DeleteRoom(ctx, id)
	unlock()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to delete room", "id", id, "error", err)
		return storageFailure("Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.RoomDeleted(id))
	return nil
}

// --- Helpers ---

func (s *roomService) sanitize(req *model.CreateRoomRequest) {
	if req.Description != nil {
		description := sanitizer.SanitizeDescription(*req.Description)
		req.Description = &description
	}
}

func (s *roomService) validate(req *model.CreateRoomRequest) error {
	err := s.validator.Validate(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Internal("Failed to validate room", err)
	}
	if missing := verrs.Missing(); len(missing) > 0 {
		s.cfg.Log.Warn("Room missing required fields", "fields", missing)
		return apperrors.MissingField(missing...)
	}

	s.cfg.Log.Warn("Room validation failed", "error", err)
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
