package handler

import (
	"fmt"
	"net/http"

	"staydesk/internal/bookings/service"
	apperrors "staydesk/pkg/errors"
	httputil "staydesk/pkg/http"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CreateBookingResponse struct {
	BookingID int64 `json:"booking_id"`
}

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, CreateBookingResponse{BookingID: booking.ID}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.DeleteBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	id, err := httputil.ResolveID(r, req.BookingID, "booking_id")
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	if id == nil {
		h.writeError(w, "Delete", apperrors.MissingField("booking_id"))
		return
	}

	if err := h.service.Delete(r.Context(), *id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, fmt.Sprintf("Booking %d deleted", *id)); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

// List returns every booking, or only those of room_id when given.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	roomID, err := httputil.ParseOptionalID(r, "room_id")
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	bookings, err := h.service.List(r.Context(), roomID)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/rooms/bookings/create", h.Create)
	router.DELETE("/rooms/bookings/delete", h.Delete)
	router.GET("/rooms/bookings/list", h.List)
}
