package handler

import (
	"fmt"
	"net/http"

	"staydesk/internal/rooms/service"
	apperrors "staydesk/pkg/errors"
	httputil "staydesk/pkg/http"
	"staydesk/pkg/logger"
	"staydesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CreateRoomResponse struct {
	RoomID int64 `json:"room_id"`
}

type RoomHandler struct {
	service service.RoomService
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		log:     log,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateRoomRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	room, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, CreateRoomResponse{RoomID: room.ID}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// Delete accepts room_id in the JSON body or, failing that, the query string.
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.DeleteRoomRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	id, err := httputil.ResolveID(r, req.RoomID, "room_id")
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	if id == nil {
		h.writeError(w, "Delete", apperrors.MissingField("room_id"))
		return
	}

	if err := h.service.Delete(r.Context(), *id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	message := fmt.Sprintf("Room %d deleted along with its bookings", *id)
	if err := httputil.WriteMessage(w, message); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := httputil.ParseOptionalID(r, "room_id")
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	rooms, err := h.service.List(r.Context(), model.RoomQuery{
		ID:   id,
		Sort: model.ParseRoomSort(query.Get("sort_by"), query.Get("order")),
	})
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/rooms/create", h.Create)
	router.DELETE("/rooms/delete", h.Delete)
	router.GET("/rooms/list", h.List)
}
