package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/joestump/room-reviews/internal/auth"
	"github.com/joestump/room-reviews/internal/service"
	"github.com/joestump/room-reviews/internal/store"
)

// roomsAPIHandler provides REST handlers for rooms.
type roomsAPIHandler struct {
	rooms *service.RoomService
}

func registerRoomRoutes(r chi.Router, rooms *service.RoomService, mw *auth.Middleware, uploads *uploadHandler) {
	h := &roomsAPIHandler{rooms: rooms}

	r.Get("/rooms", h.List)
	r.Get("/rooms/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Post("/rooms", h.Create)
		r.Post("/rooms/upload", uploads.Upload)
		r.Put("/rooms/{id}", h.Update)
		r.Delete("/rooms/{id}", h.Delete)
	})
}

// List returns rooms in creation order.
// GET /rooms
//
// @Summary      List rooms
// @Description  Returns rooms in creation order. Pass limit to page and follow next_cursor.
// @Tags         Rooms
// @Produce      json
// @Param        limit   query     int     false  "Page size (max 200)"
// @Param        cursor  query     string  false  "Cursor from a previous page"
// @Success      200     {object}  RoomListResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /rooms [get]
func (h *roomsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parsePagination(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Fetch one extra row to learn whether another page exists.
	query := opts
	if query.Limit > 0 {
		query.Limit++
	}
	rooms, err := h.rooms.List(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := &RoomListResponse{}
	if opts.Limit > 0 && len(rooms) > opts.Limit {
		rooms = rooms[:opts.Limit]
		resp.NextCursor = lo.ToPtr(encodeCursor(rooms[len(rooms)-1].ID))
	}
	resp.Rooms = lo.Map(rooms, func(room *store.Room, _ int) RoomResponse {
		return toRoomResponse(room)
	})
	writeJSON(w, http.StatusOK, resp)
}

// Create stores a room owned by the caller.
// POST /rooms
//
// @Summary      Create a room
// @Description  Any JSON object is accepted. The caller becomes the owner; server fields in the body are ignored.
// @Tags         Rooms
// @Accept       json
// @Produce      json
// @Success      201  {object}  RoomResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      413  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /rooms [post]
func (h *roomsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	attrs, err := decodeAttributes(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	room, err := h.rooms.Create(r.Context(), auth.CallerFromContext(r.Context()), attrs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

// Get returns one room with its reviews inline.
// GET /rooms/{id}
//
// @Summary      Get a room
// @Tags         Rooms
// @Produce      json
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  RoomResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /rooms/{id} [get]
func (h *roomsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.rooms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDetailResponse(detail))
}

// Update merges the body into the room. Owner only.
// PUT /rooms/{id}
//
// @Summary      Update a room
// @Description  Merges the body over the stored room. Only the owner may update.
// @Tags         Rooms
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  RoomResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      413  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /rooms/{id} [put]
func (h *roomsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	attrs, err := decodeAttributes(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	room, err := h.rooms.Update(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id"), attrs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

// Delete removes the room and its reviews. Owner only.
// DELETE /rooms/{id}
//
// @Summary      Delete a room
// @Tags         Rooms
// @Param        id   path  string  true  "Room ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /rooms/{id} [delete]
func (h *roomsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.Delete(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
