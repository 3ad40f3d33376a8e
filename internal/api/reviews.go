package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/joestump/room-reviews/internal/auth"
	"github.com/joestump/room-reviews/internal/service"
	"github.com/joestump/room-reviews/internal/store"
)

// reviewsAPIHandler provides REST handlers for reviews. Edit and delete
// operate on the review itself and are restricted to its author.
type reviewsAPIHandler struct {
	reviews *service.ReviewService
}

func registerReviewRoutes(r chi.Router, reviews *service.ReviewService, mw *auth.Middleware) {
	h := &reviewsAPIHandler{reviews: reviews}

	// {id} is the room id here; chi needs one param name per path segment.

	r.Get("/rooms/{id}/reviews", h.ListByRoom)
	r.Get("/reviews/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Post("/rooms/{id}/reviews", h.Create)
		r.Put("/reviews/{id}", h.Update)
		r.Delete("/reviews/{id}", h.Delete)
	})
}

// ListByRoom returns the reviews of one room.
// GET /rooms/{id}/reviews
//
// @Summary      List reviews of a room
// @Tags         Reviews
// @Produce      json
// @Param        id      path      string  true  "Room ID"
// @Success      200     {object}  ReviewListResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /rooms/{id}/reviews [get]
func (h *reviewsAPIHandler) ListByRoom(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &ReviewListResponse{
		Reviews: lo.Map(reviews, func(rv *store.Review, _ int) ReviewResponse {
			return toReviewResponse(rv)
		}),
	})
}

// Create posts a review. The room's owner may not review it.
// POST /rooms/{id}/reviews
//
// @Summary      Review a room
// @Description  Any JSON object is accepted. The caller becomes the author. Room owners cannot review their own room.
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Param        id      path      string  true  "Room ID"
// @Success      201     {object}  ReviewResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      413     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Security     BearerToken
// @Router       /rooms/{id}/reviews [post]
func (h *reviewsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	attrs, err := decodeAttributes(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id"), attrs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewResponse(review))
}

// Get returns one review.
// GET /reviews/{id}
//
// @Summary      Get a review
// @Tags         Reviews
// @Produce      json
// @Param        id   path      string  true  "Review ID"
// @Success      200  {object}  ReviewResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /reviews/{id} [get]
func (h *reviewsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviews.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(review))
}

// Update merges the body into the review. Author only.
// PUT /reviews/{id}
//
// @Summary      Update a review
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Review ID"
// @Success      200  {object}  ReviewResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      413  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /reviews/{id} [put]
func (h *reviewsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	attrs, err := decodeAttributes(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	review, err := h.reviews.Update(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id"), attrs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(review))
}

// Delete removes the review. Author only.
// DELETE /reviews/{id}
//
// @Summary      Delete a review
// @Tags         Reviews
// @Param        id   path  string  true  "Review ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /reviews/{id} [delete]
func (h *reviewsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.Delete(r.Context(), auth.CallerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
