package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/joestump/room-reviews/internal/auth"
	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/store"
)

// adminAPIHandler provides REST handlers for admin-only endpoints.
type adminAPIHandler struct {
	users store.UserStore
}

// registerAdminRoutes mounts /admin behind the role gate.
func registerAdminRoutes(r chi.Router, users store.UserStore, mw *auth.Middleware) {
	h := &adminAPIHandler{users: users}

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(mw.RequireAuth)
		admin.Use(mw.RequireAdmin)

		admin.Get("/users", h.ListUsers)
		admin.Put("/users/{id}/role", h.UpdateRole)
	})
}

// ListUsers returns all users in the system.
// GET /admin/users
//
// @Summary      List all users (admin)
// @Description  Returns all users in the system. Requires admin role.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  UserListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/users [get]
func (h *adminAPIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &UserListResponse{
		Users: lo.Map(users, func(u *store.User, _ int) UserResponse { return toUserResponse(u) }),
	})
}

// UpdateRole changes a user's role. Accepts only "USER" and "ADMIN".
// PUT /admin/users/{id}/role
//
// @Summary      Update user role (admin)
// @Description  Changes a user's role. Valid values: "USER", "ADMIN". Requires admin role.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User ID"
// @Param        body  body      UpdateRoleRequest  true  "New role"
// @Success      200   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /admin/users/{id}/role [put]
func (h *adminAPIHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req UpdateRoleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", codeValidation)
		return
	}
	if !policy.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, `role must be "USER" or "ADMIN"`, codeValidation)
		return
	}

	updated, err := h.users.UpdateRole(r.Context(), userID, req.Role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found", codeNotFound)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	log.Info(r.Context(), "user role changed",
		log.String("user_id", updated.ID),
		log.String("role", updated.Role),
		log.String("by", auth.CallerFromContext(r.Context()).ID),
	)
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}
