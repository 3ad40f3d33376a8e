package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/joestump/room-reviews/internal/service"
	"github.com/joestump/room-reviews/internal/store"
)

// maxJSONBodyBytes caps room and review payloads.
const maxJSONBodyBytes = 1 << 20

// --- Room and review types ---

// RoomResponse is a room serialized flat: client attributes at the top level
// plus the server fields id, ownerId, reviews, createdAt and updatedAt.
// Server fields always win over an attribute of the same name.
type RoomResponse map[string]any

// ReviewResponse is a review serialized flat with id, userId, roomId,
// createdAt and updatedAt.
type ReviewResponse map[string]any

// RoomListResponse is the response for GET /rooms.
type RoomListResponse struct {
	Rooms      []RoomResponse `json:"rooms"`
	NextCursor *string        `json:"next_cursor"`
}

// ReviewListResponse is the response for GET /rooms/{roomId}/reviews.
type ReviewListResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
}

// UploadResponse is the response for POST /rooms/upload.
type UploadResponse struct {
	FilePath string `json:"filePath"`
}

func toRoomResponse(room *store.Room) RoomResponse {
	out := RoomResponse(room.Attributes.Clone())
	out["id"] = room.ID
	out["ownerId"] = room.OwnerID
	out["reviews"] = lo.Ternary(room.ReviewIDs == nil, []string{}, room.ReviewIDs)
	out["createdAt"] = room.CreatedAt.UTC().Format(time.RFC3339Nano)
	out["updatedAt"] = room.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return out
}

// toRoomDetailResponse expands reviews inline in place of their ids.
func toRoomDetailResponse(d *service.RoomDetail) RoomResponse {
	out := toRoomResponse(d.Room)
	out["reviews"] = lo.Map(d.Reviews, func(rv *store.Review, _ int) ReviewResponse {
		return toReviewResponse(rv)
	})
	return out
}

func toReviewResponse(rv *store.Review) ReviewResponse {
	out := ReviewResponse(rv.Attributes.Clone())
	out["id"] = rv.ID
	out["userId"] = rv.UserID
	out["roomId"] = rv.RoomID
	out["createdAt"] = rv.CreatedAt.UTC().Format(time.RFC3339Nano)
	out["updatedAt"] = rv.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return out
}

// decodeAttributes reads a single JSON object body. Anything else is
// ErrInvalidPayload; a body over maxJSONBodyBytes is errBodyTooLarge.
func decodeAttributes(w http.ResponseWriter, r *http.Request) (store.Attributes, error) {
	attrs, err := store.DecodeAttributes(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
		}
		return nil, err
	}
	return attrs, nil
}

// --- User types ---

// UserResponse is the JSON representation of a user.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserListResponse is the response for GET /admin/users.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// UpdateRoleRequest is the request body for PUT /admin/users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func toUserResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
	}
}
