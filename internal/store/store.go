package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when a user with the same email already exists.
	ErrEmailTaken = errors.New("email is already taken")
)

// ListOptions selects a page of a collection ordered by id. Ids are UUIDv7,
// so id order is creation order. A zero Limit returns everything after After.
type ListOptions struct {
	After string
	Limit int
}

// RoomStore exposes all room data operations.
// No handler may query a database directly; all access goes through this interface.
type RoomStore interface {
	Create(ctx context.Context, ownerID string, attrs Attributes) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, opts ListOptions) ([]*Room, error)
	// Update merges attrs over the stored attributes and returns the result.
	Update(ctx context.Context, id string, attrs Attributes) (*Room, error)
	// Delete removes the room together with its reviews.
	Delete(ctx context.Context, id string) error
}

// ReviewStore exposes all review data operations.
type ReviewStore interface {
	Create(ctx context.Context, roomID, userID string, attrs Attributes) (*Review, error)
	GetByID(ctx context.Context, id string) (*Review, error)
	ListByRoom(ctx context.Context, roomID string) ([]*Review, error)
	Update(ctx context.Context, id string, attrs Attributes) (*Review, error)
	Delete(ctx context.Context, id string) error
}

// UserStore exposes user records. Users are referenced by id from rooms and reviews.
type UserStore interface {
	Create(ctx context.Context, email, displayName, role string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListAll(ctx context.Context) ([]*User, error)
	UpdateRole(ctx context.Context, id, role string) (*User, error)
}

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
