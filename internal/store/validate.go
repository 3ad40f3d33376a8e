package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPayload is returned when client-supplied attributes cannot be stored.
var ErrInvalidPayload = errors.New("invalid payload")

// ServerKeys are attribute names the server owns. They are removed from every
// client payload before it is persisted, on create and on update.
var ServerKeys = []string{
	"_id", "id",
	"ownerId", "owner_id",
	"userId", "user_id",
	"roomId", "room_id",
	"reviews",
	"createdAt", "created_at",
	"updatedAt", "updated_at",
}

// ValidateAttributes checks that every key can be stored in both the SQL and
// the document backends: keys must be non-empty, must not start with '$' and
// must not contain '.'.
func ValidateAttributes(a Attributes) error {
	for k := range a {
		switch {
		case strings.TrimSpace(k) == "":
			return fmt.Errorf("%w: empty field name", ErrInvalidPayload)
		case strings.HasPrefix(k, "$"):
			return fmt.Errorf("%w: field %q must not start with '$'", ErrInvalidPayload, k)
		case strings.Contains(k, "."):
			return fmt.Errorf("%w: field %q must not contain '.'", ErrInvalidPayload, k)
		}
	}
	return nil
}

// Without returns a copy of a minus the given keys.
func (a Attributes) Without(keys ...string) Attributes {
	out := a.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
