// Package policy decides whether a caller may mutate a resource.
//
// Every function here is pure: the resource has already been loaded by the
// caller and nothing in this package performs I/O. Guards return nil to allow
// and an error to deny; callers must return the error before touching storage.
package policy

import (
	"errors"
	"strings"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

var (
	// ErrForbidden matches every *DeniedError.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated is returned when an operation requires an identity
	// and the caller is anonymous.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Guard names reported by DeniedError.
const (
	GuardOwnerOnly = "owner-only"
	GuardNotOwner  = "not-owner"
	GuardAdmin     = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Caller is the identity a request acts as. The zero value is anonymous.
type Caller struct {
	ID   string
	Role string
}

// Anonymous reports whether c carries no identity.
func (c Caller) Anonymous() bool {
	return normalizeID(c.ID) == ""
}

// Owned is implemented by resources that record an owning user.
type Owned interface {
	Owner() string
}

// DeniedError is returned by a guard that rejects the caller.
type DeniedError struct {
	Guard   string
	Message string
}

func (e *DeniedError) Error() string {
	return e.Message
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrForbidden
}

// Policy holds the policy choices that are configurable per deployment.
type Policy struct {
	// AdminOverride lets callers with RoleAdmin pass GuardOwnerOnly on
	// resources they do not own. It never lifts GuardNotOwner.
	AdminOverride bool
}

// IsAdmin reports whether c holds the admin role.
func IsAdmin(c Caller) bool {
	return c.Role == RoleAdmin
}

// IsOwner reports whether c is the recorded owner of r. Identifiers are
// compared as normalized strings so ids produced by different drivers
// (UUIDs, hex object ids) compare equal regardless of case or padding.
func IsOwner(c Caller, r Owned) bool {
	id := normalizeID(c.ID)
	if id == "" || r == nil {
		return false
	}
	return id == normalizeID(r.Owner())
}

// RequireIdentity fails with ErrUnauthenticated for an anonymous caller.
func RequireIdentity(c Caller) error {
	if c.Anonymous() {
		return ErrUnauthenticated
	}
	return nil
}

// GuardOwnerOnly allows only the owner of r.
func (p Policy) GuardOwnerOnly(c Caller, r Owned) error {
	if IsOwner(c, r) {
		return nil
	}
	if p.AdminOverride && IsAdmin(c) {
		return nil
	}
	return &DeniedError{Guard: GuardOwnerOnly, Message: "you are not authorized to edit this resource"}
}

// GuardNotOwner allows anyone except the owner of r. A user may not review
// their own room, admin or not.
func (p Policy) GuardNotOwner(c Caller, r Owned) error {
	if IsOwner(c, r) {
		return &DeniedError{Guard: GuardNotOwner, Message: "you are not authorized to post a review"}
	}
	return nil
}

// GuardAdmin is the role gate.
func (p Policy) GuardAdmin(c Caller) error {
	if IsAdmin(c) {
		return nil
	}
	return &DeniedError{Guard: GuardAdmin, Message: "you do not have permission to this"}
}

// Guard returns the guard name of a denial, or "" if err is not one.
func Guard(err error) string {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied.Guard
	}
	return ""
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
