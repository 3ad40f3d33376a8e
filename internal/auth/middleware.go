// Package auth attaches the calling user to API requests.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/joestump/room-reviews/internal/log"
	"github.com/joestump/room-reviews/internal/metrics"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

// UserLookup is the part of store.UserStore the middleware needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*store.User, error)
}

// Middleware provides HTTP middleware for authentication and authorization.
type Middleware struct {
	tokens *Tokens
	users  UserLookup
	policy policy.Policy
}

// NewMiddleware creates a new auth Middleware.
func NewMiddleware(tokens *Tokens, users UserLookup, p policy.Policy) *Middleware {
	return &Middleware{tokens: tokens, users: users, policy: p}
}

// RequireAuth resolves the Bearer token to a user and stores it on the
// request context. Any failure is a 401; the reason is logged, not returned.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w)
			return
		}

		userID, err := m.tokens.Verify(raw)
		if err != nil {
			log.Debug(r.Context(), "bearer token rejected", log.Cause(err))
			writeUnauthorized(w)
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Error(r.Context(), "load token user", log.String("user_id", userID), log.Cause(err))
			}
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin is the role gate. Must be used after RequireAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			writeUnauthorized(w)
			return
		}
		if err := m.policy.GuardAdmin(user.Caller()); err != nil {
			metrics.AuthzDenialsTotal.WithLabelValues(policy.GuardAdmin).Inc()
			writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error(), Code: "FORBIDDEN"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext retrieves the authenticated user from the context.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(UserContextKey).(*store.User)
	return u
}

// CallerFromContext returns the policy identity of the request, anonymous
// when no user is attached.
func CallerFromContext(ctx context.Context) policy.Caller {
	return UserFromContext(ctx).Caller()
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Code: "UNAUTHORIZED"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
