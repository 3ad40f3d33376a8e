package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joestump/room-reviews/internal/api"
	"github.com/joestump/room-reviews/internal/auth"
	"github.com/joestump/room-reviews/internal/policy"
	"github.com/joestump/room-reviews/internal/service"
	"github.com/joestump/room-reviews/internal/store"
	"github.com/joestump/room-reviews/internal/testutil"
	"github.com/joestump/room-reviews/internal/upload"
)

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router    http.Handler
	Rooms     *store.SQLRoomStore
	Reviews   *store.SQLReviewStore
	UserStore *store.SQLUserStore
	Tokens    *auth.Tokens
	Uploads   upload.Storage
}

type envOption func(*api.Deps, *policy.Policy)

func withAdminOverride() envOption {
	return func(_ *api.Deps, p *policy.Policy) { p.AdminOverride = true }
}

func withMaxUploadBytes(n int64) envOption {
	return func(d *api.Deps, _ *policy.Policy) { d.UploadOptions.MaxBytes = n }
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with real stores.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	rooms := store.NewSQLRoomStore(db)
	reviews := store.NewSQLReviewStore(db)
	users := store.NewSQLUserStore(db)
	tokens, err := auth.NewTokens("test-secret", "room-reviews", time.Hour)
	require.NoError(t, err)
	uploads := upload.NewMemory()

	deps := api.Deps{
		Users:   users,
		Uploads: uploads,
		UploadOptions: api.UploadOptions{
			MaxBytes:      1 << 20,
			PublicBaseURL: "/uploads/",
		},
	}
	var p policy.Policy
	for _, opt := range opts {
		opt(&deps, &p)
	}
	deps.Auth = auth.NewMiddleware(tokens, users, p)
	deps.Rooms = service.NewRoomService(rooms, reviews, p)
	deps.Reviews = service.NewReviewService(rooms, reviews, p)

	return &testEnv{
		Router:    api.NewRouter(deps),
		Rooms:     rooms,
		Reviews:   reviews,
		UserStore: users,
		Tokens:    tokens,
		Uploads:   uploads,
	}
}

// seedUser creates a user and returns the user record.
func seedUser(t *testing.T, env *testEnv, email, role string) *store.User {
	t.Helper()
	u, err := env.UserStore.Create(context.Background(), email, "Test User", role)
	require.NoError(t, err)
	return u
}

// seedToken issues a bearer token for a user.
func seedToken(t *testing.T, env *testEnv, userID string) string {
	t.Helper()
	token, _, err := env.Tokens.Issue(userID)
	require.NoError(t, err)
	return token
}

// do sends a request with an optional JSON body and bearer token.
func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		authRequest(req, token)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// authRequest adds a Bearer token to the request.
func authRequest(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func requireCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	if code != "" {
		require.Equal(t, code, decodeMap(t, rec)["code"])
	}
}
