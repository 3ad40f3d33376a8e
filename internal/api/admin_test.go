package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/room-reviews/internal/api"
	"github.com/joestump/room-reviews/internal/policy"
)

func TestAdmin_ListUsers_Forbidden_NonAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "alice@example.com", policy.RoleUser)

	rec := env.do(t, http.MethodGet, "/admin/users", seedToken(t, env, user.ID), nil)
	requireCode(t, rec, http.StatusForbidden, "FORBIDDEN")
}

func TestAdmin_ListUsers_OK_Admin(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", policy.RoleAdmin)
	seedUser(t, env, "other@example.com", policy.RoleUser)

	rec := env.do(t, http.MethodGet, "/admin/users", seedToken(t, env, admin.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.UserListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Users, 2)
	assert.Equal(t, "admin@example.com", resp.Users[0].Email)
	assert.Equal(t, "other@example.com", resp.Users[1].Email)
}

func TestAdmin_UpdateRole_OK(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", policy.RoleAdmin)
	target := seedUser(t, env, "target@example.com", policy.RoleUser)

	rec := env.do(t, http.MethodPut, "/admin/users/"+target.ID+"/role", seedToken(t, env, admin.ID),
		`{"role":"ADMIN"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, policy.RoleAdmin, resp.Role)
}

func TestAdmin_UpdateRole_InvalidRole(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", policy.RoleAdmin)
	target := seedUser(t, env, "target@example.com", policy.RoleUser)
	token := seedToken(t, env, admin.ID)

	for _, body := range []string{`{"role":"superadmin"}`, `{"role":"admin"}`, `not json`} {
		rec := env.do(t, http.MethodPut, "/admin/users/"+target.ID+"/role", token, body)
		requireCode(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	}
}

func TestAdmin_UpdateRole_NotFound(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", policy.RoleAdmin)

	rec := env.do(t, http.MethodPut, "/admin/users/missing/role", seedToken(t, env, admin.ID), `{"role":"USER"}`)
	requireCode(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestAdmin_UpdateRole_Forbidden_NonAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "alice@example.com", policy.RoleUser)

	rec := env.do(t, http.MethodPut, "/admin/users/"+user.ID+"/role", seedToken(t, env, user.ID), `{"role":"ADMIN"}`)
	requireCode(t, rec, http.StatusForbidden, "FORBIDDEN")
}

func TestAdmin_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/users"},
		{http.MethodPut, "/admin/users/x/role"},
	}
	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			rec := env.do(t, ep.method, ep.path, "", nil)
			requireCode(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
		})
	}
}
