package policy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/room-reviews/internal/policy"
)

type resource string

func (r resource) Owner() string { return string(r) }

func TestIsAdmin(t *testing.T) {
	assert.True(t, policy.IsAdmin(policy.Caller{ID: "u1", Role: policy.RoleAdmin}))
	assert.False(t, policy.IsAdmin(policy.Caller{ID: "u1", Role: policy.RoleUser}))
	assert.False(t, policy.IsAdmin(policy.Caller{ID: "u1", Role: "admin"}))
	assert.False(t, policy.IsAdmin(policy.Caller{}))
}

func TestIsOwner(t *testing.T) {
	tests := []struct {
		name   string
		caller policy.Caller
		owner  string
		want   bool
	}{
		{name: "same id", caller: policy.Caller{ID: "abc"}, owner: "abc", want: true},
		{name: "different id", caller: policy.Caller{ID: "abc"}, owner: "def", want: false},
		{name: "case folded", caller: policy.Caller{ID: "65F0A1"}, owner: "65f0a1", want: true},
		{name: "padded", caller: policy.Caller{ID: " abc "}, owner: "abc", want: true},
		{name: "anonymous never owns", caller: policy.Caller{}, owner: "", want: false},
		{name: "admin is not owner", caller: policy.Caller{ID: "x", Role: policy.RoleAdmin}, owner: "abc", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.IsOwner(tt.caller, resource(tt.owner)))
		})
	}
}

func TestIsOwner_NilResource(t *testing.T) {
	assert.False(t, policy.IsOwner(policy.Caller{ID: "abc"}, nil))
}

func TestRequireIdentity(t *testing.T) {
	require.NoError(t, policy.RequireIdentity(policy.Caller{ID: "abc"}))
	require.ErrorIs(t, policy.RequireIdentity(policy.Caller{}), policy.ErrUnauthenticated)
	require.ErrorIs(t, policy.RequireIdentity(policy.Caller{ID: "  "}), policy.ErrUnauthenticated)
}

func TestGuardOwnerOnly(t *testing.T) {
	owner := policy.Caller{ID: "alice", Role: policy.RoleUser}
	other := policy.Caller{ID: "bob", Role: policy.RoleUser}
	admin := policy.Caller{ID: "root", Role: policy.RoleAdmin}
	room := resource("alice")

	t.Run("owner allowed", func(t *testing.T) {
		require.NoError(t, policy.Policy{}.GuardOwnerOnly(owner, room))
	})

	t.Run("other denied", func(t *testing.T) {
		err := policy.Policy{}.GuardOwnerOnly(other, room)
		require.ErrorIs(t, err, policy.ErrForbidden)
		assert.Equal(t, policy.GuardOwnerOnly, policy.Guard(err))
	})

	t.Run("admin denied without override", func(t *testing.T) {
		err := policy.Policy{}.GuardOwnerOnly(admin, room)
		require.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("admin allowed with override", func(t *testing.T) {
		require.NoError(t, policy.Policy{AdminOverride: true}.GuardOwnerOnly(admin, room))
	})

	t.Run("override does not help ordinary users", func(t *testing.T) {
		err := policy.Policy{AdminOverride: true}.GuardOwnerOnly(other, room)
		require.ErrorIs(t, err, policy.ErrForbidden)
	})
}

func TestGuardNotOwner(t *testing.T) {
	room := resource("alice")

	require.NoError(t, policy.Policy{}.GuardNotOwner(policy.Caller{ID: "bob"}, room))

	err := policy.Policy{}.GuardNotOwner(policy.Caller{ID: "alice"}, room)
	require.ErrorIs(t, err, policy.ErrForbidden)
	assert.Equal(t, policy.GuardNotOwner, policy.Guard(err))

	// Admin status never lifts the self-review rule.
	err = policy.Policy{AdminOverride: true}.GuardNotOwner(policy.Caller{ID: "alice", Role: policy.RoleAdmin}, room)
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestGuardAdmin(t *testing.T) {
	require.NoError(t, policy.Policy{}.GuardAdmin(policy.Caller{ID: "root", Role: policy.RoleAdmin}))

	err := policy.Policy{}.GuardAdmin(policy.Caller{ID: "bob", Role: policy.RoleUser})
	require.ErrorIs(t, err, policy.ErrForbidden)
	assert.Equal(t, policy.GuardAdmin, policy.Guard(err))
}

func TestGuard_NotADenial(t *testing.T) {
	assert.Equal(t, "", policy.Guard(errors.New("boom")))
	assert.Equal(t, "", policy.Guard(nil))
}

func TestValidRole(t *testing.T) {
	assert.True(t, policy.ValidRole(policy.RoleAdmin))
	assert.True(t, policy.ValidRole(policy.RoleUser))
	assert.False(t, policy.ValidRole("admin"))
	assert.False(t, policy.ValidRole(""))
}
