package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Role
	}{
		{"buyer", RoleBuyer},
		{"vendor", RoleVendor},
		{"rider", RoleRider},
	} {
		got, err := ParseRole(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
		assert.True(t, got.Valid())
		assert.Equal(t, tc.in, got.String())
	}

	for _, bad := range []string{"admin", "", "Vendor", " buyer", "superuser"} {
		got, err := ParseRole(bad)
		assert.ErrorIs(t, err, ErrInvalidRole, bad)
		assert.False(t, got.Valid(), bad)
	}
}

func TestRole_ZeroValueIsInvalid(t *testing.T) {
	var r Role
	assert.False(t, r.Valid())
	_, err := json.Marshal(r)
	assert.Error(t, err)
}

func TestRole_JSONGoesThroughParser(t *testing.T) {
	var acc Account
	err := json.Unmarshal([]byte(`{"id":"u1","email":"a@b.co","role":"admin"}`), &acc)
	assert.ErrorContains(t, err, "invalid role")

	require.NoError(t, json.Unmarshal([]byte(`{"id":"u1","email":"a@b.co","role":"vendor"}`), &acc))
	assert.Equal(t, RoleVendor, acc.Role)

	out, err := json.Marshal(acc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"role":"vendor"`)
}

func TestDashboardPathFor(t *testing.T) {
	assert.Equal(t, "/dashboard/buyer", DashboardPathFor(RoleBuyer))
	assert.Equal(t, "/dashboard/vendor", DashboardPathFor(RoleVendor))
	assert.Equal(t, "/dashboard/rider", DashboardPathFor(RoleRider))
	assert.Equal(t, LoginPath, DashboardPathFor(Role(42)))
}
