package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackofficeRoles(t *testing.T) {
	ac := Backoffice()

	assert.True(t, ac.Can("owner", "payment", "delete"))
	assert.True(t, ac.Can("owner", "request", "handle"))
	assert.True(t, ac.Can("production_manager", "customer", "update"))
	assert.True(t, ac.Can("production_manager", "request", "handle"))
	assert.False(t, ac.Can("production_manager", "payment", "delete"))
	assert.False(t, ac.Can("production_manager", "member", "update"))
	assert.True(t, ac.Can("member", "request", "create"))
	assert.False(t, ac.Can("member", "customer", "delete"))
	assert.True(t, ac.Can("owner", "location", "delete"))
	assert.True(t, ac.Can("production_manager", "location", "create"))
	assert.False(t, ac.Can("production_manager", "location", "delete"))
	assert.True(t, ac.Can("member", "location", "read"))
	assert.False(t, ac.Can("member", "location", "create"))
}

func TestHospitalityRoles(t *testing.T) {
	ac := Hospitality()

	assert.True(t, ac.Can("owner", "conversation", "assign"))
	assert.True(t, ac.Can("admin", "tag", "delete"))
	assert.True(t, ac.Can("member", "location", "read"))
	assert.False(t, ac.Can("member", "location", "update"))
}

func TestCanDeniesUnknown(t *testing.T) {
	ac := Backoffice()

	assert.False(t, ac.Can("owner", "unknown_resource", "read"))
	assert.False(t, ac.Can("owner", "customer", "unknown_action"))
	assert.False(t, ac.Can("ghost_role", "customer", "read"))
}

func TestNewRoleMergesBases(t *testing.T) {
	ac := NewAccessControl(Statements{"doc": {"read", "write"}})
	base := ac.NewRole("base", Statements{"doc": {"read"}})
	elevated := ac.NewRole("elevated", Statements{"doc": {"read", "write"}}, base)

	require.Contains(t, elevated.Statements, "doc")
	assert.True(t, ac.Can("elevated", "doc", "write"))
	assert.False(t, ac.Can("base", "doc", "write"))
}

func TestSuperAdmin(t *testing.T) {
	sa := NewSuperAdmin([]string{"user-1"}, []string{"super-admin", "admin"})

	assert.True(t, sa.Is("user-1", ""), "allow-listed id wins regardless of role")
	assert.True(t, sa.Is("user-2", "super-admin"))
	assert.True(t, sa.Is("user-2", "admin"))
	assert.False(t, sa.Is("user-2", "user"))
	assert.False(t, sa.Is("user-2", ""))
}
