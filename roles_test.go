package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tiendago/auth"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, auth.IsValidRole(auth.RoleUser))
	assert.True(t, auth.IsValidRole(auth.RoleAdmin))
	assert.True(t, auth.IsValidRole(auth.RoleSuperUser))
	assert.False(t, auth.IsValidRole("root"))
	assert.False(t, auth.IsValidRole(""))
}

func TestValidRoles(t *testing.T) {
	assert.ElementsMatch(t,
		[]auth.UserRole{auth.RoleUser, auth.RoleAdmin, auth.RoleSuperUser},
		auth.ValidRoles(),
	)
}

func TestRoleRegistry(t *testing.T) {
	t.Run("undeclared handler has no requirement", func(t *testing.T) {
		registry := auth.NewRoleRegistry()
		assert.Empty(t, registry.RolesFor("orders.list"))
	})

	t.Run("declare then read back", func(t *testing.T) {
		registry := auth.NewRoleRegistry()
		registry.Declare("orders.delete", auth.RoleAdmin, auth.RoleSuperUser)

		assert.Equal(t,
			[]string{auth.RoleAdmin, auth.RoleSuperUser},
			registry.RolesFor("orders.delete"),
		)
	})

	t.Run("redeclaring replaces the requirement", func(t *testing.T) {
		registry := auth.NewRoleRegistry()
		registry.Declare("orders.delete", auth.RoleAdmin)
		registry.Declare("orders.delete", auth.RoleSuperUser)

		assert.Equal(t, []string{auth.RoleSuperUser}, registry.RolesFor("orders.delete"))
	})

	t.Run("declaring with no roles clears", func(t *testing.T) {
		registry := auth.NewRoleRegistry()
		registry.Declare("orders.delete", auth.RoleAdmin)
		registry.Declare("orders.delete")

		assert.Empty(t, registry.RolesFor("orders.delete"))
	})

	t.Run("empty role names are dropped", func(t *testing.T) {
		registry := auth.NewRoleRegistry()
		registry.Declare("orders.delete", "", auth.RoleAdmin, "")

		assert.Equal(t, []string{auth.RoleAdmin}, registry.RolesFor("orders.delete"))
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		registry := auth.NewRoleRegistry()
		registry.Declare("orders.delete", auth.RoleAdmin)

		got := registry.RolesFor("orders.delete")
		got[0] = "mutated"

		assert.Equal(t, []string{auth.RoleAdmin}, registry.RolesFor("orders.delete"))
	})
}
