package services

import (
	"testing"

	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestIsAllowed(t *testing.T) {
	tests := []struct {
		name    string
		roles   []string
		action  Action
		allowed bool
	}{
		{
			name:    "admin manages users",
			roles:   []string{models.RoleAdmin},
			action:  ActionManageUsers,
			allowed: true,
		},
		{
			name:    "regular user cannot manage users",
			roles:   []string{models.RoleUser},
			action:  ActionManageUsers,
			allowed: false,
		},
		{
			name:    "maintenance team closes requests",
			roles:   []string{models.RoleMantencion},
			action:  ActionCloseRequest,
			allowed: true,
		},
		{
			name:    "installation account files requests",
			roles:   []string{models.RoleNave},
			action:  ActionCreateRequest,
			allowed: true,
		},
		{
			name:    "installation account cannot close requests",
			roles:   []string{models.RoleNave},
			action:  ActionCloseRequest,
			allowed: false,
		},
		{
			name:    "any matching role suffices",
			roles:   []string{models.RoleNave, models.RoleJefeArea},
			action:  ActionCloseRequest,
			allowed: true,
		},
		{
			name:    "no roles",
			roles:   nil,
			action:  ActionCreateRequest,
			allowed: false,
		},
		{
			name:    "unknown action denies everyone",
			roles:   []string{models.RoleAdmin},
			action:  Action("does-not-exist"),
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.allowed, IsAllowed(tt.roles, tt.action))
		})
	}
}

func TestAllowedRoles(t *testing.T) {
	roles := AllowedRoles(ActionManageUsers)
	require.Equal(t, []string{models.RoleAdmin}, roles)

	require.Nil(t, AllowedRoles(Action("does-not-exist")))
}
