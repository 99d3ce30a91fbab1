package services

import "github.com/sotex-app/mantencion-api/internal/models"

// Action names a protected operation. Every guarded route resolves
// its allow-list through this table instead of scattering role id
// literals per handler.
type Action string

const (
	ActionManageUsers    Action = "users:manage"
	ActionResetPasswords Action = "passwords:reset"
	ActionManageSettings Action = "notifications:settings"
	ActionManageShips    Action = "ships:manage"
	ActionCreateRequest  Action = "maintenance:create"
	ActionCloseRequest   Action = "maintenance:close"
	ActionDeadlineSweep  Action = "maintenance:deadline-sweep"
)

// permissions is the authorization matrix: action to the role names
// allowed to perform it.
var permissions = map[Action][]string{
	ActionManageUsers:    {models.RoleAdmin},
	ActionResetPasswords: {models.RoleAdmin},
	ActionManageSettings: {models.RoleAdmin, models.RoleMantencion, models.RoleJefeArea, models.RoleGerencia},
	ActionManageShips:    {models.RoleAdmin},
	ActionCreateRequest:  {models.RoleAdmin, models.RoleUser, models.RoleMantencion, models.RoleNave},
	ActionCloseRequest:   {models.RoleAdmin, models.RoleMantencion, models.RoleJefeArea},
	ActionDeadlineSweep:  {models.RoleAdmin},
}

// IsAllowed reports whether any of the user's role names appears in
// the allow-list for action. Pure function, no side effects.
func IsAllowed(roleNames []string, action Action) bool {
	allowed, ok := permissions[action]
	if !ok {
		return false
	}
	for _, have := range roleNames {
		for _, want := range allowed {
			if have == want {
				return true
			}
		}
	}
	return false
}

// AllowedRoles returns the role names entitled to perform action.
func AllowedRoles(action Action) []string {
	return permissions[action]
}
