package dto

import (
	"time"

	"github.com/sotex-app/mantencion-api/internal/models"
)

// RoleDTO represents a role in API responses
type RoleDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// UserDTO represents a user in API responses. The password hash is
// never included.
type UserDTO struct {
	ID        uint64     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Verified  bool       `json:"verified"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	Roles     []RoleDTO  `json:"roles,omitempty"`
}

// ToRoleDTO converts a Role model to RoleDTO
func ToRoleDTO(role models.Role) RoleDTO {
	return RoleDTO{
		ID:   role.ID,
		Name: role.Name,
	}
}

// ToUserDTO converts a User model to UserDTO. Role rows, when
// preloaded, are collapsed to the distinct roles they reference.
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Verified:  user.Verified,
		LastLogin: user.LastLogin,
	}

	seen := make(map[uint64]bool, len(user.Roles))
	for _, row := range user.Roles {
		if row.Role.ID == 0 || seen[row.Role.ID] {
			continue
		}
		seen[row.Role.ID] = true
		dto.Roles = append(dto.Roles, ToRoleDTO(row.Role))
	}

	return dto
}
