package models

import "time"

// Well-known role names. Roles are static reference data seeded at
// startup and never deleted while referenced.
const (
	RoleAdmin      = "ADMIN"
	RoleUser       = "USER"
	RoleNewUser    = "NEW_USER"
	RoleNave       = "NAVE"
	RoleMantencion = "MANTENCION"
	RoleJefeArea   = "JEFE_AREA"
	RoleGerencia   = "GERENTE_OOPP"
)

type Role struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Users []UserRole `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}
