package models

import "time"

// Well-known notification group names, seeded at startup.
const (
	GroupIngresoRequerimiento      = "Ingreso de Requerimiento"
	GroupCondicionesCriticas       = "Condiciones Críticas"
	GroupPlazoSolucion75           = "Plazo de Solución 75%"
	GroupPlazoSolucionFinal        = "Plazo de Solución Final"
	GroupFinalizacionRequerimiento = "Finalización de Requerimiento"
)

// NotificationGroup is a named category of system events users can
// opt in or out of receiving email for.
type NotificationGroup struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Roles []NotificationGroupRole `gorm:"foreignKey:NotificationGroupID" json:"roles,omitempty"`
}

// NotificationGroupRole maps which roles are entitled to which
// notification groups. It is the admin-configured template; UserRole
// rows are the per-user materialization of entitlement plus
// preference.
type NotificationGroupRole struct {
	NotificationGroupID uint64    `gorm:"primarykey" json:"notification_group_id"`
	RoleID              uint64    `gorm:"primarykey" json:"role_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Relations
	NotificationGroup NotificationGroup `gorm:"foreignKey:NotificationGroupID" json:"notification_group,omitempty"`
	Role              Role              `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}
