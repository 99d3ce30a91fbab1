package models

import "time"

// UserRole links a user to a role and to one notification group that
// role is entitled to. A (user, role) pair appears once per entitled
// group; the per-tuple EmailNotifications flag is how a user's opt-in
// state for a group is stored. Granting a role materializes its rows
// and revoking it deletes them, across all groups.
type UserRole struct {
	UserID              uint64    `gorm:"primarykey" json:"user_id"`
	RoleID              uint64    `gorm:"primarykey" json:"role_id"`
	NotificationGroupID uint64    `gorm:"primarykey" json:"notification_group_id"`
	EmailNotifications  bool      `gorm:"not null;default:true" json:"email_notifications"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Relations
	User              User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role              Role              `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	NotificationGroup NotificationGroup `gorm:"foreignKey:NotificationGroupID" json:"notification_group,omitempty"`
}
