package models

import (
	"time"
)

type User struct {
	ID       uint64 `gorm:"primarykey" json:"id"`
	Username string `gorm:"type:varchar(255);not null" json:"username"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	// Password holds the bcrypt hash. It stays empty between the
	// admin-initiated signup and the activation token redemption.
	Password  string     `gorm:"type:varchar(255)" json:"-"`
	Verified  bool       `gorm:"not null;default:false" json:"verified"`
	LastLogin *time.Time `json:"last_login"`
	// ShipID links installation accounts (NAVE role) to their ship.
	// Shore personnel have no ship and are in scope for every event.
	ShipID    *uint64   `json:"ship_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Roles  []UserRole `gorm:"foreignKey:UserID" json:"roles,omitempty"`
	Tokens []Token    `gorm:"foreignKey:UserID" json:"-"`
	Ship   *Ship      `gorm:"foreignKey:ShipID" json:"ship,omitempty"`
}
