package models

import "time"

// Ship is an installation (vessel or factory) where equipment faults
// are reported.
type Ship struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	FolioID      string    `gorm:"type:varchar(64);not null" json:"folio_id"`
	Description  string    `gorm:"type:text" json:"description"`
	Observations string    `gorm:"type:text" json:"observations"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Requests []MaintenanceRequest `gorm:"foreignKey:ShipID" json:"requests,omitempty"`
}

// Responsible is a person accountable for a set of equipment, linked
// one to one with a user account.
type Responsible struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	UserID    *uint64   `gorm:"uniqueIndex" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
