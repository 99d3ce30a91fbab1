package models

import "time"

type RequestStatus string

const (
	RequestStatusReported   RequestStatus = "REPORTED"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
)

type MaintenanceRequest struct {
	ID            uint64        `gorm:"primarykey" json:"id"`
	Folio         string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"folio"`
	Title         string        `gorm:"type:varchar(255);not null" json:"title"`
	Description   string        `gorm:"type:text" json:"description"`
	Status        RequestStatus `gorm:"type:varchar(20);not null;default:'REPORTED'" json:"status"`
	ShipID        uint64        `gorm:"not null;index" json:"ship_id"`
	ResponsibleID *uint64       `json:"responsible_id"`
	ReporterID    uint64        `gorm:"not null" json:"reporter_id"`
	Deadline      *time.Time    `json:"deadline"`
	CompletedAt   *time.Time    `json:"completed_at"`
	// Deadline milestone flags keep the sweep from re-notifying.
	NotifiedDeadline75    bool      `gorm:"not null;default:false" json:"-"`
	NotifiedDeadlineFinal bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	// Relations
	Ship        Ship         `gorm:"foreignKey:ShipID" json:"ship,omitempty"`
	Responsible *Responsible `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`
	Reporter    User         `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
}

// DeadlineReached reports whether the solution deadline has passed.
func (r *MaintenanceRequest) DeadlineReached(now time.Time) bool {
	return r.Deadline != nil && !now.Before(*r.Deadline)
}

// Deadline75Reached reports whether 75% of the window between
// creation and the solution deadline has elapsed.
func (r *MaintenanceRequest) Deadline75Reached(now time.Time) bool {
	if r.Deadline == nil {
		return false
	}
	window := r.Deadline.Sub(r.CreatedAt)
	if window <= 0 {
		return true
	}
	threshold := r.CreatedAt.Add(window * 3 / 4)
	return !now.Before(threshold)
}

// GeneratedNotification is the persisted log entry created whenever a
// notifiable event fans out to a notification group.
type GeneratedNotification struct {
	ID                   uint64    `gorm:"primarykey" json:"id"`
	MaintenanceRequestID uint64    `gorm:"not null;index" json:"maintenance_request_id"`
	Type                 string    `gorm:"type:varchar(64);not null" json:"type"`
	Title                string    `gorm:"type:varchar(255);not null" json:"title"`
	Message              string    `gorm:"type:text" json:"message"`
	NotificationGroupID  *uint64   `json:"notification_group_id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	// Relations
	MaintenanceRequest MaintenanceRequest `gorm:"foreignKey:MaintenanceRequestID" json:"maintenance_request,omitempty"`
	NotificationGroup  *NotificationGroup `gorm:"foreignKey:NotificationGroupID" json:"notification_group,omitempty"`
}
