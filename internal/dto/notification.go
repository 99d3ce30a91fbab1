package dto

import (
	"time"

	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/utils"
)

// NotificationGroupDTO represents a notification group in API responses
type NotificationGroupDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
}

// GeneratedNotificationDTO represents a notification log entry
type GeneratedNotificationDTO struct {
	ID                   uint64                `json:"id"`
	MaintenanceRequestID uint64                `json:"maintenance_request_id"`
	Type                 string                `json:"type"`
	Title                string                `json:"title"`
	Message              string                `json:"message"`
	Group                *NotificationGroupDTO `json:"notification_group,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
}

// NotificationListResponse is the paginated notification log
type NotificationListResponse struct {
	Notifications []GeneratedNotificationDTO `json:"notifications"`
	Pagination    utils.PaginationResponse   `json:"pagination"`
}

// ToNotificationGroupDTO converts a NotificationGroup to DTO
func ToNotificationGroupDTO(group models.NotificationGroup) NotificationGroupDTO {
	return NotificationGroupDTO{
		ID:      group.ID,
		Name:    group.Name,
		Details: group.Details,
	}
}

// ToGeneratedNotificationDTO converts a log entry to DTO
func ToGeneratedNotificationDTO(n models.GeneratedNotification) GeneratedNotificationDTO {
	dto := GeneratedNotificationDTO{
		ID:                   n.ID,
		MaintenanceRequestID: n.MaintenanceRequestID,
		Type:                 n.Type,
		Title:                n.Title,
		Message:              n.Message,
		CreatedAt:            n.CreatedAt,
	}
	if n.NotificationGroup != nil {
		group := ToNotificationGroupDTO(*n.NotificationGroup)
		dto.Group = &group
	}
	return dto
}
