package dto

import (
	"time"

	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/utils"
)

// ShipDTO represents an installation in API responses
type ShipDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	FolioID     string `json:"folio_id"`
	Description string `json:"description,omitempty"`
}

// MaintenanceRequestDTO represents a fault report in API responses
type MaintenanceRequestDTO struct {
	ID            uint64               `json:"id"`
	Folio         string               `json:"folio"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Status        models.RequestStatus `json:"status"`
	ShipID        uint64               `json:"ship_id"`
	Ship          *ShipDTO             `json:"ship,omitempty"`
	ReporterID    uint64               `json:"reporter_id"`
	ResponsibleID *uint64              `json:"responsible_id,omitempty"`
	Deadline      *time.Time           `json:"deadline"`
	CompletedAt   *time.Time           `json:"completed_at"`
	CreatedAt     time.Time            `json:"created_at"`
	// MailWarning is set when the milestone email could not be
	// delivered. The report itself is committed regardless.
	MailWarning string `json:"mail_warning,omitempty"`
}

// MaintenanceListResponse is the paginated fault report list
type MaintenanceListResponse struct {
	Requests   []MaintenanceRequestDTO  `json:"requests"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToShipDTO converts a Ship model to ShipDTO
func ToShipDTO(ship models.Ship) ShipDTO {
	return ShipDTO{
		ID:          ship.ID,
		Name:        ship.Name,
		FolioID:     ship.FolioID,
		Description: ship.Description,
	}
}

// ToMaintenanceRequestDTO converts a request to DTO
func ToMaintenanceRequestDTO(req models.MaintenanceRequest) MaintenanceRequestDTO {
	dto := MaintenanceRequestDTO{
		ID:            req.ID,
		Folio:         req.Folio,
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		ShipID:        req.ShipID,
		ReporterID:    req.ReporterID,
		ResponsibleID: req.ResponsibleID,
		Deadline:      req.Deadline,
		CompletedAt:   req.CompletedAt,
		CreatedAt:     req.CreatedAt,
	}
	if req.Ship.ID != 0 {
		ship := ToShipDTO(req.Ship)
		dto.Ship = &ship
	}
	return dto
}
