package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sotex-app/mantencion-api/internal/dto"
	apierrors "github.com/sotex-app/mantencion-api/internal/errors"
	"github.com/sotex-app/mantencion-api/internal/middleware"
	"github.com/sotex-app/mantencion-api/internal/services"
	"github.com/sotex-app/mantencion-api/internal/utils"
)

// MaintenanceHandler exposes fault reports, installations, and the
// deadline sweep trigger.
type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
	}
}

// CreateRequest files a fault report and fans out the creation event.
func (h *MaintenanceHandler) CreateRequest(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateRequestRequest struct {
		Title         string     `json:"title" binding:"required,min=3,max=200"`
		Description   string     `json:"description"`
		ShipID        uint64     `json:"ship_id" binding:"required"`
		ResponsibleID *uint64    `json:"responsible_id"`
		Deadline      *time.Time `json:"deadline"`
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	request, warning, err := h.maintenanceService.CreateRequest(services.CreateRequestInput{
		Title:         req.Title,
		Description:   req.Description,
		ShipID:        req.ShipID,
		ResponsibleID: req.ResponsibleID,
		ReporterID:    userID,
		Deadline:      req.Deadline,
	})
	if err != nil {
		respondMaintenanceError(c, err)
		return
	}

	response := dto.ToMaintenanceRequestDTO(*request)
	response.MailWarning = warning
	c.JSON(http.StatusCreated, response)
}

// CompleteRequest transitions a report to COMPLETED and fans out the
// completion event.
func (h *MaintenanceHandler) CompleteRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request ID")
		return
	}

	request, warning, err := h.maintenanceService.CompleteRequest(id)
	if err != nil {
		respondMaintenanceError(c, err)
		return
	}

	response := dto.ToMaintenanceRequestDTO(*request)
	response.MailWarning = warning
	c.JSON(http.StatusOK, response)
}

// ListRequests returns fault reports with pagination.
func (h *MaintenanceHandler) ListRequests(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	requests, total, err := h.maintenanceService.ListRequests(params)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	requestDTOs := make([]dto.MaintenanceRequestDTO, len(requests))
	for i, request := range requests {
		requestDTOs[i] = dto.ToMaintenanceRequestDTO(request)
	}

	c.JSON(http.StatusOK, dto.MaintenanceListResponse{
		Requests: requestDTOs,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateShip registers an installation.
func (h *MaintenanceHandler) CreateShip(c *gin.Context) {
	type CreateShipRequest struct {
		Name        string `json:"name" binding:"required,min=2,max=100"`
		Description string `json:"description"`
	}

	var req CreateShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ship, err := h.maintenanceService.CreateShip(req.Name, req.Description)
	if err != nil {
		respondMaintenanceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToShipDTO(*ship))
}

// ListShips returns all installations.
func (h *MaintenanceHandler) ListShips(c *gin.Context) {
	ships, err := h.maintenanceService.ListShips()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	shipDTOs := make([]dto.ShipDTO, len(ships))
	for i, ship := range ships {
		shipDTOs[i] = dto.ToShipDTO(ship)
	}

	c.JSON(http.StatusOK, shipDTOs)
}

// DeadlineSweep runs the deadline milestone check over every open
// report. Meant to be hit by an external scheduler.
func (h *MaintenanceHandler) DeadlineSweep(c *gin.Context) {
	fired, warnings, err := h.maintenanceService.DeadlineSweep()
	if err != nil {
		apierrors.InternalError(c, err.Error())
		return
	}

	response := gin.H{
		"events_fired": fired,
	}
	if len(warnings) > 0 {
		response["mail_warnings"] = warnings
	}
	c.JSON(http.StatusOK, response)
}

func respondMaintenanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrShipNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrRequestNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrResponsibleNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrShipNameRequired),
		errors.Is(err, services.ErrRequestTitleRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrRequestAlreadyCompleted):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
