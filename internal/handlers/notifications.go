package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sotex-app/mantencion-api/internal/dto"
	apierrors "github.com/sotex-app/mantencion-api/internal/errors"
	"github.com/sotex-app/mantencion-api/internal/middleware"
	"github.com/sotex-app/mantencion-api/internal/repository"
	"github.com/sotex-app/mantencion-api/internal/services"
	"github.com/sotex-app/mantencion-api/internal/utils"
)

// NotificationHandler exposes notification groups, per-user email
// preferences, and the generated notification log.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// ListGroups returns the user-facing notification groups.
func (h *NotificationHandler) ListGroups(c *gin.Context) {
	groups, err := h.notificationService.Groups()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	groupDTOs := make([]dto.NotificationGroupDTO, len(groups))
	for i, group := range groups {
		groupDTOs[i] = dto.ToNotificationGroupDTO(group)
	}

	c.JSON(http.StatusOK, groupDTOs)
}

// GetSettings returns the authenticated user's opt-in state per group.
func (h *NotificationHandler) GetSettings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	settings, err := h.notificationService.Settings(userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
	})
}

// UpdateSettings applies a batch of per-group opt-in changes for the
// authenticated user and returns the resulting state.
func (h *NotificationHandler) UpdateSettings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateSettingsRequest struct {
		Settings []repository.PreferenceChange `json:"settings" binding:"required,min=1"`
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.notificationService.SetPreferences(userID, req.Settings); err != nil {
		apierrors.InternalError(c, "")
		return
	}

	settings, err := h.notificationService.Settings(userID)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
	})
}

// ListLog returns the generated notification log, most recent first.
func (h *NotificationHandler) ListLog(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	entries, total, err := h.notificationService.ListLog(params)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	entryDTOs := make([]dto.GeneratedNotificationDTO, len(entries))
	for i, entry := range entries {
		entryDTOs[i] = dto.ToGeneratedNotificationDTO(entry)
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{
		Notifications: entryDTOs,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}
