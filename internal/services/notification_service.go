package services

import (
	"fmt"
	"log"

	"github.com/sotex-app/mantencion-api/internal/constants"
	"github.com/sotex-app/mantencion-api/internal/mail"
	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/repository"
	"github.com/sotex-app/mantencion-api/internal/utils"
)

// Event is a notifiable domain occurrence tagged with the group it
// fans out to and the scope it applies to.
type Event struct {
	GroupID uint64
	// ShipID scopes the event to one installation. Users bound to a
	// ship only receive events for their own ship; shore users
	// receive everything.
	ShipID *uint64
}

// GroupSetting is a user's opt-in state for one notification group.
type GroupSetting struct {
	GroupID   uint64 `json:"group_id"`
	GroupName string `json:"group_name"`
	Enabled   bool   `json:"enabled"`
}

// NotificationService is the fan-out engine: it materializes role
// grants into per-group user rows, maintains per-user opt-in state,
// and resolves an event into its recipient set.
type NotificationService struct {
	notifications repository.NotificationRepository
	mailer        mail.Mailer
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications repository.NotificationRepository, mailer mail.Mailer) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		mailer:        mailer,
	}
}

// EntitledGroups returns the notification groups the given roles are
// entitled to, de-duplicated by group id.
func (s *NotificationService) EntitledGroups(roleIDs []uint64) ([]models.NotificationGroup, error) {
	return s.notifications.GroupsForRoles(roleIDs)
}

// Groups lists the user-facing notification groups.
func (s *NotificationService) Groups() ([]models.NotificationGroup, error) {
	return s.notifications.Groups(false)
}

// GroupByName resolves a notification group by its seeded name.
func (s *NotificationService) GroupByName(name string) (*models.NotificationGroup, error) {
	return s.notifications.FindGroupByName(name)
}

// GrantRole materializes a role grant: one UserRole row per entitled
// notification group, or a single row against the default group when
// the role has none, so the user can never be invisible to recipient
// queries. All rows commit in one transaction.
func (s *NotificationService) GrantRole(userID, roleID uint64) error {
	groups, err := s.notifications.GroupsForRoles([]uint64{roleID})
	if err != nil {
		return fmt.Errorf("failed to resolve entitled groups: %w", err)
	}

	groupIDs := make([]uint64, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}
	if len(groupIDs) == 0 {
		groupIDs = append(groupIDs, constants.DefaultNotificationGroupID)
	}

	prefs, err := s.notifications.PreferencesForUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load existing preferences: %w", err)
	}

	return s.notifications.CreateUserRoles(materializeRoleRows(userID, roleID, groupIDs, prefs))
}

// materializeRoleRows is the explicit default-fill hook for role
// grants: a group the user already holds rows for keeps its recorded
// preference, everything else starts opted in.
func materializeRoleRows(userID, roleID uint64, groupIDs []uint64, prefs map[uint64]bool) []models.UserRole {
	rows := make([]models.UserRole, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		enabled, seen := prefs[groupID]
		if !seen {
			enabled = true
		}
		rows = append(rows, models.UserRole{
			UserID:              userID,
			RoleID:              roleID,
			NotificationGroupID: groupID,
			EmailNotifications:  enabled,
		})
	}
	return rows
}

// RevokeRole deletes every row the (user, role) pair produced,
// whatever groups it was materialized against.
func (s *NotificationService) RevokeRole(userID, roleID uint64) error {
	return s.notifications.DeleteUserRoles(userID, roleID)
}

// SetPreferences applies a batch of per-group opt-in changes for a
// user. Each change covers all rows of the (user, group) pair
// atomically, whichever roles produced them.
func (s *NotificationService) SetPreferences(userID uint64, changes []repository.PreferenceChange) error {
	return s.notifications.SetPreferences(userID, changes)
}

// Settings returns the user's opt-in state per group, collapsing the
// per-role storage rows into one entry per group. Rows against the
// structural default group are not exposed.
func (s *NotificationService) Settings(userID uint64) ([]GroupSetting, error) {
	rows, err := s.notifications.ListUserSettings(userID)
	if err != nil {
		return nil, err
	}

	settings := make([]GroupSetting, 0, len(rows))
	seen := make(map[uint64]bool, len(rows))
	for _, row := range rows {
		if row.NotificationGroupID == constants.DefaultNotificationGroupID {
			continue
		}
		if seen[row.NotificationGroupID] {
			continue
		}
		seen[row.NotificationGroupID] = true
		settings = append(settings, GroupSetting{
			GroupID:   row.NotificationGroupID,
			GroupName: row.NotificationGroup.Name,
			Enabled:   row.EmailNotifications,
		})
	}
	return settings, nil
}

// RecipientsFor resolves an event into the users that should receive
// it: entitled to the group, opted in, and in scope. Duplicates are
// collapsed by user id; ordering is unspecified.
func (s *NotificationService) RecipientsFor(event Event) ([]models.User, error) {
	users, err := s.notifications.EnabledRecipients(event.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	recipients := make([]models.User, 0, len(users))
	for _, user := range users {
		if user.ShipID != nil {
			if event.ShipID == nil || *user.ShipID != *event.ShipID {
				continue
			}
		}
		recipients = append(recipients, user)
	}
	return recipients, nil
}

// Dispatch resolves the event's recipients and sends them the
// rendered message. Delivery failure never propagates as an error:
// the triggering mutation is already committed, so the failure is
// logged and returned as a soft warning for the response body.
func (s *NotificationService) Dispatch(event Event, subject, htmlBody string) string {
	recipients, err := s.RecipientsFor(event)
	if err != nil {
		log.Printf("Failed to resolve recipients for group %d: %v", event.GroupID, err)
		return "notification recipients could not be resolved"
	}
	if len(recipients) == 0 {
		return ""
	}

	emails := make([]string, 0, len(recipients))
	for _, user := range recipients {
		emails = append(emails, user.Email)
	}

	if err := s.mailer.Send(subject, htmlBody, emails); err != nil {
		log.Printf("Failed to send %q to %d recipients: %v", subject, len(emails), err)
		return "notification email could not be delivered"
	}
	return ""
}

// ListLog returns the generated-notification log with pagination,
// most recent first.
func (s *NotificationService) ListLog(params utils.PaginationParams) ([]models.GeneratedNotification, int64, error) {
	return s.notifications.ListGeneratedNotifications(params)
}

// LogEvent persists a generated-notification entry for the event.
func (s *NotificationService) LogEvent(requestID uint64, eventType, title, message string, groupID uint64) error {
	return s.notifications.CreateGeneratedNotification(&models.GeneratedNotification{
		MaintenanceRequestID: requestID,
		Type:                 eventType,
		Title:                title,
		Message:              message,
		NotificationGroupID:  &groupID,
	})
}
