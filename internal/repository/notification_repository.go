package repository

import (
	"fmt"

	"github.com/sotex-app/mantencion-api/internal/constants"
	"github.com/sotex-app/mantencion-api/internal/database"
	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// GroupsForRoles returns the groups the given roles are entitled to,
// de-duplicated by group id.
func (r *GormNotificationRepository) GroupsForRoles(roleIDs []uint64) ([]models.NotificationGroup, error) {
	var groups []models.NotificationGroup
	if len(roleIDs) == 0 {
		return groups, nil
	}
	err := r.db.
		Distinct("notification_groups.*").
		Joins("JOIN notification_group_roles ON notification_group_roles.notification_group_id = notification_groups.id").
		Where("notification_group_roles.role_id IN ?", roleIDs).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Groups lists notification groups. The structural default group is
// hidden unless includeDefault is set.
func (r *GormNotificationRepository) Groups(includeDefault bool) ([]models.NotificationGroup, error) {
	var groups []models.NotificationGroup
	query := r.db.Order("id asc")
	if !includeDefault {
		query = query.Where("id <> ?", constants.DefaultNotificationGroupID)
	}
	if err := query.Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// FindGroupByName finds a notification group by its unique name
func (r *GormNotificationRepository) FindGroupByName(name string) (*models.NotificationGroup, error) {
	var group models.NotificationGroup
	if err := r.db.Where("name = ?", name).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// PreferencesForUser returns the user's recorded opt-in state per
// group. Rows from different roles of the same group never diverge
// because SetPreferences updates them together, so any row's value
// represents the group.
func (r *GormNotificationRepository) PreferencesForUser(userID uint64) (map[uint64]bool, error) {
	var rows []models.UserRole
	if err := r.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	prefs := make(map[uint64]bool, len(rows))
	for _, row := range rows {
		prefs[row.NotificationGroupID] = row.EmailNotifications
	}
	return prefs, nil
}

// CreateUserRoles inserts the materialized rows for a role grant in
// one transaction so a concurrent recipient query never observes a
// half-granted role. Existing rows are left untouched.
func (r *GormNotificationRepository) CreateUserRoles(rows []models.UserRole) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to create user role rows: %w", err)
		}
		return nil
	})
}

// DeleteUserRoles removes every row for the (user, role) pair
func (r *GormNotificationRepository) DeleteUserRoles(userID, roleID uint64) error {
	return r.db.Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{}).Error
}

// SetPreferences applies a batch of per-group opt-in changes in one
// transaction. Each change updates all rows of the (user, group)
// pair, whichever roles produced them, so the flags cannot diverge.
func (r *GormNotificationRepository) SetPreferences(userID uint64, changes []PreferenceChange) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, change := range changes {
			err := tx.Model(&models.UserRole{}).
				Where("user_id = ? AND notification_group_id = ?", userID, change.GroupID).
				Update("email_notifications", change.Enabled).Error
			if err != nil {
				return fmt.Errorf("failed to update preference for group %d: %w", change.GroupID, err)
			}
		}
		return nil
	})
}

// ListUserSettings returns the user's role rows with groups preloaded
func (r *GormNotificationRepository) ListUserSettings(userID uint64) ([]models.UserRole, error) {
	var rows []models.UserRole
	err := r.db.Preload("NotificationGroup").
		Preload("Role").
		Where("user_id = ?", userID).
		Order("notification_group_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// EnabledRecipients returns the users holding an opted-in row for the
// group, de-duplicated by user id.
func (r *GormNotificationRepository) EnabledRecipients(groupID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Distinct("users.*").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.notification_group_id = ? AND user_roles.email_notifications = ?", groupID, true).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreateGeneratedNotification persists a log entry for a fanned out event
func (r *GormNotificationRepository) CreateGeneratedNotification(n *models.GeneratedNotification) error {
	return r.db.Create(n).Error
}

// ListGeneratedNotifications returns the notification log, most recent first
func (r *GormNotificationRepository) ListGeneratedNotifications(params utils.PaginationParams) ([]models.GeneratedNotification, int64, error) {
	var total int64
	err := r.db.Model(&models.GeneratedNotification{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var notifications []models.GeneratedNotification
	err = r.db.Preload("MaintenanceRequest").
		Preload("NotificationGroup").
		Order("created_at desc").
		Scopes(database.Paginate(params)).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}
