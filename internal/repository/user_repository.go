package repository

import (
	"fmt"
	"time"

	"github.com/sotex-app/mantencion-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmailWithRoles finds a user by email with roles preloaded
func (r *GormUserRepository) FindByEmailWithRoles(email string) (*models.User, error) {
	var user models.User
	err := r.db.Preload("Roles.Role").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users with their roles preloaded
func (r *GormUserRepository) List() ([]models.User, error) {
	var users []models.User
	err := r.db.Preload("Roles.Role").
		Order("id asc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Update persists user field changes
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete removes a user and everything they own in one transaction.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Token{}).Error; err != nil {
			return fmt.Errorf("failed to delete tokens: %w", err)
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to delete user roles: %w", err)
		}

		err := tx.Model(&models.Responsible{}).
			Where("user_id = ?", id).
			Update("user_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to unlink responsible: %w", err)
		}

		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		return nil
	})
}

// UpdateLastLogin stamps the user's last successful login
func (r *GormUserRepository) UpdateLastLogin(id uint64, when time.Time) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", when).Error
}

// RoleNames returns the distinct role names assigned to a user
func (r *GormUserRepository) RoleNames(userID uint64) ([]string, error) {
	var names []string
	err := r.db.Model(&models.UserRole{}).
		Distinct("roles.name").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// RoleIDs returns the distinct role ids assigned to a user
func (r *GormUserRepository) RoleIDs(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.UserRole{}).
		Distinct("role_id").
		Where("user_id = ?", userID).
		Pluck("role_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
