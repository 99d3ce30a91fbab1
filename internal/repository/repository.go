package repository

import (
	"time"

	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/utils"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByEmailWithRoles finds a user by email with role rows and
	// role records preloaded
	FindByEmailWithRoles(email string) (*models.User, error)

	// List returns all users with their roles preloaded
	List() ([]models.User, error)

	// Update persists user field changes
	Update(user *models.User) error

	// Delete removes a user together with their tokens, role rows,
	// and responsible linkage in a single transaction
	Delete(id uint64) error

	// UpdateLastLogin stamps the user's last successful login
	UpdateLastLogin(id uint64, when time.Time) error

	// RoleNames returns the distinct role names assigned to a user
	RoleNames(userID uint64) ([]string, error)

	// RoleIDs returns the distinct role ids assigned to a user
	RoleIDs(userID uint64) ([]uint64, error)
}

// RoleRepository defines the interface for role reference data
type RoleRepository interface {
	// FindByName finds a role by its unique name
	FindByName(name string) (*models.Role, error)

	// FindByIDs returns the roles matching the given ids
	FindByIDs(ids []uint64) ([]models.Role, error)

	// List returns all roles
	List() ([]models.Role, error)
}

// TokenRepository defines the interface for credential-flow tokens
type TokenRepository interface {
	// FindActive returns the unexpired, unused token of the given
	// type for a user, or gorm.ErrRecordNotFound
	FindActive(userID uint64, tokenType models.TokenType, now time.Time) (*models.Token, error)

	// Issue inserts candidate unless the user already holds an
	// active token of the same type, in which case the existing
	// token is returned unchanged. Issuance is serialized per user
	// so two racing calls cannot both insert. The boolean reports
	// whether candidate was inserted.
	Issue(candidate *models.Token, now time.Time) (*models.Token, bool, error)

	// FindByString looks a token up by its opaque string
	FindByString(token string) (*models.Token, error)

	// Redeem marks the token used and runs the caller's credential
	// mutation in the same transaction. A token that is already
	// used fails with gorm.ErrRecordNotFound from the guard update.
	Redeem(tokenString string, mutate func(tx *gorm.DB, token *models.Token) error) error
}

// PreferenceChange is one entry of a batch preference update.
type PreferenceChange struct {
	GroupID uint64 `json:"group_id"`
	Enabled bool   `json:"enabled"`
}

// NotificationRepository defines the interface for notification
// entitlements, per-user materialized rows, and the generated
// notification log
type NotificationRepository interface {
	// GroupsForRoles returns the notification groups the given roles
	// are entitled to, de-duplicated by group id
	GroupsForRoles(roleIDs []uint64) ([]models.NotificationGroup, error)

	// Groups lists notification groups, optionally hiding the
	// structural default group
	Groups(includeDefault bool) ([]models.NotificationGroup, error)

	// FindGroupByName finds a notification group by its unique name
	FindGroupByName(name string) (*models.NotificationGroup, error)

	// PreferencesForUser returns the user's recorded opt-in state
	// per group id, across all of their role rows
	PreferencesForUser(userID uint64) (map[uint64]bool, error)

	// CreateUserRoles inserts the materialized rows for a role grant
	// in one transaction, skipping rows that already exist
	CreateUserRoles(rows []models.UserRole) error

	// DeleteUserRoles removes every row for the (user, role) pair
	DeleteUserRoles(userID, roleID uint64) error

	// SetPreferences applies a batch of per-group opt-in changes for
	// a user atomically, updating every row of each group regardless
	// of which role produced it
	SetPreferences(userID uint64, changes []PreferenceChange) error

	// ListUserSettings returns the user's role rows with groups
	// preloaded
	ListUserSettings(userID uint64) ([]models.UserRole, error)

	// EnabledRecipients returns the users holding an opted-in row
	// for the group, de-duplicated by user id
	EnabledRecipients(groupID uint64) ([]models.User, error)

	// CreateGeneratedNotification persists a log entry for a fanned
	// out event
	CreateGeneratedNotification(n *models.GeneratedNotification) error

	// ListGeneratedNotifications returns the notification log, most
	// recent first
	ListGeneratedNotifications(params utils.PaginationParams) ([]models.GeneratedNotification, int64, error)
}

// MaintenanceRepository defines the interface for maintenance request
// data access
type MaintenanceRepository interface {
	// Create creates a maintenance request
	Create(req *models.MaintenanceRequest) error

	// FindByID finds a request by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.MaintenanceRequest, error)

	// Update persists request field changes
	Update(req *models.MaintenanceRequest) error

	// List returns requests with pagination, most recent first
	List(params utils.PaginationParams) ([]models.MaintenanceRequest, int64, error)

	// CountForShip counts the requests ever filed for a ship
	CountForShip(shipID uint64) (int64, error)

	// ListOpenWithDeadline returns the requests that are not yet
	// completed and carry a solution deadline
	ListOpenWithDeadline() ([]models.MaintenanceRequest, error)

	// CreateShip creates an installation
	CreateShip(ship *models.Ship) error

	// FindShip finds an installation by ID
	FindShip(id uint64) (*models.Ship, error)

	// ListShips returns all installations
	ListShips() ([]models.Ship, error)

	// FindResponsible finds a responsible by ID
	FindResponsible(id uint64) (*models.Responsible, error)
}
