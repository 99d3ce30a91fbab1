package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sotex-app/mantencion-api/internal/models"
	"github.com/sotex-app/mantencion-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken       = errors.New("email already registered")
	ErrEmailRequired    = errors.New("email is required")
	ErrUsernameRequired = errors.New("username is required")
	ErrRoleNotFound     = errors.New("role does not exist")
)

// UserService handles admin-driven user management.
type UserService struct {
	users         repository.UserRepository
	roles         repository.RoleRepository
	tokens        *TokenService
	notifications *NotificationService
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, roles repository.RoleRepository, tokens *TokenService, notifications *NotificationService) *UserService {
	return &UserService{
		users:         users,
		roles:         roles,
		tokens:        tokens,
		notifications: notifications,
	}
}

// CreateNewUser registers an unverified account with an empty
// password and the NEW_USER role, then issues its activation token.
// The account stays unusable until the token is redeemed.
func (s *UserService) CreateNewUser(email, username string) (*models.User, *models.Token, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" {
		return nil, nil, ErrEmailRequired
	}
	if username == "" {
		return nil, nil, ErrUsernameRequired
	}

	if err := s.ensureEmailFree(email, 0); err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: "",
		Verified: false,
	}
	if err := s.users.Create(user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.grantByName(user.ID, models.RoleNewUser); err != nil {
		return nil, nil, err
	}

	token, _, err := s.tokens.Issue(user.ID, models.TokenTypeNewUserPassword)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// CreateVerifiedUser registers a ready-to-use account with a password
// and an explicit role set. Used by the admin users endpoint.
func (s *UserService) CreateVerifiedUser(username, email, password string, roleNames []string) (*models.User, error) {
	if err := s.ensureEmailFree(email, 0); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Verified: true,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	for _, name := range roleNames {
		if err := s.grantByName(user.ID, name); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// ListUsers returns all users with their roles.
func (s *UserService) ListUsers() ([]models.User, error) {
	return s.users.List()
}

// UpdateUser edits a user's profile fields and reconciles their role
// set: newly listed roles are granted through the fan-out engine and
// missing ones revoked, so the notification rows always track the
// assignment.
func (s *UserService) UpdateUser(id uint64, username, email string, roleNames []string) (*models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if email != user.Email {
		if err := s.ensureEmailFree(email, user.ID); err != nil {
			return nil, err
		}
	}

	wanted := make(map[uint64]bool, len(roleNames))
	for _, name := range roleNames {
		role, err := s.roles.FindByName(name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
			}
			return nil, fmt.Errorf("failed to resolve role %s: %w", name, err)
		}
		wanted[role.ID] = true
	}

	current, err := s.users.RoleIDs(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current roles: %w", err)
	}
	held := make(map[uint64]bool, len(current))
	for _, roleID := range current {
		held[roleID] = true
	}

	for roleID := range wanted {
		if held[roleID] {
			continue
		}
		if err := s.notifications.GrantRole(user.ID, roleID); err != nil {
			return nil, fmt.Errorf("failed to grant role %d: %w", roleID, err)
		}
	}
	for _, roleID := range current {
		if wanted[roleID] {
			continue
		}
		if err := s.notifications.RevokeRole(user.ID, roleID); err != nil {
			return nil, fmt.Errorf("failed to revoke role %d: %w", roleID, err)
		}
	}

	user.Username = username
	user.Email = email
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user together with their tokens, role rows,
// and responsible linkage.
func (s *UserService) DeleteUser(id uint64) error {
	if _, err := s.users.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	return s.users.Delete(id)
}

func (s *UserService) ensureEmailFree(email string, selfID uint64) error {
	existing, err := s.users.FindByEmail(email)
	if err == nil {
		if existing.ID == selfID {
			return nil
		}
		return ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

func (s *UserService) grantByName(userID uint64, roleName string) error {
	role, err := s.roles.FindByName(roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrRoleNotFound, roleName)
		}
		return fmt.Errorf("failed to resolve role %s: %w", roleName, err)
	}
	if err := s.notifications.GrantRole(userID, role.ID); err != nil {
		return fmt.Errorf("failed to grant role %s: %w", roleName, err)
	}
	return nil
}
